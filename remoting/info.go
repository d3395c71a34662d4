package remoting

// MethodInfo describes one remotely callable method.
type MethodInfo struct {
	Name string `json:"name"`
	// IsOneWay methods are invoked as notifications and never answer.
	IsOneWay bool `json:"isOneWay"`
}

// TwoWay describes a method that is invoked as a request.
func TwoWay(name string) MethodInfo {
	return MethodInfo{Name: name}
}

// OneWay describes a method that is invoked as a notification.
func OneWay(name string) MethodInfo {
	return MethodInfo{Name: name, IsOneWay: true}
}

// ServiceInfo is the serializable description of a service: its default
// remote ID and its methods, in declaration order. It carries no
// implementation.
type ServiceInfo struct {
	RemoteID string       `json:"defaultRemoteId,omitempty"`
	Methods  []MethodInfo `json:"methods"`
}

// Method looks up a method by name.
func (info ServiceInfo) Method(name string) (MethodInfo, bool) {
	for _, m := range info.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodInfo{}, false
}

// Describer is implemented by service types that list their own remotely
// callable methods.
type Describer interface {
	RemoteMethods() []MethodInfo
}
