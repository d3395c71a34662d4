package remoting

import (
	"errors"
	"strings"
)

const methodSeparator = "/"

// ErrMalformedMethod is returned when a compound method has no separator.
var ErrMalformedMethod = errors.New("malformed compound method")

// ServiceMethod is a parsed compound method name.
type ServiceMethod struct {
	ServiceID string
	Method    string
}

func (m ServiceMethod) String() string {
	return ComposeMethod(m.ServiceID, m.Method)
}

// ComposeMethod returns the wire name "serviceID/method".
func ComposeMethod(serviceID, method string) string {
	return serviceID + methodSeparator + method
}

// ParseMethod splits a compound method on its first separator, so method
// names may themselves contain one.
func ParseMethod(compound string) (ServiceMethod, error) {
	i := strings.Index(compound, methodSeparator)
	if i < 0 {
		return ServiceMethod{}, ErrMalformedMethod
	}
	return ServiceMethod{
		ServiceID: compound[:i],
		Method:    compound[i+len(methodSeparator):],
	}, nil
}
