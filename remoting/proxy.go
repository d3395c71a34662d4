package remoting

import (
	"context"
	"errors"

	"github.com/vipnode/remoting/jsonrpc2"
)

// ProxyFunc forwards one method call. result is ignored for one-way methods
// and may be nil when the caller does not need the result.
type ProxyFunc func(ctx context.Context, result interface{}, params ...interface{}) error

// Proxy is a local stand-in for a remote service, with one callable per
// described method.
type Proxy struct {
	channel  jsonrpc2.Channel
	remoteID string
	info     ServiceInfo
}

// NewProxy builds a Proxy calling remoteID over channel. An empty remoteID
// falls back to info.RemoteID.
func NewProxy(channel jsonrpc2.Channel, info ServiceInfo, remoteID string) (*Proxy, error) {
	if remoteID == "" {
		remoteID = info.RemoteID
	}
	if remoteID == "" {
		return nil, errors.New("proxy needs a remote id")
	}
	if channel == nil {
		return nil, errors.New("proxy needs a channel")
	}
	info.RemoteID = remoteID
	info.Methods = append([]MethodInfo(nil), info.Methods...)
	return &Proxy{
		channel:  channel,
		remoteID: remoteID,
		info:     info,
	}, nil
}

func (p *Proxy) RemoteID() string {
	return p.remoteID
}

func (p *Proxy) Info() ServiceInfo {
	return p.info
}

// Call invokes method with positional params. One-way methods return once
// the notification is handed to the transport. Two-way methods wait for the
// response and decode its result into result, or return its error as a
// *jsonrpc2.ErrResponse.
func (p *Proxy) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	m, ok := p.info.Method(method)
	if !ok {
		return ErrUnknownMethod{RemoteID: p.remoteID, Method: method}
	}
	req, err := jsonrpc2.NewRequest(ComposeMethod(p.remoteID, m.Name), params...)
	if err != nil {
		return err
	}
	if m.IsOneWay {
		return p.channel.SendNotification(ctx, req)
	}
	resp, err := p.channel.SendRequest(ctx, req, nil)
	if err != nil {
		return err
	}
	return resp.UnmarshalResult(result)
}

// Func returns the callable for method.
func (p *Proxy) Func(method string) (ProxyFunc, bool) {
	if _, ok := p.info.Method(method); !ok {
		return nil, false
	}
	return func(ctx context.Context, result interface{}, params ...interface{}) error {
		return p.Call(ctx, result, method, params...)
	}, true
}

// Funcs returns a callable for every described method, by name.
func (p *Proxy) Funcs() map[string]ProxyFunc {
	funcs := make(map[string]ProxyFunc, len(p.info.Methods))
	for _, m := range p.info.Methods {
		funcs[m.Name], _ = p.Func(m.Name)
	}
	return funcs
}

// DescribeRemote asks the peer's meta service for the descriptors of
// remoteID.
func DescribeRemote(ctx context.Context, channel jsonrpc2.Channel, remoteID string) (ServiceInfo, error) {
	meta, err := NewProxy(channel, metaInfo, "")
	if err != nil {
		return ServiceInfo{}, err
	}
	var info ServiceInfo
	if err := meta.Call(ctx, &info, DescribeMethod, remoteID); err != nil {
		return ServiceInfo{}, err
	}
	if info.RemoteID == "" {
		info.RemoteID = remoteID
	}
	return info, nil
}

// Discover describes remoteID and builds a Proxy for it.
func Discover(ctx context.Context, channel jsonrpc2.Channel, remoteID string) (*Proxy, error) {
	info, err := DescribeRemote(ctx, channel, remoteID)
	if err != nil {
		return nil, err
	}
	return NewProxy(channel, info, remoteID)
}
