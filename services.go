package main

import (
	"context"

	"github.com/vipnode/remoting/jsonrpc2"
	"github.com/vipnode/remoting/remoting"
)

// errCodeDivideByZero is the application error code of Calc.div.
const errCodeDivideByZero = 1

// Calc is a demo two-way service.
type Calc struct{}

func (c *Calc) RemoteMethods() []remoting.MethodInfo {
	return []remoting.MethodInfo{
		remoting.TwoWay("add"),
		remoting.TwoWay("sub"),
		remoting.TwoWay("div"),
	}
}

func (c *Calc) Add(a, b float64) float64 {
	return a + b
}

func (c *Calc) Sub(a, b float64) float64 {
	return a - b
}

func (c *Calc) Div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, &remoting.ServiceError{
			Code:    errCodeDivideByZero,
			Message: "division by zero",
			Data:    map[string]float64{"dividend": a},
		}
	}
	return a / b, nil
}

// Logger is a demo one-way service, it writes what it is sent to the log.
type Logger struct{}

func (l *Logger) RemoteMethods() []remoting.MethodInfo {
	return []remoting.MethodInfo{
		remoting.OneWay("log"),
	}
}

func (l *Logger) Log(ctx context.Context, msg string) {
	from := "unknown"
	if ch, err := jsonrpc2.CtxChannel(ctx); err == nil {
		from = ch.String()
	}
	logger.Infof("[%s] %s", from, msg)
}

// demoServices returns a Server with Calc and Logger registered.
func demoServices() (*remoting.Server, error) {
	s := remoting.NewServer()
	if err := s.RegisterObject("Calc", &Calc{}); err != nil {
		return nil, err
	}
	if err := s.RegisterObject("Logger", &Logger{}); err != nil {
		return nil, err
	}
	return s, nil
}

// CalcClient calls a remote Calc with Go types.
type CalcClient struct {
	proxy *remoting.Proxy
}

// NewCalcClient returns a client for the Calc served on channel, without a
// discovery round trip.
func NewCalcClient(channel jsonrpc2.Channel) (*CalcClient, error) {
	info := remoting.ServiceInfo{
		RemoteID: "Calc",
		Methods:  (&Calc{}).RemoteMethods(),
	}
	proxy, err := remoting.NewProxy(channel, info, "")
	if err != nil {
		return nil, err
	}
	return &CalcClient{proxy: proxy}, nil
}

func (c *CalcClient) Add(ctx context.Context, a, b float64) (result float64, err error) {
	err = c.proxy.Call(ctx, &result, "add", a, b)
	return
}

func (c *CalcClient) Sub(ctx context.Context, a, b float64) (result float64, err error) {
	err = c.proxy.Call(ctx, &result, "sub", a, b)
	return
}

func (c *CalcClient) Div(ctx context.Context, a, b float64) (result float64, err error) {
	err = c.proxy.Call(ctx, &result, "div", a, b)
	return
}
