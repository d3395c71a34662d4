package remoting

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vipnode/remoting/jsonrpc2"
)

type Calc struct{}

func (c *Calc) RemoteMethods() []MethodInfo {
	return []MethodInfo{
		TwoWay("add"),
		TwoWay("div"),
		TwoWay("secret"),
		TwoWay("explode"),
	}
}

func (c *Calc) Add(a, b int) int {
	return a + b
}

func (c *Calc) Div(a, b int) (int, error) {
	if b == 0 {
		return 0, &ServiceError{
			Code:    1,
			Message: "division by zero",
			Data:    map[string]int{"dividend": a},
		}
	}
	return a / b, nil
}

func (c *Calc) Secret(ctx context.Context) error {
	return errors.New("password=hunter2")
}

func (c *Calc) Explode() {
	panic("password=hunter2")
}

var calcInfo = ServiceInfo{
	RemoteID: "Calc",
	Methods: []MethodInfo{
		TwoWay("add"),
		TwoWay("div"),
		TwoWay("secret"),
		TwoWay("explode"),
	},
}

// logFuncs is a Logger service recording the raw params it receives.
func logFuncs(received chan<- string) *Funcs {
	return NewFuncs().Notification("log", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		received <- string(params)
		return nil, nil
	})
}

func newCalcServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer()
	require.NoError(t, s.RegisterObject("Calc", &Calc{}))
	return s
}

// rawPeer returns a Session over one end of a pipe and a raw codec on the
// other.
func rawPeer(server *Server) (*Session, jsonrpc2.Codec) {
	c1, c2 := net.Pipe()
	return NewSession(jsonrpc2.NewCodecStream(jsonrpc2.IOCodec(c1)), server), jsonrpc2.IOCodec(c2)
}

// sessionPair returns two connected sessions.
func sessionPair(t *testing.T, a, b *Server) (*Session, *Session) {
	t.Helper()
	s1, s2 := jsonrpc2.ServePipe()
	sa, sb := NewSession(s1, a), NewSession(s2, b)
	t.Cleanup(func() {
		sa.Close()
		sb.Close()
	})
	return sa, sb
}

func requireErrCode(t *testing.T, err error, code int) *jsonrpc2.ErrResponse {
	t.Helper()
	var errResp *jsonrpc2.ErrResponse
	require.ErrorAs(t, err, &errResp)
	require.Equal(t, code, errResp.Code, "unexpected error: %s", errResp)
	return errResp
}
