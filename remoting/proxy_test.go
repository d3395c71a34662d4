package remoting

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipnode/remoting/jsonrpc2"
	"golang.org/x/sync/errgroup"
)

func TestProxyLogger(t *testing.T) {
	received := make(chan string, 2)
	s := NewServer()
	require.NoError(t, s.RegisterObject("Logger", logFuncs(received)))
	require.NoError(t, s.RegisterObject("Calc", &Calc{}))

	server, client := sessionPair(t, s, nil)
	unexpected := make(chan error, 1)
	client.Channel().OnError(func(err error) {
		unexpected <- err
	})

	logger, err := client.Discover(context.Background(), "Logger")
	require.NoError(t, err)
	log, ok := logger.Func("log")
	require.True(t, ok)
	require.NoError(t, log(context.Background(), nil, "hi"))

	select {
	case params := <-received:
		assert.JSONEq(t, `["hi"]`, params)
	case <-time.After(time.Second):
		t.Fatal("notification not received")
	}

	// Anything written back for the notification would show up as an unknown
	// response before this answer.
	calc, err := client.Proxy(calcInfo, "Calc")
	require.NoError(t, err)
	var sum int
	require.NoError(t, calc.Call(context.Background(), &sum, "add", 2, 3))
	assert.Equal(t, 5, sum)

	assert.Len(t, received, 0)
	assert.Len(t, unexpected, 0)
	assert.NotNil(t, server.Server)
}

func TestProxyOneWayWithoutListener(t *testing.T) {
	// Neither side listens, the notification is still handed to the stream.
	_, client := sessionPair(t, nil, nil)
	logger, err := client.Proxy(ServiceInfo{Methods: []MethodInfo{OneWay("log")}}, "Logger")
	require.NoError(t, err)
	require.NoError(t, logger.Call(context.Background(), nil, "log", "hi"))

	// Two-way calls get method not found instead of hanging.
	calc, err := client.Proxy(calcInfo, "")
	require.NoError(t, err)
	err = calc.Call(context.Background(), nil, "add", 2, 3)
	requireErrCode(t, err, jsonrpc2.ErrCodeMethodNotFound)
}

func TestProxyUnknownMethod(t *testing.T) {
	calc, err := NewProxy(&jsonrpc2.Local{Listener: newCalcServer(t)}, calcInfo, "")
	require.NoError(t, err)

	err = calc.Call(context.Background(), nil, "mul", 2, 3)
	assert.Equal(t, ErrUnknownMethod{RemoteID: "Calc", Method: "mul"}, err)

	_, ok := calc.Func("mul")
	assert.False(t, ok)

	funcs := calc.Funcs()
	assert.Len(t, funcs, len(calcInfo.Methods))
	var sum int
	require.NoError(t, funcs["add"](context.Background(), &sum, 1, 2))
	assert.Equal(t, 3, sum)
}

func TestNewProxyInvalid(t *testing.T) {
	_, err := NewProxy(&jsonrpc2.Local{}, ServiceInfo{}, "")
	assert.Error(t, err)
	_, err = NewProxy(nil, calcInfo, "")
	assert.Error(t, err)

	p, err := NewProxy(&jsonrpc2.Local{}, calcInfo, "Calculator")
	require.NoError(t, err)
	assert.Equal(t, "Calculator", p.RemoteID())
	assert.Equal(t, "Calculator", p.Info().RemoteID)
}

func TestProxyConcurrentCalls(t *testing.T) {
	const num = 8
	s := NewServer()
	require.NoError(t, s.RegisterObject("Sleeper", NewFuncs().Request("sleep", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var n int
		if err := DecodeParams(params, &n); err != nil {
			return nil, err
		}
		// Later calls finish first.
		time.Sleep(time.Duration(num-n) * 5 * time.Millisecond)
		return n, nil
	})))
	_, client := sessionPair(t, s, nil)

	sleeper, err := client.Discover(context.Background(), "Sleeper")
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < num; i++ {
		i := i
		g.Go(func() error {
			var got int
			if err := sleeper.Call(context.Background(), &got, "sleep", i); err != nil {
				return err
			}
			assert.Equal(t, i, got)
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
