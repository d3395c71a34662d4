package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// testListener answers requests from a method table and records
// notifications.
type testListener struct {
	methods map[string]func(ctx context.Context, params json.RawMessage) (interface{}, error)

	mu            sync.Mutex
	notifications []*Request
	notified      chan *Request
}

func newTestListener() *testListener {
	return &testListener{
		methods:  map[string]func(ctx context.Context, params json.RawMessage) (interface{}, error){},
		notified: make(chan *Request, 16),
	}
}

func (l *testListener) HandleRequest(ctx context.Context, req *Request, id json.RawMessage) (*Response, error) {
	fn, ok := l.methods[req.Method]
	if !ok {
		return &Response{Error: &ErrResponse{Code: ErrCodeMethodNotFound, Message: "method not found: " + req.Method}}, nil
	}
	res, err := fn(ctx, req.Params)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return &Response{Result: raw}, nil
}

func (l *testListener) HandleNotification(ctx context.Context, req *Request) error {
	l.mu.Lock()
	l.notifications = append(l.notifications, req)
	l.mu.Unlock()
	l.notified <- req
	if req.Method == "fail" {
		return errors.New("notification failure")
	}
	return nil
}

func addParams(params json.RawMessage) (int, int, error) {
	var args []int
	if err := json.Unmarshal(params, &args); err != nil {
		return 0, 0, err
	}
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected 2 args, got %d", len(args))
	}
	return args[0], args[1], nil
}

func assertEqualJSON(t *testing.T, a, b interface{}, format string, args ...interface{}) {
	t.Helper()

	aa, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(aa, bb) {
		prefix := fmt.Sprintf(format, args...)
		t.Errorf(prefix+"\n   got: %q\n  want: %q", aa, bb)
	}
}

func mustRequest(t *testing.T, method string, params ...interface{}) *Request {
	t.Helper()
	req, err := NewRequest(method, params...)
	if err != nil {
		t.Fatal(err)
	}
	return req
}
