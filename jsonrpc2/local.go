package jsonrpc2

import (
	"context"
	"encoding/json"
)

var _ Channel = &Local{}

// Local is a Channel implementation for an in-process Listener. It's like a
// StreamChannel, but without a stream: failures are masked and notification
// errors stay local the same way.
type Local struct {
	Client
	Listener Listener
}

func (loc *Local) SendRequest(ctx context.Context, req *Request, onID func(id json.RawMessage)) (*Response, error) {
	id := loc.NextID()
	if onID != nil {
		onID(id)
	}
	ctx = context.WithValue(ctx, ctxChannel, loc)
	return handleRequest(ctx, loc.Listener, req, id), nil
}

// SendNotification runs the listener before returning. Its failures are
// logged, never returned.
func (loc *Local) SendNotification(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = context.WithValue(ctx, ctxChannel, loc)
	handleNotification(ctx, loc.Listener, req)
	return nil
}

func (loc *Local) String() string {
	return "Local"
}
