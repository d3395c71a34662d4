package jsonrpc2

import (
	"context"
	"encoding/json"
	"fmt"
)

// Listener handles inbound requests and notifications for a Channel.
type Listener interface {
	// HandleRequest must produce exactly one Response for the request. A
	// returned error is treated as an unexpected failure and masked.
	HandleRequest(ctx context.Context, req *Request, id json.RawMessage) (*Response, error)

	// HandleNotification handles a one-way message. Errors are only ever
	// observed locally.
	//
	// On a StreamChannel, notifications are handled one at a time in arrival
	// order: later notifications on the same stream wait until this returns.
	// Handlers that block must return once ctx is done, which happens when
	// the stream closes.
	HandleNotification(ctx context.Context, req *Request) error
}

// ErrContextMissingValue is returned when a context is missing an expected value.
type ErrContextMissingValue struct {
	Key channelContext
}

func (err ErrContextMissingValue) Error() string {
	return fmt.Sprintf("context missing value: %s", err.Key)
}

type channelContext string

var ctxChannel channelContext = "channel"

// CtxChannel returns the Channel a request arrived on from a context passed to
// a Listener. This is useful for initiating calls back to the caller.
func CtxChannel(ctx context.Context) (Channel, error) {
	ch, ok := ctx.Value(ctxChannel).(Channel)
	if !ok {
		return nil, ErrContextMissingValue{ctxChannel}
	}
	return ch, nil
}

// handleRequest calls the listener and converts unexpected failures, errors
// and panics alike, into a masked internal error.
func handleRequest(ctx context.Context, listener Listener, req *Request, id json.RawMessage) *Response {
	resp, err := callListener(ctx, listener, req, id)
	if err != nil {
		logger.Printf("request %s (id %s) failed: %s", req.Method, id, err)
		return &Response{Error: MaskedInternalError()}
	}
	if resp == nil {
		logger.Printf("request %s (id %s) produced no response", req.Method, id)
		return &Response{Error: MaskedInternalError()}
	}
	return resp
}

func callListener(ctx context.Context, listener Listener, req *Request, id json.RawMessage) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return listener.HandleRequest(ctx, req, id)
}

// handleNotification calls the listener, only logging failures.
func handleNotification(ctx context.Context, listener Listener, req *Request) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("notification %s panicked: %v", req.Method, r)
		}
	}()
	if err := listener.HandleNotification(ctx, req); err != nil {
		logger.Printf("notification %s failed: %s", req.Method, err)
	}
}
