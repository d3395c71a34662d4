package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrStreamClosed is returned for calls that cannot complete because the
// underlying stream closed.
var ErrStreamClosed = errors.New("jsonrpc2: stream closed")

// ErrUnknownResponse is reported when a response arrives for a request ID
// that is not pending.
type ErrUnknownResponse struct {
	ID json.RawMessage
}

func (err ErrUnknownResponse) Error() string {
	return fmt.Sprintf("response for unknown request id: %s", err.ID)
}

// Channel sends requests and notifications. A request gets a response back,
// a notification does not.
type Channel interface {
	// SendRequest sends a request and blocks until the matching response
	// arrives. onID, if set, is called with the allocated request ID before
	// the request is written. The returned error is only set when no response
	// could be received; a response carrying an error is returned as is.
	SendRequest(ctx context.Context, req *Request, onID func(id json.RawMessage)) (*Response, error)

	// SendNotification returns as soon as the notification was handed to the
	// transport.
	SendNotification(ctx context.Context, req *Request) error

	// String returns human readable information about the channel.
	String() string
}

var _ Channel = &StreamChannel{}

// StreamChannel is a Channel over a MessageStream. Outbound requests are
// correlated with inbound responses by ID; inbound requests and notifications
// are dispatched to an optional Listener.
type StreamChannel struct {
	Client

	stream   MessageStream
	listener Listener
	pending  pendingCalls

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	onError  func(error)
	incoming map[string]context.CancelFunc

	// lastNotification is only accessed from the stream's read callback.
	lastNotification chan struct{}
}

// NewStreamChannel takes over the read callback of stream. listener may be
// nil, in which case inbound requests are answered with a method not found
// error and inbound notifications are dropped.
func NewStreamChannel(stream MessageStream, listener Listener) *StreamChannel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &StreamChannel{
		stream:   stream,
		listener: listener,
		ctx:      ctx,
		cancel:   cancel,
		incoming: map[string]context.CancelFunc{},
	}
	go c.watchClose()
	stream.SetReadCallback(c.processMessage)
	return c
}

// OnError sets the handler for protocol errors that have no caller to be
// returned to, such as responses with an unknown ID. They are logged by
// default.
func (c *StreamChannel) OnError(fn func(error)) {
	c.mu.Lock()
	c.onError = fn
	c.mu.Unlock()
}

func (c *StreamChannel) reportError(err error) {
	c.mu.Lock()
	fn := c.onError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
		return
	}
	logger.Printf("%s: %s", c, err)
}

func (c *StreamChannel) watchClose() {
	<-c.stream.Closed()
	c.cancel()
	err := ErrStreamClosed
	if reason := c.stream.Err(); reason != nil && reason != io.EOF {
		err = fmt.Errorf("%w: %s", ErrStreamClosed, reason)
	}
	c.pending.closeAll(err)
}

// SendRequest assigns the next ID, calls onID, registers the pending call and
// then writes the request.
func (c *StreamChannel) SendRequest(ctx context.Context, req *Request, onID func(id json.RawMessage)) (*Response, error) {
	msg := c.Client.Request(req)
	if onID != nil {
		onID(msg.ID)
	}
	key := string(msg.ID)
	respChan, err := c.pending.add(key)
	if err != nil {
		return nil, err
	}
	if err := c.stream.Write(msg); err != nil {
		c.pending.remove(key)
		return nil, err
	}

	select {
	case r := <-respChan:
		return r.resp, r.err
	case <-ctx.Done():
		// Giving up is local, a late response is reported as unknown.
		c.pending.remove(key)
		return nil, ctx.Err()
	}
}

func (c *StreamChannel) SendNotification(ctx context.Context, req *Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.stream.Write(Notification(req))
}

// CancelIncoming cancels the context of an inbound request that is still
// being handled. It returns false if no such request is in flight.
func (c *StreamChannel) CancelIncoming(id json.RawMessage) bool {
	c.mu.Lock()
	cancel, ok := c.incoming[string(id)]
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// processMessage is the stream's read callback. It must not block on IO, the
// read path keeps accepting messages while earlier ones are handled.
func (c *StreamChannel) processMessage(msg *Message) {
	switch {
	case msg.IsNotification():
		c.processNotification(msg.Request)
	case msg.IsRequest():
		go c.processRequest(msg)
	case msg.IsResponse():
		if !c.pending.resolve(string(msg.ID), msg.Response) {
			c.reportError(ErrUnknownResponse{ID: msg.ID})
		}
	default:
		logger.Printf("%s: dropping invalid message: %s", c, msg)
	}
}

// processNotification hands notifications to the listener without blocking
// the read path. Each one waits for the previous one to be handled, so a
// handler that never returns stalls later notifications, not requests.
func (c *StreamChannel) processNotification(req *Request) {
	if c.listener == nil {
		logger.Printf("%s: no listener, dropping notification: %s", c, req.Method)
		return
	}
	prev := c.lastNotification
	done := make(chan struct{})
	c.lastNotification = done

	ctx := context.WithValue(c.ctx, ctxChannel, c)
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		handleNotification(ctx, c.listener, req)
	}()
}

func (c *StreamChannel) processRequest(msg *Message) {
	var resp *Response
	if c.listener == nil {
		resp = &Response{Error: &ErrResponse{
			Code:    ErrCodeMethodNotFound,
			Message: "this endpoint does not listen for requests or notifications",
		}}
	} else {
		key := string(msg.ID)
		ctx, cancel := context.WithCancel(context.WithValue(c.ctx, ctxChannel, c))
		c.mu.Lock()
		c.incoming[key] = cancel
		c.mu.Unlock()

		resp = handleRequest(ctx, c.listener, msg.Request, msg.ID)

		c.mu.Lock()
		delete(c.incoming, key)
		c.mu.Unlock()
		cancel()
	}

	reply := &Message{
		Response: resp,
		ID:       msg.ID,
		Version:  Version,
	}
	if err := c.stream.Write(reply); err != nil {
		logger.Printf("%s: failed to write response for id %s: %s", c, msg.ID, err)
	}
}

func (c *StreamChannel) String() string {
	return "StreamChannel/" + c.stream.String()
}
