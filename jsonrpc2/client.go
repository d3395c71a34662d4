package jsonrpc2

import (
	"encoding/json"
	"strconv"
	"sync/atomic"
)

// Client allocates request IDs. IDs are never reused for the lifetime of a
// Client, so they stay unique among outstanding calls.
type Client struct {
	id int64
}

// NextID returns the next request ID as a JSON number.
func (c *Client) NextID() json.RawMessage {
	return json.RawMessage(strconv.FormatInt(atomic.AddInt64(&c.id, 1), 10))
}

// Request wraps req into a Message with a freshly allocated ID.
func (c *Client) Request(req *Request) *Message {
	return &Message{
		Request: req,
		ID:      c.NextID(),
		Version: Version,
	}
}

// Notification wraps req into a Message without an ID.
func Notification(req *Request) *Message {
	return &Message{
		Request: req,
		Version: Version,
	}
}
