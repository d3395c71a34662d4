package remoting

import (
	"context"

	"github.com/vipnode/remoting/jsonrpc2"
)

// Session is the remoting state of one connection: a Server answering the
// peer and a StreamChannel for calling it, sharing a single MessageStream.
type Session struct {
	Server *Server

	stream  jsonrpc2.MessageStream
	channel *jsonrpc2.StreamChannel
}

// NewSession takes over stream. With a nil server the session only makes
// calls and the peer's calls fail with method not found.
func NewSession(stream jsonrpc2.MessageStream, server *Server) *Session {
	var listener jsonrpc2.Listener
	if server != nil {
		listener = server
	}
	return &Session{
		Server:  server,
		stream:  stream,
		channel: jsonrpc2.NewStreamChannel(stream, listener),
	}
}

// Channel returns the channel for calling the peer.
func (s *Session) Channel() *jsonrpc2.StreamChannel {
	return s.channel
}

// Proxy builds a proxy for a remote service with known descriptors.
func (s *Session) Proxy(info ServiceInfo, remoteID string) (*Proxy, error) {
	return NewProxy(s.channel, info, remoteID)
}

// Discover asks the peer for the descriptors of remoteID and builds a proxy.
func (s *Session) Discover(ctx context.Context, remoteID string) (*Proxy, error) {
	return Discover(ctx, s.channel, remoteID)
}

// Wait blocks until the stream closes and returns the reason, nil after a
// local Close.
func (s *Session) Wait() error {
	<-s.stream.Closed()
	return s.stream.Err()
}

func (s *Session) Close() error {
	return s.stream.Close()
}

func (s *Session) String() string {
	return "Session/" + s.stream.String()
}
