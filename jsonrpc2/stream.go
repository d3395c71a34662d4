package jsonrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// MessageStream is a duplex message transport with callback-based read
// delivery and a close signal.
type MessageStream interface {
	// SetReadCallback installs the handler for inbound messages, or removes it
	// when nil. Messages that arrive while no callback is installed are queued
	// and delivered in arrival order once one is. The callback is never
	// invoked from within SetReadCallback, and it must not call
	// SetReadCallback itself.
	SetReadCallback(callback func(*Message))

	// Write hands a message to the transport. It returns once the transport
	// accepted the message, or with the transport's error.
	Write(*Message) error

	// Closed is closed when the transport disconnects.
	Closed() <-chan struct{}

	// Err returns the reason the stream closed: nil while open or after a
	// local Close, io.EOF for an orderly remote disconnect.
	Err() error

	// Close tears down the transport.
	Close() error

	// String returns human readable information about the stream.
	String() string
}

var _ MessageStream = &CodecStream{}

// CodecStream is a MessageStream that reads from a Codec in its own
// goroutine.
type CodecStream struct {
	codec Codec

	deliverMu sync.Mutex
	callback  func(*Message)
	unread    []*Message

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
	err       error
}

// NewCodecStream starts reading from codec. Messages are queued until a read
// callback is installed.
func NewCodecStream(codec Codec) *CodecStream {
	s := &CodecStream{
		codec:  codec,
		closed: make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// ServePipe returns two connected streams over a net.Pipe(). Useful for
// testing.
func ServePipe() (*CodecStream, *CodecStream) {
	c1, c2 := net.Pipe()
	return NewCodecStream(IOCodec(c1)), NewCodecStream(IOCodec(c2))
}

func (s *CodecStream) readLoop() {
	for {
		msg, err := s.codec.ReadMessage()
		if errors.Is(err, ErrInvalidMessage) {
			logger.Printf("%s: dropping invalid message", s)
			continue
		}
		if err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				// The decoder cannot resynchronize after a syntax error, tell the
				// peer why we are hanging up.
				_ = s.Write(&Message{
					Response: &Response{Error: &ErrResponse{
						Code:    ErrCodeParse,
						Message: fmt.Sprintf("parse error: %s", err),
					}},
					Version: Version,
				})
			}
			s.shutdown(err)
			return
		}
		s.deliver(msg)
	}
}

func (s *CodecStream) deliver(msg *Message) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if s.callback != nil && len(s.unread) == 0 {
		s.callback(msg)
		return
	}
	s.unread = append(s.unread, msg)
}

func (s *CodecStream) flush() {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	for len(s.unread) > 0 && s.callback != nil {
		msg := s.unread[0]
		s.unread[0] = nil
		s.unread = s.unread[1:]
		s.callback(msg)
	}
}

func (s *CodecStream) SetReadCallback(callback func(*Message)) {
	s.deliverMu.Lock()
	s.callback = callback
	queued := callback != nil && len(s.unread) > 0
	s.deliverMu.Unlock()

	if queued {
		go s.flush()
	}
}

func (s *CodecStream) Write(msg *Message) error {
	select {
	case <-s.closed:
		return ErrStreamClosed
	default:
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.codec.WriteMessage(msg)
}

func (s *CodecStream) Closed() <-chan struct{} {
	return s.closed
}

func (s *CodecStream) Err() error {
	select {
	case <-s.closed:
		return s.err
	default:
		return nil
	}
}

func (s *CodecStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.codec.Close()
		close(s.closed)
	})
	return err
}

// shutdown records why the transport went away and closes the stream.
func (s *CodecStream) shutdown(reason error) {
	s.closeOnce.Do(func() {
		if reason != io.EOF {
			logger.Printf("%s: read failed: %s", s, reason)
		}
		s.err = reason
		s.codec.Close()
		close(s.closed)
	})
}

func (s *CodecStream) String() string {
	if addr := s.codec.RemoteAddr(); addr != "" {
		return "stream@" + addr
	}
	return "stream"
}
