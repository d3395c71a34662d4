package jsonrpc2

import (
	"encoding/json"
	"io"
	"net"

	"github.com/golang/snappy"
)

// Codec is an abstraction for receiving and sending JSONRPC messages over a
// transport. ReadMessage is called from a single goroutine; WriteMessage
// callers must serialize their writes (CodecStream does).
type Codec interface {
	ReadMessage() (*Message, error)
	WriteMessage(*Message) error
	Close() error
	RemoteAddr() string
}

var _ Codec = &jsonCodec{}

// IOCodec returns a Codec that wraps newline-delimited JSON encoding and
// decoding over IO.
func IOCodec(rwc io.ReadWriteCloser) *jsonCodec {
	return &jsonCodec{
		decoder:    json.NewDecoder(rwc),
		encoder:    json.NewEncoder(rwc),
		closer:     rwc,
		remoteAddr: remoteAddr(rwc),
	}
}

func remoteAddr(rwc interface{}) string {
	if conn, ok := rwc.(net.Conn); ok && conn.RemoteAddr() != nil {
		return conn.RemoteAddr().String()
	}
	return ""
}

type jsonCodec struct {
	decoder    *json.Decoder
	encoder    *json.Encoder
	closer     io.Closer
	remoteAddr string
}

func (codec *jsonCodec) ReadMessage() (*Message, error) {
	var msg Message
	if err := codec.decoder.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (codec *jsonCodec) WriteMessage(msg *Message) error {
	return codec.encoder.Encode(msg)
}

func (codec *jsonCodec) Close() error {
	if codec.closer == nil {
		return nil
	}
	return codec.closer.Close()
}

func (codec *jsonCodec) RemoteAddr() string {
	return codec.remoteAddr
}

// SnappyCodec returns a Codec that wraps JSON encoding and decoding inside a
// snappy framed stream. Every message is flushed as it is written.
func SnappyCodec(rwc io.ReadWriteCloser) *snappyCodec {
	w := snappy.NewBufferedWriter(rwc)
	return &snappyCodec{
		jsonCodec: jsonCodec{
			decoder:    json.NewDecoder(snappy.NewReader(rwc)),
			encoder:    json.NewEncoder(w),
			closer:     rwc,
			remoteAddr: remoteAddr(rwc),
		},
		w: w,
	}
}

var _ Codec = &snappyCodec{}

// snappyCodec closes only the transport; everything written has already been
// flushed by WriteMessage.
type snappyCodec struct {
	jsonCodec
	w *snappy.Writer
}

func (codec *snappyCodec) WriteMessage(msg *Message) error {
	if err := codec.jsonCodec.WriteMessage(msg); err != nil {
		return err
	}
	return codec.w.Flush()
}

