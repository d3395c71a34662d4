package jsonrpc2

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"
)

func bufferRWC(buf *bytes.Buffer) io.ReadWriteCloser {
	return struct {
		io.Reader
		io.Writer
		io.Closer
	}{
		Reader: buf,
		Writer: buf,
		Closer: ioutil.NopCloser(buf),
	}
}

func TestCodec(t *testing.T) {
	var buf bytes.Buffer
	codec := IOCodec(bufferRWC(&buf))
	msg := &Message{
		ID:      []byte("42"),
		Version: "2.0",
		Request: &Request{Method: "Calc/add", Params: []byte("[2,3]")},
	}
	err := codec.WriteMessage(msg)
	if err != nil {
		t.Fatal(err)
	}
	msg2, err := codec.ReadMessage()
	if err != nil {
		t.Error(err)
	}

	assertEqualJSON(t, msg2, msg, "io codec round trip")
}

func TestSnappyCodec(t *testing.T) {
	var buf bytes.Buffer
	codec := SnappyCodec(bufferRWC(&buf))

	sent := []*Message{
		{ID: []byte("1"), Request: &Request{Method: "Calc/add", Params: []byte("[2,3]")}},
		{Request: &Request{Method: "Logger/log", Params: []byte(`["hi"]`)}},
		{ID: []byte("1"), Response: &Response{Result: []byte("5")}},
	}
	for _, msg := range sent {
		if err := codec.WriteMessage(msg); err != nil {
			t.Fatal(err)
		}
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("\xff\x06\x00\x00sNaPpY")) {
		t.Errorf("missing snappy stream identifier: %q", buf.Bytes())
	}

	for i, want := range sent {
		got, err := codec.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		assertEqualJSON(t, got, want, "message %d", i)
	}
}
