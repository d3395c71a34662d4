package jsonrpc2

import (
	"bytes"
	"io/ioutil"
	"net"
	"strings"
	"testing"
)

func TestDebugCodec(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(&buf)
	defer SetLogger(ioutil.Discard)

	c1, c2 := net.Pipe()
	a := DebugCodec("a", IOCodec(c1))
	b := DebugCodec("b", IOCodec(c2))
	defer a.Close()
	defer b.Close()

	go a.WriteMessage(Notification(&Request{Method: "Logger/log", Params: []byte(`["hi"]`)}))
	if _, err := b.ReadMessage(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{`a -> {"method":"Logger/log"`, `b <- {"method":"Logger/log"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in log:\n%s", want, out)
		}
	}
}
