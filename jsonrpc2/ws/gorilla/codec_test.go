package gorilla

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vipnode/remoting/jsonrpc2"
)

func TestWebSocketCodec(t *testing.T) {
	upgrader := &Upgrader{}
	serverCodecs := make(chan jsonrpc2.Codec, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		codec, err := upgrader.Upgrade(r, w, nil)
		if err != nil {
			t.Errorf("upgrade failed: %s", err)
			return
		}
		serverCodecs <- codec
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	clientCodec, err := WebSocketDial(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer clientCodec.Close()
	serverCodec := <-serverCodecs
	defer serverCodec.Close()

	if err := clientCodec.WriteMessage(&jsonrpc2.Message{
		Request: &jsonrpc2.Request{Method: "Logger/log", Params: []byte(`["hi"]`)},
	}); err != nil {
		t.Fatal(err)
	}
	msg, err := serverCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !msg.IsNotification() || string(msg.Params) != `["hi"]` {
		t.Errorf("wrong message: %v", msg)
	}

	if err := serverCodec.WriteMessage(&jsonrpc2.Message{
		Response: &jsonrpc2.Response{Result: []byte(`"ok"`)},
		ID:       []byte(`"a"`),
	}); err != nil {
		t.Fatal(err)
	}
	msg, err = clientCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(msg.ID), `"a"`; got != want {
		t.Errorf("got id %s; want %s", got, want)
	}
}
