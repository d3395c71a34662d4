package gobwas

import (
	"net"
	"testing"

	"github.com/vipnode/remoting/jsonrpc2"
)

func TestWebSocketCodec(t *testing.T) {
	c1, c2 := net.Pipe()

	clientCodec := clientWebSocketCodec(c1)
	serverCodec := serverWebSocketCodec(c2)

	go clientCodec.WriteMessage(&jsonrpc2.Message{
		Request: &jsonrpc2.Request{Method: "Calc/add"},
		ID:      []byte("1"),
	})
	msg, err := serverCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !msg.IsRequest() || msg.Method != "Calc/add" {
		t.Errorf("wrong message: %v", msg)
	}

	go serverCodec.WriteMessage(&jsonrpc2.Message{
		Response: &jsonrpc2.Response{Result: []byte("5")},
		ID:       []byte("1"),
	})
	msg, err = clientCodec.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if !msg.IsResponse() || string(msg.Result) != "5" {
		t.Errorf("wrong message: %v", msg)
	}
}
