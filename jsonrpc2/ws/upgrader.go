package ws

import (
	"context"
	"net/http"

	"github.com/vipnode/remoting/jsonrpc2"
)

// Upgrader takes an HTTP request, upgrades it to a websocket server and
// returns a codec interface. This allows switching between different websocket
// implementations.
type Upgrader interface {
	Upgrade(*http.Request, http.ResponseWriter, http.Header) (jsonrpc2.Codec, error)
}

// Dialer opens a client-side websocket connection and returns a codec for it.
type Dialer func(ctx context.Context, url string) (jsonrpc2.Codec, error)
