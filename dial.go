package main

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/vipnode/remoting/jsonrpc2"
	"github.com/vipnode/remoting/jsonrpc2/ws"
	"github.com/vipnode/remoting/jsonrpc2/ws/gobwas"
	"github.com/vipnode/remoting/jsonrpc2/ws/gorilla"
	"github.com/vipnode/remoting/remoting"
)

var wsDialers = map[string]ws.Dialer{
	"gorilla": gorilla.WebSocketDial,
	"gobwas":  gobwas.WebSocketDial,
}

// remote is a dialed endpoint. Stream transports get a session, the HTTP
// binding has nothing to close.
type remote struct {
	jsonrpc2.Channel
	session *remoting.Session
}

func (r *remote) Close() error {
	if r.session == nil {
		return nil
	}
	return r.session.Close()
}

func streamCodec(conn net.Conn, compress bool) jsonrpc2.Codec {
	if compress {
		return jsonrpc2.SnappyCodec(conn)
	}
	return jsonrpc2.IOCodec(conn)
}

// dial connects to a ws://, wss://, http://, https:// or tcp:// endpoint.
func dial(ctx context.Context, uri string, options Options) (*remote, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, err
	}

	var codec jsonrpc2.Codec
	switch u.Scheme {
	case "http", "https":
		return &remote{Channel: &jsonrpc2.HTTPChannel{Endpoint: uri}}, nil
	case "ws", "wss":
		dialer, ok := wsDialers[options.WS]
		if !ok {
			return nil, fmt.Errorf("unknown websocket implementation: %s", options.WS)
		}
		codec, err = dialer(ctx, uri)
	case "tcp":
		var d net.Dialer
		var conn net.Conn
		conn, err = d.DialContext(ctx, "tcp", u.Host)
		if err == nil {
			codec = streamCodec(conn, options.Compress)
		}
	default:
		return nil, ErrExplain{
			fmt.Errorf("unsupported url scheme: %q", u.Scheme),
			"Use a ws://, wss://, http://, https:// or tcp:// URL.",
		}
	}
	if err != nil {
		return nil, ErrExplain{err, fmt.Sprintf("Failed to connect to %s, make sure it is running.", uri)}
	}

	if options.Debug {
		codec = jsonrpc2.DebugCodec(uri, codec)
	}
	logger.Infof("Connected: %s", uri)
	session := remoting.NewSession(jsonrpc2.NewCodecStream(codec), nil)
	return &remote{
		Channel: session.Channel(),
		session: session,
	}, nil
}
