package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/vipnode/remoting/jsonrpc2"
	"github.com/vipnode/remoting/jsonrpc2/ws"
	"github.com/vipnode/remoting/jsonrpc2/ws/gobwas"
	"github.com/vipnode/remoting/jsonrpc2/ws/gorilla"
	"github.com/vipnode/remoting/remoting"
	"golang.org/x/sync/errgroup"
)

func wsUpgrader(name string) (ws.Upgrader, error) {
	switch name {
	case "gorilla":
		return &gorilla.Upgrader{}, nil
	case "gobwas":
		return &gobwas.Upgrader{}, nil
	}
	return nil, fmt.Errorf("unknown websocket implementation: %s", name)
}

// server answers HTTP POST with the shared HTTPServer listener, and gives
// every websocket or raw TCP connection a session of its own.
type server struct {
	jsonrpc2.HTTPServer
	ws       ws.Upgrader
	services func() (*remoting.Server, error)
	debugLog bool
	header   http.Header
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		// Assume RPC over HTTP
		for k, values := range s.header {
			for _, v := range values {
				w.Header().Set(k, v)
			}
		}
		s.HTTPServer.ServeHTTP(w, r)
	case http.MethodGet:
		if !strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") {
			http.Error(w, "incorrect remoting api handshake", http.StatusBadRequest)
			return
		}
		// Assume WebSocket upgrade request
		codec, err := s.ws.Upgrade(r, w, nil)
		if err != nil {
			logger.Debugf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		s.serveStream(r.RemoteAddr, codec)
	default:
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}

// serveStream blocks until the connection closes.
func (s *server) serveStream(label string, codec jsonrpc2.Codec) {
	if s.debugLog {
		codec = jsonrpc2.DebugCodec(label, codec)
	}
	services, err := s.services()
	if err != nil {
		logger.Warningf("Failed to set up services for %s: %s", label, err)
		codec.Close()
		return
	}
	session := remoting.NewSession(jsonrpc2.NewCodecStream(codec), services)
	logger.Debugf("Session started: %s", label)
	if err := session.Wait(); err != nil && err != io.EOF {
		logger.Warningf("Session %s closed: %s", label, err)
		return
	}
	logger.Debugf("Session closed: %s", label)
}

// serveTCP accepts raw TCP streams until ctx is done.
func (s *server) serveTCP(ctx context.Context, l net.Listener, compress bool) error {
	go func() {
		<-ctx.Done()
		l.Close()
	}()
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.serveStream(conn.RemoteAddr().String(), streamCodec(conn, compress))
	}
}

func newServer(options Options) (*server, error) {
	upgrader, err := wsUpgrader(options.WS)
	if err != nil {
		return nil, err
	}
	shared, err := demoServices()
	if err != nil {
		return nil, err
	}
	handler := &server{
		HTTPServer: jsonrpc2.HTTPServer{
			Listener:         shared,
			MaxContentLength: 1 << 20,
		},
		ws:       upgrader,
		services: demoServices,
		debugLog: options.Debug,
		header:   http.Header{},
	}
	if options.Serve.AllowOrigin != "" {
		handler.header.Set("Access-Control-Allow-Origin", options.Serve.AllowOrigin)
	}
	return handler, nil
}

func runServe(options Options) error {
	handler, err := newServer(options)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	httpServer := &http.Server{
		Addr:    options.Serve.Bind,
		Handler: handler,
	}
	g.Go(func() error {
		logger.Infof("Serving (version %s) on: ws://%s and http://%s", Version, options.Serve.Bind, options.Serve.Bind)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	})

	if options.Serve.TCP != "" {
		l, err := net.Listen("tcp", options.Serve.TCP)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		compression := ""
		if options.Compress {
			compression = " (snappy)"
		}
		logger.Infof("Serving raw streams on: tcp://%s%s", l.Addr(), compression)
		g.Go(func() error {
			return handler.serveTCP(ctx, l, options.Compress)
		})
	}

	return g.Wait()
}
