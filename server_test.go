package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vipnode/remoting/jsonrpc2"
	"github.com/vipnode/remoting/remoting"
)

// exerciseRemote runs the demo services through a dialed remote.
func exerciseRemote(t *testing.T, r *remote) {
	t.Helper()
	ctx := context.Background()

	info, err := remoting.DescribeRemote(ctx, r, "Calc")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(info.Methods), 3; got != want {
		t.Errorf("got %d methods; want %d", got, want)
	}

	calc, err := NewCalcClient(r)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := calc.Add(ctx, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 5 {
		t.Errorf("got: %v; want: 5", sum)
	}

	_, err = calc.Div(ctx, 1, 0)
	var errResp *jsonrpc2.ErrResponse
	if !errors.As(err, &errResp) || errResp.Code != errCodeDivideByZero {
		t.Errorf("expected division by zero error, got: %v", err)
	}

	logger, err := remoting.Discover(ctx, r, "Logger")
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Call(ctx, nil, "log", "hi"); err != nil {
		t.Error(err)
	}
}

func TestServeWebSocket(t *testing.T) {
	for _, impl := range []string{"gorilla", "gobwas"} {
		t.Run(impl, func(t *testing.T) {
			options := Options{WS: impl}
			handler, err := newServer(options)
			if err != nil {
				t.Fatal(err)
			}
			ts := httptest.NewServer(handler)
			defer ts.Close()

			r, err := dial(context.Background(), "ws"+strings.TrimPrefix(ts.URL, "http"), options)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			exerciseRemote(t, r)
		})
	}
}

func TestServeHTTP(t *testing.T) {
	handler, err := newServer(Options{WS: "gorilla"})
	if err != nil {
		t.Fatal(err)
	}
	handler.header.Set("Access-Control-Allow-Origin", "*")
	ts := httptest.NewServer(handler)
	defer ts.Close()

	r, err := dial(context.Background(), ts.URL, Options{})
	if err != nil {
		t.Fatal(err)
	}
	exerciseRemote(t, r)

	// GET without an upgrade is not a handshake.
	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d; want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestServeTCP(t *testing.T) {
	for _, compress := range []bool{false, true} {
		options := Options{WS: "gorilla", Compress: compress}
		handler, err := newServer(options)
		if err != nil {
			t.Fatal(err)
		}
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- handler.serveTCP(ctx, l, compress)
		}()

		r, err := dial(context.Background(), "tcp://"+l.Addr().String(), options)
		if err != nil {
			t.Fatal(err)
		}
		exerciseRemote(t, r)
		r.Close()

		cancel()
		if err := <-done; err != nil {
			t.Errorf("compress=%v: serveTCP returned: %s", compress, err)
		}
	}
}

func TestDialUnsupported(t *testing.T) {
	_, err := dial(context.Background(), "ftp://localhost/", Options{})
	var explained ErrExplain
	if !errors.As(err, &explained) {
		t.Errorf("expected explained error, got: %v", err)
	}

	if _, err := dial(context.Background(), "ws://localhost/", Options{WS: "nope"}); err == nil {
		t.Error("expected error for unknown websocket implementation")
	}
}
