package jsonrpc2

import (
	"errors"
	"testing"
)

func TestPendingCalls(t *testing.T) {
	var p pendingCalls

	ch1, err := p.add("1")
	if err != nil {
		t.Fatal(err)
	}
	ch2, err := p.add("2")
	if err != nil {
		t.Fatal(err)
	}

	if !p.resolve("2", &Response{Result: []byte("2")}) {
		t.Error("failed to resolve pending call 2")
	}
	if p.resolve("2", &Response{}) {
		t.Error("resolved call 2 twice")
	}
	if got := string((<-ch2).resp.Result); got != "2" {
		t.Errorf("got: %s; want: 2", got)
	}

	closeErr := errors.New("closed")
	p.closeAll(closeErr)
	if got := (<-ch1).err; got != closeErr {
		t.Errorf("got: %v; want: %v", got, closeErr)
	}
	if got, want := p.len(), 0; got != want {
		t.Errorf("got: %d pending; want: %d", got, want)
	}
	if _, err := p.add("3"); err != closeErr {
		t.Errorf("add after close: got %v; want %v", err, closeErr)
	}
}
