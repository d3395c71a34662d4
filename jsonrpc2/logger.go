package jsonrpc2

import (
	"io"
	"io/ioutil"
	"log"
)

// logger reports failures that have no caller to return to: notification
// errors, recovered handler panics and undeliverable responses. Output is
// discarded until SetLogger is called.
var logger = newLogger(ioutil.Discard)

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[jsonrpc2] ", log.Flags())
}

// SetLogger redirects this package's diagnostics to w.
func SetLogger(w io.Writer) {
	logger = newLogger(w)
}
