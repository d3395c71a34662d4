package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const httpContentType = "application/json"

var _ http.Handler = &HTTPServer{}

// HTTPServer serves one JSONRPC message per POST by implementing
// http.Handler. Requests are answered in the body, notifications with an
// empty 204 response.
type HTTPServer struct {
	Listener Listener

	// MaxContentLength is the request size limit (optional)
	MaxContentLength int64
}

func (h *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.MaxContentLength > 0 && r.ContentLength > h.MaxContentLength {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var body io.Reader = r.Body
	if h.MaxContentLength > 0 {
		body = io.LimitReader(r.Body, h.MaxContentLength)
	}
	defer r.Body.Close()

	var msg Message
	if err := json.NewDecoder(body).Decode(&msg); err != nil {
		code := ErrCodeParse
		if errors.Is(err, ErrInvalidMessage) {
			code = ErrCodeInvalidRequest
		}
		h.writeMessage(w, http.StatusBadRequest, &Message{
			Response: &Response{Error: &ErrResponse{
				Code:    code,
				Message: fmt.Sprintf("failed to parse request: %s", err),
			}},
			Version: Version,
		})
		return
	}

	switch {
	case msg.IsNotification():
		handleNotification(r.Context(), h.Listener, msg.Request)
		w.WriteHeader(http.StatusNoContent)
	case msg.IsRequest():
		resp := handleRequest(r.Context(), h.Listener, msg.Request, msg.ID)
		h.writeMessage(w, http.StatusOK, &Message{
			Response: resp,
			ID:       msg.ID,
			Version:  Version,
		})
	default:
		h.writeMessage(w, http.StatusBadRequest, &Message{
			Response: &Response{Error: &ErrResponse{
				Code:    ErrCodeInvalidRequest,
				Message: "expected a request or notification",
			}},
			ID:      msg.ID,
			Version: Version,
		})
	}
}

func (h *HTTPServer) writeMessage(w http.ResponseWriter, status int, msg *Message) {
	w.Header().Set("Content-Type", httpContentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		logger.Printf("HTTPServer: failed to write response: %s", err)
	}
}

var _ Channel = &HTTPChannel{}

// HTTPChannel is a Channel that POSTs every message to an HTTPServer
// endpoint.
type HTTPChannel struct {
	Client
	HTTPClient http.Client

	// Endpoint is the HTTP URL to dial for RPC calls.
	Endpoint string
	// MaxContentLength is the response size limit (optional)
	MaxContentLength int64
}

func (service *HTTPChannel) post(ctx context.Context, msg *Message) (*http.Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, service.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", httpContentType)
	req.Header.Set("Accept", httpContentType)
	req = req.WithContext(ctx)

	resp, err := service.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
		}
	}
	return resp, nil
}

func (service *HTTPChannel) SendRequest(ctx context.Context, req *Request, onID func(id json.RawMessage)) (*Response, error) {
	msg := service.Client.Request(req)
	if onID != nil {
		onID(msg.ID)
	}
	resp, err := service.post(ctx, msg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if service.MaxContentLength > 0 && resp.ContentLength > service.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}

	var r io.Reader = resp.Body
	if service.MaxContentLength > 0 {
		r = io.LimitReader(resp.Body, service.MaxContentLength)
	}

	var respMsg Message
	if err := json.NewDecoder(r).Decode(&respMsg); err != nil {
		return nil, err
	}
	if !respMsg.IsResponse() {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "missing response in RPC message",
		}
	}
	if string(respMsg.ID) != string(msg.ID) {
		return nil, ErrUnknownResponse{ID: respMsg.ID}
	}
	return respMsg.Response, nil
}

func (service *HTTPChannel) SendNotification(ctx context.Context, req *Request) error {
	resp, err := service.post(ctx, Notification(req))
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (service *HTTPChannel) String() string {
	return "HTTPChannel/" + service.Endpoint
}

// HTTPRequestError is used when RPC over HTTP encounters an error during transport.
type HTTPRequestError struct {
	Response *http.Response
	Reason   string
}

func (err HTTPRequestError) Error() string {
	return fmt.Sprintf("http rpc request error: %s", err.Reason)
}
