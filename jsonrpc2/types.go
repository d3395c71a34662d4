package jsonrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
)

const Version = "2.0"

const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeServer         = -32000
)

// maskedInternalMessage is the only text a peer ever sees for an unexpected
// handler failure.
const maskedInternalMessage = "an unexpected error occurred"

// ErrInvalidMessage is returned when a decoded message is neither a request,
// notification, nor response.
var ErrInvalidMessage = errors.New("jsonrpc2: invalid message")

// Request is the method invocation part of a message. A Message carrying a
// Request without an ID is a notification.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// NewRequest returns a Request with the given params encoded as a positional
// array.
func NewRequest(method string, params ...interface{}) (*Request, error) {
	if params == nil {
		params = []interface{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Request{Method: method, Params: raw}, nil
}

// Response is the reply part of a message. Exactly one of Result or Error is
// set on the wire; an empty Result is sent as null.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrResponse    `json:"error,omitempty"`
}

// UnmarshalResult decodes the response result into result, or returns the
// response error if one is set.
func (resp *Response) UnmarshalResult(result interface{}) error {
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		// No result
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// ErrResponse is a structured, machine-readable error carried by a Response.
type ErrResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (err *ErrResponse) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

// ErrorCode returns the JSONRPC error code.
func (err *ErrResponse) ErrorCode() int {
	return err.Code
}

// MaskedInternalError returns the generic error sent in place of an
// unexpected handler failure. The original error never leaves the process.
func MaskedInternalError() *ErrResponse {
	return &ErrResponse{
		Code:    ErrCodeInternal,
		Message: maskedInternalMessage,
	}
}

// Message is a single JSONRPC message: a Request (with ID), a Notification
// (Request without ID), or a Response.
type Message struct {
	*Request
	*Response

	ID      json.RawMessage
	Version string
}

// IsNotification returns true for a request without an ID.
func (m *Message) IsNotification() bool {
	return m.Request != nil && m.ID == nil
}

// IsRequest returns true for a request that expects a response.
func (m *Message) IsRequest() bool {
	return m.Request != nil && m.ID != nil
}

// IsResponse returns true for a response message.
func (m *Message) IsResponse() bool {
	return m.Request == nil && m.Response != nil
}

func (m *Message) String() string {
	out, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("<invalid message: %s>", err)
	}
	return string(out)
}

// wireMessage is the flat JSON layout of a Message.
type wireMessage struct {
	Method  *string         `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrResponse    `json:"error,omitempty"`
	Version string          `json:"jsonrpc,omitempty"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{
		ID:      m.ID,
		Version: m.Version,
	}
	if m.Request != nil {
		w.Method = &m.Request.Method
		w.Params = m.Request.Params
		if len(w.Params) == 0 {
			w.Params = json.RawMessage("[]")
		}
	} else if m.Response != nil {
		w.Error = m.Response.Error
		w.Result = m.Response.Result
		if w.Error != nil {
			w.Result = nil
		} else if len(w.Result) == 0 {
			w.Result = json.RawMessage("null")
		}
		if len(w.ID) == 0 {
			// Responses always carry an id, null when it could not be determined.
			w.ID = json.RawMessage("null")
		}
	}
	return json.Marshal(w)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		ID:      w.ID,
		Version: w.Version,
	}
	switch {
	case w.Method != nil:
		m.Request = &Request{
			Method: *w.Method,
			Params: w.Params,
		}
	case w.Error != nil:
		m.Response = &Response{Error: w.Error}
	case len(w.Result) > 0:
		m.Response = &Response{Result: w.Result}
	default:
		return ErrInvalidMessage
	}
	return nil
}
