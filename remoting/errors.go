package remoting

import (
	"encoding/json"
	"fmt"

	"github.com/vipnode/remoting/jsonrpc2"
)

// ServiceError is an application error raised on purpose by a service. It is
// sent to the caller verbatim, unlike any other error which gets masked.
type ServiceError struct {
	Code    int
	Message string
	Data    interface{}
}

// Errorf returns a ServiceError with the given code and formatted message.
func Errorf(code int, format string, args ...interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (err *ServiceError) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

// ErrorCode returns the error code sent on the wire.
func (err *ServiceError) ErrorCode() int {
	return err.Code
}

func (err *ServiceError) errResponse() *jsonrpc2.ErrResponse {
	resp := &jsonrpc2.ErrResponse{
		Code:    err.Code,
		Message: err.Message,
	}
	if err.Data != nil {
		data, marshalErr := json.Marshal(err.Data)
		if marshalErr != nil {
			logger.Printf("dropping unserializable error data for %q: %s", err.Message, marshalErr)
		} else {
			resp.Data = data
		}
	}
	return resp
}

func methodNotFound(format string, args ...interface{}) *jsonrpc2.ErrResponse {
	return &jsonrpc2.ErrResponse{
		Code:    jsonrpc2.ErrCodeMethodNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

func invalidParams(format string, args ...interface{}) *ServiceError {
	return Errorf(jsonrpc2.ErrCodeInvalidParams, format, args...)
}

// ErrUnknownMethod is returned by a Proxy for a method that is not part of
// its ServiceInfo. Nothing is sent in that case.
type ErrUnknownMethod struct {
	RemoteID string
	Method   string
}

func (err ErrUnknownMethod) Error() string {
	return fmt.Sprintf("unknown method %q on remote service %q", err.Method, err.RemoteID)
}
