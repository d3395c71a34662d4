package remoting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vipnode/remoting/jsonrpc2"
)

const (
	// MetaServiceID is the reserved remote ID of the describe service every
	// Server answers on.
	MetaServiceID = "$remotingServer"
	// DescribeMethod returns the ServiceInfo of a registered remote ID.
	DescribeMethod = "getObjectInfo"
)

var metaInfo = ServiceInfo{
	RemoteID: MetaServiceID,
	Methods:  []MethodInfo{TwoWay(DescribeMethod)},
}

type registration struct {
	info      ServiceInfo
	reflector Reflector
	target    interface{}
}

var _ jsonrpc2.Listener = &Server{}

// Server is a jsonrpc2.Listener dispatching compound methods to registered
// services. The zero value is ready to use.
type Server struct {
	mu       sync.RWMutex
	services map[string]registration
	meta     registration
}

// NewServer returns an empty Server.
func NewServer() *Server {
	return &Server{}
}

// init must be called with mu held for writing.
func (s *Server) init() {
	if s.services != nil {
		return
	}
	s.services = map[string]registration{}
	meta := NewFuncs().Request(DescribeMethod, s.describeFunc)
	s.meta = registration{
		info:      metaInfo,
		reflector: meta,
	}
}

// Register makes target callable as remoteID through reflector. A previous
// registration of remoteID is replaced.
func (s *Server) Register(remoteID string, reflector Reflector, target interface{}) error {
	if remoteID == "" {
		return errors.New("remote id must not be empty")
	}
	if strings.Contains(remoteID, methodSeparator) {
		return fmt.Errorf("remote id must not contain %q: %s", methodSeparator, remoteID)
	}
	if remoteID == MetaServiceID {
		return fmt.Errorf("remote id is reserved: %s", remoteID)
	}
	if reflector == nil {
		return errors.New("reflector must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	s.services[remoteID] = registration{
		info: ServiceInfo{
			RemoteID: remoteID,
			Methods:  reflector.Methods(),
		},
		reflector: reflector,
		target:    target,
	}
	return nil
}

// RegisterObject registers target as remoteID. The target either implements
// Reflector itself, like Funcs, or describes its methods with Describer and
// gets a TypedReflector.
func (s *Server) RegisterObject(remoteID string, target interface{}) error {
	switch t := target.(type) {
	case Reflector:
		return s.Register(remoteID, t, nil)
	case Describer:
		reflector, err := NewTypedReflector(target, t.RemoteMethods())
		if err != nil {
			return err
		}
		return s.Register(remoteID, reflector, target)
	}
	return fmt.Errorf("%T must implement Describer or Reflector to be registered", target)
}

// Unregister removes remoteID, it returns false if it was not registered.
func (s *Server) Unregister(remoteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.services[remoteID]
	delete(s.services, remoteID)
	return ok
}

// Services returns the registered remote IDs, sorted.
func (s *Server) Services() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.services))
	for id := range s.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe returns the descriptors registered for remoteID.
func (s *Server) Describe(remoteID string) (ServiceInfo, bool) {
	reg, ok := s.lookup(remoteID)
	if !ok {
		return ServiceInfo{}, false
	}
	info := reg.info
	info.Methods = append([]MethodInfo(nil), info.Methods...)
	return info, true
}

func (s *Server) lookup(remoteID string) (registration, bool) {
	if remoteID == MetaServiceID {
		s.mu.Lock()
		s.init()
		meta := s.meta
		s.mu.Unlock()
		return meta, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.services[remoteID]
	return reg, ok
}

func (s *Server) describeFunc(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var remoteID string
	if err := DecodeParams(params, &remoteID); err != nil {
		return nil, err
	}
	info, ok := s.Describe(remoteID)
	if !ok {
		return nil, &ServiceError{
			Code:    jsonrpc2.ErrCodeMethodNotFound,
			Message: fmt.Sprintf("remote id not registered: %s", remoteID),
		}
	}
	return info, nil
}

// resolve walks the compound method to a registered method.
func (s *Server) resolve(compound string) (registration, MethodInfo, *jsonrpc2.ErrResponse) {
	sm, err := ParseMethod(compound)
	if err != nil {
		return registration{}, MethodInfo{}, methodNotFound("malformed method: %q", compound)
	}
	reg, ok := s.lookup(sm.ServiceID)
	if !ok {
		return registration{}, MethodInfo{}, methodNotFound("remote id not registered: %s", sm.ServiceID)
	}
	m, ok := reg.info.Method(sm.Method)
	if !ok {
		return registration{}, MethodInfo{}, methodNotFound("method not found: %s", compound)
	}
	return reg, m, nil
}

func (s *Server) invoke(ctx context.Context, reg registration, method string, params json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return reg.reflector.Call(ctx, reg.target, method, params)
}

// HandleRequest answers a two-way call. Protocol mistakes and service errors
// are returned in the Response; any other failure is logged and masked.
func (s *Server) HandleRequest(ctx context.Context, req *jsonrpc2.Request, id json.RawMessage) (*jsonrpc2.Response, error) {
	reg, m, errResp := s.resolve(req.Method)
	if errResp != nil {
		return &jsonrpc2.Response{Error: errResp}, nil
	}
	if m.IsOneWay {
		return &jsonrpc2.Response{Error: &jsonrpc2.ErrResponse{
			Code:    jsonrpc2.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("one-way method must be sent as a notification: %s", req.Method),
		}}, nil
	}

	result, err := s.invoke(ctx, reg, m.Name, req.Params)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return &jsonrpc2.Response{Error: svcErr.errResponse()}, nil
		}
		var rpcErr *jsonrpc2.ErrResponse
		if errors.As(err, &rpcErr) {
			return &jsonrpc2.Response{Error: rpcErr}, nil
		}
		logger.Printf("request %s (id %s) failed: %s", req.Method, id, err)
		return &jsonrpc2.Response{Error: jsonrpc2.MaskedInternalError()}, nil
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger.Printf("request %s (id %s): failed to encode result: %s", req.Method, id, err)
		return &jsonrpc2.Response{Error: jsonrpc2.MaskedInternalError()}, nil
	}
	return &jsonrpc2.Response{Result: raw}, nil
}

// HandleNotification runs a one-way call. The returned error is only ever
// observed locally.
func (s *Server) HandleNotification(ctx context.Context, req *jsonrpc2.Request) error {
	reg, m, errResp := s.resolve(req.Method)
	if errResp != nil {
		return errResp
	}
	if !m.IsOneWay {
		return &jsonrpc2.ErrResponse{
			Code:    jsonrpc2.ErrCodeInvalidRequest,
			Message: fmt.Sprintf("two-way method must be sent as a request: %s", req.Method),
		}
	}
	_, err := s.invoke(ctx, reg, m.Name, req.Params)
	return err
}
