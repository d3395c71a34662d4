package remoting

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

var typeOfError = reflect.TypeOf((*error)(nil)).Elem()
var typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()

// methodArgTypes returns the arg types after the receiver and an optional
// leading context, and whether all the types are valid (exported or builtin).
func methodArgTypes(methodType reflect.Type) (argTypes []reflect.Type, hasCtx bool, ok bool) {
	argNum := methodType.NumIn()
	argPos := 1 // Skip receiver
	if argNum > argPos && methodType.In(argPos) == typeOfContext {
		hasCtx = true
		argPos++
	}
	argTypes = make([]reflect.Type, 0, argNum-argPos)
	for ; argPos < argNum; argPos++ {
		argType := methodType.In(argPos)
		if argType == typeOfContext || !isExportedOrBuiltin(argType) {
			return nil, hasCtx, false
		}
		argTypes = append(argTypes, argType)
	}
	return argTypes, hasCtx, true
}

// methodErrPos returns the return value index position of an error type for
// supported return layouts: (), (T), (error), (T, error)
func methodErrPos(methodType reflect.Type) (int, bool) {
	switch methodType.NumOut() {
	case 0:
		return -1, true
	case 1:
		if methodType.Out(0) == typeOfError {
			// Single error return value
			return 0, true
		}
		// Single non-error return value
		return -1, true
	case 2:
		if methodType.Out(1) == typeOfError {
			// Two return values, one error type
			return 1, true
		}
		// Two return values, no error type, unsupported.
		return -1, false
	}
	return -1, false
}

// exportedName maps a remote method name to its Go method name: add => Add
func exportedName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

// typedMethod is the definition of a callable method.
type typedMethod struct {
	fn       reflect.Value
	argTypes []reflect.Type
	errPos   int
	hasCtx   bool
}

func (m *typedMethod) call(ctx context.Context, receiver reflect.Value, params json.RawMessage) (interface{}, error) {
	args, err := reflectParams(params, m.argTypes)
	if err != nil {
		return nil, err
	}

	arguments := []reflect.Value{receiver}
	if m.hasCtx {
		arguments = append(arguments, reflect.ValueOf(&ctx).Elem())
	}
	arguments = append(arguments, args...)

	reply := m.fn.Call(arguments)

	// Are there any return values?
	if len(reply) == 0 {
		return nil, nil
	}
	// Is there an error return value?
	if m.errPos >= 0 {
		if errVal := reply[m.errPos]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		if m.errPos == 0 {
			return nil, nil
		}
	}
	// This supports (T), (T, err)
	return reply[0].Interface(), nil
}

var _ Reflector = &TypedReflector{}

// TypedReflector is a Reflector for a statically typed service. Its remote
// methods are listed explicitly and resolved to exported Go methods by name,
// so "add" calls Add.
//
// Supported method signatures take an optional leading context.Context
// followed by JSON decodable positional args, and return (), (T), (error) or
// (T, error).
type TypedReflector struct {
	typ     reflect.Type
	methods []MethodInfo
	calls   map[string]*typedMethod
}

// NewTypedReflector resolves the described methods on the type of receiver.
func NewTypedReflector(receiver interface{}, methods []MethodInfo) (*TypedReflector, error) {
	kind := reflect.TypeOf(receiver)
	if kind == nil {
		return nil, fmt.Errorf("receiver must not be nil")
	}
	named := kind
	if named.Kind() == reflect.Ptr {
		named = named.Elem()
	}
	if name := named.Name(); !isExported(name) {
		return nil, fmt.Errorf("receiver must be exported: %s", name)
	}

	r := &TypedReflector{
		typ:   kind,
		calls: make(map[string]*typedMethod, len(methods)),
	}
	for _, info := range methods {
		if info.Name == "" {
			return nil, fmt.Errorf("empty method name on %s", kind)
		}
		if _, ok := r.calls[info.Name]; ok {
			return nil, fmt.Errorf("duplicate method %q on %s", info.Name, kind)
		}
		method, ok := kind.MethodByName(exportedName(info.Name))
		if !ok {
			return nil, fmt.Errorf("%s has no method %s for %q", kind, exportedName(info.Name), info.Name)
		}
		if method.Type.IsVariadic() {
			return nil, fmt.Errorf("variadic method is not supported: %s", method.Name)
		}
		argTypes, hasCtx, ok := methodArgTypes(method.Type)
		if !ok {
			return nil, fmt.Errorf("unsupported args in method: %s", method.Name)
		}
		errPos, ok := methodErrPos(method.Type)
		if !ok {
			return nil, fmt.Errorf("unsupported return values in method: %s", method.Name)
		}
		r.methods = append(r.methods, info)
		r.calls[info.Name] = &typedMethod{
			fn:       method.Func,
			argTypes: argTypes,
			errPos:   errPos,
			hasCtx:   hasCtx,
		}
	}
	return r, nil
}

func (r *TypedReflector) Methods() []MethodInfo {
	out := make([]MethodInfo, len(r.methods))
	copy(out, r.methods)
	return out
}

func (r *TypedReflector) Call(ctx context.Context, target interface{}, method string, params json.RawMessage) (interface{}, error) {
	m, ok := r.calls[method]
	if !ok {
		return nil, fmt.Errorf("no method %q on %s", method, r.typ)
	}
	receiver := reflect.ValueOf(target)
	if !receiver.IsValid() || receiver.Type() != r.typ {
		return nil, fmt.Errorf("target is %T, reflector is for %s", target, r.typ)
	}
	return m.call(ctx, receiver, params)
}
