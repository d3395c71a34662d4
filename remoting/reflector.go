package remoting

import (
	"context"
	"encoding/json"
	"fmt"
)

// Reflector exposes the remotely callable methods of one service definition.
type Reflector interface {
	// Methods returns the method descriptors in declaration order.
	Methods() []MethodInfo

	// Call invokes the named method on target with positional JSON params.
	// Only methods listed by Methods are ever called.
	Call(ctx context.Context, target interface{}, method string, params json.RawMessage) (interface{}, error)
}

// Func is a remotely callable function taking raw positional params. Use
// DecodeParams to unpack them.
type Func func(ctx context.Context, params json.RawMessage) (interface{}, error)

var _ Reflector = &Funcs{}

// Funcs is a Reflector for dynamic services: a name-indexed table of Func
// values, each registered explicitly as two-way or one-way. The target passed
// to Call is ignored.
type Funcs struct {
	methods []MethodInfo
	funcs   map[string]Func
}

// NewFuncs returns an empty table.
func NewFuncs() *Funcs {
	return &Funcs{
		funcs: map[string]Func{},
	}
}

// Request adds a two-way method. Adding an existing name replaces it.
func (f *Funcs) Request(name string, fn Func) *Funcs {
	return f.add(TwoWay(name), fn)
}

// Notification adds a one-way method. Adding an existing name replaces it.
func (f *Funcs) Notification(name string, fn Func) *Funcs {
	return f.add(OneWay(name), fn)
}

func (f *Funcs) add(info MethodInfo, fn Func) *Funcs {
	if _, ok := f.funcs[info.Name]; ok {
		for i := range f.methods {
			if f.methods[i].Name == info.Name {
				f.methods[i] = info
			}
		}
	} else {
		f.methods = append(f.methods, info)
	}
	f.funcs[info.Name] = fn
	return f
}

func (f *Funcs) Methods() []MethodInfo {
	out := make([]MethodInfo, len(f.methods))
	copy(out, f.methods)
	return out
}

func (f *Funcs) Call(ctx context.Context, target interface{}, method string, params json.RawMessage) (interface{}, error) {
	fn, ok := f.funcs[method]
	if !ok {
		return nil, fmt.Errorf("no func for method: %s", method)
	}
	return fn(ctx, params)
}
