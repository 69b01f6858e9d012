package vm

import (
	"io"
	"slices"
	"sync"

	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/value"
)

// Function is a callable bound to a name. It is either a *UserFunction
// declared by the program or a *NativeFunction from a Registry.
type Function interface {
	FunctionName() string
	Arity() int
}

// UserFunction is a function declared with func.
type UserFunction struct {
	Name   string
	Params []string
	Body   *ast.Block
}

func (f *UserFunction) FunctionName() string { return f.Name }
func (f *UserFunction) Arity() int           { return len(f.Params) }

// NativeFunc implements a native function. args holds exactly Arity
// values, or every argument when the function is variadic.
type NativeFunc func(out io.Writer, args []value.Value) (value.Value, error)

// NativeFunction is a function implemented in Go.
type NativeFunction struct {
	name     string
	arity    int
	variadic bool
	impl     NativeFunc
}

// NewNative creates a native function taking exactly arity arguments.
// Extra arguments are dropped before impl is called.
func NewNative(name string, arity int, impl NativeFunc) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, impl: impl}
}

// NewVariadicNative creates a native function taking at least minArity
// arguments. impl receives all of them.
func NewVariadicNative(name string, minArity int, impl NativeFunc) *NativeFunction {
	return &NativeFunction{name: name, arity: minArity, variadic: true, impl: impl}
}

func (f *NativeFunction) FunctionName() string { return f.name }
func (f *NativeFunction) Arity() int           { return f.arity }

// Variadic reports whether f accepts any number of arguments.
func (f *NativeFunction) Variadic() bool { return f.variadic }

// Call checks the argument count and invokes the implementation.
func (f *NativeFunction) Call(out io.Writer, args []value.Value) (value.Value, error) {
	if len(args) < f.arity {
		return nil, NewMissingArgumentError(f.name, f.arity, len(args))
	}
	if !f.variadic {
		args = args[:f.arity]
	}
	return f.impl(out, args)
}

// Registry is an immutable set of native functions. It is consulted after
// the frame chain when a function name is resolved.
type Registry struct {
	funcs map[string]*NativeFunction
}

// NewRegistry creates a registry holding fns. Later entries replace
// earlier ones with the same name.
func NewRegistry(fns ...*NativeFunction) *Registry {
	r := &Registry{funcs: make(map[string]*NativeFunction, len(fns))}
	for _, fn := range fns {
		r.funcs[fn.name] = fn
	}
	return r
}

// With returns a new registry holding r's functions plus fns.
func (r *Registry) With(fns ...*NativeFunction) *Registry {
	merged := make([]*NativeFunction, 0, len(r.funcs)+len(fns))
	for _, name := range r.Names() {
		merged = append(merged, r.funcs[name])
	}
	return NewRegistry(append(merged, fns...)...)
}

// Lookup finds a native function by name.
func (r *Registry) Lookup(name string) (*NativeFunction, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry returns the shared registry of built-in functions.
// It is built on first use.
var DefaultRegistry = sync.OnceValue(func() *Registry {
	var fns []*NativeFunction
	fns = append(fns, mathBuiltins()...)
	fns = append(fns, convertBuiltins()...)
	fns = append(fns, ioBuiltins()...)
	return NewRegistry(fns...)
})
