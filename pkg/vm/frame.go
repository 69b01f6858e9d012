// Package vm provides scope management for the ruscal interpreter.
package vm

import (
	"slices"

	"github.com/zurustar/ruscal/pkg/value"
)

// Frame represents one scope: its own variables, its own functions and a
// link to the enclosing frame.
//
// Function names resolve through the whole chain of enclosing frames.
// Variable names resolve in the current frame only.
type Frame struct {
	variables map[string]value.Value
	functions map[string]Function
	parent    *Frame

	// Set on a call frame: the function running in it and how many
	// arguments the call supplied.
	callee *UserFunction
	argc   int
}

// NewFrame creates a new frame with an optional parent frame.
func NewFrame(parent *Frame) *Frame {
	return &Frame{
		variables: make(map[string]value.Value),
		functions: make(map[string]Function),
		parent:    parent,
	}
}

// Child creates a frame whose parent is f.
func (f *Frame) Child() *Frame {
	return NewFrame(f)
}

// bindArguments declares fn's parameters in this call frame. Arguments
// beyond the parameter list are dropped and parameters beyond the
// arguments stay unbound.
func (f *Frame) bindArguments(fn *UserFunction, args []value.Value) {
	f.callee = fn
	f.argc = len(args)
	for i, param := range fn.Params {
		if i >= len(args) {
			break
		}
		f.Declare(param, args[i])
	}
}

// unboundParameter reports whether name is a parameter of the function
// running in this frame that received no argument.
func (f *Frame) unboundParameter(name string) bool {
	if f.callee == nil {
		return false
	}
	i := slices.Index(f.callee.Params, name)
	return i >= f.argc
}

// Declare binds name to v in this frame, shadowing any earlier binding.
func (f *Frame) Declare(name string, v value.Value) {
	f.variables[name] = v
}

// Assign rebinds an existing variable of this frame.
//
// Returns:
//   - bool: false if name was never declared in this frame
func (f *Frame) Assign(name string, v value.Value) bool {
	if _, ok := f.variables[name]; !ok {
		return false
	}
	f.variables[name] = v
	return true
}

// Lookup retrieves a variable of this frame. Enclosing frames are not searched.
func (f *Frame) Lookup(name string) (value.Value, bool) {
	v, ok := f.variables[name]
	return v, ok
}

// DefineFunction binds a function in this frame.
func (f *Frame) DefineFunction(name string, fn Function) {
	f.functions[name] = fn
}

// LookupFunction searches this frame, then each enclosing frame.
func (f *Frame) LookupFunction(name string) (Function, bool) {
	for s := f; s != nil; s = s.parent {
		if fn, ok := s.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Variables returns the names of the variables bound in this frame, sorted.
func (f *Frame) Variables() []string {
	names := make([]string, 0, len(f.variables))
	for name := range f.variables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
