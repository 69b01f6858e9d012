// Package vm provides error handling for the ruscal interpreter.
package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/zurustar/ruscal/pkg/compiler/token"
	"github.com/zurustar/ruscal/pkg/value"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	ErrorUndefinedVar         ErrorType = "UNDEFINED_VARIABLE"
	ErrorUndefinedFunc        ErrorType = "UNDEFINED_FUNCTION"
	ErrorUndeclaredAssignment ErrorType = "UNDECLARED_ASSIGNMENT"
	ErrorTypeMismatch         ErrorType = "TYPE_MISMATCH"
	ErrorIndexOutOfBounds     ErrorType = "INDEX_OUT_OF_BOUNDS"
	ErrorMissingArgument      ErrorType = "MISSING_ARGUMENT"
	ErrorIllegalControlFlow   ErrorType = "ILLEGAL_CONTROL_FLOW"
	ErrorDivisionByZero       ErrorType = "DIVISION_BY_ZERO"
	ErrorStackOverflow        ErrorType = "STACK_OVERFLOW"
	ErrorCanceled             ErrorType = "CANCELED"
	ErrorOutput               ErrorType = "OUTPUT_ERROR"
)

// RuntimeError represents a runtime fault. Every runtime fault stops the run.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Line    int // Line number if available, -1 otherwise
	Column  int
	Err     error // underlying cause, if any
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("[%s] %s at line %d, column %d", e.Type, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError without position information.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    -1,
	}
}

// NewRuntimeErrorAt creates a new RuntimeError located at pos.
func NewRuntimeErrorAt(errType ErrorType, message string, pos token.Position) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Line:    pos.Line,
		Column:  pos.Column,
	}
}

// Error helper functions for common error types

// NewUndefinedVariableError creates an undefined variable error.
func NewUndefinedVariableError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedVar, fmt.Sprintf("undefined variable: %s", name))
}

// NewUndefinedFunctionError creates an undefined function error.
func NewUndefinedFunctionError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndefinedFunc, fmt.Sprintf("undefined function: %s", name))
}

// NewUndeclaredAssignmentError is raised when assigning to a name that was
// never declared in the current frame.
func NewUndeclaredAssignmentError(name string) *RuntimeError {
	return NewRuntimeError(ErrorUndeclaredAssignment, fmt.Sprintf("assignment to undeclared variable: %s", name))
}

// NewIndexOutOfBoundsError creates an index out of bounds error.
func NewIndexOutOfBoundsError(index int64, length int) *RuntimeError {
	return NewRuntimeError(ErrorIndexOutOfBounds, fmt.Sprintf("index %d out of bounds (length %d)", index, length))
}

// NewMissingArgumentError creates a missing argument error.
func NewMissingArgumentError(name string, want, got int) *RuntimeError {
	noun := "arguments"
	if want == 1 {
		noun = "argument"
	}
	return NewRuntimeError(ErrorMissingArgument, fmt.Sprintf("%s expects %d %s, got %d", name, want, noun, got))
}

// NewUnboundParameterError is raised when a function body reads a
// parameter the call supplied no argument for.
func NewUnboundParameterError(fn, param string, got int) *RuntimeError {
	return NewRuntimeError(ErrorMissingArgument, fmt.Sprintf("%s: parameter %s has no argument (got %d)", fn, param, got))
}

// NewIllegalControlFlowError is raised when break or continue escapes a
// function body or the top level without an enclosing loop.
func NewIllegalControlFlowError(keyword string) *RuntimeError {
	return NewRuntimeError(ErrorIllegalControlFlow, fmt.Sprintf("%s outside of a loop", keyword))
}

// NewStackOverflowError creates a stack overflow error.
func NewStackOverflowError(depth int) *RuntimeError {
	return NewRuntimeError(ErrorStackOverflow, fmt.Sprintf("stack overflow: call depth exceeds maximum %d", depth))
}

// NewCanceledError wraps a context error.
func NewCanceledError(err error) *RuntimeError {
	e := NewRuntimeError(ErrorCanceled, "evaluation canceled: "+err.Error())
	e.Err = err
	return e
}

// IsFault reports whether err is a RuntimeError of the given type.
func IsFault(err error, errType ErrorType) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	return re.Type == errType
}

// asRuntimeError converts an error from the value model, a native function
// or the context into a RuntimeError located at pos. Errors that already
// carry a position keep it.
func asRuntimeError(err error, pos token.Position) *RuntimeError {
	var re *RuntimeError
	if errors.As(err, &re) {
		if re.Line < 0 {
			re.Line = pos.Line
			re.Column = pos.Column
		}
		return re
	}

	var errType ErrorType
	switch {
	case errors.Is(err, value.ErrDivisionByZero):
		errType = ErrorDivisionByZero
	case errors.Is(err, value.ErrTypeMismatch):
		errType = ErrorTypeMismatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errType = ErrorCanceled
	default:
		errType = ErrorOutput
	}

	re = NewRuntimeErrorAt(errType, err.Error(), pos)
	re.Err = err
	return re
}
