package vm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/zurustar/ruscal/pkg/compiler/token"
	"github.com/zurustar/ruscal/pkg/value"
)

func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuntimeError
		contains []string
		excludes []string
	}{
		{
			name:     "basic error",
			err:      NewUndefinedFunctionError("nope"),
			contains: []string{"UNDEFINED_FUNCTION", "undefined function: nope"},
			excludes: []string{"line"},
		},
		{
			name:     "error with position",
			err:      NewRuntimeErrorAt(ErrorIndexOutOfBounds, "index 5 out of bounds", token.Position{Line: 42, Column: 7}),
			contains: []string{"INDEX_OUT_OF_BOUNDS", "index 5 out of bounds", "line 42", "column 7"},
		},
		{
			name:     "missing argument singular",
			err:      NewMissingArgumentError("sqrt", 1, 0),
			contains: []string{"MISSING_ARGUMENT", "sqrt expects 1 argument, got 0"},
		},
		{
			name:     "missing argument plural",
			err:      NewMissingArgumentError("pow", 2, 1),
			contains: []string{"pow expects 2 arguments, got 1"},
		},
		{
			name:     "unbound parameter",
			err:      NewUnboundParameterError("f", "b", 1),
			contains: []string{"MISSING_ARGUMENT", "f: parameter b has no argument (got 1)"},
		},
		{
			name:     "illegal control flow",
			err:      NewIllegalControlFlowError("break"),
			contains: []string{"ILLEGAL_CONTROL_FLOW", "break outside of a loop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("error string %q should contain %q", errStr, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(errStr, s) {
					t.Errorf("error string %q should not contain %q", errStr, s)
				}
			}
		})
	}
}

func TestAsRuntimeError(t *testing.T) {
	pos := token.Position{Line: 3, Column: 9}

	tests := []struct {
		name    string
		err     error
		want    ErrorType
		wantPos token.Position
	}{
		{"type mismatch", fmt.Errorf("%w: bad", value.ErrTypeMismatch), ErrorTypeMismatch, pos},
		{"division by zero", value.ErrDivisionByZero, ErrorDivisionByZero, pos},
		{"deadline", context.DeadlineExceeded, ErrorCanceled, pos},
		{"write failure", errors.New("broken pipe"), ErrorOutput, pos},
		{"unpositioned fault takes pos", NewMissingArgumentError("f", 1, 0), ErrorMissingArgument, pos},
		{
			name:    "positioned fault keeps its own",
			err:     NewRuntimeErrorAt(ErrorUndefinedVar, "x", token.Position{Line: 1, Column: 2}),
			want:    ErrorUndefinedVar,
			wantPos: token.Position{Line: 1, Column: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := asRuntimeError(tt.err, pos)
			if re.Type != tt.want {
				t.Errorf("Type = %s, want %s", re.Type, tt.want)
			}
			if re.Line != tt.wantPos.Line || re.Column != tt.wantPos.Column {
				t.Errorf("position = %d:%d, want %s", re.Line, re.Column, tt.wantPos)
			}
			if !errors.Is(re, tt.err) {
				t.Errorf("errors.Is(%v, %v) = false", re, tt.err)
			}
		})
	}
}

func TestIsFault(t *testing.T) {
	err := fmt.Errorf("running: %w", NewUndefinedVariableError("x"))

	if !IsFault(err, ErrorUndefinedVar) {
		t.Error("IsFault should see through wrapping")
	}
	if IsFault(err, ErrorTypeMismatch) {
		t.Error("IsFault should compare the type")
	}
	if IsFault(errors.New("plain"), ErrorUndefinedVar) {
		t.Error("plain errors are not faults")
	}
	if IsFault(nil, ErrorUndefinedVar) {
		t.Error("nil is not a fault")
	}
}
