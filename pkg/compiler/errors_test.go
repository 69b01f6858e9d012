package compiler

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestCompileError_Error tests the Error() method of CompileError.
func TestCompileError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CompileError
		contains []string
	}{
		{
			name: "lexer error without context",
			err: &CompileError{
				Phase:   "lexer",
				Message: `illegal character "@"`,
				Line:    5,
				Column:  10,
			},
			contains: []string{"lexer error", "line 5", "column 10", `illegal character "@"`},
		},
		{
			name: "parser error without context",
			err: &CompileError{
				Phase:   "parser",
				Message: `expected ";", got "}"`,
				Line:    12,
				Column:  25,
			},
			contains: []string{"parser error", "line 12", "column 25", `expected ";"`},
		},
		{
			name: "error with context",
			err: &CompileError{
				Phase:   "parser",
				Message: "unexpected token",
				Line:    3,
				Column:  5,
				Context: "> 3 | let x = ;\n      ^",
			},
			contains: []string{"parser error", "line 3", "column 5", "unexpected token", "> 3 |"},
		},
		{
			name: "error with file name",
			err: &CompileError{
				File:    "main.rcl",
				Phase:   "parser",
				Message: "unexpected end of input",
				Line:    1,
				Column:  4,
			},
			contains: []string{"main.rcl: parser error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("Error() = %q, want to contain %q", errStr, substr)
				}
			}
		})
	}
}

// TestGenerateErrorContext tests the GenerateErrorContext function.
func TestGenerateErrorContext(t *testing.T) {
	source := `let a = 1;
let b = 2;
let c = 3;
let d = ;
let e = 5;
let f = 6;
let g = 7;`

	tests := []struct {
		name        string
		source      string
		line        int
		column      int
		contains    []string
		notContains []string
	}{
		{
			name:   "error in middle of file",
			source: source,
			line:   4,
			column: 9,
			contains: []string{
				"2 |", "let b = 2;",
				"3 |", "let c = 3;",
				"> 4 |", "let d = ;",
				"^",
				"5 |", "let e = 5;",
				"6 |", "let f = 6;",
			},
			notContains: []string{"1 |", "7 |"},
		},
		{
			name:        "error at beginning of file",
			source:      source,
			line:        1,
			column:      5,
			contains:    []string{"> 1 |", "let a = 1;", "^", "2 |", "3 |"},
			notContains: []string{"4 |"},
		},
		{
			name:        "error at end of file",
			source:      source,
			line:        7,
			column:      5,
			contains:    []string{"5 |", "6 |", "> 7 |", "let g = 7;", "^"},
			notContains: []string{"4 |"},
		},
		{name: "empty source", source: "", line: 1, column: 1},
		{name: "invalid line number", source: source, line: 0, column: 1},
		{name: "line number exceeds source", source: source, line: 100, column: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			context := GenerateErrorContext(tt.source, tt.line, tt.column)

			if len(tt.contains) == 0 && context != "" {
				t.Errorf("GenerateErrorContext() = %q, want empty", context)
			}
			for _, substr := range tt.contains {
				if !strings.Contains(context, substr) {
					t.Errorf("GenerateErrorContext() = %q, want to contain %q", context, substr)
				}
			}
			for _, substr := range tt.notContains {
				if strings.Contains(context, substr) {
					t.Errorf("GenerateErrorContext() = %q, should not contain %q", context, substr)
				}
			}
		})
	}
}

// The caret sits under the reported column.
func TestGenerateErrorContext_CaretColumn(t *testing.T) {
	context := GenerateErrorContext("let x = @;", 1, 9)
	lines := strings.Split(strings.TrimRight(context, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", context)
	}
	source := lines[0]
	caret := lines[1]
	if strings.Index(caret, "^") != strings.Index(source, "@") {
		t.Errorf("caret misaligned:\n%s\n%s", source, caret)
	}
}

func TestNewLexerErrorWithContext(t *testing.T) {
	source := "let x = 1;\nlet y = @;\nlet z = 3;"

	err := NewLexerErrorWithContext(`illegal character "@"`, 2, 9, source)

	if err.Phase != "lexer" {
		t.Errorf("Phase = %q, want %q", err.Phase, "lexer")
	}
	if err.Line != 2 || err.Column != 9 {
		t.Errorf("position = %d:%d, want 2:9", err.Line, err.Column)
	}
	if !strings.Contains(err.Context, "> 2 |") {
		t.Errorf("Context should contain error line marker, got %q", err.Context)
	}
}

func TestNewParserErrorWithContext(t *testing.T) {
	source := "func f() {\n    let x = 5;\n    let y = ;\n}"

	err := NewParserErrorWithContext("unexpected \";\"", 3, 13, source)

	if err.Phase != "parser" {
		t.Errorf("Phase = %q, want %q", err.Phase, "parser")
	}
	if !strings.Contains(err.Context, "> 3 |") {
		t.Errorf("Context should contain error line marker, got %q", err.Context)
	}
}

func TestIsCompileError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantOk    bool
		wantPhase string
	}{
		{"CompileError", &CompileError{Phase: "lexer"}, true, "lexer"},
		{"wrapped CompileError", fmt.Errorf("loading: %w", &CompileError{Phase: "parser"}), true, "parser"},
		{"standard error", errors.New("standard error"), false, ""},
		{"nil error", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, ok := IsCompileError(tt.err)
			if ok != tt.wantOk {
				t.Errorf("IsCompileError() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && ce.Phase != tt.wantPhase {
				t.Errorf("IsCompileError() Phase = %q, want %q", ce.Phase, tt.wantPhase)
			}
		})
	}
}
