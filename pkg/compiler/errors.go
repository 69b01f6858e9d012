// Package compiler turns ruscal source text into a syntax tree.
// This file defines the CompileError type for structured error reporting.
package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError represents a syntax error with location information.
// It implements the error interface and provides detailed context about where
// the error occurred in the source code.
type CompileError struct {
	// File is the script name, if known.
	File string

	// Phase indicates which phase generated the error.
	// Valid values: "lexer", "parser"
	Phase string

	// Message is the human-readable error description.
	Message string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context contains the source code around the error location.
	// This includes 2 lines before and after the error line,
	// with a pointer (^) indicating the error column.
	Context string

	// Incomplete is true when the input ended before the failing construct
	// was finished, so appending more text could make it valid.
	Incomplete bool
}

// Error implements the error interface.
// It returns a formatted error message including phase, location, message, and context.
func (e *CompileError) Error() string {
	prefix := ""
	if e.File != "" {
		prefix = e.File + ": "
	}
	if e.Context != "" {
		return fmt.Sprintf("%s%s error at line %d, column %d: %s\n%s",
			prefix, e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s%s error at line %d, column %d: %s",
		prefix, e.Phase, e.Line, e.Column, e.Message)
}

// NewLexerErrorWithContext creates a CompileError for illegal input characters.
func NewLexerErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "lexer",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// NewParserErrorWithContext creates a new CompileError for parser phase errors with source context.
//
// Parameters:
//   - message: The error description
//   - line: The 1-indexed line number
//   - column: The 1-indexed column number
//   - source: The full source code for generating context
//
// Returns:
//   - *CompileError: A new parser error with context
func NewParserErrorWithContext(message string, line, column int, source string) *CompileError {
	return &CompileError{
		Phase:   "parser",
		Message: message,
		Line:    line,
		Column:  column,
		Context: GenerateErrorContext(source, line, column),
	}
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers
// and a pointer (^) indicating the error column.
//
// Example output:
//
//	  2 | let x = 5;
//	  3 | let y = 10;
//	> 4 | let z = ;
//	    |         ^
//	  5 | let w = 20;
//	  6 | let v = 30;
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimRight(lines[i], "\r")

		if lineNum != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", lineNumWidth, lineNum, lineContent)
			continue
		}

		fmt.Fprintf(&buf, "> %*d | %s\n", lineNumWidth, lineNum, lineContent)
		fmt.Fprintf(&buf, "  %s | %s^\n", strings.Repeat(" ", lineNumWidth), strings.Repeat(" ", max(column-1, 0)))
	}

	return buf.String()
}

// IsCompileError reports whether err is (or wraps) a CompileError and returns it.
func IsCompileError(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
