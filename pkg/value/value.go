// Package value defines the runtime values of the ruscal language.
//
// A Value is one of four variants: Float, Integer, Text or Array. There is no
// boolean type; conditions treat any non-zero number as true.
package value

import (
	"errors"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind int

const (
	KindFloat Kind = iota
	KindInteger
	KindText
	KindArray
)

var kindNames = map[Kind]string{
	KindFloat:   "f64",
	KindInteger: "i64",
	KindText:    "str",
	KindArray:   "array",
}

// String returns the language-level name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is a runtime value.
type Value interface {
	Kind() Kind
	// String returns the display form used by print, puts and str.
	String() string
	// Debug returns the debug form used by dbg.
	Debug() string
}

// Float is a 64-bit floating point value. Every number literal evaluates to a Float.
type Float float64

// Integer is a 64-bit signed integer value.
type Integer int64

// Text is a string value.
type Text string

// Array is an ordered sequence of values.
type Array []Value

func (Float) Kind() Kind   { return KindFloat }
func (Integer) Kind() Kind { return KindInteger }
func (Text) Kind() Kind    { return KindText }
func (Array) Kind() Kind   { return KindArray }

func (f Float) String() string   { return formatFloat(float64(f)) }
func (i Integer) String() string { return formatInteger(int64(i)) }
func (t Text) String() string    { return string(t) }

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, elem := range a {
		parts[i] = elem.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (f Float) Debug() string   { return "F64(" + debugFloat(float64(f)) + ")" }
func (i Integer) Debug() string { return "I64(" + formatInteger(int64(i)) + ")" }
func (t Text) Debug() string    { return "Str(" + quoteText(string(t)) + ")" }

func (a Array) Debug() string {
	parts := make([]string, len(a))
	for i, elem := range a {
		parts[i] = elem.Debug()
	}
	return "Array([" + strings.Join(parts, ", ") + "])"
}

// Sentinel errors returned by coercion. Callers wrap them with position information.
var (
	ErrTypeMismatch   = errors.New("type mismatch")
	ErrDivisionByZero = errors.New("division by zero")
)

// Zero is the value of an empty block or a false if-expression without else.
var Zero Value = Integer(0)

// Bool converts a Go boolean into the Integer 1 or 0 the language uses for comparisons.
func Bool(b bool) Value {
	if b {
		return Integer(1)
	}
	return Integer(0)
}
