package value

import (
	"fmt"
	"math"
	"strconv"
)

// Add implements "+". Two Texts concatenate.
func Add(lhs, rhs Value) (Value, error) {
	return arithmetic("+", lhs, rhs,
		func(a, b float64) float64 { return a + b },
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b string) (string, error) { return a + b, nil },
	)
}

// Sub implements "-".
func Sub(lhs, rhs Value) (Value, error) {
	return arithmetic("-", lhs, rhs,
		func(a, b float64) float64 { return a - b },
		func(a, b int64) (int64, error) { return a - b, nil },
		textUnsupported("subtracted"),
	)
}

// Mul implements "*".
func Mul(lhs, rhs Value) (Value, error) {
	return arithmetic("*", lhs, rhs,
		func(a, b float64) float64 { return a * b },
		func(a, b int64) (int64, error) { return a * b, nil },
		textUnsupported("multiplied"),
	)
}

// Div implements "/". Integer division truncates toward zero; dividing an
// Integer by Integer zero fails with ErrDivisionByZero. Float division follows IEEE-754.
func Div(lhs, rhs Value) (Value, error) {
	return arithmetic("/", lhs, rhs,
		func(a, b float64) float64 { return a / b },
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a / b, nil
		},
		textUnsupported("divided"),
	)
}

func textUnsupported(verb string) func(a, b string) (string, error) {
	return func(a, b string) (string, error) {
		return "", fmt.Errorf("%w: strings cannot be %s", ErrTypeMismatch, verb)
	}
}

// arithmetic selects the computation domain from the operand kinds:
// a Float on either side computes in float64, Integer with Integer stays
// integral, Text with Text uses onText, everything else is a mismatch.
func arithmetic(
	op string,
	lhs, rhs Value,
	onFloat func(a, b float64) float64,
	onInt func(a, b int64) (int64, error),
	onText func(a, b string) (string, error),
) (Value, error) {
	switch l := lhs.(type) {
	case Float:
		r, ok := numeric(rhs)
		if !ok {
			return nil, mismatch(op, lhs, rhs)
		}
		return Float(onFloat(float64(l), r)), nil
	case Integer:
		switch r := rhs.(type) {
		case Float:
			return Float(onFloat(float64(l), float64(r))), nil
		case Integer:
			n, err := onInt(int64(l), int64(r))
			if err != nil {
				return nil, err
			}
			return Integer(n), nil
		}
	case Text:
		if r, ok := rhs.(Text); ok {
			s, err := onText(string(l), string(r))
			if err != nil {
				return nil, err
			}
			return Text(s), nil
		}
	}
	return nil, mismatch(op, lhs, rhs)
}

func numeric(v Value) (float64, bool) {
	switch n := v.(type) {
	case Float:
		return float64(n), true
	case Integer:
		return float64(n), true
	}
	return 0, false
}

func mismatch(op string, lhs, rhs Value) error {
	return fmt.Errorf("%w: unsupported operator %q between %s and %s", ErrTypeMismatch, op, lhs.Kind(), rhs.Kind())
}

// GreaterThan implements ">" and yields Integer 1 or 0.
func GreaterThan(lhs, rhs Value) (Value, error) {
	c, ordered, err := compare(">", lhs, rhs)
	if err != nil {
		return nil, err
	}
	return Bool(ordered && c > 0), nil
}

// LessThan implements "<" and yields Integer 1 or 0.
func LessThan(lhs, rhs Value) (Value, error) {
	c, ordered, err := compare("<", lhs, rhs)
	if err != nil {
		return nil, err
	}
	return Bool(ordered && c < 0), nil
}

// compare orders two numbers (mixed kinds compare as floats) or two Texts.
// ordered is false when either side is NaN.
func compare(op string, lhs, rhs Value) (c int, ordered bool, err error) {
	if l, ok := lhs.(Integer); ok {
		if r, ok := rhs.(Integer); ok {
			return cmpInt(int64(l), int64(r)), true, nil
		}
	}
	if l, ok := lhs.(Text); ok {
		if r, ok := rhs.(Text); ok {
			return cmpText(string(l), string(r)), true, nil
		}
		return 0, false, mismatch(op, lhs, rhs)
	}
	l, lok := numeric(lhs)
	r, rok := numeric(rhs)
	if !lok || !rok {
		return 0, false, mismatch(op, lhs, rhs)
	}
	if math.IsNaN(l) || math.IsNaN(r) {
		return 0, false, nil
	}
	switch {
	case l < r:
		return -1, true, nil
	case l > r:
		return 1, true, nil
	}
	return 0, true, nil
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpText(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ToInteger converts a value to an integer. Floats truncate toward zero and
// saturate at the int64 range (NaN becomes 0). Texts are parsed as an integer,
// falling back to a float parse that is then truncated.
func ToInteger(v Value) (int64, error) {
	switch n := v.(type) {
	case Integer:
		return int64(n), nil
	case Float:
		return truncate(float64(n)), nil
	case Text:
		if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(string(n), 64); err == nil {
			return truncate(f), nil
		}
		return 0, fmt.Errorf("%w: %q could not be parsed as i64", ErrTypeMismatch, string(n))
	}
	return 0, fmt.Errorf("%w: %s cannot be converted to i64", ErrTypeMismatch, v.Kind())
}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// ToFloat converts a value to a float. Texts are parsed as a float.
func ToFloat(v Value) (float64, error) {
	switch n := v.(type) {
	case Float:
		return float64(n), nil
	case Integer:
		return float64(n), nil
	case Text:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q could not be parsed as f64", ErrTypeMismatch, string(n))
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %s cannot be converted to f64", ErrTypeMismatch, v.Kind())
}

// ToText converts a scalar value to its display form. Arrays are rejected.
func ToText(v Value) (string, error) {
	if v.Kind() == KindArray {
		return "", fmt.Errorf("%w: array cannot be converted to str", ErrTypeMismatch)
	}
	return v.String(), nil
}

// Truthy reports whether a condition value is non-zero. Only numbers can be conditions.
func Truthy(v Value) (bool, error) {
	switch n := v.(type) {
	case Integer:
		return n != 0, nil
	case Float:
		return n != 0, nil
	}
	return false, fmt.Errorf("%w: %s cannot be used as a condition", ErrTypeMismatch, v.Kind())
}
