package vm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/zurustar/ruscal/pkg/compiler"
	"github.com/zurustar/ruscal/pkg/compiler/token"
	"github.com/zurustar/ruscal/pkg/value"
)

// evalSource runs src on a fresh interpreter. Compile errors are returned
// like runtime faults so properties can report them.
func evalSource(src string) (value.Value, string, error) {
	program, err := compiler.Compile(src)
	if err != nil {
		return nil, "", err
	}
	var out bytes.Buffer
	v, err := New(WithOutput(&out)).Run(context.Background(), program)
	return v, out.String(), err
}

// Integer operands stay in integer arithmetic through the evaluator.
func TestProperty_IntegerArithmetic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	ops := []struct {
		symbol string
		apply  func(a, b int64) int64
	}{
		{"+", func(a, b int64) int64 { return a + b }},
		{"-", func(a, b int64) int64 { return a - b }},
		{"*", func(a, b int64) int64 { return a * b }},
	}

	for _, op := range ops {
		properties.Property("i64(a) "+op.symbol+" i64(b) is an integer", prop.ForAll(
			func(a, b int64) bool {
				v, _, err := evalSource(fmt.Sprintf("i64(%d) %s i64(%d)", a, op.symbol, b))
				if err != nil {
					return false
				}
				i, ok := v.(value.Integer)
				return ok && int64(i) == op.apply(a, b)
			},
			gen.Int64Range(-1<<20, 1<<20),
			gen.Int64Range(-1<<20, 1<<20),
		))

		properties.Property("a float operand "+op.symbol+" gives a float", prop.ForAll(
			func(a, b int64) bool {
				v, _, err := evalSource(fmt.Sprintf("f64(%d) %s i64(%d)", a, op.symbol, b))
				if err != nil {
					return false
				}
				f, ok := v.(value.Float)
				return ok && float64(f) == float64(op.apply(a, b))
			},
			gen.Int64Range(-1<<20, 1<<20),
			gen.Int64Range(-1<<20, 1<<20),
		))
	}

	properties.TestingRun(t)
}

// A for loop runs once per element of the half-open range.
func TestProperty_LoopIterationCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("iterations match the stepped range", prop.ForAll(
		func(start, end, step int64) bool {
			src := fmt.Sprintf("let n = i64(0); for i in %d to %d step %d { n = n + i64(1); } n", start, end, step)
			v, _, err := evalSource(src)
			if err != nil {
				return false
			}

			var want int64
			if step > 0 && start < end {
				want = (end - start + step - 1) / step
			}
			return v == value.Integer(want)
		},
		gen.Int64Range(-20, 20),
		gen.Int64Range(-20, 20),
		gen.Int64Range(-3, 6),
	))

	properties.Property("loop variable takes each value in order", prop.ForAll(
		func(end int64) bool {
			_, out, err := evalSource(fmt.Sprintf("for i in 0 to %d { puts(i, \",\"); }", end))
			if err != nil {
				return false
			}
			var want strings.Builder
			for i := int64(0); i < end; i++ {
				fmt.Fprintf(&want, "%d,", i)
			}
			return out == want.String()
		},
		gen.Int64Range(0, 30),
	))

	properties.TestingRun(t)
}

// Variables declared inside a call stay in the call's frame.
func TestProperty_FrameIsolation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	names := gen.Identifier().SuchThat(func(name string) bool {
		return token.LookupIdent(name) == token.IDENT && name != "pi" && name != "nan" && name != "f"
	})

	properties.Property("locals do not leak to the caller", prop.ForAll(
		func(name string, v int64) bool {
			src := fmt.Sprintf("func f() { let %s = i64(%d); %s } f(); %s", name, v, name, name)
			_, _, err := evalSource(src)
			return IsFault(err, ErrorUndefinedVar)
		},
		names,
		gen.Int64Range(-1000, 1000),
	))

	properties.Property("a call returns its local value", prop.ForAll(
		func(name string, v int64) bool {
			src := fmt.Sprintf("func f() { let %s = i64(%d); %s } f()", name, v, name)
			got, _, err := evalSource(src)
			return err == nil && got == value.Integer(v)
		},
		names,
		gen.Int64Range(-1000, 1000),
	))

	properties.Property("callee cannot assign caller variables", prop.ForAll(
		func(name string) bool {
			src := fmt.Sprintf("let %s = 1; func f() { %s = 2 } f()", name, name)
			_, _, err := evalSource(src)
			return IsFault(err, ErrorUndeclaredAssignment)
		},
		names,
	))

	properties.TestingRun(t)
}

// Index reads succeed exactly for 0 <= i < len.
func TestProperty_ArrayBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("in-range indexes read, others fault", prop.ForAll(
		func(length int, idx int64) bool {
			elems := make([]string, length)
			for i := range elems {
				elems[i] = fmt.Sprintf("i64(%d)", i*10)
			}
			src := fmt.Sprintf("let a = [%s]; a[%d]", strings.Join(elems, ", "), idx)
			got, _, err := evalSource(src)

			if idx >= 0 && idx < int64(length) {
				return err == nil && got == value.Integer(idx*10)
			}
			return IsFault(err, ErrorIndexOutOfBounds)
		},
		gen.IntRange(1, 8),
		gen.Int64Range(-3, 10),
	))

	properties.TestingRun(t)
}
