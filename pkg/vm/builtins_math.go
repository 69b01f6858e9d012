package vm

import (
	"io"
	"math"

	"github.com/zurustar/ruscal/pkg/value"
)

// mathBuiltins returns the real-valued math functions. Arguments are
// converted with value.ToFloat and the result is always a Float.
func mathBuiltins() []*NativeFunction {
	return []*NativeFunction{
		unaryFn("sqrt", math.Sqrt),
		unaryFn("sin", math.Sin),
		unaryFn("cos", math.Cos),
		unaryFn("tan", math.Tan),
		unaryFn("asin", math.Asin),
		unaryFn("acos", math.Acos),
		unaryFn("atan", math.Atan),
		unaryFn("exp", math.Exp),
		unaryFn("log10", math.Log10),
		unaryFn("floor", math.Floor),

		// atan2(y, x)
		binaryFn("atan2", math.Atan2),
		binaryFn("pow", math.Pow),
		// log(x, base)
		binaryFn("log", func(x, base float64) float64 {
			return math.Log(x) / math.Log(base)
		}),
	}
}

func unaryFn(name string, f func(float64) float64) *NativeFunction {
	return NewNative(name, 1, func(_ io.Writer, args []value.Value) (value.Value, error) {
		x, err := value.ToFloat(args[0])
		if err != nil {
			return nil, err
		}
		return value.Float(f(x)), nil
	})
}

func binaryFn(name string, f func(float64, float64) float64) *NativeFunction {
	return NewNative(name, 2, func(_ io.Writer, args []value.Value) (value.Value, error) {
		lhs, err := value.ToFloat(args[0])
		if err != nil {
			return nil, err
		}
		rhs, err := value.ToFloat(args[1])
		if err != nil {
			return nil, err
		}
		return value.Float(f(lhs, rhs)), nil
	})
}
