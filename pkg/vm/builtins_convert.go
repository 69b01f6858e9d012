package vm

import (
	"io"
	"math"

	"github.com/zurustar/ruscal/pkg/value"
)

// convertBuiltins returns the explicit conversion functions.
func convertBuiltins() []*NativeFunction {
	return []*NativeFunction{
		NewNative("i64", 1, func(_ io.Writer, args []value.Value) (value.Value, error) {
			i, err := value.ToInteger(args[0])
			if err != nil {
				return nil, err
			}
			return value.Integer(i), nil
		}),
		NewNative("f64", 1, func(_ io.Writer, args []value.Value) (value.Value, error) {
			f, err := value.ToFloat(args[0])
			if err != nil {
				return nil, err
			}
			return value.Float(f), nil
		}),
		NewNative("str", 1, func(_ io.Writer, args []value.Value) (value.Value, error) {
			s, err := value.ToText(args[0])
			if err != nil {
				return nil, err
			}
			return value.Text(s), nil
		}),
		// is_nan returns Float 1 or 0, not a boolean.
		NewNative("is_nan", 1, func(_ io.Writer, args []value.Value) (value.Value, error) {
			f, err := value.ToFloat(args[0])
			if err != nil {
				return nil, err
			}
			if math.IsNaN(f) {
				return value.Float(1), nil
			}
			return value.Float(0), nil
		}),
	}
}
