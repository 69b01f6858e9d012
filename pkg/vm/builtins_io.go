package vm

import (
	"fmt"
	"io"

	"github.com/zurustar/ruscal/pkg/value"
)

// ioBuiltins returns the output functions. They write to the interpreter's
// output stream.
func ioBuiltins() []*NativeFunction {
	return []*NativeFunction{
		// print(v) writes "print: <v>" and a newline.
		NewNative("print", 1, func(out io.Writer, args []value.Value) (value.Value, error) {
			if _, err := fmt.Fprintf(out, "print: %s\n", args[0]); err != nil {
				return nil, fmt.Errorf("print: %w", err)
			}
			return value.Integer(0), nil
		}),
		// puts(a, b, ...) writes each argument with no separator.
		NewVariadicNative("puts", 0, func(out io.Writer, args []value.Value) (value.Value, error) {
			for _, arg := range args {
				if _, err := io.WriteString(out, arg.String()); err != nil {
					return nil, fmt.Errorf("puts: %w", err)
				}
			}
			return value.Float(0), nil
		}),
		// dbg(v) writes the debug form of v.
		NewNative("dbg", 1, func(out io.Writer, args []value.Value) (value.Value, error) {
			if _, err := fmt.Fprintf(out, "dbg: %s\n", args[0].Debug()); err != nil {
				return nil, fmt.Errorf("dbg: %w", err)
			}
			return value.Integer(0), nil
		}),
	}
}

