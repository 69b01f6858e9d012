// Package repl implements the interactive shell. Every input is evaluated
// against one persistent top-level frame, so declarations carry over.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"github.com/zurustar/ruscal/pkg/compiler"
	"github.com/zurustar/ruscal/pkg/logger"
	"github.com/zurustar/ruscal/pkg/vm"
)

const (
	PromptMain = "ruscal> "
	PromptCont = "   ...> "
)

// LineReader reads one line after showing a prompt. *liner.State
// implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL is the read-eval-print loop.
type REPL struct {
	reader LineReader
	ip     *vm.Interpreter
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

// New creates a REPL that evaluates input with ip. Values are written to
// out and diagnostics to errOut.
func New(reader LineReader, ip *vm.Interpreter, out, errOut io.Writer) *REPL {
	return &REPL{
		reader: reader,
		ip:     ip,
		out:    out,
		errOut: errOut,
		log:    logger.GetLogger(),
	}
}

// Run reads and evaluates input until end of input, :quit or ctx is done.
// Faults are reported and the loop continues.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, ok := r.readInput()
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if r.command(trimmed) {
				return nil
			}
			continue
		}

		r.reader.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		r.Eval(ctx, src)
	}
}

// Eval compiles and runs one complete input and prints its value.
//
// Returns:
//   - bool: false if the input failed to compile or raised a fault
func (r *REPL) Eval(ctx context.Context, src string) bool {
	program, err := compiler.Compile(src)
	if err != nil {
		fmt.Fprintln(r.errOut, err)
		return false
	}

	v, err := r.ip.Run(ctx, program)
	if err != nil {
		r.log.Debug("fault in interactive input", "error", err)
		fmt.Fprintln(r.errOut, err)
		return false
	}
	fmt.Fprintln(r.out, v)
	return true
}

// readInput collects lines until they form a complete program or a syntax
// error that is not at end of input. Ctrl-C drops the pending input.
//
// Returns:
//   - string: The collected source
//   - bool: false at end of input
func (r *REPL) readInput() (string, bool) {
	var b strings.Builder

	for {
		prompt := PromptMain
		if b.Len() > 0 {
			prompt = PromptCont
		}

		line, err := r.reader.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF):
			return "", false
		case errors.Is(err, liner.ErrPromptAborted):
			b.Reset()
			continue
		case err != nil:
			r.log.Warn("failed to read input", "error", err)
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" || strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}

		_, perr := compiler.Compile(src)
		if ce, ok := compiler.IsCompileError(perr); ok && ce.Incomplete {
			continue
		}
		return src, true
	}
}

// command handles a ":" command and reports whether the loop should stop.
func (r *REPL) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(r.out, "Enter statements to evaluate them. Declarations persist between inputs.")
		fmt.Fprintln(r.out, "Commands: :help, :vars, :funcs, :quit")
	case ":vars":
		// トップレベルで宣言された変数を名前順に表示
		global := r.ip.Global()
		for _, name := range global.Variables() {
			v, _ := global.Lookup(name)
			fmt.Fprintf(r.out, "%s = %s\n", name, v.Debug())
		}
	case ":funcs":
		fmt.Fprintln(r.out, strings.Join(r.ip.Registry().Names(), " "))
	default:
		fmt.Fprintf(r.errOut, "unknown command %s. Type :help for help.\n", cmd)
	}
	return false
}
