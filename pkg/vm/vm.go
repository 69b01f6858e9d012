// Package vm implements the tree-walking evaluator for ruscal programs.
//
// A program runs against one top-level Frame. Native functions come from a
// shared Registry that is consulted after the frame chain, so the registry
// itself is never copied into frames.
package vm

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/logger"
	"github.com/zurustar/ruscal/pkg/value"
)

// MaxStackDepth is the default bound on user function call depth.
const MaxStackDepth = 1000

// Interpreter evaluates programs against a persistent top-level frame.
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	global   *Frame
	registry *Registry
	out      io.Writer
	log      *slog.Logger

	maxDepth int // 0 means unbounded
	depth    int
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithOutput sets the stream written by print, puts and dbg.
func WithOutput(w io.Writer) Option {
	return func(ip *Interpreter) {
		ip.out = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(ip *Interpreter) {
		ip.log = log
	}
}

// WithMaxDepth bounds the user function call depth. 0 disables the bound,
// leaving deep recursion limited only by the Go stack.
func WithMaxDepth(depth int) Option {
	return func(ip *Interpreter) {
		ip.maxDepth = depth
	}
}

// WithRegistry replaces the native function registry.
func WithRegistry(r *Registry) Option {
	return func(ip *Interpreter) {
		ip.registry = r
	}
}

// New creates a new Interpreter with an empty top-level frame.
//
// Parameters:
//   - opts: Optional configuration options (output, logger, max depth, registry)
//
// Returns:
//   - *Interpreter: The initialized interpreter
func New(opts ...Option) *Interpreter {
	ip := &Interpreter{
		global:   NewFrame(nil),
		registry: DefaultRegistry(),
		out:      os.Stdout,
		log:      logger.GetLogger(),
		maxDepth: MaxStackDepth,
	}

	for _, opt := range opts {
		opt(ip)
	}

	return ip
}

// Global returns the top-level frame. It persists across calls to Run.
func (ip *Interpreter) Global() *Frame {
	return ip.global
}

// Registry returns the native function registry in use.
func (ip *Interpreter) Registry() *Registry {
	return ip.registry
}

// Run executes program against the top-level frame.
//
// Returns:
//   - value.Value: The value of the last executed expression statement or
//     loop, the value of a top-level return, or Integer 0
//   - error: A *RuntimeError for the first fault. Nothing after it runs.
func (ip *Interpreter) Run(ctx context.Context, program *ast.Program) (value.Value, error) {
	ip.depth = 0

	res, err := ip.execStatements(ctx, program.Statements, ip.global)
	if err != nil {
		return nil, err
	}

	switch res.flow {
	case flowBreak:
		return nil, withPos(NewIllegalControlFlowError("break"), res.pos)
	case flowContinue:
		return nil, withPos(NewIllegalControlFlowError("continue"), res.pos)
	}
	return res.value, nil
}
