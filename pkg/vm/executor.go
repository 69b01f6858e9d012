package vm

import (
	"context"
	"fmt"
	"math"

	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/compiler/token"
	"github.com/zurustar/ruscal/pkg/value"
)

// flow tells the caller whether evaluation completed normally or is
// leaving through return, break or continue.
type flow int

const (
	flowNormal flow = iota
	flowReturn
	flowBreak
	flowContinue
)

// result is the outcome of evaluating a statement or expression.
// A loop consumes flowBreak and flowContinue; a call consumes flowReturn.
// Everything else passes the signal up unchanged.
type result struct {
	value value.Value
	flow  flow
	pos   token.Position // position of the statement that raised the signal
}

func (r result) exits() bool {
	return r.flow != flowNormal
}

func normal(v value.Value) result {
	return result{value: v}
}

func withPos(e *RuntimeError, pos token.Position) *RuntimeError {
	e.Line = pos.Line
	e.Column = pos.Column
	return e
}

// execStatements runs stmts in frame and stops at the first signal.
// The value is that of the last expression statement or loop, or Integer 0.
func (ip *Interpreter) execStatements(ctx context.Context, stmts []ast.Statement, frame *Frame) (result, error) {
	last := value.Zero

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ExpressionStatement:
			res, err := ip.eval(ctx, s.Expression, frame)
			if err != nil || res.exits() {
				return res, err
			}
			last = res.value

		case *ast.VariableDeclaration:
			res, err := ip.eval(ctx, s.Value, frame)
			if err != nil || res.exits() {
				return res, err
			}
			frame.Declare(s.Name.Value, res.value)

		case *ast.VariableAssignment:
			if _, ok := frame.Lookup(s.Name.Value); !ok {
				return result{}, withPos(NewUndeclaredAssignmentError(s.Name.Value), s.Pos())
			}
			res, err := ip.eval(ctx, s.Value, frame)
			if err != nil || res.exits() {
				return res, err
			}
			frame.Assign(s.Name.Value, res.value)

		case *ast.ForStatement:
			res, err := ip.execFor(ctx, s, frame, last)
			if err != nil || res.exits() {
				return res, err
			}
			last = res.value

		case *ast.FunctionDeclaration:
			params := make([]string, len(s.Parameters))
			for i, p := range s.Parameters {
				params[i] = p.Value
			}
			frame.DefineFunction(s.Name.Value, &UserFunction{
				Name:   s.Name.Value,
				Params: params,
				Body:   s.Body,
			})
			ip.log.Debug("function declared", "name", s.Name.Value, "params", len(params))

		case *ast.ReturnStatement:
			res, err := ip.eval(ctx, s.Value, frame)
			if err != nil || res.exits() {
				return res, err
			}
			return result{value: res.value, flow: flowReturn, pos: s.Pos()}, nil

		case *ast.BreakStatement:
			return result{value: last, flow: flowBreak, pos: s.Pos()}, nil

		case *ast.ContinueStatement:
			return result{value: last, flow: flowContinue, pos: s.Pos()}, nil

		default:
			return result{}, withPos(NewRuntimeError(ErrorTypeMismatch, fmt.Sprintf("unsupported statement %T", stmt)), stmt.Pos())
		}
	}

	return normal(last), nil
}

// execFor runs a for loop over the half-open range [start, end). The loop
// variable is rebound in frame on every iteration. last is the value of
// the enclosing block so far; it is replaced by the value of each
// iteration that completes normally.
func (ip *Interpreter) execFor(ctx context.Context, s *ast.ForStatement, frame *Frame, last value.Value) (result, error) {
	start, res, err := ip.evalInteger(ctx, s.Start, frame)
	if err != nil || res.exits() {
		return res, err
	}
	end, res, err := ip.evalInteger(ctx, s.End, frame)
	if err != nil || res.exits() {
		return res, err
	}
	step := int64(1)
	if s.Step != nil {
		step, res, err = ip.evalInteger(ctx, s.Step, frame)
		if err != nil || res.exits() {
			return res, err
		}
	}

	ip.log.Debug("for loop", "var", s.Variable.Value, "start", start, "end", end, "step", step)

	if step <= 0 {
		return normal(last), nil
	}

	for i := start; i < end; {
		if err := ctx.Err(); err != nil {
			return result{}, withPos(NewCanceledError(err), s.Pos())
		}

		frame.Declare(s.Variable.Value, value.Integer(i))

		res, err := ip.execStatements(ctx, s.Body.Statements, frame)
		if err != nil {
			return result{}, err
		}
		switch res.flow {
		case flowReturn:
			return res, nil
		case flowBreak:
			return normal(last), nil
		case flowNormal:
			last = res.value
		}

		if i > math.MaxInt64-step {
			break
		}
		i += step
	}

	return normal(last), nil
}

// evalInteger evaluates e and converts it with value.ToInteger.
func (ip *Interpreter) evalInteger(ctx context.Context, e ast.Expression, frame *Frame) (int64, result, error) {
	res, err := ip.eval(ctx, e, frame)
	if err != nil || res.exits() {
		return 0, res, err
	}
	i, err := value.ToInteger(res.value)
	if err != nil {
		return 0, result{}, asRuntimeError(err, e.Pos())
	}
	return i, res, nil
}

// eval evaluates an expression. A conditional whose block executes return,
// break or continue yields that signal instead of a value.
func (ip *Interpreter) eval(ctx context.Context, expr ast.Expression, frame *Frame) (result, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return normal(value.Float(e.Value)), nil

	case *ast.TextLiteral:
		return normal(value.Text(e.Value)), nil

	case *ast.Identifier:
		return ip.evalIdentifier(e, frame)

	case *ast.ArrayLiteral:
		elems := make(value.Array, 0, len(e.Elements))
		for _, el := range e.Elements {
			res, err := ip.eval(ctx, el, frame)
			if err != nil || res.exits() {
				return res, err
			}
			elems = append(elems, res.value)
		}
		return normal(elems), nil

	case *ast.ArrayIndex:
		return ip.evalIndex(ctx, e, frame)

	case *ast.BinaryExpression:
		return ip.evalBinary(ctx, e, frame)

	case *ast.ConditionalExpression:
		return ip.evalConditional(ctx, e, frame)

	case *ast.FunctionCall:
		return ip.evalCall(ctx, e, frame)
	}

	return result{}, withPos(NewRuntimeError(ErrorTypeMismatch, fmt.Sprintf("unsupported expression %T", expr)), expr.Pos())
}

// evalIdentifier resolves pi and nan as constants; every other name is
// looked up in the current frame only.
func (ip *Interpreter) evalIdentifier(e *ast.Identifier, frame *Frame) (result, error) {
	switch e.Value {
	case "pi":
		return normal(value.Float(math.Pi)), nil
	case "nan":
		return normal(value.Float(math.NaN())), nil
	}

	v, ok := frame.Lookup(e.Value)
	if !ok {
		if frame.unboundParameter(e.Value) {
			return result{}, withPos(NewUnboundParameterError(frame.callee.Name, e.Value, frame.argc), e.Pos())
		}
		return result{}, withPos(NewUndefinedVariableError(e.Value), e.Pos())
	}
	return normal(v), nil
}

func (ip *Interpreter) evalIndex(ctx context.Context, e *ast.ArrayIndex, frame *Frame) (result, error) {
	target, err := ip.evalIdentifier(e.Array, frame)
	if err != nil {
		return result{}, err
	}
	arr, ok := target.value.(value.Array)
	if !ok {
		msg := fmt.Sprintf("%s is %s, not an array", e.Array.Value, target.value.Kind())
		return result{}, withPos(NewRuntimeError(ErrorTypeMismatch, msg), e.Pos())
	}

	idx, res, err := ip.evalInteger(ctx, e.Index, frame)
	if err != nil || res.exits() {
		return res, err
	}
	if idx < 0 || idx >= int64(len(arr)) {
		return result{}, withPos(NewIndexOutOfBoundsError(idx, len(arr)), e.Index.Pos())
	}
	return normal(arr[idx]), nil
}

func (ip *Interpreter) evalBinary(ctx context.Context, e *ast.BinaryExpression, frame *Frame) (result, error) {
	lhs, err := ip.eval(ctx, e.Left, frame)
	if err != nil || lhs.exits() {
		return lhs, err
	}
	rhs, err := ip.eval(ctx, e.Right, frame)
	if err != nil || rhs.exits() {
		return rhs, err
	}

	var v value.Value
	switch e.Operator {
	case ast.OpAdd:
		v, err = value.Add(lhs.value, rhs.value)
	case ast.OpSub:
		v, err = value.Sub(lhs.value, rhs.value)
	case ast.OpMul:
		v, err = value.Mul(lhs.value, rhs.value)
	case ast.OpDiv:
		v, err = value.Div(lhs.value, rhs.value)
	case ast.OpGreaterThan:
		v, err = value.GreaterThan(lhs.value, rhs.value)
	case ast.OpLessThan:
		v, err = value.LessThan(lhs.value, rhs.value)
	default:
		err = fmt.Errorf("%w: unknown operator %s", value.ErrTypeMismatch, e.Operator)
	}
	if err != nil {
		return result{}, asRuntimeError(err, e.Pos())
	}
	return normal(v), nil
}

// evalConditional runs the chosen block in the current frame. A false
// condition with no else yields Integer 0.
func (ip *Interpreter) evalConditional(ctx context.Context, e *ast.ConditionalExpression, frame *Frame) (result, error) {
	cond, err := ip.eval(ctx, e.Condition, frame)
	if err != nil || cond.exits() {
		return cond, err
	}
	truthy, err := value.Truthy(cond.value)
	if err != nil {
		return result{}, asRuntimeError(err, e.Condition.Pos())
	}

	switch {
	case truthy:
		return ip.execStatements(ctx, e.Consequence.Statements, frame)
	case e.Alternative != nil:
		return ip.execStatements(ctx, e.Alternative.Statements, frame)
	}
	return normal(value.Zero), nil
}

// evalCall evaluates the arguments in the caller's frame, then resolves the
// name through the frame chain and finally the native registry.
func (ip *Interpreter) evalCall(ctx context.Context, e *ast.FunctionCall, frame *Frame) (result, error) {
	args := make([]value.Value, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		res, err := ip.eval(ctx, arg, frame)
		if err != nil || res.exits() {
			return res, err
		}
		args = append(args, res.value)
	}

	name := e.Function.Value
	fn, ok := frame.LookupFunction(name)
	if !ok {
		if native, found := ip.registry.Lookup(name); found {
			fn, ok = native, true
		}
	}
	if !ok {
		return result{}, withPos(NewUndefinedFunctionError(name), e.Pos())
	}

	switch f := fn.(type) {
	case *UserFunction:
		v, err := ip.callUser(ctx, f, args, frame, e.Pos())
		if err != nil {
			return result{}, err
		}
		return normal(v), nil
	case *NativeFunction:
		v, err := f.Call(ip.out, args)
		if err != nil {
			return result{}, asRuntimeError(err, e.Pos())
		}
		return normal(v), nil
	}

	return result{}, withPos(NewUndefinedFunctionError(name), e.Pos())
}

// callUser runs a user function body in a new frame whose parent is the
// caller's frame. Extra arguments are dropped. Parameters without an
// argument stay unbound and reading one is a MISSING_ARGUMENT fault.
func (ip *Interpreter) callUser(ctx context.Context, f *UserFunction, args []value.Value, caller *Frame, pos token.Position) (value.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, withPos(NewCanceledError(err), pos)
	}
	if ip.maxDepth > 0 && ip.depth >= ip.maxDepth {
		return nil, withPos(NewStackOverflowError(ip.maxDepth), pos)
	}

	callee := caller.Child()
	callee.bindArguments(f, args)

	ip.depth++
	defer func() { ip.depth-- }()

	ip.log.Debug("calling function", "name", f.Name, "args", len(args), "depth", ip.depth)

	res, err := ip.execStatements(ctx, f.Body.Statements, callee)
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
