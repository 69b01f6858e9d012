// Package ast defines the syntax tree produced by the parser.
//
// String() on every node renders canonical source text that parses back to
// an equivalent tree.
package ast

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/zurustar/ruscal/pkg/compiler/token"
)

type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Position
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		if NeedsTerminator(s) {
			out.WriteString(";")
		}
		out.WriteString("\n")
	}
	return out.String()
}

// NeedsTerminator reports whether s must be followed by ';' when another
// statement comes after it. Loops and function declarations end with a block.
func NeedsTerminator(s Statement) bool {
	switch s.(type) {
	case *ForStatement, *FunctionDeclaration:
		return false
	}
	return true
}

// Block is a braced statement sequence.
type Block struct {
	Token      token.Token // token.LBRACE
	Statements []Statement
}

func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) Pos() token.Position  { return b.Token.Pos() }
func (b *Block) String() string {
	if len(b.Statements) == 0 {
		return "{ }"
	}
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
		if i < len(b.Statements)-1 && NeedsTerminator(s) {
			parts[i] += ";"
		}
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// Identifier
type Identifier struct {
	Token token.Token // token.IDENT
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() token.Position  { return i.Token.Pos() }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral is always a float; integers only arise at runtime.
type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) Pos() token.Position  { return nl.Token.Pos() }
func (nl *NumberLiteral) String() string {
	switch {
	case math.IsInf(nl.Value, 1):
		return "1e999"
	case math.IsInf(nl.Value, -1):
		return "-1e999"
	}
	s := strconv.FormatFloat(nl.Value, 'g', -1, 64)
	return strings.Replace(s, "e+", "e", 1)
}

// TextLiteral holds the literal body after escape processing.
type TextLiteral struct {
	Token token.Token
	Value string
}

func (tl *TextLiteral) expressionNode()      {}
func (tl *TextLiteral) TokenLiteral() string { return tl.Token.Literal }
func (tl *TextLiteral) Pos() token.Position  { return tl.Token.Pos() }
func (tl *TextLiteral) String() string {
	escaped := strings.ReplaceAll(tl.Value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return `"` + escaped + `"`
}

// ArrayLiteral: [a, b, c]
type ArrayLiteral struct {
	Token    token.Token // token.LBRACKET
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() token.Position  { return al.Token.Pos() }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

// ArrayIndex: name[index]. The target is always a named variable.
type ArrayIndex struct {
	Token token.Token // token.LBRACKET
	Array *Identifier
	Index Expression
}

func (ai *ArrayIndex) expressionNode()      {}
func (ai *ArrayIndex) TokenLiteral() string { return ai.Token.Literal }
func (ai *ArrayIndex) Pos() token.Position  { return ai.Array.Pos() }
func (ai *ArrayIndex) String() string {
	return ai.Array.String() + "[" + ai.Index.String() + "]"
}

// FunctionCall: name(args...)
type FunctionCall struct {
	Token     token.Token // token.LPAREN
	Function  *Identifier
	Arguments []Expression
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) Pos() token.Position  { return fc.Function.Pos() }
func (fc *FunctionCall) String() string {
	return fc.Function.String() + "(" + joinExpressions(fc.Arguments) + ")"
}

// BinaryOperator enumerates the infix operators.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpGreaterThan
	OpLessThan
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpGreaterThan:
		return ">"
	case OpLessThan:
		return "<"
	}
	return "?"
}

// IsComparison reports whether op yields a 1/0 comparison result.
func (op BinaryOperator) IsComparison() bool {
	return op == OpGreaterThan || op == OpLessThan
}

// BinaryExpression: left op right
type BinaryExpression struct {
	Token    token.Token // the operator token
	Operator BinaryOperator
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Pos() token.Position  { return be.Token.Pos() }
func (be *BinaryExpression) String() string {
	return "(" + operand(be.Left) + " " + be.Operator.String() + " " + operand(be.Right) + ")"
}

// operand parenthesizes conditionals, which cannot appear bare as operands.
func operand(e Expression) string {
	if _, ok := e.(*ConditionalExpression); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// ConditionalExpression: if cond { ... } else { ... }
// An "else if" is stored as an Alternative block holding a single
// ExpressionStatement with the nested conditional.
type ConditionalExpression struct {
	Token       token.Token // token.IF
	Condition   Expression
	Consequence *Block
	Alternative *Block // nil if no else
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConditionalExpression) Pos() token.Position  { return ce.Token.Pos() }
func (ce *ConditionalExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(ce.Condition.String())
	out.WriteString(" ")
	out.WriteString(ce.Consequence.String())
	if ce.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(ce.Alternative.String())
	}
	return out.String()
}

// ExpressionStatement
type ExpressionStatement struct {
	Token      token.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() token.Position  { return es.Token.Pos() }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// VariableDeclaration: let name = value (or var name = value)
type VariableDeclaration struct {
	Token token.Token // token.LET or token.VAR
	Name  *Identifier
	Value Expression
}

func (vd *VariableDeclaration) statementNode()       {}
func (vd *VariableDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VariableDeclaration) Pos() token.Position  { return vd.Token.Pos() }
func (vd *VariableDeclaration) String() string {
	return vd.Token.Literal + " " + vd.Name.String() + " = " + vd.Value.String()
}

// VariableAssignment: name = value
type VariableAssignment struct {
	Token token.Token // token.ASSIGN
	Name  *Identifier
	Value Expression
}

func (va *VariableAssignment) statementNode()       {}
func (va *VariableAssignment) TokenLiteral() string { return va.Token.Literal }
func (va *VariableAssignment) Pos() token.Position  { return va.Name.Pos() }
func (va *VariableAssignment) String() string {
	return va.Name.String() + " = " + va.Value.String()
}

// ForStatement: for v in start to end step s { ... }
type ForStatement struct {
	Token    token.Token // token.FOR
	Variable *Identifier
	Start    Expression
	End      Expression
	Step     Expression // nil means 1
	Body     *Block
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() token.Position  { return fs.Token.Pos() }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for ")
	out.WriteString(fs.Variable.String())
	out.WriteString(" in ")
	out.WriteString(fs.Start.String())
	out.WriteString(" to ")
	out.WriteString(fs.End.String())
	if fs.Step != nil {
		out.WriteString(" step ")
		out.WriteString(fs.Step.String())
	}
	out.WriteString(" ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// FunctionDeclaration: func name(a, b) { ... }
type FunctionDeclaration struct {
	Token      token.Token // token.FUNC
	Name       *Identifier
	Parameters []*Identifier
	Body       *Block
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Pos() token.Position  { return fd.Token.Pos() }
func (fd *FunctionDeclaration) String() string {
	params := make([]string, len(fd.Parameters))
	for i, p := range fd.Parameters {
		params[i] = p.String()
	}
	return "func " + fd.Name.String() + "(" + strings.Join(params, ", ") + ") " + fd.Body.String()
}

// ReturnStatement: return value
type ReturnStatement struct {
	Token token.Token // token.RETURN
	Value Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() token.Position  { return rs.Token.Pos() }
func (rs *ReturnStatement) String() string       { return "return " + rs.Value.String() }

// BreakStatement
type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Pos() token.Position  { return bs.Token.Pos() }
func (bs *BreakStatement) String() string       { return "break" }

// ContinueStatement
type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Pos() token.Position  { return cs.Token.Pos() }
func (cs *ContinueStatement) String() string       { return "continue" }

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
