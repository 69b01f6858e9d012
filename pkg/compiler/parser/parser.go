// Package parser turns a token stream into an ast.Program.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/compiler/lexer"
	"github.com/zurustar/ruscal/pkg/compiler/token"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
)

var precedences = map[token.TokenType]int{
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
}

var binaryOperators = map[token.TokenType]ast.BinaryOperator{
	token.PLUS:     ast.OpAdd,
	token.MINUS:    ast.OpSub,
	token.ASTERISK: ast.OpMul,
	token.SLASH:    ast.OpDiv,
	token.GT:       ast.OpGreaterThan,
	token.LT:       ast.OpLessThan,
}

// ParseError is a syntax error at a source position.
type ParseError struct {
	Message string
	Line    int
	Column  int
	// Lexical is set for illegal characters and unterminated strings.
	Lexical bool
	// AtEOF is set when the input ended before the construct was complete.
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}

// Parser parses ruscal source code into an AST.
// Parsing stops at the first error.
type Parser struct {
	l      *lexer.Lexer
	errors []*ParseError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*ParseError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.PLUS, p.parseSignedNumber)
	p.registerPrefix(token.MINUS, p.parseSignedNumber)
	p.registerPrefix(token.STRING, p.parseTextLiteral)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range binaryOperators {
		p.registerInfix(tt, p.parseBinaryExpression)
	}

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns the parser errors.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ParseProgram parses the entire input. Check Errors() before using the result.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = p.parseStatementList(token.EOF)
	return program
}

// parseStatementList parses statements until end. Every statement except
// the last one before end needs a ';' unless it ends with a block.
func (p *Parser) parseStatementList(end token.TokenType) []ast.Statement {
	statements := []ast.Statement{}

	for !p.curTokenIs(end) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, "expected %s, got %s", describeType(end), describe(p.curToken))
			return statements
		}

		stmt := p.parseStatement()
		if stmt == nil {
			return statements
		}
		statements = append(statements, stmt)

		switch {
		case p.peekTokenIs(token.SEMICOLON):
			p.nextToken()
		case ast.NeedsTerminator(stmt) && !p.peekTokenIs(end):
			p.peekError(token.SEMICOLON)
			return statements
		}
		p.nextToken()
	}

	return statements
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET, token.VAR:
		return p.parseVariableDeclaration()
	case token.FUNC:
		return p.parseFunctionDeclaration()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseVariableAssignment()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseVariableDeclaration() ast.Statement {
	stmt := &ast.VariableDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseVariableAssignment() ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	stmt := &ast.VariableAssignment{Token: p.curToken, Name: name}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	if stmt.Start = p.parseExpression(LOWEST); stmt.Start == nil {
		return nil
	}

	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	if stmt.End = p.parseExpression(LOWEST); stmt.End == nil {
		return nil
	}

	if p.peekTokenIs(token.STEP) {
		p.nextToken()
		p.nextToken()
		if stmt.Step = p.parseExpression(LOWEST); stmt.Step == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	stmt := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	stmt.Parameters = []*ast.Identifier{}
	for !p.peekTokenIs(token.RPAREN) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Parameters = append(stmt.Parameters, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if stmt.Body = p.parseBlock(); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseBlock parses "{ statements }" with curToken on '{' and leaves
// curToken on '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.nextToken()

	block.Statements = p.parseStatementList(token.RBRACE)
	if len(p.errors) > 0 {
		return nil
	}
	return block
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	// A conditional is a whole expression on its own; it cannot be an
	// operand unless parenthesized.
	if p.curTokenIs(token.IF) {
		if precedence > LOWEST {
			p.errorAt(p.curToken, "conditional expression must be parenthesized when used as an operand")
			return nil
		}
		return p.parseConditionalExpression()
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: binaryOperators[p.curToken.Type],
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	if expression.Operator.IsComparison() && p.peekPrecedence() == LESSGREATER {
		p.errorAt(p.peekToken, "comparison operators cannot be chained")
		return nil
	}
	return expression
}

func (p *Parser) parseConditionalExpression() ast.Expression {
	expression := &ast.ConditionalExpression{Token: p.curToken}
	p.nextToken()

	if expression.Condition = p.parseExpression(LOWEST); expression.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	if expression.Consequence = p.parseBlock(); expression.Consequence == nil {
		return nil
	}

	if !p.peekTokenIs(token.ELSE) {
		return expression
	}
	p.nextToken()

	switch {
	case p.peekTokenIs(token.LBRACE):
		p.nextToken()
		if expression.Alternative = p.parseBlock(); expression.Alternative == nil {
			return nil
		}
	case p.peekTokenIs(token.IF):
		p.nextToken()
		ifToken := p.curToken
		nested := p.parseConditionalExpression()
		if nested == nil {
			return nil
		}
		expression.Alternative = &ast.Block{
			Token:      ifToken,
			Statements: []ast.Statement{&ast.ExpressionStatement{Token: ifToken, Expression: nested}},
		}
	default:
		p.peekError(token.LBRACE)
		return nil
	}
	return expression
}

// parseIdentifier parses a bare name, an array index or a function call.
// Indexing and calls only apply to names.
func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	switch {
	case p.peekTokenIs(token.LBRACKET):
		return p.parseArrayIndex(ident)
	case p.peekTokenIs(token.LPAREN):
		return p.parseFunctionCall(ident)
	}
	return ident
}

func (p *Parser) parseArrayIndex(array *ast.Identifier) ast.Expression {
	p.nextToken()
	exp := &ast.ArrayIndex{Token: p.curToken, Array: array}
	p.nextToken()

	if exp.Index = p.parseExpression(LOWEST); exp.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

// parseFunctionCall parses "name(arg, arg ...)". Commas between
// arguments are optional.
func (p *Parser) parseFunctionCall(function *ast.Identifier) ast.Expression {
	p.nextToken()
	call := &ast.FunctionCall{Token: p.curToken, Function: function, Arguments: []ast.Expression{}}

	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()

	return call
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	return p.numberLiteral(p.curToken)
}

// parseSignedNumber handles a sign written directly against a number
// literal, such as -3 or +.5. There is no general unary operator.
func (p *Parser) parseSignedNumber() ast.Expression {
	sign := p.curToken
	if !p.peekTokenIs(token.NUMBER) || p.peekToken.Offset != sign.End() {
		p.noPrefixParseFnError()
		return nil
	}
	p.nextToken()

	tok := sign
	tok.Type = token.NUMBER
	tok.Literal = sign.Literal + p.curToken.Literal
	return p.numberLiteral(tok)
}

func (p *Parser) numberLiteral(tok token.Token) ast.Expression {
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		p.errorAt(tok, "could not parse %q as a number", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: tok, Value: value}
}

// parseTextLiteral applies the two recognized escapes: \\ then \n.
func (p *Parser) parseTextLiteral() ast.Expression {
	body := strings.ReplaceAll(p.curToken.Literal, `\\`, `\`)
	body = strings.ReplaceAll(body, `\n`, "\n")
	return &ast.TextLiteral{Token: p.curToken, Value: body}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{Token: p.curToken, Elements: []ast.Expression{}}

	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return array
	}

	p.nextToken()
	for {
		element := p.parseExpression(LOWEST)
		if element == nil {
			return nil
		}
		array.Elements = append(array.Elements, element)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return array
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseIllegal() ast.Expression {
	tok := p.curToken
	perr := &ParseError{Line: tok.Line, Column: tok.Column, Lexical: true}
	if strings.HasPrefix(tok.Literal, `"`) {
		perr.Message = "unterminated string literal"
		perr.AtEOF = true
	} else {
		perr.Message = fmt.Sprintf("illegal character %q", tok.Literal)
	}
	p.errors = append(p.errors, perr)
	return nil
}

// Helper functions
func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()

	// Skip comments
	for p.peekToken.Type == token.COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) peekError(t token.TokenType) {
	if p.peekTokenIs(token.ILLEGAL) {
		p.nextToken()
		p.parseIllegal()
		return
	}
	p.errorAt(p.peekToken, "expected %s, got %s", describeType(t), describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError() {
	p.errorAt(p.curToken, "unexpected %s", describe(p.curToken))
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		AtEOF:   tok.Type == token.EOF,
	})
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case token.NUMBER:
		return fmt.Sprintf("number %s", tok.Literal)
	case token.STRING:
		return "string literal"
	}
	if tok.Type.IsKeyword() {
		return fmt.Sprintf("keyword %q", tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func describeType(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.EOF:
		return "end of input"
	}
	return fmt.Sprintf("%q", t.String())
}
