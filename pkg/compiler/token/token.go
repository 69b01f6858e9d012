// Package token defines the lexical tokens of ruscal source code.
package token

import "fmt"

// TokenType represents the type of a token.
type TokenType int

// Token types
const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	// Literals
	IDENT  // identifier
	NUMBER // 1, 2.5, .5, 1e-3
	STRING // "text"

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	ASSIGN   // =
	LT       // <
	GT       // >

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;

	// Keywords
	LET
	VAR
	IF
	ELSE
	FOR
	IN
	TO
	STEP
	FUNC
	RETURN
	BREAK
	CONTINUE
)

// Position is a 1-indexed line/column location in the source.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Offset  int // byte offset of the first character
}

// Pos returns the token's position.
func (t Token) Pos() Position {
	return Position{Line: t.Line, Column: t.Column}
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Literal)
}

var tokenTypeNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:     "+",
	MINUS:    "-",
	ASTERISK: "*",
	SLASH:    "/",
	ASSIGN:   "=",
	LT:       "<",
	GT:       ">",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	SEMICOLON: ";",

	LET:      "let",
	VAR:      "var",
	IF:       "if",
	ELSE:     "else",
	FOR:      "for",
	IN:       "in",
	TO:       "to",
	STEP:     "step",
	FUNC:     "func",
	RETURN:   "return",
	BREAK:    "break",
	CONTINUE: "continue",
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsKeyword returns true if the token type is a keyword.
func (t TokenType) IsKeyword() bool {
	return t >= LET && t <= CONTINUE
}

// keywords maps reserved words to their TokenType. Matching is case-sensitive.
var keywords = map[string]TokenType{
	"let":      LET,
	"var":      VAR,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"to":       TO,
	"step":     STEP,
	"func":     FUNC,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
}

// LookupIdent returns the keyword TokenType for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
