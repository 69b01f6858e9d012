// Package lexer provides lexical analysis for ruscal source code.
package lexer

import (
	"unicode/utf8"

	"github.com/zurustar/ruscal/pkg/compiler/token"
)

// Lexer tokenizes ruscal source code.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number
}

// New creates a new Lexer.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	line, column, offset := l.line, l.column, l.position

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.newToken(token.PLUS)
	case '-':
		tok = l.newToken(token.MINUS)
	case '*':
		tok = l.newToken(token.ASTERISK)
	case '/':
		if l.peekChar() == '/' {
			return token.Token{Type: token.COMMENT, Literal: l.readComment(), Line: line, Column: column, Offset: offset}
		}
		tok = l.newToken(token.SLASH)
	case '=':
		tok = l.newToken(token.ASSIGN)
	case '<':
		tok = l.newToken(token.LT)
	case '>':
		tok = l.newToken(token.GT)
	case '(':
		tok = l.newToken(token.LPAREN)
	case ')':
		tok = l.newToken(token.RPAREN)
	case '{':
		tok = l.newToken(token.LBRACE)
	case '}':
		tok = l.newToken(token.RBRACE)
	case '[':
		tok = l.newToken(token.LBRACKET)
	case ']':
		tok = l.newToken(token.RBRACKET)
	case ',':
		tok = l.newToken(token.COMMA)
	case ';':
		tok = l.newToken(token.SEMICOLON)
	case '"':
		literal, ok := l.readString()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: literal, Line: line, Column: column, Offset: offset}
		}
		return token.Token{Type: token.STRING, Literal: literal, Line: line, Column: column, Offset: offset}
	case 0:
		if l.position >= len(l.input) {
			return token.Token{Type: token.EOF, Line: line, Column: column, Offset: offset}
		}
		tok = l.newToken(token.ILLEGAL)
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(literal), Literal: literal, Line: line, Column: column, Offset: offset}
		}
		if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())) {
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Line: line, Column: column, Offset: offset}
		}
		tok = l.newIllegalToken()
	}

	l.readChar()
	return tok
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads a decimal floating point literal: digits, an optional
// fraction and an optional exponent. The exponent is only consumed when
// digits follow it.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && l.readPosition+1 < len(l.input) && isDigit(l.input[l.readPosition+1])) {
			l.readChar() // consume 'e'
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[position:l.position]
}

// readString reads a string literal body. The quote character cannot be
// escaped. ok is false when the input ends before the closing quote; the
// returned literal then includes the opening quote.
func (l *Lexer) readString() (literal string, ok bool) {
	position := l.position + 1
	for {
		l.readChar()
		if l.ch == '"' {
			literal = l.input[position:l.position]
			l.readChar() // consume closing quote
			return literal, true
		}
		if l.position >= len(l.input) {
			return l.input[position-1:], false
		}
	}
}

// readComment reads a single-line comment.
func (l *Lexer) readComment() string {
	position := l.position
	for l.ch != '\n' && l.position < len(l.input) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// skipWhitespace skips whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// newToken creates a single-character token at the current position.
func (l *Lexer) newToken(tokenType token.TokenType) token.Token {
	return token.Token{Type: tokenType, Literal: l.input[l.position : l.position+1], Line: l.line, Column: l.column, Offset: l.position}
}

// newIllegalToken creates an ILLEGAL token spanning the whole UTF-8
// sequence at the current position. Invalid bytes are taken one at a time.
func (l *Lexer) newIllegalToken() token.Token {
	_, size := utf8.DecodeRuneInString(l.input[l.position:])
	tok := token.Token{Type: token.ILLEGAL, Literal: l.input[l.position : l.position+size], Line: l.line, Column: l.column, Offset: l.position}
	for i := 1; i < size; i++ {
		l.readChar()
	}
	return tok
}

// isLetter checks if a character can start an identifier.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
