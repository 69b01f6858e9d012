package lexer

import (
	"testing"

	"github.com/zurustar/ruscal/pkg/compiler/token"
)

func TestNextToken(t *testing.T) {
	input := `
	let five = 5;
	var half = .5;
	func add(a, b) {
		return a + b;
	}
	// comment
	for i in 0 to 10 step 2 { if i > 3 { break; } else { continue; } }
	print(add(five, half) * 2 / 1e3 - x[0]);
	s = "a\nb" < "c";
	`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},

		{token.VAR, "var"},
		{token.IDENT, "half"},
		{token.ASSIGN, "="},
		{token.NUMBER, ".5"},
		{token.SEMICOLON, ";"},

		{token.FUNC, "func"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},

		{token.COMMENT, "// comment"},

		{token.FOR, "for"},
		{token.IDENT, "i"},
		{token.IN, "in"},
		{token.NUMBER, "0"},
		{token.TO, "to"},
		{token.NUMBER, "10"},
		{token.STEP, "step"},
		{token.NUMBER, "2"},
		{token.LBRACE, "{"},
		{token.IF, "if"},
		{token.IDENT, "i"},
		{token.GT, ">"},
		{token.NUMBER, "3"},
		{token.LBRACE, "{"},
		{token.BREAK, "break"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.CONTINUE, "continue"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},

		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.IDENT, "half"},
		{token.RPAREN, ")"},
		{token.ASTERISK, "*"},
		{token.NUMBER, "2"},
		{token.SLASH, "/"},
		{token.NUMBER, "1e3"},
		{token.MINUS, "-"},
		{token.IDENT, "x"},
		{token.LBRACKET, "["},
		{token.NUMBER, "0"},
		{token.RBRACKET, "]"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},

		{token.IDENT, "s"},
		{token.ASSIGN, "="},
		{token.STRING, `a\nb`},
		{token.LT, "<"},
		{token.STRING, "c"},
		{token.SEMICOLON, ";"},

		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input    string
		literals []string
	}{
		{"42", []string{"42"}},
		{"3.14", []string{"3.14"}},
		{"1.", []string{"1."}},
		{".25", []string{".25"}},
		{"1e10", []string{"1e10"}},
		{"2.5E-3", []string{"2.5E-3"}},
		{"6e+2", []string{"6e+2"}},
		// exponent marker without digits is not part of the number
		{"1e", []string{"1", "e"}},
		{"1e+", []string{"1", "e", "+"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			for i, want := range tt.literals {
				tok := l.NextToken()
				if tok.Literal != want {
					t.Fatalf("token %d: expected %q, got %q", i, want, tok.Literal)
				}
			}
			if tok := l.NextToken(); tok.Type != token.EOF {
				t.Errorf("expected EOF, got %s %q", tok.Type, tok.Literal)
			}
		})
	}
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	l := New("let Let LET")
	want := []token.TokenType{token.LET, token.IDENT, token.IDENT}
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Errorf("token %d: expected %s, got %s", i, w, tok.Type)
		}
	}
}

func TestLineAndColumn(t *testing.T) {
	input := "let x = 1;\n  y = x;"
	tests := []struct {
		literal string
		line    int
		column  int
		offset  int
	}{
		{"let", 1, 1, 0},
		{"x", 1, 5, 4},
		{"=", 1, 7, 6},
		{"1", 1, 9, 8},
		{";", 1, 10, 9},
		{"y", 2, 3, 13},
		{"=", 2, 5, 15},
		{"x", 2, 7, 17},
		{";", 2, 8, 18},
	}

	l := New(input)
	for _, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.literal || tok.Line != tt.line || tok.Column != tt.column || tok.Offset != tt.offset {
			t.Errorf("expected %q at %d:%d (offset %d), got %q at %d:%d (offset %d)",
				tt.literal, tt.line, tt.column, tt.offset, tok.Literal, tok.Line, tok.Column, tok.Offset)
		}
	}
}

func TestStringsSpanLines(t *testing.T) {
	l := New("\"a\nb\" x")
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "a\nb" {
		t.Fatalf("expected multi-line string, got %s %q", tok.Type, tok.Literal)
	}
	next := l.NextToken()
	if next.Line != 2 || next.Column != 4 {
		t.Errorf("expected x at 2:4, got %d:%d", next.Line, next.Column)
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"@", "@"},
		{"x # y", "#"},
		{`"unterminated`, `"unterminated`},
		{`"`, `"`},
		{"é", "é"},
		{"x = 値", "値"},
		{"\xff", "\xff"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input)
			for {
				tok := l.NextToken()
				if tok.Type == token.EOF {
					t.Fatalf("expected ILLEGAL %q, reached EOF", tt.literal)
				}
				if tok.Type == token.ILLEGAL {
					if tok.Literal != tt.literal {
						t.Errorf("expected literal %q, got %q", tt.literal, tok.Literal)
					}
					return
				}
			}
		})
	}
}

func TestIllegalMultiByteIsOneToken(t *testing.T) {
	l := New("é x")

	tok := l.NextToken()
	if tok.Type != token.ILLEGAL || tok.Literal != "é" {
		t.Fatalf("expected ILLEGAL \"é\", got %s %q", tok.Type, tok.Literal)
	}
	next := l.NextToken()
	if next.Type != token.IDENT || next.Literal != "x" {
		t.Fatalf("expected IDENT x after the illegal character, got %s %q", next.Type, next.Literal)
	}
	if next.Offset != len("é ") {
		t.Errorf("expected x at offset %d, got %d", len("é "), next.Offset)
	}
}

func TestCommentAtEndOfInput(t *testing.T) {
	l := New("x // trailing")
	if tok := l.NextToken(); tok.Type != token.IDENT {
		t.Fatalf("expected IDENT, got %s", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != token.COMMENT || tok.Literal != "// trailing" {
		t.Fatalf("expected comment, got %s %q", tok.Type, tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Fatalf("expected EOF, got %s", tok.Type)
	}
}
