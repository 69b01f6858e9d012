package compiler

import (
	"github.com/zurustar/ruscal/pkg/compiler/ast"
	"github.com/zurustar/ruscal/pkg/compiler/lexer"
	"github.com/zurustar/ruscal/pkg/compiler/parser"
	"github.com/zurustar/ruscal/pkg/script"
)

// Compile parses source code into a program.
// It chains the lexer → parser pipeline and stops at the first syntax error.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//
// Returns:
//   - *ast.Program: The parsed program
//   - error: A *CompileError if the source does not match the grammar
func Compile(source string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, fromParseError(errs[0], source)
	}
	return program, nil
}

// CompileScript compiles a script loaded by script.Loader. Syntax errors
// carry the script name.
func CompileScript(s *script.Script) (*ast.Program, error) {
	program, err := Compile(s.Content)
	if err != nil {
		if ce, ok := IsCompileError(err); ok {
			ce.File = s.Name
		}
		return nil, err
	}
	return program, nil
}

func fromParseError(pe *parser.ParseError, source string) *CompileError {
	var ce *CompileError
	if pe.Lexical {
		ce = NewLexerErrorWithContext(pe.Message, pe.Line, pe.Column, source)
	} else {
		ce = NewParserErrorWithContext(pe.Message, pe.Line, pe.Column, source)
	}
	ce.Incomplete = pe.AtEOF
	return ce
}
