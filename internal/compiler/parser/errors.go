// Package parser implements the moops parser, transforming token streams into Abstract Syntax Trees (ASTs).
// It uses recursive descent parsing with panic mode error recovery to handle syntax errors gracefully.
package parser

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/lexer"
)

// ParseError represents an error encountered during parsing
type ParseError struct {
	Message  string
	Location ast.SourceLocation
	Token    lexer.Token
}

// Error implements the error interface
func (e *ParseError) Error() string {
	near := e.Token.Lexeme
	if e.Token.Type == lexer.TOKEN_EOF {
		near = "end of file"
	}
	return fmt.Sprintf("Parse error at %d:%d: %s (near '%s')",
		e.Location.Line, e.Location.Column, e.Message, near)
}

// NewParseError creates a new parse error
func NewParseError(message string, token lexer.Token) ParseError {
	return ParseError{
		Message:  message,
		Location: ast.TokenLocation(token),
		Token:    token,
	}
}

// fromLexError carries a scanner failure into the parser's error list
func fromLexError(e lexer.LexError) ParseError {
	return ParseError{
		Message:  e.Message,
		Location: ast.SourceLocation{Line: e.Line, Column: e.Column, Offset: e.Offset},
		Token:    lexer.Token{Type: lexer.TOKEN_ERROR, Lexeme: e.Lexeme, Line: e.Line, Column: e.Column, Offset: e.Offset},
	}
}
