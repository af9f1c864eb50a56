package lexer

import "fmt"

// TokenType represents the type of a token in moops source
type TokenType int

const (
	// TOKEN_EOF marks the end of the token stream.
	TOKEN_EOF TokenType = iota
	// TOKEN_ERROR represents a lexical error encountered during scanning.
	TOKEN_ERROR

	// Keywords - Declarations
	TOKEN_USE      // use
	TOKEN_CLASS    // class
	TOKEN_ROLE     // role
	TOKEN_EXTENDS  // extends
	TOKEN_USING    // using
	TOKEN_WITH     // with (synonym of using)
	TOKEN_HAS      // has
	TOKEN_METHOD   // method
	TOKEN_REQUIRES // requires
	TOKEN_BEFORE   // before
	TOKEN_AFTER    // after
	TOKEN_AS       // as

	// Keywords - Statements
	TOKEN_LET    // let
	TOKEN_RETURN // return
	TOKEN_IF     // if
	TOKEN_ELSIF  // elsif
	TOKEN_ELSE   // else
	TOKEN_UNLESS // unless
	TOKEN_TRY    // try
	TOKEN_CATCH  // catch
	TOKEN_DIE    // die
	TOKEN_SAY    // say
	TOKEN_SUPER  // super

	// Keywords - Logical operators
	TOKEN_AND // and
	TOKEN_OR  // or
	TOKEN_NOT // not

	// Literals
	TOKEN_IDENTIFIER     // Calculator, add, PositiveInt
	TOKEN_VARIABLE       // $self, $addition
	TOKEN_INT_LITERAL    // 42, 1_000
	TOKEN_FLOAT_LITERAL  // 3.14, 2.5e10
	TOKEN_STRING_LITERAL // "hello", 'raw'
	TOKEN_TRUE           // true
	TOKEN_FALSE          // false
	TOKEN_UNDEF          // undef

	// Operators - Single character
	TOKEN_BANG      // !
	TOKEN_QUESTION  // ?
	TOKEN_PIPE      // |
	TOKEN_COLON     // :
	TOKEN_SEMICOLON // ;
	TOKEN_DOT       // .
	TOKEN_COMMA     // ,
	TOKEN_EQUALS    // =
	TOKEN_PLUS      // +
	TOKEN_MINUS     // -
	TOKEN_STAR      // *
	TOKEN_SLASH     // /
	TOKEN_PERCENT   // %
	TOKEN_TILDE     // ~
	TOKEN_LT        // <
	TOKEN_GT        // >

	// Operators - Two character
	TOKEN_EQ           // ==
	TOKEN_NEQ          // !=
	TOKEN_LTE          // <=
	TOKEN_GTE          // >=
	TOKEN_DOUBLE_PIPE  // ||
	TOKEN_DOUBLE_AMP   // &&
	TOKEN_DOUBLE_COLON // ::
	TOKEN_FAT_ARROW    // =>

	// Delimiters
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }
	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
)

// TokenTypeNames maps token types to their string representations
var TokenTypeNames = map[TokenType]string{
	TOKEN_EOF:            "EOF",
	TOKEN_ERROR:          "ERROR",
	TOKEN_USE:            "USE",
	TOKEN_CLASS:          "CLASS",
	TOKEN_ROLE:           "ROLE",
	TOKEN_EXTENDS:        "EXTENDS",
	TOKEN_USING:          "USING",
	TOKEN_WITH:           "WITH",
	TOKEN_HAS:            "HAS",
	TOKEN_METHOD:         "METHOD",
	TOKEN_REQUIRES:       "REQUIRES",
	TOKEN_BEFORE:         "BEFORE",
	TOKEN_AFTER:          "AFTER",
	TOKEN_AS:             "AS",
	TOKEN_LET:            "LET",
	TOKEN_RETURN:         "RETURN",
	TOKEN_IF:             "IF",
	TOKEN_ELSIF:          "ELSIF",
	TOKEN_ELSE:           "ELSE",
	TOKEN_UNLESS:         "UNLESS",
	TOKEN_TRY:            "TRY",
	TOKEN_CATCH:          "CATCH",
	TOKEN_DIE:            "DIE",
	TOKEN_SAY:            "SAY",
	TOKEN_SUPER:          "SUPER",
	TOKEN_AND:            "AND",
	TOKEN_OR:             "OR",
	TOKEN_NOT:            "NOT",
	TOKEN_IDENTIFIER:     "IDENTIFIER",
	TOKEN_VARIABLE:       "VARIABLE",
	TOKEN_INT_LITERAL:    "INT_LITERAL",
	TOKEN_FLOAT_LITERAL:  "FLOAT_LITERAL",
	TOKEN_STRING_LITERAL: "STRING_LITERAL",
	TOKEN_TRUE:           "TRUE",
	TOKEN_FALSE:          "FALSE",
	TOKEN_UNDEF:          "UNDEF",
	TOKEN_BANG:           "BANG",
	TOKEN_QUESTION:       "QUESTION",
	TOKEN_PIPE:           "PIPE",
	TOKEN_COLON:          "COLON",
	TOKEN_SEMICOLON:      "SEMICOLON",
	TOKEN_DOT:            "DOT",
	TOKEN_COMMA:          "COMMA",
	TOKEN_EQUALS:         "EQUALS",
	TOKEN_PLUS:           "PLUS",
	TOKEN_MINUS:          "MINUS",
	TOKEN_STAR:           "STAR",
	TOKEN_SLASH:          "SLASH",
	TOKEN_PERCENT:        "PERCENT",
	TOKEN_TILDE:          "TILDE",
	TOKEN_LT:             "LT",
	TOKEN_GT:             "GT",
	TOKEN_EQ:             "EQ",
	TOKEN_NEQ:            "NEQ",
	TOKEN_LTE:            "LTE",
	TOKEN_GTE:            "GTE",
	TOKEN_DOUBLE_PIPE:    "DOUBLE_PIPE",
	TOKEN_DOUBLE_AMP:     "DOUBLE_AMP",
	TOKEN_DOUBLE_COLON:   "DOUBLE_COLON",
	TOKEN_FAT_ARROW:      "FAT_ARROW",
	TOKEN_LBRACE:         "LBRACE",
	TOKEN_RBRACE:         "RBRACE",
	TOKEN_LPAREN:         "LPAREN",
	TOKEN_RPAREN:         "RPAREN",
	TOKEN_LBRACKET:       "LBRACKET",
	TOKEN_RBRACKET:       "RBRACKET",
}

// String returns the string representation of a TokenType
func (t TokenType) String() string {
	if name, ok := TokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", t)
}

// Token represents a single lexical token
type Token struct {
	Type    TokenType   // The type of the token
	Lexeme  string      // The raw text of the token
	Literal interface{} // The parsed value (for literals and variables)
	Line    int         // Line number (1-indexed)
	Column  int         // Column number (1-indexed)
	Offset  int         // Byte offset of the first character
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// String returns a string representation of the token
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s '%s' (%v) at %d:%d",
			t.Type.String(), t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s '%s' at %d:%d",
		t.Type.String(), t.Lexeme, t.Line, t.Column)
}

// Keywords maps reserved words to their token types
var Keywords = map[string]TokenType{
	// Declarations
	"use":      TOKEN_USE,
	"class":    TOKEN_CLASS,
	"role":     TOKEN_ROLE,
	"extends":  TOKEN_EXTENDS,
	"using":    TOKEN_USING,
	"with":     TOKEN_WITH,
	"has":      TOKEN_HAS,
	"method":   TOKEN_METHOD,
	"requires": TOKEN_REQUIRES,
	"before":   TOKEN_BEFORE,
	"after":    TOKEN_AFTER,
	"as":       TOKEN_AS,

	// Statements
	"let":    TOKEN_LET,
	"return": TOKEN_RETURN,
	"if":     TOKEN_IF,
	"elsif":  TOKEN_ELSIF,
	"else":   TOKEN_ELSE,
	"unless": TOKEN_UNLESS,
	"try":    TOKEN_TRY,
	"catch":  TOKEN_CATCH,
	"die":    TOKEN_DIE,
	"say":    TOKEN_SAY,
	"super":  TOKEN_SUPER,

	"and": TOKEN_AND,
	"or":  TOKEN_OR,
	"not": TOKEN_NOT,

	"true":  TOKEN_TRUE,
	"false": TOKEN_FALSE,
	"undef": TOKEN_UNDEF,
	"nil":   TOKEN_UNDEF,
}

// LexError represents an error encountered during lexical analysis
type LexError struct {
	Message string // Error message
	Line    int    // Line number where error occurred
	Column  int    // Column number where error occurred
	Offset  int    // Byte offset where error occurred
	Lexeme  string // The problematic text
}

// Error implements the error interface
func (e LexError) Error() string {
	return fmt.Sprintf("Lexical error at %d:%d: %s (near '%s')",
		e.Line, e.Column, e.Message, e.Lexeme)
}
