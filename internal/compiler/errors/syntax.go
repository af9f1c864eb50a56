package errors

import (
	"strings"

	"github.com/moops-lang/moops/internal/compiler/lexer"
	"github.com/moops-lang/moops/internal/compiler/parser"
)

// Syntax error codes (SYN001-099)
const (
	// ErrUnexpectedToken indicates an unexpected token was encountered
	ErrUnexpectedToken ErrorCode = "SYN001"
	// ErrExpectedToken indicates a specific token was expected but not found
	ErrExpectedToken ErrorCode = "SYN002"
	// ErrUnterminatedString indicates a string literal was not terminated
	ErrUnterminatedString ErrorCode = "SYN003"
	// ErrInvalidNumber indicates an invalid number literal
	ErrInvalidNumber ErrorCode = "SYN004"
	// ErrInvalidCharacter indicates a character that starts no token
	ErrInvalidCharacter ErrorCode = "SYN005"
	// ErrUnexpectedEOF indicates unexpected end of file
	ErrUnexpectedEOF ErrorCode = "SYN006"
	// ErrUnknownOption indicates an unknown attribute option
	ErrUnknownOption ErrorCode = "SYN007"
	// ErrInvalidAssignment indicates an assignment to something that cannot be assigned
	ErrInvalidAssignment ErrorCode = "SYN008"
	// ErrMisplacedMember indicates a class member outside a class body
	ErrMisplacedMember ErrorCode = "SYN009"
)

// FromParseError classifies a parser or scanner error
func FromParseError(pe parser.ParseError) *CompilerError {
	code, typ := classifySyntax(pe)

	e := newError(code, typ, CategorySyntax, SeverityError, pe.Message, pe.Location)
	if pe.Token.Type != lexer.TOKEN_EOF && pe.Token.Lexeme != "" {
		e.Actual = pe.Token.Lexeme
	}
	if msg, hint, ok := splitHint(pe.Message); ok {
		e.Message = msg
		e.Suggestion = hint
	}
	return e
}

// FromParseErrors converts a parser error list
func FromParseErrors(errs []parser.ParseError) ErrorList {
	out := make(ErrorList, 0, len(errs))
	for _, pe := range errs {
		out = append(out, FromParseError(pe))
	}
	return out
}

func classifySyntax(pe parser.ParseError) (ErrorCode, string) {
	msg := pe.Message
	switch {
	case strings.HasPrefix(msg, "Unterminated"):
		return ErrUnterminatedString, "unterminated_string"
	case strings.HasPrefix(msg, "Invalid number"), strings.HasPrefix(msg, "Invalid float"), strings.HasPrefix(msg, "Invalid integer"):
		return ErrInvalidNumber, "invalid_number"
	case strings.HasPrefix(msg, "Unexpected character"):
		return ErrInvalidCharacter, "invalid_character"
	case strings.HasPrefix(msg, "Unknown attribute option"):
		return ErrUnknownOption, "unknown_option"
	case strings.HasPrefix(msg, "Invalid assignment"), strings.HasPrefix(msg, "Cannot assign"):
		return ErrInvalidAssignment, "invalid_assignment"
	case strings.Contains(msg, "only allowed inside a class"):
		return ErrMisplacedMember, "misplaced_member"
	case pe.Token.Type == lexer.TOKEN_EOF:
		return ErrUnexpectedEOF, "unexpected_eof"
	case strings.HasPrefix(msg, "Expected"):
		return ErrExpectedToken, "expected_token"
	}
	return ErrUnexpectedToken, "unexpected_token"
}

// splitHint moves a trailing "(did you mean ...?)" into a suggestion
func splitHint(msg string) (string, string, bool) {
	i := strings.LastIndex(msg, " (did you mean")
	if i < 0 || !strings.HasSuffix(msg, ")") {
		return msg, "", false
	}
	return msg[:i], strings.TrimSuffix(msg[i+2:], ")"), true
}
