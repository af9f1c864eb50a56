// Package lexer provides lexical analysis for moops source code.
// It tokenizes .moops files into a stream of tokens for the parser.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Lexer tokenizes moops source code.
//
// Thread Safety: Lexer instances are NOT thread-safe. Each goroutine must
// create its own Lexer instance via New().
type Lexer struct {
	source  string     // Source code to tokenize
	start   int        // Start position of current token
	current int        // Current position in source
	line    int        // Current line number (1-indexed)
	column  int        // Current column number (1-indexed)
	tokens  []Token    // Collected tokens
	errors  []LexError // Collected errors
}

// New creates a new Lexer for the given source code
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0),
		errors: make([]LexError, 0),
	}
}

// ScanTokens tokenizes the entire source and returns tokens and errors
func (l *Lexer) ScanTokens() ([]Token, []LexError) {
	for !l.isAtEnd() {
		l.start = l.current
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Type:   TOKEN_EOF,
		Lexeme: "",
		Line:   l.line,
		Column: l.column,
		Offset: len(l.source),
	})

	return l.tokens, l.errors
}

// scanToken processes the next token.
//
//nolint:gocyclo,cyclop // Lexer dispatch function - complexity is inherent to the pattern
func (l *Lexer) scanToken() {
	c := l.advance()

	switch {
	case c == '(' || c == ')' || c == '{' || c == '}' || c == '[' || c == ']':
		l.scanDelimiter(c)
	case c == ',' || c == ';' || c == '+' || c == '-' || c == '*' || c == '/' ||
		c == '%' || c == '~' || c == '?' || c == '.':
		l.scanSimpleOperator(c)
	case c == '!' || c == '=' || c == '<' || c == '>' || c == '|' || c == '&' || c == ':':
		l.scanCompoundOperator(c)
	case c == '#':
		l.scanHashToken()
	case c == '"':
		l.string()
	case c == '\'':
		l.rawString()
	case c == '$':
		l.variable()
	case c == ' ' || c == '\r' || c == '\t':
		// Ignore whitespace
	case c == '\n':
		l.line++
		l.column = 1
	default:
		l.scanDefault(c)
	}
}

// scanDelimiter handles delimiter tokens: ( ) { } [ ]
func (l *Lexer) scanDelimiter(c byte) {
	switch c {
	case '(':
		l.addToken(TOKEN_LPAREN)
	case ')':
		l.addToken(TOKEN_RPAREN)
	case '{':
		l.addToken(TOKEN_LBRACE)
	case '}':
		l.addToken(TOKEN_RBRACE)
	case '[':
		l.addToken(TOKEN_LBRACKET)
	case ']':
		l.addToken(TOKEN_RBRACKET)
	}
}

// scanSimpleOperator handles single-character operators
func (l *Lexer) scanSimpleOperator(c byte) {
	switch c {
	case ',':
		l.addToken(TOKEN_COMMA)
	case ';':
		l.addToken(TOKEN_SEMICOLON)
	case '+':
		l.addToken(TOKEN_PLUS)
	case '-':
		l.addToken(TOKEN_MINUS)
	case '*':
		l.addToken(TOKEN_STAR)
	case '/':
		l.addToken(TOKEN_SLASH)
	case '%':
		l.addToken(TOKEN_PERCENT)
	case '~':
		l.addToken(TOKEN_TILDE)
	case '?':
		l.addToken(TOKEN_QUESTION)
	case '.':
		if l.isDigit(l.peek()) {
			l.number()
			return
		}
		l.addToken(TOKEN_DOT)
	}
}

// scanCompoundOperator dispatches operators that may take a second character
func (l *Lexer) scanCompoundOperator(c byte) {
	switch c {
	case '!':
		l.pick('=', TOKEN_NEQ, TOKEN_BANG)
	case '=':
		switch {
		case l.match('='):
			l.addToken(TOKEN_EQ)
		case l.match('>'):
			l.addToken(TOKEN_FAT_ARROW)
		default:
			l.addToken(TOKEN_EQUALS)
		}
	case '<':
		l.pick('=', TOKEN_LTE, TOKEN_LT)
	case '>':
		l.pick('=', TOKEN_GTE, TOKEN_GT)
	case '|':
		l.pick('|', TOKEN_DOUBLE_PIPE, TOKEN_PIPE)
	case '&':
		if l.match('&') {
			l.addToken(TOKEN_DOUBLE_AMP)
		} else {
			l.addError("Unexpected character '&' (did you mean '&&'?)")
		}
	case ':':
		l.pick(':', TOKEN_DOUBLE_COLON, TOKEN_COLON)
	}
}

// pick emits two if the next character is next, otherwise one
func (l *Lexer) pick(next byte, two, one TokenType) {
	if l.match(next) {
		l.addToken(two)
	} else {
		l.addToken(one)
	}
}

// scanHashToken handles # comments and ### multiline comments
func (l *Lexer) scanHashToken() {
	if l.peek() == '#' && l.peekNext() == '#' {
		l.multilineComment()
	} else {
		l.comment()
	}
}

// scanDefault handles the default case: numbers, identifiers, or errors
func (l *Lexer) scanDefault(c byte) {
	if l.isDigit(c) {
		l.number()
	} else if l.isAlpha(c) {
		l.identifier()
	} else {
		l.addError(fmt.Sprintf("Unexpected character: '%c'", c))
	}
}

// comment handles single-line comments starting with #
func (l *Lexer) comment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// multilineComment handles multi-line comments ###...###
func (l *Lexer) multilineComment() {
	l.advance() // second #
	l.advance() // third #

	for !l.isAtEnd() {
		if l.peek() == '#' && l.peekNext() == '#' && l.peekNextNext() == '#' {
			l.advance()
			l.advance()
			l.advance()
			return
		}
		if l.peek() == '\n' {
			l.line++
			l.column = 0
		}
		l.advance()
	}

	l.addError("Unterminated multi-line comment")
}

// string handles double-quoted string literals with escapes
func (l *Lexer) string() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '"' {
		if l.peek() == '\\' {
			l.advance() // consume backslash
			if l.isAtEnd() {
				break
			}

			escaped := l.advance()
			switch escaped {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '\\':
				value.WriteByte('\\')
			case '"':
				value.WriteByte('"')
			case '$':
				value.WriteByte('$')
			default:
				// Unknown escape sequence - keep as-is
				value.WriteByte('\\')
				value.WriteByte(escaped)
			}
		} else if l.peek() == '\n' {
			value.WriteByte('\n')
			l.line++
			l.column = 0
			l.advance()
		} else {
			value.WriteByte(l.advance())
		}
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	l.advance() // closing "
	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Line:    startLine,
		Column:  startColumn,
		Offset:  l.start,
	})
}

// rawString handles single-quoted literals: only \' and \\ are escapes
func (l *Lexer) rawString() {
	startLine := l.line
	startColumn := l.column - 1
	value := strings.Builder{}

	for !l.isAtEnd() && l.peek() != '\'' {
		c := l.advance()
		switch {
		case c == '\\' && (l.peek() == '\'' || l.peek() == '\\'):
			value.WriteByte(l.advance())
		case c == '\n':
			value.WriteByte(c)
			l.line++
			l.column = 1
		default:
			value.WriteByte(c)
		}
	}

	if l.isAtEnd() {
		l.addError(fmt.Sprintf("Unterminated string starting at %d:%d", startLine, startColumn))
		return
	}

	l.advance() // closing '
	l.tokens = append(l.tokens, Token{
		Type:    TOKEN_STRING_LITERAL,
		Lexeme:  l.source[l.start:l.current],
		Literal: value.String(),
		Line:    startLine,
		Column:  startColumn,
		Offset:  l.start,
	})
}

// variable handles $name; the literal is the name without sigil
func (l *Lexer) variable() {
	if !l.isAlpha(l.peek()) {
		l.addError("Expected variable name after '$'")
		return
	}
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}
	l.addTokenWithLiteral(TOKEN_VARIABLE, l.source[l.start+1:l.current])
}

// number handles integer and float literals
func (l *Lexer) number() {
	for l.isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	isFloat := l.source[l.start] == '.'
	if l.peek() == '.' && l.isDigit(l.peekNext()) {
		isFloat = true
		l.advance() // consume .

		for l.isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance() // consume e/E

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		if !l.isDigit(l.peek()) {
			l.addError("Invalid number: expected digits after exponent")
			return
		}

		for l.isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := l.source[l.start:l.current]
	cleanLexeme := strings.ReplaceAll(lexeme, "_", "")

	if isFloat {
		value, err := strconv.ParseFloat(cleanLexeme, 64)
		if err != nil {
			l.addError(fmt.Sprintf("Invalid float literal: %s", lexeme))
			return
		}
		l.addTokenWithLiteral(TOKEN_FLOAT_LITERAL, value)
		return
	}

	value, err := strconv.ParseInt(cleanLexeme, 10, 64)
	if err != nil {
		l.addError(fmt.Sprintf("Invalid integer literal: %s", lexeme))
		return
	}
	l.addTokenWithLiteral(TOKEN_INT_LITERAL, value)
}

// identifier handles identifiers and keywords
func (l *Lexer) identifier() {
	for l.isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := l.source[l.start:l.current]

	tokenType, isKeyword := Keywords[text]
	if !isKeyword {
		tokenType = TOKEN_IDENTIFIER
	}

	switch tokenType {
	case TOKEN_TRUE:
		l.addTokenWithLiteral(tokenType, true)
	case TOKEN_FALSE:
		l.addTokenWithLiteral(tokenType, false)
	default:
		l.addToken(tokenType)
	}
}

// Helper methods

// isAtEnd checks if we've reached the end of the source
func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// advance consumes and returns the current character
func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	c := l.source[l.current]
	l.current++
	l.column++
	return c
}

// match checks if the current character matches expected and consumes it
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() {
		return false
	}
	if l.source[l.current] != expected {
		return false
	}
	l.current++
	l.column++
	return true
}

// peek returns the current character without consuming it
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

// peekNext returns the next character without consuming
func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

// peekNextNext returns the character two positions ahead
func (l *Lexer) peekNextNext() byte {
	if l.current+2 >= len(l.source) {
		return 0
	}
	return l.source[l.current+2]
}

// isDigit checks if a character is a digit
func (l *Lexer) isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha checks if a character is alphabetic or underscore
func (l *Lexer) isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c == '_'
}

// isAlphaNumeric checks if a character is alphanumeric or underscore
func (l *Lexer) isAlphaNumeric(c byte) bool {
	return l.isAlpha(c) || l.isDigit(c)
}

// addToken adds a token with the current lexeme
func (l *Lexer) addToken(tokenType TokenType) {
	l.addTokenWithLiteral(tokenType, nil)
}

// addTokenWithLiteral adds a token with a literal value
func (l *Lexer) addTokenWithLiteral(tokenType TokenType, literal interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tokenType,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Offset:  l.start,
	})
}

// addError records a lexical error
func (l *Lexer) addError(message string) {
	lexeme := ""
	if l.start < len(l.source) {
		end := l.current
		if end > l.start+20 {
			end = l.start + 20
		}
		lexeme = l.source[l.start:end]
	}

	l.errors = append(l.errors, LexError{
		Message: message,
		Line:    l.line,
		Column:  l.column - (l.current - l.start),
		Offset:  l.start,
		Lexeme:  lexeme,
	})
}

// IsKeyword checks if a string is a reserved word
func IsKeyword(s string) bool {
	_, ok := Keywords[s]
	return ok
}

// IsValidIdentifier checks if a string is a valid identifier
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	first := rune(s[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}

	for _, r := range s[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return !IsKeyword(s)
}
