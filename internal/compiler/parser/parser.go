package parser

import (
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/lexer"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

const (
	kindClass = "class"
	kindRole  = "role"
)

// attributeOptions are the keys accepted inside `has name (...)`
var attributeOptions = []string{"is", "isa", "default", "builder", "required", "trigger"}

// Parser transforms a stream of tokens into an Abstract Syntax Tree (AST)
type Parser struct {
	tokens  []lexer.Token
	source  string
	current int
	errors  []ParseError
}

// New creates a new parser for the given token stream
func New(tokens []lexer.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		current: 0,
		errors:  make([]ParseError, 0),
	}
}

// ParseSource scans and parses source in one step. Method bodies keep their
// source text. Scanner errors come first in the returned list.
func ParseSource(file, source string) (*ast.Program, []ParseError) {
	tokens, lexErrs := lexer.New(source).ScanTokens()

	p := New(tokens)
	p.source = source
	for _, e := range lexErrs {
		p.errors = append(p.errors, fromLexError(e))
	}

	program, errs := p.Parse()
	program.File = file
	return program, errs
}

// Parse parses the token stream and returns the AST and any errors
func (p *Parser) Parse() (*ast.Program, []ParseError) {
	program := &ast.Program{
		Uses:       make([]*ast.UseNode, 0),
		Classes:    make([]*ast.ClassNode, 0),
		Statements: make([]ast.StmtNode, 0),
	}

	for !p.isAtEnd() {
		switch {
		case p.check(lexer.TOKEN_USE):
			if use := p.parseUse(); use != nil {
				program.Uses = append(program.Uses, use)
			}
		case p.check(lexer.TOKEN_CLASS), p.check(lexer.TOKEN_ROLE):
			if class := p.parseClass(); class != nil {
				program.Classes = append(program.Classes, class)
			}
		case p.isMemberToken():
			p.error(p.peek(), fmt.Sprintf("'%s' is only allowed inside a class or role", p.peek().Lexeme))
			p.synchronize()
		default:
			if stmt := p.parseStatement(); stmt != nil {
				program.Statements = append(program.Statements, stmt)
			}
		}
	}

	return program, p.errors
}

// parseUse parses `use Library;` and `use Library (A, B as C);`
func (p *Parser) parseUse() *ast.UseNode {
	useToken := p.advance()

	library, ok := p.parseQualifiedName("Expected library name after 'use'")
	if !ok {
		p.synchronize()
		return nil
	}

	use := &ast.UseNode{
		Library: library,
		Imports: make([]*ast.ImportNode, 0),
		Loc:     ast.TokenLocation(useToken),
	}

	if p.match(lexer.TOKEN_LPAREN) {
		for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
			nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected type name in import list")
			if nameToken.Type == lexer.TOKEN_ERROR {
				p.synchronize()
				return nil
			}
			imp := &ast.ImportNode{Name: nameToken.Lexeme, Loc: ast.TokenLocation(nameToken)}
			if p.match(lexer.TOKEN_AS) {
				alias := p.consume(lexer.TOKEN_IDENTIFIER, "Expected alias after 'as'")
				if alias.Type == lexer.TOKEN_ERROR {
					p.synchronize()
					return nil
				}
				imp.Alias = alias.Lexeme
			}
			use.Imports = append(use.Imports, imp)

			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if !p.match(lexer.TOKEN_RPAREN) {
			p.error(p.peek(), "Expected ')' after import list")
			p.synchronize()
			return nil
		}
	}

	p.expectSemicolon("Expected ';' after use directive")
	return use
}

// parseClass parses a class or role declaration
func (p *Parser) parseClass() *ast.ClassNode {
	kindToken := p.advance()
	kind := kindClass
	if kindToken.Type == lexer.TOKEN_ROLE {
		kind = kindRole
	}

	name, ok := p.parseQualifiedName(fmt.Sprintf("Expected %s name", kind))
	if !ok {
		p.synchronize()
		return nil
	}

	class := &ast.ClassNode{
		Name:       name,
		Kind:       kind,
		With:       make([]string, 0),
		Attributes: make([]*ast.AttributeNode, 0),
		Methods:    make([]*ast.MethodNode, 0),
		Requires:   make([]string, 0),
		Modifiers:  make([]*ast.ModifierNode, 0),
		Loc:        ast.TokenLocation(kindToken),
	}
	class.Documentation = docComment(p.source, kindToken.Line)

	if p.match(lexer.TOKEN_EXTENDS) {
		parent, ok := p.parseQualifiedName("Expected parent class name after 'extends'")
		if !ok {
			p.synchronize()
			return nil
		}
		class.Extends = parent
	}

	// `with` and `using` are interchangeable; both may appear.
	for p.match(lexer.TOKEN_USING, lexer.TOKEN_WITH) {
		for {
			role, ok := p.parseQualifiedName(fmt.Sprintf("Expected role name after '%s'", p.previous().Lexeme))
			if !ok {
				p.synchronize()
				return nil
			}
			class.With = append(class.With, role)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
	}

	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), fmt.Sprintf("Expected '{' after %s header", kind))
		p.synchronize()
		return nil
	}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		if p.check(lexer.TOKEN_CLASS) || p.check(lexer.TOKEN_ROLE) {
			break
		}
		p.parseMember(class)
	}

	if !p.check(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), fmt.Sprintf("Expected '}' after %s body", kind))
		return class
	}
	class.End = ast.TokenLocation(p.advance())

	return class
}

// parseMember parses one entry of a class body
func (p *Parser) parseMember(class *ast.ClassNode) {
	switch {
	case p.check(lexer.TOKEN_HAS):
		if attr := p.parseAttribute(); attr != nil {
			class.Attributes = append(class.Attributes, attr)
		}
	case p.check(lexer.TOKEN_METHOD):
		if method := p.parseMethod(); method != nil {
			class.Methods = append(class.Methods, method)
		}
	case p.check(lexer.TOKEN_REQUIRES):
		p.advance()
		for {
			nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected method name after 'requires'")
			if nameToken.Type == lexer.TOKEN_ERROR {
				p.synchronizeToNextMember()
				return
			}
			class.Requires = append(class.Requires, nameToken.Lexeme)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		p.expectSemicolon("Expected ';' after requires list")
	case p.check(lexer.TOKEN_BEFORE), p.check(lexer.TOKEN_AFTER):
		if mod := p.parseModifier(); mod != nil {
			class.Modifiers = append(class.Modifiers, mod)
		}
	default:
		p.error(p.peek(), fmt.Sprintf("Unexpected token in %s body: %s", class.Kind, p.peek().Lexeme))
		p.synchronizeToNextMember()
	}
}

// parseAttribute parses `has name;` or `has name (key: value, ...);`
func (p *Parser) parseAttribute() *ast.AttributeNode {
	hasToken := p.advance()

	nameToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected attribute name after 'has'")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextMember()
		return nil
	}

	attr := &ast.AttributeNode{
		Name: nameToken.Lexeme,
		Loc:  ast.TokenLocation(hasToken),
	}

	if p.match(lexer.TOKEN_LPAREN) {
		for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
			if !p.parseAttributeOption(attr) {
				p.synchronizeToNextMember()
				return nil
			}
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if !p.match(lexer.TOKEN_RPAREN) {
			p.error(p.peek(), "Expected ')' after attribute options")
			p.synchronizeToNextMember()
			return nil
		}
	}

	p.expectSemicolon("Expected ';' after attribute declaration")
	return attr
}

// parseAttributeOption parses one `key: value` pair into attr
func (p *Parser) parseAttributeOption(attr *ast.AttributeNode) bool {
	keyToken := p.consume(lexer.TOKEN_IDENTIFIER, "Expected attribute option name")
	if keyToken.Type == lexer.TOKEN_ERROR {
		return false
	}
	if !p.match(lexer.TOKEN_COLON, lexer.TOKEN_FAT_ARROW) {
		p.error(p.peek(), fmt.Sprintf("Expected ':' after option '%s'", keyToken.Lexeme))
		return false
	}

	switch keyToken.Lexeme {
	case "is":
		mode := p.consume(lexer.TOKEN_IDENTIFIER, "Expected access mode (ro, rw or private) after 'is:'")
		if mode.Type == lexer.TOKEN_ERROR {
			return false
		}
		attr.Is = mode.Lexeme
	case "isa":
		typ := p.parseType()
		if typ == nil {
			return false
		}
		attr.Isa = typ
	case "default":
		value := p.parseExpression()
		if value == nil {
			return false
		}
		attr.Default = value
	case "builder", "trigger":
		method := p.consume(lexer.TOKEN_IDENTIFIER, fmt.Sprintf("Expected method name after '%s:'", keyToken.Lexeme))
		if method.Type == lexer.TOKEN_ERROR {
			return false
		}
		if keyToken.Lexeme == "builder" {
			attr.Builder = method.Lexeme
		} else {
			attr.Trigger = method.Lexeme
		}
	case "required":
		switch {
		case p.match(lexer.TOKEN_TRUE):
			attr.Required = true
		case p.match(lexer.TOKEN_FALSE):
			attr.Required = false
		default:
			p.error(p.peek(), "Expected true or false after 'required:'")
			return false
		}
	default:
		message := fmt.Sprintf("Unknown attribute option '%s'", keyToken.Lexeme)
		if suggestion := ustrings.FindBestMatch(keyToken.Lexeme, attributeOptions, nil); suggestion != "" {
			message += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
		}
		p.error(keyToken, message)
		return false
	}
	return true
}

// parseMethod parses `method name(params) { body }`
func (p *Parser) parseMethod() *ast.MethodNode {
	methodToken := p.advance()

	nameToken := p.consumeName("Expected method name after 'method'")
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextMember()
		return nil
	}

	method := &ast.MethodNode{
		Name:   nameToken.Lexeme,
		Params: make([]*ast.ParamNode, 0),
		Loc:    ast.TokenLocation(methodToken),
	}

	if p.match(lexer.TOKEN_LPAREN) {
		for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
			param := p.parseParam()
			if param == nil {
				p.synchronizeToNextMember()
				return nil
			}
			method.Params = append(method.Params, param)
			if !p.match(lexer.TOKEN_COMMA) {
				break
			}
		}
		if !p.match(lexer.TOKEN_RPAREN) {
			p.error(p.peek(), "Expected ')' after parameter list")
			p.synchronizeToNextMember()
			return nil
		}
	}

	body, source, ok := p.parseBody(fmt.Sprintf("method %s", method.Name))
	if !ok {
		return nil
	}
	method.Body = body
	method.Source = source
	return method
}

// parseParam parses `Type :$name? = default`. The type is optional; ':'
// marks a named parameter, '?' an optional one and '!' a required named
// one.
func (p *Parser) parseParam() *ast.ParamNode {
	start := p.peek()
	param := &ast.ParamNode{Loc: ast.TokenLocation(start)}

	if p.check(lexer.TOKEN_IDENTIFIER) {
		param.Type = p.parseType()
		if param.Type == nil {
			return nil
		}
	}

	if p.match(lexer.TOKEN_COLON) {
		param.Named = true
	}

	varToken := p.consume(lexer.TOKEN_VARIABLE, "Expected parameter variable (e.g. $value)")
	if varToken.Type == lexer.TOKEN_ERROR {
		return nil
	}
	param.Name = variableName(varToken)

	switch {
	case p.match(lexer.TOKEN_QUESTION):
		param.Optional = true
	case p.match(lexer.TOKEN_BANG):
		param.Required = true
	}

	if p.match(lexer.TOKEN_EQUALS) {
		param.Default = p.parseExpression()
		if param.Default == nil {
			return nil
		}
	}

	return param
}

// parseModifier parses `before name { ... }` and `after name { ... }`
func (p *Parser) parseModifier() *ast.ModifierNode {
	kindToken := p.advance()

	nameToken := p.consumeName(fmt.Sprintf("Expected method name after '%s'", kindToken.Lexeme))
	if nameToken.Type == lexer.TOKEN_ERROR {
		p.synchronizeToNextMember()
		return nil
	}

	body, source, ok := p.parseBody(fmt.Sprintf("%s %s", kindToken.Lexeme, nameToken.Lexeme))
	if !ok {
		return nil
	}

	return &ast.ModifierNode{
		Kind:   kindToken.Lexeme,
		Method: nameToken.Lexeme,
		Body:   body,
		Source: source,
		Loc:    ast.TokenLocation(kindToken),
	}
}

// parseBody parses a braced statement list and returns it with the text
// between the braces.
func (p *Parser) parseBody(what string) ([]ast.StmtNode, string, bool) {
	if !p.check(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), fmt.Sprintf("Expected '{' to start %s", what))
		p.synchronizeToNextMember()
		return nil, "", false
	}
	open := p.peek()

	body, ok := p.parseBlock()
	if !ok {
		return body, "", false
	}
	return body, p.sourceBetween(open, p.previous()), true
}

// parseType parses a type expression and keeps its text:
// Name, Name[args], Lib::Name and unions joined by '|'.
func (p *Parser) parseType() *ast.TypeNode {
	start := p.peek()
	var sb strings.Builder
	if !p.parseTypeUnion(&sb) {
		return nil
	}
	return &ast.TypeNode{Text: sb.String(), Loc: ast.TokenLocation(start)}
}

func (p *Parser) parseTypeUnion(sb *strings.Builder) bool {
	if !p.parseTypeTerm(sb) {
		return false
	}
	for p.match(lexer.TOKEN_PIPE) {
		sb.WriteString(" | ")
		if !p.parseTypeTerm(sb) {
			return false
		}
	}
	return true
}

func (p *Parser) parseTypeTerm(sb *strings.Builder) bool {
	name, ok := p.parseQualifiedName("Expected type name")
	if !ok {
		return false
	}
	sb.WriteString(name)

	if !p.match(lexer.TOKEN_LBRACKET) {
		return true
	}
	sb.WriteByte('[')
	for i := 0; !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		if !p.parseTypeArg(sb) {
			return false
		}
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}
	if !p.match(lexer.TOKEN_RBRACKET) {
		p.error(p.peek(), "Expected ']' after type arguments")
		return false
	}
	sb.WriteByte(']')
	return true
}

// parseTypeArg parses a type parameter: a nested type or a literal
func (p *Parser) parseTypeArg(sb *strings.Builder) bool {
	switch {
	case p.match(lexer.TOKEN_STRING_LITERAL):
		sb.WriteString(p.previous().Lexeme)
	case p.match(lexer.TOKEN_INT_LITERAL, lexer.TOKEN_FLOAT_LITERAL):
		sb.WriteString(fmt.Sprint(p.previous().Literal))
	case p.match(lexer.TOKEN_MINUS):
		if !p.match(lexer.TOKEN_INT_LITERAL, lexer.TOKEN_FLOAT_LITERAL) {
			p.error(p.peek(), "Expected number after '-'")
			return false
		}
		sb.WriteString("-" + fmt.Sprint(p.previous().Literal))
	default:
		return p.parseTypeUnion(sb)
	}
	return true
}

// parseQualifiedName parses Name or Name::Name::Name
func (p *Parser) parseQualifiedName(message string) (string, bool) {
	first := p.consume(lexer.TOKEN_IDENTIFIER, message)
	if first.Type == lexer.TOKEN_ERROR {
		return "", false
	}
	parts := []string{first.Lexeme}
	for p.match(lexer.TOKEN_DOUBLE_COLON) {
		next := p.consume(lexer.TOKEN_IDENTIFIER, "Expected name after '::'")
		if next.Type == lexer.TOKEN_ERROR {
			return "", false
		}
		parts = append(parts, next.Lexeme)
	}
	return strings.Join(parts, "::"), true
}

// sourceBetween returns the text strictly between two tokens, trimmed
func (p *Parser) sourceBetween(open, close lexer.Token) string {
	if p.source == "" || close.Offset > len(p.source) || open.End() > close.Offset {
		return ""
	}
	return strings.TrimSpace(p.source[open.End():close.Offset])
}

// variableName returns the name of a $variable token without its sigil
func variableName(token lexer.Token) string {
	if name, ok := token.Literal.(string); ok {
		return name
	}
	return strings.TrimPrefix(token.Lexeme, "$")
}

// isMemberToken checks if the current token starts a class member
func (p *Parser) isMemberToken() bool {
	return p.check(lexer.TOKEN_HAS) ||
		p.check(lexer.TOKEN_METHOD) ||
		p.check(lexer.TOKEN_REQUIRES) ||
		p.check(lexer.TOKEN_BEFORE) ||
		p.check(lexer.TOKEN_AFTER)
}

// Token stream navigation

// peek returns the current token without advancing
func (p *Parser) peek() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	if p.current >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current]
}

// peekNext returns the token after the current one
func (p *Parser) peekNext() lexer.Token {
	if p.current+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current+1]
}

// previous returns the most recently consumed token
func (p *Parser) previous() lexer.Token {
	if len(p.tokens) == 0 || p.current == 0 {
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

// check returns true if the current token matches the given type
func (p *Parser) check(tokenType lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// match consumes the token if it matches any of the given types
func (p *Parser) match(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// consume advances if the next token matches, otherwise reports an error
func (p *Parser) consume(tokenType lexer.TokenType, message string) lexer.Token {
	if p.check(tokenType) {
		return p.advance()
	}

	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// consumeName accepts an identifier or a keyword spelled like one, so
// methods can be called `say` or `before`.
func (p *Parser) consumeName(message string) lexer.Token {
	if p.check(lexer.TOKEN_IDENTIFIER) || (lexer.IsKeyword(p.peek().Lexeme) && !p.isAtEnd()) {
		return p.advance()
	}
	p.error(p.peek(), message)
	return lexer.Token{Type: lexer.TOKEN_ERROR}
}

// expectSemicolon consumes a ';'. It may be left out before a closing
// brace or at the end of input.
func (p *Parser) expectSemicolon(message string) {
	if p.match(lexer.TOKEN_SEMICOLON) || p.check(lexer.TOKEN_RBRACE) || p.isAtEnd() {
		return
	}
	p.error(p.peek(), message)
}

// isAtEnd returns true if we've reached the end of the token stream
func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == lexer.TOKEN_EOF
}

// Error handling

// error records a parse error
func (p *Parser) error(token lexer.Token, message string) {
	p.errors = append(p.errors, NewParseError(message, token))
}

// synchronize implements panic mode error recovery at the top level
func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == lexer.TOKEN_SEMICOLON && !p.isMemberToken() {
			return
		}
		if p.check(lexer.TOKEN_CLASS) || p.check(lexer.TOKEN_ROLE) || p.check(lexer.TOKEN_USE) {
			return
		}

		p.advance()
	}
}

// synchronizeToNextMember skips to the next class member or the end of
// the class body
func (p *Parser) synchronizeToNextMember() {
	depth := 0
	for !p.isAtEnd() {
		switch p.peek().Type {
		case lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RBRACE:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				if p.isMemberToken() {
					return
				}
				continue
			}
		case lexer.TOKEN_CLASS, lexer.TOKEN_ROLE:
			return
		default:
			if depth == 0 && p.isMemberToken() {
				return
			}
		}
		p.advance()
	}
}

// synchronizeStatement skips to the end of the current statement
func (p *Parser) synchronizeStatement() {
	for !p.isAtEnd() {
		if p.match(lexer.TOKEN_SEMICOLON) {
			return
		}
		if p.check(lexer.TOKEN_RBRACE) || p.isStatementStart() {
			return
		}
		p.advance()
	}
}

// isStatementStart checks if the current token begins a statement keyword
func (p *Parser) isStatementStart() bool {
	switch p.peek().Type {
	case lexer.TOKEN_LET, lexer.TOKEN_RETURN, lexer.TOKEN_IF, lexer.TOKEN_UNLESS,
		lexer.TOKEN_TRY, lexer.TOKEN_DIE, lexer.TOKEN_SAY:
		return true
	}
	return false
}

// docComment returns the run of `#` comment lines directly above line, with
// the markers stripped. Block comments and blank lines end the run.
func docComment(source string, line int) string {
	if source == "" || line <= 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	var doc []string
	for i := line - 2; i >= 0; i-- {
		text := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(text, "#") || strings.HasPrefix(text, "###") {
			break
		}
		doc = append(doc, strings.TrimSpace(strings.TrimPrefix(text, "#")))
	}
	for i, j := 0, len(doc)-1; i < j; i, j = i+1, j-1 {
		doc[i], doc[j] = doc[j], doc[i]
	}
	return strings.Join(doc, "\n")
}
