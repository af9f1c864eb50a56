package parser

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/lexer"
)

// Expression parsing using precedence climbing
//
// Expression grammar (from lowest to highest precedence):
// expression → logicalOr
// logicalOr  → logicalAnd ( ("||" | "or") logicalAnd )*
// logicalAnd → equality ( ("&&" | "and") equality )*
// equality   → comparison ( ( "==" | "!=" ) comparison )*
// comparison → concat ( ( ">" | ">=" | "<" | "<=" ) concat )*
// concat     → term ( "~" term )*
// term       → factor ( ( "+" | "-" ) factor )*
// factor     → unary ( ( "*" | "/" | "%" ) unary )*
// unary      → ( "!" | "-" | "not" ) unary | postfix
// postfix    → primary ( "." NAME ( "(" arguments? ")" )? | "[" expression "]" )*
// primary    → literal | VARIABLE | "(" expression ")" | arrayLiteral | hashLiteral
//            | "super" ( "(" arguments? ")" )? | qualifiedName "." NAME ( "(" arguments? ")" )?

// parseExpression is the entry point for expression parsing
func (p *Parser) parseExpression() ast.ExprNode {
	return p.parseLogicalOr()
}

// parseLogicalOr handles logical OR expressions
func (p *Parser) parseLogicalOr() ast.ExprNode {
	expr := p.parseLogicalAnd()
	if expr == nil {
		return nil
	}

	for p.match(lexer.TOKEN_DOUBLE_PIPE, lexer.TOKEN_OR) {
		operator := p.previous()
		right := p.parseLogicalAnd()
		if right == nil {
			return nil
		}
		expr = &ast.LogicalExpr{
			Left:     expr,
			Operator: operator.Lexeme,
			Right:    right,
			Loc:      ast.TokenLocation(operator),
		}
	}

	return expr
}

// parseLogicalAnd handles logical AND expressions
func (p *Parser) parseLogicalAnd() ast.ExprNode {
	expr := p.parseEquality()
	if expr == nil {
		return nil
	}

	for p.match(lexer.TOKEN_DOUBLE_AMP, lexer.TOKEN_AND) {
		operator := p.previous()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		expr = &ast.LogicalExpr{
			Left:     expr,
			Operator: operator.Lexeme,
			Right:    right,
			Loc:      ast.TokenLocation(operator),
		}
	}

	return expr
}

// binaryLevel parses a left-associative chain of operators over next
func (p *Parser) binaryLevel(next func() ast.ExprNode, operators ...lexer.TokenType) ast.ExprNode {
	expr := next()
	if expr == nil {
		return nil
	}

	for p.match(operators...) {
		operator := p.previous()
		right := next()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{
			Left:     expr,
			Operator: operator.Lexeme,
			Right:    right,
			Loc:      ast.TokenLocation(operator),
		}
	}

	return expr
}

// parseEquality handles equality operators (==, !=)
func (p *Parser) parseEquality() ast.ExprNode {
	return p.binaryLevel(p.parseComparison, lexer.TOKEN_EQ, lexer.TOKEN_NEQ)
}

// parseComparison handles comparison operators (<, >, <=, >=)
func (p *Parser) parseComparison() ast.ExprNode {
	return p.binaryLevel(p.parseConcat, lexer.TOKEN_LT, lexer.TOKEN_GT, lexer.TOKEN_LTE, lexer.TOKEN_GTE)
}

// parseConcat handles string concatenation (~)
func (p *Parser) parseConcat() ast.ExprNode {
	return p.binaryLevel(p.parseTerm, lexer.TOKEN_TILDE)
}

// parseTerm handles addition and subtraction
func (p *Parser) parseTerm() ast.ExprNode {
	return p.binaryLevel(p.parseFactor, lexer.TOKEN_PLUS, lexer.TOKEN_MINUS)
}

// parseFactor handles multiplication, division and modulo
func (p *Parser) parseFactor() ast.ExprNode {
	return p.binaryLevel(p.parseUnary, lexer.TOKEN_STAR, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT)
}

// parseUnary handles unary operators (!, -, not)
func (p *Parser) parseUnary() ast.ExprNode {
	if p.match(lexer.TOKEN_BANG, lexer.TOKEN_MINUS, lexer.TOKEN_NOT) {
		operator := p.previous()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			Operator: operator.Lexeme,
			Operand:  operand,
			Loc:      ast.TokenLocation(operator),
		}
	}

	return p.parsePostfix()
}

// parsePostfix handles member access, method calls and indexing
func (p *Parser) parsePostfix() ast.ExprNode {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch {
		case p.match(lexer.TOKEN_DOT):
			dot := p.previous()
			name := p.consumeName("Expected member name after '.'")
			if name.Type == lexer.TOKEN_ERROR {
				return nil
			}
			if p.match(lexer.TOKEN_LPAREN) {
				args, ok := p.parseArguments()
				if !ok {
					return nil
				}
				expr = &ast.CallExpr{Object: expr, Method: name.Lexeme, Arguments: args, Loc: ast.TokenLocation(dot)}
			} else {
				expr = &ast.MemberExpr{Object: expr, Name: name.Lexeme, Loc: ast.TokenLocation(dot)}
			}
		case p.match(lexer.TOKEN_LBRACKET):
			bracket := p.previous()
			index := p.parseExpression()
			if index == nil {
				return nil
			}
			if p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after index").Type == lexer.TOKEN_ERROR {
				return nil
			}
			expr = &ast.IndexExpr{Object: expr, Index: index, Loc: ast.TokenLocation(bracket)}
		default:
			return expr
		}
	}
}

// parsePrimary handles literals, variables, grouping, collection literals,
// super calls and Class.method calls
func (p *Parser) parsePrimary() ast.ExprNode {
	token := p.peek()

	switch token.Type {
	case lexer.TOKEN_INT_LITERAL, lexer.TOKEN_FLOAT_LITERAL, lexer.TOKEN_STRING_LITERAL:
		p.advance()
		return &ast.LiteralExpr{Value: token.Literal, Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_TRUE:
		p.advance()
		return &ast.LiteralExpr{Value: true, Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_FALSE:
		p.advance()
		return &ast.LiteralExpr{Value: false, Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_UNDEF:
		p.advance()
		return &ast.LiteralExpr{Value: nil, Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_VARIABLE:
		p.advance()
		return &ast.VariableExpr{Name: variableName(token), Loc: ast.TokenLocation(token)}
	case lexer.TOKEN_LPAREN:
		p.advance()
		expr := p.parseExpression()
		if expr == nil {
			return nil
		}
		if p.consume(lexer.TOKEN_RPAREN, "Expected ')' after expression").Type == lexer.TOKEN_ERROR {
			return nil
		}
		return expr
	case lexer.TOKEN_LBRACKET:
		return p.parseArrayLiteral()
	case lexer.TOKEN_LBRACE:
		return p.parseHashLiteral()
	case lexer.TOKEN_SUPER:
		p.advance()
		expr := &ast.SuperExpr{Loc: ast.TokenLocation(token)}
		if p.match(lexer.TOKEN_LPAREN) {
			args, ok := p.parseArguments()
			if !ok {
				return nil
			}
			expr.Arguments = args
			expr.HasArgs = true
		}
		return expr
	case lexer.TOKEN_IDENTIFIER:
		return p.parseClassCall()
	}

	p.error(token, fmt.Sprintf("Unexpected token '%s' in expression", token.Lexeme))
	return nil
}

// parseClassCall parses Name.method(args) where Name is a class or a
// built-in namespace
func (p *Parser) parseClassCall() ast.ExprNode {
	start := p.peek()

	name, ok := p.parseQualifiedName("Expected class name")
	if !ok {
		return nil
	}
	if !p.match(lexer.TOKEN_DOT) {
		p.error(start, fmt.Sprintf("Bare name '%s' is not an expression (variables start with '$')", name))
		return nil
	}
	method := p.consumeName(fmt.Sprintf("Expected method name after '%s.'", name))
	if method.Type == lexer.TOKEN_ERROR {
		return nil
	}

	call := &ast.ClassCallExpr{Class: name, Method: method.Lexeme, Loc: ast.TokenLocation(start)}
	if p.match(lexer.TOKEN_LPAREN) {
		args, ok := p.parseArguments()
		if !ok {
			return nil
		}
		call.Arguments = args
	}
	return call
}

// parseArguments parses a call's arguments after '(' up to and including
// ')'. `name: value` and `name => value` are named arguments.
func (p *Parser) parseArguments() ([]*ast.ArgNode, bool) {
	args := make([]*ast.ArgNode, 0)

	for !p.check(lexer.TOKEN_RPAREN) && !p.isAtEnd() {
		arg := &ast.ArgNode{}
		if p.check(lexer.TOKEN_IDENTIFIER) {
			if next := p.peekNext().Type; next == lexer.TOKEN_COLON || next == lexer.TOKEN_FAT_ARROW {
				arg.Name = p.advance().Lexeme
				p.advance()
			}
		}

		arg.Value = p.parseExpression()
		if arg.Value == nil {
			return nil, false
		}
		args = append(args, arg)

		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if p.consume(lexer.TOKEN_RPAREN, "Expected ')' after arguments").Type == lexer.TOKEN_ERROR {
		return nil, false
	}
	return args, true
}

// parseArrayLiteral parses [a, b, c]
func (p *Parser) parseArrayLiteral() ast.ExprNode {
	open := p.advance()
	array := &ast.ArrayLiteralExpr{Elements: make([]ast.ExprNode, 0), Loc: ast.TokenLocation(open)}

	for !p.check(lexer.TOKEN_RBRACKET) && !p.isAtEnd() {
		element := p.parseExpression()
		if element == nil {
			return nil
		}
		array.Elements = append(array.Elements, element)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if p.consume(lexer.TOKEN_RBRACKET, "Expected ']' after array elements").Type == lexer.TOKEN_ERROR {
		return nil
	}
	return array
}

// parseHashLiteral parses { key => value, "key" => value }
func (p *Parser) parseHashLiteral() ast.ExprNode {
	open := p.advance()
	hash := &ast.HashLiteralExpr{Entries: make([]*ast.HashEntry, 0), Loc: ast.TokenLocation(open)}

	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		var key string
		switch {
		case p.check(lexer.TOKEN_IDENTIFIER):
			key = p.advance().Lexeme
		case p.check(lexer.TOKEN_STRING_LITERAL):
			key, _ = p.advance().Literal.(string)
		default:
			p.error(p.peek(), "Expected hash key")
			return nil
		}
		if !p.match(lexer.TOKEN_FAT_ARROW, lexer.TOKEN_COLON) {
			p.error(p.peek(), "Expected '=>' after hash key")
			return nil
		}
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		hash.Entries = append(hash.Entries, &ast.HashEntry{Key: key, Value: value})
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	if p.consume(lexer.TOKEN_RBRACE, "Expected '}' after hash entries").Type == lexer.TOKEN_ERROR {
		return nil
	}
	return hash
}
