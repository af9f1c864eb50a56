package parser

import (
	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/lexer"
)

// Statement grammar:
// statement  → letStmt | returnStmt | ifStmt | tryStmt | dieStmt | sayStmt | exprStmt
// letStmt    → "let" VARIABLE ( "=" expression )? ";"
// returnStmt → "return" expression? ";"
// ifStmt     → ( "if" | "unless" ) expression block ( "elsif" expression block )* ( "else" block )?
// tryStmt    → "try" block "catch" ( VARIABLE | "(" VARIABLE ")" )? block
// dieStmt    → "die" expression ";"
// sayStmt    → "say" expression ( "," expression )* ";"
// exprStmt   → expression ( "=" expression )? ";"

// parseBlock parses `{ statement* }`
func (p *Parser) parseBlock() ([]ast.StmtNode, bool) {
	if !p.match(lexer.TOKEN_LBRACE) {
		p.error(p.peek(), "Expected '{'")
		return nil, false
	}

	stmts := make([]ast.StmtNode, 0)
	for !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		if p.isMemberToken() || p.check(lexer.TOKEN_CLASS) || p.check(lexer.TOKEN_ROLE) {
			// A missing '}' ran the body into the next declaration.
			break
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if !p.match(lexer.TOKEN_RBRACE) {
		p.error(p.peek(), "Expected '}' after block")
		return stmts, false
	}
	return stmts, true
}

// parseStatement parses one statement. On error it records the problem,
// skips to the next statement and returns nil.
func (p *Parser) parseStatement() ast.StmtNode {
	start := p.current
	errCount := len(p.errors)

	stmt := p.statement()
	if len(p.errors) > errCount {
		p.synchronizeStatement()
		if p.current == start {
			p.advance()
		}
		return nil
	}
	return stmt
}

func (p *Parser) statement() ast.StmtNode {
	switch {
	case p.check(lexer.TOKEN_LET):
		return p.parseLet()
	case p.check(lexer.TOKEN_RETURN):
		return p.parseReturn()
	case p.check(lexer.TOKEN_IF), p.check(lexer.TOKEN_UNLESS):
		return p.parseIf()
	case p.check(lexer.TOKEN_TRY):
		return p.parseTry()
	case p.check(lexer.TOKEN_DIE):
		return p.parseDie()
	case p.check(lexer.TOKEN_SAY):
		return p.parseSay()
	case p.check(lexer.TOKEN_ELSE), p.check(lexer.TOKEN_ELSIF), p.check(lexer.TOKEN_CATCH):
		p.error(p.peek(), "'"+p.peek().Lexeme+"' without a matching opening statement")
		return nil
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseLet() ast.StmtNode {
	letToken := p.advance()

	varToken := p.consume(lexer.TOKEN_VARIABLE, "Expected variable after 'let'")
	if varToken.Type == lexer.TOKEN_ERROR {
		return nil
	}
	name := variableName(varToken)
	if name == "self" {
		p.error(varToken, "Cannot redeclare $self")
		return nil
	}

	stmt := &ast.LetStmt{Name: name, Loc: ast.TokenLocation(letToken)}
	if p.match(lexer.TOKEN_EQUALS) {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			return nil
		}
	}

	p.expectSemicolon("Expected ';' after let statement")
	return stmt
}

func (p *Parser) parseReturn() ast.StmtNode {
	returnToken := p.advance()
	stmt := &ast.ReturnStmt{Loc: ast.TokenLocation(returnToken)}

	if !p.check(lexer.TOKEN_SEMICOLON) && !p.check(lexer.TOKEN_RBRACE) && !p.isAtEnd() {
		stmt.Value = p.parseExpression()
		if stmt.Value == nil {
			return nil
		}
	}

	p.expectSemicolon("Expected ';' after return statement")
	return stmt
}

func (p *Parser) parseIf() ast.StmtNode {
	keyword := p.advance()
	stmt := &ast.IfStmt{
		Unless: keyword.Type == lexer.TOKEN_UNLESS,
		ElsIfs: make([]*ast.ElsIfBranch, 0),
		Loc:    ast.TokenLocation(keyword),
	}

	stmt.Condition = p.parseExpression()
	if stmt.Condition == nil {
		return nil
	}
	then, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt.Then = then

	for p.check(lexer.TOKEN_ELSIF) {
		elsifToken := p.advance()
		cond := p.parseExpression()
		if cond == nil {
			return nil
		}
		body, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt.ElsIfs = append(stmt.ElsIfs, &ast.ElsIfBranch{
			Condition: cond,
			Body:      body,
			Loc:       ast.TokenLocation(elsifToken),
		})
	}

	if p.match(lexer.TOKEN_ELSE) {
		body, ok := p.parseBlock()
		if !ok {
			return nil
		}
		stmt.Else = body
	}

	return stmt
}

func (p *Parser) parseTry() ast.StmtNode {
	tryToken := p.advance()

	body, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt := &ast.TryStmt{Body: body, Loc: ast.TokenLocation(tryToken)}

	if p.consume(lexer.TOKEN_CATCH, "Expected 'catch' after try block").Type == lexer.TOKEN_ERROR {
		return nil
	}

	switch {
	case p.check(lexer.TOKEN_VARIABLE):
		stmt.CatchVar = variableName(p.advance())
	case p.check(lexer.TOKEN_LPAREN):
		p.advance()
		varToken := p.consume(lexer.TOKEN_VARIABLE, "Expected variable in catch clause")
		if varToken.Type == lexer.TOKEN_ERROR {
			return nil
		}
		stmt.CatchVar = variableName(varToken)
		if p.consume(lexer.TOKEN_RPAREN, "Expected ')' after catch variable").Type == lexer.TOKEN_ERROR {
			return nil
		}
	}

	catch, ok := p.parseBlock()
	if !ok {
		return nil
	}
	stmt.Catch = catch
	return stmt
}

func (p *Parser) parseDie() ast.StmtNode {
	dieToken := p.advance()

	value := p.parseExpression()
	if value == nil {
		return nil
	}

	p.expectSemicolon("Expected ';' after die statement")
	return &ast.DieStmt{Value: value, Loc: ast.TokenLocation(dieToken)}
}

func (p *Parser) parseSay() ast.StmtNode {
	sayToken := p.advance()
	stmt := &ast.SayStmt{Args: make([]ast.ExprNode, 0), Loc: ast.TokenLocation(sayToken)}

	for {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		stmt.Args = append(stmt.Args, arg)
		if !p.match(lexer.TOKEN_COMMA) {
			break
		}
	}

	p.expectSemicolon("Expected ';' after say statement")
	return stmt
}

// parseExpressionStatement parses an expression or an assignment
func (p *Parser) parseExpressionStatement() ast.StmtNode {
	start := p.peek()

	expr := p.parseExpression()
	if expr == nil {
		return nil
	}

	if p.check(lexer.TOKEN_EQUALS) {
		equals := p.advance()
		switch expr.(type) {
		case *ast.VariableExpr, *ast.MemberExpr, *ast.IndexExpr:
		default:
			p.error(equals, "Invalid assignment target")
			return nil
		}
		if v, ok := expr.(*ast.VariableExpr); ok && v.IsSelf() {
			p.error(equals, "Cannot assign to $self")
			return nil
		}

		value := p.parseExpression()
		if value == nil {
			return nil
		}
		p.expectSemicolon("Expected ';' after assignment")
		return &ast.AssignmentStmt{Target: expr, Value: value, Loc: ast.TokenLocation(start)}
	}

	p.expectSemicolon("Expected ';' after expression")
	return &ast.ExprStmt{Expr: expr, Loc: ast.TokenLocation(start)}
}

// ParseBody parses the text of a method or modifier body, the part between
// the braces.
func ParseBody(source string) ([]ast.StmtNode, []ParseError) {
	tokens, lexErrs := lexer.New(source).ScanTokens()

	p := New(tokens)
	p.source = source
	for _, e := range lexErrs {
		p.errors = append(p.errors, fromLexError(e))
	}

	stmts := make([]ast.StmtNode, 0)
	for !p.isAtEnd() {
		if p.isMemberToken() || p.check(lexer.TOKEN_CLASS) || p.check(lexer.TOKEN_ROLE) {
			p.error(p.peek(), "'"+p.peek().Lexeme+"' is not allowed inside a method body")
			p.advance()
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errors
}
