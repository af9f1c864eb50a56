// Package ast defines the Abstract Syntax Tree (AST) node types for moops
// source: use directives, class and role declarations, and the statements
// and expressions of the body language.
package ast

import "github.com/moops-lang/moops/internal/compiler/lexer"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
	Offset int // Byte offset
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	node()
}

// StmtNode is a statement of the body language
type StmtNode interface {
	Node
	stmtNode()
}

// ExprNode is an expression of the body language
type ExprNode interface {
	Node
	exprNode()
}

// Program is the root node of the AST
type Program struct {
	File       string
	Uses       []*UseNode
	Classes    []*ClassNode
	Statements []StmtNode // top-level statements, in source order
}

func (p *Program) node() {}

// Location returns the position of the first declaration
func (p *Program) Location() SourceLocation {
	switch {
	case len(p.Uses) > 0:
		return p.Uses[0].Loc
	case len(p.Classes) > 0:
		return p.Classes[0].Loc
	case len(p.Statements) > 0:
		return p.Statements[0].Location()
	}
	return SourceLocation{Line: 1, Column: 1}
}

// Class returns the class or role declared under name, or nil
func (p *Program) Class(name string) *ClassNode {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// UseNode is `use Library;` or `use Library (A, B as C);`
type UseNode struct {
	Library string
	Imports []*ImportNode // empty imports everything
	Loc     SourceLocation
}

func (u *UseNode) node() {}

// Location returns the position of the `use` keyword
func (u *UseNode) Location() SourceLocation {
	return u.Loc
}

// ImportNode is one name in a use list
type ImportNode struct {
	Name  string
	Alias string
	Loc   SourceLocation
}

// ClassNode is a class or role declaration
type ClassNode struct {
	Name          string
	Kind          string // "class" or "role"
	Documentation string
	Extends       string
	With          []string
	Attributes    []*AttributeNode
	Methods       []*MethodNode
	Requires      []string
	Modifiers     []*ModifierNode
	Loc           SourceLocation
	End           SourceLocation // closing brace
}

func (c *ClassNode) node() {}

// Location returns the position of the class keyword
func (c *ClassNode) Location() SourceLocation {
	return c.Loc
}

// IsRole reports whether the node declares a role
func (c *ClassNode) IsRole() bool {
	return c.Kind == "role"
}

// Attribute returns the attribute declared under name, or nil
func (c *ClassNode) Attribute(name string) *AttributeNode {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Method returns the method declared under name, or nil
func (c *ClassNode) Method(name string) *MethodNode {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AttributeNode is a `has name (options);` declaration. Options the parser
// does not recognize are reported as syntax errors.
type AttributeNode struct {
	Name     string
	Is       string
	Isa      *TypeNode
	Default  ExprNode
	Builder  string
	Required bool
	Trigger  string
	Loc      SourceLocation
}

func (a *AttributeNode) node() {}

// Location returns the position of the `has` keyword
func (a *AttributeNode) Location() SourceLocation {
	return a.Loc
}

// TypeNode is a type expression kept as text, e.g. "Maybe[ArrayRef[Int]]"
type TypeNode struct {
	Text string
	Loc  SourceLocation
}

func (t *TypeNode) node() {}

// Location returns the position of the first token of the type
func (t *TypeNode) Location() SourceLocation {
	return t.Loc
}

func (t *TypeNode) String() string {
	if t == nil {
		return ""
	}
	return t.Text
}

// ParamNode is one parameter: `Type :$name! = default`
type ParamNode struct {
	Name     string
	Type     *TypeNode
	Named    bool
	Optional bool
	Required bool
	Default  ExprNode
	Loc      SourceLocation
}

func (p *ParamNode) node() {}

// Location returns the position of the parameter
func (p *ParamNode) Location() SourceLocation {
	return p.Loc
}

// MethodNode is a method declaration. Source holds the body text between
// the braces.
type MethodNode struct {
	Name   string
	Params []*ParamNode
	Body   []StmtNode
	Source string
	Loc    SourceLocation
}

func (m *MethodNode) node() {}

// Location returns the position of the `method` keyword
func (m *MethodNode) Location() SourceLocation {
	return m.Loc
}

// Param returns the parameter declared under name, or nil
func (m *MethodNode) Param(name string) *ParamNode {
	for _, p := range m.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ModifierNode is a `before name { ... }` or `after name { ... }` block
type ModifierNode struct {
	Kind   string
	Method string
	Body   []StmtNode
	Source string
	Loc    SourceLocation
}

func (m *ModifierNode) node() {}

// Location returns the position of the modifier keyword
func (m *ModifierNode) Location() SourceLocation {
	return m.Loc
}

// ExprStmt evaluates an expression for its effect
type ExprStmt struct {
	Expr ExprNode
	Loc  SourceLocation
}

func (s *ExprStmt) node()     {}
func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) Location() SourceLocation {
	return s.Loc
}

// LetStmt declares a variable: let $x = value;
type LetStmt struct {
	Name  string
	Value ExprNode // nil declares undef
	Loc   SourceLocation
}

func (s *LetStmt) node()     {}
func (s *LetStmt) stmtNode() {}

func (s *LetStmt) Location() SourceLocation {
	return s.Loc
}

// AssignmentStmt stores into a variable, an attribute ($obj.attr) or an
// element ($list[0]).
type AssignmentStmt struct {
	Target ExprNode // *VariableExpr, *MemberExpr or *IndexExpr
	Value  ExprNode
	Loc    SourceLocation
}

func (s *AssignmentStmt) node()     {}
func (s *AssignmentStmt) stmtNode() {}

func (s *AssignmentStmt) Location() SourceLocation {
	return s.Loc
}

// ReturnStmt leaves the method
type ReturnStmt struct {
	Value ExprNode // nil returns undef
	Loc   SourceLocation
}

func (s *ReturnStmt) node()     {}
func (s *ReturnStmt) stmtNode() {}

func (s *ReturnStmt) Location() SourceLocation {
	return s.Loc
}

// IfStmt is if/elsif/else. Unless inverts the first condition.
type IfStmt struct {
	Condition ExprNode
	Unless    bool
	Then      []StmtNode
	ElsIfs    []*ElsIfBranch
	Else      []StmtNode
	Loc       SourceLocation
}

func (s *IfStmt) node()     {}
func (s *IfStmt) stmtNode() {}

func (s *IfStmt) Location() SourceLocation {
	return s.Loc
}

// ElsIfBranch is one elsif arm
type ElsIfBranch struct {
	Condition ExprNode
	Body      []StmtNode
	Loc       SourceLocation
}

// TryStmt runs Body and hands any error to Catch bound to CatchVar
type TryStmt struct {
	Body     []StmtNode
	CatchVar string // may be empty
	Catch    []StmtNode
	Loc      SourceLocation
}

func (s *TryStmt) node()     {}
func (s *TryStmt) stmtNode() {}

func (s *TryStmt) Location() SourceLocation {
	return s.Loc
}

// DieStmt raises an exception
type DieStmt struct {
	Value ExprNode
	Loc   SourceLocation
}

func (s *DieStmt) node()     {}
func (s *DieStmt) stmtNode() {}

func (s *DieStmt) Location() SourceLocation {
	return s.Loc
}

// SayStmt prints its arguments followed by a newline
type SayStmt struct {
	Args []ExprNode
	Loc  SourceLocation
}

func (s *SayStmt) node()     {}
func (s *SayStmt) stmtNode() {}

func (s *SayStmt) Location() SourceLocation {
	return s.Loc
}

// TokenLocation creates a SourceLocation from a lexer token
func TokenLocation(token lexer.Token) SourceLocation {
	return SourceLocation{
		Line:   token.Line,
		Column: token.Column,
		Offset: token.Offset,
	}
}
