// Package checker runs static checks over a parsed moops program before it
// is declared: variable scoping, use of $self, private and read-only
// attributes, super calls and calls to unknown classes or built-ins.
//
// The checker never rejects what the object system would accept at run
// time without a good reason; members that may come from roles composed
// at load time are reported as warnings only.
package checker

import (
	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/compiler/stdlib"
	"github.com/moops-lang/moops/internal/mop"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

// Checker performs static checks on a program
type Checker struct {
	// Registry of classes declared before this program (may be nil)
	registry *mop.Registry

	// Variables already defined by earlier input (REPL sessions)
	globals []string

	// Class and role declarations of the program being checked
	nodes map[string]*ast.ClassNode

	// Resolved member tables, built lazily
	infos    map[string]*classInfo
	building map[string]bool

	// Accumulated diagnostics
	errors errors.ErrorList
	file   string
}

// Option configures a Checker
type Option func(*Checker)

// WithRegistry makes classes registered earlier known to the checker
func WithRegistry(reg *mop.Registry) Option {
	return func(c *Checker) {
		c.registry = reg
	}
}

// WithGlobals declares variables that exist before the program runs
func WithGlobals(names ...string) Option {
	return func(c *Checker) {
		c.globals = append(c.globals, names...)
	}
}

// New creates a checker
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check is a convenience wrapper around New(opts...).CheckProgram(prog)
func Check(prog *ast.Program, opts ...Option) errors.ErrorList {
	return New(opts...).CheckProgram(prog)
}

// CheckProgram checks every class body and the top-level statements and
// returns the diagnostics found, errors and warnings mixed, in source order
// per section.
func (c *Checker) CheckProgram(prog *ast.Program) errors.ErrorList {
	c.nodes = make(map[string]*ast.ClassNode, len(prog.Classes))
	c.infos = make(map[string]*classInfo)
	c.building = make(map[string]bool)
	c.errors = nil
	c.file = prog.File

	for _, class := range prog.Classes {
		c.nodes[class.Name] = class
	}

	for _, class := range prog.Classes {
		c.checkClass(class)
	}

	top := newScope(nil, false)
	for _, name := range c.globals {
		top.declare(name)
	}
	c.checkBlock(&context{scope: top}, prog.Statements)

	return c.errors
}

// context is where a statement is checked: inside a method or modifier of
// class, or at the top level when class is nil.
type context struct {
	class    *classInfo
	method   string // enclosing method, or the target of a modifier
	modifier bool
	scope    *scope
}

func (ctx *context) child() *context {
	out := *ctx
	out.scope = newScope(ctx.scope, ctx.scope.open)
	return &out
}

func (c *Checker) checkClass(node *ast.ClassNode) {
	info := c.info(node.Name)
	if info == nil {
		return
	}

	for _, m := range node.Methods {
		s := newScope(nil, false)
		for _, p := range m.Params {
			s.declare(p.Name)
		}
		c.checkBlock(&context{class: info, method: m.Name, scope: s}, m.Body)
	}

	for _, mod := range node.Modifiers {
		// A modifier sees the parameters of the method it wraps. When they
		// cannot be known statically every variable is accepted.
		s := newScope(nil, true)
		if params, ok := c.params(node, mod.Method); ok {
			s = newScope(nil, false)
			for _, name := range params {
				s.declare(name)
			}
		}
		c.checkBlock(&context{class: info, method: mod.Method, modifier: true, scope: s}, mod.Body)
	}
}

// params finds the parameter names of method as seen from class node.
func (c *Checker) params(node *ast.ClassNode, method string) ([]string, bool) {
	seen := map[string]bool{}
	for node != nil && !seen[node.Name] {
		seen[node.Name] = true
		if m := node.Method(method); m != nil {
			names := make([]string, len(m.Params))
			for i, p := range m.Params {
				names[i] = p.Name
			}
			return names, true
		}
		if node.Extends == "" {
			return nil, false
		}
		node = c.nodes[node.Extends]
	}
	return nil, false
}

func (c *Checker) report(e *errors.CompilerError) {
	if c.file != "" {
		e = e.WithFile(c.file)
	}
	c.errors = append(c.errors, e)
}

// checkBlock checks statements in a nested scope
func (c *Checker) checkBlock(ctx *context, stmts []ast.StmtNode) {
	c.checkStmts(ctx.child(), stmts)
}

func (c *Checker) checkStmts(ctx *context, stmts []ast.StmtNode) {
	var terminal string
	for _, stmt := range stmts {
		if terminal != "" {
			c.report(errors.NewUnreachableCode(stmt.Location(), terminal))
			terminal = ""
		}
		c.checkStmt(ctx, stmt)

		switch stmt.(type) {
		case *ast.ReturnStmt:
			if ctx.class != nil {
				terminal = "return"
			}
		case *ast.DieStmt:
			terminal = "die"
		}
	}
}

func (c *Checker) checkStmt(ctx *context, stmt ast.StmtNode) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.checkExpr(ctx, s.Expr)

	case *ast.LetStmt:
		if s.Value != nil {
			c.checkExpr(ctx, s.Value)
		}
		if ctx.scope.declaredHere(s.Name) {
			c.report(errors.NewRedeclaredVariable(s.Loc, s.Name))
		}
		ctx.scope.declare(s.Name)

	case *ast.AssignmentStmt:
		c.checkExpr(ctx, s.Value)
		c.checkTarget(ctx, s.Target)

	case *ast.ReturnStmt:
		if ctx.class == nil {
			c.report(errors.NewInvalidReturnContext(s.Loc))
		}
		if s.Value != nil {
			c.checkExpr(ctx, s.Value)
		}

	case *ast.IfStmt:
		c.checkExpr(ctx, s.Condition)
		c.checkBlock(ctx, s.Then)
		for _, branch := range s.ElsIfs {
			c.checkExpr(ctx, branch.Condition)
			c.checkBlock(ctx, branch.Body)
		}
		if s.Else != nil {
			c.checkBlock(ctx, s.Else)
		}

	case *ast.TryStmt:
		c.checkBlock(ctx, s.Body)
		catch := ctx.child()
		if s.CatchVar != "" {
			catch.scope.declare(s.CatchVar)
		}
		c.checkStmts(catch, s.Catch)

	case *ast.DieStmt:
		c.checkExpr(ctx, s.Value)

	case *ast.SayStmt:
		for _, arg := range s.Args {
			c.checkExpr(ctx, arg)
		}
	}
}

// checkTarget checks the left-hand side of an assignment
func (c *Checker) checkTarget(ctx *context, target ast.ExprNode) {
	switch t := target.(type) {
	case *ast.VariableExpr:
		if t.IsSelf() {
			c.checkExpr(ctx, t)
			return
		}
		if !ctx.scope.lookup(t.Name) {
			c.undefined(ctx, t)
		}

	case *ast.MemberExpr:
		if attr, ok := c.selfAttribute(ctx, t.Object, t.Name); ok && attr.access == "ro" {
			c.report(errors.NewReadOnlyAssignment(t.Loc, ctx.class.name, t.Name))
		}
		c.checkExpr(ctx, t)

	case *ast.IndexExpr:
		// $self.list[0] = v writes the whole attribute back
		c.checkTarget(ctx, t.Object)
		c.checkExpr(ctx, t.Index)

	default:
		c.checkExpr(ctx, target)
	}
}

func (c *Checker) checkExpr(ctx *context, expr ast.ExprNode) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		if e.IsSelf() {
			if ctx.class == nil {
				c.report(errors.NewInvalidSelfReference(e.Loc))
			}
			return
		}
		if !ctx.scope.lookup(e.Name) {
			c.undefined(ctx, e)
		}

	case *ast.UnaryExpr:
		c.checkExpr(ctx, e.Operand)

	case *ast.BinaryExpr:
		c.checkExpr(ctx, e.Left)
		c.checkExpr(ctx, e.Right)

	case *ast.LogicalExpr:
		c.checkExpr(ctx, e.Left)
		c.checkExpr(ctx, e.Right)

	case *ast.ArrayLiteralExpr:
		for _, el := range e.Elements {
			c.checkExpr(ctx, el)
		}

	case *ast.HashLiteralExpr:
		for _, entry := range e.Entries {
			c.checkExpr(ctx, entry.Value)
		}

	case *ast.IndexExpr:
		c.checkExpr(ctx, e.Object)
		c.checkExpr(ctx, e.Index)

	case *ast.MemberExpr:
		c.checkExpr(ctx, e.Object)
		c.checkMember(ctx, e.Object, e.Name, e.Loc)

	case *ast.CallExpr:
		c.checkExpr(ctx, e.Object)
		c.checkMember(ctx, e.Object, e.Method, e.Loc)
		c.checkArgs(ctx, e.Arguments)

	case *ast.ClassCallExpr:
		c.checkClassCall(e)
		c.checkArgs(ctx, e.Arguments)

	case *ast.SuperExpr:
		c.checkSuper(ctx, e)
		c.checkArgs(ctx, e.Arguments)
	}
}

func (c *Checker) checkArgs(ctx *context, args []*ast.ArgNode) {
	for _, arg := range args {
		c.checkExpr(ctx, arg.Value)
	}
}

func (c *Checker) undefined(ctx *context, v *ast.VariableExpr) {
	suggestion := ustrings.FindBestMatch(v.Name, ctx.scope.names(), nil)
	c.report(errors.NewUndefinedVariable(v.Loc, v.Name, suggestion))
}

// checkMember checks $self.name: the member must exist and, when private,
// belong to the enclosing class.
func (c *Checker) checkMember(ctx *context, object ast.ExprNode, name string, loc ast.SourceLocation) {
	if !isSelf(object) || ctx.class == nil {
		return
	}
	info := ctx.class

	if attr, ok := info.attrs[name]; ok {
		if attr.access == "private" && attr.owner != info.name {
			c.report(errors.NewPrivateAccess(loc, info.name, name, attr.owner))
		}
		return
	}
	if _, ok := info.methods[name]; ok {
		return
	}
	if !info.complete || info.role {
		return
	}
	suggestion := ustrings.FindBestMatch(name, info.memberNames(), nil)
	c.report(errors.NewUnknownMember(loc, info.name, name, suggestion))
}

// selfAttribute returns the attribute named by $self.name, if any
func (c *Checker) selfAttribute(ctx *context, object ast.ExprNode, name string) (member, bool) {
	if !isSelf(object) || ctx.class == nil {
		return member{}, false
	}
	attr, ok := ctx.class.attrs[name]
	return attr, ok
}

func (c *Checker) checkClassCall(e *ast.ClassCallExpr) {
	if c.classKnown(e.Class) {
		if e.Method != "new" {
			c.report(errors.NewUnknownFunction(e.Loc, e.Class, e.Method, "new"))
		}
		return
	}

	if stdlib.GetFunctions(e.Class) != nil {
		if _, ok := stdlib.Lookup(e.Class, e.Method); !ok {
			suggestion := ustrings.FindBestMatch(e.Method, stdlib.FunctionNames(e.Class), nil)
			c.report(errors.NewUnknownFunction(e.Loc, e.Class, e.Method, suggestion))
		}
		return
	}

	candidates := stdlib.GetNamespaces()
	for name := range c.nodes {
		candidates = append(candidates, name)
	}
	if c.registry != nil {
		candidates = append(candidates, c.registry.Names()...)
	}
	c.report(errors.NewUnknownClass(e.Loc, e.Class, ustrings.FindBestMatch(e.Class, candidates, nil)))
}

func (c *Checker) classKnown(name string) bool {
	if _, ok := c.nodes[name]; ok {
		return true
	}
	return c.registry != nil && c.registry.Exists(name)
}

// checkSuper reports super where no parent implementation can exist
func (c *Checker) checkSuper(ctx *context, e *ast.SuperExpr) {
	if ctx.class == nil {
		c.report(errors.NewInvalidSuper(e.Loc, "", "top-level code"))
		return
	}
	if ctx.modifier {
		c.report(errors.NewInvalidSuper(e.Loc, ctx.class.name, ctx.modifierName()))
		return
	}
	if ctx.class.parent == "" {
		if !ctx.class.role && ctx.class.roles == 0 {
			c.report(errors.NewInvalidSuper(e.Loc, ctx.class.name, ctx.method))
		}
		return
	}
	parent := c.info(ctx.class.parent)
	if parent == nil || !parent.complete {
		return
	}
	if _, ok := parent.methods[ctx.method]; !ok {
		c.report(errors.NewInvalidSuper(e.Loc, ctx.class.name, ctx.method))
	}
}

func (ctx *context) modifierName() string {
	return "modifier of " + ctx.method
}

func isSelf(e ast.ExprNode) bool {
	v, ok := e.(*ast.VariableExpr)
	return ok && v.IsSelf()
}
