// Package lower turns a parsed program into declarations the rewriter
// understands. Class and role nodes become decl.Class values whose methods
// carry their body source; the parsed bodies stay reachable through the
// Result so the interpreter does not parse them a second time.
package lower

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/rewriter"
)

// Result is one lowered program
type Result struct {
	Unit       *decl.Unit
	Statements []ast.StmtNode

	methods   map[*decl.Method]*ast.MethodNode
	modifiers map[*decl.Modifier]*ast.ModifierNode
	classes   map[string]*ast.ClassNode
}

// MethodBody returns the parsed body of a lowered method
func (r *Result) MethodBody(m *decl.Method) ([]ast.StmtNode, bool) {
	node, ok := r.methods[m]
	if !ok {
		return nil, false
	}
	return node.Body, true
}

// ModifierBody returns the parsed body of a lowered modifier
func (r *Result) ModifierBody(m *decl.Modifier) ([]ast.StmtNode, bool) {
	node, ok := r.modifiers[m]
	if !ok {
		return nil, false
	}
	return node.Body, true
}

// ClassNode returns the syntax a declaration was lowered from
func (r *Result) ClassNode(name string) *ast.ClassNode {
	return r.classes[name]
}

// Program lowers prog. Defaults that are not constants are reported as
// declaration errors; every other check is left to the rewriter.
func Program(prog *ast.Program) (*Result, error) {
	res := &Result{
		Unit:       &decl.Unit{File: prog.File},
		Statements: prog.Statements,
		methods:    make(map[*decl.Method]*ast.MethodNode),
		modifiers:  make(map[*decl.Modifier]*ast.ModifierNode),
		classes:    make(map[string]*ast.ClassNode, len(prog.Classes)),
	}
	l := &lowering{file: prog.File, res: res}

	for _, u := range prog.Uses {
		res.Unit.Uses = append(res.Unit.Uses, l.use(u))
	}
	for _, c := range prog.Classes {
		res.Unit.Classes = append(res.Unit.Classes, l.class(c))
		if _, seen := res.classes[c.Name]; !seen {
			res.classes[c.Name] = c
		}
	}

	if len(l.errs) > 0 {
		return nil, l.errs
	}
	return res, nil
}

type lowering struct {
	file string
	res  *Result
	errs rewriter.DeclarationErrors
}

func (l *lowering) pos(loc ast.SourceLocation) decl.Position {
	return decl.Position{File: l.file, Line: loc.Line, Column: loc.Column}
}

func (l *lowering) use(u *ast.UseNode) *decl.Use {
	out := &decl.Use{Library: u.Library, Pos: l.pos(u.Loc)}
	for _, imp := range u.Imports {
		out.Imports = append(out.Imports, decl.Import{Name: imp.Name, Alias: imp.Alias})
	}
	return out
}

func (l *lowering) class(c *ast.ClassNode) *decl.Class {
	out := &decl.Class{
		Name:     c.Name,
		Kind:     decl.KindClass,
		Extends:  c.Extends,
		With:     append([]string(nil), c.With...),
		Requires: append([]string(nil), c.Requires...),
		Pos:      l.pos(c.Loc),
	}
	if c.IsRole() {
		out.Kind = decl.KindRole
	}

	for _, a := range c.Attributes {
		attr := &decl.Attribute{
			Name:     a.Name,
			Is:       a.Is,
			Isa:      a.Isa.String(),
			Builder:  a.Builder,
			Required: a.Required,
			Trigger:  a.Trigger,
			Pos:      l.pos(a.Loc),
		}
		if a.Default != nil {
			v, ok := Constant(a.Default)
			if !ok {
				l.fail(rewriter.CodeInvalidAttribute, c.Name, a.Name, a.Default.Location(),
					"default must be a constant (use a builder method for computed values)")
			}
			attr.Default = decl.Const(v)
		}
		out.Attributes = append(out.Attributes, attr)
	}

	for _, m := range c.Methods {
		method := &decl.Method{Name: m.Name, Source: m.Source, Pos: l.pos(m.Loc)}
		for _, p := range m.Params {
			method.Params = append(method.Params, l.param(c.Name, m.Name, p))
		}
		out.Methods = append(out.Methods, method)
		l.res.methods[method] = m
	}

	for _, m := range c.Modifiers {
		mod := &decl.Modifier{Kind: m.Kind, Method: m.Method, Source: m.Source, Pos: l.pos(m.Loc)}
		out.Modifiers = append(out.Modifiers, mod)
		l.res.modifiers[mod] = m
	}
	return out
}

func (l *lowering) param(class, method string, p *ast.ParamNode) *decl.Param {
	out := &decl.Param{
		Name:     p.Name,
		Isa:      p.Type.String(),
		Named:    p.Named,
		Optional: p.Optional,
		Required: p.Required,
		Pos:      l.pos(p.Loc),
	}
	if p.Default != nil {
		v, ok := Constant(p.Default)
		if !ok {
			l.fail(rewriter.CodeInvalidParams, class, method, p.Default.Location(),
				"default for parameter $%s must be a constant", p.Name)
		}
		out.Default = decl.Const(v)
	}
	return out
}

func (l *lowering) fail(code, class, member string, loc ast.SourceLocation, format string, args ...any) {
	l.errs = append(l.errs, &rewriter.DeclarationError{
		Code:    code,
		Class:   class,
		Member:  member,
		Message: fmt.Sprintf(format, args...),
		Pos:     l.pos(loc),
	})
}

// Constant evaluates expressions that need no runtime: literals, negated
// numbers, and arrays and hashes built from constants.
func Constant(e ast.ExprNode) (any, bool) {
	switch x := e.(type) {
	case *ast.LiteralExpr:
		return x.Value, true
	case *ast.UnaryExpr:
		if x.Operator != "-" {
			return nil, false
		}
		v, ok := Constant(x.Operand)
		if !ok {
			return nil, false
		}
		switch n := v.(type) {
		case int64:
			return -n, true
		case float64:
			return -n, true
		}
		return nil, false
	case *ast.ArrayLiteralExpr:
		out := make([]any, 0, len(x.Elements))
		for _, el := range x.Elements {
			v, ok := Constant(el)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	case *ast.HashLiteralExpr:
		out := make(map[string]any, len(x.Entries))
		for _, entry := range x.Entries {
			v, ok := Constant(entry.Value)
			if !ok {
				return nil, false
			}
			out[entry.Key] = v
		}
		return out, true
	}
	return nil, false
}
