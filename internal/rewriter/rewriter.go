// Package rewriter turns class and role declarations into plans of
// registration calls against the object system. Rewriting is a pure
// transform: it reads the registry and the type scope but changes neither.
// Applying a plan builds the class completely before registering it, so a
// failing declaration never leaves a partial class behind.
package rewriter

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

// BodyCompiler turns body-language source into method bodies.
type BodyCompiler interface {
	CompileMethod(c *decl.Class, m *decl.Method) (mop.Body, error)
	CompileModifier(c *decl.Class, m *decl.Modifier) (mop.Body, error)
}

// Rewriter rewrites declarations against one registry.
type Rewriter struct {
	registry *mop.Registry
	compiler BodyCompiler
	logger   *zap.Logger
}

// Option configures a Rewriter
type Option func(*Rewriter)

// WithBodyCompiler sets the compiler used for methods given as Source
func WithBodyCompiler(bc BodyCompiler) Option {
	return func(rw *Rewriter) {
		rw.compiler = bc
	}
}

// WithLogger sets the rewriter logger
func WithLogger(logger *zap.Logger) Option {
	return func(rw *Rewriter) {
		if logger != nil {
			rw.logger = logger
		}
	}
}

// New creates a rewriter for reg
func New(reg *mop.Registry, opts ...Option) *Rewriter {
	rw := &Rewriter{registry: reg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Rewrite rewrites a single declaration with no body compiler. Methods must
// carry Go bodies.
func Rewrite(c *decl.Class, scope *types.Scope, reg *mop.Registry) (*Plan, error) {
	return New(reg).Rewrite(c, scope)
}

// Rewrite checks c and returns its plan. Every problem found is reported
// in one DeclarationErrors value.
func (rw *Rewriter) Rewrite(c *decl.Class, scope *types.Scope) (*Plan, error) {
	return rw.rewrite(c, scope, nil)
}

// RewriteUnit imports the unit's use directives into scope, declares its
// classes and rewrites them in dependency order.
func (rw *Rewriter) RewriteUnit(u *decl.Unit, scope *types.Scope) ([]*Plan, error) {
	var errs DeclarationErrors
	if scope == nil {
		scope = types.NewScope(types.DefaultUniverse(), rw.registry)
	}

	for _, use := range u.Uses {
		imports := make([]types.Import, len(use.Imports))
		for i, imp := range use.Imports {
			imports[i] = types.Import{Name: imp.Name, Alias: imp.Alias}
		}
		if err := scope.Use(use.Library, imports...); err != nil {
			de := typeError("", "", use.Pos, "", err)
			var unknown *types.UnknownNameError
			if errors.As(err, &unknown) && unknown.What == "library" {
				de.Code = CodeUnknownLibrary
			}
			errs = append(errs, de)
		}
	}

	unit := make(map[string]*decl.Class, len(u.Classes))
	for _, c := range u.Classes {
		if _, dup := unit[c.Name]; dup {
			errs = append(errs, &DeclarationError{
				Code:    CodeDuplicate,
				Class:   c.Name,
				Message: fmt.Sprintf("%s %s is declared twice in this unit", kindOf(c), c.Name),
				Pos:     c.Pos,
			})
			continue
		}
		unit[c.Name] = c
		scope.DeclareClass(c.Name, c.IsRole())
	}

	graph := NewDependencyGraph(u.Classes)
	order, err := graph.TopologicalSort()
	if err != nil {
		for _, cycle := range graph.DetectCycles() {
			first := unit[cycle[0]]
			errs = append(errs, &DeclarationError{
				Code:    CodeCycle,
				Class:   first.Name,
				Message: "inheritance cycle: " + formatCycle(cycle),
				Pos:     first.Pos,
			})
		}
		order = graph.order
	}

	plans := make([]*Plan, 0, len(order))
	for _, name := range order {
		p, err := rw.rewrite(unit[name], scope, unit)
		if err != nil {
			var des DeclarationErrors
			if errors.As(err, &des) {
				errs = append(errs, des...)
				continue
			}
			return nil, err
		}
		plans = append(plans, p)
	}

	if len(errs) > 0 {
		rw.logger.Debug("unit rejected", zap.String("file", u.File), zap.Int("errors", len(errs)))
		return nil, errs
	}
	return plans, nil
}

// ApplyUnit rewrites a unit and registers all of its classes, or none.
func (rw *Rewriter) ApplyUnit(u *decl.Unit, scope *types.Scope) ([]*mop.Class, error) {
	plans, err := rw.RewriteUnit(u, scope)
	if err != nil {
		return nil, err
	}
	classes, err := ApplyPlans(rw.registry, plans)
	if err != nil {
		return nil, err
	}
	rw.logger.Info("unit loaded", zap.String("file", u.File), zap.Int("classes", len(classes)))
	return classes, nil
}

// rewriting is the state of one Rewrite call
type rewriting struct {
	rw    *Rewriter
	scope *types.Scope
	unit  map[string]*decl.Class
	class *decl.Class
	errs  DeclarationErrors
}

func (rw *Rewriter) rewrite(c *decl.Class, scope *types.Scope, unit map[string]*decl.Class) (*Plan, error) {
	if scope == nil {
		scope = types.NewScope(types.DefaultUniverse(), rw.registry)
	}
	x := &rewriting{rw: rw, scope: scope, unit: unit, class: c}
	plan := &Plan{Class: c.Name, Kind: mop.KindClass, Deps: c.Dependencies()}
	if c.IsRole() {
		plan.Kind = mop.KindRole
	}

	x.header(plan)
	x.attributes(plan)
	x.methods(plan)
	x.roles(plan)
	x.requires(plan)
	x.modifiers(plan)

	if len(x.errs) > 0 {
		return nil, x.errs
	}
	rw.logger.Debug("rewrote declaration",
		zap.String("class", c.Name),
		zap.String("kind", plan.Kind.String()),
		zap.Int("ops", len(plan.Ops)),
	)
	return plan, nil
}

func (x *rewriting) fail(code, member string, pos decl.Position, format string, args ...any) *DeclarationError {
	de := &DeclarationError{
		Code:    code,
		Class:   x.class.Name,
		Member:  member,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
	x.errs = append(x.errs, de)
	return de
}

// classKind resolves a class or role name visible to the declaration
func (x *rewriting) classKind(name string) (isRole bool, ok bool) {
	if isRole, ok := x.scope.Class(name); ok {
		return isRole, true
	}
	return x.rw.registry.ClassKind(name)
}

func (x *rewriting) knownClasses(wantRole bool) []string {
	out := append(x.scope.DeclaredClasses(), x.rw.registry.Names()...)
	filtered := out[:0]
	for _, name := range out {
		if isRole, ok := x.classKind(name); ok && isRole == wantRole && name != x.class.Name {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

func (x *rewriting) header(plan *Plan) {
	c := x.class
	switch {
	case c.Name == "":
		x.fail(CodeInvalidHeader, "", c.Pos, "declaration without a name")
	case c.Kind != "" && c.Kind != decl.KindClass && c.Kind != decl.KindRole:
		x.fail(CodeInvalidHeader, "", c.Pos, "unknown declaration kind %q", c.Kind)
	case x.rw.registry.Exists(c.Name):
		x.fail(CodeDuplicate, "", c.Pos, "%s %s is already registered", kindOf(c), c.Name)
	}

	if c.Extends == "" {
		return
	}
	if c.IsRole() {
		x.fail(CodeInvalidHeader, "", c.Pos, "a role cannot extend a class (compose roles with `with`)")
		return
	}
	if c.Extends == c.Name {
		x.fail(CodeCycle, "", c.Pos, "class %s cannot extend itself", c.Name)
		return
	}
	isRole, ok := x.classKind(c.Extends)
	switch {
	case !ok:
		de := x.fail(CodeUnknownParent, "", c.Pos, "unknown parent class %s", c.Extends)
		de.Suggestions = ustrings.FindSimilar(c.Extends, x.knownClasses(false), nil)
	case isRole:
		x.fail(CodeInvalidHeader, "", c.Pos, "cannot extend role %s (use `with` to compose it)", c.Extends)
	default:
		plan.Ops = append(plan.Ops, extendOp(c.Extends))
	}
}

func (x *rewriting) attributes(plan *Plan) {
	seen := make(map[string]bool)
	var accessors []string

	for _, a := range x.class.Attributes {
		if a.Name == "" {
			x.fail(CodeInvalidAttribute, "", a.Pos, "attribute without a name")
			continue
		}
		if seen[a.Name] {
			x.fail(CodeDuplicate, a.Name, a.Pos, "attribute %s declared twice", a.Name)
			continue
		}
		seen[a.Name] = true

		tmpl, ok := x.attribute(a)
		if !ok {
			continue
		}
		plan.Ops = append(plan.Ops, attributeOp(tmpl))
		if tmpl.Access != mop.Private {
			accessors = append(accessors, a.Name)
		}
	}

	for _, name := range accessors {
		plan.Ops = append(plan.Ops, accessorOp(name))
	}
}

func (x *rewriting) attribute(a *decl.Attribute) (mop.Attribute, bool) {
	before := len(x.errs)
	tmpl := mop.Attribute{
		Name:     a.Name,
		Builder:  a.Builder,
		Required: a.Required,
		Trigger:  a.Trigger,
	}

	access, err := mop.ParseAccess(a.Is)
	if err != nil {
		x.fail(CodeInvalidAttribute, a.Name, a.Pos, "%v", err)
	}
	tmpl.Access = access

	if a.Isa != "" {
		p, err := x.scope.ResolveString(a.Isa)
		if err != nil {
			x.errs = append(x.errs, typeError(x.class.Name, a.Name, a.Pos, "", err))
		}
		tmpl.Type = p
	}

	if a.Default != nil {
		tmpl.HasDefault = true
		tmpl.Default = a.Default.V
	}
	if a.Required && (a.Default != nil || a.Builder != "") {
		x.fail(CodeInvalidAttribute, a.Name, a.Pos, "a required attribute cannot have a default or builder")
	}
	if a.Default != nil && a.Builder != "" {
		x.fail(CodeInvalidAttribute, a.Name, a.Pos, "an attribute cannot have both a default and a builder")
	}
	if access == mop.Private && a.Required {
		x.fail(CodeInvalidAttribute, a.Name, a.Pos, "a private attribute cannot be required: the constructor does not accept it")
	}

	if tmpl.HasDefault && tmpl.Type != nil {
		if _, isFn := tmpl.Default.(func() any); !isFn {
			if err := tmpl.Type.Check(tmpl.Default); err != nil {
				x.fail(CodeInvalidAttribute, a.Name, a.Pos, "default %s: %s", types.FormatValue(tmpl.Default), validationMessage(err))
			}
		}
	}

	if !x.class.IsRole() {
		methods := x.availableMethods()
		if a.Trigger != "" && !methods[a.Trigger] {
			de := x.fail(CodeInvalidAttribute, a.Name, a.Pos, "trigger %s is not a method of %s", a.Trigger, x.class.Name)
			de.Suggestions = ustrings.FindSimilar(a.Trigger, setKeys(methods), nil)
		}
		if a.Builder != "" && !methods[a.Builder] {
			de := x.fail(CodeInvalidAttribute, a.Name, a.Pos, "builder %s is not a method of %s", a.Builder, x.class.Name)
			de.Suggestions = ustrings.FindSimilar(a.Builder, setKeys(methods), nil)
		}
	}
	return tmpl, len(x.errs) == before
}

func (x *rewriting) methods(plan *Plan) {
	seen := make(map[string]bool)
	accessors := make(map[string]bool)
	for _, a := range x.class.Attributes {
		if a.Is != "private" && a.Is != "lexical" {
			accessors[a.Name] = true
		}
	}

	for _, m := range x.class.Methods {
		if m.Name == "" {
			x.fail(CodeInvalidMethod, "", m.Pos, "method without a name")
			continue
		}
		if seen[m.Name] {
			x.fail(CodeDuplicate, m.Name, m.Pos, "method %s defined twice", m.Name)
			continue
		}
		seen[m.Name] = true
		if accessors[m.Name] {
			x.fail(CodeInvalidMethod, m.Name, m.Pos, "method %s clashes with the accessor of attribute %s", m.Name, m.Name)
			continue
		}

		before := len(x.errs)
		sig := x.signature(m)
		body := x.methodBody(m)
		if len(x.errs) == before {
			plan.Ops = append(plan.Ops, methodOp(m.Name, sig, body))
		}
	}
}

// signature checks a parameter list and builds the binding prologue.
func (x *rewriting) signature(m *decl.Method) *mop.Signature {
	params := make([]mop.Param, 0, len(m.Params))
	seen := make(map[string]bool)
	sawOptional, sawNamed := false, false
	bad := false
	fail := func(p *decl.Param, format string, args ...any) {
		x.fail(CodeInvalidParams, m.Name, p.Pos, format, args...)
		bad = true
	}

	for _, p := range m.Params {
		if p.Name == "" {
			fail(p, "parameter without a name")
			continue
		}
		if seen[p.Name] {
			fail(p, "duplicate parameter $%s", p.Name)
			continue
		}
		seen[p.Name] = true

		if p.Required && p.Default != nil {
			fail(p, "parameter $%s cannot be required and have a default", p.Name)
		}
		if p.Required && p.Optional {
			fail(p, "parameter $%s cannot be both required and optional", p.Name)
		}

		param := mop.Param{Name: p.Name, Named: p.Named}
		if p.Named {
			param.Optional = !p.Required
			sawNamed = true
		} else {
			param.Optional = p.Optional
			if sawNamed {
				fail(p, "positional parameter $%s after named parameters", p.Name)
			}
			if p.Optional || p.Default != nil {
				sawOptional = true
			} else if sawOptional {
				fail(p, "required parameter $%s after optional parameters", p.Name)
			}
		}

		if p.Isa != "" {
			pred, err := x.scope.ResolveString(p.Isa)
			if err != nil {
				x.errs = append(x.errs, typeError(x.class.Name, m.Name, p.Pos, fmt.Sprintf("parameter $%s: ", p.Name), err))
				bad = true
			}
			param.Type = pred
		}
		if p.Default != nil {
			param.HasDefault = true
			param.Default = p.Default.V
			if param.Type != nil {
				if err := param.Type.Check(p.Default.V); err != nil {
					x.fail(CodeInvalidParams, m.Name, p.Pos, "default for parameter $%s: %s", p.Name, validationMessage(err))
					bad = true
				}
			}
		}
		params = append(params, param)
	}

	if bad {
		return nil
	}
	sig, err := mop.NewSignature(params...)
	if err != nil {
		x.fail(CodeInvalidParams, m.Name, m.Pos, "%v", err)
		return nil
	}
	return sig
}

func (x *rewriting) methodBody(m *decl.Method) mop.Body {
	switch {
	case m.Body != nil && m.Source != "":
		x.fail(CodeInvalidMethod, m.Name, m.Pos, "method %s has both a Go body and source", m.Name)
	case m.Body != nil:
		return m.Body
	case x.rw.compiler == nil && m.Source == "":
		x.fail(CodeInvalidMethod, m.Name, m.Pos, "method %s has no body", m.Name)
	case x.rw.compiler == nil:
		x.fail(CodeInvalidMethod, m.Name, m.Pos, "method %s has source but no body compiler is configured", m.Name)
	default:
		// An empty source is still a body: a compiler may hold the parsed
		// statements for it.
		body, err := x.rw.compiler.CompileMethod(x.class, m)
		if err != nil {
			de := x.fail(CodeInvalidMethod, m.Name, m.Pos, "%v", err)
			de.Err = err
			return nil
		}
		return body
	}
	return nil
}

func (x *rewriting) roles(plan *Plan) {
	c := x.class
	if len(c.With) == 0 {
		return
	}
	var roles []string
	seen := make(map[string]bool)
	for _, name := range c.With {
		if seen[name] {
			x.fail(CodeDuplicate, "", c.Pos, "role %s composed twice", name)
			continue
		}
		seen[name] = true
		if name == c.Name {
			x.fail(CodeCycle, "", c.Pos, "role %s cannot compose itself", name)
			continue
		}
		isRole, ok := x.classKind(name)
		switch {
		case !ok:
			de := x.fail(CodeUnknownRole, "", c.Pos, "unknown role %s", name)
			de.Suggestions = ustrings.FindSimilar(name, x.knownClasses(true), nil)
		case !isRole:
			x.fail(CodeUnknownRole, "", c.Pos, "%s is a class, not a role (use `extends`)", name)
		default:
			roles = append(roles, name)
		}
	}
	if len(roles) > 0 {
		plan.Ops = append(plan.Ops, composeOp(roles))
	}
}

func (x *rewriting) requires(plan *Plan) {
	c := x.class
	if len(c.Requires) == 0 {
		return
	}
	if !c.IsRole() {
		x.fail(CodeInvalidHeader, "", c.Pos, "only roles can require methods")
		return
	}
	plan.Ops = append(plan.Ops, requireOp(append([]string(nil), c.Requires...)))
}

func (x *rewriting) modifiers(plan *Plan) {
	var methods map[string]bool
	for _, m := range x.class.Modifiers {
		member := m.Kind + " " + m.Method
		kind, err := mop.ParseModifierKind(m.Kind)
		if err != nil {
			x.fail(CodeInvalidModifier, member, m.Pos, "%v", err)
			continue
		}
		if m.Method == "" {
			x.fail(CodeInvalidModifier, member, m.Pos, "%s modifier without a method name", m.Kind)
			continue
		}
		if !x.class.IsRole() {
			if methods == nil {
				methods = x.availableMethods()
			}
			if !methods[m.Method] {
				de := x.fail(CodeInvalidModifier, member, m.Pos, "modifier for unknown method %s", m.Method)
				de.Suggestions = ustrings.FindSimilar(m.Method, setKeys(methods), nil)
				continue
			}
		}

		body := x.modifierBody(m, member)
		if body != nil {
			plan.Ops = append(plan.Ops, modifierOp(kind, m.Method, body))
		}
	}
}

func (x *rewriting) modifierBody(m *decl.Modifier, member string) mop.Body {
	switch {
	case m.Body != nil && m.Source != "":
		x.fail(CodeInvalidModifier, member, m.Pos, "modifier has both a Go body and source")
	case m.Body != nil:
		return m.Body
	case x.rw.compiler == nil && m.Source == "":
		x.fail(CodeInvalidModifier, member, m.Pos, "modifier has no body")
	case x.rw.compiler == nil:
		x.fail(CodeInvalidModifier, member, m.Pos, "modifier has source but no body compiler is configured")
	default:
		body, err := x.rw.compiler.CompileModifier(x.class, m)
		if err != nil {
			de := x.fail(CodeInvalidModifier, member, m.Pos, "%v", err)
			de.Err = err
			return nil
		}
		return body
	}
	return nil
}

// availableMethods is every method name the finished class will have: its
// own methods and accessors plus whatever its parent and roles bring.
func (x *rewriting) availableMethods() map[string]bool {
	out := make(map[string]bool)
	x.collectMethods(x.class, out, make(map[string]bool))
	return out
}

func (x *rewriting) collectMethods(c *decl.Class, out, visited map[string]bool) {
	if visited[c.Name] {
		return
	}
	visited[c.Name] = true

	for _, m := range c.Methods {
		out[m.Name] = true
	}
	for _, a := range c.Attributes {
		if a.Is != "private" && a.Is != "lexical" {
			out[a.Name] = true
		}
	}
	if c.IsRole() {
		for _, name := range c.Requires {
			out[name] = true
		}
	}
	for _, dep := range c.Dependencies() {
		x.collectFrom(dep, out, visited)
	}
}

func (x *rewriting) collectFrom(name string, out, visited map[string]bool) {
	if d, ok := x.unit[name]; ok {
		x.collectMethods(d, out, visited)
		return
	}
	if visited[name] {
		return
	}
	visited[name] = true
	if c, ok := x.rw.registry.Lookup(name); ok {
		for _, m := range c.MethodNames() {
			out[m] = true
		}
		for _, r := range c.Requires() {
			out[r] = true
		}
	}
}

func kindOf(c *decl.Class) string {
	if c.IsRole() {
		return "role"
	}
	return "class"
}

func validationMessage(err error) string {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func setKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
