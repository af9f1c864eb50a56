package mop

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes classes from roles.
type Kind int

const (
	// KindClass is an instantiable class
	KindClass Kind = iota
	// KindRole is a composable role
	KindRole
)

func (k Kind) String() string {
	if k == KindRole {
		return "role"
	}
	return "class"
}

// Class is a class or role under construction or registered. Tables are
// flattened: a class holds every attribute, method and modifier it
// inherited or composed, so dispatch never walks the hierarchy.
type Class struct {
	Name string
	Kind Kind

	parent      *Class
	roles       []*Class
	does        map[string]bool
	attributes  map[string]*Attribute
	attrOrder   []string
	methods     map[string]*Method
	methodOrder []string
	modifiers   map[string]*modifierSet
	requires    []string
	frozen      bool
}

// NewClass creates an empty class or role
func NewClass(name string, kind Kind) *Class {
	return &Class{
		Name:       name,
		Kind:       kind,
		does:       make(map[string]bool),
		attributes: make(map[string]*Attribute),
		methods:    make(map[string]*Method),
		modifiers:  make(map[string]*modifierSet),
	}
}

// IsRole reports whether c is a role
func (c *Class) IsRole() bool {
	return c.Kind == KindRole
}

// Parent returns the superclass or nil
func (c *Class) Parent() *Class {
	return c.parent
}

// Roles returns the roles composed directly into c
func (c *Class) Roles() []*Class {
	return c.roles
}

// Frozen reports whether the class has been registered
func (c *Class) Frozen() bool {
	return c.frozen
}

// Isa reports whether c is name or inherits from it
func (c *Class) Isa(name string) bool {
	for k := c; k != nil; k = k.parent {
		if k.Name == name {
			return true
		}
	}
	return false
}

// Does reports whether c consumes role name, directly or through a parent
// or another role
func (c *Class) Does(name string) bool {
	return c.does[name]
}

// Lineage returns c and its ancestors, nearest first
func (c *Class) Lineage() []string {
	var out []string
	for k := c; k != nil; k = k.parent {
		out = append(out, k.Name)
	}
	return out
}

// AllRoles returns every role c does, sorted
func (c *Class) AllRoles() []string {
	out := make([]string, 0, len(c.does))
	for name := range c.does {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Attribute returns an attribute by name
func (c *Class) Attribute(name string) (*Attribute, bool) {
	a, ok := c.attributes[name]
	return a, ok
}

// Attributes returns all attributes in declaration order, inherited first
func (c *Class) Attributes() []*Attribute {
	out := make([]*Attribute, 0, len(c.attrOrder))
	for _, name := range c.attrOrder {
		out = append(out, c.attributes[name])
	}
	return out
}

// Method returns a method by name
func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Methods returns all methods in the order they entered the table
func (c *Class) Methods() []*Method {
	out := make([]*Method, 0, len(c.methodOrder))
	for _, name := range c.methodOrder {
		out = append(out, c.methods[name])
	}
	return out
}

// MethodNames returns every method name, sorted
func (c *Class) MethodNames() []string {
	out := append([]string(nil), c.methodOrder...)
	sort.Strings(out)
	return out
}

// Modifiers returns the modifiers of a method, before ones first in run order
func (c *Class) Modifiers(method string) []*Modifier {
	set, ok := c.modifiers[method]
	if !ok {
		return nil
	}
	return append(append([]*Modifier(nil), set.before...), set.after...)
}

// Requires returns the method names c still requires from its consumers
func (c *Class) Requires() []string {
	return append([]string(nil), c.requires...)
}

func (c *Class) mutable() error {
	if c.frozen {
		return &CompositionError{Class: c.Name, Reason: "class is already registered and cannot change"}
	}
	return nil
}

// Extends makes c a subclass of parent. It must be the first change to c.
func (c *Class) Extends(parent *Class) error {
	if err := c.mutable(); err != nil {
		return err
	}
	switch {
	case c.IsRole():
		return &CompositionError{Class: c.Name, Reason: "a role cannot extend a class"}
	case parent.IsRole():
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("cannot extend role %s (use `with` to compose it)", parent.Name)}
	case parent.Isa(c.Name):
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("inheritance cycle through %s", parent.Name)}
	case c.parent != nil:
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("already extends %s", c.parent.Name)}
	case len(c.attrOrder) > 0 || len(c.methodOrder) > 0:
		return &CompositionError{Class: c.Name, Reason: "extends must come before attributes and methods"}
	}

	c.parent = parent
	for _, name := range parent.attrOrder {
		c.attributes[name] = parent.attributes[name]
		c.attrOrder = append(c.attrOrder, name)
	}
	for _, name := range parent.methodOrder {
		c.methods[name] = parent.methods[name]
		c.methodOrder = append(c.methodOrder, name)
	}
	for name, set := range parent.modifiers {
		c.modifiers[name] = set.clone()
	}
	for role := range parent.does {
		c.does[role] = true
	}
	return nil
}

// AddAttribute declares an attribute owned by c. Redeclaring an inherited
// attribute replaces it.
func (c *Class) AddAttribute(a *Attribute) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if existing, ok := c.attributes[a.Name]; ok && existing.Owner == c {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("attribute %s declared twice", a.Name)}
	}
	if a.Required && (a.HasDefault || a.Builder != "") {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("attribute %s cannot be required and have a default", a.Name)}
	}
	if a.Access == Private && a.Required {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("private attribute %s cannot be required: the constructor does not accept it", a.Name)}
	}
	if a.HasDefault {
		if _, isFn := a.Default.(func() any); !isFn {
			if err := a.Check(c.Name, a.Default); err != nil {
				return fmt.Errorf("default for attribute %s: %w", a.Name, err)
			}
		}
	}

	a.Owner = c
	c.putAttribute(a)
	return nil
}

func (c *Class) putAttribute(a *Attribute) {
	if _, exists := c.attributes[a.Name]; !exists {
		c.attrOrder = append(c.attrOrder, a.Name)
	}
	c.attributes[a.Name] = a
}

// AddAccessors installs the accessor method of attribute name. Private
// attributes have none.
func (c *Class) AddAccessors(name string) error {
	if err := c.mutable(); err != nil {
		return err
	}
	a, ok := c.attributes[name]
	if !ok {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("no attribute %s to generate accessors for", name)}
	}
	if a.Access == Private {
		return nil
	}
	if existing, ok := c.methods[name]; ok && existing.Owner == c && !existing.Accessor {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("accessor %s clashes with a method of the same name", name)}
	}

	m := &Method{
		Name:      name,
		Owner:     c,
		Signature: &Signature{Params: []Param{{Name: "value", Optional: true}}},
		Accessor:  true,
		Body:      accessorBody(name),
	}
	c.putMethod(m)
	return nil
}

func accessorBody(name string) Body {
	return func(inv *Invocation) (any, error) {
		if inv.Has("value") {
			if err := inv.Self.Set(name, inv.Arg("value")); err != nil {
				return nil, err
			}
		}
		return inv.Self.Get(name)
	}
}

// AddMethod installs a method owned by c. Overriding an inherited or
// composed method keeps it reachable through Super.
func (c *Class) AddMethod(m *Method) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if m.Signature == nil {
		m.Signature = Empty()
	}
	if m.Body == nil {
		return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("method %s has no body", m.Name)}
	}
	if existing, ok := c.methods[m.Name]; ok {
		if existing.Owner == c {
			if existing.Accessor {
				return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("method %s clashes with the accessor of attribute %s", m.Name, m.Name)}
			}
			return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("method %s defined twice", m.Name)}
		}
		m.Super = existing
	}
	m.Owner = c
	c.putMethod(m)
	return nil
}

func (c *Class) putMethod(m *Method) {
	if _, exists := c.methods[m.Name]; !exists {
		c.methodOrder = append(c.methodOrder, m.Name)
	}
	c.methods[m.Name] = m
}

// AddModifier attaches a before or after modifier to method name. For
// classes the method must exist by the time the class is registered.
func (c *Class) AddModifier(kind ModifierKind, method string, body Body) error {
	if err := c.mutable(); err != nil {
		return err
	}
	set, ok := c.modifiers[method]
	if !ok {
		set = &modifierSet{}
		c.modifiers[method] = set
	}
	set.add(&Modifier{Kind: kind, Method: method, Owner: c, Body: body})
	return nil
}

// Require records methods a role needs from whatever consumes it.
func (c *Class) Require(names ...string) error {
	if err := c.mutable(); err != nil {
		return err
	}
	if !c.IsRole() {
		return &CompositionError{Class: c.Name, Reason: "only roles can require methods"}
	}
	for _, name := range names {
		if !contains(c.requires, name) {
			c.requires = append(c.requires, name)
		}
	}
	return nil
}

// Compose consumes roles into c. Methods and attributes c declares itself
// win; the same name supplied by two of the roles is a conflict.
func (c *Class) Compose(roles ...*Class) error {
	if err := c.mutable(); err != nil {
		return err
	}

	type supply struct {
		role   string
		method *Method
		attr   *Attribute
	}
	methods := make(map[string]supply)
	attrs := make(map[string]supply)
	var methodNames, attrNames []string
	type conflict struct{ name, text string }
	var conflicts []conflict

	for _, r := range roles {
		if !r.IsRole() {
			return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("%s is a class, not a role (use `extends`)", r.Name)}
		}
		if r == c || r.Does(c.Name) {
			return &CompositionError{Class: c.Name, Reason: fmt.Sprintf("role composition cycle through %s", r.Name)}
		}

		for _, name := range r.methodOrder {
			m := r.methods[name]
			if prev, ok := methods[name]; ok {
				if prev.method.root() != m.root() {
					conflicts = append(conflicts, conflict{name, fmt.Sprintf("method %s (from %s and %s)", name, prev.role, r.Name)})
				}
				continue
			}
			methods[name] = supply{role: r.Name, method: m}
			methodNames = append(methodNames, name)
		}
		for _, name := range r.attrOrder {
			a := r.attributes[name]
			if prev, ok := attrs[name]; ok {
				if prev.attr != a {
					conflicts = append(conflicts, conflict{name, fmt.Sprintf("attribute %s (from %s and %s)", name, prev.role, r.Name)})
				}
				continue
			}
			attrs[name] = supply{role: r.Name, attr: a}
			attrNames = append(attrNames, name)
		}
	}

	var unresolved []string
	for _, cf := range conflicts {
		if m, ok := c.methods[cf.name]; ok && m.Owner == c {
			continue
		}
		if a, ok := c.attributes[cf.name]; ok && a.Owner == c {
			continue
		}
		unresolved = append(unresolved, cf.text)
	}
	if len(unresolved) > 0 {
		return &CompositionError{Class: c.Name, Reason: "role conflict: " + strings.Join(unresolved, "; ")}
	}

	for _, name := range attrNames {
		if existing, ok := c.attributes[name]; ok && existing.Owner == c {
			continue
		}
		c.putAttribute(attrs[name].attr)
	}
	for _, name := range methodNames {
		existing, ok := c.methods[name]
		if ok && existing.Owner == c {
			continue
		}
		composed := *methods[name].method
		composed.origin = methods[name].method.root()
		composed.Super = existing
		c.putMethod(&composed)
	}

	for _, r := range roles {
		for _, name := range sortedKeys(r.modifiers) {
			set, ok := c.modifiers[name]
			if !ok {
				set = &modifierSet{}
				c.modifiers[name] = set
			}
			before := r.modifiers[name].before
			for i := len(before) - 1; i >= 0; i-- {
				set.add(before[i])
			}
			for _, mod := range r.modifiers[name].after {
				set.add(mod)
			}
		}
		for _, name := range r.requires {
			if !contains(c.requires, name) {
				c.requires = append(c.requires, name)
			}
		}
		c.does[r.Name] = true
		for name := range r.does {
			c.does[name] = true
		}
		c.roles = append(c.roles, r)
	}
	return nil
}

// finalize checks everything that can only be checked on the complete
// tables and freezes the class.
func (c *Class) finalize() error {
	var problems []string

	if !c.IsRole() {
		var missing []string
		for _, name := range c.requires {
			if _, ok := c.methods[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			problems = append(problems, "missing required method(s): "+strings.Join(missing, ", "))
		}
		c.requires = nil

		for _, name := range sortedKeys(c.modifiers) {
			if _, ok := c.methods[name]; !ok {
				problems = append(problems, fmt.Sprintf("modifier for unknown method %s", name))
			}
		}
	} else {
		var pending []string
		for _, name := range c.requires {
			if _, ok := c.methods[name]; !ok {
				pending = append(pending, name)
			}
		}
		c.requires = pending
	}

	for _, name := range c.attrOrder {
		a := c.attributes[name]
		if a.Trigger != "" && !c.IsRole() {
			if _, ok := c.methods[a.Trigger]; !ok {
				problems = append(problems, fmt.Sprintf("trigger %s of attribute %s is not a method", a.Trigger, name))
			}
		}
		if a.Builder != "" && !c.IsRole() {
			if _, ok := c.methods[a.Builder]; !ok {
				problems = append(problems, fmt.Sprintf("builder %s of attribute %s is not a method", a.Builder, name))
			}
		}
	}

	if len(problems) > 0 {
		return &CompositionError{Class: c.Name, Reason: strings.Join(problems, "; ")}
	}
	c.frozen = true
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
