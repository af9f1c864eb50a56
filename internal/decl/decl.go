// Package decl holds declaration descriptions: what a class or role looks
// like before it is rewritten into registration calls. The compiler front
// end produces them from source and Go callers can build them directly.
package decl

import (
	"github.com/moops-lang/moops/internal/mop"
)

// Kind is class or role.
type Kind string

const (
	KindClass Kind = "class"
	KindRole  Kind = "role"
)

// Position locates a declaration in its source file. The zero value means
// the declaration did not come from source.
type Position struct {
	File   string
	Line   int
	Column int
}

// Class describes one class or role.
type Class struct {
	Name       string
	Kind       Kind
	Extends    string
	With       []string
	Attributes []*Attribute
	Methods    []*Method
	Requires   []string
	Modifiers  []*Modifier
	Pos        Position
}

// Attribute describes a `has` declaration.
type Attribute struct {
	Name     string
	Is       string // ro, rw or private; empty means ro
	Isa      string // type expression; empty accepts anything
	Default  *Value
	Builder  string
	Required bool
	Trigger  string
	Pos      Position
}

// Value wraps a constant default so an explicit nil can be told apart
// from no default at all.
type Value struct {
	V any
}

// Const returns a default holding v
func Const(v any) *Value {
	return &Value{V: v}
}

// Param describes one entry of a method's parameter list.
type Param struct {
	Name     string // without sigil
	Isa      string
	Optional bool
	// Required marks a named parameter mandatory. Positional parameters are
	// required unless Optional or defaulted.
	Required bool
	Named    bool
	Default  *Value
	Pos      Position
}

// Method describes a method declaration. Exactly one of Body and Source is
// set: Body for Go implementations, Source for body-language text that a
// BodyCompiler turns into a mop.Body.
type Method struct {
	Name   string
	Params []*Param
	Body   mop.Body
	Source string
	Pos    Position
}

// Modifier describes a before or after block.
type Modifier struct {
	Kind   string // before or after
	Method string
	Body   mop.Body
	Source string
	Pos    Position
}

// Use is one `use Library (names)` directive.
type Use struct {
	Library string
	Imports []Import
	Pos     Position
}

// Import is one imported name with an optional alias.
type Import struct {
	Name  string
	Alias string
}

// Unit is a set of declarations processed together: the use directives
// build the type scope shared by every class in it.
type Unit struct {
	File    string
	Uses    []*Use
	Classes []*Class
}

// Find returns the class named name
func (u *Unit) Find(name string) *Class {
	for _, c := range u.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsRole reports whether the declaration is a role
func (c *Class) IsRole() bool {
	return c.Kind == KindRole
}

// Method returns the method declared under name, or nil
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Attribute returns the attribute declared under name, or nil
func (c *Class) Attribute(name string) *Attribute {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Dependencies returns the parent and roles c needs registered first.
func (c *Class) Dependencies() []string {
	var deps []string
	if c.Extends != "" {
		deps = append(deps, c.Extends)
	}
	return append(deps, c.With...)
}
