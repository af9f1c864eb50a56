package mop

import (
	"fmt"
)

// Body is the implementation of a method. It runs after the signature has
// bound and validated the arguments.
type Body func(inv *Invocation) (any, error)

// Method describes one entry of a class's method table.
type Method struct {
	Name      string
	Owner     *Class
	Signature *Signature
	Body      Body
	// Super is the implementation this method overrides, if any.
	Super    *Method
	Accessor bool

	origin *Method
}

// root returns the declaration a composed copy was made from
func (m *Method) root() *Method {
	if m.origin != nil {
		return m.origin
	}
	return m
}

// FullName returns Owner::name
func (m *Method) FullName() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.Name + "::" + m.Name
}

// Invocation is the context handed to a method body and its modifiers.
type Invocation struct {
	Self   *Instance
	Method *Method
	Args   *Args
}

// Arg returns a bound argument by name
func (inv *Invocation) Arg(name string) any {
	return inv.Args.Get(name)
}

// Has reports whether an argument was bound
func (inv *Invocation) Has(name string) bool {
	return inv.Args.Has(name)
}

// Get reads an attribute of Self. Private attributes are readable only when
// the running method belongs to the attribute's owner.
func (inv *Invocation) Get(attr string) (any, error) {
	a, err := inv.Self.attribute(attr)
	if err != nil {
		return nil, err
	}
	if err := inv.canReach(a); err != nil {
		return nil, err
	}
	return inv.Self.slot(attr), nil
}

// Set writes an attribute of Self through its validating setter.
func (inv *Invocation) Set(attr string, v any) error {
	a, err := inv.Self.attribute(attr)
	if err != nil {
		return err
	}
	if err := inv.canReach(a); err != nil {
		return err
	}
	if a.Access == ReadOnly {
		return &AccessError{Class: inv.Self.ClassName(), Member: attr, Reason: ErrReadOnly.Error()}
	}
	return inv.Self.store(a, v)
}

func (inv *Invocation) canReach(a *Attribute) error {
	if a.Access != Private {
		return nil
	}
	if inv.Method != nil && inv.Method.Owner == a.Owner {
		return nil
	}
	return &AccessError{
		Class:  inv.Self.ClassName(),
		Member: a.Name,
		Reason: fmt.Sprintf("private attribute is only reachable from methods of %s", a.Owner.Name),
	}
}

// Call invokes another method on Self.
func (inv *Invocation) Call(name string, args ...any) (any, error) {
	return inv.Self.invoke(name, args, nil)
}

// CallNamed invokes another method on Self with named arguments.
func (inv *Invocation) CallNamed(name string, positional []any, named map[string]any) (any, error) {
	return inv.Self.invoke(name, positional, named)
}

// Super calls the implementation the running method overrides.
func (inv *Invocation) Super(positional []any, named map[string]any) (any, error) {
	if inv.Method == nil || inv.Method.Super == nil {
		name := "<none>"
		if inv.Method != nil {
			name = inv.Method.FullName()
		}
		return nil, &CompositionError{Class: inv.Self.ClassName(), Reason: fmt.Sprintf("%s has no overridden method to call", name)}
	}
	return inv.Self.run(inv.Method.Super, positional, named)
}
