package mop

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// BuildMethod is called after construction when a class defines it.
const BuildMethod = "BUILD"

// Instance is an object of a registered class. Slots change only through
// validating setters, so every stored value satisfies its attribute's
// predicate.
type Instance struct {
	id    uuid.UUID
	class *Class

	mu    sync.RWMutex
	slots map[string]any
}

// New constructs an instance from named arguments. Unknown and private
// arguments are rejected; explicit values and defaults are validated;
// triggers fire for explicit values; BUILD runs last.
func (c *Class) New(args map[string]any) (*Instance, error) {
	if c.IsRole() {
		return nil, &CompositionError{Class: c.Name, Reason: "roles cannot be instantiated"}
	}
	if !c.frozen {
		return nil, &CompositionError{Class: c.Name, Reason: "class is not registered"}
	}

	var unknown []string
	for name := range args {
		a, ok := c.attributes[name]
		if !ok || a.Access == Private {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &SignatureError{
			Method: c.Name + "::new",
			Reason: fmt.Sprintf("unknown attribute(s) %v", unknown),
		}
	}

	o := &Instance{id: uuid.New(), class: c, slots: make(map[string]any, len(c.attributes))}

	var explicit []*Attribute
	for _, name := range c.attrOrder {
		a := c.attributes[name]
		if v, ok := args[name]; ok {
			if err := a.Check(c.Name, v); err != nil {
				return nil, err
			}
			o.slots[name] = v
			explicit = append(explicit, a)
			continue
		}
		if a.Required {
			return nil, &SignatureError{
				Method: c.Name + "::new",
				Reason: fmt.Sprintf("missing required attribute %s", name),
			}
		}
	}

	// Defaults and builders run once explicit values are in place so a
	// builder can read them.
	for _, name := range c.attrOrder {
		a := c.attributes[name]
		if _, ok := o.slots[name]; ok {
			continue
		}
		v, ok, err := a.initial(o)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := a.Check(c.Name, v); err != nil {
			return nil, err
		}
		o.slots[name] = v
	}

	for _, a := range explicit {
		if a.Trigger == "" {
			continue
		}
		if _, err := o.invoke(a.Trigger, []any{o.slot(a.Name)}, nil); err != nil {
			return nil, fmt.Errorf("trigger %s for %s: %w", a.Trigger, a.Name, err)
		}
	}

	if _, ok := c.methods[BuildMethod]; ok {
		if _, err := o.invoke(BuildMethod, nil, nil); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// ID returns the instance identity
func (o *Instance) ID() uuid.UUID {
	return o.id
}

// Class returns the instance's class
func (o *Instance) Class() *Class {
	return o.class
}

// ClassName returns the name of the instance's class
func (o *Instance) ClassName() string {
	return o.class.Name
}

// Isa reports whether the instance's class is or inherits from class
func (o *Instance) Isa(class string) bool {
	return o.class.Isa(class)
}

// Does reports whether the instance's class consumes role
func (o *Instance) Does(role string) bool {
	return o.class.Does(role)
}

// Can reports whether the instance responds to method
func (o *Instance) Can(method string) bool {
	_, ok := o.class.methods[method]
	return ok
}

// Get reads a public attribute.
func (o *Instance) Get(name string) (any, error) {
	a, err := o.attribute(name)
	if err != nil {
		return nil, err
	}
	if a.Access == Private {
		return nil, &AccessError{Class: o.ClassName(), Member: name, Reason: "private attribute"}
	}
	return o.slot(name), nil
}

// Set writes a rw attribute through its validating setter. On failure the
// previous value is kept.
func (o *Instance) Set(name string, v any) error {
	a, err := o.attribute(name)
	if err != nil {
		return err
	}
	switch a.Access {
	case Private:
		return &AccessError{Class: o.ClassName(), Member: name, Reason: "private attribute"}
	case ReadOnly:
		return &AccessError{Class: o.ClassName(), Member: name, Reason: ErrReadOnly.Error()}
	}
	return o.store(a, v)
}

// Call invokes a method with positional arguments.
func (o *Instance) Call(method string, args ...any) (any, error) {
	return o.invoke(method, args, nil)
}

// CallNamed invokes a method with positional and named arguments.
func (o *Instance) CallNamed(method string, positional []any, named map[string]any) (any, error) {
	return o.invoke(method, positional, named)
}

// Snapshot returns the current values of the public attributes that are set.
func (o *Instance) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]any, len(o.slots))
	for name, v := range o.slots {
		if a := o.class.attributes[name]; a != nil && a.Access != Private {
			out[name] = v
		}
	}
	return out
}

func (o *Instance) attribute(name string) (*Attribute, error) {
	a, ok := o.class.attributes[name]
	if !ok {
		return nil, &AccessError{Class: o.ClassName(), Member: name, Reason: "no such attribute"}
	}
	return a, nil
}

func (o *Instance) slot(name string) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.slots[name]
}

// store validates and writes a slot, then fires the trigger.
func (o *Instance) store(a *Attribute, v any) error {
	if err := a.Check(o.ClassName(), v); err != nil {
		return err
	}

	o.mu.Lock()
	o.slots[a.Name] = v
	o.mu.Unlock()

	if a.Trigger != "" {
		if _, err := o.invoke(a.Trigger, []any{v}, nil); err != nil {
			return fmt.Errorf("trigger %s for %s: %w", a.Trigger, a.Name, err)
		}
	}
	return nil
}

// invoke dispatches through the method table: bind the signature, run
// before modifiers, the body, then after modifiers.
func (o *Instance) invoke(name string, positional []any, named map[string]any) (any, error) {
	m, ok := o.class.methods[name]
	if !ok {
		return nil, &AccessError{Class: o.ClassName(), Member: name, Reason: "no such method"}
	}

	args, err := m.Signature.Bind(o.ClassName()+"::"+name, positional, named)
	if err != nil {
		return nil, err
	}

	mods := o.class.modifiers[name]
	if err := mods.run(Before, o, m, args); err != nil {
		return nil, err
	}
	result, err := m.Body(&Invocation{Self: o, Method: m, Args: args})
	if err != nil {
		return nil, err
	}
	if err := mods.run(After, o, m, args); err != nil {
		return nil, err
	}
	return result, nil
}

// run calls one specific implementation without modifiers; used for super.
func (o *Instance) run(m *Method, positional []any, named map[string]any) (any, error) {
	args, err := m.Signature.Bind(o.ClassName()+"::"+m.Name, positional, named)
	if err != nil {
		return nil, err
	}
	return m.Body(&Invocation{Self: o, Method: m, Args: args})
}
