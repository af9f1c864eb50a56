package mop

import "fmt"

// ModifierKind selects when a modifier runs relative to its method.
type ModifierKind int

const (
	// Before modifiers run ahead of the method body, newest first
	Before ModifierKind = iota
	// After modifiers run once the body returned, in declaration order
	After
)

func (k ModifierKind) String() string {
	switch k {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("ModifierKind(%d)", int(k))
	}
}

// ParseModifierKind parses "before" or "after".
func ParseModifierKind(s string) (ModifierKind, error) {
	switch s {
	case "before":
		return Before, nil
	case "after":
		return After, nil
	default:
		return 0, fmt.Errorf("unsupported method modifier %q", s)
	}
}

// Modifier wraps a named method with extra behavior. Its body sees the same
// bound arguments as the method and its return value is ignored.
type Modifier struct {
	Kind   ModifierKind
	Method string
	Owner  *Class
	Body   Body
}

// modifierSet holds the modifiers for one method name
type modifierSet struct {
	before []*Modifier
	after  []*Modifier
}

func (s *modifierSet) add(m *Modifier) {
	switch m.Kind {
	case Before:
		s.before = append([]*Modifier{m}, s.before...)
	case After:
		s.after = append(s.after, m)
	}
}

func (s *modifierSet) clone() *modifierSet {
	return &modifierSet{
		before: append([]*Modifier(nil), s.before...),
		after:  append([]*Modifier(nil), s.after...),
	}
}

// run executes the modifiers of one kind. A failing modifier stops the call.
func (s *modifierSet) run(kind ModifierKind, o *Instance, target *Method, args *Args) error {
	if s == nil {
		return nil
	}
	mods := s.before
	if kind == After {
		mods = s.after
	}
	for _, mod := range mods {
		inv := &Invocation{
			Self: o,
			// The modifier runs with its owner's capabilities, not the target's.
			Method: &Method{Name: target.Name, Owner: mod.Owner, Signature: target.Signature},
			Args:   args,
		}
		if _, err := mod.Body(inv); err != nil {
			return err
		}
	}
	return nil
}
