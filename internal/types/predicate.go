// Package types provides named type predicates: the single source of truth
// for what a value must look like, shared by attribute writes and method
// argument binding.
//
// A predicate either accepts a value or returns a *ValidationError carrying
// the predicate's own message. Predicates never coerce.
package types

import (
	"strings"
)

// DefaultMessage is used when a constraint does not supply its own template.
const DefaultMessage = `Value {value} did not pass type constraint "{name}"`

// Predicate is a named, immutable test over runtime values.
type Predicate interface {
	Name() string
	Check(v any) error
}

// ValidationError is the uniform failure produced by every predicate.
type ValidationError struct {
	Predicate string
	Value     any
	Message   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Fail builds the ValidationError for p rejecting v using the given template.
func Fail(name, template string, v any) *ValidationError {
	return &ValidationError{
		Predicate: name,
		Value:     v,
		Message:   Render(template, name, v),
	}
}

// Render expands {name} and {value} in a message template.
func Render(template, name string, v any) string {
	if template == "" {
		template = DefaultMessage
	}
	r := strings.NewReplacer("{name}", name, "{value}", FormatValue(v))
	return r.Replace(template)
}

// Constraint is the standard Predicate implementation: an optional parent,
// a test function and a message template.
type Constraint struct {
	name    string
	parent  Predicate
	test    func(v any) bool
	message string
}

// Option configures a Constraint.
type Option func(*Constraint)

// WithParent makes the constraint a refinement of parent. The parent is
// checked first; any failure is reported with the refinement's message.
func WithParent(parent Predicate) Option {
	return func(c *Constraint) {
		c.parent = parent
	}
}

// WithMessage sets the failure message template.
func WithMessage(template string) Option {
	return func(c *Constraint) {
		c.message = template
	}
}

// NewConstraint creates a named constraint. A nil test accepts everything
// the parent accepts.
func NewConstraint(name string, test func(v any) bool, opts ...Option) *Constraint {
	c := &Constraint{name: name, test: test}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the constraint name
func (c *Constraint) Name() string {
	return c.name
}

// Parent returns the constraint this one refines, or nil
func (c *Constraint) Parent() Predicate {
	return c.parent
}

// Message returns the unexpanded message template
func (c *Constraint) Message() string {
	if c.message == "" {
		return DefaultMessage
	}
	return c.message
}

// Check implements Predicate
func (c *Constraint) Check(v any) error {
	if c.parent != nil {
		if err := c.parent.Check(v); err != nil {
			return Fail(c.name, c.message, v)
		}
	}
	if c.test != nil && !c.test(v) {
		return Fail(c.name, c.message, v)
	}
	return nil
}

// Is reports whether p accepts v.
func Is(p Predicate, v any) bool {
	return p.Check(v) == nil
}

// IsA reports whether p is named name or refines a constraint named name.
func IsA(p Predicate, name string) bool {
	for p != nil {
		if p.Name() == name {
			return true
		}
		c, ok := p.(*Constraint)
		if !ok {
			return false
		}
		p = c.parent
	}
	return false
}

// Renamed wraps a predicate under an alias. Checks are delegated untouched
// so failures still carry the original predicate's message.
type Renamed struct {
	Alias string
	Inner Predicate
}

// Name returns the alias
func (r *Renamed) Name() string {
	return r.Alias
}

// Check delegates to the aliased predicate
func (r *Renamed) Check(v any) error {
	return r.Inner.Check(v)
}
