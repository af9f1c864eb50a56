package rewriter

import (
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/mop"
)

// OpKind names one registration step
type OpKind string

const (
	OpExtend    OpKind = "extend"
	OpAttribute OpKind = "attribute"
	OpAccessor  OpKind = "accessor"
	OpMethod    OpKind = "method"
	OpCompose   OpKind = "compose"
	OpRequire   OpKind = "require"
	OpModifier  OpKind = "modifier"
)

// Lookup finds an already built class by name. Registry.Lookup satisfies it.
type Lookup func(name string) (*mop.Class, bool)

// Op is one registration call against the object system. Ops carry their
// inputs as data; nothing runs until a plan is built.
type Op struct {
	Kind   OpKind
	Target string
	Detail string

	apply func(c *mop.Class, lookup Lookup) error
}

func (op Op) String() string {
	s := string(op.Kind) + " " + op.Target
	if op.Detail != "" {
		s += " " + op.Detail
	}
	return s
}

// Plan is the rewritten form of one class declaration: the ordered calls
// that produce the class in the object system.
type Plan struct {
	Class string
	Kind  mop.Kind
	Deps  []string
	Ops   []Op
}

// Steps renders the plan one op per line
func (p *Plan) Steps() []string {
	out := make([]string, 0, len(p.Ops)+1)
	out = append(out, fmt.Sprintf("define %s %s", p.Kind, p.Class))
	for _, op := range p.Ops {
		out = append(out, op.String())
	}
	return out
}

func (p *Plan) String() string {
	return strings.Join(p.Steps(), "\n")
}

// Build runs the plan against a fresh class. The class is complete but not
// registered; lookup resolves parents and roles.
func (p *Plan) Build(lookup Lookup) (*mop.Class, error) {
	c := mop.NewClass(p.Class, p.Kind)
	for _, op := range p.Ops {
		if err := op.apply(c, lookup); err != nil {
			return nil, &DeclarationError{
				Code:    CodeComposition,
				Class:   p.Class,
				Message: fmt.Sprintf("%s: %v", op, unprefixed(p.Class, err)),
				Err:     err,
			}
		}
	}
	return c, nil
}

// Apply builds the class and registers it once. On failure the registry is
// left as it was.
func (p *Plan) Apply(reg *mop.Registry) (*mop.Class, error) {
	c, err := p.Build(reg.Lookup)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(c); err != nil {
		return nil, &DeclarationError{
			Code:    CodeComposition,
			Class:   p.Class,
			Message: unprefixed(p.Class, err),
			Err:     err,
		}
	}
	return c, nil
}

// ApplyPlans builds every plan in order and registers the results as one
// batch. Later plans see the classes built by earlier ones.
func ApplyPlans(reg *mop.Registry, plans []*Plan) ([]*mop.Class, error) {
	staged := make(map[string]*mop.Class, len(plans))
	lookup := func(name string) (*mop.Class, bool) {
		if c, ok := staged[name]; ok {
			return c, true
		}
		return reg.Lookup(name)
	}

	classes := make([]*mop.Class, 0, len(plans))
	for _, p := range plans {
		c, err := p.Build(lookup)
		if err != nil {
			return nil, err
		}
		staged[p.Class] = c
		classes = append(classes, c)
	}

	if err := reg.RegisterAll(classes...); err != nil {
		de := &DeclarationError{Code: CodeComposition, Message: err.Error(), Err: err}
		if ce, ok := err.(*mop.CompositionError); ok {
			de.Class = ce.Class
			de.Message = ce.Reason
		}
		return nil, de
	}
	return classes, nil
}

// unprefixed drops the "class X: " prefix the object system puts on its own
// errors so it is not repeated.
func unprefixed(class string, err error) string {
	if ce, ok := err.(*mop.CompositionError); ok && ce.Class == class {
		return ce.Reason
	}
	return err.Error()
}

func extendOp(parent string) Op {
	return Op{
		Kind:   OpExtend,
		Target: parent,
		apply: func(c *mop.Class, lookup Lookup) error {
			p, ok := lookup(parent)
			if !ok {
				return fmt.Errorf("parent class %s is not available", parent)
			}
			return c.Extends(p)
		},
	}
}

func attributeOp(tmpl mop.Attribute) Op {
	detail := fmt.Sprintf("(%s, %s)", tmpl.Access, tmpl.TypeName())
	return Op{
		Kind:   OpAttribute,
		Target: tmpl.Name,
		Detail: detail,
		apply: func(c *mop.Class, _ Lookup) error {
			a := tmpl
			return c.AddAttribute(&a)
		},
	}
}

func accessorOp(name string) Op {
	return Op{
		Kind:   OpAccessor,
		Target: name,
		apply: func(c *mop.Class, _ Lookup) error {
			return c.AddAccessors(name)
		},
	}
}

func methodOp(name string, sig *mop.Signature, body mop.Body) Op {
	return Op{
		Kind:   OpMethod,
		Target: name,
		Detail: sig.String(),
		apply: func(c *mop.Class, _ Lookup) error {
			return c.AddMethod(&mop.Method{Name: name, Signature: sig, Body: body})
		},
	}
}

func composeOp(roles []string) Op {
	return Op{
		Kind:   OpCompose,
		Target: strings.Join(roles, ", "),
		apply: func(c *mop.Class, lookup Lookup) error {
			resolved := make([]*mop.Class, len(roles))
			for i, name := range roles {
				r, ok := lookup(name)
				if !ok {
					return fmt.Errorf("role %s is not available", name)
				}
				resolved[i] = r
			}
			return c.Compose(resolved...)
		},
	}
}

func requireOp(names []string) Op {
	return Op{
		Kind:   OpRequire,
		Target: strings.Join(names, ", "),
		apply: func(c *mop.Class, _ Lookup) error {
			return c.Require(names...)
		},
	}
}

func modifierOp(kind mop.ModifierKind, method string, body mop.Body) Op {
	return Op{
		Kind:   OpModifier,
		Target: method,
		Detail: "(" + kind.String() + ")",
		apply: func(c *mop.Class, _ Lookup) error {
			return c.AddModifier(kind, method, body)
		},
	}
}
