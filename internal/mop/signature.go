package mop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/moops-lang/moops/internal/types"
)

// Param describes one method parameter.
type Param struct {
	Name       string
	Type       types.Predicate // nil accepts anything
	Optional   bool
	Named      bool
	HasDefault bool
	Default    any
}

func (p Param) String() string {
	var b strings.Builder
	if p.Type != nil {
		b.WriteString(p.Type.Name())
		b.WriteByte(' ')
	}
	if p.Named {
		b.WriteByte(':')
	}
	b.WriteString("$" + p.Name)
	switch {
	case p.HasDefault:
		b.WriteString(" = " + types.FormatValue(p.Default))
	case p.Optional && !p.Named:
		b.WriteByte('?')
	}
	return b.String()
}

// Signature is the ordered parameter list of a method. Positional parameters
// come first (required before optional), named parameters last.
type Signature struct {
	Params []Param
}

// NewSignature validates the parameter order and returns a signature.
func NewSignature(params ...Param) (*Signature, error) {
	seen := make(map[string]bool, len(params))
	sawOptional, sawNamed := false, false
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate parameter $%s", p.Name)
		}
		seen[p.Name] = true

		if p.Named {
			sawNamed = true
			continue
		}
		if sawNamed {
			return nil, fmt.Errorf("positional parameter $%s after named parameters", p.Name)
		}
		if p.Optional || p.HasDefault {
			sawOptional = true
		} else if sawOptional {
			return nil, fmt.Errorf("required parameter $%s after optional parameters", p.Name)
		}
	}
	return &Signature{Params: params}, nil
}

// Empty is the signature of a method taking no arguments.
func Empty() *Signature {
	return &Signature{}
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Positional returns the number of positional parameters
func (s *Signature) Positional() int {
	n := 0
	for _, p := range s.Params {
		if !p.Named {
			n++
		}
	}
	return n
}

// Args holds arguments after binding. Absent optional parameters without a
// default are not present.
type Args struct {
	values  map[string]any
	present map[string]bool
	order   []string
}

// Get returns the bound value or nil
func (a *Args) Get(name string) any {
	return a.values[name]
}

// Has reports whether name was bound, either passed or defaulted
func (a *Args) Has(name string) bool {
	return a.present[name]
}

// Names returns bound parameter names in signature order
func (a *Args) Names() []string {
	return a.order
}

// Values returns bound values in signature order.
func (a *Args) Values() []any {
	out := make([]any, len(a.order))
	for i, name := range a.order {
		out[i] = a.values[name]
	}
	return out
}

// Bind matches call arguments to the signature, applies defaults and checks
// every bound value against its parameter's predicate. site prefixes errors.
func (s *Signature) Bind(site string, positional []any, named map[string]any) (*Args, error) {
	args := &Args{values: make(map[string]any), present: make(map[string]bool)}

	if limit := s.Positional(); len(positional) > limit {
		return nil, &SignatureError{
			Method: site,
			Reason: fmt.Sprintf("too many positional arguments (expected at most %d, got %d)", limit, len(positional)),
		}
	}

	if len(named) > 0 {
		var unknown []string
		for key := range named {
			if !s.hasNamed(key) {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, &SignatureError{
				Method: site,
				Reason: "unknown named argument(s): " + strings.Join(unknown, ", "),
			}
		}
	}

	idx := 0
	for _, p := range s.Params {
		var (
			value any
			ok    bool
		)
		if p.Named {
			value, ok = named[p.Name]
		} else if idx < len(positional) {
			value, ok = positional[idx], true
			idx++
		}

		if !ok {
			switch {
			case p.HasDefault:
				value = copyValue(p.Default)
			case p.Optional:
				continue
			default:
				return nil, &SignatureError{
					Method: site,
					Reason: fmt.Sprintf("missing required argument $%s", p.Name),
				}
			}
		}

		if p.Type != nil {
			if err := p.Type.Check(value); err != nil {
				return nil, wrapValidation(fmt.Sprintf("%s: parameter $%s", site, p.Name), err)
			}
		}
		args.values[p.Name] = value
		args.present[p.Name] = true
		args.order = append(args.order, p.Name)
	}

	return args, nil
}

func (s *Signature) hasNamed(name string) bool {
	for _, p := range s.Params {
		if p.Named && p.Name == name {
			return true
		}
	}
	return false
}

// copyValue gives containers fresh backing storage so defaults are never
// shared between calls or instances.
func copyValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = copyValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = copyValue(item)
		}
		return out
	}
	return v
}
