package types

import (
	"fmt"
	"regexp"

	"github.com/moops-lang/moops/internal/types/constraints"
)

// ValidationLibrary is the name under which the constraints package is
// importable.
const ValidationLibrary = "Constraints::Validation"

// Bridged adapts a foreign constraints.Validator into a Predicate. The
// validator's verdict is used as is: no value is converted before or after
// the call.
type Bridged struct {
	name      string
	validator constraints.Validator
	message   string
}

// Bridge wraps a foreign validator under name. An empty template reports the
// foreign error text after the standard message.
func Bridge(name string, v constraints.Validator, template string) *Bridged {
	return &Bridged{name: name, validator: v, message: template}
}

// Name implements Predicate
func (b *Bridged) Name() string {
	return b.name
}

// Check implements Predicate
func (b *Bridged) Check(v any) error {
	err := b.validator.Validate(v)
	if err == nil {
		return nil
	}
	if b.message != "" {
		return Fail(b.name, b.message, v)
	}
	return &ValidationError{
		Predicate: b.name,
		Value:     v,
		Message:   Render(DefaultMessage, b.name, v) + ": " + err.Error(),
	}
}

// FromFunc adapts a bare boolean test into a Predicate.
func FromFunc(name string, test func(any) bool, template string) Predicate {
	return NewConstraint(name, test, WithMessage(template))
}

// Validation builds the Constraints::Validation library on top of the
// constraints package.
func Validation() *Library {
	lib := NewLibrary(ValidationLibrary)
	lib.Add(
		Bridge("Email", &constraints.EmailValidator{}, ""),
		Bridge("URL", &constraints.URLValidator{}, ""),
		Bridge("Phone", &constraints.PhoneValidator{}, ""),
	)

	lib.AddGenerator("Min", boundGenerator("Min", func(limit any, kind constraints.Kind) constraints.Validator {
		return &constraints.MinValidator{Min: limit, Kind: kind}
	}))
	lib.AddGenerator("Max", boundGenerator("Max", func(limit any, kind constraints.Kind) constraints.Validator {
		return &constraints.MaxValidator{Max: limit, Kind: kind}
	}))
	lib.AddGenerator("MinChars", lengthGenerator("MinChars", func(n int) constraints.Validator {
		return &constraints.MinValidator{Min: n, Kind: constraints.KindString}
	}))
	lib.AddGenerator("MaxChars", lengthGenerator("MaxChars", func(n int) constraints.Validator {
		return &constraints.MaxValidator{Max: n, Kind: constraints.KindString}
	}))
	lib.AddGenerator("MinItems", lengthGenerator("MinItems", func(n int) constraints.Validator {
		return &constraints.MinLengthValidator{MinLength: n}
	}))
	lib.AddGenerator("MaxItems", lengthGenerator("MaxItems", func(n int) constraints.Validator {
		return &constraints.MaxLengthValidator{MaxLength: n}
	}))
	lib.AddGenerator("Pattern", patternGenerator)
	return lib
}

func literalArg(name string, args []*Expr) (any, error) {
	if len(args) != 1 || args[0].Kind != ExprLiteral {
		return nil, fmt.Errorf("%s expects exactly one literal parameter", name)
	}
	return args[0].Value, nil
}

// boundGenerator picks integer or float comparison from the literal given.
func boundGenerator(name string, build func(any, constraints.Kind) constraints.Validator) Generator {
	return func(_ Resolver, args []*Expr) (Predicate, error) {
		limit, err := literalArg(name, args)
		if err != nil {
			return nil, err
		}
		var kind constraints.Kind
		switch limit.(type) {
		case int:
			kind = constraints.KindInt
		case float64:
			kind = constraints.KindFloat
		default:
			return nil, fmt.Errorf("%s expects a numeric limit", name)
		}
		return Bridge(fmt.Sprintf("%s[%v]", name, limit), build(limit, kind), ""), nil
	}
}

func lengthGenerator(name string, build func(int) constraints.Validator) Generator {
	return func(_ Resolver, args []*Expr) (Predicate, error) {
		limit, err := literalArg(name, args)
		if err != nil {
			return nil, err
		}
		n, ok := limit.(int)
		if !ok || n < 0 {
			return nil, fmt.Errorf("%s expects a non-negative integer", name)
		}
		return Bridge(fmt.Sprintf("%s[%d]", name, n), build(n), ""), nil
	}
}

func patternGenerator(_ Resolver, args []*Expr) (Predicate, error) {
	raw, err := literalArg("Pattern", args)
	if err != nil {
		return nil, err
	}
	src, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("Pattern expects a string parameter")
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("Pattern: %w", err)
	}
	return Bridge(fmt.Sprintf("Pattern[%q]", src), &constraints.PatternValidator{Pattern: re}, ""), nil
}
