package types

import (
	"fmt"
	"reflect"
	"strings"
)

// StandardLibrary is the name of the core library.
const StandardLibrary = "Types::Standard"

var (
	// Any accepts every value
	Any = NewConstraint("Any", nil)
	// Item accepts every single value
	Item = NewConstraint("Item", nil, WithParent(Any))
	// Defined rejects undef
	Defined = NewConstraint("Defined", func(v any) bool { return v != nil }, WithParent(Item))
	// Undef accepts only undef
	Undef = NewConstraint("Undef", func(v any) bool { return v == nil }, WithParent(Item))
	// Bool accepts Go booleans and the integers 0 and 1
	Bool = NewConstraint("Bool", func(v any) bool {
		if _, ok := v.(bool); ok {
			return true
		}
		n, ok := AsInt64(v)
		return ok && (n == 0 || n == 1)
	}, WithParent(Item))
	// Str accepts strings only
	Str = NewConstraint("Str", func(v any) bool {
		_, ok := v.(string)
		return ok
	}, WithParent(Defined))
	// Num accepts integers and finite floats
	Num = NewConstraint("Num", IsNum, WithParent(Defined))
	// Int accepts Go integer kinds
	Int = NewConstraint("Int", IsInt, WithParent(Num))
	// ArrayRefAny accepts any slice or array
	ArrayRefAny = NewConstraint("ArrayRef", IsArray, WithParent(Defined))
	// HashRefAny accepts any string-keyed map
	HashRefAny = NewConstraint("HashRef", IsHash, WithParent(Defined))
	// CodeRef accepts functions and Callable values
	CodeRef = NewConstraint("CodeRef", isCode, WithParent(Defined))
	// Object accepts instances of any class
	Object = NewConstraint("Object", func(v any) bool {
		_, ok := v.(Blessed)
		return ok
	}, WithParent(Defined))
)

func isCode(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Callable); ok {
		return true
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// Standard builds the Types::Standard library.
func Standard() *Library {
	lib := NewLibrary(StandardLibrary)
	lib.Add(Any, Item, Defined, Undef, Bool, Str, Num, Int, ArrayRefAny, HashRefAny, CodeRef, Object)

	lib.AddGenerator("Maybe", unary("Maybe", MaybeOf))
	lib.AddGenerator("ArrayRef", unary("ArrayRef", ArrayOf))
	lib.AddGenerator("HashRef", unary("HashRef", HashOf))
	lib.AddGenerator("InstanceOf", nameArgs("InstanceOf", InstanceOf))
	lib.AddGenerator("ConsumerOf", nameArgs("ConsumerOf", ConsumerOf))
	lib.AddGenerator("Enum", enumGenerator)
	return lib
}

func unary(name string, build func(Predicate) Predicate) Generator {
	return func(r Resolver, args []*Expr) (Predicate, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects exactly one type parameter, got %d", name, len(args))
		}
		inner, err := r.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		return build(inner), nil
	}
}

// nameArgs builds generators whose parameters are class or role names.
// Several names produce a predicate requiring all of them.
func nameArgs(name string, build func(string) Predicate) Generator {
	return func(_ Resolver, args []*Expr) (Predicate, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s expects at least one name", name)
		}
		preds := make([]Predicate, 0, len(args))
		for _, arg := range args {
			var target string
			switch {
			case arg.Kind == ExprName && len(arg.Args) == 0:
				target = arg.Name
			case arg.Kind == ExprLiteral:
				s, ok := arg.Value.(string)
				if !ok {
					return nil, fmt.Errorf("%s parameter must be a name, got %s", name, arg)
				}
				target = s
			default:
				return nil, fmt.Errorf("%s parameter must be a name, got %s", name, arg)
			}
			preds = append(preds, build(target))
		}
		if len(preds) == 1 {
			return preds[0], nil
		}
		return Intersection(preds...), nil
	}
}

func enumGenerator(_ Resolver, args []*Expr) (Predicate, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("Enum expects at least one value")
	}
	values := make([]string, len(args))
	for i, arg := range args {
		switch {
		case arg.Kind == ExprLiteral:
			values[i] = fmt.Sprintf("%v", arg.Value)
		case arg.Kind == ExprName && len(arg.Args) == 0:
			values[i] = arg.Name
		default:
			return nil, fmt.Errorf("Enum values must be literals, got %s", arg)
		}
	}
	return EnumOf(values...), nil
}

// MaybeOf accepts undef or whatever inner accepts.
func MaybeOf(inner Predicate) Predicate {
	return NewConstraint("Maybe["+inner.Name()+"]", func(v any) bool {
		return v == nil || Is(inner, v)
	}, WithParent(Item))
}

// ArrayOf accepts arrays whose every element satisfies inner.
func ArrayOf(inner Predicate) Predicate {
	return NewConstraint("ArrayRef["+inner.Name()+"]", func(v any) bool {
		for _, item := range Elements(v) {
			if !Is(inner, item) {
				return false
			}
		}
		return true
	}, WithParent(ArrayRefAny))
}

// HashOf accepts hashes whose every value satisfies inner.
func HashOf(inner Predicate) Predicate {
	return NewConstraint("HashRef["+inner.Name()+"]", func(v any) bool {
		for _, item := range Entries(v) {
			if !Is(inner, item) {
				return false
			}
		}
		return true
	}, WithParent(HashRefAny))
}

// InstanceOf accepts objects of class or of a subclass.
func InstanceOf(class string) Predicate {
	return NewConstraint("InstanceOf["+class+"]", func(v any) bool {
		obj, ok := v.(Blessed)
		return ok && obj.Isa(class)
	}, WithParent(Object))
}

// ConsumerOf accepts objects whose class does role.
func ConsumerOf(role string) Predicate {
	return NewConstraint("ConsumerOf["+role+"]", func(v any) bool {
		obj, ok := v.(Blessed)
		return ok && obj.Does(role)
	}, WithParent(Object))
}

// EnumOf accepts exactly the listed strings.
func EnumOf(values ...string) Predicate {
	allowed := make(map[string]bool, len(values))
	quoted := make([]string, len(values))
	for i, v := range values {
		allowed[v] = true
		quoted[i] = `"` + v + `"`
	}
	return NewConstraint("Enum["+strings.Join(quoted, ",")+"]", func(v any) bool {
		s, ok := v.(string)
		return ok && allowed[s]
	}, WithParent(Str))
}

// Union accepts values satisfying any member.
func Union(members ...Predicate) Predicate {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	return NewConstraint(strings.Join(names, "|"), func(v any) bool {
		for _, m := range members {
			if Is(m, v) {
				return true
			}
		}
		return false
	})
}

// Intersection accepts values satisfying every member.
func Intersection(members ...Predicate) Predicate {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	return NewConstraint(strings.Join(names, "&"), func(v any) bool {
		for _, m := range members {
			if !Is(m, v) {
				return false
			}
		}
		return true
	})
}
