package interp

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/stdlib"
	"github.com/moops-lang/moops/internal/mop"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

func (in *Interpreter) eval(f *frame, expr ast.ExprNode) (any, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return e.Value, nil

	case *ast.VariableExpr:
		if e.IsSelf() {
			if f.self() == nil {
				return nil, failf(e.Loc, "$self is only available inside methods and modifiers")
			}
			return f.self(), nil
		}
		v, ok := f.env.Get(e.Name)
		if !ok {
			return nil, failf(e.Loc, "undefined variable $%s", e.Name)
		}
		return v, nil

	case *ast.UnaryExpr:
		v, err := in.eval(f, e.Operand)
		if err != nil {
			return nil, err
		}
		out, err := unary(e.Operator, v)
		return out, at(e.Loc, err)

	case *ast.BinaryExpr:
		left, err := in.eval(f, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(f, e.Right)
		if err != nil {
			return nil, err
		}
		out, err := binary(e.Operator, left, right)
		return out, at(e.Loc, err)

	case *ast.LogicalExpr:
		left, err := in.eval(f, e.Left)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case "&&", "and":
			if !truthy(left) {
				return left, nil
			}
		default:
			if truthy(left) {
				return left, nil
			}
		}
		return in.eval(f, e.Right)

	case *ast.ArrayLiteralExpr:
		out := make([]any, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := in.eval(f, el)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case *ast.HashLiteralExpr:
		out := make(map[string]any, len(e.Entries))
		for _, entry := range e.Entries {
			v, err := in.eval(f, entry.Value)
			if err != nil {
				return nil, err
			}
			out[entry.Key] = v
		}
		return out, nil

	case *ast.IndexExpr:
		obj, err := in.eval(f, e.Object)
		if err != nil {
			return nil, err
		}
		idx, err := in.eval(f, e.Index)
		if err != nil {
			return nil, err
		}
		out, err := index(obj, idx)
		return out, at(e.Loc, err)

	case *ast.MemberExpr:
		obj, err := in.eval(f, e.Object)
		if err != nil {
			return nil, err
		}
		out, err := in.member(f, obj, e.Name)
		return out, at(e.Loc, err)

	case *ast.CallExpr:
		obj, err := in.eval(f, e.Object)
		if err != nil {
			return nil, err
		}
		positional, named, err := in.arguments(f, e.Arguments)
		if err != nil {
			return nil, err
		}
		out, err := in.call(f, obj, e.Method, positional, named)
		return out, at(e.Loc, err)

	case *ast.ClassCallExpr:
		positional, named, err := in.arguments(f, e.Arguments)
		if err != nil {
			return nil, err
		}
		out, err := in.classCall(e.Class, e.Method, positional, named)
		return out, at(e.Loc, err)

	case *ast.SuperExpr:
		return in.super(f, e)
	}
	return nil, failf(expr.Location(), "unsupported expression %T", expr)
}

// arguments evaluates call arguments. Containers are copied so the callee
// never shares storage with the caller's variables.
func (in *Interpreter) arguments(f *frame, args []*ast.ArgNode) ([]any, map[string]any, error) {
	var (
		positional []any
		named      map[string]any
	)
	for _, arg := range args {
		v, err := in.eval(f, arg.Value)
		if err != nil {
			return nil, nil, err
		}
		v = copyValue(v)
		if arg.Name == "" {
			positional = append(positional, v)
			continue
		}
		if named == nil {
			named = make(map[string]any)
		}
		if _, dup := named[arg.Name]; dup {
			return nil, nil, failf(arg.Value.Location(), "named argument %s passed twice", arg.Name)
		}
		named[arg.Name] = v
	}
	return positional, named, nil
}

// member reads obj.name: an accessor or zero-argument method on objects,
// a private slot of $self, a key of a hash or a detail of an exception.
func (in *Interpreter) member(f *frame, obj any, name string) (any, error) {
	switch o := obj.(type) {
	case *mop.Instance:
		if o.Can(name) {
			v, err := o.Call(name)
			return copyValue(v), err
		}
		if o == f.self() {
			v, err := f.inv.Get(name)
			return copyValue(v), err
		}
		if _, ok := o.Class().Attribute(name); ok {
			return o.Get(name)
		}
		return nil, &mop.AccessError{Class: o.ClassName(), Member: name, Reason: "no such attribute or method"}
	case map[string]any:
		return o[name], nil
	case *Exception:
		if v, ok := o.Member(name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("exceptions have no member %s", name)
	}
	return nil, fmt.Errorf("cannot read member %s of %s", name, describe(obj))
}

func (in *Interpreter) call(f *frame, obj any, method string, positional []any, named map[string]any) (any, error) {
	o, ok := obj.(*mop.Instance)
	if !ok {
		if positional == nil && named == nil {
			return in.member(f, obj, method)
		}
		return nil, fmt.Errorf("cannot call method %s on %s", method, describe(obj))
	}
	v, err := o.CallNamed(method, positional, named)
	return copyValue(v), err
}

// classCall handles Name.method(...): Class.new(...) for registered
// classes, otherwise a built-in function.
func (in *Interpreter) classCall(name, method string, positional []any, named map[string]any) (any, error) {
	if class, ok := in.registry.Lookup(name); ok {
		if method != "new" {
			return nil, fmt.Errorf("%s.%s: only new can be called on a class", name, method)
		}
		if len(positional) > 0 {
			return nil, &mop.SignatureError{Method: name + "::new", Reason: "the constructor takes named arguments only"}
		}
		return class.New(named)
	}

	if funcs := stdlib.GetFunctions(name); funcs != nil {
		fn, ok := stdlib.Lookup(name, method)
		if !ok {
			msg := fmt.Sprintf("%s has no function %s", name, method)
			if hint := ustrings.DidYouMean(ustrings.FindSimilar(method, stdlib.FunctionNames(name), nil)); hint != "" {
				msg += " (" + hint + ")"
			}
			return nil, fmt.Errorf("%s", msg)
		}
		if len(named) > 0 {
			return nil, fmt.Errorf("%s.%s takes positional arguments only", name, method)
		}
		return fn.Call(name, positional)
	}

	candidates := append(in.registry.Names(), stdlib.GetNamespaces()...)
	msg := fmt.Sprintf("unknown class or namespace %s", name)
	if hint := ustrings.DidYouMean(ustrings.FindSimilar(name, candidates, nil)); hint != "" {
		msg += " (" + hint + ")"
	}
	return nil, fmt.Errorf("%s", msg)
}

// super calls the overridden implementation. Without an argument list the
// arguments of the running method are passed on as they were bound.
func (in *Interpreter) super(f *frame, e *ast.SuperExpr) (any, error) {
	if f.inv == nil {
		return nil, failf(e.Loc, "super is only available inside methods")
	}

	var (
		positional []any
		named      map[string]any
		err        error
	)
	if e.HasArgs {
		positional, named, err = in.arguments(f, e.Arguments)
		if err != nil {
			return nil, err
		}
	} else if sig := f.inv.Method.Signature; sig != nil {
		for _, p := range sig.Params {
			if !f.inv.Has(p.Name) {
				continue
			}
			v := copyValue(f.inv.Arg(p.Name))
			if p.Named {
				if named == nil {
					named = make(map[string]any)
				}
				named[p.Name] = v
			} else {
				positional = append(positional, v)
			}
		}
	}

	v, err := f.inv.Super(positional, named)
	return copyValue(v), at(e.Loc, err)
}

// assign stores v into target. Writes into an element of a container are
// written back through the container's own target so attribute setters
// validate the whole new value.
func (in *Interpreter) assign(f *frame, target ast.ExprNode, v any) error {
	switch t := target.(type) {
	case *ast.VariableExpr:
		if t.IsSelf() {
			return failf(t.Loc, "cannot assign to $self")
		}
		if !f.env.Assign(t.Name, v) {
			return failf(t.Loc, "undefined variable $%s (declare it with let)", t.Name)
		}
		return nil

	case *ast.MemberExpr:
		obj, err := in.eval(f, t.Object)
		if err != nil {
			return err
		}
		return at(t.Loc, in.setMember(f, obj, t.Name, v))

	case *ast.IndexExpr:
		container, err := in.eval(f, t.Object)
		if err != nil {
			return err
		}
		idx, err := in.eval(f, t.Index)
		if err != nil {
			return err
		}
		updated, err := setIndex(container, idx, v)
		if err != nil {
			return at(t.Loc, err)
		}
		return in.assign(f, t.Object, updated)
	}
	return failf(target.Location(), "invalid assignment target")
}

func (in *Interpreter) setMember(f *frame, obj any, name string, v any) error {
	v = copyValue(v)
	switch o := obj.(type) {
	case *mop.Instance:
		if _, ok := o.Class().Attribute(name); !ok {
			return &mop.AccessError{Class: o.ClassName(), Member: name, Reason: "no such attribute"}
		}
		if o.Can(name) {
			_, err := o.Call(name, v)
			return err
		}
		if o == f.self() {
			return f.inv.Set(name, v)
		}
		return o.Set(name, v)
	case map[string]any:
		o[name] = v
		return nil
	}
	return fmt.Errorf("cannot set member %s of %s", name, describe(obj))
}
