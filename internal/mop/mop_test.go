package mop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moops-lang/moops/internal/types"
)

func mustSignature(t *testing.T, params ...Param) *Signature {
	t.Helper()
	sig, err := NewSignature(params...)
	require.NoError(t, err)
	return sig
}

func newCalculator(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()

	calc := NewClass("Calculator", KindClass)
	require.NoError(t, calc.AddAttribute(&Attribute{Name: "num", Access: ReadWrite, Type: types.PositiveInt}))
	require.NoError(t, calc.AddAccessors("num"))
	require.NoError(t, calc.AddMethod(&Method{
		Name:      "add",
		Signature: mustSignature(t, Param{Name: "addition", Type: types.PositiveInt}),
		Body: func(inv *Invocation) (any, error) {
			cur, err := inv.Get("num")
			if err != nil {
				return nil, err
			}
			sum := cur.(int) + inv.Arg("addition").(int)
			if err := inv.Set("num", sum); err != nil {
				return nil, err
			}
			return sum, nil
		},
	}))
	require.NoError(t, reg.Register(calc))
	return reg
}

func assertPositiveIntFailure(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)

	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr), "expected TypeError, got %T: %v", err, err)
	assert.Equal(t, "Must be a positive integer", typeErr.Message())

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "PositiveInt", verr.Predicate)
	assert.Equal(t, "Hello", verr.Value)
}

func TestCalculatorScenario(t *testing.T) {
	reg := newCalculator(t)

	c, err := reg.New("Calculator", map[string]any{"num": 20})
	require.NoError(t, err)

	num, err := c.Get("num")
	require.NoError(t, err)
	assert.Equal(t, 20, num)

	require.NoError(t, c.Set("num", 40))
	num, _ = c.Get("num")
	assert.Equal(t, 40, num)

	result, err := c.Call("add", 2)
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	_, err = reg.New("Calculator", map[string]any{"num": "Hello"})
	assertPositiveIntFailure(t, err)
	assert.Contains(t, err.Error(), "Calculator.num")

	_, err = c.Call("add", "Hello")
	assertPositiveIntFailure(t, err)
	assert.Contains(t, err.Error(), "Calculator::add: parameter $addition")

	err = c.Set("num", "Hello")
	assertPositiveIntFailure(t, err)

	_, err = c.Call("num", "Hello")
	assertPositiveIntFailure(t, err)

	num, _ = c.Get("num")
	assert.Equal(t, 42, num, "failed writes keep the previous value")
}

func TestReadsAreStable(t *testing.T) {
	reg := newCalculator(t)
	c, err := reg.New("Calculator", map[string]any{"num": 7})
	require.NoError(t, err)

	first, _ := c.Call("num")
	second, _ := c.Call("num")
	assert.Equal(t, first, second)
	assert.Equal(t, 7, first)
}

func TestConstructor(t *testing.T) {
	reg := NewRegistry()
	var triggered []any

	point := NewClass("Point", KindClass)
	require.NoError(t, point.AddAttribute(&Attribute{Name: "x", Access: ReadOnly, Type: types.Int, Required: true}))
	require.NoError(t, point.AddAttribute(&Attribute{Name: "y", Access: ReadWrite, Type: types.Int, HasDefault: true, Default: 0, Trigger: "moved"}))
	require.NoError(t, point.AddAttribute(&Attribute{Name: "tags", Access: ReadWrite, Type: types.ArrayOf(types.Str), HasDefault: true, Default: []any{"x"}}))
	require.NoError(t, point.AddAttribute(&Attribute{Name: "secret", Access: Private, HasDefault: true, Default: "s"}))
	for _, name := range []string{"x", "y", "tags", "secret"} {
		require.NoError(t, point.AddAccessors(name))
	}
	require.NoError(t, point.AddMethod(&Method{
		Name:      "moved",
		Signature: mustSignature(t, Param{Name: "to"}),
		Body: func(inv *Invocation) (any, error) {
			triggered = append(triggered, inv.Arg("to"))
			return nil, nil
		},
	}))
	require.NoError(t, reg.Register(point))

	p, err := reg.New("Point", map[string]any{"x": 1})
	require.NoError(t, err)
	y, _ := p.Get("y")
	assert.Equal(t, 0, y)
	assert.Empty(t, triggered, "defaults do not fire triggers")

	_, err = reg.New("Point", map[string]any{"x": 1, "y": 5})
	require.NoError(t, err)
	assert.Equal(t, []any{5}, triggered)

	require.NoError(t, p.Set("y", 9))
	assert.Equal(t, []any{5, 9}, triggered)

	_, err = reg.New("Point", map[string]any{})
	var sigErr *SignatureError
	require.True(t, errors.As(err, &sigErr))
	assert.Contains(t, err.Error(), "missing required attribute x")

	_, err = reg.New("Point", map[string]any{"x": 1, "z": 2})
	require.True(t, errors.As(err, &sigErr))
	assert.Contains(t, err.Error(), "unknown attribute(s) [z]")

	_, err = reg.New("Point", map[string]any{"x": 1, "secret": "t"})
	require.True(t, errors.As(err, &sigErr), "private attributes are not constructor arguments")

	err = p.Set("x", 3)
	var accessErr *AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.ErrorContains(t, err, "read-only")

	_, err = p.Call("x", 3)
	require.True(t, errors.As(err, &accessErr))

	_, err = p.Get("secret")
	require.True(t, errors.As(err, &accessErr))
	assert.False(t, p.Can("secret"))

	q, err := reg.New("Point", map[string]any{"x": 2})
	require.NoError(t, err)
	pt, _ := p.Get("tags")
	pt.([]any)[0] = "changed"
	qt, _ := q.Get("tags")
	assert.Equal(t, []any{"x"}, qt, "container defaults are copied per instance")

	require.NoError(t, p.Set("tags", []any{"a"}))
	assert.NotEqual(t, p.ID(), q.ID())
	assert.Equal(t, map[string]any{"x": 1, "y": 9, "tags": []any{"a"}}, p.Snapshot())
}

func TestDefaultMustSatisfyType(t *testing.T) {
	c := NewClass("Bad", KindClass)
	err := c.AddAttribute(&Attribute{Name: "n", Type: types.PositiveInt, HasDefault: true, Default: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Must be a positive integer")

	err = c.AddAttribute(&Attribute{Name: "m", Required: true, HasDefault: true, Default: 1})
	require.Error(t, err)
}

func TestBuildAndBuilder(t *testing.T) {
	reg := NewRegistry()
	var calls []string

	c := NewClass("Counter", KindClass)
	require.NoError(t, c.AddAttribute(&Attribute{Name: "start", Access: ReadOnly, Type: types.Int, HasDefault: true, Default: 10}))
	require.NoError(t, c.AddAttribute(&Attribute{Name: "limit", Access: ReadOnly, Type: types.Int, Builder: "build_limit"}))
	require.NoError(t, c.AddAccessors("start"))
	require.NoError(t, c.AddAccessors("limit"))
	require.NoError(t, c.AddMethod(&Method{Name: "build_limit", Body: func(inv *Invocation) (any, error) {
		calls = append(calls, "builder")
		start, err := inv.Get("start")
		if err != nil {
			return nil, err
		}
		return start.(int) * 2, nil
	}}))
	require.NoError(t, c.AddMethod(&Method{Name: BuildMethod, Body: func(inv *Invocation) (any, error) {
		calls = append(calls, "BUILD")
		return nil, nil
	}}))
	require.NoError(t, reg.Register(c))

	o, err := reg.New("Counter", map[string]any{"start": 4})
	require.NoError(t, err)
	limit, _ := o.Get("limit")
	assert.Equal(t, 8, limit)
	assert.Equal(t, []string{"builder", "BUILD"}, calls)
}

func TestInheritanceAndSuper(t *testing.T) {
	reg := NewRegistry()

	base := NewClass("Base", KindClass)
	require.NoError(t, base.AddAttribute(&Attribute{Name: "name", Access: ReadWrite, Type: types.Str, HasDefault: true, Default: "base"}))
	require.NoError(t, base.AddAccessors("name"))
	require.NoError(t, base.AddMethod(&Method{
		Name:      "greet",
		Signature: mustSignature(t, Param{Name: "greeting", Type: types.Str, HasDefault: true, Default: "hello"}),
		Body: func(inv *Invocation) (any, error) {
			name, _ := inv.Get("name")
			return fmt.Sprintf("%s %s", inv.Arg("greeting"), name), nil
		},
	}))
	require.NoError(t, reg.Register(base))

	child := NewClass("Child", KindClass)
	require.NoError(t, child.Extends(base))
	require.NoError(t, child.AddMethod(&Method{
		Name:      "greet",
		Signature: mustSignature(t, Param{Name: "greeting", Type: types.Str, HasDefault: true, Default: "hi"}),
		Body: func(inv *Invocation) (any, error) {
			parent, err := inv.Super([]any{inv.Arg("greeting")}, nil)
			if err != nil {
				return nil, err
			}
			return parent.(string) + "!", nil
		},
	}))
	require.NoError(t, reg.Register(child))

	o, err := reg.New("Child", map[string]any{"name": "kid"})
	require.NoError(t, err)

	got, err := o.Call("greet")
	require.NoError(t, err)
	assert.Equal(t, "hi kid!", got)

	assert.True(t, o.Isa("Base"))
	assert.True(t, o.Isa("Child"))
	assert.False(t, o.Isa("Other"))
	assert.Equal(t, []string{"Child", "Base"}, child.Lineage())

	b, err := reg.New("Base", nil)
	require.NoError(t, err)
	got, err = b.Call("greet")
	require.NoError(t, err)
	assert.Equal(t, "hello base", got, "parent table is unaffected by the override")

	_, err = b.Call("greet", 5)
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "Base::greet: parameter $greeting", typeErr.Site)
}

func TestExtendsErrors(t *testing.T) {
	base := NewClass("Base", KindClass)
	role := NewClass("Role", KindRole)

	c := NewClass("C", KindClass)
	var compErr *CompositionError
	require.True(t, errors.As(c.Extends(role), &compErr))

	require.True(t, errors.As(role.Extends(base), &compErr))

	require.NoError(t, c.AddAttribute(&Attribute{Name: "a"}))
	require.True(t, errors.As(c.Extends(base), &compErr))
}

func TestPrivateAttributes(t *testing.T) {
	reg := NewRegistry()

	base := NewClass("Vault", KindClass)
	require.NoError(t, base.AddAttribute(&Attribute{Name: "secret", Access: Private, Type: types.Str, HasDefault: true, Default: "s3"}))
	require.NoError(t, base.AddMethod(&Method{Name: "reveal", Body: func(inv *Invocation) (any, error) {
		return inv.Get("secret")
	}}))
	require.NoError(t, base.AddMethod(&Method{
		Name:      "rotate",
		Signature: mustSignature(t, Param{Name: "to"}),
		Body: func(inv *Invocation) (any, error) {
			return nil, inv.Set("secret", inv.Arg("to"))
		},
	}))
	require.NoError(t, reg.Register(base))

	sub := NewClass("Leaky", KindClass)
	require.NoError(t, sub.Extends(base))
	require.NoError(t, sub.AddMethod(&Method{Name: "peek", Body: func(inv *Invocation) (any, error) {
		return inv.Get("secret")
	}}))
	require.NoError(t, reg.Register(sub))

	o, err := reg.New("Leaky", nil)
	require.NoError(t, err)

	got, err := o.Call("reveal")
	require.NoError(t, err)
	assert.Equal(t, "s3", got)

	_, err = o.Call("peek")
	var accessErr *AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Contains(t, err.Error(), "only reachable from methods of Vault")

	_, err = o.Call("rotate", 42)
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr), "private writes are still validated")

	_, err = o.Call("rotate", "new")
	require.NoError(t, err)
	got, _ = o.Call("reveal")
	assert.Equal(t, "new", got)
	assert.Empty(t, o.Snapshot())
}

func TestSignatureBinding(t *testing.T) {
	sig := mustSignature(t,
		Param{Name: "a", Type: types.Int},
		Param{Name: "b", Type: types.Str, Optional: true},
		Param{Name: "times", Type: types.PositiveInt, Named: true, Optional: true, HasDefault: true, Default: 1},
		Param{Name: "label", Named: true, Optional: true},
	)
	assert.Equal(t, "(Int $a, Str $b?, PositiveInt :$times = 1, :$label)", sig.String())

	args, err := sig.Bind("m", []any{1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "times"}, args.Names())
	assert.Equal(t, []any{1, 1}, args.Values())
	assert.False(t, args.Has("b"))
	assert.False(t, args.Has("label"))

	args, err = sig.Bind("m", []any{1, "x"}, map[string]any{"times": 3, "label": nil})
	require.NoError(t, err)
	assert.Equal(t, 3, args.Get("times"))
	assert.True(t, args.Has("label"))

	var sigErr *SignatureError
	_, err = sig.Bind("m", nil, nil)
	require.True(t, errors.As(err, &sigErr))
	assert.Contains(t, err.Error(), "missing required argument $a")

	_, err = sig.Bind("m", []any{1, "x", 3}, nil)
	require.True(t, errors.As(err, &sigErr))
	assert.Contains(t, err.Error(), "too many positional arguments")

	_, err = sig.Bind("m", []any{1}, map[string]any{"zzz": 1, "aaa": 2})
	require.True(t, errors.As(err, &sigErr))
	assert.Contains(t, err.Error(), "unknown named argument(s): aaa, zzz")

	_, err = sig.Bind("m", []any{1}, map[string]any{"times": 0})
	var typeErr *TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "m: parameter $times", typeErr.Site)
}

func TestNewSignatureErrors(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   string
	}{
		{"duplicate", []Param{{Name: "a"}, {Name: "a"}}, "duplicate parameter $a"},
		{"required after optional", []Param{{Name: "a", Optional: true}, {Name: "b"}}, "required parameter $b after optional"},
		{"positional after named", []Param{{Name: "a", Named: true}, {Name: "b"}}, "positional parameter $b after named"},
		{"unnamed", []Param{{}}, "without a name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSignature(tt.params...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
