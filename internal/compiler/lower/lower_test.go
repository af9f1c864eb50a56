package lower

import (
	"errors"
	"reflect"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/rewriter"
)

func parse(t *testing.T, source string) *Result {
	t.Helper()
	prog, errs := parser.ParseSource("calc.moops", source)
	if len(errs) > 0 {
		t.Fatalf("Unexpected parse errors: %v", errs)
	}
	res, err := Program(prog)
	if err != nil {
		t.Fatalf("Unexpected lowering error: %v", err)
	}
	return res
}

func TestLowerCalculator(t *testing.T) {
	res := parse(t, `
use Types::Common::Numeric (PositiveInt, PositiveOrZeroInt as Count);

class Calculator {
    has num (is: rw, isa: PositiveInt, default: 1);
    has history (is: private, isa: ArrayRef[Int], default: []);

    method add(PositiveInt $addition, Int :$times = 1) {
        $self.num = $self.num + $addition * $times;
    }

    after add { say "added"; }
}

let $c = Calculator.new(num: 20);
say $c.num;
`)

	u := res.Unit
	if u.File != "calc.moops" {
		t.Errorf("Expected file calc.moops, got %q", u.File)
	}
	if len(u.Uses) != 1 || u.Uses[0].Library != "Types::Common::Numeric" {
		t.Fatalf("Unexpected uses: %+v", u.Uses)
	}
	if got := u.Uses[0].Imports; !reflect.DeepEqual(got, []decl.Import{{Name: "PositiveInt"}, {Name: "PositiveOrZeroInt", Alias: "Count"}}) {
		t.Errorf("Unexpected imports: %+v", got)
	}

	c := u.Find("Calculator")
	if c == nil {
		t.Fatalf("Expected Calculator declaration")
	}
	if c.Kind != decl.KindClass || c.Pos.Line != 4 || c.Pos.File != "calc.moops" {
		t.Errorf("Unexpected class header: %+v", c)
	}

	num := c.Attribute("num")
	if num.Is != "rw" || num.Isa != "PositiveInt" || num.Default == nil || num.Default.V != int64(1) {
		t.Errorf("Unexpected num attribute: %+v", num)
	}
	history := c.Attribute("history")
	if history.Isa != "ArrayRef[Int]" || !reflect.DeepEqual(history.Default.V, []any{}) {
		t.Errorf("Unexpected history attribute: %+v", history)
	}

	add := c.Method("add")
	if add == nil || len(add.Params) != 2 {
		t.Fatalf("Unexpected add method: %+v", add)
	}
	if p := add.Params[0]; p.Name != "addition" || p.Isa != "PositiveInt" || p.Named {
		t.Errorf("Unexpected first param: %+v", p)
	}
	if p := add.Params[1]; p.Name != "times" || !p.Named || p.Default == nil || p.Default.V != int64(1) {
		t.Errorf("Unexpected second param: %+v", p)
	}
	if add.Source == "" || add.Body != nil {
		t.Errorf("Expected source body only")
	}

	body, ok := res.MethodBody(add)
	if !ok || len(body) != 1 {
		t.Errorf("Expected parsed body with 1 statement, got %d", len(body))
	}
	if len(c.Modifiers) != 1 || c.Modifiers[0].Kind != "after" || c.Modifiers[0].Method != "add" {
		t.Fatalf("Unexpected modifiers: %+v", c.Modifiers)
	}
	if _, ok := res.ModifierBody(c.Modifiers[0]); !ok {
		t.Errorf("Expected modifier body")
	}
	if res.ClassNode("Calculator") == nil {
		t.Errorf("Expected class node")
	}

	if len(res.Statements) != 2 {
		t.Errorf("Expected 2 top-level statements, got %d", len(res.Statements))
	}
}

func TestLowerRole(t *testing.T) {
	res := parse(t, `
role Logging {
    requires name;
    method log($msg) { say $msg; }
}
class Service extends Base with Logging, Tracing {
}
`)
	role := res.Unit.Find("Logging")
	if !role.IsRole() || !reflect.DeepEqual(role.Requires, []string{"name"}) {
		t.Errorf("Unexpected role: %+v", role)
	}
	svc := res.Unit.Find("Service")
	if svc.Extends != "Base" || !reflect.DeepEqual(svc.With, []string{"Logging", "Tracing"}) {
		t.Errorf("Unexpected header: %+v", svc)
	}
	if !reflect.DeepEqual(svc.Dependencies(), []string{"Base", "Logging", "Tracing"}) {
		t.Errorf("Unexpected dependencies: %v", svc.Dependencies())
	}
}

func TestLowerRejectsComputedDefaults(t *testing.T) {
	prog, errs := parser.ParseSource("bad.moops", `
class Bad {
    has when (default: $now);
    method m($x = 1 + 2) { }
}
`)
	if len(errs) > 0 {
		t.Fatalf("Unexpected parse errors: %v", errs)
	}

	_, err := Program(prog)

	var des rewriter.DeclarationErrors
	if !errors.As(err, &des) {
		t.Fatalf("Expected declaration errors, got %v", err)
	}
	if got := des.Codes(); !reflect.DeepEqual(got, []string{rewriter.CodeInvalidAttribute, rewriter.CodeInvalidParams}) {
		t.Errorf("Unexpected codes: %v", got)
	}
	if des[0].Pos.File != "bad.moops" || des[0].Pos.Line != 3 {
		t.Errorf("Unexpected position: %+v", des[0].Pos)
	}
}

func TestConstant(t *testing.T) {
	tests := []struct {
		source string
		want   any
		ok     bool
	}{
		{`42`, int64(42), true},
		{`-3`, int64(-3), true},
		{`-2.5`, -2.5, true},
		{`"hi"`, "hi", true},
		{`undef`, nil, true},
		{`[1, "a", [true]]`, []any{int64(1), "a", []any{true}}, true},
		{`{ a => 1, b => [2] }`, map[string]any{"a": int64(1), "b": []any{int64(2)}}, true},
		{`-"x"`, nil, false},
		{`!true`, nil, false},
		{`[1, $x]`, nil, false},
		{`1 + 2`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			prog, errs := parser.ParseSource("", "let $v = "+tt.source+";")
			if len(errs) > 0 {
				t.Fatalf("Unexpected parse errors: %v", errs)
			}
			expr := prog.Statements[0].(*ast.LetStmt).Value

			got, ok := Constant(expr)
			if ok != tt.ok {
				t.Fatalf("Expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %#v, got %#v", tt.want, got)
			}
		})
	}
}
