package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/lower"
	mparser "github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/mop"
)

const calculator = `use Types::Common::Numeric (PositiveInt, PositiveOrZeroInt as Count);

role Logging {
    requires log;
}

class Calculator extends Base with Logging {
    has num (is: rw, isa: PositiveInt, default: 1, trigger: changed);
    has history (is: private, default: [1, "two", 3.5]);
    has memo (required: true);

    method add(PositiveInt $addition, Int :$times = 1, $note?) {
        $self.num = $self.num + $addition * $times;
        return $self.num;
    }

    before add { say "adding ` + "`raw`" + `"; }
}
`

func lowered(t *testing.T, source string) *decl.Unit {
	t.Helper()

	prog, errs := mparser.ParseSource("calc.moops", source)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	res, err := lower.Program(prog)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return res.Unit
}

func TestGenerateUnit(t *testing.T) {
	code, err := NewGenerator().GenerateUnit(lowered(t, calculator), Options{Package: "calc"})
	if err != nil {
		t.Fatalf("GenerateUnit failed: %v", err)
	}

	if _, err := parser.ParseFile(token.NewFileSet(), "calc.go", code, parser.AllErrors); err != nil {
		t.Fatalf("Generated code does not parse: %v\n%s", err, code)
	}

	expected := []string{
		"// Code generated by moops gen. DO NOT EDIT.",
		"// Source: calc.moops",
		"package calc",
		`import "github.com/moops-lang/moops/pkg/moops"`,
		`Library: "Types::Common::Numeric",`,
		`{Name: "PositiveOrZeroInt", Alias: "Count"},`,
		`Kind:     moops.KindRole,`,
		`Requires: []string{"log"},`,
		`Extends: "Base",`,
		`With:    []string{"Logging"},`,
		`Default: moops.Const(int64(1)),`,
		`Trigger: "changed",`,
		`Default: moops.Const([]any{int64(1), "two", float64(3.5)}),`,
		`Required: true,`,
		`{Name: "addition", Isa: "PositiveInt", Pos: moops.Position{`,
		`{Name: "times", Isa: "Int", Named: true, Default: moops.Const(int64(1)), Pos: `,
		`{Name: "note", Optional: true, Pos: `,
		"$self.num = $self.num + $addition * $times;",
		`Kind:   "before",`,
		`Method: "add",`,
		`Pos: moops.Position{File: "calc.moops", Line: 7, Column: 1},`,
		"func Declare(env *moops.Environment) ([]*moops.Class, error) {",
	}
	for _, want := range expected {
		if !strings.Contains(code, want) {
			t.Errorf("Expected generated code to contain %q\n%s", want, code)
		}
	}

	// The modifier body contains a backtick so it cannot be a raw string
	if !strings.Contains(code, "\\\"adding `raw`\\\"") {
		t.Errorf("Expected the modifier source to be quoted\n%s", code)
	}
}

func TestGenerateEmbedsMetadata(t *testing.T) {
	code, err := NewGenerator().GenerateUnit(lowered(t, `class A { }`), Options{Metadata: `{"version": "1"}`})
	if err != nil {
		t.Fatalf("GenerateUnit failed: %v", err)
	}
	if !strings.Contains(code, "package declarations") {
		t.Error("Expected the default package name")
	}
	if !strings.Contains(code, "const Metadata = `{\"version\": \"1\"}`") {
		t.Errorf("Expected embedded metadata\n%s", code)
	}
	if !strings.Contains(code, "return nil") {
		t.Error("Expected Uses to return nil without use directives")
	}
}

func TestGenerateRejectsGoBodies(t *testing.T) {
	u := &decl.Unit{Classes: []*decl.Class{{
		Name: "Native",
		Kind: decl.KindClass,
		Methods: []*decl.Method{{
			Name: "run",
			Body: func(inv *mop.Invocation) (any, error) { return nil, nil },
		}},
	}}}

	_, err := NewGenerator().GenerateUnit(u, Options{})
	if err == nil || !strings.Contains(err.Error(), "class Native") {
		t.Fatalf("Expected an error naming the class, got %v", err)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "nil"},
		{"a\"b", `"a\"b"`},
		{true, "true"},
		{int64(-3), "int64(-3)"},
		{7, "7"},
		{2.0, "float64(2.0)"},
		{map[string]any{"b": int64(2), "a": "x"}, `map[string]any{"a": "x", "b": int64(2)}`},
	}
	for _, tt := range tests {
		got, err := literal(tt.in)
		if err != nil {
			t.Fatalf("literal(%v) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("literal(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, err := literal(struct{}{}); err == nil {
		t.Error("Expected an error for a struct value")
	}
}
