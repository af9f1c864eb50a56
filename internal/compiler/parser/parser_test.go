package parser

import (
	"strings"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/ast"
)

// parse runs the scanner and parser and fails the test on any error
func parse(t *testing.T, source string) *ast.Program {
	t.Helper()

	program, errs := ParseSource("test.moops", source)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}
	return program
}

// TestParseCalculator tests a full unit: use directive, class and top-level code
func TestParseCalculator(t *testing.T) {
	source := `use Types::Common::Numeric (PositiveInt, PositiveOrZeroInt as Count);

class Calculator extends Base using Logging {
    has num (is: rw, isa: PositiveInt, default: 1, trigger: on_change);
    has memo (is: private, isa: ArrayRef[Int]);

    method add(PositiveInt $addition, Int :$times = 1) {
        $self.num = $self.num + $addition * $times;
        return $self.num;
    }

    before add { $self.log("adding"); }
}

let $c = Calculator.new(num: 20);
say $c.num;
`
	program := parse(t, source)

	if program.File != "test.moops" {
		t.Errorf("Expected file name to be kept, got %q", program.File)
	}

	if len(program.Uses) != 1 {
		t.Fatalf("Expected 1 use directive, got %d", len(program.Uses))
	}
	use := program.Uses[0]
	if use.Library != "Types::Common::Numeric" {
		t.Errorf("Expected library Types::Common::Numeric, got %q", use.Library)
	}
	if len(use.Imports) != 2 {
		t.Fatalf("Expected 2 imports, got %d", len(use.Imports))
	}
	if use.Imports[1].Name != "PositiveOrZeroInt" || use.Imports[1].Alias != "Count" {
		t.Errorf("Expected PositiveOrZeroInt as Count, got %+v", use.Imports[1])
	}

	if len(program.Classes) != 1 {
		t.Fatalf("Expected 1 class, got %d", len(program.Classes))
	}
	class := program.Classes[0]
	if class.Name != "Calculator" || class.Kind != "class" {
		t.Errorf("Expected class Calculator, got %s %s", class.Kind, class.Name)
	}
	if class.Extends != "Base" {
		t.Errorf("Expected parent Base, got %q", class.Extends)
	}
	if len(class.With) != 1 || class.With[0] != "Logging" {
		t.Errorf("Expected roles [Logging], got %v", class.With)
	}

	if len(class.Attributes) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(class.Attributes))
	}
	num := class.Attributes[0]
	if num.Name != "num" || num.Is != "rw" || num.Isa.String() != "PositiveInt" || num.Trigger != "on_change" {
		t.Errorf("Unexpected num attribute: %+v", num)
	}
	if lit, ok := num.Default.(*ast.LiteralExpr); !ok || lit.Value != int64(1) {
		t.Errorf("Expected default literal 1, got %#v", num.Default)
	}
	memo := class.Attributes[1]
	if memo.Is != "private" || memo.Isa.String() != "ArrayRef[Int]" {
		t.Errorf("Unexpected memo attribute: %+v", memo)
	}

	if len(class.Methods) != 1 {
		t.Fatalf("Expected 1 method, got %d", len(class.Methods))
	}
	add := class.Methods[0]
	if add.Name != "add" || len(add.Params) != 2 {
		t.Fatalf("Expected add with 2 params, got %s with %d", add.Name, len(add.Params))
	}
	if p := add.Params[0]; p.Name != "addition" || p.Type.String() != "PositiveInt" || p.Named {
		t.Errorf("Unexpected first param: %+v", p)
	}
	if p := add.Params[1]; p.Name != "times" || !p.Named || p.Type.String() != "Int" || p.Default == nil {
		t.Errorf("Unexpected second param: %+v", p)
	}
	if len(add.Body) != 2 {
		t.Fatalf("Expected 2 statements in add, got %d", len(add.Body))
	}
	assign, ok := add.Body[0].(*ast.AssignmentStmt)
	if !ok {
		t.Fatalf("Expected assignment, got %T", add.Body[0])
	}
	if target, ok := assign.Target.(*ast.MemberExpr); !ok || target.Name != "num" {
		t.Errorf("Expected $self.num target, got %#v", assign.Target)
	}
	if _, ok := add.Body[1].(*ast.ReturnStmt); !ok {
		t.Errorf("Expected return, got %T", add.Body[1])
	}
	if !strings.HasPrefix(add.Source, "$self.num = ") || !strings.HasSuffix(add.Source, "return $self.num;") {
		t.Errorf("Unexpected method source: %q", add.Source)
	}

	if len(class.Modifiers) != 1 {
		t.Fatalf("Expected 1 modifier, got %d", len(class.Modifiers))
	}
	if mod := class.Modifiers[0]; mod.Kind != "before" || mod.Method != "add" || mod.Source != `$self.log("adding");` {
		t.Errorf("Unexpected modifier: %+v", mod)
	}

	if len(program.Statements) != 2 {
		t.Fatalf("Expected 2 top-level statements, got %d", len(program.Statements))
	}
	let, ok := program.Statements[0].(*ast.LetStmt)
	if !ok || let.Name != "c" {
		t.Fatalf("Expected let $c, got %#v", program.Statements[0])
	}
	call, ok := let.Value.(*ast.ClassCallExpr)
	if !ok || call.Class != "Calculator" || call.Method != "new" {
		t.Fatalf("Expected Calculator.new call, got %#v", let.Value)
	}
	if len(call.Arguments) != 1 || call.Arguments[0].Name != "num" {
		t.Errorf("Expected named argument num, got %+v", call.Arguments)
	}
	if _, ok := program.Statements[1].(*ast.SayStmt); !ok {
		t.Errorf("Expected say, got %T", program.Statements[1])
	}
}

// TestParseParameterMarkers tests optional, named and required markers
func TestParseParameterMarkers(t *testing.T) {
	program := parse(t, `class P {
    method m(Str $a, Int $b?, :$c!, Maybe[Int] :$d = undef, $e = [1, 2]) { }
}`)

	params := program.Classes[0].Methods[0].Params
	if len(params) != 5 {
		t.Fatalf("Expected 5 params, got %d", len(params))
	}

	tests := []struct {
		name     string
		typ      string
		named    bool
		optional bool
		required bool
		dflt     bool
	}{
		{"a", "Str", false, false, false, false},
		{"b", "Int", false, true, false, false},
		{"c", "", true, false, true, false},
		{"d", "Maybe[Int]", true, false, false, true},
		{"e", "", false, false, false, true},
	}

	for i, tt := range tests {
		p := params[i]
		if p.Name != tt.name {
			t.Errorf("param %d: expected name %q, got %q", i, tt.name, p.Name)
		}
		if p.Type.String() != tt.typ {
			t.Errorf("param %s: expected type %q, got %q", tt.name, tt.typ, p.Type.String())
		}
		if p.Named != tt.named || p.Optional != tt.optional || p.Required != tt.required {
			t.Errorf("param %s: unexpected markers %+v", tt.name, p)
		}
		if (p.Default != nil) != tt.dflt {
			t.Errorf("param %s: expected default=%v", tt.name, tt.dflt)
		}
	}
}

// TestParseTypeExpressions tests that type text survives for the type scope
func TestParseTypeExpressions(t *testing.T) {
	tests := []struct {
		isa      string
		expected string
	}{
		{"Int", "Int"},
		{"Types::Standard::Str", "Types::Standard::Str"},
		{"ArrayRef[HashRef[Int]]", "ArrayRef[HashRef[Int]]"},
		{`Enum["a", "b"] | Undef`, `Enum["a", "b"] | Undef`},
		{"Str|Int", "Str | Int"},
		{"Between[-1, 10]", "Between[-1, 10]"},
		{"InstanceOf[Engine]", "InstanceOf[Engine]"},
	}

	for _, tt := range tests {
		t.Run(tt.isa, func(t *testing.T) {
			program := parse(t, "class T { has v (isa: "+tt.isa+"); }")
			got := program.Classes[0].Attributes[0].Isa.String()
			if got != tt.expected {
				t.Errorf("Expected type %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestParseRole tests role declarations with requires and modifiers
func TestParseRole(t *testing.T) {
	program := parse(t, `role Logging with Named {
    requires log, level;
    after log { say "logged"; }
}`)

	role := program.Classes[0]
	if !role.IsRole() {
		t.Fatalf("Expected role, got %s", role.Kind)
	}
	if len(role.Requires) != 2 || role.Requires[0] != "log" || role.Requires[1] != "level" {
		t.Errorf("Expected requires [log level], got %v", role.Requires)
	}
	if len(role.With) != 1 || role.With[0] != "Named" {
		t.Errorf("Expected composed role Named, got %v", role.With)
	}
	if len(role.Modifiers) != 1 || role.Modifiers[0].Kind != "after" {
		t.Errorf("Expected one after modifier, got %+v", role.Modifiers)
	}
}

// TestParseWithIsUsing tests that with and using can be mixed
func TestParseWithIsUsing(t *testing.T) {
	program := parse(t, `class D extends C with R1, R2 using R3 { }`)

	with := program.Classes[0].With
	if strings.Join(with, ",") != "R1,R2,R3" {
		t.Errorf("Expected roles R1,R2,R3, got %v", with)
	}
}

// TestParseExpressionPrecedence tests operator binding
func TestParseExpressionPrecedence(t *testing.T) {
	program := parse(t, `let $x = 1 + 2 * 3 ~ "a";`)

	let := program.Statements[0].(*ast.LetStmt)
	concat, ok := let.Value.(*ast.BinaryExpr)
	if !ok || concat.Operator != "~" {
		t.Fatalf("Expected concatenation at the root, got %#v", let.Value)
	}
	sum, ok := concat.Left.(*ast.BinaryExpr)
	if !ok || sum.Operator != "+" {
		t.Fatalf("Expected addition on the left, got %#v", concat.Left)
	}
	product, ok := sum.Right.(*ast.BinaryExpr)
	if !ok || product.Operator != "*" {
		t.Fatalf("Expected multiplication bound tighter, got %#v", sum.Right)
	}
}

// TestParseLogicalAndUnary tests logical operators and negation
func TestParseLogicalAndUnary(t *testing.T) {
	program := parse(t, `let $ok = not $a && $b || -$c > 0;`)

	or, ok := program.Statements[0].(*ast.LetStmt).Value.(*ast.LogicalExpr)
	if !ok || or.Operator != "||" {
		t.Fatalf("Expected || at the root, got %#v", program.Statements[0].(*ast.LetStmt).Value)
	}
	and, ok := or.Left.(*ast.LogicalExpr)
	if !ok || and.Operator != "&&" {
		t.Fatalf("Expected && on the left, got %#v", or.Left)
	}
	if u, ok := and.Left.(*ast.UnaryExpr); !ok || u.Operator != "not" {
		t.Errorf("Expected not, got %#v", and.Left)
	}
	if cmp, ok := or.Right.(*ast.BinaryExpr); !ok || cmp.Operator != ">" {
		t.Errorf("Expected comparison on the right, got %#v", or.Right)
	}
}

// TestParseControlFlow tests if/elsif/else, unless and try/catch
func TestParseControlFlow(t *testing.T) {
	program := parse(t, `
if ($x > 1) { say "big"; } elsif ($x == 1) { say "one"; } else { say "small"; }
unless $ok { die "no"; }
try { $c.add("Hello"); } catch $e { say $e; }
try { die "x"; } catch ($err) { say $err; }
try { die "x"; } catch { say "caught"; }
`)

	if len(program.Statements) != 5 {
		t.Fatalf("Expected 5 statements, got %d", len(program.Statements))
	}

	ifStmt := program.Statements[0].(*ast.IfStmt)
	if len(ifStmt.ElsIfs) != 1 || len(ifStmt.Else) != 1 || ifStmt.Unless {
		t.Errorf("Unexpected if statement: %+v", ifStmt)
	}

	unless := program.Statements[1].(*ast.IfStmt)
	if !unless.Unless {
		t.Errorf("Expected unless to be marked")
	}
	if _, ok := unless.Then[0].(*ast.DieStmt); !ok {
		t.Errorf("Expected die in unless body, got %T", unless.Then[0])
	}

	for i, expected := range []string{"e", "err", ""} {
		try := program.Statements[2+i].(*ast.TryStmt)
		if try.CatchVar != expected {
			t.Errorf("try %d: expected catch variable %q, got %q", i, expected, try.CatchVar)
		}
		if len(try.Catch) != 1 {
			t.Errorf("try %d: expected one catch statement, got %d", i, len(try.Catch))
		}
	}
}

// TestParseCalls tests method calls, super and named argument forms
func TestParseCalls(t *testing.T) {
	program := parse(t, `class Dog extends Animal {
    method speak($loud?) {
        let $p = Point.new(x => 1, y: 2);
        let $base = super;
        return super($loud) ~ $self.name ~ $p.describe();
    }
}`)

	body := program.Classes[0].Methods[0].Body
	if len(body) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(body))
	}

	call := body[0].(*ast.LetStmt).Value.(*ast.ClassCallExpr)
	if call.Arguments[0].Name != "x" || call.Arguments[1].Name != "y" {
		t.Errorf("Expected named arguments x and y, got %+v", call.Arguments)
	}

	bare := body[1].(*ast.LetStmt).Value.(*ast.SuperExpr)
	if bare.HasArgs {
		t.Errorf("Expected bare super without an argument list")
	}

	ret := body[2].(*ast.ReturnStmt).Value.(*ast.BinaryExpr)
	left := ret.Left.(*ast.BinaryExpr)
	if sup, ok := left.Left.(*ast.SuperExpr); !ok || !sup.HasArgs || len(sup.Arguments) != 1 {
		t.Errorf("Expected super with one argument, got %#v", left.Left)
	}
	if m, ok := left.Right.(*ast.MemberExpr); !ok || m.Name != "name" {
		t.Errorf("Expected $self.name, got %#v", left.Right)
	}
	if c, ok := ret.Right.(*ast.CallExpr); !ok || c.Method != "describe" || len(c.Arguments) != 0 {
		t.Errorf("Expected $p.describe(), got %#v", ret.Right)
	}
}

// TestParseCollections tests array and hash literals and indexing
func TestParseCollections(t *testing.T) {
	program := parse(t, `let $h = { a => 1, "b c" => [1, 2] };
let $first = $h["b c"][0];
$h["a"] = 2;`)

	hash := program.Statements[0].(*ast.LetStmt).Value.(*ast.HashLiteralExpr)
	if len(hash.Entries) != 2 || hash.Entries[1].Key != "b c" {
		t.Fatalf("Unexpected hash entries: %+v", hash.Entries)
	}
	if _, ok := hash.Entries[1].Value.(*ast.ArrayLiteralExpr); !ok {
		t.Errorf("Expected array value, got %T", hash.Entries[1].Value)
	}

	index := program.Statements[1].(*ast.LetStmt).Value.(*ast.IndexExpr)
	if _, ok := index.Object.(*ast.IndexExpr); !ok {
		t.Errorf("Expected chained indexing, got %T", index.Object)
	}

	assign := program.Statements[2].(*ast.AssignmentStmt)
	if _, ok := assign.Target.(*ast.IndexExpr); !ok {
		t.Errorf("Expected index target, got %T", assign.Target)
	}
}

// TestParseErrorRecovery tests that one bad member does not hide the rest
func TestParseErrorRecovery(t *testing.T) {
	source := `class A {
    has x (is: rw, sze: 1);
    method ok() { return 1; }
}
class B {
    method broken( { }
    method fine() { return 2; }
}`

	program, errs := ParseSource("", source)

	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Message, "Unknown attribute option 'sze'") {
		t.Errorf("Unexpected first error: %s", errs[0].Message)
	}
	if errs[0].Location.Line != 2 {
		t.Errorf("Expected first error on line 2, got %d", errs[0].Location.Line)
	}
	if !strings.Contains(errs[1].Message, "Expected parameter variable") {
		t.Errorf("Unexpected second error: %s", errs[1].Message)
	}

	if len(program.Classes) != 2 {
		t.Fatalf("Expected both classes to survive, got %d", len(program.Classes))
	}
	if len(program.Classes[0].Methods) != 1 || program.Classes[0].Methods[0].Name != "ok" {
		t.Errorf("Expected method ok in A, got %+v", program.Classes[0].Methods)
	}
	if len(program.Classes[1].Methods) != 1 || program.Classes[1].Methods[0].Name != "fine" {
		t.Errorf("Expected method fine in B, got %+v", program.Classes[1].Methods)
	}
}

// TestParseStatementErrors tests statement-level errors and recovery
func TestParseStatementErrors(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		message   string
		remaining int
	}{
		{"missing expression", "let $a = ;\nsay \"after\";", "Unexpected token ';'", 1},
		{"invalid target", "1 = 2;\nsay 1;", "Invalid assignment target", 1},
		{"member outside class", "has x;\nsay 1;", "only allowed inside a class or role", 1},
		{"bare name", "let $a = Foo;", "Bare name 'Foo'", 0},
		{"assign self", "$self = 1;", "Cannot assign to $self", 0},
		{"dangling else", "else { say 1; }", "without a matching opening statement", 1},
		{"unterminated string", `let $a = "oops`, "Unterminated string", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, errs := ParseSource("", tt.source)
			if len(errs) == 0 {
				t.Fatalf("Expected an error")
			}
			if !strings.Contains(errs[0].Message, tt.message) {
				t.Errorf("Expected error containing %q, got %q", tt.message, errs[0].Message)
			}
			if len(program.Statements) != tt.remaining {
				t.Errorf("Expected %d statements to survive, got %d", tt.remaining, len(program.Statements))
			}
		})
	}
}

// TestParseErrorFormat tests the error string
func TestParseErrorFormat(t *testing.T) {
	_, errs := ParseSource("", "class {")
	if len(errs) == 0 {
		t.Fatalf("Expected an error")
	}
	got := errs[0].Error()
	if got != "Parse error at 1:7: Expected class name (near '{')" {
		t.Errorf("Unexpected error string: %s", got)
	}
}

// TestInspectVisitsBodies tests the AST walker over a parsed program
func TestInspectVisitsBodies(t *testing.T) {
	program := parse(t, `class C {
    method m($x) { if ($x) { return $x.y($z); } }
}
say $w;`)

	var vars []string
	ast.Inspect(program, func(n ast.Node) bool {
		if v, ok := n.(*ast.VariableExpr); ok {
			vars = append(vars, v.Name)
		}
		return true
	})

	if strings.Join(vars, ",") != "x,x,z,w" {
		t.Errorf("Expected variables x,x,z,w, got %v", vars)
	}
}

// TestParseBody tests parsing body text taken from a declaration
func TestParseBody(t *testing.T) {
	stmts, errs := ParseBody(`
        let $total = $self.num + $addition;
        $self.num = $total;
        return $total`)
	if len(errs) > 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(stmts) != 3 {
		t.Fatalf("Expected 3 statements, got %d", len(stmts))
	}
	if _, ok := stmts[2].(*ast.ReturnStmt); !ok {
		t.Errorf("Expected return statement, got %T", stmts[2])
	}

	_, errs = ParseBody(`has x; say 1;`)
	if len(errs) == 0 || !strings.Contains(errs[0].Message, "not allowed inside a method body") {
		t.Errorf("Expected member error, got %v", errs)
	}
}

func TestParseDocComments(t *testing.T) {
	source := `# Something that makes noise.
# Composed into animals.
role Speaks {
    requires sound;
}

### not documentation ###
class Plain {
}

# detached

class Loose {
}
`
	program := parse(t, source)
	if len(program.Classes) != 3 {
		t.Fatalf("Expected 3 classes, got %d", len(program.Classes))
	}

	want := "Something that makes noise.\nComposed into animals."
	if got := program.Classes[0].Documentation; got != want {
		t.Errorf("Expected documentation %q, got %q", want, got)
	}
	for _, c := range program.Classes[1:] {
		if c.Documentation != "" {
			t.Errorf("Expected no documentation on %s, got %q", c.Name, c.Documentation)
		}
	}
}
