package tooling

import (
	"strings"
	"testing"
)

const counterSource = `use Types::Common::Numeric (PositiveInt);

role Describable {
    requires name;
    method describe() { return "I am " ~ $self.name; }
}

class Counter with Describable {
    has name (is: ro, default: "counter");
    has count (is: rw, isa: PositiveInt, default: 1);

    method add(PositiveInt $n, Int :$times = 1) {
        $self.count = $self.count + $n * $times;
        return $self.count;
    }

    before add { say String.upcase("adding"); }
}
`

func openCounter(t *testing.T) *API {
	t.Helper()
	api := NewAPI()
	if _, err := api.ParseFile("counter.moops", counterSource); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	return api
}

// positionOf returns the position of the first occurrence of needle on
// line, offset by delta characters
func positionOf(t *testing.T, line int, needle string, delta int) Position {
	t.Helper()
	text := strings.Split(counterSource, "\n")[line]
	i := strings.Index(text, needle)
	if i < 0 {
		t.Fatalf("%q not found on line %d", needle, line)
	}
	return Position{Line: line, Character: i + delta}
}

func labels(items []CompletionItem) map[string]CompletionKind {
	out := make(map[string]CompletionKind, len(items))
	for _, item := range items {
		out[item.Label] = item.Kind
	}
	return out
}

func TestAPICreation(t *testing.T) {
	api := NewAPI()
	if api.documents == nil || api.symbolIndex == nil || api.universe == nil {
		t.Fatal("NewAPI() left state uninitialized")
	}
	if len(api.config.Prelude) != 1 || api.config.Logger == nil {
		t.Errorf("Unexpected default config %+v", api.config)
	}
}

func TestParseFile(t *testing.T) {
	api := openCounter(t)

	doc, ok := api.GetDocument("counter.moops")
	if !ok {
		t.Fatal("Document not cached")
	}
	if doc.AST == nil || len(doc.AST.Classes) != 2 {
		t.Fatalf("Expected 2 classes, got %+v", doc.AST)
	}
	if len(doc.ParseErrors) != 0 {
		t.Errorf("Unexpected parse errors: %v", doc.ParseErrors)
	}
	for _, d := range api.GetDiagnostics("counter.moops") {
		if d.Severity == DiagnosticSeverityError {
			t.Errorf("Unexpected error diagnostic: %+v", d)
		}
	}
}

func TestUpdateDocument(t *testing.T) {
	api := openCounter(t)
	doc, _ := api.GetDocument("counter.moops")

	same, err := api.UpdateDocument("counter.moops", counterSource, 5)
	if err != nil {
		t.Fatalf("UpdateDocument() failed: %v", err)
	}
	if same != doc || same.Version != 5 {
		t.Error("Expected unchanged content to keep the document and bump the version")
	}

	changed, err := api.UpdateDocument("counter.moops", "class Other { }\n", 6)
	if err != nil {
		t.Fatalf("UpdateDocument() failed: %v", err)
	}
	if changed == doc || len(changed.Symbols) != 1 || changed.Symbols[0].Name != "Other" {
		t.Errorf("Expected a reparsed document, got %+v", changed.Symbols)
	}
	if api.symbolIndex.FindDefinition("Counter") != nil {
		t.Error("Expected old symbols to be dropped from the index")
	}
}

func TestGetDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
		line   int
	}{
		{"syntax", "class {\n", "SYN", 0},
		{"unknown parent", "class Dog extends Missing { }\n", "DEC200", 0},
		{"unknown type", "class Box {\n    has size (isa: Huge);\n}\n", "DEC202", 1},
		{"undefined variable", "class A {\n    method m() { return $nope; }\n}\n", "SEM", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := NewAPI()
			if _, err := api.ParseFile("bad.moops", tt.source); err != nil {
				t.Fatalf("ParseFile() failed: %v", err)
			}

			diags := api.GetDiagnostics("bad.moops")
			if len(diags) == 0 {
				t.Fatal("Expected diagnostics")
			}
			d := diags[0]
			if !strings.HasPrefix(d.Code, tt.code) {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, d.Code, d.Message)
			}
			if d.Severity != DiagnosticSeverityError || d.Source != DiagnosticSource {
				t.Errorf("Unexpected diagnostic %+v", d)
			}
			if d.Range.Start.Line != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, d.Range.Start.Line)
			}
			if d.Range.End.Character <= d.Range.Start.Character {
				t.Errorf("Expected a non-empty range, got %+v", d.Range)
			}
		})
	}

	if NewAPI().GetDiagnostics("missing.moops") != nil {
		t.Error("Expected nil diagnostics for an unknown document")
	}
}

func TestDiagnosticsSeeOtherDocuments(t *testing.T) {
	api := NewAPI()
	if _, err := api.ParseFile("animal.moops", "class Animal {\n    has name (is: ro);\n}\n"); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	if _, err := api.ParseFile("dog.moops", "class Dog extends Animal { }\n"); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	for _, d := range api.GetDiagnostics("dog.moops") {
		if d.Severity == DiagnosticSeverityError {
			t.Errorf("Expected the parent from another document to resolve, got %+v", d)
		}
	}

	def, err := api.GetDefinition("dog.moops", Position{Line: 0, Character: 20})
	if err != nil {
		t.Fatalf("GetDefinition() failed: %v", err)
	}
	if def == nil || def.URI != "animal.moops" || def.Range.Start.Character != 6 {
		t.Errorf("Expected Animal in animal.moops, got %+v", def)
	}
}

func TestGetHover(t *testing.T) {
	api := openCounter(t)

	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"class", positionOf(t, 7, "Counter", 2), "class Counter with Describable"},
		{"attribute", positionOf(t, 9, "count", 1), "has count (is: rw, isa: PositiveInt)"},
		{"method", positionOf(t, 11, "add", 0), "method add(PositiveInt $n, Int :$times = ...)"},
		{"type", positionOf(t, 9, "PositiveInt", 3), "Type constraint from"},
		{"builtin", positionOf(t, 16, "upcase", 2), "Converts a string to uppercase"},
		{"role reference", positionOf(t, 7, "Describable", 1), "role Describable"},
		{"modifier", positionOf(t, 16, "add", 0), "Runs around calls to `add`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hover, err := api.GetHover("counter.moops", tt.pos)
			if err != nil {
				t.Fatalf("GetHover() failed: %v", err)
			}
			if hover == nil {
				t.Fatal("Expected hover information")
			}
			if !strings.Contains(hover.Contents, tt.want) {
				t.Errorf("Expected hover to contain %q, got:\n%s", tt.want, hover.Contents)
			}
		})
	}

	hover, err := api.GetHover("counter.moops", Position{Line: 1, Character: 0})
	if err != nil || hover != nil {
		t.Errorf("Expected no hover on a blank line, got %v, %v", hover, err)
	}
	if _, err := api.GetHover("missing.moops", Position{}); err == nil {
		t.Error("Expected an error for an unknown document")
	}
}

func TestGetCompletions(t *testing.T) {
	api := openCounter(t)

	tests := []struct {
		name    string
		pos     Position
		want    []string
		notWant []string
	}{
		{"self members", positionOf(t, 12, "$self.", 6), []string{"count", "name", "add", "describe"}, []string{"class"}},
		{"types", positionOf(t, 9, "isa: ", 5), []string{"PositiveInt", "Int", "Str", "Counter"}, []string{"Describable"}},
		{"access", positionOf(t, 9, "is: ", 4), []string{"ro", "rw", "private"}, nil},
		{"namespace", positionOf(t, 16, "String.", 7), []string{"upcase", "downcase", "length"}, []string{"class"}},
		{"roles", positionOf(t, 7, "with ", 5), []string{"Describable", "Counter"}, nil},
		{"libraries", positionOf(t, 0, "use ", 4), []string{"Types::Standard", "Types::Common::Numeric"}, nil},
		{"top level", Position{Line: 1, Character: 0}, []string{"class", "role", "use", "String"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := api.GetCompletions("counter.moops", tt.pos)
			if err != nil {
				t.Fatalf("GetCompletions() failed: %v", err)
			}
			got := labels(items)
			for _, w := range tt.want {
				if _, ok := got[w]; !ok {
					t.Errorf("Expected completion %q", w)
				}
			}
			for _, w := range tt.notWant {
				if _, ok := got[w]; ok {
					t.Errorf("Did not expect completion %q", w)
				}
			}
		})
	}
}

func TestMemberSnippetsOnlyInsideClasses(t *testing.T) {
	api := openCounter(t)

	hasSnippet := func(pos Position) bool {
		items, _ := api.GetCompletions("counter.moops", pos)
		for _, item := range items {
			if item.Label == "has" && item.Kind == CompletionKindSnippet {
				return true
			}
		}
		return false
	}

	if hasSnippet(Position{Line: 1, Character: 0}) {
		t.Error("Did not expect a has snippet outside a class")
	}
	if !hasSnippet(Position{Line: 10, Character: 0}) {
		t.Error("Expected a has snippet inside a class")
	}
}

func TestGetReferences(t *testing.T) {
	api := openCounter(t)

	refs, err := api.GetReferences("counter.moops", positionOf(t, 11, "add", 1))
	if err != nil {
		t.Fatalf("GetReferences() failed: %v", err)
	}
	if len(refs) != 2 {
		t.Errorf("Expected the method and its modifier, got %+v", refs)
	}

	refs, err = api.GetReferences("counter.moops", Position{Line: 1, Character: 0})
	if err != nil || len(refs) != 0 {
		t.Errorf("Expected no references, got %v, %v", refs, err)
	}
}

func TestCloseDocument(t *testing.T) {
	api := openCounter(t)
	api.CloseDocument("counter.moops")

	if _, ok := api.GetDocument("counter.moops"); ok {
		t.Error("Expected the document to be removed")
	}
	if len(api.GetWorkspaceSymbols("")) != 0 {
		t.Error("Expected the symbols to be removed")
	}
	if _, err := api.GetDocumentSymbols("counter.moops"); err == nil {
		t.Error("Expected an error for a closed document")
	}
}

func BenchmarkParseFile(b *testing.B) {
	api := NewAPI()
	for i := 0; i < b.N; i++ {
		_, _ = api.ParseFile("counter.moops", counterSource)
		api.CloseDocument("counter.moops")
	}
}

func TestGetHoverShowsDocComment(t *testing.T) {
	api := NewAPI()
	source := "# Keeps a running total.\nclass Tally {\n}\n"
	if _, err := api.ParseFile("tally.moops", source); err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}

	hover, err := api.GetHover("tally.moops", Position{Line: 1, Character: 7})
	if err != nil {
		t.Fatalf("GetHover() failed: %v", err)
	}
	if hover == nil || !strings.Contains(hover.Contents, "Keeps a running total.") {
		t.Errorf("Expected the doc comment in hover, got %+v", hover)
	}
}
