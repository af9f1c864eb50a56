package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/types"
	"github.com/moops-lang/moops/pkg/moops"
)

const source = `use Types::Common::Numeric (PositiveInt);

role Describable {
    requires name;
    method describe() { return "I am " ~ $self.name; }
}

# A calculator that remembers its total.
class Calculator with Describable {
    has num (is: rw, isa: PositiveInt, default: 1);
    has name (is: ro, default: "calc");
    has memo (is: private);

    method add(PositiveInt $addition, Int :$times = 1) {
        $self.num = $self.num + $addition * $times;
        return $self.num;
    }

    before add { say "adding"; }
}

class Scientific extends Calculator {
    method add(PositiveInt $addition, Int :$times = 1) { return super; }
}
`

func extract(t *testing.T) *Metadata {
	t.Helper()

	env, err := moops.New(moops.WithOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := env.LoadString("calc.moops", source); err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	prog, errs := parser.ParseSource("calc.moops", source)
	if len(errs) > 0 {
		t.Fatalf("Parse errors: %v", errs)
	}

	e := NewExtractor("test")
	e.AddProgram(prog)
	meta := e.ExtractRegistry(env.Registry())
	meta.Libraries = ExtractLibraries(env.Universe())
	return meta
}

func TestExtractClasses(t *testing.T) {
	meta := extract(t)

	if got := meta.ClassNames(); !reflect.DeepEqual(got, []string{"Calculator", "Describable", "Scientific"}) {
		t.Fatalf("Unexpected classes %v", got)
	}

	calc, ok := meta.Class("Calculator")
	if !ok {
		t.Fatal("Calculator missing")
	}
	if calc.Kind != "class" || calc.FilePath != "calc.moops" || calc.Line != 9 {
		t.Errorf("Unexpected header %s %s:%d", calc.Kind, calc.FilePath, calc.Line)
	}
	if calc.Doc != "A calculator that remembers its total." {
		t.Errorf("Unexpected doc %q", calc.Doc)
	}
	if !reflect.DeepEqual(calc.Roles, []string{"Describable"}) {
		t.Errorf("Expected role Describable, got %v", calc.Roles)
	}

	num, ok := calc.Attribute("num")
	if !ok {
		t.Fatal("num missing")
	}
	if num.Access != "rw" || num.Type != "PositiveInt" || num.Default != "1" || num.Owner != "Calculator" {
		t.Errorf("Unexpected num metadata %+v", num)
	}
	memo, _ := calc.Attribute("memo")
	if memo == nil || memo.Access != "private" {
		t.Errorf("Expected private memo, got %+v", memo)
	}

	add, ok := calc.Method("add")
	if !ok {
		t.Fatal("add missing")
	}
	if add.Signature != "(PositiveInt $addition, Int :$times = 1)" {
		t.Errorf("Unexpected signature %q", add.Signature)
	}
	if len(add.Params) != 2 || !add.Params[1].Named || add.Params[1].Default != "1" {
		t.Errorf("Unexpected params %+v", add.Params)
	}
	if _, ok := calc.Method("num"); ok {
		t.Error("Accessors should not be listed as methods")
	}

	describe, _ := calc.Method("describe")
	if describe == nil || describe.Owner != "Describable" {
		t.Errorf("Expected describe owned by the role, got %+v", describe)
	}

	if len(calc.Modifiers) != 1 || calc.Modifiers[0].Kind != "before" || calc.Modifiers[0].Method != "add" {
		t.Errorf("Unexpected modifiers %+v", calc.Modifiers)
	}
}

func TestExtractInheritance(t *testing.T) {
	meta := extract(t)

	sci, _ := meta.Class("Scientific")
	if sci.Parent != "Calculator" || !reflect.DeepEqual(sci.Lineage, []string{"Calculator"}) {
		t.Errorf("Unexpected lineage %q %v", sci.Parent, sci.Lineage)
	}
	add, _ := sci.Method("add")
	if add.Owner != "Scientific" || add.Overrides != "Calculator" {
		t.Errorf("Unexpected override %+v", add)
	}

	role, _ := meta.Class("Describable")
	if role.Kind != "role" || !reflect.DeepEqual(role.Requires, []string{"name"}) {
		t.Errorf("Unexpected role %+v", role)
	}
}

func TestExtractLibraries(t *testing.T) {
	meta := extract(t)

	var numeric *LibraryMetadata
	for i := range meta.Libraries {
		if meta.Libraries[i].Name == types.NumericLibrary {
			numeric = &meta.Libraries[i]
		}
	}
	if numeric == nil {
		t.Fatalf("Expected %s in %v", types.NumericLibrary, meta.Libraries)
	}
	found := false
	for _, name := range numeric.Types {
		if name == "PositiveInt" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected PositiveInt in %v", numeric.Types)
	}
}

func TestSourceHashIsStable(t *testing.T) {
	a := extract(t)
	b := extract(t)
	if a.SourceHash == "" || a.SourceHash != b.SourceHash {
		t.Errorf("Expected equal hashes, got %q and %q", a.SourceHash, b.SourceHash)
	}

	b.Classes = b.Classes[:1]
	if computeHash(b.Classes) == a.SourceHash {
		t.Error("Expected the hash to change with the class set")
	}
}

func TestSerializeFormats(t *testing.T) {
	meta := extract(t)

	data, err := Serialize(meta)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	back, err := FromJSON(string(data))
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !reflect.DeepEqual(back.ClassNames(), meta.ClassNames()) {
		t.Errorf("JSON lost classes: %v", back.ClassNames())
	}

	data, err = SerializeYAML(meta)
	if err != nil {
		t.Fatalf("SerializeYAML failed: %v", err)
	}
	if !strings.Contains(string(data), "name: Calculator") {
		t.Errorf("Unexpected YAML:\n%s", data)
	}
	back, err = FromYAML(data)
	if err != nil {
		t.Fatalf("FromYAML failed: %v", err)
	}
	if back.SourceHash != meta.SourceHash {
		t.Errorf("YAML lost the hash")
	}

	if _, err := Serialize(nil); err == nil {
		t.Error("Expected an error for nil metadata")
	}
}

func TestWriteToFile(t *testing.T) {
	meta := extract(t)
	dir := t.TempDir()

	for _, name := range []string{"out/meta.json", "out/meta.yaml"} {
		path := filepath.Join(dir, name)
		if err := WriteToFile(meta, path); err != nil {
			t.Fatalf("WriteToFile(%s) failed: %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		isJSON := strings.HasPrefix(string(data), "{")
		if isJSON != strings.HasSuffix(name, ".json") {
			t.Errorf("%s written in the wrong format", name)
		}
	}

	if err := WriteToFile(meta, ""); err == nil {
		t.Error("Expected an error for an empty path")
	}
}
