package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/metadata"
)

func testMetadata() *metadata.Metadata {
	return &metadata.Metadata{
		Version: "test",
		Classes: []metadata.ClassMetadata{
			{
				Name:     "Animal",
				Kind:     "class",
				Doc:      "Anything alive.\nMostly furry.",
				FilePath: "lib/zoo.moops",
				Line:     8,
				Attributes: []metadata.AttributeMetadata{
					{Name: "name", Access: "ro", Type: "Str", Required: true, Owner: "Animal"},
				},
			},
			{
				Name:     "Dog",
				Kind:     "class",
				Parent:   "Animal",
				Lineage:  []string{"Dog", "Animal"},
				Roles:    []string{"Speaks"},
				FilePath: "lib/zoo.moops",
				Line:     12,
				Attributes: []metadata.AttributeMetadata{
					{Name: "name", Access: "ro", Type: "Str", Required: true, Owner: "Animal"},
					{Name: "tricks", Access: "rw", Type: "Int|Str", Default: "0", Owner: "Dog"},
				},
				Methods: []metadata.MethodMetadata{
					{Name: "sound", Signature: "()", Owner: "Dog"},
					{
						Name:      "speak",
						Signature: "(Int :$times = 1)",
						Owner:     "Speaks",
						Params: []metadata.ParamMetadata{
							{Name: "$times", Type: "Int", Named: true, Optional: true, Default: "1"},
						},
					},
				},
				Modifiers: []metadata.ModifierMetadata{
					{Kind: "before", Method: "speak", Owner: "Dog"},
				},
			},
			{
				Name:     "Speaks",
				Kind:     "role",
				Doc:      "Makes noise.",
				Requires: []string{"sound"},
			},
		},
		Libraries: []metadata.LibraryMetadata{
			{Name: "Types::Standard", Types: []string{"Int", "Str"}},
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestGenerateWritesPages(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	gen := NewGenerator(&Config{ProjectName: "zoo", ProjectVersion: "1.2.0", OutputDir: dir})

	written, err := gen.Generate(testMetadata())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := []string{"README.md", "animal.md", "dog.md", "speaks.md"}
	if len(written) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), written)
	}
	for i, name := range want {
		if filepath.Base(written[i]) != name {
			t.Errorf("file %d: expected %s, got %s", i, name, written[i])
		}
	}

	readme := readFile(t, filepath.Join(dir, "README.md"))
	for _, expected := range []string{
		"# zoo Class Reference",
		"**Version:** v1.2.0",
		"| [Animal](animal.md) | - | - | Anything alive. |",
		"| [Dog](dog.md) | [Animal](animal.md) | [Speaks](speaks.md) |",
		"| [Speaks](speaks.md) | `sound` | Makes noise. |",
		"- `Types::Standard`: `Int`, `Str`",
	} {
		if !strings.Contains(readme, expected) {
			t.Errorf("README missing %q:\n%s", expected, readme)
		}
	}
	if strings.Contains(readme, "Mostly furry") {
		t.Error("index should only carry the first doc line")
	}
}

func TestClassPage(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewGenerator(&Config{OutputDir: dir}).Generate(testMetadata()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	animal := readFile(t, filepath.Join(dir, "animal.md"))
	if !strings.Contains(animal, "> Anything alive.\n> Mostly furry.\n") {
		t.Errorf("expected quoted documentation, got:\n%s", animal)
	}
	if !strings.Contains(animal, "No methods.") {
		t.Errorf("expected empty method section, got:\n%s", animal)
	}

	dog := readFile(t, filepath.Join(dir, "dog.md"))
	for _, expected := range []string{
		"**Extends:** [Animal](animal.md)",
		"**Lineage:** Dog → Animal",
		"**Declared in:** `lib/zoo.moops:12`",
		"| `name` | ro | Str | Yes | - | Animal |",
		`| ` + "`tricks`" + ` | rw | Int\|Str | No | 0 | Dog |`,
		"method speak(Int :$times = 1)",
		"Inherited from [Speaks](speaks.md).",
		"| `$times` | Int | named, optional | 1 |",
		"- `before speak` from Dog",
	} {
		if !strings.Contains(dog, expected) {
			t.Errorf("dog.md missing %q:\n%s", expected, dog)
		}
	}
}

func TestGenerateDefaultsAndErrors(t *testing.T) {
	if _, err := NewGenerator(&Config{}).Generate(testMetadata()); err == nil {
		t.Error("expected error without an output directory")
	}
	if _, err := NewGenerator(&Config{OutputDir: t.TempDir()}).Generate(nil); err == nil {
		t.Error("expected error without metadata")
	}

	dir := t.TempDir()
	if _, err := NewGenerator(&Config{OutputDir: dir}).Generate(&metadata.Metadata{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	readme := readFile(t, filepath.Join(dir, "README.md"))
	for _, expected := range []string{"# moops Class Reference", "No classes declared.", "No roles declared."} {
		if !strings.Contains(readme, expected) {
			t.Errorf("README missing %q:\n%s", expected, readme)
		}
	}
}

func TestPageName(t *testing.T) {
	tests := map[string]string{
		"Dog":          "dog.md",
		"Zoo::Keeper":  "zoo-keeper.md",
		"A::B::Animal": "a-b-animal.md",
	}
	for in, want := range tests {
		if got := pageName(in); got != want {
			t.Errorf("pageName(%q) = %q, want %q", in, got, want)
		}
	}
}
