package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

func newCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	pc, err := NewProgramCache(16)
	if err != nil {
		t.Fatalf("NewProgramCache() error = %v", err)
	}
	return NewCoordinator(pc, nil)
}

func TestCoordinator_ParseFilesInLoadOrder(t *testing.T) {
	dir := t.TempDir()
	child := createTestFile(t, dir, "a_child.moops", `class Child extends Parent { }`)
	parent := createTestFile(t, dir, "z_parent.moops", `class Parent { has name (is: rw); }`)

	co := newCoordinator(t)
	results, metrics, err := co.ParseFiles([]string{child, parent})
	if err != nil {
		t.Fatalf("ParseFiles() error = %v", err)
	}

	if len(results) != 2 || results[0].Path != parent || results[1].Path != child {
		t.Fatalf("Expected parent before child, got %s, %s", results[0].Path, results[1].Path)
	}
	for _, r := range results {
		if !r.OK() {
			t.Errorf("%s: unexpected errors %v %v", r.Path, r.Err, r.Errors)
		}
	}
	if metrics.CacheMisses != 2 || metrics.CacheHits != 0 {
		t.Errorf("Expected 2 misses on first parse, got %+v", metrics)
	}

	_, metrics, _ = co.ParseFiles([]string{child, parent})
	if metrics.CacheHits != 2 {
		t.Errorf("Expected 2 hits on second parse, got %+v", metrics)
	}
	if metrics.CacheHitRate() != 100.0 {
		t.Errorf("CacheHitRate() = %v", metrics.CacheHitRate())
	}
}

func TestCoordinator_ReportsErrorsPerFile(t *testing.T) {
	dir := t.TempDir()
	good := createTestFile(t, dir, "good.moops", `class Good { }`)
	bad := createTestFile(t, dir, "bad.moops", `class { }`)
	missing := filepath.Join(dir, "missing.moops")

	results, _, err := newCoordinator(t).ParseFiles([]string{good, bad, missing})
	if err != nil {
		t.Fatalf("ParseFiles() error = %v", err)
	}

	byPath := map[string]*Result{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	if !byPath[good].OK() {
		t.Error("Expected good.moops to parse")
	}
	if len(byPath[bad].Errors) == 0 {
		t.Error("Expected parse errors for bad.moops")
	}
	if byPath[missing].Err == nil {
		t.Error("Expected a read error for missing.moops")
	}
}

func TestCoordinator_Cycle(t *testing.T) {
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.moops", `class A extends B { }`)
	b := createTestFile(t, dir, "b.moops", `class B extends A { }`)

	results, _, err := newCoordinator(t).ParseFiles([]string{b, a})
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("Expected CycleError, got %v", err)
	}
	if len(results) != 2 || results[0].Path != a {
		t.Errorf("Expected results sorted by path on cycle")
	}
}

func TestCoordinator_InvalidateFile(t *testing.T) {
	dir := t.TempDir()
	base := createTestFile(t, dir, "base.moops", `class Base { }`)
	mid := createTestFile(t, dir, "mid.moops", `class Mid extends Base { }`)
	leaf := createTestFile(t, dir, "leaf.moops", `class Leaf extends Mid { }`)

	co := newCoordinator(t)
	if _, _, err := co.ParseFiles([]string{base, mid, leaf}); err != nil {
		t.Fatalf("ParseFiles() error = %v", err)
	}

	invalidated := co.InvalidateFile(base)
	if len(invalidated) != 3 || invalidated[0] != base {
		t.Errorf("Expected base and its dependents, got %v", invalidated)
	}

	_, metrics, _ := co.ParseFiles([]string{base})
	if metrics.CacheMisses != 1 {
		t.Errorf("Expected invalidated file to be parsed again, got %+v", metrics)
	}

	co.Forget(leaf)
	if co.Dependencies().Size() != 2 {
		t.Errorf("Expected leaf to be removed from the graph")
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "b.moops", "")
	createTestFile(t, dir, "a.moops", "")
	createTestFile(t, dir, "lib/c.moops", "")
	createTestFile(t, dir, "notes.txt", "")
	createTestFile(t, dir, ".hidden/d.moops", "")

	files, err := ScanDirectory(dir)
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.moops"),
		filepath.Join(dir, "b.moops"),
		filepath.Join(dir, "lib", "c.moops"),
	}
	if len(files) != len(want) {
		t.Fatalf("ScanDirectory() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}
