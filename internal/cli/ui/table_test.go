package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Attribute", "Access", "Type"}, &TableOptions{NoColor: true})
	table.AddRow("num", "rw", "PositiveInt")
	table.AddRow("history", "private", "ArrayRef[Num]")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator and two rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Attribute  Access   Type") {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "─") {
		t.Errorf("Expected a separator, got %q", lines[1])
	}
	// Columns line up under the header
	if strings.Index(lines[2], "rw") != strings.Index(lines[0], "Access") {
		t.Errorf("Misaligned row %q", lines[2])
	}
	if strings.Index(lines[3], "ArrayRef") != strings.Index(lines[0], "Type") {
		t.Errorf("Misaligned row %q", lines[3])
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf, []string{}, nil).Render()
	if buf.Len() != 0 {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Kind", "class")
	kv.AddRow("Extends", "Calculator")
	kv.Render()

	want := "Kind:    class\nExtends: Calculator\n"
	if buf.String() != want {
		t.Errorf("Unexpected output %q, want %q", buf.String(), want)
	}

	buf.Reset()
	NewKeyValueTable(&buf, true).Render()
	if buf.Len() != 0 {
		t.Errorf("Expected no output for an empty table, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	section := NewSection(&buf, "Methods", true)
	section.AddLine("add(PositiveInt $n)")
	section.Render()

	if buf.String() != "Methods\n  add(PositiveInt $n)\n\n" {
		t.Errorf("Unexpected section %q", buf.String())
	}

	buf.Reset()
	NewSection(&buf, "Modifiers", true).Render()
	if buf.Len() != 0 {
		t.Errorf("Expected empty sections to be skipped, got %q", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Calculator", true)
	if buf.String() != "Calculator\n"+strings.Repeat("─", 10)+"\n" {
		t.Errorf("Unexpected header %q", buf.String())
	}
}

func TestDividerDefaultWidth(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 0, true)
	if got := strings.Count(buf.String(), "─"); got != 80 {
		t.Errorf("Expected 80 characters, got %d", got)
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ro", 4, "ro  "},
		{"private", 3, "private"},
		{"→x", 3, "→x "},
	}
	for _, tt := range tests {
		if got := padRight(tt.in, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
