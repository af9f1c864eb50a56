package lsp

import (
	"testing"

	"go.lsp.dev/protocol"

	"github.com/moops-lang/moops/internal/tooling"
)

func TestConvertCompletionKind(t *testing.T) {
	tests := []struct {
		name     string
		input    tooling.CompletionKind
		expected protocol.CompletionItemKind
	}{
		{"Keyword", tooling.CompletionKindKeyword, protocol.CompletionItemKindKeyword},
		{"Type", tooling.CompletionKindType, protocol.CompletionItemKindTypeParameter},
		{"Attribute", tooling.CompletionKindAttribute, protocol.CompletionItemKindField},
		{"Method", tooling.CompletionKindMethod, protocol.CompletionItemKindMethod},
		{"Function", tooling.CompletionKindFunction, protocol.CompletionItemKindFunction},
		{"Class", tooling.CompletionKindClass, protocol.CompletionItemKindClass},
		{"Snippet", tooling.CompletionKindSnippet, protocol.CompletionItemKindSnippet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertCompletionKind(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConvertSymbolKind(t *testing.T) {
	tests := []struct {
		name     string
		input    tooling.SymbolKind
		expected protocol.SymbolKind
	}{
		{"Class", tooling.SymbolKindClass, protocol.SymbolKindClass},
		{"Role", tooling.SymbolKindRole, protocol.SymbolKindInterface},
		{"Attribute", tooling.SymbolKindAttribute, protocol.SymbolKindField},
		{"Method", tooling.SymbolKindMethod, protocol.SymbolKindMethod},
		{"Modifier", tooling.SymbolKindModifier, protocol.SymbolKindEvent},
		{"Requirement", tooling.SymbolKindRequirement, protocol.SymbolKindMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := convertSymbolKind(tt.input)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConvertRange(t *testing.T) {
	r := convertRange(tooling.Range{
		Start: tooling.Position{Line: 2, Character: 4},
		End:   tooling.Position{Line: 2, Character: 9},
	})
	if r.Start.Line != 2 || r.Start.Character != 4 || r.End.Character != 9 {
		t.Errorf("Unexpected range %+v", r)
	}
}

func TestNestSymbols(t *testing.T) {
	line := func(n, from, to int) tooling.Range {
		return tooling.Range{
			Start: tooling.Position{Line: n, Character: from},
			End:   tooling.Position{Line: n, Character: to},
		}
	}
	symbols := []*tooling.Symbol{
		{Name: "Speaks", Kind: tooling.SymbolKindRole, Range: line(0, 5, 11)},
		{Name: "sound", Kind: tooling.SymbolKindRequirement, ContainerName: "Speaks", Range: line(1, 13, 18)},
		{Name: "Dog", Kind: tooling.SymbolKindClass, Range: line(3, 6, 9)},
		{Name: "bark", Kind: tooling.SymbolKindMethod, ContainerName: "Dog", Signature: "(Int $times)", Range: line(4, 11, 15)},
		{Name: "stray", Kind: tooling.SymbolKindMethod, ContainerName: "Wolf", Range: line(6, 0, 5)},
	}

	out := nestSymbols(symbols)
	if len(out) != 3 {
		t.Fatalf("Expected 3 top-level symbols, got %d", len(out))
	}

	dog := out[1]
	if len(dog.Children) != 1 || dog.Children[0].Detail != "(Int $times)" {
		t.Fatalf("Unexpected children %+v", dog.Children)
	}
	if dog.Range.Start.Line != 3 || dog.Range.End.Line != 4 || dog.Range.End.Character != 15 {
		t.Errorf("Expected the class range to cover its members, got %+v", dog.Range)
	}
	if dog.SelectionRange.End.Line != 3 {
		t.Errorf("Expected the selection to stay on the name, got %+v", dog.SelectionRange)
	}
	if out[2].Name != "stray" {
		t.Errorf("Expected members of unknown classes at the top level, got %s", out[2].Name)
	}
}
