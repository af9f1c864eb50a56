package tooling

import (
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/compiler/stdlib"
)

// buildHover creates hover information for a declaration
func (a *API) buildHover(symbol *Symbol) *Hover {
	var content strings.Builder

	content.WriteString("```moops\n")
	switch symbol.Kind {
	case SymbolKindMethod:
		content.WriteString("method " + symbol.Name + symbol.Signature)
	default:
		content.WriteString(symbol.Detail)
	}
	content.WriteString("\n```\n\n")

	if symbol.Doc != "" {
		content.WriteString(symbol.Doc + "\n\n")
	}
	if symbol.ContainerName != "" {
		fmt.Fprintf(&content, "*Declared in:* `%s`\n\n", symbol.ContainerName)
	}

	switch symbol.Kind {
	case SymbolKindAttribute:
		if symbol.Type != "" {
			content.WriteString("---\n\n")
			fmt.Fprintf(&content, "Values must satisfy `%s`%s\n", symbol.Type, a.libraryNote(symbol.Type))
		}
	case SymbolKindModifier:
		content.WriteString("---\n\n")
		fmt.Fprintf(&content, "Runs around calls to `%s`\n", symbol.Name)
	case SymbolKindRequirement:
		content.WriteString("---\n\n")
		content.WriteString("Classes composing this role must provide this method\n")
	}

	return &Hover{
		Contents: content.String(),
		Range:    symbol.Range,
	}
}

// hoverWord describes a name used at pos: a class or role declared in an
// open document, a type constraint, or a built-in function.
func (a *API) hoverWord(doc *Document, pos Position) *Hover {
	word, start := wordAt(splitLines(doc.Content), pos)
	if word == "" {
		return nil
	}
	rng := Range{Start: start, End: Position{Line: start.Line, Character: start.Character + len(word)}}

	if ns, fn, ok := strings.Cut(word, "."); ok {
		if def, found := stdlib.Lookup(ns, fn); found {
			return &Hover{
				Contents: fmt.Sprintf("```moops\n%s.%s\n```\n\n%s\n", ns, def.Signature, def.Description),
				Range:    rng,
			}
		}
		word = word[strings.LastIndex(word, ".")+1:]
	}

	if def := a.symbolIndex.FindDefinition(word); def != nil {
		return &Hover{Contents: a.buildHover(def.Symbol).Contents, Range: rng}
	}

	if lib := a.libraryOf(word); lib != "" {
		return &Hover{
			Contents: fmt.Sprintf("```moops\n%s\n```\n\nType constraint from `%s`\n", word, lib),
			Range:    rng,
		}
	}
	if _, ok := a.universe.Library(word); ok {
		return &Hover{
			Contents: fmt.Sprintf("```moops\nuse %s;\n```\n\nType library\n", word),
			Range:    rng,
		}
	}
	return nil
}

// libraryOf returns the first library exporting name
func (a *API) libraryOf(name string) string {
	for _, libName := range a.universe.Names() {
		lib, _ := a.universe.Library(libName)
		if _, ok := lib.Lookup(name); ok {
			return libName
		}
	}
	return ""
}

func (a *API) libraryNote(typeText string) string {
	base := typeText
	if i := strings.IndexAny(base, "[|"); i >= 0 {
		base = base[:i]
	}
	if lib := a.libraryOf(strings.TrimSpace(base)); lib != "" {
		return fmt.Sprintf(" from `%s`", lib)
	}
	return ""
}
