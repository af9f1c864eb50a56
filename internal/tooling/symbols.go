package tooling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/moops-lang/moops/internal/compiler/ast"
)

// SymbolIndex maintains a searchable index of all symbols across documents
type SymbolIndex struct {
	// symbols maps symbol name to all declarations
	symbols map[string][]*IndexedSymbol
	mutex   sync.RWMutex
}

// IndexedSymbol represents a symbol with its location
type IndexedSymbol struct {
	URI   string
	Range Range
	*Symbol
}

// NewSymbolIndex creates a new symbol index
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]*IndexedSymbol),
	}
}

// Index replaces the symbols of a document
func (si *SymbolIndex) Index(uri string, symbols []*Symbol) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)

	for _, sym := range symbols {
		si.symbols[sym.Name] = append(si.symbols[sym.Name], &IndexedSymbol{
			URI:    uri,
			Range:  sym.Range,
			Symbol: sym,
		})
	}
}

// RemoveDocument removes all symbols from a document
func (si *SymbolIndex) RemoveDocument(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)
}

func (si *SymbolIndex) removeDocumentLocked(uri string) {
	for name, syms := range si.symbols {
		filtered := make([]*IndexedSymbol, 0, len(syms))
		for _, sym := range syms {
			if sym.URI != uri {
				filtered = append(filtered, sym)
			}
		}
		if len(filtered) > 0 {
			si.symbols[name] = filtered
		} else {
			delete(si.symbols, name)
		}
	}
}

// FindDefinition finds the declaration of a name, preferring classes and
// roles over members
func (si *SymbolIndex) FindDefinition(name string) *IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	syms, ok := si.symbols[name]
	if !ok || len(syms) == 0 {
		return nil
	}

	for _, sym := range syms {
		if sym.Kind == SymbolKindClass || sym.Kind == SymbolKindRole {
			return sym
		}
	}
	return syms[0]
}

// FindReferences finds every declaration of a name
func (si *SymbolIndex) FindReferences(name string) []Location {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	syms, ok := si.symbols[name]
	if !ok {
		return nil
	}

	locations := make([]Location, len(syms))
	for i, sym := range syms {
		locations[i] = Location{URI: sym.URI, Range: sym.Range}
	}
	return locations
}

// Classes returns the class and role symbols of every document, sorted by
// name
func (si *SymbolIndex) Classes() []*IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	var out []*IndexedSymbol
	for _, syms := range si.symbols {
		for _, sym := range syms {
			if sym.Kind == SymbolKindClass || sym.Kind == SymbolKindRole {
				out = append(out, sym)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SearchSymbols searches for symbols matching a query across all
// documents. Matching is a case-insensitive substring test; results are
// sorted by name.
func (si *SymbolIndex) SearchSymbols(query string) []*IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	query = strings.ToLower(query)
	result := make([]*IndexedSymbol, 0)
	for name, syms := range si.symbols {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			result = append(result, syms...)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].URI < result[j].URI
	})
	return result
}

// extractSymbols extracts all declarations from a document's AST
func extractSymbols(doc *Document) []*Symbol {
	if doc.AST == nil {
		return nil
	}

	lines := splitLines(doc.Content)
	symbols := make([]*Symbol, 0)
	for _, class := range doc.AST.Classes {
		symbols = append(symbols, classSymbols(lines, class)...)
	}
	return symbols
}

func classSymbols(lines []string, class *ast.ClassNode) []*Symbol {
	kind := SymbolKindClass
	if class.IsRole() {
		kind = SymbolKindRole
	}

	detail := class.Kind + " " + class.Name
	if class.Extends != "" {
		detail += " extends " + class.Extends
	}
	if len(class.With) > 0 {
		detail += " with " + strings.Join(class.With, ", ")
	}

	symbols := []*Symbol{{
		Name:   class.Name,
		Kind:   kind,
		Range:  nameRange(lines, class.Loc, class.Name),
		Detail: detail,
		Doc:    class.Documentation,
	}}

	for _, attr := range class.Attributes {
		symbols = append(symbols, &Symbol{
			Name:          attr.Name,
			Kind:          SymbolKindAttribute,
			Range:         nameRange(lines, attr.Loc, attr.Name),
			Type:          attr.Isa.String(),
			ContainerName: class.Name,
			Detail:        attributeDetail(attr),
		})
	}

	for _, m := range class.Methods {
		sig := signature(m.Params)
		symbols = append(symbols, &Symbol{
			Name:          m.Name,
			Kind:          SymbolKindMethod,
			Range:         nameRange(lines, m.Loc, m.Name),
			ContainerName: class.Name,
			Signature:     sig,
			Detail:        "method " + m.Name + sig,
		})
	}

	for _, mod := range class.Modifiers {
		symbols = append(symbols, &Symbol{
			Name:          mod.Method,
			Kind:          SymbolKindModifier,
			Range:         nameRange(lines, mod.Loc, mod.Method),
			ContainerName: class.Name,
			Detail:        mod.Kind + " " + mod.Method,
		})
	}

	for _, req := range class.Requires {
		symbols = append(symbols, &Symbol{
			Name:          req,
			Kind:          SymbolKindRequirement,
			Range:         requireRange(lines, class, req),
			ContainerName: class.Name,
			Detail:        "requires " + req,
		})
	}

	return symbols
}

func attributeDetail(attr *ast.AttributeNode) string {
	var opts []string
	if attr.Is != "" {
		opts = append(opts, "is: "+attr.Is)
	}
	if attr.Isa != nil {
		opts = append(opts, "isa: "+attr.Isa.Text)
	}
	if attr.Required {
		opts = append(opts, "required: true")
	}
	if attr.Builder != "" {
		opts = append(opts, "builder: "+attr.Builder)
	}
	if attr.Trigger != "" {
		opts = append(opts, "trigger: "+attr.Trigger)
	}
	if len(opts) == 0 {
		return "has " + attr.Name
	}
	return fmt.Sprintf("has %s (%s)", attr.Name, strings.Join(opts, ", "))
}

// signature renders parameters the way they are written
func signature(params []*ast.ParamNode) string {
	parts := make([]string, len(params))
	for i, p := range params {
		var sb strings.Builder
		if p.Type != nil {
			sb.WriteString(p.Type.Text)
			sb.WriteString(" ")
		}
		if p.Named {
			sb.WriteString(":")
		}
		sb.WriteString("$")
		sb.WriteString(p.Name)
		switch {
		case p.Required:
			sb.WriteString("!")
		case p.Optional:
			sb.WriteString("?")
		}
		if p.Default != nil {
			sb.WriteString(" = ...")
		}
		parts[i] = sb.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// nameRange finds name on the line of loc at or after its column. Keywords
// come first in declarations, so the name is rarely at loc itself.
func nameRange(lines []string, loc ast.SourceLocation, name string) Range {
	line := loc.Line - 1
	col := max(loc.Column-1, 0)
	if line >= 0 && line < len(lines) && col <= len(lines[line]) {
		if i := indexWord(lines[line][col:], name); i >= 0 {
			col += i
		}
	}
	line = max(line, 0)
	return Range{
		Start: Position{Line: line, Character: col},
		End:   Position{Line: line, Character: col + len(name)},
	}
}

// requireRange finds req in a requires line of class
func requireRange(lines []string, class *ast.ClassNode, req string) Range {
	last := class.End.Line
	if last < class.Loc.Line {
		last = len(lines)
	}
	for l := class.Loc.Line; l <= last && l <= len(lines); l++ {
		text := lines[l-1]
		if indexWord(text, "requires") < 0 {
			continue
		}
		if i := indexWord(text, req); i >= 0 {
			return Range{
				Start: Position{Line: l - 1, Character: i},
				End:   Position{Line: l - 1, Character: i + len(req)},
			}
		}
	}
	return nameRange(lines, class.Loc, class.Name)
}

// indexWord returns the offset of name in s as a whole word, or -1
func indexWord(s, name string) int {
	for from := 0; ; {
		i := strings.Index(s[from:], name)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(name)
		if (i == 0 || !isWordChar(rune(s[i-1]))) && (end == len(s) || !isWordChar(rune(s[end]))) {
			return i
		}
		from = i + 1
	}
}

// findSymbolAtPosition finds the declaration whose name is under pos
func findSymbolAtPosition(doc *Document, pos Position) *Symbol {
	for _, sym := range doc.Symbols {
		if positionInRange(pos, sym.Range) {
			return sym
		}
	}
	return nil
}

// positionInRange checks if a position is within a range
func positionInRange(pos Position, r Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

func isWordChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordAt returns the identifier under pos and where it starts. A
// qualified name such as Types::Standard or String.upcase is returned
// whole.
func wordAt(lines []string, pos Position) (string, Position) {
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", pos
	}
	line := lines[pos.Line]
	if pos.Character > len(line) {
		return "", pos
	}

	inWord := func(i int) bool {
		c := rune(line[i])
		return isWordChar(c) || c == ':' || c == '.'
	}
	start, end := pos.Character, pos.Character
	for start > 0 && inWord(start-1) {
		start--
	}
	for end < len(line) && inWord(end) {
		end++
	}
	word := strings.Trim(line[start:end], ":.")
	if word == "" {
		return "", pos
	}
	start += strings.Index(line[start:end], word)
	return word, Position{Line: pos.Line, Character: start}
}

// wordEnd returns the end of the word starting at pos, or one character
// past pos when there is none
func wordEnd(lines []string, pos Position) Position {
	end := pos.Character + 1
	if pos.Line < len(lines) {
		line := lines[pos.Line]
		i := pos.Character
		for i < len(line) && (isWordChar(rune(line[i])) || line[i] == '$') {
			i++
		}
		if i > pos.Character {
			end = i
		}
	}
	return Position{Line: pos.Line, Character: end}
}
