package tooling

import (
	"regexp"
	"sort"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/lexer"
	"github.com/moops-lang/moops/internal/compiler/stdlib"
)

// CompletionContext describes the context at a completion position
type CompletionContext struct {
	Kind CompletionContextKind

	// Namespace is the built-in namespace before a dot, e.g. "String"
	Namespace string

	// Class is the class or role enclosing the position, if any
	Class *ast.ClassNode
}

// CompletionContextKind categorizes the completion context
type CompletionContextKind int

const (
	// CompletionContextUnknown represents an unknown context
	CompletionContextUnknown CompletionContextKind = iota
	// CompletionContextKeyword is the start of a declaration or statement
	CompletionContextKeyword
	// CompletionContextType follows isa: or starts a parameter
	CompletionContextType
	// CompletionContextAccess follows is:
	CompletionContextAccess
	// CompletionContextNamespace follows a built-in namespace and a dot
	CompletionContextNamespace
	// CompletionContextSelf follows $self.
	CompletionContextSelf
	// CompletionContextClass follows extends or with
	CompletionContextClass
	// CompletionContextLibrary follows use
	CompletionContextLibrary
)

var (
	isaContext    = regexp.MustCompile(`isa:\s*[\w:\[\], |]*$`)
	accessContext = regexp.MustCompile(`\bis:\s*\w*$`)
	selfContext   = regexp.MustCompile(`\$self\.\w*$`)
	classContext  = regexp.MustCompile(`\b(extends|with)\s+(\w+\s*,\s*)*\w*$`)
	useContext    = regexp.MustCompile(`^\s*use\s+[\w:]*$`)
	nsContext     = regexp.MustCompile(`\b([A-Z]\w*)\.\w*$`)
	paramContext  = regexp.MustCompile(`\bmethod\s+\w+\s*\(([^)]*,)?\s*[\w:\[\]]*$`)
)

var accessSnippets = []struct{ name, detail string }{
	{"ro", "Read-only accessor"},
	{"rw", "Read-write accessor"},
	{"private", "No accessor; only reachable from the declaring class"},
}

// getCompletionContext determines the completion context at a position
func (a *API) getCompletionContext(doc *Document, pos Position) *CompletionContext {
	lines := splitLines(doc.Content)
	if pos.Line >= len(lines) {
		return &CompletionContext{Kind: CompletionContextUnknown}
	}

	line := lines[pos.Line]
	if pos.Character > len(line) {
		pos.Character = len(line)
	}
	prefix := line[:pos.Character]
	ctx := &CompletionContext{Class: enclosingClass(doc, pos)}

	switch {
	case selfContext.MatchString(prefix):
		ctx.Kind = CompletionContextSelf
	case isaContext.MatchString(prefix), paramContext.MatchString(prefix):
		ctx.Kind = CompletionContextType
	case accessContext.MatchString(prefix):
		ctx.Kind = CompletionContextAccess
	case classContext.MatchString(prefix):
		ctx.Kind = CompletionContextClass
	case useContext.MatchString(prefix):
		ctx.Kind = CompletionContextLibrary
	default:
		if m := nsContext.FindStringSubmatch(prefix); m != nil && stdlib.GetFunctions(m[1]) != nil {
			ctx.Kind = CompletionContextNamespace
			ctx.Namespace = m[1]
		} else {
			ctx.Kind = CompletionContextKeyword
		}
	}
	return ctx
}

// enclosingClass returns the class whose braces contain pos
func enclosingClass(doc *Document, pos Position) *ast.ClassNode {
	if doc.AST == nil {
		return nil
	}
	line := pos.Line + 1
	for _, c := range doc.AST.Classes {
		if line >= c.Loc.Line && (c.End.Line == 0 || line <= c.End.Line) {
			return c
		}
	}
	return nil
}

// buildCompletions builds completion items based on context
func (a *API) buildCompletions(doc *Document, ctx *CompletionContext) []CompletionItem {
	switch ctx.Kind {
	case CompletionContextType:
		return append(a.getTypeCompletions(), a.getClassCompletions(false)...)
	case CompletionContextAccess:
		return getAccessCompletions()
	case CompletionContextNamespace:
		return getNamespaceCompletions(ctx.Namespace)
	case CompletionContextSelf:
		return a.getMemberCompletions(doc, ctx.Class)
	case CompletionContextClass:
		return a.getClassCompletions(true)
	case CompletionContextLibrary:
		return a.getLibraryCompletions()
	case CompletionContextKeyword:
		items := getKeywordCompletions(ctx.Class != nil)
		items = append(items, getNamespaceNames()...)
		return append(items, a.getClassCompletions(false)...)
	default:
		return nil
	}
}

// getTypeCompletions returns every type constraint of the built-in
// libraries
func (a *API) getTypeCompletions() []CompletionItem {
	seen := make(map[string]bool)
	var items []CompletionItem
	for _, libName := range a.universe.Names() {
		lib, _ := a.universe.Library(libName)
		for _, name := range lib.Names() {
			if seen[name] {
				continue
			}
			seen[name] = true
			items = append(items, CompletionItem{
				Label:  name,
				Kind:   CompletionKindType,
				Detail: libName,
			})
		}
	}
	return items
}

func getAccessCompletions() []CompletionItem {
	items := make([]CompletionItem, len(accessSnippets))
	for i, s := range accessSnippets {
		items[i] = CompletionItem{Label: s.name, Kind: CompletionKindKeyword, Detail: s.detail}
	}
	return items
}

// getKeywordCompletions returns keywords and declaration snippets.
// Member declarations are only offered inside a class body.
func getKeywordCompletions(inClass bool) []CompletionItem {
	keywords := make([]string, 0, len(lexer.Keywords))
	for kw := range lexer.Keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	items := make([]CompletionItem, 0, len(keywords)+6)
	for _, kw := range keywords {
		items = append(items, CompletionItem{
			Label:    kw,
			Kind:     CompletionKindKeyword,
			SortText: "1" + kw,
		})
	}

	snippets := []CompletionItem{
		{Label: "class", Detail: "Class declaration", InsertText: "class ${1:Name} {\n\t$0\n}"},
		{Label: "role", Detail: "Role declaration", InsertText: "role ${1:Name} {\n\t$0\n}"},
		{Label: "use", Detail: "Import a type library", InsertText: "use ${1:Types::Standard};$0"},
	}
	if inClass {
		snippets = append(snippets,
			CompletionItem{Label: "has", Detail: "Attribute", InsertText: "has ${1:name} (is: ${2:ro}, isa: ${3:Str});$0"},
			CompletionItem{Label: "method", Detail: "Method", InsertText: "method ${1:name}($2) {\n\t$0\n}"},
			CompletionItem{Label: "before", Detail: "Before modifier", InsertText: "before ${1:method} {\n\t$0\n}"},
			CompletionItem{Label: "after", Detail: "After modifier", InsertText: "after ${1:method} {\n\t$0\n}"},
		)
	}
	for _, s := range snippets {
		s.Kind = CompletionKindSnippet
		s.SortText = "0" + s.Label
		items = append(items, s)
	}
	return items
}

// getNamespaceNames offers the built-in namespaces themselves
func getNamespaceNames() []CompletionItem {
	var items []CompletionItem
	for _, ns := range stdlib.GetNamespaces() {
		items = append(items, CompletionItem{
			Label:    ns,
			Kind:     CompletionKindClass,
			Detail:   "built-in namespace",
			SortText: "2" + ns,
		})
	}
	return items
}

// getNamespaceCompletions returns the functions of a built-in namespace
func getNamespaceCompletions(namespace string) []CompletionItem {
	funcs := stdlib.GetFunctions(namespace)
	items := make([]CompletionItem, 0, len(funcs))
	for _, fn := range funcs {
		items = append(items, CompletionItem{
			Label:         fn.Name,
			Kind:          CompletionKindFunction,
			Detail:        fn.Signature,
			Documentation: fn.Description,
			InsertText:    fn.Name + "($0)",
		})
	}
	return items
}

// getClassCompletions returns the classes and roles of open documents.
// With roles false only classes are returned.
func (a *API) getClassCompletions(roles bool) []CompletionItem {
	var items []CompletionItem
	for _, sym := range a.symbolIndex.Classes() {
		if sym.Kind == SymbolKindRole && !roles {
			continue
		}
		items = append(items, CompletionItem{
			Label:    sym.Name,
			Kind:     CompletionKindClass,
			Detail:   sym.Detail,
			SortText: "3" + sym.Name,
		})
	}
	return items
}

func (a *API) getLibraryCompletions() []CompletionItem {
	names := a.universe.Names()
	items := make([]CompletionItem, len(names))
	for i, name := range names {
		items[i] = CompletionItem{Label: name, Kind: CompletionKindType, Detail: "type library"}
	}
	return items
}

// getMemberCompletions returns the attributes and methods visible on
// $self: those of class, its parents and its roles, as far as they are
// declared in open documents.
func (a *API) getMemberCompletions(doc *Document, class *ast.ClassNode) []CompletionItem {
	if class == nil {
		return nil
	}

	seen := make(map[string]bool)
	var items []CompletionItem
	var visit func(c *ast.ClassNode)
	visit = func(c *ast.ClassNode) {
		if c == nil || seen["class "+c.Name] {
			return
		}
		seen["class "+c.Name] = true

		for _, attr := range c.Attributes {
			if seen[attr.Name] {
				continue
			}
			seen[attr.Name] = true
			items = append(items, CompletionItem{
				Label:  attr.Name,
				Kind:   CompletionKindAttribute,
				Detail: attributeDetail(attr),
			})
		}
		for _, m := range c.Methods {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			items = append(items, CompletionItem{
				Label:      m.Name,
				Kind:       CompletionKindMethod,
				Detail:     "method " + m.Name + signature(m.Params),
				InsertText: m.Name + "($0)",
			})
		}

		visit(a.findClassNode(doc, c.Extends))
		for _, role := range c.With {
			visit(a.findClassNode(doc, role))
		}
	}
	visit(class)
	return items
}

// findClassNode looks a class up in doc, then in the other open documents
func (a *API) findClassNode(doc *Document, name string) *ast.ClassNode {
	if name == "" {
		return nil
	}
	if doc.AST != nil {
		if c := doc.AST.Class(name); c != nil {
			return c
		}
	}
	def := a.symbolIndex.FindDefinition(name)
	if def == nil {
		return nil
	}
	other, ok := a.GetDocument(def.URI)
	if !ok || other.AST == nil {
		return nil
	}
	return other.AST.Class(name)
}
