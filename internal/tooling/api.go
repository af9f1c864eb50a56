// Package tooling provides a programmatic API for IDE integration via LSP.
// It keeps open documents parsed and checked and answers position-based
// queries over them.
package tooling

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/types"
	"github.com/moops-lang/moops/pkg/moops"
)

// API provides thread-safe access to compiler functionality for IDE integration.
type API struct {
	documents map[string]*Document
	docsMutex sync.RWMutex

	symbolIndex *SymbolIndex
	universe    *types.Universe

	config *Config
}

// Config holds configuration for the tooling API
type Config struct {
	// Prelude lists the type libraries every document imports
	Prelude []string

	// Logger receives loader debug output; nil discards it
	Logger *zap.Logger
}

// Document is an open source file with its parse and check results
type Document struct {
	URI     string
	Content string
	Version int

	AST         *ast.Program
	ParseErrors []parser.ParseError

	// Diagnostics holds every problem found loading the document, parse
	// errors included
	Diagnostics errors.ErrorList

	Symbols []*Symbol
}

// Position represents a position in a document (zero-based for LSP compatibility)
type Position struct {
	Line      int // Zero-based line number
	Character int // Zero-based character offset
}

// Range represents a range in a document
type Range struct {
	Start Position
	End   Position
}

// Location represents a source location with URI and range
type Location struct {
	URI   string
	Range Range
}

// Symbol represents a named entity in the source code
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range Range

	// Type is the isa of attributes
	Type string

	// ContainerName is the declaring class of members
	ContainerName string

	// Signature of methods, e.g. "(Int $x, :$y?)"
	Signature string

	Detail string

	// Doc is the comment block above a class or role
	Doc string
}

// SymbolKind categorizes symbols for IDE display
type SymbolKind int

const (
	// SymbolKindClass represents a class declaration
	SymbolKindClass SymbolKind = iota
	// SymbolKindRole represents a role declaration
	SymbolKindRole
	// SymbolKindAttribute represents a has declaration
	SymbolKindAttribute
	// SymbolKindMethod represents a method declaration
	SymbolKindMethod
	// SymbolKindModifier represents a before or after block
	SymbolKindModifier
	// SymbolKindRequirement represents a method a role requires
	SymbolKindRequirement
)

// Hover represents hover information for a symbol
type Hover struct {
	// Contents is the hover text (markdown formatted)
	Contents string

	Range Range
}

// CompletionItem represents a completion suggestion
type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string
	Documentation string

	// InsertText is the text to insert (if different from label)
	InsertText string

	// SortText controls ordering (if different from label)
	SortText string
}

// CompletionKind categorizes completion items
type CompletionKind int

const (
	// CompletionKindKeyword represents a keyword completion
	CompletionKindKeyword CompletionKind = iota
	// CompletionKindType represents a type constraint completion
	CompletionKindType
	// CompletionKindAttribute represents an attribute completion
	CompletionKindAttribute
	// CompletionKindMethod represents a method completion
	CompletionKindMethod
	// CompletionKindFunction represents a built-in function completion
	CompletionKindFunction
	// CompletionKindClass represents a class or role completion
	CompletionKindClass
	// CompletionKindSnippet represents a code snippet completion
	CompletionKindSnippet
)

// Diagnostic represents a compilation error or warning
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Message  string
	Source   string
}

// DiagnosticSeverity indicates the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = iota
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning
	// DiagnosticSeverityInfo represents an informational diagnostic
	DiagnosticSeverityInfo
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint
)

// DiagnosticSource is the source name reported with every diagnostic
const DiagnosticSource = "moops"

// NewAPI creates a new tooling API instance
func NewAPI() *API {
	return NewAPIWithConfig(&Config{Prelude: []string{types.StandardLibrary}})
}

// NewAPIWithConfig creates a new tooling API with custom configuration
func NewAPIWithConfig(config *Config) *API {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &API{
		documents:   make(map[string]*Document),
		symbolIndex: NewSymbolIndex(),
		universe:    types.DefaultUniverse(),
		config:      config,
	}
}

// ParseFile parses, checks and caches a document
func (a *API) ParseFile(uri, content string) (*Document, error) {
	return a.UpdateDocument(uri, content, 1)
}

// UpdateDocument replaces the content of a document. Unchanged content only
// updates the version.
func (a *API) UpdateDocument(uri, content string, version int) (*Document, error) {
	a.docsMutex.Lock()
	if old, exists := a.documents[uri]; exists && old.Content == content {
		old.Version = version
		a.docsMutex.Unlock()
		return old, nil
	}
	a.docsMutex.Unlock()

	doc := a.parseDocument(uri, content)
	doc.Version = version
	doc.Diagnostics = a.diagnose(doc)

	a.docsMutex.Lock()
	a.documents[uri] = doc
	a.docsMutex.Unlock()
	a.symbolIndex.Index(uri, doc.Symbols)

	return doc, nil
}

func (a *API) parseDocument(uri, content string) *Document {
	program, parseErrors := parser.ParseSource(uri, content)
	doc := &Document{
		URI:         uri,
		Content:     content,
		AST:         program,
		ParseErrors: parseErrors,
	}
	doc.Symbols = extractSymbols(doc)
	return doc
}

// diagnose loads the document into a fresh environment after the other
// open documents it depends on.
func (a *API) diagnose(doc *Document) errors.ErrorList {
	if len(doc.ParseErrors) > 0 {
		return errors.FromParseErrors(doc.ParseErrors).AttachContext(doc.URI, doc.Content)
	}

	env, err := moops.New(
		moops.WithPrelude(a.config.Prelude...),
		moops.WithOutput(io.Discard),
		moops.WithLogger(a.config.Logger),
	)
	if err != nil {
		return errors.FromError(err)
	}

	for _, other := range a.dependencies(doc) {
		if _, err := env.LoadString(other.URI, other.Content); err != nil {
			a.config.Logger.Debug("dependency failed to load", zap.String("uri", other.URI), zap.Error(err))
		}
	}

	unit, err := env.LoadString(doc.URI, doc.Content)
	if err != nil {
		return errors.FromError(err)
	}
	return unit.Warnings
}

// dependencies returns the other open documents doc transitively uses
// classes from, in load order.
func (a *API) dependencies(doc *Document) []*Document {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	graph := cache.NewDependencyGraph()
	for uri, d := range a.documents {
		if d.AST != nil && len(d.ParseErrors) == 0 {
			graph.AddProgram(uri, d.AST)
		}
	}
	graph.AddProgram(doc.URI, doc.AST)

	needed := make(map[string]bool)
	var visit func(uri string)
	visit = func(uri string) {
		for _, dep := range graph.GetDependencies(uri) {
			if !needed[dep] {
				needed[dep] = true
				visit(dep)
			}
		}
	}
	visit(doc.URI)

	order, err := graph.GetTopologicalOrder()
	if err != nil {
		order = make([]string, 0, len(needed))
		for uri := range needed {
			order = append(order, uri)
		}
		sort.Strings(order)
	}

	var deps []*Document
	for _, uri := range order {
		if needed[uri] && uri != doc.URI {
			deps = append(deps, a.documents[uri])
		}
	}
	return deps
}

// GetDocument retrieves a cached document
func (a *API) GetDocument(uri string) (*Document, bool) {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	doc, exists := a.documents[uri]
	return doc, exists
}

// CloseDocument removes a document from the cache
func (a *API) CloseDocument(uri string) {
	a.docsMutex.Lock()
	delete(a.documents, uri)
	a.docsMutex.Unlock()

	a.symbolIndex.RemoveDocument(uri)
}

// GetDiagnostics returns diagnostics for a document
func (a *API) GetDiagnostics(uri string) []Diagnostic {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil
	}

	lines := splitLines(doc.Content)
	diagnostics := make([]Diagnostic, 0, len(doc.Diagnostics))
	for _, e := range doc.Diagnostics {
		if e.File != "" && e.File != uri {
			continue
		}
		start := Position{Line: max(e.Location.Line-1, 0), Character: max(e.Location.Column-1, 0)}
		diagnostics = append(diagnostics, Diagnostic{
			Range:    Range{Start: start, End: wordEnd(lines, start)},
			Severity: severityOf(e.Severity),
			Code:     string(e.Code),
			Message:  diagnosticMessage(e),
			Source:   DiagnosticSource,
		})
	}
	return diagnostics
}

func diagnosticMessage(e *errors.CompilerError) string {
	if e.Suggestion != "" {
		return e.Message + " (" + e.Suggestion + ")"
	}
	return e.Message
}

// GetHover returns hover information for a position in a document.
// Returns (nil, nil) if nothing is known about the position.
func (a *API) GetHover(uri string, pos Position) (*Hover, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	if symbol := findSymbolAtPosition(doc, pos); symbol != nil {
		return a.buildHover(symbol), nil
	}
	return a.hoverWord(doc, pos), nil
}

// GetCompletions returns completion items for a position in a document
func (a *API) GetCompletions(uri string, pos Position) ([]CompletionItem, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	return a.buildCompletions(doc, a.getCompletionContext(doc, pos)), nil
}

// GetDefinition returns where the class, role or member named at a
// position is declared. Returns (nil, nil) if nothing is found.
func (a *API) GetDefinition(uri string, pos Position) (*Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	if symbol := findSymbolAtPosition(doc, pos); symbol != nil {
		return &Location{URI: uri, Range: symbol.Range}, nil
	}

	word, _ := wordAt(splitLines(doc.Content), pos)
	if word == "" {
		return nil, nil //nolint:nilnil // nil location is valid when no symbol at position
	}
	if def := a.symbolIndex.FindDefinition(word); def != nil {
		return &Location{URI: def.URI, Range: def.Range}, nil
	}
	return nil, nil //nolint:nilnil // nil location is valid when no symbol at position
}

// GetReferences returns every declaration sharing the name at a position:
// a class and the members overriding or wrapping a method.
func (a *API) GetReferences(uri string, pos Position) ([]Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	name, _ := wordAt(splitLines(doc.Content), pos)
	if symbol := findSymbolAtPosition(doc, pos); symbol != nil {
		name = symbol.Name
	}
	if name == "" {
		return []Location{}, nil
	}

	refs := a.symbolIndex.FindReferences(name)
	if refs == nil {
		return []Location{}, nil
	}
	return refs, nil
}

// GetDocumentSymbols returns all symbols in a document
func (a *API) GetDocumentSymbols(uri string) ([]*Symbol, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	return doc.Symbols, nil
}

// GetWorkspaceSymbols searches the symbols of every open document
func (a *API) GetWorkspaceSymbols(query string) []*IndexedSymbol {
	return a.symbolIndex.SearchSymbols(query)
}

func severityOf(s errors.ErrorSeverity) DiagnosticSeverity {
	switch s {
	case errors.SeverityWarning:
		return DiagnosticSeverityWarning
	case errors.SeverityInfo:
		return DiagnosticSeverityInfo
	default:
		return DiagnosticSeverityError
	}
}
