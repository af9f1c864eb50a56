package types

import (
	"fmt"
	"sort"
	"strings"

	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

// ClassCatalog answers whether a name denotes a class or role known outside
// the current scope, typically the object-system registry.
type ClassCatalog interface {
	ClassKind(name string) (isRole bool, ok bool)
}

// Import names one export of a library, optionally under a local alias.
type Import struct {
	Name  string
	Alias string
}

// Local returns the name the import binds in a scope
func (i Import) Local() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

// UnknownNameError is returned when a type, library or export is not found.
type UnknownNameError struct {
	What        string // "type", "library" or "export"
	Name        string
	Library     string
	Suggestions []string
}

func (e *UnknownNameError) Error() string {
	var msg string
	switch e.What {
	case "library":
		msg = fmt.Sprintf("unknown type library %s", e.Name)
	case "export":
		msg = fmt.Sprintf("%s does not export %s", e.Library, e.Name)
	default:
		msg = fmt.Sprintf("unknown type %s", e.Name)
	}
	if hint := ustrings.DidYouMean(e.Suggestions); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

type binding struct {
	library string
	entry   *Entry
}

// Scope is the name table of one declaration unit. It is built from use
// directives and the classes the unit declares; it is not safe for
// concurrent mutation.
type Scope struct {
	universe *Universe
	catalog  ClassCatalog
	names    map[string]binding
	classes  map[string]bool
}

// NewScope creates an empty scope over universe. catalog may be nil.
func NewScope(u *Universe, catalog ClassCatalog) *Scope {
	return &Scope{
		universe: u,
		catalog:  catalog,
		names:    make(map[string]binding),
		classes:  make(map[string]bool),
	}
}

// Use imports names from library. With no imports every export is bound.
func (s *Scope) Use(library string, imports ...Import) error {
	lib, ok := s.universe.Library(library)
	if !ok {
		return &UnknownNameError{
			What:        "library",
			Name:        library,
			Suggestions: ustrings.FindSimilar(library, s.universe.Names(), nil),
		}
	}

	if len(imports) == 0 {
		for _, name := range lib.Names() {
			imports = append(imports, Import{Name: name})
		}
	}

	for _, imp := range imports {
		entry, ok := lib.Lookup(imp.Name)
		if !ok {
			return &UnknownNameError{
				What:        "export",
				Name:        imp.Name,
				Library:     library,
				Suggestions: ustrings.FindSimilar(imp.Name, lib.Names(), nil),
			}
		}
		local := imp.Local()
		if prev, exists := s.names[local]; exists && prev.entry != entry {
			return fmt.Errorf("type name %s imported from both %s and %s", local, prev.library, library)
		}
		s.names[local] = binding{library: library, entry: entry}
	}
	return nil
}

// DeclareClass makes a class or role of the current unit resolvable before
// it is registered.
func (s *Scope) DeclareClass(name string, isRole bool) {
	s.classes[name] = isRole
}

// DeclaredClasses returns the classes and roles declared through
// DeclareClass, sorted
func (s *Scope) DeclaredClasses() []string {
	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Names returns every locally bound type name, sorted
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Origin returns the library a local name was imported from
func (s *Scope) Origin(name string) (string, bool) {
	b, ok := s.names[name]
	return b.library, ok
}

// ResolveString parses and resolves a type expression.
func (s *Scope) ResolveString(text string) (Predicate, error) {
	e, err := ParseExpr(text)
	if err != nil {
		return nil, err
	}
	return s.Resolve(e)
}

// Resolve implements Resolver.
func (s *Scope) Resolve(e *Expr) (Predicate, error) {
	switch e.Kind {
	case ExprUnion:
		members := make([]Predicate, len(e.Alts))
		for i, alt := range e.Alts {
			p, err := s.Resolve(alt)
			if err != nil {
				return nil, err
			}
			members[i] = p
		}
		return Union(members...), nil
	case ExprLiteral:
		return nil, fmt.Errorf("literal %s is not a type", e)
	}

	entry, err := s.lookup(e.Name)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return s.resolveClass(e)
	}

	if len(e.Args) > 0 {
		if entry.Gen == nil {
			return nil, fmt.Errorf("type %s does not take parameters", e.Name)
		}
		p, err := entry.Gen(s, e.Args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e, err)
		}
		return p, nil
	}
	if entry.Pred == nil {
		return nil, fmt.Errorf("type %s requires parameters", e.Name)
	}
	if entry.Pred.Name() != e.Name && !strings.Contains(e.Name, "::") {
		return &Renamed{Alias: e.Name, Inner: entry.Pred}, nil
	}
	return entry.Pred, nil
}

// lookup returns the entry for a local or fully qualified name. A nil entry
// without error means the name is not a type and may be a class.
func (s *Scope) lookup(name string) (*Entry, error) {
	if b, ok := s.names[name]; ok {
		return b.entry, nil
	}

	idx := strings.LastIndex(name, "::")
	if idx < 0 {
		return nil, nil
	}
	libName, short := name[:idx], name[idx+2:]
	lib, ok := s.universe.Library(libName)
	if !ok {
		return nil, nil
	}
	entry, ok := lib.Lookup(short)
	if !ok {
		return nil, &UnknownNameError{
			What:        "export",
			Name:        short,
			Library:     libName,
			Suggestions: ustrings.FindSimilar(short, lib.Names(), nil),
		}
	}
	return entry, nil
}

// Class reports whether name is a class or role visible from the scope,
// declared in the unit or known to the catalog.
func (s *Scope) Class(name string) (isRole bool, ok bool) {
	if isRole, ok := s.classes[name]; ok {
		return isRole, true
	}
	if s.catalog != nil {
		return s.catalog.ClassKind(name)
	}
	return false, false
}

func (s *Scope) resolveClass(e *Expr) (Predicate, error) {
	isRole, ok := s.Class(e.Name)
	if !ok {
		return nil, &UnknownNameError{
			What:        "type",
			Name:        e.Name,
			Suggestions: ustrings.FindSimilar(e.Name, s.candidates(), nil),
		}
	}
	if len(e.Args) > 0 {
		return nil, fmt.Errorf("class %s does not take parameters", e.Name)
	}
	if isRole {
		return ConsumerOf(e.Name), nil
	}
	return InstanceOf(e.Name), nil
}

func (s *Scope) candidates() []string {
	return append(s.Names(), s.DeclaredClasses()...)
}
