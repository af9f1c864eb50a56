package types

import (
	"fmt"
	"sort"
	"sync"
)

// Resolver turns type expressions into predicates. Generators receive one so
// that their parameters resolve in the caller's scope.
type Resolver interface {
	Resolve(e *Expr) (Predicate, error)
}

// Generator builds a parameterized predicate such as ArrayRef[Int].
type Generator func(r Resolver, args []*Expr) (Predicate, error)

// Entry is one exported name of a library. A name may be usable bare
// (Pred), parameterized (Gen), or both.
type Entry struct {
	Name string
	Pred Predicate
	Gen  Generator
}

// Library is a named collection of predicates and generators.
type Library struct {
	name    string
	entries map[string]*Entry
}

// NewLibrary creates an empty library
func NewLibrary(name string) *Library {
	return &Library{name: name, entries: make(map[string]*Entry)}
}

// Name returns the library name
func (l *Library) Name() string {
	return l.name
}

func (l *Library) entry(name string) *Entry {
	e, ok := l.entries[name]
	if !ok {
		e = &Entry{Name: name}
		l.entries[name] = e
	}
	return e
}

// Add exports a predicate under its own name. Adding a name twice is a
// programming error.
func (l *Library) Add(preds ...Predicate) *Library {
	for _, p := range preds {
		e := l.entry(p.Name())
		if e.Pred != nil {
			panic(fmt.Sprintf("types: %s already exports %s", l.name, p.Name()))
		}
		e.Pred = p
	}
	return l
}

// AddGenerator exports a parameterized form under name.
func (l *Library) AddGenerator(name string, gen Generator) *Library {
	e := l.entry(name)
	if e.Gen != nil {
		panic(fmt.Sprintf("types: %s already exports generator %s", l.name, name))
	}
	e.Gen = gen
	return l
}

// Lookup returns the entry exported under name
func (l *Library) Lookup(name string) (*Entry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// Names returns all exported names, sorted
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Universe is the set of libraries available for import.
type Universe struct {
	mu   sync.RWMutex
	libs map[string]*Library
}

// NewUniverse creates an empty universe
func NewUniverse() *Universe {
	return &Universe{libs: make(map[string]*Library)}
}

// DefaultUniverse returns a universe holding every built-in library.
func DefaultUniverse() *Universe {
	u := NewUniverse()
	for _, lib := range []*Library{Standard(), CommonNumeric(), CommonString(), Validation()} {
		if err := u.Register(lib); err != nil {
			panic(err)
		}
	}
	return u
}

// Register adds a library; library names are unique.
func (u *Universe) Register(lib *Library) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.libs[lib.Name()]; exists {
		return fmt.Errorf("type library %s already registered", lib.Name())
	}
	u.libs[lib.Name()] = lib
	return nil
}

// Library returns a library by name
func (u *Universe) Library(name string) (*Library, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	lib, ok := u.libs[name]
	return lib, ok
}

// Names returns all library names, sorted
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	names := make([]string, 0, len(u.libs))
	for name := range u.libs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
