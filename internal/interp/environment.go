package interp

import "sort"

// Environment is one lexical scope of variables
type Environment struct {
	vars   map[string]any
	parent *Environment
}

// NewEnvironment creates a scope nested in parent, which may be nil
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]any), parent: parent}
}

// Define declares name in this scope, shadowing outer ones
func (e *Environment) Define(name string, v any) {
	e.vars[name] = v
}

// Get looks name up through the enclosing scopes
func (e *Environment) Get(name string) (any, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign updates the nearest declaration of name
func (e *Environment) Assign(name string, v any) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}

// Names returns every visible variable name, sorted
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for s := e; s != nil; s = s.parent {
		for name := range s.vars {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
