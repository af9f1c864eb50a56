package checker

import "sort"

// scope is one lexical block. An open scope accepts any variable; it is
// used where the bound names cannot be known statically.
type scope struct {
	parent *scope
	vars   map[string]bool
	open   bool
}

func newScope(parent *scope, open bool) *scope {
	return &scope{parent: parent, vars: make(map[string]bool), open: open}
}

func (s *scope) declare(name string) {
	s.vars[name] = true
}

func (s *scope) declaredHere(name string) bool {
	return s.vars[name]
}

func (s *scope) lookup(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.open || cur.vars[name] {
			return true
		}
	}
	return false
}

// names returns every visible variable, sorted
func (s *scope) names() []string {
	seen := map[string]bool{}
	var out []string
	for cur := s; cur != nil; cur = cur.parent {
		for name := range cur.vars {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}
