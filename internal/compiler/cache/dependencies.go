package cache

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/moops-lang/moops/internal/compiler/ast"
)

// FileDependency is one source file in the graph
type FileDependency struct {
	Path       string   // The file path
	Declares   []string // Classes and roles declared in this file
	Uses       []string // Class names this file refers to
	DependsOn  []string // Files declaring classes this file uses
	DependedBy []string // Files using classes this file declares
}

// DependencyGraph tracks which files declare and use which classes. Edges
// are derived from names: a file depends on the file declaring a class it
// extends, composes, names in a type or constructs at the top level.
type DependencyGraph struct {
	nodes map[string]*FileDependency
	mu    sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*FileDependency),
	}
}

// AddProgram records the classes program declares and uses and relinks the
// graph. Adding a path again replaces its previous entry.
func (dg *DependencyGraph) AddProgram(path string, program *ast.Program) {
	declares, uses := ClassReferences(program)

	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes[path] = &FileDependency{Path: path, Declares: declares, Uses: uses}
	dg.link()
}

// link recomputes every edge from the declared and used names
func (dg *DependencyGraph) link() {
	owners := make(map[string]string)
	for _, path := range dg.paths() {
		for _, name := range dg.nodes[path].Declares {
			if _, taken := owners[name]; !taken {
				owners[name] = path
			}
		}
	}

	for _, node := range dg.nodes {
		node.DependsOn = node.DependsOn[:0]
		node.DependedBy = node.DependedBy[:0]
	}
	for _, path := range dg.paths() {
		node := dg.nodes[path]
		for _, name := range node.Uses {
			owner, ok := owners[name]
			if !ok || owner == path || contains(node.DependsOn, owner) {
				continue
			}
			node.DependsOn = append(node.DependsOn, owner)
			dg.nodes[owner].DependedBy = append(dg.nodes[owner].DependedBy, path)
		}
	}
}

// paths returns the file paths in sorted order; callers hold the lock
func (dg *DependencyGraph) paths() []string {
	out := make([]string, 0, len(dg.nodes))
	for path := range dg.nodes {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Owner returns the file declaring class name
func (dg *DependencyGraph) Owner(name string) (string, bool) {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	for _, path := range dg.paths() {
		if contains(dg.nodes[path].Declares, name) {
			return path, true
		}
	}
	return "", false
}

// GetDependencies returns the files that the given file depends on
func (dg *DependencyGraph) GetDependencies(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependsOn))
		copy(result, node.DependsOn)
		return result
	}
	return []string{}
}

// GetDependents returns the files that depend on the given file
func (dg *DependencyGraph) GetDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependedBy))
		copy(result, node.DependedBy)
		return result
	}
	return []string{}
}

// GetTransitiveDependents returns all files that transitively depend on the given file
func (dg *DependencyGraph) GetTransitiveDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	visited := map[string]bool{path: true}
	result := make([]string, 0)

	var visit func(string)
	visit = func(p string) {
		node, exists := dg.nodes[p]
		if !exists {
			return
		}
		for _, dependent := range node.DependedBy {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			result = append(result, dependent)
			visit(dependent)
		}
	}

	visit(path)
	return result
}

// GetTopologicalOrder returns files so that every file follows the files it
// depends on. Ties are broken by path so the order is stable.
func (dg *DependencyGraph) GetTopologicalOrder() ([]string, error) {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	inDegree := make(map[string]int)
	for path, node := range dg.nodes {
		inDegree[path] = len(node.DependsOn)
	}

	queue := make([]string, 0)
	for _, path := range dg.paths() {
		if inDegree[path] == 0 {
			queue = append(queue, path)
		}
	}

	result := make([]string, 0, len(dg.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		var ready []string
		for _, dependent := range dg.nodes[current].DependedBy {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(result) != len(dg.nodes) {
		var cycle []string
		for _, path := range dg.paths() {
			if inDegree[path] > 0 {
				cycle = append(cycle, path)
			}
		}
		return nil, &CycleError{Files: cycle}
	}

	return result, nil
}

// RemoveFile removes a file and relinks the graph
func (dg *DependencyGraph) RemoveFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	if _, exists := dg.nodes[path]; exists {
		delete(dg.nodes, path)
		dg.link()
	}
}

// Clear removes all entries from the dependency graph
func (dg *DependencyGraph) Clear() {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes = make(map[string]*FileDependency)
}

// Size returns the number of files in the graph
func (dg *DependencyGraph) Size() int {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	return len(dg.nodes)
}

// ClassReferences returns the class and role names a program declares and
// the names it refers to, both sorted. Names a program both declares and
// uses appear in both lists.
func ClassReferences(program *ast.Program) (declares, uses []string) {
	used := make(map[string]bool)
	addType := func(t *ast.TypeNode) {
		if t == nil {
			return
		}
		for _, word := range strings.FieldsFunc(t.Text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != ':'
		}) {
			used[word] = true
		}
	}

	for _, class := range program.Classes {
		declares = append(declares, class.Name)
		if class.Extends != "" {
			used[class.Extends] = true
		}
		for _, role := range class.With {
			used[role] = true
		}
		for _, a := range class.Attributes {
			addType(a.Isa)
		}
		for _, m := range class.Methods {
			for _, p := range m.Params {
				addType(p.Type)
			}
		}
	}

	// Top-level code is checked against the registry when the file loads,
	// so classes it constructs must already be declared.
	for _, stmt := range program.Statements {
		ast.Inspect(stmt, func(n ast.Node) bool {
			if call, ok := n.(*ast.ClassCallExpr); ok {
				used[call.Class] = true
			}
			return true
		})
	}

	for name := range used {
		uses = append(uses, name)
	}
	sort.Strings(declares)
	sort.Strings(uses)
	return declares, uses
}

// CycleError reports files whose class references form a cycle
type CycleError struct {
	Files []string
}

func (e *CycleError) Error() string {
	return "circular dependency between " + strings.Join(e.Files, ", ")
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
