package rewriter

import (
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/decl"
)

// DependencyGraph holds the parent and role edges between the classes of
// one unit. Edges to classes outside the unit are dropped: those must
// already be registered.
type DependencyGraph struct {
	order []string
	edges map[string][]string // class -> dependencies
}

// NewDependencyGraph creates a graph over classes
func NewDependencyGraph(classes []*decl.Class) *DependencyGraph {
	g := &DependencyGraph{edges: make(map[string][]string)}
	inUnit := make(map[string]bool, len(classes))
	for _, c := range classes {
		if !inUnit[c.Name] {
			g.order = append(g.order, c.Name)
		}
		inUnit[c.Name] = true
	}
	for _, c := range classes {
		for _, dep := range c.Dependencies() {
			if inUnit[dep] && !contains(g.edges[c.Name], dep) {
				g.edges[c.Name] = append(g.edges[c.Name], dep)
			}
		}
	}
	return g
}

// Dependencies returns the direct in-unit dependencies of class
func (g *DependencyGraph) Dependencies(class string) []string {
	return g.edges[class]
}

// DetectCycles returns every cycle reachable in declaration order
func (g *DependencyGraph) DetectCycles() [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(node string, path []string)
	dfs = func(node string, path []string) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range g.edges[node] {
			if !visited[next] {
				dfs(next, path)
				continue
			}
			if onStack[next] {
				for i, n := range path {
					if n == next {
						cycles = append(cycles, append([]string(nil), path[i:]...))
						break
					}
				}
			}
		}
		onStack[node] = false
	}

	for _, node := range g.order {
		if !visited[node] {
			dfs(node, nil)
		}
	}
	return cycles
}

// TopologicalSort returns classes with dependencies first. Among classes
// that are ready at the same time declaration order is kept.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	pending := make(map[string]int, len(g.order))
	dependents := make(map[string][]string)
	for _, node := range g.order {
		pending[node] = len(g.edges[node])
		for _, dep := range g.edges[node] {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var queue []string
	for _, node := range g.order {
		if pending[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range dependents[node] {
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.order) {
		if cycles := g.DetectCycles(); len(cycles) > 0 {
			return nil, fmt.Errorf("circular dependency detected: %s", formatCycles(cycles))
		}
		return nil, fmt.Errorf("circular dependency detected")
	}
	return result, nil
}

// formatCycle renders a cycle closed on its first element
func formatCycle(cycle []string) string {
	return strings.Join(cycle, " -> ") + " -> " + cycle[0]
}

func formatCycles(cycles [][]string) string {
	parts := make([]string, len(cycles))
	for i, cycle := range cycles {
		parts[i] = formatCycle(cycle)
	}
	return strings.Join(parts, "; ")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
