package checker

import (
	"sort"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/mop"
)

// member is an attribute as seen from inside a class
type member struct {
	access string // "ro", "rw" or "private"
	owner  string
}

// classInfo is the flattened member table of a class or role: inherited
// members first, then role members, then its own.
type classInfo struct {
	name    string
	role    bool
	parent  string
	roles   int
	attrs   map[string]member
	methods map[string]string // method name to owner

	// complete is false when an ancestor or role could not be resolved,
	// in which case missing members are not reported.
	complete bool
}

func (ci *classInfo) memberNames() []string {
	out := make([]string, 0, len(ci.attrs)+len(ci.methods))
	for name := range ci.attrs {
		out = append(out, name)
	}
	for name := range ci.methods {
		if _, ok := ci.attrs[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (ci *classInfo) inherit(from *classInfo) {
	if from == nil {
		ci.complete = false
		return
	}
	for name, m := range from.attrs {
		ci.attrs[name] = m
	}
	for name, owner := range from.methods {
		ci.methods[name] = owner
	}
	if !from.complete {
		ci.complete = false
	}
}

// info resolves the member table of name from the program or the
// registry. It returns nil for unknown names and for inheritance cycles,
// which the rewriter reports.
func (c *Checker) info(name string) *classInfo {
	if info, ok := c.infos[name]; ok {
		return info
	}
	if c.building[name] {
		return nil
	}

	var info *classInfo
	if node, ok := c.nodes[name]; ok {
		c.building[name] = true
		info = c.fromNode(node)
		delete(c.building, name)
	} else if c.registry != nil {
		if class, ok := c.registry.Lookup(name); ok {
			info = fromClass(class)
		}
	}
	if info != nil {
		c.infos[name] = info
	}
	return info
}

func (c *Checker) fromNode(node *ast.ClassNode) *classInfo {
	info := &classInfo{
		name:     node.Name,
		role:     node.IsRole(),
		parent:   node.Extends,
		roles:    len(node.With),
		attrs:    make(map[string]member),
		methods:  make(map[string]string),
		complete: true,
	}

	if node.Extends != "" {
		info.inherit(c.info(node.Extends))
	}
	for _, role := range node.With {
		info.inherit(c.info(role))
	}

	for _, a := range node.Attributes {
		access := a.Is
		switch access {
		case "", "ro":
			access = "ro"
		case "lexical":
			access = "private"
		}
		info.attrs[a.Name] = member{access: access, owner: node.Name}
	}
	for _, m := range node.Methods {
		info.methods[m.Name] = node.Name
	}
	for _, req := range node.Requires {
		if _, ok := info.methods[req]; !ok {
			info.methods[req] = node.Name
		}
	}
	return info
}

func fromClass(class *mop.Class) *classInfo {
	info := &classInfo{
		name:     class.Name,
		role:     class.IsRole(),
		roles:    len(class.Roles()),
		attrs:    make(map[string]member),
		methods:  make(map[string]string),
		complete: true,
	}
	if parent := class.Parent(); parent != nil {
		info.parent = parent.Name
	}
	for _, a := range class.Attributes() {
		owner := class.Name
		if a.Owner != nil {
			owner = a.Owner.Name
		}
		info.attrs[a.Name] = member{access: a.Access.String(), owner: owner}
	}
	for _, m := range class.Methods() {
		owner := class.Name
		if m.Owner != nil {
			owner = m.Owner.Name
		}
		info.methods[m.Name] = owner
	}
	for _, req := range class.Requires() {
		if _, ok := info.methods[req]; !ok {
			info.methods[req] = class.Name
		}
	}
	return info
}
