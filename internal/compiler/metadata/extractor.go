package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
)

type location struct {
	file string
	line int
	doc  string
}

// Extractor builds metadata from registered classes. Source locations are
// taken from the programs handed to AddProgram; classes declared from Go
// have none.
type Extractor struct {
	version   string
	locations map[string]location
}

// NewExtractor creates a new metadata extractor
func NewExtractor(version string) *Extractor {
	return &Extractor{
		version:   version,
		locations: make(map[string]location),
	}
}

// AddProgram records where the classes of prog are declared
func (e *Extractor) AddProgram(prog *ast.Program) {
	for _, c := range prog.Classes {
		if _, seen := e.locations[c.Name]; !seen {
			e.locations[c.Name] = location{file: prog.File, line: c.Loc.Line, doc: c.Documentation}
		}
	}
}

// ExtractRegistry snapshots every class in reg, sorted by name.
func (e *Extractor) ExtractRegistry(reg *mop.Registry) *Metadata {
	classes := reg.Classes()
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return e.Extract(classes)
}

// Extract snapshots classes in the given order.
func (e *Extractor) Extract(classes []*mop.Class) *Metadata {
	meta := &Metadata{
		Version: e.version,
		Classes: make([]ClassMetadata, 0, len(classes)),
	}
	for _, c := range classes {
		meta.Classes = append(meta.Classes, e.extractClass(c))
	}
	meta.SourceHash = computeHash(meta.Classes)
	return meta
}

// ExtractLibraries lists the libraries of u with their exports
func ExtractLibraries(u *types.Universe) []LibraryMetadata {
	var out []LibraryMetadata
	for _, name := range u.Names() {
		lib, ok := u.Library(name)
		if !ok {
			continue
		}
		out = append(out, LibraryMetadata{Name: name, Types: lib.Names()})
	}
	return out
}

func (e *Extractor) extractClass(c *mop.Class) ClassMetadata {
	cm := ClassMetadata{
		Name:       c.Name,
		Kind:       c.Kind.String(),
		Roles:      c.AllRoles(),
		Requires:   c.Requires(),
		Attributes: make([]AttributeMetadata, 0),
		Methods:    make([]MethodMetadata, 0),
	}
	if loc, ok := e.locations[c.Name]; ok {
		cm.FilePath = loc.file
		cm.Line = loc.line
		cm.Doc = loc.doc
	}
	if parent := c.Parent(); parent != nil {
		cm.Parent = parent.Name
		cm.Lineage = c.Lineage()[1:]
	}

	for _, a := range c.Attributes() {
		cm.Attributes = append(cm.Attributes, extractAttribute(c, a))
	}
	for _, m := range c.Methods() {
		if !m.Accessor {
			cm.Methods = append(cm.Methods, extractMethod(c, m))
		}
		for _, mod := range c.Modifiers(m.Name) {
			cm.Modifiers = append(cm.Modifiers, ModifierMetadata{
				Kind:   mod.Kind.String(),
				Method: mod.Method,
				Owner:  ownerName(c, mod.Owner),
			})
		}
	}
	return cm
}

func extractAttribute(c *mop.Class, a *mop.Attribute) AttributeMetadata {
	am := AttributeMetadata{
		Name:     a.Name,
		Access:   a.Access.String(),
		Required: a.Required,
		Builder:  a.Builder,
		Trigger:  a.Trigger,
		Owner:    ownerName(c, a.Owner),
	}
	if a.Type != nil {
		am.Type = a.Type.Name()
	}
	if a.HasDefault {
		am.Default = types.FormatValue(a.Default)
	}
	return am
}

func extractMethod(c *mop.Class, m *mop.Method) MethodMetadata {
	mm := MethodMetadata{
		Name:      m.Name,
		Signature: "()",
		Owner:     ownerName(c, m.Owner),
	}
	if m.Signature != nil {
		mm.Signature = m.Signature.String()
		for _, p := range m.Signature.Params {
			pm := ParamMetadata{Name: p.Name, Named: p.Named, Optional: p.Optional}
			if p.Type != nil {
				pm.Type = p.Type.Name()
			}
			if p.HasDefault {
				pm.Default = types.FormatValue(p.Default)
			}
			mm.Params = append(mm.Params, pm)
		}
	}
	if m.Super != nil {
		mm.Overrides = ownerName(c, m.Super.Owner)
	}
	return mm
}

func ownerName(c *mop.Class, owner *mop.Class) string {
	if owner == nil {
		return c.Name
	}
	return owner.Name
}

// computeHash hashes the class shapes in order
func computeHash(classes []ClassMetadata) string {
	h := sha256.New()
	for _, c := range classes {
		fmt.Fprintf(h, "%s %s %s %v\n", c.Kind, c.Name, c.Parent, c.Roles)
		for _, a := range c.Attributes {
			fmt.Fprintf(h, "  has %s %s %s %t %s\n", a.Name, a.Access, a.Type, a.Required, a.Default)
		}
		for _, m := range c.Methods {
			fmt.Fprintf(h, "  method %s%s\n", m.Name, m.Signature)
		}
		for _, m := range c.Modifiers {
			fmt.Fprintf(h, "  %s %s\n", m.Kind, m.Method)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
