// Package codegen generates Go source that re-declares a unit through the
// public moops API. Classes become ClassDecl literals whose methods carry
// their body source, so the generated package needs no moops files at run
// time.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/types"
)

// ImportPath is the package generated code declares through
const ImportPath = "github.com/moops-lang/moops/pkg/moops"

// Options controls one generated file
type Options struct {
	Package string // defaults to "declarations"
	// Metadata, when set, is embedded as a JSON constant
	Metadata string
}

// Generator transforms declarations into Go code
type Generator struct {
	buf    *bytes.Buffer
	indent int
}

// NewGenerator creates a new code generator
func NewGenerator() *Generator {
	return &Generator{buf: &bytes.Buffer{}}
}

// GenerateUnit returns a gofmt-ed Go file declaring every class of u.
// Declarations with Go bodies cannot be generated.
func (g *Generator) GenerateUnit(u *decl.Unit, opts Options) (string, error) {
	g.reset()
	pkg := opts.Package
	if pkg == "" {
		pkg = "declarations"
	}

	g.writeLine("// Code generated by moops gen. DO NOT EDIT.")
	if u.File != "" {
		g.writeLine("// Source: %s", u.File)
	}
	g.writeLine("")
	g.writeLine("package %s", pkg)
	g.writeLine("")
	g.writeLine("import %q", ImportPath)
	g.writeLine("")

	if err := g.generateUses(u.Uses); err != nil {
		return "", err
	}
	if err := g.generateClasses(u.Classes); err != nil {
		return "", err
	}

	g.writeLine("// Declare registers every class and role in env")
	g.writeLine("func Declare(env *moops.Environment) ([]*moops.Class, error) {")
	g.indent++
	g.writeLine("return env.DeclareUnit(&moops.UnitDecl{File: %q, Uses: Uses(), Classes: Classes()})", u.File)
	g.indent--
	g.writeLine("}")

	if opts.Metadata != "" {
		g.writeLine("")
		g.writeLine("// Metadata is the introspection snapshot taken when the file was generated")
		g.writeLine("const Metadata = %s", quote(opts.Metadata))
	}

	formatted, err := format.Source(g.buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("formatting generated code: %w", err)
	}
	return string(formatted), nil
}

func (g *Generator) generateUses(uses []*decl.Use) error {
	g.writeLine("// Uses returns the type library imports of the unit")
	g.writeLine("func Uses() []*moops.UseDecl {")
	g.indent++
	if len(uses) == 0 {
		g.writeLine("return nil")
	} else {
		g.writeLine("return []*moops.UseDecl{")
		g.indent++
		for _, u := range uses {
			g.writeLine("{")
			g.indent++
			g.writeLine("Library: %q,", u.Library)
			if len(u.Imports) > 0 {
				g.writeLine("Imports: []moops.ImportDecl{")
				g.indent++
				for _, imp := range u.Imports {
					if imp.Alias != "" {
						g.writeLine("{Name: %q, Alias: %q},", imp.Name, imp.Alias)
					} else {
						g.writeLine("{Name: %q},", imp.Name)
					}
				}
				g.indent--
				g.writeLine("},")
			}
			g.writePos(u.Pos)
			g.indent--
			g.writeLine("},")
		}
		g.indent--
		g.writeLine("}")
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")
	return nil
}

func (g *Generator) generateClasses(classes []*decl.Class) error {
	g.writeLine("// Classes returns fresh declarations of every class and role in the unit")
	g.writeLine("func Classes() []*moops.ClassDecl {")
	g.indent++
	g.writeLine("return []*moops.ClassDecl{")
	g.indent++
	for _, c := range classes {
		if err := g.generateClass(c); err != nil {
			return fmt.Errorf("failed to generate %s %s: %w", kindName(c), c.Name, err)
		}
	}
	g.indent--
	g.writeLine("}")
	g.indent--
	g.writeLine("}")
	g.writeLine("")
	return nil
}

func (g *Generator) generateClass(c *decl.Class) error {
	g.writeLine("{")
	g.indent++
	g.writeLine("Name: %q,", c.Name)
	if c.IsRole() {
		g.writeLine("Kind: moops.KindRole,")
	} else {
		g.writeLine("Kind: moops.KindClass,")
	}
	if c.Extends != "" {
		g.writeLine("Extends: %q,", c.Extends)
	}
	if len(c.With) > 0 {
		g.writeLine("With: %s,", stringSlice(c.With))
	}
	if len(c.Requires) > 0 {
		g.writeLine("Requires: %s,", stringSlice(c.Requires))
	}

	if len(c.Attributes) > 0 {
		g.writeLine("Attributes: []*moops.AttributeDecl{")
		g.indent++
		for _, a := range c.Attributes {
			if err := g.generateAttribute(a); err != nil {
				return fmt.Errorf("attribute %s: %w", a.Name, err)
			}
		}
		g.indent--
		g.writeLine("},")
	}

	if len(c.Methods) > 0 {
		g.writeLine("Methods: []*moops.MethodDecl{")
		g.indent++
		for _, m := range c.Methods {
			if err := g.generateMethod(m); err != nil {
				return fmt.Errorf("method %s: %w", m.Name, err)
			}
		}
		g.indent--
		g.writeLine("},")
	}

	if len(c.Modifiers) > 0 {
		g.writeLine("Modifiers: []*moops.ModifierDecl{")
		g.indent++
		for _, m := range c.Modifiers {
			if m.Source == "" {
				return fmt.Errorf("%s %s has a Go body", m.Kind, m.Method)
			}
			g.writeLine("{")
			g.indent++
			g.writeLine("Kind: %q,", m.Kind)
			g.writeLine("Method: %q,", m.Method)
			g.writeLine("Source: %s,", quote(m.Source))
			g.writePos(m.Pos)
			g.indent--
			g.writeLine("},")
		}
		g.indent--
		g.writeLine("},")
	}

	g.writePos(c.Pos)
	g.indent--
	g.writeLine("},")
	return nil
}

func (g *Generator) generateAttribute(a *decl.Attribute) error {
	g.writeLine("{")
	g.indent++
	g.writeLine("Name: %q,", a.Name)
	if a.Is != "" {
		g.writeLine("Is: %q,", a.Is)
	}
	if a.Isa != "" {
		g.writeLine("Isa: %q,", a.Isa)
	}
	if a.Default != nil {
		lit, err := literal(a.Default.V)
		if err != nil {
			return err
		}
		g.writeLine("Default: moops.Const(%s),", lit)
	}
	if a.Builder != "" {
		g.writeLine("Builder: %q,", a.Builder)
	}
	if a.Required {
		g.writeLine("Required: true,")
	}
	if a.Trigger != "" {
		g.writeLine("Trigger: %q,", a.Trigger)
	}
	g.writePos(a.Pos)
	g.indent--
	g.writeLine("},")
	return nil
}

func (g *Generator) generateMethod(m *decl.Method) error {
	if m.Source == "" {
		return fmt.Errorf("method has a Go body")
	}

	g.writeLine("{")
	g.indent++
	g.writeLine("Name: %q,", m.Name)
	if len(m.Params) > 0 {
		g.writeLine("Params: []*moops.ParamDecl{")
		g.indent++
		for _, p := range m.Params {
			if err := g.generateParam(p); err != nil {
				return fmt.Errorf("parameter $%s: %w", p.Name, err)
			}
		}
		g.indent--
		g.writeLine("},")
	}
	g.writeLine("Source: %s,", quote(m.Source))
	g.writePos(m.Pos)
	g.indent--
	g.writeLine("},")
	return nil
}

func (g *Generator) generateParam(p *decl.Param) error {
	fields := []string{fmt.Sprintf("Name: %q", p.Name)}
	if p.Isa != "" {
		fields = append(fields, fmt.Sprintf("Isa: %q", p.Isa))
	}
	if p.Named {
		fields = append(fields, "Named: true")
	}
	if p.Optional {
		fields = append(fields, "Optional: true")
	}
	if p.Required {
		fields = append(fields, "Required: true")
	}
	if p.Default != nil {
		lit, err := literal(p.Default.V)
		if err != nil {
			return err
		}
		fields = append(fields, fmt.Sprintf("Default: moops.Const(%s)", lit))
	}
	if p.Pos != (decl.Position{}) {
		fields = append(fields, posLiteral(p.Pos))
	}
	g.writeLine("{%s},", strings.Join(fields, ", "))
	return nil
}

func (g *Generator) writePos(pos decl.Position) {
	if pos == (decl.Position{}) {
		return
	}
	g.writeLine("%s,", posLiteral(pos))
}

func posLiteral(pos decl.Position) string {
	return fmt.Sprintf("Pos: moops.Position{File: %q, Line: %d, Column: %d}", pos.File, pos.Line, pos.Column)
}

// writeLine writes an indented line
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		fmt.Fprintf(g.buf, format, args...)
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
}

// literal renders a constant default as a Go expression
func literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return fmt.Sprintf("int64(%d)", x), nil
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return "float64(" + s + ")", nil
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			lit, err := literal(item)
			if err != nil {
				return "", err
			}
			parts[i] = lit
		}
		return "[]any{" + strings.Join(parts, ", ") + "}", nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			lit, err := literal(x[k])
			if err != nil {
				return "", err
			}
			parts[i] = strconv.Quote(k) + ": " + lit
		}
		return "map[string]any{" + strings.Join(parts, ", ") + "}", nil
	}
	if types.IsInt(v) {
		return fmt.Sprintf("%d", v), nil
	}
	return "", fmt.Errorf("cannot generate a literal for %T", v)
}

// quote returns a raw string literal when possible
func quote(s string) string {
	if !strings.Contains(s, "`") && !strings.Contains(s, "\r") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

func kindName(c *decl.Class) string {
	if c.IsRole() {
		return "role"
	}
	return "class"
}

func stringSlice(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(parts, ", ") + "}"
}
