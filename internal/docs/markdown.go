package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moops-lang/moops/internal/compiler/metadata"
)

// MarkdownGenerator generates Markdown documentation
type MarkdownGenerator struct {
	config *Config
}

// NewMarkdownGenerator creates a new Markdown generator
func NewMarkdownGenerator(config *Config) *MarkdownGenerator {
	return &MarkdownGenerator{
		config: config,
	}
}

// Generate writes README.md and one page per class into the output
// directory
func (g *MarkdownGenerator) Generate(meta *metadata.Metadata) ([]string, error) {
	if err := os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	written := make([]string, 0, len(meta.Classes)+1)
	index := filepath.Join(g.config.OutputDir, "README.md")
	if err := os.WriteFile(index, []byte(g.renderIndex(meta)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", index, err)
	}
	written = append(written, index)

	for i := range meta.Classes {
		c := &meta.Classes[i]
		path := filepath.Join(g.config.OutputDir, pageName(c.Name))
		if err := os.WriteFile(path, []byte(g.renderClass(meta, c)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *MarkdownGenerator) renderIndex(meta *metadata.Metadata) string {
	var buf strings.Builder

	name := g.config.ProjectName
	if name == "" {
		name = "moops"
	}
	fmt.Fprintf(&buf, "# %s Class Reference\n\n", name)
	if g.config.ProjectVersion != "" {
		fmt.Fprintf(&buf, "**Version:** v%s\n\n", g.config.ProjectVersion)
	}

	var classes, roles []metadata.ClassMetadata
	for _, c := range meta.Classes {
		if c.Kind == "role" {
			roles = append(roles, c)
		} else {
			classes = append(classes, c)
		}
	}

	buf.WriteString("## Classes\n\n")
	if len(classes) == 0 {
		buf.WriteString("No classes declared.\n\n")
	} else {
		buf.WriteString("| Class | Extends | Roles | Summary |\n")
		buf.WriteString("|-------|---------|-------|---------|\n")
		for _, c := range classes {
			fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n",
				link(c.Name), orDash(linkIfKnown(meta, c.Parent)), orDash(linkAll(meta, c.Roles)), escapeCell(summary(c.Doc)))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Roles\n\n")
	if len(roles) == 0 {
		buf.WriteString("No roles declared.\n\n")
	} else {
		buf.WriteString("| Role | Requires | Summary |\n")
		buf.WriteString("|------|----------|---------|\n")
		for _, r := range roles {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", link(r.Name), orDash(code(r.Requires)), escapeCell(summary(r.Doc)))
		}
		buf.WriteString("\n")
	}

	if len(meta.Libraries) > 0 {
		buf.WriteString("## Type Libraries\n\n")
		for _, lib := range meta.Libraries {
			fmt.Fprintf(&buf, "- `%s`: %s\n", lib.Name, code(lib.Types))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

func (g *MarkdownGenerator) renderClass(meta *metadata.Metadata, c *metadata.ClassMetadata) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "# %s\n\n", c.Name)
	if c.Doc != "" {
		for _, line := range strings.Split(c.Doc, "\n") {
			fmt.Fprintf(&buf, "> %s\n", line)
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "**Kind:** %s  \n", c.Kind)
	if c.Parent != "" {
		fmt.Fprintf(&buf, "**Extends:** %s  \n", linkIfKnown(meta, c.Parent))
	}
	if len(c.Lineage) > 1 {
		fmt.Fprintf(&buf, "**Lineage:** %s  \n", strings.Join(c.Lineage, " → "))
	}
	if len(c.Roles) > 0 {
		fmt.Fprintf(&buf, "**Roles:** %s  \n", linkAll(meta, c.Roles))
	}
	if len(c.Requires) > 0 {
		fmt.Fprintf(&buf, "**Requires:** %s  \n", code(c.Requires))
	}
	if c.FilePath != "" {
		fmt.Fprintf(&buf, "**Declared in:** `%s:%d`  \n", c.FilePath, c.Line)
	}
	buf.WriteString("\n")

	buf.WriteString("## Attributes\n\n")
	if len(c.Attributes) == 0 {
		buf.WriteString("No attributes.\n\n")
	} else {
		buf.WriteString("| Name | Access | Type | Required | Default | Declared by |\n")
		buf.WriteString("|------|--------|------|----------|---------|-------------|\n")
		for _, a := range c.Attributes {
			required := "No"
			if a.Required {
				required = "Yes"
			}
			def := a.Default
			if def == "" && a.Builder != "" {
				def = "builder " + a.Builder
			}
			fmt.Fprintf(&buf, "| `%s` | %s | %s | %s | %s | %s |\n",
				a.Name, a.Access, orDash(escapeCell(a.Type)), required, orDash(escapeCell(def)), a.Owner)
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Methods\n\n")
	if len(c.Methods) == 0 {
		buf.WriteString("No methods.\n\n")
	}
	for _, m := range c.Methods {
		fmt.Fprintf(&buf, "### %s\n\n", m.Name)
		fmt.Fprintf(&buf, "```\nmethod %s%s\n```\n\n", m.Name, m.Signature)
		switch {
		case m.Owner != c.Name:
			fmt.Fprintf(&buf, "Inherited from %s.\n\n", linkIfKnown(meta, m.Owner))
		case m.Overrides != "":
			fmt.Fprintf(&buf, "Overrides %s.\n\n", linkIfKnown(meta, m.Overrides))
		}
		if len(m.Params) > 0 {
			buf.WriteString("| Parameter | Type | Kind | Default |\n")
			buf.WriteString("|-----------|------|------|---------|\n")
			for _, p := range m.Params {
				fmt.Fprintf(&buf, "| `%s` | %s | %s | %s |\n",
					p.Name, orDash(escapeCell(p.Type)), paramKind(p), orDash(escapeCell(p.Default)))
			}
			buf.WriteString("\n")
		}
	}

	if len(c.Modifiers) > 0 {
		buf.WriteString("## Modifiers\n\n")
		for _, m := range c.Modifiers {
			fmt.Fprintf(&buf, "- `%s %s` from %s\n", m.Kind, m.Method, m.Owner)
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// pageName is the file a class is documented in. Package separators
// become dashes.
func pageName(class string) string {
	return strings.ToLower(strings.ReplaceAll(class, "::", "-")) + ".md"
}

func link(class string) string {
	return fmt.Sprintf("[%s](%s)", class, pageName(class))
}

// linkIfKnown links class when it has a page of its own
func linkIfKnown(meta *metadata.Metadata, class string) string {
	if class == "" {
		return ""
	}
	if _, ok := meta.Class(class); ok {
		return link(class)
	}
	return class
}

func linkAll(meta *metadata.Metadata, classes []string) string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = linkIfKnown(meta, c)
	}
	return strings.Join(out, ", ")
}

func code(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "`" + n + "`"
	}
	return strings.Join(out, ", ")
}

func paramKind(p metadata.ParamMetadata) string {
	kind := "positional"
	if p.Named {
		kind = "named"
	}
	if p.Optional {
		kind += ", optional"
	}
	return kind
}

// summary is the first line of a doc comment
func summary(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
