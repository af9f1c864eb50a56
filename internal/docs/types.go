// Package docs generates a Markdown reference for the classes and roles of
// a moops project. It reads the same metadata snapshot `moops inspect`
// prints, so inherited attributes and composed methods are documented on
// every class that has them.
package docs

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/metadata"
)

// Config holds configuration for documentation generation
type Config struct {
	// ProjectName heads the index page
	ProjectName string

	// ProjectVersion is printed under the heading when set
	ProjectVersion string

	// OutputDir receives README.md and one page per class
	OutputDir string
}

// Generator writes documentation for a metadata snapshot
type Generator struct {
	config   *Config
	markdown *MarkdownGenerator
}

// NewGenerator creates a generator writing to config.OutputDir
func NewGenerator(config *Config) *Generator {
	return &Generator{
		config:   config,
		markdown: NewMarkdownGenerator(config),
	}
}

// Generate writes the index and class pages and returns the paths written,
// index first
func (g *Generator) Generate(meta *metadata.Metadata) ([]string, error) {
	if g.config.OutputDir == "" {
		return nil, fmt.Errorf("no output directory configured")
	}
	if meta == nil {
		return nil, fmt.Errorf("no metadata to document")
	}
	return g.markdown.Generate(meta)
}
