package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/codegen"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/compiler/lower"
	"github.com/moops-lang/moops/internal/compiler/metadata"
	"github.com/moops-lang/moops/pkg/moops"
)

// NewGenerateCommand creates the gen command
func NewGenerateCommand() *cobra.Command {
	var (
		pkg          string
		output       string
		withMetadata bool
	)

	cmd := &cobra.Command{
		Use:     "gen <file>",
		Aliases: []string{"generate"},
		Short:   "Generate Go declarations from a source file",
		Long: `Generate a Go file that declares the classes and roles of a source file
through the moops package, so a Go program can register them without
parsing.

The project is loaded first, so the file is only generated when it checks.
Method bodies written in moops are not generated; declare those methods
from Go instead.

Examples:
  moops gen lib/shapes.moops
  moops gen lib/shapes.moops --package shapes -o shapes/declarations.go
  moops gen lib/shapes.moops --metadata`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}
			file := filepath.Clean(args[0])

			code, err := s.generate(cmd.ErrOrStderr(), file, codegen.Options{Package: pkg}, withMetadata)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), code)
				return nil
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(output, []byte(code), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			s.logger.Info("generated declarations", zap.String("source", file), zap.String("output", output))
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "Go package name (default \"declarations\")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&withMetadata, "metadata", false, "Embed the class metadata as JSON")

	return cmd
}

// generate checks file against the project and renders its declarations
func (s *session) generate(stderr io.Writer, file string, opts codegen.Options, withMetadata bool) (string, error) {
	pc, err := cache.NewProgramCache(s.cfg.Compile.CacheSize)
	if err != nil {
		return "", err
	}
	env, err := moops.New(append(s.envOptions(), moops.WithOutput(io.Discard), moops.WithProgramCache(pc))...)
	if err != nil {
		return "", err
	}

	units, diags, err := s.loadProject(env, append(s.sourceDirs(), file))
	if err != nil {
		return "", err
	}
	if diags.HasErrors() {
		writeDiagnostics(stderr, diags)
		return "", errFailed
	}
	unit := findUnit(units, file)
	if unit == nil {
		return "", fmt.Errorf("%s was not loaded", file)
	}

	entry, _ := pc.Parse(unit.File, unit.Source)
	if len(entry.Errors) > 0 {
		writeDiagnostics(stderr, errors.FromParseErrors(entry.Errors).AttachContext(unit.File, unit.Source))
		return "", errFailed
	}
	res, err := lower.Program(entry.Program)
	if err != nil {
		return "", err
	}

	if withMetadata {
		extractor := metadata.NewExtractor(Version)
		extractor.AddProgram(entry.Program)
		data, err := metadata.Serialize(extractor.Extract(unit.Classes))
		if err != nil {
			return "", err
		}
		opts.Metadata = string(data)
	}

	return codegen.NewGenerator().GenerateUnit(res.Unit, opts)
}
