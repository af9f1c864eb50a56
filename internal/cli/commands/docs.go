package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/cli/ui"
	"github.com/moops-lang/moops/internal/docs"
)

// NewDocsCommand creates the docs command
func NewDocsCommand() *cobra.Command {
	var (
		outputDir      string
		projectVersion string
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate a Markdown class reference",
		Long: `Load the project and write a Markdown page for every class and role,
plus an index. Comment lines starting with # directly above a declaration
become its description.

Examples:
  moops docs
  moops docs -o site/reference --project-version 1.2.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}

			meta, err := s.inspectProject(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !filepath.IsAbs(outputDir) {
				outputDir = filepath.Join(projectDir, outputDir)
			}
			gen := docs.NewGenerator(&docs.Config{
				ProjectName:    s.cfg.ProjectName,
				ProjectVersion: projectVersion,
				OutputDir:      outputDir,
			})
			written, err := gen.Generate(meta)
			if err != nil {
				return err
			}

			s.logger.Debug("documentation generated", zap.String("dir", outputDir), zap.Int("pages", len(written)))
			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Documented %s in %s", count(len(meta.Classes), "class"), outputDir), plainOutput())
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "docs", "Directory to write the reference into")
	cmd.Flags().StringVar(&projectVersion, "project-version", "", "Version printed on the index page")

	return cmd
}
