package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/pkg/moops"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var standalone bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Load the project and run a file",
		Long: `Load the declarations of the project, then run the top-level statements
of the given file.

The file may use every class declared under source.dirs. With --standalone
only the file itself is loaded.

Examples:
  moops run main.moops
  moops run scratch.moops --standalone`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}

			file := filepath.Clean(args[0])
			if _, err := os.Stat(file); err != nil {
				return err
			}

			env, err := moops.New(append(s.envOptions(), moops.WithOutput(cmd.OutOrStdout()))...)
			if err != nil {
				return err
			}

			paths := []string{file}
			if !standalone {
				paths = append(s.sourceDirs(), file)
			}
			units, diags, err := s.loadProject(env, paths)
			if err != nil {
				return err
			}
			if diags.HasErrors() {
				writeDiagnostics(cmd.ErrOrStderr(), diags)
				return errFailed
			}

			unit := findUnit(units, file)
			if unit == nil {
				return fmt.Errorf("%s was not loaded", file)
			}
			s.logger.Debug("running unit",
				zap.String("file", unit.File),
				zap.Int("units", len(units)),
				zap.Bool("statements", unit.HasStatements()))

			if err := unit.Run(); err != nil {
				writeDiagnostics(cmd.ErrOrStderr(), unit.Diagnose(err))
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&standalone, "standalone", false, "Load only the given file")

	return cmd
}

func findUnit(units []*moops.Unit, file string) *moops.Unit {
	want, _ := filepath.Abs(file)
	for _, u := range units {
		if got, _ := filepath.Abs(u.File); got == want {
			return u
		}
	}
	return nil
}
