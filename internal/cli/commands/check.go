package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/cli/ui"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/watch"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var (
		format    string
		strict    bool
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "check [dirs...]",
		Short: "Check class and role declarations",
		Long: `Load every .moops file of the project and report declaration errors.

Sources come from the directories given as arguments, or from source.dirs
in moops.yml. Nothing is executed: top-level statements are skipped.

Examples:
  moops check
  moops check lib/ --strict
  moops check --format json
  moops check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}
			if format != formatText && format != formatJSON {
				return fmt.Errorf("unknown format %q (expected text or json)", format)
			}
			if strict {
				s.cfg.Compile.Strict = true
			}

			dirs := args
			if len(dirs) == 0 {
				dirs = s.sourceDirs()
			}

			checker, err := watch.NewIncrementalChecker(dirs, s.cfg.Compile.CacheSize, s.logger, s.envOptions()...)
			if err != nil {
				return err
			}

			if watchMode {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watchProject(ctx, cmd.OutOrStdout(), s, checker, dirs, format)
			}

			var result *watch.CheckResult
			check := func() error {
				var err error
				result, err = checker.Check()
				return err
			}
			if format == formatText {
				err = ui.WithSpinner(cmd.ErrOrStderr(), "Checking declarations", plainOutput(), check)
			} else {
				err = check()
			}
			if err != nil {
				return err
			}
			return reportCheck(cmd.OutOrStdout(), result, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat unknown type names as errors")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Check again whenever a source changes")

	return cmd
}

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Check declarations whenever a source changes",
		Long: `Watch the project sources and check them after every change.

Only the changed files and the files depending on their classes are parsed
again. Press Ctrl+C to stop.

Examples:
  moops watch
  moops watch lib/ --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}

			dirs := args
			if len(dirs) == 0 {
				dirs = s.sourceDirs()
			}
			checker, err := watch.NewIncrementalChecker(dirs, s.cfg.Compile.CacheSize, s.logger, s.envOptions()...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watchProject(ctx, cmd.OutOrStdout(), s, checker, dirs, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text or json")

	return cmd
}

// watchProject checks once, then again after every batch of changes until
// ctx is done
func watchProject(ctx context.Context, w io.Writer, s *session, checker *watch.IncrementalChecker, dirs []string, format string) error {
	result, err := checker.Check()
	if err != nil {
		return err
	}
	_ = reportCheck(w, result, format)

	watcher, err := watch.NewFileWatcher(watch.Options{
		Dirs:     dirs,
		Patterns: s.cfg.Watch.Patterns,
		Ignored:  []string{"*.swp", "*.swo", "*~", ".DS_Store"},
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger.Named("watch"),
	}, func(changed []string) error {
		if format == formatText {
			fmt.Fprintf(w, "\n%s %s\n", color.CyanString("↻"), changedSummary(changed))
		}
		result, err := checker.Recheck(changed)
		if err != nil {
			return err
		}
		_ = reportCheck(w, result, format)
		return nil
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			s.logger.Warn("stopping watcher", zap.Error(err))
		}
	}()

	if format == formatText {
		color.New(color.FgYellow).Fprintln(w, "Watching for changes. Press Ctrl+C to stop.")
	}
	<-ctx.Done()
	return nil
}

// checkReport is the json form of a check
type checkReport struct {
	Success     bool                    `json:"success"`
	Files       []string                `json:"files"`
	Classes     []string                `json:"classes"`
	Diagnostics []*errors.CompilerError `json:"diagnostics"`
	DurationMS  int64                   `json:"duration_ms"`
}

// reportCheck prints a check result. It returns errFailed when the check
// found errors.
func reportCheck(w io.Writer, result *watch.CheckResult, format string) error {
	if format == formatJSON {
		report := checkReport{
			Success:     result.Success,
			Files:       nonNil(result.Files),
			Classes:     nonNil(result.Classes),
			Diagnostics: result.Diagnostics,
			DurationMS:  result.Duration.Milliseconds(),
		}
		if report.Diagnostics == nil {
			report.Diagnostics = []*errors.CompilerError{}
		}
		if err := writeJSON(w, report); err != nil {
			return err
		}
		if !result.Success {
			return errFailed
		}
		return nil
	}

	writeDiagnostics(w, result.Diagnostics)
	errs, warnings, _ := result.Diagnostics.ErrorCount()
	if !result.Success {
		fmt.Fprint(w, ui.CheckFailed(errs, warnings, plainOutput()))
		return errFailed
	}
	if warnings > 0 {
		fmt.Fprint(w, ui.Warning(count(warnings, "warning")+" reported. Run with --strict to fail on warnings.", nil, plainOutput()))
	}
	ui.WriteSuccess(w, fmt.Sprintf("%s, %s checked in %s",
		count(len(result.Files), "file"),
		count(len(result.Classes), "class"),
		result.Duration.Round(time.Millisecond)), plainOutput())
	return nil
}

func changedSummary(changed []string) string {
	if len(changed) == 1 {
		return changed[0] + " changed"
	}
	return count(len(changed), "file") + " changed"
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
