package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/cli/config"
	"github.com/moops-lang/moops/internal/cli/ui"
	"github.com/moops-lang/moops/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// Persistent flags shared by every command
var (
	projectDir string
	logLevel   string
	logFormat  string
	noColor    bool
)

// errFailed is returned after a command has already printed its
// diagnostics, so Execute only sets the exit status
var errFailed = errors.New("failed")

// configLoadError marks a moops.yml or .env that could not be loaded
type configLoadError struct {
	err error
}

func (e *configLoadError) Error() string { return e.err.Error() }

func (e *configLoadError) Unwrap() error { return e.err }

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moops",
		Short: "Declarative classes and roles with typed signatures",
		Long: color.CyanString(`moops - declarative classes, roles and methods

moops reads class and role declarations with typed attributes and method
signatures, checks them, and installs them into a metaobject registry.

Features:
  • Attributes with access modes, defaults, builders and triggers
  • Method signatures checked against type libraries
  • Roles with required methods
  • before and after modifiers
  • Go code generation and a language server`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := initSession()
			var cfgErr *configLoadError
			if errors.As(err, &cfgErr) {
				fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(cfgErr.Error(), nil, plainOutput()))
				return errFailed
			}
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&projectDir, "dir", "C", ".", "Project directory (holding moops.yml)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: console or json")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewReplCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewDocsCommand())
	rootCmd.AddCommand(NewLSPCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// session is the configuration and logger every command runs with
type session struct {
	cfg    *config.Config
	logger *zap.Logger
}

var current *session

// initSession loads the project configuration and builds the logger.
// Flags override the configuration file.
func initSession() (*session, error) {
	if noColor {
		color.NoColor = true
	}

	cfg, err := config.LoadFrom(projectDir)
	if err != nil {
		return nil, &configLoadError{err: err}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded",
		zap.String("file", cfg.File),
		zap.String("project", cfg.ProjectName),
		zap.Strings("source_dirs", cfg.Source.Dirs))

	current = &session{cfg: cfg, logger: logger}
	return current, nil
}

// currentSession returns the session set up by the root command, loading
// one when a command runs on its own
func currentSession() (*session, error) {
	if current != nil {
		return current, nil
	}
	return initSession()
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the moops version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			w := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(w, "moops version: ")
			fmt.Fprintln(w, Version)

			titleColor.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)

			titleColor.Fprint(w, "Build date: ")
			fmt.Fprintln(w, BuildDate)

			titleColor.Fprint(w, "Go version: ")
			fmt.Fprintln(w, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	err := rootCmd.Execute()
	if current != nil {
		_ = current.logger.Sync()
	}
	if err != nil && !errors.Is(err, errFailed) {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}
