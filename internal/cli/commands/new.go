package commands

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/moops-lang/moops/internal/types"
)

//go:embed templates/*
var templatesFS embed.FS

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}
	// Dots are rejected too, so ".." cannot escape the parent directory
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}
	return nil
}

// projectSettings is the data the project templates render
type projectSettings struct {
	ProjectName string
	Prelude     []string
	Strict      bool
}

// projectFiles maps created files to their templates
var projectFiles = []struct {
	path     string
	template string
}{
	{"moops.yml", "templates/moops.yml.tmpl"},
	{"lib/greeter.moops", "templates/greeter.moops.tmpl"},
	{"main.moops", "templates/main.moops.tmpl"},
	{".gitignore", "templates/gitignore.tmpl"},
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	var (
		interactive bool
		settings    projectSettings
	)

	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new moops project",
		Long: `Create a new moops project with a configuration file and sample sources.

If no project name is provided, you will be prompted to enter one.

Examples:
  moops new shapes
  moops new shapes --prelude Types::Standard,Types::Common::Numeric
  moops new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.ProjectName = args[0]
			}
			if interactive {
				if err := askProjectSettings(&settings); err != nil {
					return err
				}
			} else if settings.ProjectName == "" {
				prompt := &survey.Input{Message: "Project name:"}
				if err := survey.AskOne(prompt, &settings.ProjectName, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			if err := validateProjectName(settings.ProjectName); err != nil {
				return err
			}
			if err := checkPrelude(settings.Prelude); err != nil {
				return err
			}

			projectPath := filepath.Join(projectDir, settings.ProjectName)
			return createProject(cmd.OutOrStdout(), projectPath, settings)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Interactive project setup with prompts")
	cmd.Flags().StringSliceVar(&settings.Prelude, "prelude", []string{types.StandardLibrary}, "Type libraries imported into every source")
	cmd.Flags().BoolVar(&settings.Strict, "strict", false, "Treat warnings as errors")

	return cmd
}

func askProjectSettings(settings *projectSettings) error {
	questions := []*survey.Question{
		{
			Name: "ProjectName",
			Prompt: &survey.Input{
				Message: "Project name:",
				Default: settings.ProjectName,
			},
			Validate: func(ans interface{}) error {
				return validateProjectName(fmt.Sprint(ans))
			},
		},
		{
			Name: "Prelude",
			Prompt: &survey.MultiSelect{
				Message: "Type libraries to import everywhere:",
				Options: types.DefaultUniverse().Names(),
				Default: settings.Prelude,
			},
		},
		{
			Name: "Strict",
			Prompt: &survey.Confirm{
				Message: "Treat warnings as errors?",
				Default: settings.Strict,
			},
		},
	}
	return survey.Ask(questions, settings)
}

// checkPrelude rejects library names the default universe does not know
func checkPrelude(prelude []string) error {
	u := types.DefaultUniverse()
	for _, name := range prelude {
		if _, ok := u.Library(name); !ok {
			return fmt.Errorf("unknown type library %q (available: %s)", name, strings.Join(u.Names(), ", "))
		}
	}
	return nil
}

// createProject renders the project templates into path, removing what it
// created when a step fails
func createProject(w io.Writer, path string, settings projectSettings) (err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("directory %s already exists", path)
	}

	infoColor := color.New(color.FgCyan)
	infoColor.Fprintf(w, "Creating project: %s\n\n", settings.ProjectName)

	if err := os.MkdirAll(filepath.Join(path, "lib"), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(path)
		}
	}()

	for _, f := range projectFiles {
		if err := renderTemplate(filepath.Join(path, f.path), f.template, settings); err != nil {
			return err
		}
		infoColor.Fprintf(w, "  ✓ Created %s\n", f.path)
	}

	fmt.Fprintln(w)
	color.New(color.FgGreen, color.Bold).Fprintf(w, "✓ Created project: %s\n\n", settings.ProjectName)
	color.New(color.FgYellow).Fprintln(w, "Get started:")
	fmt.Fprintf(w, "  cd %s\n", path)
	fmt.Fprintln(w, "  moops check")
	fmt.Fprintln(w, "  moops run main.moops")
	fmt.Fprintln(w)
	return nil
}

func renderTemplate(dest, name string, data projectSettings) error {
	content, err := templatesFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}
	tmpl, err := template.New(filepath.Base(name)).Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", dest, err)
	}
	return nil
}
