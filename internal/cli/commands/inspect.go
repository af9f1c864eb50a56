package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moops-lang/moops/internal/cli/ui"
	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/metadata"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
	"github.com/moops-lang/moops/pkg/moops"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:     "inspect [class]",
		Aliases: []string{"introspect"},
		Short:   "Show declared classes and roles",
		Long: `Load the project and show what the metaobject registry holds.

Without an argument every class and role is listed. With a class name its
attributes, methods, and modifiers are shown, inherited members included.

Examples:
  moops inspect
  moops inspect Dog
  moops inspect --format json
  moops inspect -o classes.yml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}
			switch format {
			case formatTable, formatJSON, formatYAML:
			default:
				return fmt.Errorf("unknown format %q (expected table, json or yaml)", format)
			}

			meta, err := s.inspectProject(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				cm, ok := meta.Class(args[0])
				if !ok {
					suggestions := ustrings.FindSimilar(args[0], meta.ClassNames(), nil)
					fmt.Fprint(cmd.ErrOrStderr(), ui.ClassNotFoundError(args[0], suggestions, plainOutput()))
					return errFailed
				}
				meta = &metadata.Metadata{
					Version:    meta.Version,
					SourceHash: meta.SourceHash,
					Classes:    []metadata.ClassMetadata{*cm},
				}
			}

			if output != "" {
				if format == formatTable {
					return fmt.Errorf("--output needs --format json or yaml")
				}
				if err := metadata.WriteToFile(meta, output); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), "Metadata written to "+output, plainOutput())
				return nil
			}

			w := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				data, err := metadata.Serialize(meta)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(data))
			case formatYAML:
				data, err := metadata.SerializeYAML(meta)
				if err != nil {
					return err
				}
				fmt.Fprint(w, string(data))
			default:
				if len(args) == 1 {
					renderClass(w, &meta.Classes[0])
				} else {
					renderClassList(w, meta)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write metadata to a file (.json, .yml or .yaml)")

	return cmd
}

// inspectProject loads the project and snapshots its registry, with the
// declaration site of every class and the exports of the prelude libraries
func (s *session) inspectProject(stderr io.Writer) (*metadata.Metadata, error) {
	pc, err := cache.NewProgramCache(s.cfg.Compile.CacheSize)
	if err != nil {
		return nil, err
	}
	env, err := moops.New(append(s.envOptions(), moops.WithOutput(io.Discard), moops.WithProgramCache(pc))...)
	if err != nil {
		return nil, err
	}

	units, diags, err := s.loadProject(env, nil)
	if err != nil {
		return nil, err
	}
	if diags.HasErrors() {
		writeDiagnostics(stderr, diags)
		return nil, errFailed
	}

	extractor := metadata.NewExtractor(Version)
	for _, u := range units {
		// Already parsed by LoadFiles, so this is a cache hit
		if entry, _ := pc.Parse(u.File, u.Source); entry.Program != nil {
			extractor.AddProgram(entry.Program)
		}
	}
	meta := extractor.ExtractRegistry(env.Registry())
	meta.Libraries = metadata.ExtractLibraries(env.Universe())
	return meta, nil
}

func renderClassList(w io.Writer, meta *metadata.Metadata) {
	if len(meta.Classes) == 0 {
		fmt.Fprintln(w, "No classes declared.")
		return
	}

	ui.Header(w, fmt.Sprintf("Classes (%d)", len(meta.Classes)), plainOutput())
	table := ui.NewTable(w, []string{"NAME", "KIND", "EXTENDS", "ROLES", "ATTRS", "METHODS", "DECLARED"}, &ui.TableOptions{NoColor: plainOutput()})
	for _, c := range meta.Classes {
		table.AddRow(c.Name, c.Kind, orDash(c.Parent), orDash(strings.Join(c.Roles, ", ")),
			fmt.Sprint(len(c.Attributes)), fmt.Sprint(len(c.Methods)), declaredAt(c))
	}
	table.Render()
}

func renderClass(w io.Writer, c *metadata.ClassMetadata) {
	plain := plainOutput()
	ui.Header(w, c.Name, plain)

	kv := ui.NewKeyValueTable(w, plain)
	kv.AddRow("Kind", c.Kind)
	if c.Parent != "" {
		kv.AddRow("Extends", c.Parent)
	}
	if len(c.Lineage) > 1 {
		kv.AddRow("Lineage", strings.Join(c.Lineage, " → "))
	}
	if len(c.Roles) > 0 {
		kv.AddRow("Roles", strings.Join(c.Roles, ", "))
	}
	if len(c.Requires) > 0 {
		kv.AddRow("Requires", strings.Join(c.Requires, ", "))
	}
	kv.AddRow("Declared", declaredAt(*c))
	kv.Render()

	attrs := ui.NewSection(w, "Attributes", plain)
	for _, a := range c.Attributes {
		attrs.AddLine(describeAttribute(c, a))
	}
	attrs.Render()

	methods := ui.NewSection(w, "Methods", plain)
	for _, m := range c.Methods {
		line := m.Name + m.Signature
		if m.Owner != c.Name {
			line += "  (from " + m.Owner + ")"
		} else if m.Overrides != "" {
			line += "  (overrides " + m.Overrides + ")"
		}
		methods.AddLine(line)
	}
	methods.Render()

	mods := ui.NewSection(w, "Modifiers", plain)
	for _, m := range c.Modifiers {
		mods.AddLine(fmt.Sprintf("%s %s  (from %s)", m.Kind, m.Method, m.Owner))
	}
	mods.Render()
}

func describeAttribute(c *metadata.ClassMetadata, a metadata.AttributeMetadata) string {
	parts := []string{a.Name, "(" + a.Access + ")"}
	if a.Type != "" {
		parts = append(parts, a.Type)
	}
	if a.Required {
		parts = append(parts, "required")
	}
	if a.Default != "" {
		parts = append(parts, "default "+a.Default)
	}
	if a.Builder != "" {
		parts = append(parts, "builder "+a.Builder)
	}
	if a.Trigger != "" {
		parts = append(parts, "trigger "+a.Trigger)
	}
	if a.Owner != c.Name {
		parts = append(parts, "(from "+a.Owner+")")
	}
	return strings.Join(parts, " ")
}

func declaredAt(c metadata.ClassMetadata) string {
	if c.FilePath == "" {
		return "-"
	}
	if c.Line > 0 {
		return fmt.Sprintf("%s:%d", c.FilePath, c.Line)
	}
	return c.FilePath
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
