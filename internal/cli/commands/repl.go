package commands

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/compiler/lexer"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/types"
	"github.com/moops-lang/moops/pkg/moops"
)

const (
	replFile           = "<repl>"
	continuationPrompt = "...> "
)

const replHelp = `Enter declarations or statements. Input continues over several lines
until it parses.

Commands:
  :classes       list declared classes and roles
  :globals       list variables defined so far
  :load <file>   load a source file
  :help          show this help
  :quit          leave the REPL`

// NewReplCommand creates the repl command
func NewReplCommand() *cobra.Command {
	var load bool

	cmd := &cobra.Command{
		Use:   "repl [files...]",
		Short: "Start an interactive session",
		Long: `Start an interactive session. Classes declared in one input are
available to the next, and so are variables.

Files given as arguments are loaded first. With --project the sources of
the project are loaded too.

Examples:
  moops repl
  moops repl examples/calculator/calculator.moops
  moops repl --project`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentSession()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			env, err := moops.New(append(s.envOptions(), moops.WithOutput(out))...)
			if err != nil {
				return err
			}

			if load || len(args) > 0 {
				var paths []string
				if !load {
					paths = args
				} else {
					paths = append(s.sourceDirs(), args...)
				}
				units, diags, err := s.loadProject(env, paths)
				if err != nil {
					return err
				}
				writeDiagnostics(cmd.ErrOrStderr(), diags)
				s.logger.Debug("preloaded sources", zap.Int("units", len(units)))
			}

			return runRepl(s, env, out)
		},
	}

	cmd.Flags().BoolVarP(&load, "project", "p", false, "Load the project sources first")

	return cmd
}

func runRepl(s *session, env *moops.Environment, out io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	history := s.cfg.Repl.HistoryFile
	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(history); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	color.New(color.FgCyan, color.Bold).Fprintf(out, "moops %s\n", Version)
	fmt.Fprintln(out, "Type :help for commands, :quit to leave.")

	r := &repl{env: env, out: out}
	for {
		src, ok := readInput(ln, s.cfg.Repl.Prompt)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if r.handle(src) {
			return nil
		}
	}
}

// readInput prompts until the input parses or fails for a reason other
// than ending early. ok is false at end of input.
func readInput(ln *liner.State, prompt string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = continuationPrompt
		}
		line, err := ln.Prompt(p)
		if stderrors.Is(err, io.EOF) {
			return "", false
		}
		if stderrors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src only fails to parse because it ends
// too early
func incomplete(src string) bool {
	_, errs := parser.ParseSource(replFile, src)
	for _, e := range errs {
		if e.Token.Type == lexer.TOKEN_EOF || strings.HasPrefix(e.Message, "Unterminated") {
			return true
		}
	}
	return false
}

// repl evaluates input against one environment
type repl struct {
	env *moops.Environment
	out io.Writer
}

// handle runs one input and reports whether the session should end
func (r *repl) handle(src string) bool {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}

	v, err := r.env.Eval(replFile, src)
	if err != nil {
		r.fail(err)
		return false
	}
	if v != nil {
		fmt.Fprintln(r.out, types.FormatValue(v))
	}
	return false
}

func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprintln(r.out, replHelp)
	case ":classes":
		r.listClasses()
	case ":globals":
		for _, name := range r.env.Globals() {
			fmt.Fprintln(r.out, name)
		}
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(r.out, "usage: :load <file>")
			return false
		}
		u, err := r.env.LoadFile(filepath.Clean(fields[1]))
		if err != nil {
			r.fail(err)
			return false
		}
		if err := u.Run(); err != nil {
			r.fail(u.Diagnose(err))
			return false
		}
		fmt.Fprintf(r.out, "loaded %s\n", strings.Join(u.ClassNames(), ", "))
	default:
		fmt.Fprintf(r.out, "unknown command %s. Type :help for commands.\n", fields[0])
	}
	return false
}

func (r *repl) listClasses() {
	for _, c := range r.env.Registry().Classes() {
		line := c.Kind.String() + " " + c.Name
		if p := c.Parent(); p != nil {
			line += " extends " + p.Name
		}
		if roles := c.AllRoles(); len(roles) > 0 {
			line += " with " + strings.Join(roles, ", ")
		}
		fmt.Fprintln(r.out, line)
	}
}

func (r *repl) fail(err error) {
	red := color.New(color.FgRed)
	for _, e := range errors.FromError(err) {
		red.Fprintln(r.out, errors.FormatCompact(e))
	}
}
