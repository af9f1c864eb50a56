package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/pkg/moops"
)

// Output formats shared by check and inspect
const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// sourceDirs returns the configured source directories relative to the
// project directory
func (s *session) sourceDirs() []string {
	dirs := make([]string, 0, len(s.cfg.Source.Dirs))
	for _, d := range s.cfg.Source.Dirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(projectDir, d)
		}
		dirs = append(dirs, filepath.Clean(d))
	}
	return dirs
}

// envOptions configures an environment from the project configuration
func (s *session) envOptions() []moops.Option {
	return []moops.Option{
		moops.WithLogger(s.logger),
		moops.WithPrelude(s.cfg.Compile.Prelude...),
		moops.WithStrict(s.cfg.Compile.Strict),
		moops.WithCacheSize(s.cfg.Compile.CacheSize),
	}
}

// sourceFiles expands paths into .moops files. Directories are scanned
// recursively; no paths means the configured source directories.
func (s *session) sourceFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = s.sourceDirs()
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		found, err := cache.ScanDirectory(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		for _, f := range found {
			add(f)
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadProject loads every source file of the project into env. The
// returned diagnostics are nil on success.
func (s *session) loadProject(env *moops.Environment, paths []string) ([]*moops.Unit, errors.ErrorList, error) {
	files, err := s.sourceFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no %s files found", cache.SourceExt)
	}

	units, err := env.LoadFiles(files...)
	if err != nil {
		return units, errors.FromError(err), nil
	}
	return units, nil, nil
}

// writeDiagnostics prints diagnostics in the terminal format
func writeDiagnostics(w io.Writer, diags errors.ErrorList) {
	if len(diags) == 0 {
		return
	}
	red := color.New(color.FgRed)
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if d.Severity == errors.SeverityError {
			red.Fprint(w, d.Format())
		} else {
			fmt.Fprint(w, d.Format())
		}
	}
	fmt.Fprintln(w)
}

// writeJSON writes v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// plainOutput reports whether colors are off
func plainOutput() bool {
	return noColor || color.NoColor
}

func count(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	if strings.HasSuffix(word, "s") {
		return fmt.Sprintf("%d %ses", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
