package watch

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/pkg/moops"
)

// CheckResult holds the result of one check of the project
type CheckResult struct {
	Success     bool
	Diagnostics errors.ErrorList
	// Files are every source that was loaded, in load order
	Files []string
	// ChangedFiles triggered this check; Affected adds their dependents
	ChangedFiles []string
	Affected     []string
	Classes      []string
	Duration     time.Duration
}

// IncrementalChecker reloads a project into a fresh environment after each
// change. Parsed programs are shared between runs, so only changed files
// are parsed again.
type IncrementalChecker struct {
	dirs   []string
	cache  *cache.ProgramCache
	coord  *cache.Coordinator
	opts   []moops.Option
	logger *zap.Logger

	mu   sync.Mutex
	last *CheckResult
}

// NewIncrementalChecker creates a checker over the sources under dirs.
// opts configure every environment it builds.
func NewIncrementalChecker(dirs []string, cacheSize int, logger *zap.Logger, opts ...moops.Option) (*IncrementalChecker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pc, err := cache.NewProgramCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &IncrementalChecker{
		dirs:   dirs,
		cache:  pc,
		coord:  cache.NewCoordinator(pc, logger.Named("cache")),
		opts:   opts,
		logger: logger,
	}, nil
}

// Check loads every source of the project
func (ic *IncrementalChecker) Check() (*CheckResult, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.run(nil, nil)
}

// Recheck invalidates the changed files and everything depending on them,
// then loads the project again. Deleted files are forgotten.
func (ic *IncrementalChecker) Recheck(changed []string) (*CheckResult, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	affected := make(map[string]bool)
	for _, path := range changed {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			for _, dep := range ic.coord.Dependencies().GetTransitiveDependents(path) {
				affected[dep] = true
			}
			ic.coord.Forget(path)
			continue
		}
		for _, p := range ic.coord.InvalidateFile(path) {
			affected[p] = true
		}
	}

	list := make([]string, 0, len(affected))
	for p := range affected {
		list = append(list, p)
	}
	sort.Strings(list)
	return ic.run(changed, list)
}

// Last returns the most recent result, or nil before the first check
func (ic *IncrementalChecker) Last() *CheckResult {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.last
}

// Stats returns the statistics of the shared program cache
func (ic *IncrementalChecker) Stats() cache.Stats {
	return ic.cache.Stats()
}

func (ic *IncrementalChecker) run(changed, affected []string) (*CheckResult, error) {
	start := time.Now()

	files, err := ic.scan()
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		ChangedFiles: changed,
		Affected:     affected,
	}

	// Keep the dependency graph current for the next Recheck
	if _, _, err := ic.coord.ParseFiles(files); err != nil {
		ic.logger.Debug("dependency graph", zap.Error(err))
	}

	opts := append([]moops.Option{
		moops.WithLogger(ic.logger),
		moops.WithOutput(io.Discard),
	}, ic.opts...)
	opts = append(opts, moops.WithProgramCache(ic.cache))

	env, err := moops.New(opts...)
	if err != nil {
		return nil, err
	}

	units, err := env.LoadFiles(files...)
	if err != nil {
		result.Diagnostics = errors.FromError(err)
	}
	for _, u := range units {
		result.Files = append(result.Files, u.File)
		result.Classes = append(result.Classes, u.ClassNames()...)
		result.Diagnostics = append(result.Diagnostics, u.Warnings...)
	}

	result.Success = !result.Diagnostics.HasErrors()
	result.Duration = time.Since(start)
	ic.last = result

	ic.logger.Debug("checked project",
		zap.Int("files", len(files)),
		zap.Int("changed", len(changed)),
		zap.Bool("success", result.Success),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (ic *IncrementalChecker) scan() ([]string, error) {
	var files []string
	for _, dir := range ic.dirs {
		found, err := cache.ScanDirectory(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
