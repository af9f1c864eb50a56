package cache

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/parser"
)

// SourceExt is the file extension of moops sources
const SourceExt = ".moops"

// Metrics tracks the work done by one ParseFiles call
type Metrics struct {
	TotalFiles      int
	CacheHits       int
	CacheMisses     int
	ParsingDuration time.Duration
	TotalDuration   time.Duration
}

// CacheHitRate returns the cache hit rate as a percentage
func (m *Metrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}

// Result is the outcome of parsing one file
type Result struct {
	Path    string
	Source  string
	Program *ast.Program
	Errors  []parser.ParseError
	Hash    string
	Err     error // reading the file failed
	Cached  bool
}

// OK reports whether the file was read and parsed without errors
func (r *Result) OK() bool {
	return r.Err == nil && len(r.Errors) == 0
}

// Coordinator parses the files of a project through a ProgramCache and
// keeps the dependency graph between them.
type Coordinator struct {
	cache  *ProgramCache
	deps   *DependencyGraph
	hasher *FileHasher
	logger *zap.Logger

	mu     sync.Mutex
	hashes map[string]string // path to last parsed hash
}

// NewCoordinator creates a coordinator over cache. A nil logger logs nothing.
func NewCoordinator(cache *ProgramCache, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cache:  cache,
		deps:   NewDependencyGraph(),
		hasher: NewFileHasher(),
		logger: logger,
		hashes: make(map[string]string),
	}
}

// Dependencies returns the dependency graph
func (co *Coordinator) Dependencies() *DependencyGraph {
	return co.deps
}

// ParseFiles parses paths concurrently and returns results in load order:
// every file after the files declaring the classes it uses. Files that
// failed to read or parse keep their relative position at the end. A
// dependency cycle is returned as a *CycleError together with the results
// in path order.
func (co *Coordinator) ParseFiles(paths []string) ([]*Result, *Metrics, error) {
	start := time.Now()
	metrics := &Metrics{TotalFiles: len(paths)}

	results := make([]*Result, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			results[i] = co.parseFile(p)
		}(i, path)
	}
	wg.Wait()

	byPath := make(map[string]*Result, len(results))
	for _, r := range results {
		byPath[r.Path] = r
		if r.Err != nil {
			continue
		}
		if r.Cached {
			metrics.CacheHits++
		} else {
			metrics.CacheMisses++
		}
		if r.Program != nil {
			co.deps.AddProgram(r.Path, r.Program)
		}
	}
	metrics.ParsingDuration = time.Since(start)

	order, err := co.deps.GetTopologicalOrder()
	if err != nil {
		sorted := append([]*Result(nil), results...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
		metrics.TotalDuration = time.Since(start)
		return sorted, metrics, err
	}

	ordered := make([]*Result, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, path := range order {
		if r, ok := byPath[path]; ok && !seen[path] {
			ordered = append(ordered, r)
			seen[path] = true
		}
	}
	for _, r := range results {
		if !seen[r.Path] {
			ordered = append(ordered, r)
			seen[r.Path] = true
		}
	}

	metrics.TotalDuration = time.Since(start)
	co.logger.Debug("parsed files",
		zap.Int("files", metrics.TotalFiles),
		zap.Int("cache_hits", metrics.CacheHits),
		zap.Duration("duration", metrics.TotalDuration))
	return ordered, metrics, nil
}

func (co *Coordinator) parseFile(path string) *Result {
	hash, content, err := co.hasher.HashFile(path)
	if err != nil {
		return &Result{Path: path, Err: err}
	}

	entry, cached := co.cache.Parse(path, string(content))

	co.mu.Lock()
	co.hashes[path] = hash
	co.mu.Unlock()

	return &Result{
		Path:    path,
		Source:  string(content),
		Program: entry.Program,
		Errors:  entry.Errors,
		Hash:    hash,
		Cached:  cached,
	}
}

// InvalidateFile drops a file from the cache and returns it together with
// every file that transitively depends on it; those need reloading.
func (co *Coordinator) InvalidateFile(path string) []string {
	co.mu.Lock()
	if hash, ok := co.hashes[path]; ok {
		co.cache.Invalidate(hash)
		delete(co.hashes, path)
	}
	co.mu.Unlock()

	return append([]string{path}, co.deps.GetTransitiveDependents(path)...)
}

// Forget removes a deleted file from the dependency graph
func (co *Coordinator) Forget(path string) {
	co.InvalidateFile(path)
	co.deps.RemoveFile(path)
}

// ScanDirectory returns the moops source files under dir, sorted
func ScanDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != dir && len(info.Name()) > 1 && info.Name()[0] == '.' {
			return filepath.SkipDir
		}
		if !info.IsDir() && filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
