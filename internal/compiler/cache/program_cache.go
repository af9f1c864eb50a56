package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/parser"
)

// DefaultSize is the number of programs kept when no size is configured
const DefaultSize = 128

// Entry is one parsed source. Programs are shared between callers and must
// not be modified.
type Entry struct {
	Program  *ast.Program
	Errors   []parser.ParseError
	Hash     string
	Path     string
	CachedAt time.Time
}

// Stats reports cache effectiveness
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate returns the hit rate as a percentage
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// ProgramCache is an LRU of parsed programs keyed by the SHA-256 of their
// source. It is safe for concurrent use.
type ProgramCache struct {
	entries *lru.Cache[string, *Entry]
	hasher  *FileHasher
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewProgramCache creates a cache holding at most size programs. A size of
// zero or less uses DefaultSize.
func NewProgramCache(size int) (*ProgramCache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, err
	}
	return &ProgramCache{entries: entries, hasher: NewFileHasher()}, nil
}

// Parse returns the parsed form of source, parsing it only when the same
// text has not been seen recently. The boolean reports a cache hit. A hit
// for identical text under another path yields a copy of the program that
// carries the new path.
func (pc *ProgramCache) Parse(path, source string) (*Entry, bool) {
	hash := pc.hasher.HashString(source)

	if cached, ok := pc.entries.Get(hash); ok {
		pc.hits.Add(1)
		if cached.Path == path {
			return cached, true
		}
		prog := *cached.Program
		prog.File = path
		moved := *cached
		moved.Program = &prog
		moved.Path = path
		return &moved, true
	}

	pc.misses.Add(1)
	prog, errs := parser.ParseSource(path, source)
	entry := &Entry{
		Program:  prog,
		Errors:   errs,
		Hash:     hash,
		Path:     path,
		CachedAt: time.Now(),
	}
	pc.entries.Add(hash, entry)
	return entry, false
}

// Get retrieves an entry by content hash
func (pc *ProgramCache) Get(hash string) (*Entry, bool) {
	return pc.entries.Peek(hash)
}

// Invalidate removes an entry by content hash
func (pc *ProgramCache) Invalidate(hash string) {
	pc.entries.Remove(hash)
}

// Purge clears the cache and its counters
func (pc *ProgramCache) Purge() {
	pc.entries.Purge()
	pc.hits.Store(0)
	pc.misses.Store(0)
}

// Len returns the number of cached programs
func (pc *ProgramCache) Len() int {
	return pc.entries.Len()
}

// Stats returns hit and miss counts since creation or the last Purge
func (pc *ProgramCache) Stats() Stats {
	return Stats{Hits: pc.hits.Load(), Misses: pc.misses.Load(), Size: pc.entries.Len()}
}
