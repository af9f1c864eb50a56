// Package moops is the embedding API. An Environment owns a type universe,
// a class registry and an interpreter; sources loaded into it declare
// classes that Go code can construct and call, and Go code can declare
// classes of its own through decl values.
package moops

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/cache"
	"github.com/moops-lang/moops/internal/compiler/checker"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/compiler/lower"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/interp"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/rewriter"
	"github.com/moops-lang/moops/internal/types"
)

// Environment is one isolated world of classes. It is safe for concurrent
// Construct and Class calls; loads are serialized.
type Environment struct {
	universe *types.Universe
	registry *mop.Registry
	interp   *interp.Interpreter
	cache    *cache.ProgramCache
	logger   *zap.Logger
	out      io.Writer

	prelude   []string
	strict    bool
	cacheSize int

	mu      sync.Mutex
	globals *interp.Environment
}

// Option configures an Environment
type Option func(*Environment)

// WithLogger sets the logger shared by the registry, rewriter and
// interpreter.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Environment) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithOutput sets where say writes. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Environment) {
		if w != nil {
			e.out = w
		}
	}
}

// WithPrelude names libraries imported into every unit before its own use
// directives.
func WithPrelude(libraries ...string) Option {
	return func(e *Environment) {
		e.prelude = append([]string(nil), libraries...)
	}
}

// WithStrict makes checker warnings fail a load
func WithStrict(strict bool) Option {
	return func(e *Environment) {
		e.strict = strict
	}
}

// WithCacheSize sets how many parsed programs are kept
func WithCacheSize(n int) Option {
	return func(e *Environment) {
		e.cacheSize = n
	}
}

// WithProgramCache shares a parsed-program cache between environments, so
// reloading a project only reparses the files that changed.
func WithProgramCache(pc *cache.ProgramCache) Option {
	return func(e *Environment) {
		e.cache = pc
	}
}

// WithUniverse replaces the default type universe
func WithUniverse(u *types.Universe) Option {
	return func(e *Environment) {
		if u != nil {
			e.universe = u
		}
	}
}

// New creates an environment with the default type universe and
// Types::Standard in its prelude.
func New(opts ...Option) (*Environment, error) {
	e := &Environment{
		universe:  types.DefaultUniverse(),
		logger:    zap.NewNop(),
		out:       os.Stdout,
		prelude:   []string{types.StandardLibrary},
		cacheSize: cache.DefaultSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, lib := range e.prelude {
		if _, ok := e.universe.Library(lib); !ok {
			return nil, fmt.Errorf("prelude: %w", &types.UnknownNameError{What: "library", Name: lib})
		}
	}
	if e.cache == nil {
		pc, err := cache.NewProgramCache(e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating program cache: %w", err)
		}
		e.cache = pc
	}

	e.registry = mop.NewRegistry(mop.WithLogger(e.logger.Named("mop")))
	e.interp = interp.New(e.registry,
		interp.WithOutput(e.out),
		interp.WithLogger(e.logger.Named("interp")),
	)
	e.globals = interp.NewEnvironment(nil)
	return e, nil
}

// Registry returns the class registry
func (e *Environment) Registry() *mop.Registry { return e.registry }

// Universe returns the type universe
func (e *Environment) Universe() *types.Universe { return e.universe }

// Logger returns the environment logger
func (e *Environment) Logger() *zap.Logger { return e.logger }

// RegisterLibrary adds a type library that later units can use.
func (e *Environment) RegisterLibrary(lib *types.Library) error {
	return e.universe.Register(lib)
}

// Class returns a registered class or role
func (e *Environment) Class(name string) (*mop.Class, bool) {
	return e.registry.Lookup(name)
}

// Construct creates an instance of class from named arguments.
func (e *Environment) Construct(class string, args map[string]any) (*mop.Instance, error) {
	return e.registry.New(class, args)
}

// Declare rewrites and registers Go-built declarations as one unit. Errors
// are returned as rewriter.DeclarationErrors.
func (e *Environment) Declare(classes ...*decl.Class) ([]*mop.Class, error) {
	return e.DeclareUnit(&decl.Unit{Classes: classes})
}

// DeclareUnit is Declare for a unit with its own use directives.
func (e *Environment) DeclareUnit(u *decl.Unit) ([]*mop.Class, error) {
	scope, err := e.scope()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rewriter().ApplyUnit(u, scope)
}

func (e *Environment) rewriter() *rewriter.Rewriter {
	return rewriter.New(e.registry,
		rewriter.WithBodyCompiler(e.interp),
		rewriter.WithLogger(e.logger.Named("rewriter")),
	)
}

// scope returns a fresh type scope with the prelude imported
func (e *Environment) scope() (*types.Scope, error) {
	scope := types.NewScope(e.universe, e.registry)
	for _, lib := range e.prelude {
		if err := scope.Use(lib); err != nil {
			return nil, fmt.Errorf("prelude: %w", err)
		}
	}
	return scope, nil
}

// LoadString parses, checks and declares one source. Problems are returned
// as an errors.ErrorList carrying source context; on failure nothing from
// the source is registered.
func (e *Environment) LoadString(file, source string) (*Unit, error) {
	entry, _ := e.cache.Parse(file, source)
	if len(entry.Errors) > 0 {
		return nil, errors.FromParseErrors(entry.Errors).AttachContext(file, source)
	}
	return e.load(entry.Program, source)
}

// LoadFile reads and loads one file
func (e *Environment) LoadFile(path string) (*Unit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.LoadString(path, string(content))
}

// LoadFiles loads several files in dependency order, so a file declaring a
// parent class is loaded before the files extending it. Every file is
// attempted; the diagnostics of all failed files are merged.
func (e *Environment) LoadFiles(paths ...string) ([]*Unit, error) {
	coord := cache.NewCoordinator(e.cache, e.logger.Named("cache"))
	results, _, err := coord.ParseFiles(paths)
	if err != nil {
		var cycle *cache.CycleError
		if !stderrors.As(err, &cycle) {
			return nil, err
		}
		// Cyclic files can still load when the cycle is only through
		// type references; the rewriter reports real inheritance cycles.
		e.logger.Warn("file dependency cycle", zap.Strings("files", cycle.Files))
	}

	var (
		units []*Unit
		diags errors.ErrorList
	)
	for _, r := range results {
		switch {
		case r.Err != nil:
			diags = append(diags, errors.FromError(r.Err).AttachContext(r.Path, "")...)
		case len(r.Errors) > 0:
			diags = append(diags, errors.FromParseErrors(r.Errors).AttachContext(r.Path, r.Source)...)
		default:
			u, err := e.load(r.Program, r.Source)
			if err != nil {
				diags = append(diags, errors.FromError(err)...)
				continue
			}
			units = append(units, u)
		}
	}
	if diags.HasErrors() {
		return units, diags
	}
	return units, nil
}

func (e *Environment) load(prog *ast.Program, source string) (*Unit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, diags, err := e.compile(prog, source, nil)
	if err != nil {
		return nil, err
	}
	classes, err := e.declare(res, source)
	if err != nil {
		return nil, err
	}
	return &Unit{
		File:       prog.File,
		Source:     source,
		Classes:    classes,
		Warnings:   diags,
		env:        e,
		statements: res.Statements,
	}, nil
}

// compile checks and lowers prog. globals names variables already defined
// outside the program.
func (e *Environment) compile(prog *ast.Program, source string, globals []string) (*lower.Result, errors.ErrorList, error) {
	diags := checker.Check(prog, checker.WithRegistry(e.registry), checker.WithGlobals(globals...))
	diags.AttachContext(prog.File, source)
	if diags.HasErrors() || (e.strict && diags.HasWarnings()) {
		return nil, nil, diags
	}

	res, err := lower.Program(prog)
	if err != nil {
		return nil, nil, errors.FromError(err).AttachContext(prog.File, source)
	}
	return res, diags, nil
}

func (e *Environment) declare(res *lower.Result, source string) ([]*mop.Class, error) {
	if len(res.Unit.Classes) == 0 && len(res.Unit.Uses) == 0 {
		return nil, nil
	}
	scope, err := e.scope()
	if err != nil {
		return nil, err
	}
	release := e.interp.Preload(res)
	defer release()
	classes, err := e.rewriter().ApplyUnit(res.Unit, scope)
	if err != nil {
		return nil, errors.FromError(err).AttachContext(res.Unit.File, source)
	}
	return classes, nil
}

// Eval loads source and runs its statements in the environment's global
// scope, which persists between calls. It returns the value of the last
// expression statement. Runtime errors are returned as they are raised.
func (e *Environment) Eval(file, source string) (any, error) {
	prog, perrs := parser.ParseSource(file, source)
	if len(perrs) > 0 {
		return nil, errors.FromParseErrors(perrs).AttachContext(file, source)
	}

	e.mu.Lock()
	res, _, err := e.compile(prog, source, e.globals.Names())
	if err == nil {
		_, err = e.declare(res, source)
	}
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return e.interp.Exec(e.globals, res.Statements)
}

// Globals returns the names defined by Eval so far
func (e *Environment) Globals() []string {
	return e.globals.Names()
}
