// Package interp runs the body language: method and modifier bodies
// compiled into object-system method bodies, and the top-level statements
// of a program.
package interp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/mop"
)

// BodySource hands out already parsed bodies for declarations lowered from
// source.
type BodySource interface {
	MethodBody(m *decl.Method) ([]ast.StmtNode, bool)
	ModifierBody(m *decl.Modifier) ([]ast.StmtNode, bool)
}

// Interpreter evaluates bodies against one registry. It implements
// rewriter.BodyCompiler.
type Interpreter struct {
	registry *mop.Registry
	out      io.Writer
	logger   *zap.Logger

	mu      sync.Mutex
	sources []BodySource
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithOutput sets where say writes
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.out = w
		}
	}
}

// WithLogger sets the interpreter logger
func WithLogger(logger *zap.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// New creates an interpreter for reg. say writes to stdout by default.
func New(reg *mop.Registry, opts ...Option) *Interpreter {
	in := &Interpreter{registry: reg, out: os.Stdout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Preload makes parsed bodies available to compile calls until release
// runs. Callers release once the unit holding the bodies has been applied,
// whether or not it succeeded.
func (in *Interpreter) Preload(src BodySource) (release func()) {
	in.mu.Lock()
	in.sources = append(in.sources, src)
	in.mu.Unlock()

	return func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		for i, s := range in.sources {
			if s == src {
				in.sources = append(in.sources[:i], in.sources[i+1:]...)
				return
			}
		}
	}
}

// Output returns the writer say writes to
func (in *Interpreter) Output() io.Writer {
	return in.out
}

// CompileMethod turns a method declaration's source into a body.
func (in *Interpreter) CompileMethod(c *decl.Class, m *decl.Method) (mop.Body, error) {
	stmts, err := in.statements(m.Source, func(src BodySource) ([]ast.StmtNode, bool) {
		return src.MethodBody(m)
	})
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", m.Name, err)
	}
	in.logger.Debug("compiled method", zap.String("class", c.Name), zap.String("method", m.Name))
	return in.body(stmts), nil
}

// CompileModifier turns a before or after block into a body.
func (in *Interpreter) CompileModifier(c *decl.Class, m *decl.Modifier) (mop.Body, error) {
	stmts, err := in.statements(m.Source, func(src BodySource) ([]ast.StmtNode, bool) {
		return src.ModifierBody(m)
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", m.Kind, m.Method, err)
	}
	in.logger.Debug("compiled modifier", zap.String("class", c.Name), zap.String("modifier", m.Kind+" "+m.Method))
	return in.body(stmts), nil
}

func (in *Interpreter) statements(source string, lookup func(BodySource) ([]ast.StmtNode, bool)) ([]ast.StmtNode, error) {
	in.mu.Lock()
	for _, src := range in.sources {
		if stmts, ok := lookup(src); ok {
			in.mu.Unlock()
			return stmts, nil
		}
	}
	in.mu.Unlock()
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("no body")
	}
	stmts, errs := parser.ParseBody(source)
	if len(errs) > 0 {
		return nil, &errs[0]
	}
	return stmts, nil
}

// body closes over a statement list. Parameters are bound as variables
// named after them; absent optional parameters read as undef.
func (in *Interpreter) body(stmts []ast.StmtNode) mop.Body {
	return func(inv *mop.Invocation) (any, error) {
		env := NewEnvironment(nil)
		env.Define("self", inv.Self)
		if inv.Method != nil && inv.Method.Signature != nil {
			for _, p := range inv.Method.Signature.Params {
				env.Define(p.Name, inv.Arg(p.Name))
			}
		}
		out, err := in.execBlock(&frame{inv: inv, env: env}, stmts)
		if err != nil {
			return nil, err
		}
		return out.value, nil
	}
}

// Run executes top-level statements in a fresh environment.
func (in *Interpreter) Run(stmts []ast.StmtNode) error {
	_, err := in.Exec(NewEnvironment(nil), stmts)
	return err
}

// Exec executes top-level statements in env and returns the value of the
// last expression statement. The REPL keeps env between calls.
func (in *Interpreter) Exec(env *Environment, stmts []ast.StmtNode) (any, error) {
	in.logger.Debug("running statements", zap.Int("count", len(stmts)))
	out, err := in.execStmts(&frame{env: env}, stmts)
	if err != nil {
		return nil, err
	}
	return out.value, nil
}

// frame is one activation: a method invocation or the top level.
type frame struct {
	inv *mop.Invocation // nil at the top level
	env *Environment
}

func (f *frame) self() *mop.Instance {
	if f.inv == nil {
		return nil
	}
	return f.inv.Self
}

func (f *frame) child() *frame {
	return &frame{inv: f.inv, env: NewEnvironment(f.env)}
}
