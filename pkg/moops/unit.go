package moops

import (
	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/errors"
	"github.com/moops-lang/moops/internal/mop"
)

// Unit is one loaded source. Its classes are registered by the time the
// unit is returned; its top-level statements run only when Run is called.
type Unit struct {
	File     string
	Source   string
	Classes  []*mop.Class
	Warnings errors.ErrorList

	env        *Environment
	statements []ast.StmtNode
}

// HasStatements reports whether the unit has top-level code to run
func (u *Unit) HasStatements() bool {
	return len(u.statements) > 0
}

// Run executes the top-level statements in a fresh scope. The error is the
// one raised at runtime; errors.FromRuntimeError renders it.
func (u *Unit) Run() error {
	return u.env.interp.Run(u.statements)
}

// Diagnose converts an error returned by Run into diagnostics pointing
// into the unit's source.
func (u *Unit) Diagnose(err error) errors.ErrorList {
	return errors.FromError(err).AttachContext(u.File, u.Source)
}

// ClassNames returns the names of the classes the unit declared, in
// registration order.
func (u *Unit) ClassNames() []string {
	names := make([]string, len(u.Classes))
	for i, c := range u.Classes {
		names[i] = c.Name
	}
	return names
}
