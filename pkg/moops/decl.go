package moops

import (
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
)

// Declaration types, for building classes from Go.
type (
	UnitDecl      = decl.Unit
	UseDecl       = decl.Use
	ImportDecl    = decl.Import
	ClassDecl     = decl.Class
	AttributeDecl = decl.Attribute
	MethodDecl    = decl.Method
	ModifierDecl  = decl.Modifier
	ParamDecl     = decl.Param
	Position      = decl.Position
)

// Object-system types seen by Go method bodies and callers.
type (
	Class      = mop.Class
	Instance   = mop.Instance
	Body       = mop.Body
	Invocation = mop.Invocation
	TypeError  = mop.TypeError
)

// Type library types, for RegisterLibrary.
type (
	Library   = types.Library
	Predicate = types.Predicate
)

const (
	KindClass = decl.KindClass
	KindRole  = decl.KindRole
)

// Const wraps a constant attribute or parameter default
func Const(v any) *decl.Value {
	return decl.Const(v)
}
