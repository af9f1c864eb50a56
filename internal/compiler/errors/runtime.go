package errors

import (
	stderrors "errors"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
)

// Type constraint codes (TYP100-199)
const (
	// ErrTypeConstraint indicates a value rejected by a type predicate
	ErrTypeConstraint ErrorCode = "TYP100"
)

// Runtime error codes (RUN400-499)
const (
	// ErrSignature indicates arguments that do not fit a method signature
	ErrSignature ErrorCode = "RUN400"
	// ErrAccess indicates use of a missing, private or read-only member
	ErrAccess ErrorCode = "RUN401"
	// ErrComposition indicates a class that cannot be built or instantiated
	ErrComposition ErrorCode = "RUN402"
	// ErrDied indicates an exception raised with die and never caught
	ErrDied ErrorCode = "RUN403"
	// ErrRuntime indicates any other failure while running code
	ErrRuntime ErrorCode = "RUN404"
)

// located is implemented by errors that know where in source they happened
type located interface {
	error
	Location() ast.SourceLocation
}

// FromRuntimeError converts an error raised while running code. loc is
// used when the error does not carry its own position.
func FromRuntimeError(err error, loc ast.SourceLocation) *CompilerError {
	var at located
	if stderrors.As(err, &at) {
		loc = at.Location()
	}

	var (
		typeErr *mop.TypeError
		sigErr  *mop.SignatureError
		accErr  *mop.AccessError
		compErr *mop.CompositionError
		died    *mop.Died
	)
	switch {
	case stderrors.As(err, &typeErr):
		return newError(ErrTypeConstraint, "type_constraint", CategoryType, SeverityError, typeErr.Message(), loc).
			WithSubject(typeErr.Site).
			WithExpected(typeErr.Err.Predicate).
			WithActual(types.FormatValue(typeErr.Err.Value))
	case stderrors.As(err, &sigErr):
		return newError(ErrSignature, "signature", CategoryRuntime, SeverityError, sigErr.Reason, loc).
			WithSubject(sigErr.Method)
	case stderrors.As(err, &accErr):
		return newError(ErrAccess, "access", CategoryRuntime, SeverityError, accErr.Reason, loc).
			WithSubject(subject(accErr.Class, accErr.Member))
	case stderrors.As(err, &compErr):
		return newError(ErrComposition, "composition", CategoryRuntime, SeverityError, compErr.Reason, loc).
			WithSubject(compErr.Class)
	case stderrors.As(err, &died):
		return newError(ErrDied, "died", CategoryRuntime, SeverityError, died.Error(), loc)
	}

	message := err.Error()
	if at != nil {
		if inner := stderrors.Unwrap(at); inner != nil {
			message = inner.Error()
		}
	}
	return newError(ErrRuntime, "runtime", CategoryRuntime, SeverityError, message, loc)
}
