package interp

import (
	"errors"
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
)

// RuntimeError is a failure tied to the statement or expression that
// raised it. The innermost position wins: an error that already carries
// one passes through unchanged.
type RuntimeError struct {
	Err error
	Loc ast.SourceLocation
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d:%d: %v", e.Loc.Line, e.Loc.Column, e.Err)
}

// Unwrap returns the underlying error
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Location returns where the error was raised
func (e *RuntimeError) Location() ast.SourceLocation {
	return e.Loc
}

func at(loc ast.SourceLocation, err error) error {
	if err == nil {
		return nil
	}
	var re *RuntimeError
	if errors.As(err, &re) {
		return err
	}
	return &RuntimeError{Err: err, Loc: loc}
}

func failf(loc ast.SourceLocation, format string, args ...any) error {
	return &RuntimeError{Err: fmt.Errorf(format, args...), Loc: loc}
}

// Exception is the value a catch block binds: the caught error with its
// details readable as members.
type Exception struct {
	Err error

	raw error
	loc ast.SourceLocation
}

func newException(err error) *Exception {
	ex := &Exception{Err: err, raw: err}
	var re *RuntimeError
	if errors.As(err, &re) {
		ex.loc = re.Loc
		// Keep any context wrapped around the located error.
		if re == err {
			ex.Err = re.Err
		}
	}
	return ex
}

func (e *Exception) Error() string {
	return e.Err.Error()
}

// Unwrap returns the caught error
func (e *Exception) Unwrap() error {
	return e.Err
}

// Kind names the error class: TypeError, SignatureError, AccessError,
// CompositionError, Died or Error.
func (e *Exception) Kind() string {
	var (
		typeErr *mop.TypeError
		sigErr  *mop.SignatureError
		accErr  *mop.AccessError
		compErr *mop.CompositionError
		died    *mop.Died
	)
	switch {
	case errors.As(e.Err, &typeErr):
		return "TypeError"
	case errors.As(e.Err, &sigErr):
		return "SignatureError"
	case errors.As(e.Err, &accErr):
		return "AccessError"
	case errors.As(e.Err, &compErr):
		return "CompositionError"
	case errors.As(e.Err, &died):
		return "Died"
	}
	return "Error"
}

// Member reads one detail of the exception
func (e *Exception) Member(name string) (any, bool) {
	var (
		typeErr *mop.TypeError
		sigErr  *mop.SignatureError
		died    *mop.Died
	)
	switch name {
	case "message":
		if errors.As(e.Err, &typeErr) {
			return typeErr.Message(), true
		}
		if errors.As(e.Err, &sigErr) {
			return sigErr.Reason, true
		}
		return e.Err.Error(), true
	case "class":
		return e.Kind(), true
	case "site":
		if errors.As(e.Err, &typeErr) {
			return typeErr.Site, true
		}
		if errors.As(e.Err, &sigErr) {
			return sigErr.Method, true
		}
		return nil, true
	case "predicate":
		if errors.As(e.Err, &typeErr) {
			return typeErr.Err.Predicate, true
		}
		return nil, true
	case "value":
		if errors.As(e.Err, &typeErr) {
			return typeErr.Err.Value, true
		}
		if errors.As(e.Err, &died) {
			return died.Value, true
		}
		return nil, true
	case "line":
		if e.loc.Line == 0 {
			return nil, true
		}
		return int64(e.loc.Line), true
	}
	return nil, false
}

// String renders the exception for say and string concatenation
func (e *Exception) String() string {
	return e.Err.Error()
}

var _ fmt.Stringer = (*Exception)(nil)

// describe names a value's kind in error messages
func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "undef"
	case *mop.Instance:
		return x.ClassName() + " object"
	case *Exception:
		return "exception"
	case []any:
		return "array"
	case map[string]any:
		return "hash"
	case string:
		return "string " + types.FormatValue(v)
	case bool:
		return "boolean"
	}
	if types.IsNum(v) {
		return "number " + types.FormatValue(v)
	}
	return fmt.Sprintf("%T", v)
}
