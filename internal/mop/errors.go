package mop

import (
	"errors"
	"fmt"

	"github.com/moops-lang/moops/internal/types"
)

// ErrReadOnly is returned when writing an attribute that has no writer.
var ErrReadOnly = errors.New("attribute is read-only")

// TypeError reports a value rejected by a type predicate at a given site:
// an attribute write or a method parameter. The wrapped ValidationError
// carries the predicate's message unchanged.
type TypeError struct {
	Site string
	Err  *types.ValidationError
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Site, e.Err.Message)
}

// Unwrap returns the predicate failure
func (e *TypeError) Unwrap() error {
	return e.Err
}

// Message returns the predicate's message without the site prefix.
func (e *TypeError) Message() string {
	return e.Err.Message
}

// SignatureError reports arguments that do not fit a signature: wrong arity,
// missing required arguments or unknown named arguments.
type SignatureError struct {
	Method string
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Reason)
}

// AccessError reports use of an attribute or method that the caller may not
// reach: private slots from foreign code, unknown names, writes through ro.
type AccessError struct {
	Class  string
	Member string
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Class, e.Member, e.Reason)
}

// CompositionError reports a class that cannot be built: role conflicts,
// unmet requirements, bad overrides.
type CompositionError struct {
	Class  string
	Reason string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("class %s: %s", e.Class, e.Reason)
}

// Died wraps a user-level exception raised from a method body with a
// non-error value.
type Died struct {
	Value any
}

func (e *Died) Error() string {
	if s, ok := e.Value.(string); ok {
		return s
	}
	return types.FormatValue(e.Value)
}

// wrapValidation turns predicate failures into TypeErrors for site and
// passes other errors through.
func wrapValidation(site string, err error) error {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return &TypeError{Site: site, Err: verr}
	}
	return err
}
