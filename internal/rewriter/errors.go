package rewriter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/types"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

// Declaration error codes (DEC200-299)
const (
	// CodeUnknownParent is an extends clause naming no known class
	CodeUnknownParent = "DEC200"
	// CodeUnknownRole is a with clause naming no known role
	CodeUnknownRole = "DEC201"
	// CodeUnknownType is an isa that does not resolve in the unit scope
	CodeUnknownType = "DEC202"
	// CodeInvalidParams is a malformed parameter list
	CodeInvalidParams = "DEC203"
	// CodeInvalidAttribute is a malformed has declaration
	CodeInvalidAttribute = "DEC204"
	// CodeInvalidMethod is a method without a usable body or with a clashing name
	CodeInvalidMethod = "DEC205"
	// CodeInvalidModifier is a modifier with a bad kind or target
	CodeInvalidModifier = "DEC206"
	// CodeDuplicate is a name declared twice
	CodeDuplicate = "DEC207"
	// CodeCycle is an inheritance or composition cycle within a unit
	CodeCycle = "DEC208"
	// CodeInvalidHeader is a class header that cannot be honoured
	CodeInvalidHeader = "DEC209"
	// CodeComposition is a failure reported by the object system while
	// building or registering a class
	CodeComposition = "DEC210"
	// CodeUnknownLibrary is a use directive naming no registered library
	CodeUnknownLibrary = "DEC211"
)

// DeclarationError is one problem found in a class declaration. It is fatal
// for the class: nothing of it is registered.
type DeclarationError struct {
	Code        string
	Class       string
	Member      string
	Message     string
	Suggestions []string
	Pos         decl.Position
	Err         error
}

func (e *DeclarationError) Error() string {
	var b strings.Builder
	if e.Pos.Line > 0 {
		if e.Pos.File != "" {
			b.WriteString(e.Pos.File + ":")
		}
		fmt.Fprintf(&b, "%d:%d: ", e.Pos.Line, e.Pos.Column)
	}
	if e.Class != "" {
		b.WriteString(e.Class)
		if e.Member != "" {
			b.WriteString("." + e.Member)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if hint := ustrings.DidYouMean(e.Suggestions); hint != "" {
		b.WriteString(" (" + hint + ")")
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any
func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// DeclarationErrors aggregates every declaration error of a class or unit.
type DeclarationErrors []*DeclarationError

func (errs DeclarationErrors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = "  " + err.Error()
	}
	return fmt.Sprintf("%d declaration errors:\n%s", len(errs), strings.Join(lines, "\n"))
}

// Unwrap exposes the individual errors to errors.Is and errors.As
func (errs DeclarationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, err := range errs {
		out[i] = err
	}
	return out
}

// Codes returns the error codes in order, mostly for tests and tooling
func (errs DeclarationErrors) Codes() []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Code
	}
	return out
}

// typeError turns a type resolution failure into a declaration error,
// lifting suggestions out of the message.
func typeError(class, member string, pos decl.Position, prefix string, err error) *DeclarationError {
	de := &DeclarationError{
		Code:   CodeUnknownType,
		Class:  class,
		Member: member,
		Pos:    pos,
		Err:    err,
	}
	var unknown *types.UnknownNameError
	if errors.As(err, &unknown) {
		bare := *unknown
		bare.Suggestions = nil
		de.Message = prefix + bare.Error()
		de.Suggestions = unknown.Suggestions
		return de
	}
	de.Message = prefix + err.Error()
	return de
}
