package errors

import (
	"fmt"

	"github.com/moops-lang/moops/internal/compiler/ast"
)

// Semantic error codes (SEM300-399), reported by the static checker
const (
	// ErrUndefinedVariable indicates an undeclared variable was referenced
	ErrUndefinedVariable ErrorCode = "SEM300"
	// ErrRedeclaredVariable indicates a variable was declared twice in one scope
	ErrRedeclaredVariable ErrorCode = "SEM301"
	// ErrPrivateAccess indicates a private attribute used outside its class
	ErrPrivateAccess ErrorCode = "SEM302"
	// ErrReadOnlyAssignment indicates an assignment to a ro attribute
	ErrReadOnlyAssignment ErrorCode = "SEM303"
	// ErrInvalidSuper indicates super used where nothing is overridden
	ErrInvalidSuper ErrorCode = "SEM304"
	// ErrInvalidSelfReference indicates $self used outside a method
	ErrInvalidSelfReference ErrorCode = "SEM305"
	// ErrUnknownClass indicates Name.method() naming no class or built-in
	ErrUnknownClass ErrorCode = "SEM306"
	// ErrUnknownFunction indicates a built-in namespace without that function
	ErrUnknownFunction ErrorCode = "SEM307"
	// ErrUnknownMember indicates $self.name naming no attribute or method
	ErrUnknownMember ErrorCode = "SEM308"
	// ErrUnreachableCode indicates statements after return or die
	ErrUnreachableCode ErrorCode = "SEM309"
	// ErrInvalidReturnContext indicates return used at the top level
	ErrInvalidReturnContext ErrorCode = "SEM310"
)

// NewUndefinedVariable creates a SEM300 error
func NewUndefinedVariable(loc ast.SourceLocation, name string, suggestion string) *CompilerError {
	e := newError(
		ErrUndefinedVariable,
		"undefined_variable",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("Undefined variable '$%s'", name),
		loc,
	).WithSuggestion("Declare the variable with 'let' before using it")
	if suggestion != "" {
		e.Suggestion = fmt.Sprintf("did you mean $%s?", suggestion)
	}
	return e
}

// NewRedeclaredVariable creates a SEM301 warning
func NewRedeclaredVariable(loc ast.SourceLocation, name string) *CompilerError {
	return newError(
		ErrRedeclaredVariable,
		"redeclared_variable",
		CategorySemantic,
		SeverityWarning,
		fmt.Sprintf("Variable '$%s' is already declared in this scope", name),
		loc,
	).WithSuggestion("Assign to the existing variable instead of declaring it again")
}

// NewPrivateAccess creates a SEM302 error
func NewPrivateAccess(loc ast.SourceLocation, class, attr, owner string) *CompilerError {
	return newError(
		ErrPrivateAccess,
		"private_access",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("Attribute '%s' is private to %s", attr, owner),
		loc,
	).WithSubject(class).WithSuggestion(fmt.Sprintf("Only methods declared in %s can use $self.%s", owner, attr))
}

// NewReadOnlyAssignment creates a SEM303 error
func NewReadOnlyAssignment(loc ast.SourceLocation, class, attr string) *CompilerError {
	return newError(
		ErrReadOnlyAssignment,
		"readonly_assignment",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("Cannot assign to read-only attribute '%s'", attr),
		loc,
	).WithSubject(class).WithSuggestion("Declare the attribute with 'is: rw' to allow writes")
}

// NewInvalidSuper creates a SEM304 error
func NewInvalidSuper(loc ast.SourceLocation, class, method string) *CompilerError {
	return newError(
		ErrInvalidSuper,
		"invalid_super",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("'super' in %s does not override an inherited method", method),
		loc,
	).WithSubject(class)
}

// NewInvalidSelfReference creates a SEM305 error
func NewInvalidSelfReference(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrInvalidSelfReference,
		"invalid_self",
		CategorySemantic,
		SeverityError,
		"'$self' is only available inside methods and modifiers",
		loc,
	)
}

// NewUnknownClass creates a SEM306 error
func NewUnknownClass(loc ast.SourceLocation, name string, suggestion string) *CompilerError {
	e := newError(
		ErrUnknownClass,
		"unknown_class",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("Unknown class or namespace '%s'", name),
		loc,
	)
	if suggestion != "" {
		e.Suggestion = fmt.Sprintf("did you mean %s?", suggestion)
	}
	return e
}

// NewUnknownFunction creates a SEM307 error
func NewUnknownFunction(loc ast.SourceLocation, namespace, function string, suggestion string) *CompilerError {
	e := newError(
		ErrUnknownFunction,
		"unknown_function",
		CategorySemantic,
		SeverityError,
		fmt.Sprintf("%s has no function '%s'", namespace, function),
		loc,
	)
	if suggestion != "" {
		e.Suggestion = fmt.Sprintf("did you mean %s.%s?", namespace, suggestion)
	}
	return e
}

// NewUnknownMember creates a SEM308 warning. Methods may come from roles
// composed at load time, so this is not fatal.
func NewUnknownMember(loc ast.SourceLocation, class, name string, suggestion string) *CompilerError {
	e := newError(
		ErrUnknownMember,
		"unknown_member",
		CategorySemantic,
		SeverityWarning,
		fmt.Sprintf("%s has no attribute or method '%s'", class, name),
		loc,
	).WithSubject(class)
	if suggestion != "" {
		e.Suggestion = fmt.Sprintf("did you mean %s?", suggestion)
	}
	return e
}

// NewUnreachableCode creates a SEM309 warning
func NewUnreachableCode(loc ast.SourceLocation, after string) *CompilerError {
	return newError(
		ErrUnreachableCode,
		"unreachable_code",
		CategorySemantic,
		SeverityWarning,
		fmt.Sprintf("Unreachable statement after '%s'", after),
		loc,
	)
}

// NewInvalidReturnContext creates a SEM310 error
func NewInvalidReturnContext(loc ast.SourceLocation) *CompilerError {
	return newError(
		ErrInvalidReturnContext,
		"invalid_return",
		CategorySemantic,
		SeverityError,
		"'return' is only allowed inside methods",
		loc,
	)
}
