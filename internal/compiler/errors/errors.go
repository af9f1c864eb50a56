// Package errors provides structured error handling for the moops compiler.
// It defines error codes, categories, and formatting for both human-readable
// terminal output and machine-parseable JSON for editors and tooling.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/compiler/ast"
)

// ErrorCode represents a unique error code in the moops compiler
type ErrorCode string

// ErrorCategory represents the category of compiler error
type ErrorCategory string

const (
	// CategorySyntax represents syntax errors (SYN001-099)
	CategorySyntax ErrorCategory = "syntax"
	// CategoryType represents type constraint failures (TYP100-199)
	CategoryType ErrorCategory = "type"
	// CategoryDeclaration represents declaration errors (DEC200-299)
	CategoryDeclaration ErrorCategory = "declaration"
	// CategorySemantic represents static check findings (SEM300-399)
	CategorySemantic ErrorCategory = "semantic"
	// CategoryRuntime represents errors raised while running code (RUN400-499)
	CategoryRuntime ErrorCategory = "runtime"
)

// ErrorSeverity indicates the severity level of an error
type ErrorSeverity string

const (
	// SeverityError indicates an error that prevents loading
	SeverityError ErrorSeverity = "error"
	// SeverityWarning indicates a warning that suggests potential issues
	SeverityWarning ErrorSeverity = "warning"
	// SeverityInfo indicates informational messages
	SeverityInfo ErrorSeverity = "info"
)

// ErrorContext provides source code context for an error
type ErrorContext struct {
	// Current is the line of code where the error occurred
	Current string `json:"current"`
	// SourceLines is a snippet of source code (before, error line, after)
	SourceLines []string `json:"source_lines"`
}

// CompilerError represents a structured compiler error
type CompilerError struct {
	// Code is the unique error code (e.g., "DEC202", "SYN001")
	Code ErrorCode `json:"code"`
	// Type is a machine-readable error type identifier
	Type string `json:"type"`
	// Category is the error category
	Category ErrorCategory `json:"category"`
	// Severity is the error severity level
	Severity ErrorSeverity `json:"severity"`
	// Message is the primary error message
	Message string `json:"message"`
	// Location is the source location of the error
	Location ast.SourceLocation `json:"location"`
	// File is the source file name (optional)
	File string `json:"file,omitempty"`
	// Subject names the class or member the error is about (optional)
	Subject string `json:"subject,omitempty"`
	// Context provides source code context
	Context *ErrorContext `json:"context,omitempty"`
	// Expected describes what was expected (optional)
	Expected string `json:"expected,omitempty"`
	// Actual describes what was actually found (optional)
	Actual string `json:"actual,omitempty"`
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string `json:"suggestion,omitempty"`
	// Examples provides example fixes (optional)
	Examples []string `json:"examples,omitempty"`
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Format returns a human-readable error message for terminal output
func (e *CompilerError) Format() string {
	return FormatError(e)
}

// ToJSON returns the error as a JSON string
func (e *CompilerError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithSubject sets the class or member the error is about
func (e *CompilerError) WithSubject(subject string) *CompilerError {
	e.Subject = subject
	return e
}

// WithContext sets the source code context for the error
func (e *CompilerError) WithContext(current string, sourceLines []string) *CompilerError {
	e.Context = &ErrorContext{
		Current:     current,
		SourceLines: sourceLines,
	}
	return e
}

// WithExpected sets the expected value for the error
func (e *CompilerError) WithExpected(expected string) *CompilerError {
	e.Expected = expected
	return e
}

// WithActual sets the actual value for the error
func (e *CompilerError) WithActual(actual string) *CompilerError {
	e.Actual = actual
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// WithExamples sets example fixes for the error
func (e *CompilerError) WithExamples(examples ...string) *CompilerError {
	e.Examples = examples
	return e
}

// ErrorList is a collection of compiler errors
type ErrorList []*CompilerError

// Error implements the error interface
func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	lines := make([]string, len(el))
	for i, e := range el {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// HasErrors returns true if the list contains any errors (excludes warnings/info)
func (el ErrorList) HasErrors() bool {
	for _, err := range el {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the list contains any warnings
func (el ErrorList) HasWarnings() bool {
	for _, err := range el {
		if err.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// ToJSON returns all errors as a JSON array
func (el ErrorList) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(el, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// ErrorCount returns the number of errors by severity
func (el ErrorList) ErrorCount() (errors, warnings, info int) {
	for _, err := range el {
		switch err.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return
}

// Codes returns the error codes in order
func (el ErrorList) Codes() []ErrorCode {
	codes := make([]ErrorCode, len(el))
	for i, e := range el {
		codes[i] = e.Code
	}
	return codes
}

// AttachContext fills in file name and source lines for every error that
// points into source.
func (el ErrorList) AttachContext(file, source string) ErrorList {
	lines := strings.Split(source, "\n")
	for _, e := range el {
		if e.File == "" {
			e.File = file
		}
		line := e.Location.Line
		if line < 1 || line > len(lines) || e.Context != nil {
			continue
		}
		var snippet []string
		if line > 1 {
			snippet = append(snippet, lines[line-2])
		} else {
			snippet = append(snippet, "")
		}
		snippet = append(snippet, lines[line-1])
		if line < len(lines) {
			snippet = append(snippet, lines[line])
		}
		e.WithContext(lines[line-1], snippet)
	}
	return el
}

// Merge appends lists in order, skipping nils
func Merge(lists ...ErrorList) ErrorList {
	var out ErrorList
	for _, l := range lists {
		for _, e := range l {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	return out
}

// newError creates a new CompilerError with the given parameters
func newError(
	code ErrorCode,
	typ string,
	category ErrorCategory,
	severity ErrorSeverity,
	message string,
	loc ast.SourceLocation,
) *CompilerError {
	return &CompilerError{
		Code:     code,
		Type:     typ,
		Category: category,
		Severity: severity,
		Message:  message,
		Location: loc,
	}
}

// subject joins a class and member name the way diagnostics print them
func subject(class, member string) string {
	switch {
	case class == "":
		return member
	case member == "":
		return class
	}
	return fmt.Sprintf("%s.%s", class, member)
}
