package errors

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/compiler/parser"
	"github.com/moops-lang/moops/internal/decl"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/rewriter"
	"github.com/moops-lang/moops/internal/types"
)

func TestErrorCodeUniqueness(t *testing.T) {
	codes := map[ErrorCode]string{}

	groups := map[string][]ErrorCode{
		"syntax": {
			ErrUnexpectedToken, ErrExpectedToken, ErrUnterminatedString, ErrInvalidNumber,
			ErrInvalidCharacter, ErrUnexpectedEOF, ErrUnknownOption, ErrInvalidAssignment,
			ErrMisplacedMember,
		},
		"semantic": {
			ErrUndefinedVariable, ErrRedeclaredVariable, ErrPrivateAccess, ErrReadOnlyAssignment,
			ErrInvalidSuper, ErrInvalidSelfReference, ErrUnknownClass, ErrUnknownFunction,
			ErrUnknownMember, ErrUnreachableCode, ErrInvalidReturnContext,
		},
		"runtime": {
			ErrTypeConstraint, ErrSignature, ErrAccess, ErrComposition, ErrDied, ErrRuntime,
		},
	}
	for _, code := range declarationCodes() {
		groups["declaration"] = append(groups["declaration"], ErrorCode(code))
	}

	for group, list := range groups {
		for _, code := range list {
			if prev, exists := codes[code]; exists {
				t.Errorf("Duplicate error code %s (previously used for %s)", code, prev)
			}
			codes[code] = group
		}
	}
}

func declarationCodes() []string {
	out := make([]string, 0, len(declarationTypes))
	for code := range declarationTypes {
		out = append(out, code)
	}
	return out
}

func TestFromParseError(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		code    ErrorCode
		message string
		hint    string
	}{
		{"expected token", "class {", ErrExpectedToken, "Expected class name", ""},
		{"unexpected eof", "class A {", ErrUnexpectedEOF, "Expected '}' after class body", ""},
		{"unknown option", "class T { has x (defualt: 1); }", ErrUnknownOption, "Unknown attribute option 'defualt'", "did you mean 'default'?"},
		{"unterminated string", `say "oops`, ErrUnterminatedString, "Unterminated string starting at 1:5", ""},
		{"bad character", "say 1 & 2;", ErrInvalidCharacter, "Unexpected character '&'", "did you mean '&&'?"},
		{"invalid assignment", "1 = 2;", ErrInvalidAssignment, "Invalid assignment target", ""},
		{"misplaced member", "has x;", ErrMisplacedMember, "'has' is only allowed inside a class or role", ""},
		{"unexpected token", "let $a = );", ErrUnexpectedToken, "Unexpected token ')' in expression", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := parser.ParseSource("", tt.source)
			if len(errs) == 0 {
				t.Fatalf("Expected a parse error")
			}
			e := FromParseError(errs[0])
			if e.Code != tt.code {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, e.Code, e.Message)
			}
			if e.Category != CategorySyntax {
				t.Errorf("Expected syntax category, got %s", e.Category)
			}
			if e.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, e.Message)
			}
			if e.Suggestion != tt.hint {
				t.Errorf("Expected suggestion %q, got %q", tt.hint, e.Suggestion)
			}
		})
	}
}

func TestFromDeclarationError(t *testing.T) {
	de := &rewriter.DeclarationError{
		Code:        rewriter.CodeUnknownParent,
		Class:       "Dog",
		Message:     "unknown parent class Animl",
		Suggestions: []string{"Animal"},
		Pos:         decl.Position{File: "zoo.moops", Line: 3, Column: 1},
	}

	e := FromDeclarationError(de)

	if e.Code != "DEC200" || e.Type != "unknown_parent" || e.Category != CategoryDeclaration {
		t.Errorf("Unexpected classification: %s %s %s", e.Code, e.Type, e.Category)
	}
	if e.Subject != "Dog" || e.File != "zoo.moops" {
		t.Errorf("Unexpected subject or file: %q %q", e.Subject, e.File)
	}
	if e.Suggestion != "did you mean Animal?" {
		t.Errorf("Unexpected suggestion: %q", e.Suggestion)
	}
	if got := e.Error(); got != "zoo.moops:3:1: error: Dog: unknown parent class Animl [DEC200]" {
		t.Errorf("Unexpected compact form: %s", got)
	}
}

func TestFromErrorUnwrapsDeclarationErrors(t *testing.T) {
	errs := rewriter.DeclarationErrors{
		{Code: rewriter.CodeUnknownRole, Class: "A", Message: "unknown role R"},
		{Code: rewriter.CodeInvalidParams, Class: "A", Member: "m", Message: "duplicate parameter $x"},
	}
	wrapped := fmt.Errorf("loading zoo.moops: %w", errs)

	list := FromError(wrapped)

	if len(list) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(list))
	}
	if list[0].Code != "DEC201" || list[1].Code != "DEC203" {
		t.Errorf("Unexpected codes: %v", list.Codes())
	}
	if list[1].Subject != "A.m" {
		t.Errorf("Expected subject A.m, got %q", list[1].Subject)
	}
	if FromError(nil) != nil {
		t.Errorf("Expected nil for nil error")
	}
}

type locatedErr struct {
	err error
	loc ast.SourceLocation
}

func (e *locatedErr) Error() string {
	return fmt.Sprintf("%d:%d: %v", e.loc.Line, e.loc.Column, e.err)
}

func (e *locatedErr) Unwrap() error { return e.err }

func (e *locatedErr) Location() ast.SourceLocation { return e.loc }

func TestFromRuntimeError(t *testing.T) {
	verr := &types.ValidationError{Predicate: "PositiveInt", Value: "Hello", Message: "Must be a positive integer"}
	at := ast.SourceLocation{Line: 7, Column: 3}

	tests := []struct {
		name     string
		err      error
		code     ErrorCode
		message  string
		subject  string
		category ErrorCategory
	}{
		{
			name:     "type constraint",
			err:      &locatedErr{err: &mop.TypeError{Site: "Calculator.num", Err: verr}, loc: at},
			code:     ErrTypeConstraint,
			message:  "Must be a positive integer",
			subject:  "Calculator.num",
			category: CategoryType,
		},
		{
			name:     "signature",
			err:      &mop.SignatureError{Method: "Calculator::add", Reason: "missing required argument $addition"},
			code:     ErrSignature,
			message:  "missing required argument $addition",
			subject:  "Calculator::add",
			category: CategoryRuntime,
		},
		{
			name:     "access",
			err:      &mop.AccessError{Class: "Account", Member: "secret", Reason: "private attribute"},
			code:     ErrAccess,
			message:  "private attribute",
			subject:  "Account.secret",
			category: CategoryRuntime,
		},
		{
			name:     "died",
			err:      &locatedErr{err: &mop.Died{Value: "boom"}, loc: at},
			code:     ErrDied,
			message:  "boom",
			category: CategoryRuntime,
		},
		{
			name:     "other",
			err:      &locatedErr{err: fmt.Errorf("division by zero"), loc: at},
			code:     ErrRuntime,
			message:  "division by zero",
			category: CategoryRuntime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromRuntimeError(tt.err, ast.SourceLocation{})
			if e.Code != tt.code || e.Category != tt.category {
				t.Errorf("Expected %s/%s, got %s/%s", tt.code, tt.category, e.Code, e.Category)
			}
			if e.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, e.Message)
			}
			if e.Subject != tt.subject {
				t.Errorf("Expected subject %q, got %q", tt.subject, e.Subject)
			}
		})
	}

	e := FromRuntimeError(tests[0].err, ast.SourceLocation{})
	if e.Location != at {
		t.Errorf("Expected location from the error, got %+v", e.Location)
	}
	if e.Expected != "PositiveInt" || !strings.Contains(e.Actual, "Hello") {
		t.Errorf("Expected predicate and value, got %q / %q", e.Expected, e.Actual)
	}
}

func TestFormatWithContext(t *testing.T) {
	source := "class T {\n    has x (defualt: 1);\n}"
	_, errs := parser.ParseSource("t.moops", source)
	list := FromParseErrors(errs).AttachContext("t.moops", source)

	if len(list) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(list))
	}
	out := list[0].Format()

	for _, want := range []string{
		"Syntax Error [SYN007] in t.moops",
		"Line 2, Column 12:",
		"  1 |  class T {",
		"  2 |      has x (defualt: 1);",
		"^ Unknown attribute option 'defualt'",
		"Hint: did you mean 'default'?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	caretLine := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "^") {
			caretLine = line
		}
	}
	if strings.Index(caretLine, "^") != strings.Index(out[strings.Index(out, "  2 |"):], "defualt") {
		t.Errorf("Caret does not line up with the option:\n%s", out)
	}
}

func TestErrorListSummary(t *testing.T) {
	list := ErrorList{
		NewUndefinedVariable(ast.SourceLocation{Line: 1, Column: 5}, "x", ""),
		NewRedeclaredVariable(ast.SourceLocation{Line: 2, Column: 1}, "y"),
	}

	errs, warns, infos := list.ErrorCount()
	if errs != 1 || warns != 1 || infos != 0 {
		t.Errorf("Unexpected counts: %d %d %d", errs, warns, infos)
	}
	if !list.HasErrors() || !list.HasWarnings() {
		t.Errorf("Expected both errors and warnings")
	}
	if !strings.HasPrefix(FormatErrorList(list), "Loading failed with 1 error(s), 1 warning(s), 0 info") {
		t.Errorf("Unexpected summary: %s", FormatErrorList(list))
	}
	if ErrorList(nil).Error() != "no errors" {
		t.Errorf("Expected empty list message")
	}
}

func TestToJSON(t *testing.T) {
	e := NewUndefinedVariable(ast.SourceLocation{Line: 4, Column: 9}, "totl", "total").WithFile("calc.moops")

	out, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded["code"] != "SEM300" || decoded["category"] != "semantic" || decoded["file"] != "calc.moops" {
		t.Errorf("Unexpected JSON: %s", out)
	}
	if decoded["suggestion"] != "did you mean $total?" {
		t.Errorf("Unexpected suggestion: %v", decoded["suggestion"])
	}
}
