package errors

import (
	stderrors "errors"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/rewriter"
	ustrings "github.com/moops-lang/moops/internal/util/strings"
)

// declarationTypes names each rewriter code for JSON consumers
var declarationTypes = map[string]string{
	rewriter.CodeUnknownParent:    "unknown_parent",
	rewriter.CodeUnknownRole:      "unknown_role",
	rewriter.CodeUnknownType:      "unknown_type",
	rewriter.CodeInvalidParams:    "invalid_params",
	rewriter.CodeInvalidAttribute: "invalid_attribute",
	rewriter.CodeInvalidMethod:    "invalid_method",
	rewriter.CodeInvalidModifier:  "invalid_modifier",
	rewriter.CodeDuplicate:        "duplicate",
	rewriter.CodeCycle:            "cycle",
	rewriter.CodeInvalidHeader:    "invalid_header",
	rewriter.CodeComposition:      "composition",
	rewriter.CodeUnknownLibrary:   "unknown_library",
}

// FromDeclarationError converts one rewriter error
func FromDeclarationError(de *rewriter.DeclarationError) *CompilerError {
	typ, ok := declarationTypes[de.Code]
	if !ok {
		typ = "declaration"
	}
	e := newError(
		ErrorCode(de.Code),
		typ,
		CategoryDeclaration,
		SeverityError,
		de.Message,
		ast.SourceLocation{Line: de.Pos.Line, Column: de.Pos.Column},
	).WithFile(de.Pos.File).WithSubject(subject(de.Class, de.Member))

	if hint := ustrings.DidYouMean(de.Suggestions); hint != "" {
		e.Suggestion = hint
	}
	return e
}

// FromError converts any error produced while loading a unit: parse
// errors, declaration errors and compiler errors pass through with their
// codes; anything else becomes a runtime error.
func FromError(err error) ErrorList {
	if err == nil {
		return nil
	}

	var list ErrorList
	if stderrors.As(err, &list) {
		return list
	}
	var ce *CompilerError
	if stderrors.As(err, &ce) {
		return ErrorList{ce}
	}
	var des rewriter.DeclarationErrors
	if stderrors.As(err, &des) {
		out := make(ErrorList, 0, len(des))
		for _, de := range des {
			out = append(out, FromDeclarationError(de))
		}
		return out
	}
	var de *rewriter.DeclarationError
	if stderrors.As(err, &de) {
		return ErrorList{FromDeclarationError(de)}
	}
	return ErrorList{FromRuntimeError(err, ast.SourceLocation{})}
}
