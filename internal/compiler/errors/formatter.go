package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<source>"
	}

	fmt.Fprintf(&b, "%s %s [%s] in %s\n", severityIcon(e.Severity), categoryDisplayName(e.Category), e.Code, file)

	if e.Location.Line > 0 {
		fmt.Fprintf(&b, "Line %d, Column %d:\n", e.Location.Line, e.Location.Column)
	}

	if e.Context != nil && len(e.Context.SourceLines) > 0 {
		for i, line := range e.Context.SourceLines {
			lineNum := e.Location.Line - 1 + i
			if lineNum < 1 {
				continue
			}
			fmt.Fprintf(&b, "%s  %s\n", formatLineNumber(lineNum), line)
			if i == 1 {
				fmt.Fprintf(&b, "%s  %s^ %s\n", strings.Repeat(" ", 5), caretPadding(line, e.Location.Column), e.Message)
			}
		}
	} else {
		if e.Subject != "" {
			fmt.Fprintf(&b, "  %s: %s\n", e.Subject, e.Message)
		} else {
			fmt.Fprintf(&b, "  %s\n", e.Message)
		}
	}

	if e.Expected != "" || e.Actual != "" {
		b.WriteString("\n")
		if e.Expected != "" {
			fmt.Fprintf(&b, "  Expected: %s\n", e.Expected)
		}
		if e.Actual != "" {
			fmt.Fprintf(&b, "  Actual:   %s\n", e.Actual)
		}
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\nHint: %s\n", e.Suggestion)
	}

	if len(e.Examples) > 0 {
		b.WriteString("\nQuick Fixes:\n")
		for i, example := range e.Examples {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, example)
		}
	}

	return b.String()
}

// FormatErrorList returns a formatted string of all errors
func FormatErrorList(errors ErrorList) string {
	if len(errors) == 0 {
		return "no errors"
	}

	var b strings.Builder

	errCount, warnCount, infoCount := errors.ErrorCount()
	fmt.Fprintf(&b, "Loading failed with %d error(s), %d warning(s), %d info\n\n",
		errCount, warnCount, infoCount)

	for i, err := range errors {
		if i > 0 {
			b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
		}
		b.WriteString(err.Format())
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	message := e.Message
	if e.Subject != "" {
		message = e.Subject + ": " + message
	}
	if e.Location.Line == 0 {
		return fmt.Sprintf("%s: %s: %s [%s]", file, e.Severity, message, e.Code)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		file, e.Location.Line, e.Location.Column,
		e.Severity, message, e.Code)
}

// severityIcon returns the marker for a severity level
func severityIcon(severity ErrorSeverity) string {
	switch severity {
	case SeverityError:
		return "✗"
	case SeverityWarning:
		return "!"
	case SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryType:
		return "Type Error"
	case CategoryDeclaration:
		return "Declaration Error"
	case CategorySemantic:
		return "Semantic Error"
	case CategoryRuntime:
		return "Runtime Error"
	default:
		return "Compiler Error"
	}
}

// formatLineNumber formats a line number for display
func formatLineNumber(lineNum int) string {
	return fmt.Sprintf("%3d |", lineNum)
}

// caretPadding returns whitespace reaching column, keeping tabs so the
// caret lines up with the source line
func caretPadding(line string, column int) string {
	var b strings.Builder
	for i := 0; i < column-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
