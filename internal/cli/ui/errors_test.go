package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatError(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "CLASS NOT FOUND",
				Problem: "No class or role named 'Point' is declared.",
			},
			contains: []string{
				"❌",
				"CLASS NOT FOUND",
				"No class or role named 'Point' is declared.",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "CLASS NOT FOUND",
				Problem:     "No class or role named 'Pnt' is declared.",
				Suggestions: []string{"Point", "Pen"},
			},
			contains: []string{
				"Did you mean: Point, Pen?",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "CHECK FAILED",
				Problem: "Unknown parent class",
				HelpCommands: []string{
					"Check the project: moops check",
					"Get help: moops check --help",
				},
			},
			contains: []string{
				"→ Check the project: moops check",
				"→ Get help: moops check --help",
			},
		},
		{
			name: "warning message",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Problem: "Unreachable code after return",
			},
			contains: []string{
				"⚠️",
				"Unreachable code after return",
			},
		},
		{
			name: "info message",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "Loaded 3 classes",
			},
			contains: []string{
				"ℹ️",
				"Loaded 3 classes",
			},
		},
		{
			name: "error with consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "RUNTIME ERROR",
				Problem:     "Attribute num is required",
				Consequence: "No instance was constructed",
			},
			contains: []string{
				"Attribute num is required",
				"No instance was constructed",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError() output missing expected string:\nExpected to contain: %q\nGot: %q", expected, result)
				}
			}
		})
	}
}

func TestClassNotFoundError(t *testing.T) {
	result := ClassNotFoundError("Calculater", []string{"Calculator"}, true)

	expected := []string{
		"CLASS NOT FOUND",
		"No class or role named 'Calculater' is declared.",
		"Did you mean: Calculator?",
		"→ List declared classes: moops inspect",
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("ClassNotFoundError() missing expected string: %q", exp)
		}
	}
}

func TestCheckFailed(t *testing.T) {
	tests := []struct {
		errors, warnings int
		want             string
	}{
		{1, 0, "1 error, 0 warnings."},
		{3, 1, "3 errors, 1 warning."},
	}
	for _, tt := range tests {
		result := CheckFailed(tt.errors, tt.warnings, true)
		if !strings.Contains(result, "CHECK FAILED") || !strings.Contains(result, tt.want) {
			t.Errorf("CheckFailed(%d, %d) = %q, want it to contain %q", tt.errors, tt.warnings, result, tt.want)
		}
	}
}

func TestWriteError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "TEST ERROR",
		Problem: "This is a test",
	}

	WriteError(&buf, opts)

	output := buf.String()
	if !strings.Contains(output, "TEST ERROR") {
		t.Errorf("WriteError() did not write to buffer correctly")
	}
}

func TestFormatSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := FormatSuccess("Check passed", true)

	if !strings.Contains(result, "✓") {
		t.Errorf("FormatSuccess() missing checkmark")
	}
	if !strings.Contains(result, "Check passed") {
		t.Errorf("FormatSuccess() missing message")
	}
}

func TestWriteSuccess(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteSuccess(&buf, "Test success", true)

	output := buf.String()
	if !strings.Contains(output, "✓") {
		t.Errorf("WriteSuccess() missing checkmark")
	}
	if !strings.Contains(output, "Test success") {
		t.Errorf("WriteSuccess() missing message")
	}
}

func TestWarning(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := Warning("Unreachable code after return", []string{"Remove the trailing statements"}, true)

	expected := []string{
		"⚠️",
		"Unreachable code after return",
		"Did you mean: Remove the trailing statements?",
	}

	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("Warning() missing expected string: %q", exp)
		}
	}
}

func TestConfigError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	result := ConfigError("Invalid YAML syntax", []string{"Check indentation"}, true)

	expected := []string{
		"CONFIGURATION ERROR",
		"Invalid YAML syntax",
		"Did you mean: Check indentation?",
	}

	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("ConfigError() missing expected string: %q", exp)
		}
	}
}
