package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateProjectName(t *testing.T) {
	testCases := []struct {
		name        string
		projectName string
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid name",
			projectName: "my-project",
			expectError: false,
		},
		{
			name:        "valid name with underscores",
			projectName: "my_project",
			expectError: false,
		},
		{
			name:        "valid name alphanumeric",
			projectName: "myproject123",
			expectError: false,
		},
		{
			name:        "empty string",
			projectName: "",
			expectError: true,
			errorMsg:    "must be 1-100 characters",
		},
		{
			name:        "whitespace only",
			projectName: "   ",
			expectError: true,
			errorMsg:    "must be 1-100 characters",
		},
		{
			name:        "too long",
			projectName: "a" + string(make([]byte, 100)),
			expectError: true,
			errorMsg:    "must be 1-100 characters",
		},
		{
			name:        "contains slash",
			projectName: "my/project",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
		{
			name:        "contains backslash",
			projectName: "my\\project",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
		{
			name:        "contains dot",
			projectName: "my.project",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
		{
			name:        "path traversal attempt",
			projectName: "../malicious",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
		{
			name:        "absolute path",
			projectName: "/usr/bin/malware",
			expectError: true,
			errorMsg:    "cannot be an absolute path",
		},
		{
			name:        "starts with dot",
			projectName: ".hidden",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
		{
			name:        "contains special chars",
			projectName: "my@project!",
			expectError: true,
			errorMsg:    "can only contain letters, numbers, dashes, and underscores",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProjectName(tc.projectName)

			if tc.expectError {
				if err == nil {
					t.Errorf("expected error for project name %q, got nil", tc.projectName)
				} else if tc.errorMsg != "" && !strings.Contains(err.Error(), tc.errorMsg) {
					t.Errorf("expected error to contain %q, got %q", tc.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("expected no error for project name %q, got %v", tc.projectName, err)
				}
			}
		})
	}
}

func TestNewNewCommand(t *testing.T) {
	cmd := NewNewCommand()

	if cmd.Use != "new [project-name]" {
		t.Errorf("expected Use to be 'new [project-name]', got %s", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	for _, flag := range []string{"interactive", "prelude", "strict"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag to be registered", flag)
		}
	}
}

func TestCreateProjectRendersTemplates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoo")
	var out bytes.Buffer

	err := createProject(&out, path, projectSettings{
		ProjectName: "zoo",
		Prelude:     []string{"Types::Standard"},
		Strict:      true,
	})
	if err != nil {
		t.Fatalf("createProject failed: %v", err)
	}

	main, err := os.ReadFile(filepath.Join(path, "main.moops"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(main), `Greeter.new(name: "zoo")`) {
		t.Errorf("expected the project name in main.moops, got:\n%s", main)
	}

	cfg, err := os.ReadFile(filepath.Join(path, "moops.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cfg), "strict: true") {
		t.Errorf("expected strict mode in moops.yml, got:\n%s", cfg)
	}
	if !strings.Contains(out.String(), "Created lib/greeter.moops") {
		t.Errorf("expected progress output, got:\n%s", out.String())
	}
}

func TestCreateProjectRefusesExistingDirectory(t *testing.T) {
	path := t.TempDir()

	err := createProject(&bytes.Buffer{}, path, projectSettings{ProjectName: "taken"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected 'already exists' error, got: %v", err)
	}
}

func TestCheckPrelude(t *testing.T) {
	if err := checkPrelude([]string{"Types::Standard", "Types::Common::Numeric"}); err != nil {
		t.Errorf("expected known libraries to pass, got %v", err)
	}
	if err := checkPrelude([]string{"Types::Nope"}); err == nil {
		t.Error("expected an unknown library to fail")
	}
}
