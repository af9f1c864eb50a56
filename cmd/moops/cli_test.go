package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

var (
	testBinary     string
	testBinaryOnce sync.Once
	testBinaryErr  error
)

// buildTestBinary builds the moops binary once for all tests
func buildTestBinary(t *testing.T) string {
	t.Helper()
	testBinaryOnce.Do(func() {
		tmpBinary := filepath.Join(os.TempDir(), "moops-test")
		cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			testBinaryErr = err
			testBinary = string(out)
			return
		}
		testBinary = tmpBinary
	})

	if testBinaryErr != nil {
		t.Fatalf("failed to build test binary: %v\n%s", testBinaryErr, testBinary)
	}
	return testBinary
}

func TestVersionCommand(t *testing.T) {
	binary := buildTestBinary(t)

	output, err := exec.Command(binary, "version", "--no-color").CombinedOutput()
	if err != nil {
		t.Fatalf("version command failed: %v\nOutput: %s", err, output)
	}

	for _, exp := range []string{"moops version:", "Git commit:", "Build date:", "Go version:"} {
		if !strings.Contains(string(output), exp) {
			t.Errorf("version output missing expected string: %q\nGot: %s", exp, output)
		}
	}
}

func TestNewThenRun(t *testing.T) {
	binary := buildTestBinary(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binary, "new", "greeter", "--no-color")
	cmd.Dir = tmpDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("new command failed: %v\nOutput: %s", err, output)
	}

	cmd = exec.Command(binary, "run", "main.moops", "--no-color")
	cmd.Dir = filepath.Join(tmpDir, "greeter")
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}
	if string(output) != "Hello, greeter!\n" {
		t.Errorf("unexpected output %q", output)
	}
}

func TestCheckExitStatus(t *testing.T) {
	binary := buildTestBinary(t)
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "bad.moops"), []byte("class Dog extends Wolf { }\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(binary, "check", "--no-color")
	cmd.Dir = tmpDir
	output, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok || exitErr.ExitCode() != 1 {
		t.Fatalf("expected exit status 1, got %v\nOutput: %s", err, output)
	}
	if !strings.Contains(string(output), "DEC200") {
		t.Errorf("expected the unknown parent diagnostic, got:\n%s", output)
	}
	if strings.Contains(string(output), "Error: failed") {
		t.Errorf("the failure must not be reported twice:\n%s", output)
	}
}

func TestCalculatorExample(t *testing.T) {
	binary := buildTestBinary(t)

	cmd := exec.Command(binary, "run", "main.moops", "--no-color")
	cmd.Dir = filepath.Join("..", "..", "examples", "calculator")
	output, err := cmd.Output()
	if err != nil {
		t.Fatalf("run command failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) < 7 || lines[2] != "42" || lines[6] != "set: Must be a positive integer" {
		t.Errorf("unexpected output:\n%s", output)
	}
}
