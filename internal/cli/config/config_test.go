package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.ProjectName != filepath.Base(dir) {
		t.Errorf("expected project name %s, got %s", filepath.Base(dir), cfg.ProjectName)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "console" {
		t.Errorf("unexpected log defaults %+v", cfg.Log)
	}
	if cfg.Compile.CacheSize != 128 {
		t.Errorf("expected default cache size 128, got %d", cfg.Compile.CacheSize)
	}
	if !reflect.DeepEqual(cfg.Compile.Prelude, []string{"Types::Standard"}) {
		t.Errorf("expected Types::Standard prelude, got %v", cfg.Compile.Prelude)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("expected 200ms debounce, got %s", cfg.Watch.Debounce)
	}
	if cfg.File != "" {
		t.Errorf("expected no config file, got %s", cfg.File)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "moops.yml", `
project_name: calculator
source:
  dirs: [lib, app]
log:
  level: debug
  format: json
compile:
  strict: true
  cache_size: 16
  prelude:
    - Types::Standard
    - Types::Common::Numeric
watch:
  debounce: 1s
`)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.ProjectName != "calculator" {
		t.Errorf("expected project name calculator, got %s", cfg.ProjectName)
	}
	if !reflect.DeepEqual(cfg.Source.Dirs, []string{"lib", "app"}) {
		t.Errorf("unexpected source dirs %v", cfg.Source.Dirs)
	}
	if !cfg.Compile.Strict || cfg.Compile.CacheSize != 16 {
		t.Errorf("unexpected compile config %+v", cfg.Compile)
	}
	if len(cfg.Compile.Prelude) != 2 || cfg.Compile.Prelude[1] != "Types::Common::Numeric" {
		t.Errorf("unexpected prelude %v", cfg.Compile.Prelude)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %s", cfg.Watch.Debounce)
	}
	if !strings.HasSuffix(cfg.File, "moops.yml") {
		t.Errorf("expected moops.yml to be reported, got %s", cfg.File)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "moops.yml", "log:\n  level: info\n")

	t.Setenv("MOOPS_LOG_LEVEL", "error")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("expected environment to win, got %s", cfg.Log.Level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "MOOPS_COMPILE_CACHE_SIZE=7\n")

	// godotenv never overrides variables that are already set, so make sure
	// this one is unset and removed again afterwards
	t.Setenv("MOOPS_COMPILE_CACHE_SIZE", "")
	os.Unsetenv("MOOPS_COMPILE_CACHE_SIZE")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Compile.CacheSize != 7 {
		t.Errorf("expected cache size from .env, got %d", cfg.Compile.CacheSize)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"negative cache", "compile:\n  cache_size: -1\n", "compile.cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "moops.yaml", tt.content)

			_, err := LoadFrom(dir)
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("expected error mentioning %s, got %v", tt.errText, err)
			}
		})
	}
}

func TestInProjectAndRoot(t *testing.T) {
	dir := t.TempDir()
	if InProject(dir) {
		t.Error("expected empty directory not to be a project")
	}
	writeFile(t, dir, "moops.yml", "project_name: demo\n")
	if !InProject(dir) {
		t.Error("expected directory with moops.yml to be a project")
	}

	nested := filepath.Join(dir, "lib", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	oldWd, _ := os.Getwd()
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)

	root, err := GetProjectRoot()
	if err != nil {
		t.Fatalf("expected project root, got %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(root)
	if got != resolved {
		t.Errorf("expected root %s, got %s", resolved, got)
	}
}
