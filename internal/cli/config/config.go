package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ConfigNames are the file names a project configuration may use
var ConfigNames = []string{"moops.yml", "moops.yaml"}

// EnvPrefix prefixes environment overrides: MOOPS_LOG_LEVEL=debug
const EnvPrefix = "MOOPS"

// Config represents the moops configuration
type Config struct {
	ProjectName string        `mapstructure:"project_name"`
	Source      SourceConfig  `mapstructure:"source"`
	Log         LogConfig     `mapstructure:"log"`
	Compile     CompileConfig `mapstructure:"compile"`
	Repl        ReplConfig    `mapstructure:"repl"`
	Watch       WatchConfig   `mapstructure:"watch"`

	// File is the configuration file that was read, empty for defaults
	File string `mapstructure:"-"`
}

// SourceConfig says where declaration sources live
type SourceConfig struct {
	Dirs []string `mapstructure:"dirs"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CompileConfig configures loading
type CompileConfig struct {
	// Strict turns checker warnings into errors
	Strict bool `mapstructure:"strict"`
	// CacheSize is the number of parsed programs kept in memory
	CacheSize int `mapstructure:"cache_size"`
	// Prelude lists type libraries imported into every unit
	Prelude []string `mapstructure:"prelude"`
}

// ReplConfig configures the interactive shell
type ReplConfig struct {
	HistoryFile string `mapstructure:"history_file"`
	Prompt      string `mapstructure:"prompt"`
}

// WatchConfig configures check --watch
type WatchConfig struct {
	Patterns []string      `mapstructure:"patterns"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load loads the configuration of the project in the current directory
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom loads .env and moops.yml (or moops.yaml) from dir. Missing files
// fall back to defaults; MOOPS_ environment variables override both.
func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("project_name", filepath.Base(absolute(dir)))
	v.SetDefault("source.dirs", []string{"."})
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("compile.strict", false)
	v.SetDefault("compile.cache_size", 128)
	v.SetDefault("compile.prelude", []string{"Types::Standard"})
	v.SetDefault("repl.history_file", defaultHistoryFile())
	v.SetDefault("repl.prompt", "moops> ")
	v.SetDefault("watch.patterns", []string{"*.moops"})
	v.SetDefault("watch.debounce", 200*time.Millisecond)

	v.SetConfigName("moops")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.File = v.ConfigFileUsed()

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if dir holds a moops project configuration
func InProject(dir string) bool {
	for _, name := range ConfigNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// GetProjectRoot walks up from the working directory to the first
// directory holding a moops.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if InProject(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a moops project (no moops.yml found)")
		}
		dir = parent
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".moops_history")
}

func absolute(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %s", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got: %s", cfg.Log.Format)
	}
	if cfg.Compile.CacheSize < 0 {
		return fmt.Errorf("compile.cache_size must not be negative, got: %d", cfg.Compile.CacheSize)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
