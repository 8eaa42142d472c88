package config

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/harrison/tgrep/internal/logger"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the per-project directory holding config.yaml.
const ConfigDirName = ".tgrep"

// HistoryConfig represents search history configuration
type HistoryConfig struct {
	// Enabled records every finished search in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database ("" = $TGREP_HOME/history.db)
	DBPath string `yaml:"db_path"`

	// MaxEntries caps the number of stored searches (0 = unlimited)
	MaxEntries int `yaml:"max_entries"`
}

// UIConfig represents interactive loop configuration
type UIConfig struct {
	// ClearScreen clears the terminal before each search round
	ClearScreen bool `yaml:"clear_screen"`

	// PromptAgain asks "search again?" after each round
	PromptAgain bool `yaml:"prompt_again"`
}

// Config represents tgrep configuration options
type Config struct {
	// FilePattern is the default glob applied to file names
	FilePattern string `yaml:"file_pattern"`

	// MaxConcurrency is the maximum number of files scanned at once (0 = number of CPUs)
	MaxConcurrency int `yaml:"max_concurrency"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables run log files in this directory ("" = no log files)
	LogDir string `yaml:"log_dir"`

	// CancelKey is the single key that cancels a running search
	CancelKey string `yaml:"cancel_key"`

	// ExcludeDirs are directory names never descended into
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// SkipHidden skips dot-directories during recursive searches
	SkipHidden bool `yaml:"skip_hidden"`

	// MaxDepth limits how deep recursive searches go (0 = unlimited, 1 = top directory only)
	MaxDepth int `yaml:"max_depth"`

	// MaxLineBytes caps a single line; longer lines fail the file (0 = 10 MiB)
	MaxLineBytes int `yaml:"max_line_bytes"`

	// History contains search history configuration
	History HistoryConfig `yaml:"history"`

	// UI contains interactive loop configuration
	UI UIConfig `yaml:"ui"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		FilePattern:    "*.txt",
		MaxConcurrency: 0,
		LogLevel:       "info",
		LogDir:         "",
		CancelKey:      "c",
		ExcludeDirs:    nil,
		SkipHidden:     false,
		MaxDepth:       0,
		MaxLineBytes:   0,
		History: HistoryConfig{
			Enabled:    true,
			DBPath:     "",
			MaxEntries: 500,
		},
		UI: UIConfig{
			ClearScreen: false,
			PromptAgain: true,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their default values
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .tgrep/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigDirName, "config.yaml"))
}

// Load resolves the configuration for a run. An explicit path wins; otherwise
// the project config in dir is used when present, then the one in the tgrep
// home directory.
func Load(explicitPath, dir string) (*Config, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return LoadConfig(explicitPath)
	}

	if _, err := os.Stat(filepath.Join(dir, ConfigDirName, "config.yaml")); err == nil {
		return LoadConfigFromDir(dir)
	}

	if home, err := HomeDir(); err == nil {
		return LoadConfig(filepath.Join(home, "config.yaml"))
	}

	return DefaultConfig(), nil
}

// FlagOverrides holds CLI flag values. Nil fields were not set on the command
// line and leave the configuration untouched.
type FlagOverrides struct {
	FilePattern    *string
	MaxConcurrency *int
	LogLevel       *string
	LogDir         *string
	NoHistory      *bool
	Once           *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(flags FlagOverrides) {
	if flags.FilePattern != nil {
		c.FilePattern = *flags.FilePattern
	}
	if flags.MaxConcurrency != nil {
		c.MaxConcurrency = *flags.MaxConcurrency
	}
	if flags.LogLevel != nil {
		c.LogLevel = *flags.LogLevel
	}
	if flags.LogDir != nil {
		c.LogDir = *flags.LogDir
	}
	if flags.NoHistory != nil && *flags.NoHistory {
		c.History.Enabled = false
	}
	if flags.Once != nil && *flags.Once {
		c.UI.PromptAgain = false
	}
}

// CancelRune returns the configured cancel key as a rune.
func (c *Config) CancelRune() rune {
	for _, r := range c.CancelKey {
		return r
	}
	return 'c'
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth)
	}

	if !logger.IsValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.FilePattern != "" {
		if _, err := filepath.Match(c.FilePattern, ""); err != nil {
			return fmt.Errorf("invalid file_pattern %q: %w", c.FilePattern, err)
		}
	}

	runes := []rune(c.CancelKey)
	if len(runes) != 1 || runes[0] > unicode.MaxASCII || !unicode.IsPrint(runes[0]) || unicode.IsSpace(runes[0]) {
		return fmt.Errorf("cancel_key must be a single printable ASCII character, got %q", c.CancelKey)
	}

	if c.MaxLineBytes < 0 {
		return fmt.Errorf("max_line_bytes must be >= 0, got %d", c.MaxLineBytes)
	}

	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0, got %d", c.History.MaxEntries)
	}

	return nil
}
