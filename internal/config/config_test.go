package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FilePattern != "*.txt" {
		t.Errorf("FilePattern = %q, want %q", cfg.FilePattern, "*.txt")
	}
	if cfg.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty (file logging off)", cfg.LogDir)
	}
	if cfg.CancelKey != "c" {
		t.Errorf("CancelKey = %q, want %q", cfg.CancelKey, "c")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if !cfg.UI.PromptAgain {
		t.Error("UI.PromptAgain = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `file_pattern: "*.log"
max_concurrency: 4
log_level: debug
log_dir: /tmp/tgrep-logs
cancel_key: x
exclude_dirs:
  - node_modules
  - .git
skip_hidden: true
max_depth: 3
max_line_bytes: 1048576
history:
  enabled: false
  db_path: /tmp/history.db
  max_entries: 50
ui:
  clear_screen: true
  prompt_again: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	expected := &Config{
		FilePattern:    "*.log",
		MaxConcurrency: 4,
		LogLevel:       "debug",
		LogDir:         "/tmp/tgrep-logs",
		CancelKey:      "x",
		ExcludeDirs:    []string{"node_modules", ".git"},
		SkipHidden:     true,
		MaxDepth:       3,
		MaxLineBytes:   1048576,
		History:        HistoryConfig{Enabled: false, DBPath: "/tmp/history.db", MaxEntries: 50},
		UI:             UIConfig{ClearScreen: true, PromptAgain: false},
	}
	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, expected)
	}
}

// TestLoadConfigPartialFile verifies absent keys keep their defaults
func TestLoadConfigPartialFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `max_concurrency: 2
history:
  max_entries: 10
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", cfg.MaxConcurrency)
	}
	if cfg.History.MaxEntries != 10 {
		t.Errorf("History.MaxEntries = %d, want 10", cfg.History.MaxEntries)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep its default when not set")
	}
	if cfg.FilePattern != "*.txt" {
		t.Errorf("FilePattern = %q, want default", cfg.FilePattern)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

// TestLoadConfigMalformed tests that malformed YAML is an error
func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "max_concurrency: [not an int\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for malformed YAML")
	}
}

// TestLoadConfigFromDir tests loading from .tgrep/config.yaml
func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, configDir, "log_level: warn\n")

	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

// TestLoadResolution tests explicit path, then project, then home
func TestLoadResolution(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)
	writeConfig(t, home, "log_level: error\n")

	project := t.TempDir()

	t.Run("home config when no project config", func(t *testing.T) {
		cfg, err := Load("", project)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.LogLevel != "error" {
			t.Errorf("LogLevel = %q, want home value %q", cfg.LogLevel, "error")
		}
	})

	t.Run("project config wins over home", func(t *testing.T) {
		configDir := filepath.Join(project, ConfigDirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}
		writeConfig(t, configDir, "log_level: debug\n")

		cfg, err := Load("", project)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want project value %q", cfg.LogLevel, "debug")
		}
	})

	t.Run("explicit path wins", func(t *testing.T) {
		explicit := writeConfig(t, t.TempDir(), "log_level: trace\n")

		cfg, err := Load(explicit, project)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.LogLevel != "trace" {
			t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "trace")
		}
	})

	t.Run("missing explicit path is an error", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), project); err == nil {
			t.Error("Load() expected error for missing explicit config")
		}
	})
}

// TestMergeWithFlags tests that set flags override config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	pattern := "*.md"
	concurrency := 8
	level := "debug"
	logDir := "/var/log/tgrep"
	noHistory := true
	once := true

	cfg.MergeWithFlags(FlagOverrides{
		FilePattern:    &pattern,
		MaxConcurrency: &concurrency,
		LogLevel:       &level,
		LogDir:         &logDir,
		NoHistory:      &noHistory,
		Once:           &once,
	})

	if cfg.FilePattern != pattern {
		t.Errorf("FilePattern = %q, want %q", cfg.FilePattern, pattern)
	}
	if cfg.MaxConcurrency != concurrency {
		t.Errorf("MaxConcurrency = %d, want %d", cfg.MaxConcurrency, concurrency)
	}
	if cfg.LogLevel != level {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, level)
	}
	if cfg.LogDir != logDir {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, logDir)
	}
	if cfg.History.Enabled {
		t.Error("--no-history should disable history")
	}
	if cfg.UI.PromptAgain {
		t.Error("--once should disable the repeat prompt")
	}
}

// TestMergeWithFlagsNil tests that unset flags leave config untouched
func TestMergeWithFlagsNil(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = 3

	cfg.MergeWithFlags(FlagOverrides{})

	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", cfg.MaxConcurrency)
	}

	notSet := false
	cfg.MergeWithFlags(FlagOverrides{NoHistory: &notSet, Once: &notSet})
	if !cfg.History.Enabled || !cfg.UI.PromptAgain {
		t.Error("false switches must not disable anything")
	}
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, "max_concurrency"},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max_depth"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad pattern", func(c *Config) { c.FilePattern = "[" }, "file_pattern"},
		{"empty cancel key", func(c *Config) { c.CancelKey = "" }, "cancel_key"},
		{"long cancel key", func(c *Config) { c.CancelKey = "ab" }, "cancel_key"},
		{"space cancel key", func(c *Config) { c.CancelKey = " " }, "cancel_key"},
		{"non-ascii cancel key", func(c *Config) { c.CancelKey = "é" }, "cancel_key"},
		{"negative line cap", func(c *Config) { c.MaxLineBytes = -5 }, "max_line_bytes"},
		{"negative history cap", func(c *Config) { c.History.MaxEntries = -1 }, "history.max_entries"},
		{"custom cancel key", func(c *Config) { c.CancelKey = "q" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestCancelRune(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CancelRune() != 'c' {
		t.Errorf("CancelRune() = %q, want 'c'", cfg.CancelRune())
	}
	cfg.CancelKey = "q"
	if cfg.CancelRune() != 'q' {
		t.Errorf("CancelRune() = %q, want 'q'", cfg.CancelRune())
	}
	cfg.CancelKey = ""
	if cfg.CancelRune() != 'c' {
		t.Errorf("CancelRune() = %q, want fallback 'c'", cfg.CancelRune())
	}
}

// TestHomeDirWithEnvVar tests TGREP_HOME takes precedence
func TestHomeDirWithEnvVar(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "tgrep-home")
	t.Setenv(HomeEnvVar, custom)

	home, err := HomeDir()
	if err != nil {
		t.Fatalf("HomeDir() error = %v", err)
	}
	if home != custom {
		t.Errorf("HomeDir() = %q, want %q", home, custom)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("home directory not created: %v", err)
	}
}

// TestHomeDirFallback tests ~/.tgrep is used without TGREP_HOME
func TestHomeDirFallback(t *testing.T) {
	userHome := t.TempDir()
	t.Setenv(HomeEnvVar, "")
	t.Setenv("HOME", userHome)

	home, err := HomeDir()
	if err != nil {
		t.Fatalf("HomeDir() error = %v", err)
	}
	if home != filepath.Join(userHome, ConfigDirName) {
		t.Errorf("HomeDir() = %q, want %q", home, filepath.Join(userHome, ConfigDirName))
	}
}

// TestHistoryDBPath tests explicit and derived database locations
func TestHistoryDBPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnvVar, home)

	cfg := DefaultConfig()
	path, err := cfg.HistoryDBPath()
	if err != nil {
		t.Fatalf("HistoryDBPath() error = %v", err)
	}
	if path != filepath.Join(home, "history.db") {
		t.Errorf("HistoryDBPath() = %q, want %q", path, filepath.Join(home, "history.db"))
	}

	cfg.History.DBPath = ":memory:"
	path, _ = cfg.HistoryDBPath()
	if path != ":memory:" {
		t.Errorf("HistoryDBPath() = %q, want %q", path, ":memory:")
	}
}
