package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the tgrep home directory.
const HomeEnvVar = "TGREP_HOME"

// HomeDir returns the tgrep home directory
// Priority order:
//  1. TGREP_HOME environment variable (if set)
//  2. ~/.tgrep
//
// The directory is created if it doesn't exist
func HomeDir() (string, error) {
	if home := os.Getenv(HomeEnvVar); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create tgrep home directory: %w", err)
		}
		return home, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	home := filepath.Join(userHome, ConfigDirName)
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create tgrep home directory: %w", err)
	}

	return home, nil
}

// HistoryDBPath returns the history database location for cfg.
// An explicit history.db_path is used as is; otherwise the database lives
// in the home directory.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}

	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "history.db"), nil
}
