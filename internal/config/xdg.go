// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "chessex"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".log")
}

// DefaultDBPath returns the default statistics database path.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "results.sqlite")
}

// DefaultMin50DBPath returns the default path of the min50 statistics database.
func DefaultMin50DBPath() string {
	return filepath.Join(XDGDataHome(), appName, "results_min50.sqlite")
}

// DefaultOpeningsPath returns the default openings file used by eval.
func DefaultOpeningsPath() string {
	return filepath.Join(XDGConfigHome(), appName, "openings.txt")
}
