// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "clakr"

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

// DataDir returns the clakr data directory, creating it if needed.
func DataDir() (string, error) {
	dir := filepath.Join(XDGDataHome(), appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// LogDir returns the log directory, creating it if needed.
func LogDir() (string, error) {
	dir := filepath.Join(XDGDataHome(), appName, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, "clakr.db")
}

// DefaultSoundDir returns the directory for user-imported sounds.
func DefaultSoundDir() string {
	return filepath.Join(XDGDataHome(), appName, "sounds")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
