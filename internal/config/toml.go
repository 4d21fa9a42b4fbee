// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Log      LogConfig      `toml:"log"`
	Defaults DefaultsConfig `toml:"defaults"`
	TestPage TestPageConfig `toml:"testpage"`
}

type LogConfig struct {
	Level *string `toml:"level"`
}

// DefaultsConfig overrides the built-in preference defaults. Stored
// preferences still take precedence.
type DefaultsConfig struct {
	ClicksPerSecond      *float64 `toml:"clicks-per-second"`
	StartAfterSeconds    *float64 `toml:"start-after"`
	StopAfterSeconds     *float64 `toml:"stop-after"`
	StationaryForSeconds *float64 `toml:"stationary-for"`
	PlaySoundEffects     *bool    `toml:"play-sound-effects"`
	SelectedSoundName    *string  `toml:"sound"`
}

type TestPageConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// LogLevel returns the configured level or fallback.
func (c FileConfig) LogLevel(fallback string) string {
	if c.Log.Level != nil && *c.Log.Level != "" {
		return *c.Log.Level
	}
	return fallback
}

// TestPageAddr returns the configured listen address or fallback.
func (c FileConfig) TestPageAddr(fallback string) string {
	if c.TestPage.Addr != nil && *c.TestPage.Addr != "" {
		return *c.TestPage.Addr
	}
	return fallback
}
