package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Log.Level)
	assert.Equal(t, "info", cfg.LogLevel("info"))
	assert.Equal(t, "127.0.0.1:8421", cfg.TestPageAddr("127.0.0.1:8421"))
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[defaults]
clicks-per-second = 250
start-after = 1.5
stop-after = 0
play-sound-effects = true
sound = "Ping"

[testpage]
addr = ":9000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel("info"))
	assert.Equal(t, ":9000", cfg.TestPageAddr("127.0.0.1:8421"))
	require.NotNil(t, cfg.Defaults.ClicksPerSecond)
	assert.Equal(t, 250.0, *cfg.Defaults.ClicksPerSecond)
	require.NotNil(t, cfg.Defaults.StartAfterSeconds)
	assert.Equal(t, 1.5, *cfg.Defaults.StartAfterSeconds)
	require.NotNil(t, cfg.Defaults.StopAfterSeconds)
	assert.Zero(t, *cfg.Defaults.StopAfterSeconds)
	assert.Nil(t, cfg.Defaults.StationaryForSeconds)
	require.NotNil(t, cfg.Defaults.PlaySoundEffects)
	assert.True(t, *cfg.Defaults.PlaySoundEffects)
	require.NotNil(t, cfg.Defaults.SelectedSoundName)
	assert.Equal(t, "Ping", *cfg.Defaults.SelectedSoundName)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[defaults]\nclicks = 10\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "defaults.clicks")
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[log\nlevel = ")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to decode config")
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	assert.Equal(t, filepath.Join("/tmp/cfg", "clakr", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/data", "clakr", "clakr.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/tmp/data", "clakr", "sounds"), DefaultSoundDir())
}

func TestDataDirCreatesDirectory(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_DATA_HOME", root)

	dir, err := DataDir()
	require.NoError(t, err)
	assert.DirExists(t, dir)

	logs, err := LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "clakr", "logs"), logs)
	assert.DirExists(t, logs)
}
