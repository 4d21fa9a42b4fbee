package app

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/config"
	"github.com/aayushbajaj/clakr/internal/preferences"
	"github.com/aayushbajaj/clakr/internal/storage"
)

type countingEmitter struct{ n atomic.Int64 }

func (e *countingEmitter) Click() error {
	e.n.Add(1)
	return nil
}

type stillWatch struct{}

func (stillWatch) OnMove(func(time.Time)) (clicker.CancelFunc, error) {
	return func() {}, nil
}

func newTestApp(t *testing.T, configBody string) (*App, *countingEmitter) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if configBody != "" {
		require.NoError(t, os.WriteFile(cfgPath, []byte(configBody), 0644))
	}
	emitter := &countingEmitter{}
	a, err := New(Options{
		ConfigPath: cfgPath,
		DBPath:     filepath.Join(dir, "clakr.db"),
		SoundDir:   filepath.Join(dir, "sounds"),
		LogWriter:  io.Discard,
		Watch:      stillWatch{},
		Emitter:    emitter,
	})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a, emitter
}

func TestNewRegistersDefaults(t *testing.T) {
	a, _ := newTestApp(t, "")

	prefs, err := a.Store.AllPreferences()
	require.NoError(t, err)
	assert.Equal(t, "1000", prefs["clicksPerSecond"])
	assert.Len(t, prefs, len(preferences.Definitions()))
}

func TestConfigDefaultsOverrideBuiltins(t *testing.T) {
	a, _ := newTestApp(t, "[defaults]\nclicks-per-second = 40\nstop-after = 0\n")

	cfg, err := a.Prefs.ClickConfig()
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Rate)
	assert.Zero(t, cfg.StopAfter)

	exp := a.Expectation()
	assert.Equal(t, 40.0, exp.Rate)
}

func TestInvalidLogLevelFails(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{
		ConfigPath: filepath.Join(dir, "config.toml"),
		DBPath:     filepath.Join(dir, "clakr.db"),
		LogLevel:   "chatty",
		LogWriter:  io.Discard,
	})
	assert.Error(t, err)
}

func TestFinishedSessionIsRecorded(t *testing.T) {
	a, emitter := newTestApp(t, "")
	states, unsubscribe := a.Controller.Feed().Subscribe()
	defer unsubscribe()

	require.NoError(t, a.Controller.Start(clicker.Config{Rate: 100, StopAfter: 100 * time.Millisecond}))

	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case s := <-states:
			done = s == clicker.Idle && a.Controller.State() == clicker.Idle && emitter.n.Load() > 0
		case <-deadline:
			t.Fatal("session did not finish")
		}
	}

	// The session observer runs after Idle is published.
	var sessions []storage.SessionRecord
	require.Eventually(t, func() bool {
		var err error
		sessions, err = a.Store.RecentSessions(0)
		return err == nil && len(sessions) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "auto", sessions[0].Reason)
	assert.Equal(t, 100.0, sessions[0].Rate)
	assert.NotNil(t, sessions[0].StartedAt)
	assert.Equal(t, emitter.n.Load(), sessions[0].Clicks)
}

func TestSessionRecord(t *testing.T) {
	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	rec := SessionRecord(clicker.SessionSummary{
		RequestedAt: at,
		EndedAt:     at.Add(time.Second),
		Config:      clicker.Config{Rate: 10, StartDelay: time.Second},
		Reason:      clicker.StopCanceled,
	})
	assert.Nil(t, rec.StartedAt, "canceled sessions never started")
	assert.Equal(t, "canceled", rec.Reason)
	assert.Equal(t, time.Second, rec.StartDelay)

	rec = SessionRecord(clicker.SessionSummary{StartedAt: at, Clicks: 7})
	require.NotNil(t, rec.StartedAt)
	assert.True(t, rec.StartedAt.Equal(at))
	assert.Equal(t, int64(7), rec.Clicks)
}

func TestOverrides(t *testing.T) {
	rate := 12.5
	sound := "Glass"
	on := true
	got := Overrides(config.DefaultsConfig{ClicksPerSecond: &rate, SelectedSoundName: &sound, PlaySoundEffects: &on})

	assert.Equal(t, map[preferences.Key]string{
		preferences.ClicksPerSecond:   "12.5",
		preferences.SelectedSoundName: "Glass",
		preferences.PlaySoundEffects:  "true",
	}, got)
	assert.Empty(t, Overrides(config.DefaultsConfig{}))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "1.5s", FormatSeconds(1500*time.Millisecond))
	assert.Equal(t, "0s", FormatSeconds(0))
	assert.Equal(t, "15s", FormatSeconds(15*time.Second))
}
