package preferences

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/storage"
)

type mapBackend struct {
	values map[string]string
	err    error
}

func newMapBackend() *mapBackend {
	return &mapBackend{values: map[string]string{}}
}

func (m *mapBackend) GetPreference(key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapBackend) SetPreference(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mapBackend) DeletePreference(key string) error {
	delete(m.values, key)
	return nil
}

func (m *mapBackend) AllPreferences() (map[string]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	s, err := New(backend, nil)
	require.NoError(t, err)
	return s
}

var (
	_ clicker.ConfigSource = (*Store)(nil)
	_ Backend              = (*storage.Store)(nil)
)

func TestDefaultsMatchClickerDefaults(t *testing.T) {
	s := newTestStore(t, newMapBackend())
	cfg, err := s.ClickConfig()
	require.NoError(t, err)
	assert.Equal(t, clicker.DefaultConfig(), cfg)
}

func TestRegisterDefaultsKeepsStoredValues(t *testing.T) {
	backend := newMapBackend()
	backend.values["clicksPerSecond"] = "50"
	s := newTestStore(t, backend)

	require.NoError(t, s.RegisterDefaults())

	assert.Equal(t, "50", backend.values["clicksPerSecond"])
	assert.Equal(t, "2", backend.values["startAfterSeconds"])
	assert.Equal(t, "15", backend.values["stopAfterSeconds"])
	assert.Equal(t, "3", backend.values["stationaryForSeconds"])
	assert.Equal(t, "false", backend.values["playSoundEffects"])
	assert.Len(t, backend.values, len(Definitions()))
}

func TestSetNormalizesAndValidates(t *testing.T) {
	backend := newMapBackend()
	s := newTestStore(t, backend)

	require.NoError(t, s.Set("clicksPerSecond", " 250.0 "))
	assert.Equal(t, "250", backend.values["clicksPerSecond"])

	require.NoError(t, s.Set("PLAYSOUNDEFFECTS", "1"))
	assert.Equal(t, "true", backend.values["playSoundEffects"])

	require.NoError(t, s.Set("selectedSoundName", "Glass"))
	v, err := s.Get("selectedSoundName")
	require.NoError(t, err)
	assert.Equal(t, "Glass", v)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"not a number", "clicksPerSecond", "fast"},
		{"zero rate", "clicksPerSecond", "0"},
		{"negative rate", "clicksPerSecond", "-3"},
		{"negative", "stopAfterSeconds", "-1"},
		{"NaN", "startAfterSeconds", "NaN"},
		{"infinite", "stationaryForSeconds", "+Inf"},
		{"not a bool", "playSoundEffects", "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Set(tt.key, tt.value)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestLookupSuggestsClosestKey(t *testing.T) {
	_, err := Lookup("clicksPerSec")
	require.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), `did you mean "clicksPerSecond"`)

	_, err = Lookup("stopAfter")
	assert.Contains(t, err.Error(), `did you mean "stopAfterSeconds"`)

	_, err = Lookup("zzz")
	require.ErrorIs(t, err, ErrUnknownKey)
	assert.NotContains(t, err.Error(), "did you mean")

	d, err := Lookup("StationaryForSeconds")
	require.NoError(t, err)
	assert.Equal(t, StationaryForSeconds, d.Key)
}

func TestResetRestoresDefault(t *testing.T) {
	backend := newMapBackend()
	s := newTestStore(t, backend)

	require.NoError(t, s.Set("startAfterSeconds", "9"))
	require.NoError(t, s.Reset("startAfterSeconds"))

	v, err := s.Get("startAfterSeconds")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.NotContains(t, backend.values, "startAfterSeconds")
}

func TestOverridesReplaceDefaults(t *testing.T) {
	s, err := New(newMapBackend(), map[Key]string{
		ClicksPerSecond:  "20",
		StopAfterSeconds: "0",
	})
	require.NoError(t, err)

	cfg, err := s.ClickConfig()
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Rate)
	assert.Zero(t, cfg.StopAfter)
	assert.Equal(t, "20", s.Default(ClicksPerSecond))

	_, err = New(newMapBackend(), map[Key]string{"bogus": "1"})
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = New(newMapBackend(), map[Key]string{ClicksPerSecond: "-3"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLoadFallsBackOnBadStoredValues(t *testing.T) {
	backend := newMapBackend()
	backend.values["clicksPerSecond"] = "0"
	backend.values["startAfterSeconds"] = "garbage"
	backend.values["stopAfterSeconds"] = "-4"
	backend.values["stationaryForSeconds"] = "0.5"
	backend.values["playSoundEffects"] = "maybe"
	s := newTestStore(t, backend)

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, clicker.MinRate, p.ClicksPerSecond, "non-positive rate uses the minimum")
	assert.Equal(t, 2.0, p.StartAfterSeconds)
	assert.Equal(t, 15.0, p.StopAfterSeconds)
	assert.Equal(t, 0.5, p.StationaryForSeconds)
	assert.False(t, p.PlaySoundEffects)
	assert.Equal(t, "Tink", p.SelectedSoundName)

	cfg := p.ClickConfig()
	assert.Equal(t, 500*time.Millisecond, cfg.StationaryFor)
}

func TestZeroRateDefaultIsRejected(t *testing.T) {
	_, err := New(newMapBackend(), map[Key]string{ClicksPerSecond: "0"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestStoredZeroRateMatchesSanitizedRate(t *testing.T) {
	backend := newMapBackend()
	backend.values["clicksPerSecond"] = "0"
	s := newTestStore(t, backend)

	cfg, err := s.ClickConfig()
	require.NoError(t, err)
	assert.Equal(t, clicker.MinRate, cfg.Rate)
	assert.Equal(t, clicker.Config{Rate: 0}.Sanitized().Rate, cfg.Rate)

	assert.ErrorIs(t, s.Set("clicksPerSecond", "0"), ErrInvalidValue)
	assert.Equal(t, "0", backend.values["clicksPerSecond"], "rejected value is not stored")
}

func TestBackendErrorsPropagate(t *testing.T) {
	backend := newMapBackend()
	backend.err = errors.New("database is locked")
	s := newTestStore(t, backend)

	_, err := s.ClickConfig()
	assert.ErrorContains(t, err, "database is locked")
	assert.Error(t, s.RegisterDefaults())
	_, err = s.List()
	assert.ErrorContains(t, err, "database is locked")
}

func TestList(t *testing.T) {
	backend := newMapBackend()
	backend.values["retiredKey"] = "x"
	s := newTestStore(t, backend)
	require.NoError(t, s.Set("clicksPerSecond", "42"))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, len(Definitions()))

	for i := 1; i < len(entries); i++ {
		assert.Less(t, string(entries[i-1].Key), string(entries[i].Key))
	}
	for _, e := range entries {
		if e.Key == ClicksPerSecond {
			assert.Equal(t, "42", e.Value)
			assert.Equal(t, "1000", e.DefaultValue)
			assert.True(t, e.Stored)
		} else {
			assert.False(t, e.Stored)
			assert.Equal(t, e.DefaultValue, e.Value)
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		input    float64
		expected time.Duration
	}{
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
		{1.5, 1500 * time.Millisecond},
		{0.25, 250 * time.Millisecond},
		{1e12, time.Duration(math.MaxInt64)},
	}

	for _, tt := range tests {
		result := Seconds(tt.input)
		if result != tt.expected {
			t.Errorf("Seconds(%v) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestSQLiteBackend(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer db.Close()

	s := newTestStore(t, db)
	require.NoError(t, s.RegisterDefaults())
	require.NoError(t, s.Set("clicksPerSecond", "75"))

	cfg, err := s.ClickConfig()
	require.NoError(t, err)
	assert.Equal(t, 75.0, cfg.Rate)
	assert.Equal(t, 2*time.Second, cfg.StartDelay)
}
