// Package preferences persists the user-tunable click settings and turns
// them into a clicker.Config at session start.
package preferences

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/aayushbajaj/clakr/internal/clicker"
)

var (
	ErrUnknownKey   = errors.New("unknown preference")
	ErrInvalidValue = errors.New("invalid preference value")
)

type Key string

const (
	ClicksPerSecond      Key = "clicksPerSecond"
	StartAfterSeconds    Key = "startAfterSeconds"
	StopAfterSeconds     Key = "stopAfterSeconds"
	StationaryForSeconds Key = "stationaryForSeconds"
	PlaySoundEffects     Key = "playSoundEffects"
	SelectedSoundName    Key = "selectedSoundName"
)

type Kind int

const (
	Number Kind = iota
	Bool
	String
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

// Definition describes one preference.
type Definition struct {
	Key     Key
	Kind    Kind
	Default string
	Help    string
}

var definitions = []Definition{
	{ClicksPerSecond, Number, "1000", "clicks emitted per second"},
	{StartAfterSeconds, Number, "2", "delay before the first click"},
	{StopAfterSeconds, Number, "15", "session length after the start delay, 0 runs until stopped"},
	{StationaryForSeconds, Number, "3", "quiet period required after pointer motion, 0 disables the gate"},
	{PlaySoundEffects, Bool, "false", "play a sound when clicking is toggled"},
	{SelectedSoundName, String, "Tink", "system or imported sound to play"},
}

// Definitions returns every known preference in display order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup resolves a preference name, case-insensitively. Unknown names fail
// with ErrUnknownKey and the closest known key as a suggestion.
func Lookup(name string) (Definition, error) {
	for _, d := range definitions {
		if strings.EqualFold(string(d.Key), name) {
			return d, nil
		}
	}
	if suggestion := suggest(name); suggestion != "" {
		return Definition{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownKey, name, suggestion)
	}
	return Definition{}, fmt.Errorf("%w %q", ErrUnknownKey, name)
}

func suggest(name string) string {
	if name == "" {
		return ""
	}
	keys := make([]string, len(definitions))
	for i, d := range definitions {
		keys[i] = string(d.Key)
	}
	matches := fuzzy.Find(name, keys)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

// Normalize validates value for d and returns its canonical form.
func (d Definition) Normalize(value string) (string, error) {
	value = strings.TrimSpace(value)
	switch d.Kind {
	case Number:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: %s expects a number, got %q", ErrInvalidValue, d.Key, value)
		}
		if f < 0 {
			return "", fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, d.Key)
		}
		if f == 0 && d.Key == ClicksPerSecond {
			return "", fmt.Errorf("%w: %s must be positive", ErrInvalidValue, d.Key)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: %s expects true or false, got %q", ErrInvalidValue, d.Key, value)
		}
		return strconv.FormatBool(b), nil
	default:
		return value, nil
	}
}

// Backend is the persistent key/value store behind the preferences.
type Backend interface {
	GetPreference(key string) (string, bool, error)
	SetPreference(key, value string) error
	DeletePreference(key string) error
	AllPreferences() (map[string]string, error)
}

// Store reads and writes preferences with per-key defaults. It implements
// clicker.ConfigSource.
type Store struct {
	backend  Backend
	defaults map[Key]string
}

// New returns a Store over backend. overrides replace the built-in defaults
// for the keys they name; invalid overrides are rejected.
func New(backend Backend, overrides map[Key]string) (*Store, error) {
	defaults := make(map[Key]string, len(definitions))
	for _, d := range definitions {
		defaults[d.Key] = d.Default
	}
	for key, value := range overrides {
		d, err := Lookup(string(key))
		if err != nil {
			return nil, err
		}
		normalized, err := d.Normalize(value)
		if err != nil {
			return nil, fmt.Errorf("invalid default: %w", err)
		}
		defaults[d.Key] = normalized
	}
	return &Store{backend: backend, defaults: defaults}, nil
}

// Default returns the effective default of key.
func (s *Store) Default(key Key) string {
	return s.defaults[key]
}

// RegisterDefaults writes the default of every key that has no stored value.
func (s *Store) RegisterDefaults() error {
	for _, d := range definitions {
		_, ok, err := s.backend.GetPreference(string(d.Key))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d.Key, err)
		}
		if ok {
			continue
		}
		if err := s.backend.SetPreference(string(d.Key), s.defaults[d.Key]); err != nil {
			return fmt.Errorf("failed to register default for %s: %w", d.Key, err)
		}
	}
	return nil
}

// Get returns the stored value of name, or its default.
func (s *Store) Get(name string) (string, error) {
	d, err := Lookup(name)
	if err != nil {
		return "", err
	}
	return s.get(d.Key)
}

func (s *Store) get(key Key) (string, error) {
	value, ok, err := s.backend.GetPreference(string(key))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return s.defaults[key], nil
	}
	return value, nil
}

// Set validates and stores value under name.
func (s *Store) Set(name, value string) error {
	d, err := Lookup(name)
	if err != nil {
		return err
	}
	normalized, err := d.Normalize(value)
	if err != nil {
		return err
	}
	return s.backend.SetPreference(string(d.Key), normalized)
}

// Reset removes the stored value of name so its default applies again.
func (s *Store) Reset(name string) error {
	d, err := Lookup(name)
	if err != nil {
		return err
	}
	return s.backend.DeletePreference(string(d.Key))
}

// Entry is a preference with its effective value.
type Entry struct {
	Definition
	Value        string
	DefaultValue string
	Stored       bool
}

// List returns every preference with its effective value, sorted by key.
func (s *Store) List() ([]Entry, error) {
	stored, err := s.backend.AllPreferences()
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	entries := make([]Entry, 0, len(definitions))
	for _, d := range definitions {
		value, ok := stored[string(d.Key)]
		if !ok {
			value = s.defaults[d.Key]
		}
		entries = append(entries, Entry{Definition: d, Value: value, DefaultValue: s.defaults[d.Key], Stored: ok})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Preferences is a decoded snapshot of every preference.
type Preferences struct {
	ClicksPerSecond      float64
	StartAfterSeconds    float64
	StopAfterSeconds     float64
	StationaryForSeconds float64
	PlaySoundEffects     bool
	SelectedSoundName    string
}

// Load decodes every preference. Stored values that no longer parse fall back
// to the default; a non-positive stored rate becomes clicker.MinRate.
func (s *Store) Load() (Preferences, error) {
	var p Preferences
	var err error
	if p.ClicksPerSecond, err = s.number(ClicksPerSecond); err != nil {
		return p, err
	}
	if p.ClicksPerSecond <= 0 {
		p.ClicksPerSecond = clicker.MinRate
	}
	if p.StartAfterSeconds, err = s.number(StartAfterSeconds); err != nil {
		return p, err
	}
	if p.StopAfterSeconds, err = s.number(StopAfterSeconds); err != nil {
		return p, err
	}
	if p.StationaryForSeconds, err = s.number(StationaryForSeconds); err != nil {
		return p, err
	}
	if p.PlaySoundEffects, err = s.boolean(PlaySoundEffects); err != nil {
		return p, err
	}
	if p.SelectedSoundName, err = s.get(SelectedSoundName); err != nil {
		return p, err
	}
	return p, nil
}

// ClickConfig implements clicker.ConfigSource.
func (s *Store) ClickConfig() (clicker.Config, error) {
	p, err := s.Load()
	if err != nil {
		return clicker.Config{}, err
	}
	return p.ClickConfig(), nil
}

// ClickConfig converts the snapshot to a sanitized session config.
func (p Preferences) ClickConfig() clicker.Config {
	return clicker.Config{
		Rate:          p.ClicksPerSecond,
		StartDelay:    Seconds(p.StartAfterSeconds),
		StopAfter:     Seconds(p.StopAfterSeconds),
		StationaryFor: Seconds(p.StationaryForSeconds),
	}.Sanitized()
}

func (s *Store) number(key Key) (float64, error) {
	value, err := s.get(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return s.defaultNumber(key), nil
	}
	return f, nil
}

func (s *Store) defaultNumber(key Key) float64 {
	f, _ := strconv.ParseFloat(s.defaults[key], 64)
	return f
}

func (s *Store) boolean(key Key) (bool, error) {
	value, err := s.get(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		b, _ = strconv.ParseBool(s.defaults[key])
	}
	return b, nil
}

// maxSeconds keeps Seconds within time.Duration range.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// Seconds converts fractional seconds to a Duration. Negative and NaN become
// zero; values beyond the Duration range saturate.
func Seconds(f float64) time.Duration {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= maxSeconds:
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f * float64(time.Second))
}
