// Package clicker implements the click session controller, the timer-driven
// click emission loop and the pointer motion gate that suspends clicking
// while the real pointer is moving.
package clicker

import (
	"errors"
	"math"
	"time"
)

const (
	// MinRate is substituted for non-positive or invalid rates.
	MinRate = 1.0
	// MaxRate caps the click rate at a 100µs tick period.
	MaxRate = 10000.0
)

var (
	ErrSessionActive = errors.New("click session already active")
	ErrUnsupported   = errors.New("not supported on this platform")
)

// State is the lifecycle state of the session controller.
type State int

const (
	Idle State = iota
	PendingStart
	Active
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingStart:
		return "pending"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Config is the per-session click configuration. A session owns an
// immutable, sanitized copy taken when the start is requested.
type Config struct {
	Rate          float64       // clicks per second
	StartDelay    time.Duration // delay before the first click
	StopAfter     time.Duration // 0 = run until stopped
	StationaryFor time.Duration // quiet period required after pointer motion
}

// DefaultConfig returns the built-in click configuration.
func DefaultConfig() Config {
	return Config{
		Rate:          1000,
		StartDelay:    2 * time.Second,
		StopAfter:     15 * time.Second,
		StationaryFor: 3 * time.Second,
	}
}

// Sanitized returns a copy with the rate clamped to [MinRate, MaxRate] and
// negative durations replaced by zero.
func (c Config) Sanitized() Config {
	switch {
	case math.IsNaN(c.Rate) || c.Rate <= 0:
		c.Rate = MinRate
	case c.Rate > MaxRate:
		c.Rate = MaxRate
	}
	if c.StartDelay < 0 {
		c.StartDelay = 0
	}
	if c.StopAfter < 0 {
		c.StopAfter = 0
	}
	if c.StationaryFor < 0 {
		c.StationaryFor = 0
	}
	return c
}

// Interval returns the tick period for the (sanitized) rate.
func (c Config) Interval() time.Duration {
	rate := c.Sanitized().Rate
	return time.Duration(float64(time.Second) / rate)
}

// CancelFunc cancels a scheduled callback. It is safe to call more than once.
type CancelFunc func()

// Clock schedules deferred and periodic work.
type Clock interface {
	Now() time.Time
	// Every calls fn immediately and then once per interval until canceled.
	// After the returned CancelFunc returns no new call to fn begins.
	Every(interval time.Duration, fn func()) CancelFunc
	// After calls fn once after d unless canceled first.
	After(d time.Duration, fn func()) CancelFunc
}

// PointerWatch observes global pointer movement.
type PointerWatch interface {
	// OnMove registers fn for every movement event. After the returned
	// CancelFunc returns fn is not called again.
	OnMove(fn func(at time.Time)) (CancelFunc, error)
}

// Emitter posts a synthetic left press+release at the current pointer
// location.
type Emitter interface {
	Click() error
}

// ConfigSource supplies the click configuration at session start.
type ConfigSource interface {
	ClickConfig() (Config, error)
}

// ConfigFunc adapts a function to ConfigSource.
type ConfigFunc func() (Config, error)

func (f ConfigFunc) ClickConfig() (Config, error) { return f() }

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// StopReason records why a session ended.
type StopReason string

const (
	StopManual   StopReason = "manual"
	StopAuto     StopReason = "auto"
	StopCanceled StopReason = "canceled" // stopped before the start delay elapsed
)

// SessionSummary describes a finished session.
type SessionSummary struct {
	RequestedAt time.Time
	StartedAt   time.Time // zero if the session never became active
	EndedAt     time.Time
	Config      Config
	Clicks      int64
	Skipped     int64 // ticks suppressed by the stationary gate
	Reason      StopReason
}

// ActiveFor returns how long the session was clicking.
func (s SessionSummary) ActiveFor() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
