// Package app wires the click controller to its platform adapters,
// persistence and logging. Both clakr binaries build on it.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/clickpost"
	"github.com/aayushbajaj/clakr/internal/config"
	"github.com/aayushbajaj/clakr/internal/logging"
	"github.com/aayushbajaj/clakr/internal/mousetracker"
	"github.com/aayushbajaj/clakr/internal/preferences"
	"github.com/aayushbajaj/clakr/internal/sound"
	"github.com/aayushbajaj/clakr/internal/storage"
	"github.com/aayushbajaj/clakr/internal/testpage"
)

const logFileName = "clakr.log"

type Options struct {
	ConfigPath string // defaults to config.DefaultConfigPath()
	DBPath     string // defaults to config.DefaultDBPath()
	SoundDir   string // defaults to config.DefaultSoundDir()
	LogLevel   string // overrides [log] level when set
	LogWriter  io.Writer
	LogSink    func(line string)

	Watch   clicker.PointerWatch
	Emitter clicker.Emitter
	Clock   clicker.Clock
}

type App struct {
	Config     config.FileConfig
	Logger     *slog.Logger
	Store      *storage.Store
	Prefs      *preferences.Store
	Sound      *sound.Player
	Controller *clicker.Controller

	logFile *os.File
}

func New(opts Options) (*App, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	levelName := fileCfg.LogLevel("info")
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	a := &App{Config: fileCfg}
	out := opts.LogWriter
	if out == nil {
		dir, err := config.LogDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get log directory: %w", err)
		}
		if a.logFile, err = logging.OpenFile(dir, logFileName); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = a.logFile
	}
	a.Logger = logging.New(level, out, opts.LogSink)

	if opts.DBPath == "" {
		a.Store, err = storage.New()
	} else {
		a.Store, err = storage.Open(opts.DBPath)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a.Prefs, err = preferences.New(a.Store, Overrides(fileCfg.Defaults))
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.Prefs.RegisterDefaults(); err != nil {
		a.Close()
		return nil, err
	}

	if opts.SoundDir == "" {
		opts.SoundDir = config.DefaultSoundDir()
	}
	a.Sound = sound.NewPlayer(opts.SoundDir)

	watch := opts.Watch
	if watch == nil {
		watch = mousetracker.New()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = clickpost.New()
	}
	ctrlOpts := []clicker.Option{
		clicker.WithLogger(a.Logger),
		clicker.WithSessionObserver(a.recordSession),
		clicker.WithToggleHook(a.playToggleSound),
	}
	if opts.Clock != nil {
		ctrlOpts = append(ctrlOpts, clicker.WithClock(opts.Clock))
	}
	a.Controller = clicker.NewController(a.Prefs, watch, emitter, nil, ctrlOpts...)

	a.Logger.Debug("clakr initialized", "config", opts.ConfigPath, "log_level", level.String())
	return a, nil
}

// Close stops any running session and releases the database and log file.
func (a *App) Close() error {
	if a.Controller != nil {
		a.Controller.Stop()
	}
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Expectation derives the test page's flawless-run target from the current
// preferences.
func (a *App) Expectation() testpage.Expectation {
	cfg, err := a.Prefs.ClickConfig()
	if err != nil {
		a.Logger.Warn("failed to load click preferences", "error", err)
		cfg = clicker.DefaultConfig()
	}
	return testpage.Expectation{Rate: cfg.Rate, Duration: cfg.StopAfter}
}

func (a *App) recordSession(s clicker.SessionSummary) {
	rec, err := a.Store.RecordSession(SessionRecord(s))
	if err != nil {
		a.Logger.Error("failed to record session", "error", err)
		return
	}
	a.Logger.Debug("session recorded", "id", rec.ID)
}

func (a *App) playToggleSound(bool) {
	p, err := a.Prefs.Load()
	if err != nil {
		a.Logger.Warn("failed to load sound preferences", "error", err)
		return
	}
	if !p.PlaySoundEffects {
		return
	}
	if err := a.Sound.Play(p.SelectedSoundName); err != nil {
		a.Logger.Warn("failed to play sound", "sound", p.SelectedSoundName, "error", err)
	}
}

// SessionRecord converts a finished session for storage.
func SessionRecord(s clicker.SessionSummary) storage.SessionRecord {
	rec := storage.SessionRecord{
		RequestedAt:   s.RequestedAt,
		EndedAt:       s.EndedAt,
		Rate:          s.Config.Rate,
		StartDelay:    s.Config.StartDelay,
		StopAfter:     s.Config.StopAfter,
		StationaryFor: s.Config.StationaryFor,
		Clicks:        s.Clicks,
		Skipped:       s.Skipped,
		Reason:        string(s.Reason),
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		rec.StartedAt = &started
	}
	return rec
}

// Overrides converts the [defaults] config section to preference defaults.
func Overrides(d config.DefaultsConfig) map[preferences.Key]string {
	out := make(map[preferences.Key]string)
	number := func(key preferences.Key, v *float64) {
		if v != nil {
			out[key] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	number(preferences.ClicksPerSecond, d.ClicksPerSecond)
	number(preferences.StartAfterSeconds, d.StartAfterSeconds)
	number(preferences.StopAfterSeconds, d.StopAfterSeconds)
	number(preferences.StationaryForSeconds, d.StationaryForSeconds)
	if d.PlaySoundEffects != nil {
		out[preferences.PlaySoundEffects] = strconv.FormatBool(*d.PlaySoundEffects)
	}
	if d.SelectedSoundName != nil {
		out[preferences.SelectedSoundName] = *d.SelectedSoundName
	}
	return out
}

// FormatSeconds renders d the way durations are entered in preferences.
func FormatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
