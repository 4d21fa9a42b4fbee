package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aayushbajaj/clakr/internal/config"
)

const (
	dateLayout = "2006-01-02"
	// Fixed-width so stored timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type Store struct {
	db *sql.DB
}

type DailyStats struct {
	Date     string
	Sessions int64
	Clicks   int64
}

// SessionRecord is a finished click session.
type SessionRecord struct {
	ID            string
	RequestedAt   time.Time
	StartedAt     *time.Time
	EndedAt       time.Time
	Rate          float64
	StartDelay    time.Duration
	StopAfter     time.Duration
	StationaryFor time.Duration
	Clicks        int64
	Skipped       int64
	Reason        string
}

// TestRun is a click count reported by the test page.
type TestRun struct {
	ID         string
	RecordedAt time.Time
	Clicks     int64
	Duration   time.Duration
	Source     string
}

// New opens the database at the default location under the data directory.
func New() (*Store, error) {
	if _, err := config.DataDir(); err != nil {
		return nil, err
	}
	return Open(config.DefaultDBPath())
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		requested_at TEXT NOT NULL,
		started_at TEXT,
		ended_at TEXT NOT NULL,
		date TEXT NOT NULL,
		rate REAL NOT NULL,
		start_delay_ms INTEGER NOT NULL,
		stop_after_ms INTEGER NOT NULL,
		stationary_ms INTEGER NOT NULL,
		clicks INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		reason TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);

	CREATE TABLE IF NOT EXISTS daily_summary (
		date TEXT PRIMARY KEY,
		sessions INTEGER DEFAULT 0,
		clicks INTEGER DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS test_runs (
		id TEXT PRIMARY KEY,
		recorded_at TEXT NOT NULL,
		clicks INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		source TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := db.Exec(schema)
	return err
}

// GetPreference returns the stored value and whether the key exists.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func (s *Store) DeletePreference(key string) error {
	_, err := s.db.Exec("DELETE FROM preferences WHERE key = ?", key)
	return err
}

func (s *Store) AllPreferences() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM preferences")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		prefs[key] = value
	}
	return prefs, rows.Err()
}

// RecordSession stores a finished session and folds it into the daily
// summary for the day it ended. An empty ID gets a fresh UUID.
func (s *Store) RecordSession(rec SessionRecord) (SessionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	date := rec.EndedAt.Local().Format(dateLayout)

	var startedAt sql.NullString
	if rec.StartedAt != nil {
		startedAt = sql.NullString{String: formatTime(*rec.StartedAt), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return rec, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, requested_at, started_at, ended_at, date, rate,
			start_delay_ms, stop_after_ms, stationary_ms, clicks, skipped, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, formatTime(rec.RequestedAt), startedAt, formatTime(rec.EndedAt), date, rec.Rate,
		rec.StartDelay.Milliseconds(), rec.StopAfter.Milliseconds(), rec.StationaryFor.Milliseconds(),
		rec.Clicks, rec.Skipped, rec.Reason,
	)
	if err != nil {
		return rec, err
	}

	_, err = tx.Exec(`
		INSERT INTO daily_summary (date, sessions, clicks) VALUES (?, 1, ?)
		ON CONFLICT(date) DO UPDATE SET
			sessions = sessions + 1,
			clicks = clicks + excluded.clicks,
			updated_at = CURRENT_TIMESTAMP
	`, date, rec.Clicks)
	if err != nil {
		return rec, err
	}

	return rec, tx.Commit()
}

// RecentSessions returns up to limit sessions, newest first. A non-positive
// limit returns all of them.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, requested_at, started_at, ended_at, rate, start_delay_ms,
			stop_after_ms, stationary_ms, clicks, skipped, reason
		FROM sessions ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec                          SessionRecord
			requestedAt, endedAt         string
			startedAt                    sql.NullString
			startDelay, stopAfter, still int64
		)
		if err := rows.Scan(&rec.ID, &requestedAt, &startedAt, &endedAt, &rec.Rate,
			&startDelay, &stopAfter, &still, &rec.Clicks, &rec.Skipped, &rec.Reason); err != nil {
			return nil, err
		}
		if rec.RequestedAt, err = parseTime(requestedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, err
		}
		if startedAt.Valid {
			t, err := parseTime(startedAt.String)
			if err != nil {
				return nil, err
			}
			rec.StartedAt = &t
		}
		rec.StartDelay = time.Duration(startDelay) * time.Millisecond
		rec.StopAfter = time.Duration(stopAfter) * time.Millisecond
		rec.StationaryFor = time.Duration(still) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetTodayStats() (*DailyStats, error) {
	date := time.Now().Format(dateLayout)
	return s.GetDayStats(date)
}

func (s *Store) GetDayStats(date string) (*DailyStats, error) {
	var stats DailyStats
	stats.Date = date

	err := s.db.QueryRow(
		"SELECT COALESCE(sessions, 0), COALESCE(clicks, 0) FROM daily_summary WHERE date = ?",
		date,
	).Scan(&stats.Sessions, &stats.Clicks)

	if err == sql.ErrNoRows {
		return &DailyStats{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *Store) GetWeekStats() ([]DailyStats, error) {
	return s.GetHistoricalStats(7)
}

// GetHistoricalStats returns stats for the last N days, oldest first
func (s *Store) GetHistoricalStats(days int) ([]DailyStats, error) {
	if days <= 0 {
		return nil, nil
	}
	now := time.Now()
	stats := make([]DailyStats, days)

	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		dayStat, err := s.GetDayStats(date)
		if err != nil {
			return nil, err
		}
		stats[days-1-i] = *dayStat
	}

	return stats, nil
}

// RecordRun stores a test page run. Missing ID and timestamp are filled in.
func (s *Store) RecordRun(run TestRun) (TestRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO test_runs (id, recorded_at, clicks, duration_ms, source) VALUES (?, ?, ?, ?, ?)",
		run.ID, formatTime(run.RecordedAt), run.Clicks, run.Duration.Milliseconds(), run.Source,
	)
	return run, err
}

// Runs returns up to limit test runs, newest first. A non-positive limit
// returns all of them.
func (s *Store) Runs(limit int) ([]TestRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		"SELECT id, recorded_at, clicks, duration_ms, source FROM test_runs ORDER BY recorded_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestRun
	for rows.Next() {
		var (
			run        TestRun
			recordedAt string
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &recordedAt, &run.Clicks, &durationMs, &run.Source); err != nil {
			return nil, err
		}
		if run.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Store) DeleteRuns() error {
	_, err := s.db.Exec("DELETE FROM test_runs")
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", v, err)
	}
	return t, nil
}
