package menubar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/storage"
)

const (
	idleGlyph    = "○"
	pendingGlyph = "◔"
	activeGlyph  = "●"
)

// Title is the status item label: a glyph for the session state, followed
// by the click count while a session is running.
func Title(state clicker.State, clicks int64) string {
	switch state {
	case clicker.PendingStart:
		return pendingGlyph
	case clicker.Active, clicker.Stopping:
		return activeGlyph + " " + formatCompact(clicks)
	default:
		return idleGlyph
	}
}

// ToggleText labels the start/stop item.
func ToggleText(clicking bool) string {
	if clicking {
		return "Stop Clicking"
	}
	return "Start Clicking"
}

// SettingsText summarizes a click configuration on one line.
func SettingsText(cfg clicker.Config) string {
	text := fmt.Sprintf("%s clicks/s, start after %s", strconv.FormatFloat(cfg.Rate, 'f', -1, 64), formatSeconds(cfg.StartDelay))
	if cfg.StopAfter > 0 {
		text += ", stop after " + formatSeconds(cfg.StopAfter)
	}
	if cfg.StationaryFor > 0 {
		text += ", pause " + formatSeconds(cfg.StationaryFor) + " on motion"
	}
	return text
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

func formatCompact(n int64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// formatAbsolute renders n with thousands separators.
func formatAbsolute(n int64) string {
	if n < 0 {
		return "-" + formatAbsolute(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

// weekTotals sums the clicks and sessions of the given days.
func weekTotals(days []storage.DailyStats) (sessions, clicks int64) {
	for _, d := range days {
		sessions += d.Sessions
		clicks += d.Clicks
	}
	return sessions, clicks
}
