package menubar

import (
	"testing"
	"time"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/storage"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		state    clicker.State
		clicks   int64
		expected string
	}{
		{"idle", clicker.Idle, 0, "○"},
		{"idle ignores count", clicker.Idle, 500, "○"},
		{"pending", clicker.PendingStart, 0, "◔"},
		{"active", clicker.Active, 42, "● 42"},
		{"active thousands", clicker.Active, 1234, "● 1.2K"},
		{"active millions", clicker.Active, 2500000, "● 2.5M"},
		{"stopping", clicker.Stopping, 7, "● 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Title(tt.state, tt.clicks)
			if result != tt.expected {
				t.Errorf("Title(%v, %d) = %q, want %q", tt.state, tt.clicks, result, tt.expected)
			}
		})
	}
}

func TestToggleText(t *testing.T) {
	if got := ToggleText(false); got != "Start Clicking" {
		t.Errorf("ToggleText(false) = %q", got)
	}
	if got := ToggleText(true); got != "Stop Clicking" {
		t.Errorf("ToggleText(true) = %q", got)
	}
}

func TestSettingsText(t *testing.T) {
	tests := []struct {
		name     string
		cfg      clicker.Config
		expected string
	}{
		{
			"defaults",
			clicker.Config{Rate: 1000, StartDelay: 2 * time.Second, StopAfter: 15 * time.Second, StationaryFor: 3 * time.Second},
			"1000 clicks/s, start after 2s, stop after 15s, pause 3s on motion",
		},
		{
			"unbounded without gate",
			clicker.Config{Rate: 12.5},
			"12.5 clicks/s, start after 0s",
		},
		{
			"fractional delay",
			clicker.Config{Rate: 5, StartDelay: 1500 * time.Millisecond},
			"5 clicks/s, start after 1.5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SettingsText(tt.cfg)
			if result != tt.expected {
				t.Errorf("SettingsText() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFormatAbsolute(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"zero", 0, "0"},
		{"triple digit", 999, "999"},
		{"1000", 1000, "1,000"},
		{"12345", 12345, "12,345"},
		{"1234567", 1234567, "1,234,567"},
		{"negative", -1234, "-1,234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatAbsolute(tt.input)
			if result != tt.expected {
				t.Errorf("formatAbsolute(%d) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWeekTotals(t *testing.T) {
	days := []storage.DailyStats{
		{Date: "2024-04-01", Sessions: 2, Clicks: 300},
		{Date: "2024-04-02", Sessions: 0, Clicks: 0},
		{Date: "2024-04-03", Sessions: 1, Clicks: 15000},
	}
	sessions, clicks := weekTotals(days)
	if sessions != 3 || clicks != 15300 {
		t.Errorf("weekTotals() = (%d, %d), want (3, 15300)", sessions, clicks)
	}

	sessions, clicks = weekTotals(nil)
	if sessions != 0 || clicks != 0 {
		t.Errorf("weekTotals(nil) = (%d, %d), want (0, 0)", sessions, clicks)
	}
}
