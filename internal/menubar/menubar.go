//go:build darwin
// +build darwin

// Package menubar is the macOS status item for toggling click sessions.
package menubar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caseymrm/menuet"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/storage"
)

const (
	label         = "com.clakr.menubar"
	titleInterval = time.Second
)

type Controller interface {
	Toggle() bool
	State() clicker.State
	Progress() (clicks, skipped int64)
	Feed() *clicker.StateFeed
}

type StatsSource interface {
	GetTodayStats() (*storage.DailyStats, error)
	GetWeekStats() ([]storage.DailyStats, error)
}

type App struct {
	ctrl   Controller
	stats  StatsSource
	prefs  clicker.ConfigSource
	logger *slog.Logger

	// Extra items appended above Quit.
	Extra func() []menuet.MenuItem
	Quit  func()
}

func New(ctrl Controller, stats StatsSource, prefs clicker.ConfigSource, logger *slog.Logger) *App {
	return &App{ctrl: ctrl, stats: stats, prefs: prefs, logger: logger}
}

// Run installs the status item and blocks in the AppKit event loop. It must
// be called from the main thread.
func (a *App) Run() {
	app := menuet.App()
	app.Label = label
	app.Children = a.menuItems

	go a.updateLoop()

	app.RunApplication()
}

// updateLoop refreshes the title on every state change and, while a session
// runs, once a second to advance the click count.
func (a *App) updateLoop() {
	states, unsubscribe := a.ctrl.Feed().Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(titleInterval)
	defer ticker.Stop()

	for {
		select {
		case s, ok := <-states:
			if !ok {
				return
			}
			a.logger.Debug("menu bar state", "state", s.String())
			a.updateTitle(s)
		case <-ticker.C:
			if s := a.ctrl.State(); s != clicker.Idle {
				a.updateTitle(s)
			}
		}
	}
}

func (a *App) updateTitle(s clicker.State) {
	clicks, _ := a.ctrl.Progress()
	menuet.App().SetMenuState(&menuet.MenuState{
		Title: Title(s, clicks),
	})
}

func (a *App) menuItems() []menuet.MenuItem {
	clicking := a.ctrl.Feed().IsClicking()

	items := []menuet.MenuItem{
		{
			Text:    ToggleText(clicking),
			State:   clicking,
			Clicked: a.toggle,
		},
	}
	if err := a.ctrl.Feed().EmitError(); err != nil {
		items = append(items, menuet.MenuItem{Text: "Clicks failing: " + err.Error()})
	}
	items = append(items, menuet.MenuItem{Type: menuet.Separator})
	items = append(items, a.statsItems()...)

	if a.prefs != nil {
		cfg, err := a.prefs.ClickConfig()
		if err != nil {
			a.logger.Warn("failed to load click preferences", "error", err)
			cfg = clicker.DefaultConfig()
		}
		items = append(items,
			menuet.MenuItem{Type: menuet.Separator},
			menuet.MenuItem{Text: SettingsText(cfg)},
		)
	}

	if a.Extra != nil {
		items = append(items, menuet.MenuItem{Type: menuet.Separator})
		items = append(items, a.Extra()...)
	}
	items = append(items,
		menuet.MenuItem{Type: menuet.Separator},
		menuet.MenuItem{Text: "Quit", Clicked: a.quit},
	)
	return items
}

func (a *App) statsItems() []menuet.MenuItem {
	if a.stats == nil {
		return nil
	}
	today, err := a.stats.GetTodayStats()
	if err != nil {
		a.logger.Warn("failed to load today's stats", "error", err)
		return []menuet.MenuItem{{Text: "Today: --"}}
	}
	week, err := a.stats.GetWeekStats()
	if err != nil {
		a.logger.Warn("failed to load week stats", "error", err)
	}
	weekSessions, weekClicks := weekTotals(week)

	return []menuet.MenuItem{
		{Text: fmt.Sprintf("Today: %s clicks (%d sessions)", formatAbsolute(today.Clicks), today.Sessions)},
		{Text: fmt.Sprintf("This Week: %s clicks (%d sessions)", formatAbsolute(weekClicks), weekSessions)},
	}
}

func (a *App) toggle() {
	clicking := a.ctrl.Toggle()
	a.logger.Info("toggled from menu bar", "clicking", clicking)
}

func (a *App) quit() {
	if a.Quit != nil {
		a.Quit()
	}
}
