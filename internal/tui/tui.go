// Package tui is the terminal dashboard for starting, stopping and watching
// click sessions.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/storage"
	"github.com/aayushbajaj/clakr/pkg/stats"
)

const (
	progressInterval = 250 * time.Millisecond
	// Delay before reloading stats after a session ends, leaving time for
	// the session to be recorded.
	statsSettle = 300 * time.Millisecond
	maxLogLines = 3
)

// Controller is the part of clicker.Controller the dashboard drives.
type Controller interface {
	Toggle() bool
	State() clicker.State
	Config() clicker.Config
	Progress() (clicks, skipped int64)
	Feed() *clicker.StateFeed
}

// StatsSource supplies the daily click totals.
type StatsSource interface {
	GetTodayStats() (*storage.DailyStats, error)
	GetWeekStats() ([]storage.DailyStats, error)
}

type Options struct {
	Controller Controller
	Stats      StatsSource
	Prefs      clicker.ConfigSource // shown while idle
	Logs       func() []string
}

type Model struct {
	ctrl        Controller
	stats       StatsSource
	prefs       clicker.ConfigSource
	logs        func() []string
	states      <-chan clicker.State
	unsubscribe func()
	keys        KeyMap
	help        help.Model

	state      clicker.State
	clicks     int64
	skipped    int64
	cfg        clicker.Config
	emitErr    error
	todayStats *storage.DailyStats
	weekStats  []storage.DailyStats
	width      int
	height     int
	err        error
}

type stateMsg struct {
	state clicker.State
	ok    bool
}

type tickMsg time.Time

type refreshMsg struct{}

type statsMsg struct {
	today *storage.DailyStats
	week  []storage.DailyStats
	cfg   clicker.Config
	err   error
}

func New(opts Options) Model {
	states, unsubscribe := opts.Controller.Feed().Subscribe()
	return Model{
		ctrl:        opts.Controller,
		stats:       opts.Stats,
		prefs:       opts.Prefs,
		logs:        opts.Logs,
		states:      states,
		unsubscribe: unsubscribe,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		state:       opts.Controller.State(),
		cfg:         opts.Controller.Config(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStats, m.waitForState, tick())
}

func (m Model) waitForState() tea.Msg {
	s, ok := <-m.states
	return stateMsg{state: s, ok: ok}
}

func tick() tea.Cmd {
	return tea.Tick(progressInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) fetchStats() tea.Msg {
	var msg statsMsg
	if m.prefs != nil {
		cfg, err := m.prefs.ClickConfig()
		if err != nil {
			return statsMsg{err: err}
		}
		msg.cfg = cfg
	}
	if m.stats == nil {
		return msg
	}

	today, err := m.stats.GetTodayStats()
	if err != nil {
		return statsMsg{err: err}
	}
	week, err := m.stats.GetWeekStats()
	if err != nil {
		return statsMsg{err: err}
	}
	msg.today = today
	msg.week = week
	return msg
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.unsubscribe()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.ctrl.Toggle()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetchStats
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case stateMsg:
		if !msg.ok {
			return m, nil
		}
		prev := m.state
		m.state = msg.state
		m.cfg = m.ctrl.Config()
		m.clicks, m.skipped = m.ctrl.Progress()
		if msg.state == clicker.Idle && prev != clicker.Idle {
			return m, tea.Batch(m.waitForState, tea.Tick(statsSettle, func(time.Time) tea.Msg { return refreshMsg{} }))
		}
		return m, m.waitForState

	case tickMsg:
		m.clicks, m.skipped = m.ctrl.Progress()
		m.emitErr = m.ctrl.Feed().EmitError()
		return m, tick()

	case refreshMsg:
		return m, m.fetchStats

	case statsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if m.state == clicker.Idle && m.prefs != nil {
			m.cfg = msg.cfg
		}
		m.todayStats = msg.today
		m.weekStats = msg.week
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Clakr"))
	b.WriteString("\n\n")

	sessionContent := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s",
		statLabelStyle.Render("State:  "),
		renderState(m.state),
		statLabelStyle.Render("Clicks: "),
		statValueStyle.Render(stats.FormatClickCount(m.clicks)),
		statLabelStyle.Render("Skipped:"),
		statValueStyle.Render(stats.FormatClickCount(m.skipped)),
	)
	b.WriteString(boxStyle.Render("Session\n" + sessionContent))
	b.WriteString("\n\n")

	b.WriteString(boxStyle.Render("Settings\n" + renderConfig(m.cfg)))
	b.WriteString("\n\n")

	if m.todayStats != nil {
		todayContent := fmt.Sprintf(
			"%s %s\n%s %s",
			statLabelStyle.Render("Sessions:"),
			statValueStyle.Render(stats.FormatClickCount(m.todayStats.Sessions)),
			statLabelStyle.Render("Clicks:  "),
			statValueStyle.Render(stats.FormatClickCount(m.todayStats.Clicks)),
		)
		b.WriteString(boxStyle.Render("Today\n" + todayContent))
		b.WriteString("\n\n")

		b.WriteString(statLabelStyle.Render("Weekly Clicks:"))
		b.WriteString("\n")
		b.WriteString(m.renderWeeklyGraph())
		b.WriteString("\n")
	}

	if m.emitErr != nil {
		b.WriteString(errorStyle.Render("Clicks failing: " + m.emitErr.Error()))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.logs != nil {
		lines := m.logs()
		if len(lines) > maxLogLines {
			lines = lines[len(lines)-maxLogLines:]
		}
		for _, line := range lines {
			b.WriteString(logStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func renderState(s clicker.State) string {
	switch s {
	case clicker.Active:
		return activeStyle.Render("● clicking")
	case clicker.PendingStart:
		return pendingStyle.Render("◐ starting")
	case clicker.Stopping:
		return pendingStyle.Render("◑ stopping")
	default:
		return idleStyle.Render("○ idle")
	}
}

func renderConfig(cfg clicker.Config) string {
	stopAfter := "until stopped"
	if cfg.StopAfter > 0 {
		stopAfter = cfg.StopAfter.String()
	}
	stationary := "off"
	if cfg.StationaryFor > 0 {
		stationary = cfg.StationaryFor.String()
	}
	return fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s",
		statLabelStyle.Render("Rate:          "),
		statValueStyle.Render(fmt.Sprintf("%g/s", cfg.Rate)),
		statLabelStyle.Render("Start after:   "),
		statValueStyle.Render(cfg.StartDelay.String()),
		statLabelStyle.Render("Stop after:    "),
		statValueStyle.Render(stopAfter),
		statLabelStyle.Render("Stationary for:"),
		statValueStyle.Render(stationary),
	)
}

func (m Model) renderWeeklyGraph() string {
	if len(m.weekStats) == 0 {
		return "No data"
	}

	var maxCount int64
	for _, d := range m.weekStats {
		if d.Clicks > maxCount {
			maxCount = d.Clicks
		}
	}

	if maxCount == 0 {
		return "No clicks this week"
	}

	bars := []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}
	var graph strings.Builder

	for _, d := range m.weekStats {
		idx := int(float64(d.Clicks) / float64(maxCount) * float64(len(bars)-1))
		if d.Clicks > 0 && idx == 0 {
			idx = 1
		}
		graph.WriteString(graphStyle.Render(bars[idx]))
		graph.WriteString(" ")
	}

	return graph.String()
}
