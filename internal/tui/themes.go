package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines a color scheme for the dashboard
type Theme struct {
	Name          string
	PrimaryAccent string // Title, graph bars
	ActiveText    string // Active state, values
	PendingText   string // Pending and stopping states
	ErrorText     string // Click failures
	LabelText     string // Labels, help text
	Border        string // Box borders
}

// Available themes
var Themes = map[string]Theme{
	"default": {
		Name:          "Default",
		PrimaryAccent: "#C73B3C",
		ActiveText:    "#5fafaf",
		PendingText:   "#d7af5f",
		ErrorText:     "#ff5f5f",
		LabelText:     "#6c6c6c",
		Border:        "#5f87d7",
	},
	"gruvbox": {
		Name:          "Gruvbox",
		PrimaryAccent: "#d65d0e",
		ActiveText:    "#98971a",
		PendingText:   "#d79921",
		ErrorText:     "#cc241d",
		LabelText:     "#928374",
		Border:        "#458588",
	},
	"tokyonight": {
		Name:          "Tokyo Night",
		PrimaryAccent: "#7aa2f7",
		ActiveText:    "#9ece6a",
		PendingText:   "#e0af68",
		ErrorText:     "#f7768e",
		LabelText:     "#565f89",
		Border:        "#7dcfff",
	},
	"catppuccin": {
		Name:          "Catppuccin",
		PrimaryAccent: "#cba6f7",
		ActiveText:    "#a6e3a1",
		PendingText:   "#f9e2af",
		ErrorText:     "#f38ba8",
		LabelText:     "#6c7086",
		Border:        "#89b4fa",
	},
}

// ThemeNames returns the list of available theme names
var ThemeNames = []string{"default", "gruvbox", "tokyonight", "catppuccin"}

// CurrentTheme holds the active theme
var CurrentTheme = Themes["default"]

// SetTheme updates the current theme and regenerates all styles. It reports
// whether name is a known theme.
func SetTheme(name string) bool {
	theme, ok := Themes[name]
	if ok {
		CurrentTheme = theme
		regenerateStyles()
	}
	return ok
}

var (
	titleStyle     lipgloss.Style
	statLabelStyle lipgloss.Style
	statValueStyle lipgloss.Style
	boxStyle       lipgloss.Style
	graphStyle     lipgloss.Style
	helpStyle      lipgloss.Style
	idleStyle      lipgloss.Style
	pendingStyle   lipgloss.Style
	activeStyle    lipgloss.Style
	errorStyle     lipgloss.Style
	logStyle       lipgloss.Style
)

// regenerateStyles updates all lipgloss styles with current theme colors
func regenerateStyles() {
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.PrimaryAccent)).
		MarginBottom(1)

	statLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LabelText))

	statValueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.ActiveText))

	boxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(CurrentTheme.Border)).
		Padding(1, 2)

	graphStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.PrimaryAccent))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LabelText)).
		MarginTop(1)

	idleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.LabelText))

	pendingStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.PendingText))

	activeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(CurrentTheme.ActiveText))

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.ErrorText))

	logStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(CurrentTheme.LabelText)).
		Faint(true)
}

// Initialize styles with default theme
func init() {
	regenerateStyles()
}
