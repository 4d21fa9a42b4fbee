package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aayushbajaj/clakr/internal/app"
	"github.com/aayushbajaj/clakr/internal/logging"
	"github.com/aayushbajaj/clakr/internal/tui"
)

const logRingSize = 50

var (
	// Global flags
	configPath string
	logLevel   string
	themeName  string
)

var rootCmd = &cobra.Command{
	Use:   "clakr",
	Short: "Clakr - a configurable autoclicker",
	Long: `An autoclicker that posts left clicks at a fixed rate, with a start delay,
an automatic stop and a pause whenever you move the pointer.

Running clakr without a subcommand opens the dashboard.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default $XDG_CONFIG_HOME/clakr/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&themeName, "theme", "default", "dashboard color theme")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(testpageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp(sink func(string)) (*app.App, error) {
	a, err := app.New(app.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogSink:    sink,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start clakr: %w", err)
	}
	return a, nil
}

func runTUI() error {
	if !tui.SetTheme(themeName) {
		return fmt.Errorf("unknown theme %q (available: %s)", themeName, strings.Join(tui.ThemeNames, ", "))
	}

	ring := logging.NewRing(logRingSize)
	a, err := openApp(ring.Add)
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.New(tui.Options{
		Controller: a.Controller,
		Stats:      a.Store,
		Prefs:      a.Prefs,
		Logs:       ring.Lines,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
