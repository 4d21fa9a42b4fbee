package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/clakr/internal/app"
	"github.com/aayushbajaj/clakr/internal/clicker"
	"github.com/aayushbajaj/clakr/internal/preferences"
	"github.com/aayushbajaj/clakr/pkg/stats"
)

var (
	// Flags for run command
	runRate          float64
	runStartAfter    float64
	runStopAfter     float64
	runStationaryFor float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one click session in the foreground",
	Long: `Run one click session with the stored preferences, overridden by any flags.
The session ends when it stops on its own or on Ctrl-C.

Examples:
  clakr run                        # Stored preferences
  clakr run -r 50 --stop-after 10  # 50 clicks/s for 10 seconds
  clakr run --stop-after 0         # Click until interrupted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

func init() {
	runCmd.Flags().Float64VarP(&runRate, "rate", "r", 0, "clicks per second")
	runCmd.Flags().Float64Var(&runStartAfter, "start-after", 0, "seconds to wait before the first click")
	runCmd.Flags().Float64Var(&runStopAfter, "stop-after", 0, "seconds to click for, 0 runs until interrupted")
	runCmd.Flags().Float64Var(&runStationaryFor, "stationary-for", 0, "seconds the pointer must be still before clicking resumes, 0 disables")
}

func runSession(cmd *cobra.Command) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.Prefs.Load()
	if err != nil {
		return err
	}
	cfg := applyRunFlags(cmd, p.ClickConfig())

	states, unsubscribe := a.Controller.Feed().Subscribe()
	defer unsubscribe()

	if err := a.Controller.Start(cfg); err != nil {
		return err
	}
	cfg = a.Controller.Config()
	fmt.Printf("Clicking at %s clicks/s in %s", formatRate(cfg.Rate), app.FormatSeconds(cfg.StartDelay))
	if cfg.StopAfter > 0 {
		fmt.Printf(" for %s", app.FormatSeconds(cfg.StopAfter))
	}
	fmt.Println(" (Ctrl-C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	activeFor := waitForIdle(states, sigChan, a.Controller.Stop, time.Now)

	clicks, skipped := a.Controller.Progress()
	fmt.Println(runSummary(clicks, skipped, activeFor))
	if err := a.Controller.Feed().EmitError(); err != nil {
		fmt.Fprintf(os.Stderr, "last click failed: %v\n", err)
	}
	return nil
}

// applyRunFlags overrides cfg with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg clicker.Config) clicker.Config {
	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.Rate = runRate
	}
	if flags.Changed("start-after") {
		cfg.StartDelay = preferences.Seconds(runStartAfter)
	}
	if flags.Changed("stop-after") {
		cfg.StopAfter = preferences.Seconds(runStopAfter)
	}
	if flags.Changed("stationary-for") {
		cfg.StationaryFor = preferences.Seconds(runStationaryFor)
	}
	return cfg
}

// waitForIdle returns once the session goes idle, calling stop on the first
// signal. states must be subscribed before the session starts; the feed keeps
// only the latest value, so the first Idle read marks the end. It reports how
// long the session was observed active.
func waitForIdle(states <-chan clicker.State, sig <-chan os.Signal, stop func(), now func() time.Time) time.Duration {
	var activeAt time.Time
	elapsed := func() time.Duration {
		if activeAt.IsZero() {
			return 0
		}
		return now().Sub(activeAt)
	}
	for {
		select {
		case s, ok := <-states:
			if !ok || s == clicker.Idle {
				return elapsed()
			}
			if s == clicker.Active && activeAt.IsZero() {
				activeAt = now()
			}
		case <-sig:
			d := elapsed()
			stop()
			return d
		}
	}
}

func runSummary(clicks, skipped int64, activeFor time.Duration) string {
	text := fmt.Sprintf("Clicked %s times", stats.FormatClickCount(clicks))
	if activeFor > 0 {
		text += fmt.Sprintf(" in %s (%s clicks/s)", activeFor.Round(time.Millisecond), formatRate(stats.AchievedRate(clicks, activeFor)))
	}
	if skipped > 0 {
		text += fmt.Sprintf(", %d skipped while the pointer moved", skipped)
	}
	return text
}

func formatRate(r float64) string {
	if r == float64(int64(r)) {
		return fmt.Sprintf("%d", int64(r))
	}
	return fmt.Sprintf("%.1f", r)
}
