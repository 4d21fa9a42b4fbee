package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/clakr/internal/storage"
	"github.com/aayushbajaj/clakr/internal/testpage"
	"github.com/aayushbajaj/clakr/pkg/stats"
)

// Flags for stats command
var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show click statistics",
	Long: `Show daily click totals and a summary of the runs recorded by the test page.
Perfect runs are measured against the stored rate and stop-after preferences.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStats(cmd.OutOrStdout())
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsDays, "days", "d", 30, "number of days to average over")
}

func showStats(w io.Writer) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	today, err := a.Store.GetTodayStats()
	if err != nil {
		return fmt.Errorf("failed to get today's stats: %w", err)
	}
	week, err := a.Store.GetWeekStats()
	if err != nil {
		return fmt.Errorf("failed to get week stats: %w", err)
	}
	history, err := a.Store.GetHistoricalStats(statsDays)
	if err != nil {
		return fmt.Errorf("failed to get historical stats: %w", err)
	}
	runs, err := a.Store.Runs(0)
	if err != nil {
		return fmt.Errorf("failed to list test runs: %w", err)
	}

	writeDailyStats(w, today, dayData(week), dayData(history))
	writeRunSummary(w, runs, a.Expectation())
	return nil
}

func dayData(days []storage.DailyStats) []stats.DayData {
	out := make([]stats.DayData, 0, len(days))
	for _, d := range days {
		date, err := time.ParseInLocation("2006-01-02", d.Date, time.Local)
		if err != nil {
			continue
		}
		out = append(out, stats.DayData{Date: date, Sessions: d.Sessions, Clicks: d.Clicks})
	}
	return out
}

func writeDailyStats(w io.Writer, today *storage.DailyStats, week, history []stats.DayData) {
	var weekClicks, weekSessions int64
	for _, d := range week {
		weekClicks += d.Clicks
		weekSessions += d.Sessions
	}

	fmt.Fprintln(w, "Click Statistics")
	fmt.Fprintln(w, "────────────────")
	fmt.Fprintf(w, "Today:     %s clicks (%d sessions)\n", stats.FormatClickCount(today.Clicks), today.Sessions)
	fmt.Fprintf(w, "This week: %s clicks (%d sessions)\n", stats.FormatClickCount(weekClicks), weekSessions)
	fmt.Fprintf(w, "Daily avg: %s clicks over %d days\n", stats.FormatClickCount(int64(stats.CalculateDailyAverage(history))), len(history))
	if i, clicks := stats.FindBusiestDay(history); i >= 0 && clicks > 0 {
		fmt.Fprintf(w, "Busiest:   %s clicks on %s\n", stats.FormatClickCount(clicks), history[i].Date.Format("Mon Jan 2"))
	}
}

func writeRunSummary(w io.Writer, runs []storage.TestRun, exp testpage.Expectation) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Test Page Runs")
	fmt.Fprintln(w, "──────────────")
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet. Start one with 'clakr testpage'.")
		return
	}

	samples := make([]int64, len(runs))
	for i, run := range runs {
		samples[i] = run.Clicks
	}
	s := stats.Summarize(samples, stats.PerfectClicks(exp.Rate, exp.Duration))

	fmt.Fprintf(w, "Runs:      %d (%s clicks total)\n", s.Count, stats.FormatClickCount(s.Total))
	fmt.Fprintf(w, "Best:      %d\n", s.Best)
	fmt.Fprintf(w, "Lowest:    %d\n", s.Lowest)
	fmt.Fprintf(w, "Mean:      %.1f (median %.1f, p10 %.1f, p90 %.1f)\n", s.Mean, s.Median, s.P10, s.P90)
	fmt.Fprintf(w, "Std dev:   %.1f (%.1f%% margin)\n", s.StdDev, s.ErrorMargin)
	if s.Perfect > 0 {
		fmt.Fprintf(w, "Perfect:   %d of %d runs hit %d clicks (%.0f%%)\n", s.PerfectCount, s.Count, s.Perfect, s.PerfectRate()*100)
	}
	if len(s.Outliers) > 0 {
		fmt.Fprintf(w, "Outliers:  %v\n", s.Outliers)
	}
}
