package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aayushbajaj/clakr/internal/storage"
)

var (
	// Flags for history command
	historyFormat string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded click sessions",
	Long: `List recorded click sessions, newest first.

Examples:
  clakr history                 # Last 20 sessions as a table
  clakr history -n 0 -o json    # Every session as JSON
  clakr history -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Store.RecentSessions(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		return writeHistory(cmd.OutOrStdout(), historyFormat, sessions)
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "o", "table", "output format: table, json or yaml")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of sessions to show, 0 for all")
}

// sessionEntry is the exported form of a session.
type sessionEntry struct {
	ID              string     `json:"id" yaml:"id"`
	RequestedAt     time.Time  `json:"requestedAt" yaml:"requestedAt"`
	StartedAt       *time.Time `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	EndedAt         time.Time  `json:"endedAt" yaml:"endedAt"`
	Rate            float64    `json:"rate" yaml:"rate"`
	StartAfterMs    int64      `json:"startAfterMs" yaml:"startAfterMs"`
	StopAfterMs     int64      `json:"stopAfterMs" yaml:"stopAfterMs"`
	StationaryForMs int64      `json:"stationaryForMs" yaml:"stationaryForMs"`
	Clicks          int64      `json:"clicks" yaml:"clicks"`
	Skipped         int64      `json:"skipped" yaml:"skipped"`
	Reason          string     `json:"reason" yaml:"reason"`
}

func newSessionEntry(rec storage.SessionRecord) sessionEntry {
	return sessionEntry{
		ID:              rec.ID,
		RequestedAt:     rec.RequestedAt,
		StartedAt:       rec.StartedAt,
		EndedAt:         rec.EndedAt,
		Rate:            rec.Rate,
		StartAfterMs:    rec.StartDelay.Milliseconds(),
		StopAfterMs:     rec.StopAfter.Milliseconds(),
		StationaryForMs: rec.StationaryFor.Milliseconds(),
		Clicks:          rec.Clicks,
		Skipped:         rec.Skipped,
		Reason:          rec.Reason,
	}
}

func writeHistory(w io.Writer, format string, sessions []storage.SessionRecord) error {
	entries := make([]sessionEntry, len(sessions))
	for i, rec := range sessions {
		entries[i] = newSessionEntry(rec)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return writeHistoryTable(w, entries)
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func writeHistoryTable(w io.Writer, entries []sessionEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUESTED\tRATE\tACTIVE\tCLICKS\tSKIPPED\tREASON")
	for _, e := range entries {
		active := "-"
		if e.StartedAt != nil {
			active = e.EndedAt.Sub(*e.StartedAt).Round(10 * time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s/s\t%s\t%d\t%d\t%s\n",
			e.RequestedAt.Local().Format("2006-01-02 15:04:05"),
			formatRate(e.Rate),
			active,
			e.Clicks,
			e.Skipped,
			e.Reason,
		)
	}
	return tw.Flush()
}
