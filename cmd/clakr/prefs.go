package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/clakr/internal/preferences"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and change preferences",
	Long: `Show and change the stored preferences. Unset keys fall back to the
[defaults] section of config.toml, then to the built-in defaults.`,
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every preference",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(func(p *preferences.Store) error {
			entries, err := p.List()
			if err != nil {
				return err
			}
			return printPrefs(cmd.OutOrStdout(), entries)
		})
	},
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one preference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(func(p *preferences.Store) error {
			v, err := p.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(func(p *preferences.Store) error {
			return p.Set(args[0], args[1])
		})
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset <key>",
	Short: "Restore a preference to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPrefs(func(p *preferences.Store) error {
			return p.Reset(args[0])
		})
	},
}

func init() {
	prefsCmd.AddCommand(prefsListCmd)
	prefsCmd.AddCommand(prefsGetCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsResetCmd)
}

func withPrefs(fn func(*preferences.Store) error) error {
	a, err := openApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.Prefs)
}

func printPrefs(w io.Writer, entries []preferences.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tDEFAULT\tDESCRIPTION")
	for _, e := range entries {
		value := e.Value
		if !e.Stored {
			value += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Key, value, e.DefaultValue, e.Help)
	}
	return tw.Flush()
}
