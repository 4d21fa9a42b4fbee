package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aayushbajaj/clakr/internal/testpage"
)

// Flags for testpage command
var testpageAddr string

var testpageCmd = &cobra.Command{
	Use:   "testpage",
	Short: "Serve a click counter page for measuring sessions",
	Long: `Serve a page with a click target that counts every click it receives and
records each run. Point the autoclicker at the target, then compare runs with
'clakr stats' or GET /api/summary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := testpageAddr
		if !cmd.Flags().Changed("addr") {
			addr = a.Config.TestPageAddr(testpage.DefaultAddr)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		router := testpage.NewRouter(a.Store, a.Expectation, a.Logger)
		return testpage.Serve(ctx, addr, router, a.Logger, func(bound string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Test page at http://%s (Ctrl-C to stop)\n", bound)
		})
	},
}

func init() {
	testpageCmd.Flags().StringVarP(&testpageAddr, "addr", "a", testpage.DefaultAddr, "listen address")
}
