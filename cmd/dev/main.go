package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mklimuk/proxlight/cmd/dev/cmd"
)

var debug bool

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dev",
		Short: "build and test tool for the tmd2771 cli",
		Long: `Builds the tmd2771 cli natively or for the Raspberry Pi, runs the unit
tests and linters, and checks the cli against a sensor attached to the host
(integration-test, smoke).`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			charm := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      time.DateTime,
				Prefix:          "dev",
			})
			charm.SetColorProfile(termenv.TrueColor)
			charm.SetLevel(log.InfoLevel)
			if debug {
				charm.SetLevel(log.DebugLevel)
				charm.SetReportCaller(true)
			}
			slog.SetDefault(slog.New(charm))
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(
		cmd.BuildCmd(),
		cmd.TestCmd(),
		cmd.LintCmd(),
		cmd.IntegrationTestCmd(),
		cmd.SmokeCmd(),
	)
	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		slog.Error("dev command failed", "error", err)
		os.Exit(1)
	}
}
