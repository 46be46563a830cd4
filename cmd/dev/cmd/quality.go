package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

// TestCmd runs the unit tests. They need no hardware: the cli is exercised
// end to end over a recorded periph bus.
func TestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run unit tests of the driver, bus adapters and cli",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Test()
			if err != nil {
				return fmt.Errorf("unit tests failed: %w", err)
			}
			return nil
		},
	}
}

func LintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint",
		Short: "Run linters",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := test.Lint()
			if err != nil {
				return fmt.Errorf("lint failed: %w", err)
			}
			return nil
		},
	}
}

// IntegrationTestCmd points the cli integration test at a real sensor. The
// test is skipped whenever the target variables are not set.
func IntegrationTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run the cli tests against a sensor attached to the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}
			for key, value := range t.env() {
				err = os.Setenv(key, value)
				if err != nil {
					return fmt.Errorf("could not set %s: %w", key, err)
				}
			}
			slog.Info("running integration tests", "adapter", t.adapter, "bus", t.bus)
			err = test.Integ()
			if err != nil {
				return fmt.Errorf("integration tests failed: %w", err)
			}
			return nil
		},
	}
	addTargetFlags(cmd)
	return cmd
}
