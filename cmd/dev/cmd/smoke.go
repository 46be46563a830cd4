package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

func SmokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the built cli against an attached sensor and check its output",
		Long: `Run dist/tmd2771 once against a real sensor and verify that it prints a
luminance and a proximity line. Build the cli first with "dev build".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := targetFromFlags(cmd)
			if err != nil {
				return err
			}
			binary := cmd.Flag("binary").Value.String()
			slog.Info("running cli", "binary", binary, "args", t.args())
			out, err := exec.CommandContext(cmd.Context(), binary, t.args()...).Output()
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					return fmt.Errorf("%s exited with %d: %s", binary, exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
				}
				return fmt.Errorf("could not run %s: %w", binary, err)
			}
			err = checkReading(out)
			if err != nil {
				return err
			}
			slog.Info("sensor reading ok", "output", strings.TrimSpace(string(out)))
			return nil
		},
	}
	cmd.Flags().String("binary", binaryPath, "cli binary to run")
	addTargetFlags(cmd)
	return cmd
}
