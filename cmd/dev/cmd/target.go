package cmd

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mklimuk/proxlight/i2c"
)

// Variables read by the cli integration test.
const (
	envAdapter = "TMD2771_ADAPTER"
	envBus     = "TMD2771_BUS"
)

var adapters = []string{"devfs", "periph", "gobot", "mcp2221"}

// a successful single-shot run prints exactly these two lines
var readingPattern = regexp.MustCompile(`^Ambient Light Luminance : \d+\.\d{2} lux\nProximity of the Device : \d+\.\d{2}\n$`)

type target struct {
	adapter string
	bus     string
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("adapter", "devfs", "bus adapter the sensor is attached to")
	cmd.Flags().String("bus", i2c.DefaultBus, "i2c bus device of the sensor")
}

func targetFromFlags(cmd *cobra.Command) (target, error) {
	t := target{
		adapter: cmd.Flag("adapter").Value.String(),
		bus:     cmd.Flag("bus").Value.String(),
	}
	return t, t.validate()
}

func (t target) validate() error {
	if !slices.Contains(adapters, t.adapter) {
		return fmt.Errorf("unknown adapter %q (one of %v)", t.adapter, adapters)
	}
	// the USB bridge is found by enumeration, the bus path is ignored
	if t.adapter == "mcp2221" {
		return nil
	}
	_, err := i2c.BusNumber(t.bus)
	return err
}

func (t target) args() []string {
	return []string{"--adapter", t.adapter, "--bus", t.bus}
}

func (t target) env() map[string]string {
	return map[string]string{envAdapter: t.adapter, envBus: t.bus}
}

func checkReading(output []byte) error {
	if !readingPattern.Match(output) {
		return fmt.Errorf("unexpected cli output: %q", output)
	}
	return nil
}
