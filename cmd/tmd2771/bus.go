package main

import (
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/adapter"
	"github.com/mklimuk/proxlight/cmd/tmd2771/console"
	"github.com/mklimuk/proxlight/i2c"
)

const (
	adapterDevfs   = "devfs"
	adapterPeriph  = "periph"
	adapterGobot   = "gobot"
	adapterMCP2221 = "mcp2221"
)

// busOpener is swapped in tests.
var busOpener = openBus

func openBus(c *cli.Context) (proxlight.I2CBusCloser, error) {
	dev := c.String("bus")
	switch name := c.String("adapter"); name {
	case adapterDevfs:
		return i2c.NewDevBus(dev)
	case adapterPeriph:
		var opts []i2c.GenericBusOpt
		if speed := c.String("speed"); speed != "" {
			var f physic.Frequency
			err := f.Set(speed)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid bus speed %q: %w", proxlight.ErrBusOpen, speed, err)
			}
			opts = append(opts, i2c.WithSpeed(f))
		}
		return i2c.NewGenericBus(dev, opts...)
	case adapterGobot:
		return i2c.NewGobotBus(dev)
	case adapterMCP2221:
		return adapter.OpenMCP2221()
	default:
		return nil, fmt.Errorf("%w: unknown adapter %q", proxlight.ErrBusOpen, name)
	}
}

// acquireBus opens the bus selected on the command line. The failure is
// already a ready-to-print exit error.
func acquireBus(c *cli.Context) (proxlight.I2CBusCloser, error) {
	bus, err := busOpener(c)
	if err != nil {
		slog.Debug("bus open failed", "adapter", c.String("adapter"), "bus", c.String("bus"), "error", err)
		return nil, console.Exit(1, "Failed to open the bus.")
	}
	return bus, nil
}

func releaseBus(bus proxlight.I2CBusCloser) {
	err := bus.Close()
	if err != nil {
		slog.Warn("could not close bus", "error", err)
	}
}
