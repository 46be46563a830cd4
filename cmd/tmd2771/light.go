package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/proxlight"
	"github.com/mklimuk/proxlight/cmd/tmd2771/console"
	"github.com/mklimuk/proxlight/environment"
	"github.com/mklimuk/proxlight/snsctx"
)

// period of continuous readings
const watchInterval = 900 * time.Millisecond

// sensorOpts is swapped in tests.
var sensorOpts []environment.TMD2771Opt

type proximityLightSensor interface {
	Configure(ctx context.Context) error
	Read(ctx context.Context) (environment.Reading, error)
}

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "configure the sensor and print a single reading",
	Action: func(c *cli.Context) error {
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		bus, err := acquireBus(c)
		if err != nil {
			return err
		}
		defer releaseBus(bus)
		return measure(ctx, environment.NewTMD2771(bus, sensorOpts...))
	},
}

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "configure the sensor once and print readings until interrupted",
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = snsctx.SetVerbose(ctx, c.Bool("verbose"))
		bus, err := acquireBus(c)
		if err != nil {
			return err
		}
		defer releaseBus(bus)
		return watch(ctx, environment.NewTMD2771(bus, sensorOpts...), watchInterval)
	},
}

func measure(ctx context.Context, sensor proximityLightSensor) error {
	err := sensor.Configure(ctx)
	if err != nil {
		return failure(err)
	}
	r, err := sensor.Read(ctx)
	if err != nil {
		return failure(err)
	}
	printReading(r)
	return nil
}

func watch(ctx context.Context, sensor proximityLightSensor, interval time.Duration) error {
	err := sensor.Configure(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return failure(err)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		r, err := sensor.Read(ctx)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, proxlight.ErrShortRead):
			slog.Debug("sensor read failed", "error", err)
			console.Error(ioErrorMessage)
		case err != nil:
			console.Errorf("%s", err)
		default:
			printReading(r)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

const ioErrorMessage = "Input/Output Error"

func failure(err error) cli.ExitCoder {
	if errors.Is(err, proxlight.ErrShortRead) {
		slog.Debug("sensor read failed", "error", err)
		return console.Fail(1, ioErrorMessage)
	}
	return console.Fail(1, "%s", err)
}

func printReading(r environment.Reading) {
	console.Printf("Ambient Light Luminance : %.2f lux\n", r.Lux)
	console.Printf("Proximity of the Device : %.2f\n", r.Proximity)
}
