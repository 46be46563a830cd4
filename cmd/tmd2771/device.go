package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/proxlight/adapter"
	"github.com/mklimuk/proxlight/cmd/tmd2771/console"
	"github.com/mklimuk/proxlight/environment"
	"github.com/mklimuk/proxlight/snsctx"
)

type deviceReport struct {
	Sensor  environment.TMD2771Info `yaml:"sensor"`
	Adapter *adapter.MCP2221Status  `yaml:"adapter,omitempty"`
}

var infoCmd = cli.Command{
	Name:  "info",
	Usage: "print sensor identification and status registers",
	Action: func(c *cli.Context) error {
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		bus, err := acquireBus(c)
		if err != nil {
			return err
		}
		defer releaseBus(bus)
		var report deviceReport
		report.Sensor, err = environment.NewTMD2771(bus, sensorOpts...).DeviceInfo(ctx)
		if err != nil {
			return failure(err)
		}
		if bridge, ok := bus.(*adapter.MCP2221); ok {
			report.Adapter, err = bridge.Status(ctx)
			if err != nil {
				return console.Fail(1, "adapter communication error: %s", err)
			}
		}
		enc := yaml.NewEncoder(console.Output())
		defer func() { _ = enc.Close() }()
		err = enc.Encode(report)
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

var offCmd = cli.Command{
	Name:  "off",
	Usage: "power the sensor down",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		ctx := snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("power down the sensor?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				console.Info("aborted")
				return nil
			}
		}
		bus, err := acquireBus(c)
		if err != nil {
			return err
		}
		defer releaseBus(bus)
		err = environment.NewTMD2771(bus, sensorOpts...).PowerOff(ctx)
		if err != nil {
			return failure(err)
		}
		console.Info("sensor powered down")
		return nil
	},
}
