package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/proxlight/cmd/tmd2771/console"
	"github.com/mklimuk/proxlight/i2c"
)

var version string
var commit string
var date string

func main() {
	os.Exit(run(os.Args))
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tmd2771"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", version, date, commit)
	app.Usage = "TMD2771 ambient light and proximity sensor cli"
	app.Writer = console.Output()
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Value:   adapterDevfs,
			Usage:   "bus adapter: devfs, periph, gobot or mcp2221",
		},
		&cli.StringFlag{
			Name:    "bus",
			Aliases: []string{"b"},
			Value:   i2c.DefaultBus,
			Usage:   "i2c bus device",
		},
		&cli.StringFlag{
			Name:  "speed",
			Usage: "bus clock for the periph adapter (e.g. 400kHz)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		return nil
	}
	app.Action = readCmd.Action
	app.Commands = cli.Commands{
		&readCmd,
		&watchCmd,
		&infoCmd,
		&offCmd,
	}
	// exit codes are handled by run
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func run(args []string) int {
	err := newApp().Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			if msg := exerr.Error(); msg != "" {
				console.Eprint(msg)
			}
			return exerr.ExitCode()
		}
		console.Errorf("unexpected error: %v", err)
		return 1
	}
	return 0
}
