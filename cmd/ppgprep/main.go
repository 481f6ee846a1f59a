// Command ppgprep converts raw PPG recordings, conditions them into a
// labelled dataset, and renders datasets for review.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"

	"github.com/nigm-lab/ppgprep"
	"github.com/nigm-lab/ppgprep/internal/config"
	"github.com/nigm-lab/ppgprep/internal/logging"
)

const version = "0.3.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ppgprep:", err)
		os.Exit(1)
	}
}

// app carries the state shared by every command once the global flags have
// been applied.
type app struct {
	cfg    *config.App
	logger *slog.Logger
	out    io.Writer
}

func newApp(stdout, stderr io.Writer) *cli.App {
	a := &app{out: stdout}
	return &cli.App{
		Name:      "ppgprep",
		Usage:     "prepare PPG recordings for glucose model training",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"PPG_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "text or json",
			},
		},
		Before: func(c *cli.Context) error {
			return a.setup(c, stderr)
		},
		Commands: []*cli.Command{
			a.convertCommand(),
			a.buildCommand(),
			a.plotCommand(),
			a.plotSignalCommand(),
			a.exportWAVCommand(),
			a.summaryCommand(),
		},
	}
}

// setup loads the configuration and builds the logger.
func (a *app) setup(c *cli.Context, stderr io.Writer) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Logging.Format = c.String("log-format")
	}

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// pipelineConfig returns the configured pipeline parameters with any
// command-line overrides applied.
func (a *app) pipelineConfig(c *cli.Context) ppgprep.Config {
	pc := a.cfg.PipelineConfig()
	if c.IsSet("workers") {
		pc.Workers = c.Int("workers")
	}
	if c.IsSet("method") {
		pc.ResampleMethod = ppgprep.ResampleMethod(c.String("method"))
	}
	return pc
}

// pick returns the named flag if set, otherwise fallback.
func pick(c *cli.Context, name, fallback string) string {
	if v := c.String(name); v != "" {
		return v
	}
	return fallback
}

func workerLimit(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
