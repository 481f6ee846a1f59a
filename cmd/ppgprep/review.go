package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nigm-lab/ppgprep"
	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/inspect"
	"github.com/nigm-lab/ppgprep/internal/source"
)

const (
	defaultPlotRows = 5
	defaultWAVSpeed = 100.0
)

var errNoInput = errors.New("missing input file argument")

func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "dataset", Aliases: []string{"d"}, Usage: "dataset file"},
		&cli.StringFlag{Name: "format", Usage: "gob or csv (default: by extension)"},
	}
}

func (a *app) plotCommand() *cli.Command {
	return &cli.Command{
		Name:  "plot",
		Usage: "overlay the first rows of a dataset, labelled by glucose level",
		Flags: append(datasetFlags(),
			&cli.IntFlag{Name: "n", Value: defaultPlotRows, Usage: "number of rows to plot"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "ppg_signals.png", Usage: "image file (.png, .svg, .pdf)"},
		),
		Action: func(c *cli.Context) error {
			rows, err := a.loadRows(c)
			if err != nil {
				return err
			}
			out := c.String("out")
			if err := inspect.PlotRows(out, rows, c.Int("n"), a.cfg.Pipeline.TargetRateHz); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s\n", out)
			return nil
		},
	}
}

func (a *app) plotSignalCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot-signal",
		Usage:     "chart one signal CSV file",
		ArgsUsage: "SIGNAL.csv",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "rate", Usage: "sample rate of the file in Hz (default: source rate)"},
			&cli.BoolFlag{Name: "preview", Usage: "apply the quick causal band-pass first"},
			&cli.BoolFlag{Name: "condition", Usage: "run the full conditioning pipeline first"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "PNG file (default: input name with .png)"},
		},
		Action: a.plotSignal,
	}
}

func (a *app) plotSignal(c *cli.Context) error {
	in := c.Args().First()
	if in == "" {
		return errNoInput
	}
	if c.Bool("preview") && c.Bool("condition") {
		return errors.New("--preview and --condition are mutually exclusive")
	}
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("failed to open signal: %w", err)
	}
	values, err := source.ReadSignalCSV(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	pc := a.pipelineConfig(c)
	rate := pc.SourceRateHz
	if c.IsSet("rate") {
		rate = c.Float64("rate")
	}
	title := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))

	switch {
	case c.Bool("condition"):
		pc.SourceRateHz = rate
		p, err := ppgprep.New(pc, ppgprep.WithLogger(a.logger))
		if err != nil {
			return err
		}
		if values, err = p.Condition(values); err != nil {
			return err
		}
		rate = pc.TargetRateHz
		title += " (conditioned)"
	case c.Bool("preview"):
		if values, err = inspect.Preview(values, rate, pc.BandPass.LowHz, pc.BandPass.HighHz); err != nil {
			return err
		}
		title += " (preview)"
	}

	out := c.String("out")
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
	}
	if err := writeFile(out, func(f *os.File) error {
		return inspect.PlotSignal(f, title, values, rate)
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s\n", out)
	return nil
}

func (a *app) exportWAVCommand() *cli.Command {
	return &cli.Command{
		Name:  "export-wav",
		Usage: "write one dataset row as a mono WAV file",
		Flags: append(datasetFlags(),
			&cli.StringFlag{Name: "id", Required: true, Usage: "recording ID"},
			&cli.Float64Flag{Name: "speed", Value: defaultWAVSpeed, Usage: "playback speed-up factor"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "WAV file (default: <id>.wav)"},
		),
		Action: func(c *cli.Context) error {
			rows, err := a.loadRows(c)
			if err != nil {
				return err
			}
			id := c.String("id")
			row, ok := findRow(rows, id)
			if !ok {
				return fmt.Errorf("%w: no row %s in dataset", ppgprep.ErrMissingInput, id)
			}
			out := c.String("out")
			if out == "" {
				out = id + ".wav"
			}
			rate := a.cfg.Pipeline.TargetRateHz * c.Float64("speed")
			if err := writeFile(out, func(f *os.File) error {
				return inspect.WriteWAV(f, row.Signal, rate)
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s (%g Hz)\n", out, rate)
			return nil
		},
	}
}

func (a *app) summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "print label and heart-rate statistics of a dataset",
		Flags: datasetFlags(),
		Action: func(c *cli.Context) error {
			rows, err := a.loadRows(c)
			if err != nil {
				return err
			}
			s, err := inspect.Summarize(rows, a.cfg.Pipeline.TargetRateHz)
			if err != nil {
				return err
			}
			return s.Write(a.out)
		},
	}
}

func findRow(rows []dataset.Row, id string) (dataset.Row, bool) {
	for _, r := range rows {
		if r.ID == id {
			return r, true
		}
	}
	return dataset.Row{}, false
}

// writeFile creates path and hands it to write, closing it afterwards.
func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}
