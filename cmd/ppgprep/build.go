package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nigm-lab/ppgprep"
	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/labels"
	"github.com/nigm-lab/ppgprep/internal/source"
)

var errNoLabels = errors.New("a label table is required (--labels or paths.labels_file)")

func (a *app) buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "condition recordings and save them with their labels as a dataset",
		Description: "Inputs are read from one of three layouts:\n" +
			"  --signals DIR --label-dir DIR   signal*.csv paired with label*.csv\n" +
			"  --edf FILE... --labels FILE     EDF files with a label table\n" +
			"  --raw DIR --labels FILE         WFDB subject folders with a label table (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "raw", Usage: "directory of WFDB subject folders"},
			&cli.StringFlag{Name: "labels", Usage: "label table CSV (ID,Glucose,Age,Gender)"},
			&cli.StringFlag{Name: "signals", Usage: "directory of signal*.csv files"},
			&cli.StringFlag{Name: "label-dir", Usage: "directory of label*.csv files"},
			&cli.StringSliceFlag{Name: "edf", Usage: "EDF recording (repeatable)"},
			&cli.IntFlag{Name: "edf-signal", Usage: "signal index within each EDF file"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "dataset file"},
			&cli.StringFlag{Name: "format", Usage: "gob or csv (default: by extension)"},
			&cli.StringFlag{Name: "method", Usage: "resampling method: fourier or polyphase"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent recordings (0 = all CPUs)"},
		},
		Action: a.build,
	}
}

func (a *app) build(c *cli.Context) error {
	p, err := ppgprep.New(a.pipelineConfig(c), ppgprep.WithLogger(a.logger))
	if err != nil {
		return err
	}
	jobs, err := a.jobs(c, p)
	if err != nil {
		return err
	}

	report, err := ppgprep.NewBatch(p).Run(c.Context, jobs)
	if err != nil {
		return err
	}
	for _, f := range report.Failures {
		fmt.Fprintf(a.out, "skipped %s at %s: %v\n", f.ID, f.Stage, f.Err)
	}
	if len(report.Rows) == 0 {
		return fmt.Errorf("none of %d recordings could be processed", len(jobs))
	}

	path := pick(c, "out", a.cfg.Paths.Dataset)
	format, err := a.datasetFormat(c)
	if err != nil {
		return err
	}
	if err := dataset.SaveFile(path, report.Rows, format); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "run %s: %d rows, %d skipped in %s; saved to %s\n",
		report.RunID, len(report.Rows), len(report.Failures), report.Elapsed.Round(time.Millisecond), path)
	return nil
}

// jobs discovers the recordings selected by the flags.
func (a *app) jobs(c *cli.Context, p *ppgprep.Pipeline) ([]ppgprep.Job, error) {
	switch {
	case c.IsSet("signals"):
		pairs, orphans, err := source.DiscoverCSV(c.String("signals"), pick(c, "label-dir", a.cfg.Paths.LabelDir))
		if err != nil {
			return nil, err
		}
		for _, name := range orphans {
			a.logger.Warn("no matching label file", "signal", name)
		}
		jobs := make([]ppgprep.Job, len(pairs))
		for i, pair := range pairs {
			jobs[i] = ppgprep.Job{Recording: pair.Signal, Labels: ppgprep.LabelFile(pair.LabelPath)}
		}
		return jobs, nil

	case c.IsSet("edf"):
		table, err := a.labelTable(c)
		if err != nil {
			return nil, err
		}
		files := c.StringSlice("edf")
		jobs := make([]ppgprep.Job, len(files))
		for i, path := range files {
			jobs[i] = ppgprep.Job{Recording: source.NewEDF(path, c.Int("edf-signal")), Labels: table}
		}
		return jobs, nil

	default:
		table, err := a.labelTable(c)
		if err != nil {
			return nil, err
		}
		recs, skipped, err := source.DiscoverWFDB(pick(c, "raw", a.cfg.Paths.RawDir), p.Channel())
		if err != nil {
			return nil, err
		}
		for _, id := range skipped {
			a.logger.Warn("subject skipped: header or waveform missing", "recording", id)
		}
		jobs := make([]ppgprep.Job, len(recs))
		for i, rec := range recs {
			jobs[i] = ppgprep.Job{Recording: rec, Labels: table}
		}
		return jobs, nil
	}
}

func (a *app) labelTable(c *cli.Context) (*labels.Table, error) {
	path := pick(c, "labels", a.cfg.Paths.LabelsFile)
	if path == "" {
		return nil, errNoLabels
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open label table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return labels.ReadTable(f)
}

// datasetFormat resolves --format, then the configured format. An empty
// result means "by extension".
func (a *app) datasetFormat(c *cli.Context) (dataset.Format, error) {
	if v := c.String("format"); v != "" {
		return dataset.ParseFormat(v)
	}
	return a.cfg.DatasetFormat()
}

func (a *app) loadRows(c *cli.Context) ([]dataset.Row, error) {
	format, err := a.datasetFormat(c)
	if err != nil {
		return nil, err
	}
	return dataset.LoadFile(pick(c, "dataset", a.cfg.Paths.Dataset), format)
}
