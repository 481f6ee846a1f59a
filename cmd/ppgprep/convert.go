package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/source"
	"github.com/nigm-lab/ppgprep/internal/wfdb"
)

func (a *app) convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "write the calibrated channel of every WFDB subject as <id>.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "raw", Usage: "directory of subject folders"},
			&cli.StringFlag{Name: "out", Usage: "output directory for signal CSV files"},
			&cli.IntFlag{Name: "workers", Usage: "concurrent conversions (0 = all CPUs)"},
		},
		Action: a.convert,
	}
}

func (a *app) convert(c *cli.Context) error {
	raw := pick(c, "raw", a.cfg.Paths.RawDir)
	out := pick(c, "out", a.cfg.Paths.SignalDir)
	pc := a.pipelineConfig(c)
	channel := wfdb.ChannelSpec{Name: pc.ChannelName, Count: pc.ChannelCount, Index: pc.ChannelIndex}

	recs, skipped, err := source.DiscoverWFDB(raw, channel)
	if err != nil {
		return err
	}
	for _, id := range skipped {
		a.logger.Warn("subject skipped: header or waveform missing", "recording", id)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var converted atomic.Int64
	g, ctx := errgroup.WithContext(c.Context)
	g.SetLimit(workerLimit(pc.Workers))
	for _, rec := range recs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(out, rec.ID()+".csv")
			if err := convertRecording(rec, path, pc.SourceRateHz); err != nil {
				a.logger.Warn("conversion failed", "recording", rec.ID(), "error", err)
				return nil
			}
			converted.Add(1)
			a.logger.Debug("converted", "recording", rec.ID(), "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "converted %d of %d recordings to %s\n", converted.Load(), len(recs), out)
	return nil
}

func convertRecording(rec source.Recording, path string, rateHz float64) (err error) {
	samples, err := rec.Samples()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return dataset.WriteSignalCSV(f, samples, rateHz)
}
