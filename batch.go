package ppgprep

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nigm-lab/ppgprep/internal/labels"
)

// Recording is one raw signal addressed by a stable identifier.
type Recording interface {
	ID() string
	Samples() ([]float64, error)
}

// LabelSource resolves the labels of a recording. *labels.Table from a
// label CSV satisfies it; see also StaticLabel and LabelFile.
type LabelSource interface {
	Lookup(id string) (LabelRecord, error)
}

// StaticLabel is a LabelSource that returns the same record for every id.
type StaticLabel LabelRecord

// Lookup implements LabelSource.
func (s StaticLabel) Lookup(string) (LabelRecord, error) {
	return LabelRecord(s), nil
}

// LabelFile is a LabelSource backed by a per-recording label CSV; the first
// row is used.
type LabelFile string

// Lookup implements LabelSource.
func (f LabelFile) Lookup(string) (LabelRecord, error) {
	fh, err := os.Open(string(f))
	if err != nil {
		return LabelRecord{}, err
	}
	defer func() { _ = fh.Close() }()
	return labels.ReadFirst(fh)
}

// Job is one unit of batch work.
type Job struct {
	Recording Recording
	Labels    LabelSource
}

// Report is the outcome of a batch run.
type Report struct {
	// RunID tags every log record of the run.
	RunID string

	// Rows holds the successful recordings sorted by ID.
	Rows []DatasetRow

	// Failures holds the failed recordings sorted by ID.
	Failures []*RecordingError

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// Batch runs a Pipeline over many recordings concurrently.
type Batch struct {
	pipeline *Pipeline
	workers  int
	logger   *slog.Logger
}

// NewBatch returns a batch driver using the pipeline's worker limit and
// logger.
func NewBatch(p *Pipeline) *Batch {
	return &Batch{
		pipeline: p,
		workers:  p.cfg.workers(),
		logger:   p.logger,
	}
}

// Run processes every job. A failed recording is recorded in the report and
// never stops the others. Run returns an error only when ctx is cancelled,
// in which case no report is returned.
func (b *Batch) Run(ctx context.Context, jobs []Job) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := b.logger.With("run_id", report.RunID)
	log.Info("batch started", "recordings", len(jobs), "workers", b.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := b.runJob(job)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, err)
				log.Warn("recording skipped", "recording", err.ID, "stage", err.Stage, "error", err.Err)
				return nil
			}
			report.Rows = append(report.Rows, row)
			log.Debug("recording processed", "recording", row.ID, "samples", len(row.Signal))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].ID < report.Rows[j].ID })
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].ID < report.Failures[j].ID })
	report.Elapsed = time.Since(start)

	log.Info("batch finished", "rows", len(report.Rows), "failures", len(report.Failures), "elapsed", report.Elapsed)
	return report, nil
}

func (b *Batch) runJob(job Job) (DatasetRow, *RecordingError) {
	id := job.Recording.ID()

	if job.Labels == nil {
		return DatasetRow{}, &RecordingError{ID: id, Stage: StageLabel, Err: ErrMissingLabel}
	}
	label, err := job.Labels.Lookup(id)
	if err != nil {
		return DatasetRow{}, &RecordingError{ID: id, Stage: StageLabel, Err: err}
	}

	samples, err := job.Recording.Samples()
	if err != nil {
		return DatasetRow{}, &RecordingError{ID: id, Stage: StageLoad, Err: err}
	}

	row, err := b.pipeline.Process(id, samples, label)
	if err != nil {
		var rerr *RecordingError
		if errors.As(err, &rerr) {
			return DatasetRow{}, rerr
		}
		return DatasetRow{}, &RecordingError{ID: id, Stage: StageLoad, Err: err}
	}
	return row, nil
}
