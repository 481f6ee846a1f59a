package ppgprep

import (
	"fmt"
	"log/slog"

	"github.com/nigm-lab/ppgprep/internal/wfdb"
)

// Pipeline conditions raw recordings. It is immutable after New and safe for
// concurrent use.
type Pipeline struct {
	cfg    Config
	stages []stage
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for per-stage debug records and by any
// Batch built from the pipeline. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New validates cfg and designs the filters.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.ResampleMethod == "" {
		cfg.ResampleMethod = ResampleFourier
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stages, err := buildStages(&cfg)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		stages: stages,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Channel returns the channel selection used to decode WFDB recordings.
func (p *Pipeline) Channel() wfdb.ChannelSpec {
	return wfdb.ChannelSpec{Name: p.cfg.ChannelName, Count: p.cfg.ChannelCount, Index: p.cfg.ChannelIndex}
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.name
	}
	return names
}

// Condition runs the raw signal x, sampled at the source rate, through every
// stage and returns the normalised signal at the target rate. x is not
// modified.
func (p *Pipeline) Condition(x []float64) ([]float64, error) {
	out, name, err := p.condition(x)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (p *Pipeline) condition(x []float64) ([]float64, string, error) {
	cur := x
	for _, s := range p.stages {
		next, err := s.run(cur)
		if err != nil {
			return nil, s.name, err
		}
		p.logger.Debug("stage complete", "stage", s.name, "in", len(cur), "out", len(next))
		cur = next
	}
	return cur, "", nil
}

// Process conditions x and pairs it with label. Any failure is returned as a
// *RecordingError; no partial row is ever produced.
func (p *Pipeline) Process(id string, x []float64, label LabelRecord) (DatasetRow, error) {
	if err := label.Validate(); err != nil {
		return DatasetRow{}, &RecordingError{ID: id, Stage: StageLabel, Err: err}
	}
	out, name, err := p.condition(x)
	if err != nil {
		return DatasetRow{}, &RecordingError{ID: id, Stage: name, Err: err}
	}
	return DatasetRow{
		ID:      id,
		Signal:  out,
		Glucose: label.Glucose,
		Age:     label.Age,
		Gender:  label.Gender,
	}, nil
}
