// Package config loads the command-line tool's settings. Values are layered:
// built-in defaults, then an optional YAML file, then PPG_* environment
// variables. The result is checked with struct-tag rules and finally by
// ppgprep.Config.Validate.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/nigm-lab/ppgprep"
	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/logging"
)

// EnvPrefix prefixes every environment variable, e.g. PPG_PIPELINE_WORKERS.
const EnvPrefix = "PPG"

// App is the complete tool configuration.
type App struct {
	Pipeline Pipeline       `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging  logging.Config `yaml:"logging" envconfig:"LOG"`
	Paths    Paths          `yaml:"paths" envconfig:"PATHS"`
}

// Pipeline mirrors ppgprep.Config in a file-friendly shape.
type Pipeline struct {
	SourceRateHz    float64 `yaml:"source_rate_hz" envconfig:"SOURCE_RATE_HZ" validate:"gt=0"`
	TargetRateHz    float64 `yaml:"target_rate_hz" envconfig:"TARGET_RATE_HZ" validate:"gt=0"`
	LowPassCutoffHz float64 `yaml:"lowpass_cutoff_hz" envconfig:"LOWPASS_CUTOFF_HZ" validate:"gt=0"`
	BandLowHz       float64 `yaml:"band_low_hz" envconfig:"BAND_LOW_HZ" validate:"gt=0"`
	BandHighHz      float64 `yaml:"band_high_hz" envconfig:"BAND_HIGH_HZ" validate:"gtfield=BandLowHz"`
	FilterOrder     int     `yaml:"filter_order" envconfig:"FILTER_ORDER" validate:"min=1,max=16"`
	ChannelName     string  `yaml:"channel_name" envconfig:"CHANNEL_NAME" validate:"required"`
	ChannelIndex    int     `yaml:"channel_index" envconfig:"CHANNEL_INDEX" validate:"min=0,ltfield=ChannelCount"`
	ChannelCount    int     `yaml:"channel_count" envconfig:"CHANNEL_COUNT" validate:"min=1"`
	ResampleMethod  string  `yaml:"resample_method" envconfig:"RESAMPLE_METHOD" validate:"omitempty,oneof=fourier polyphase"`
	Workers         int     `yaml:"workers" envconfig:"WORKERS" validate:"min=0"`
}

// Paths holds default input and output locations. Command-line flags
// override them.
type Paths struct {
	// RawDir holds one digit-named directory per subject with its WFDB pair.
	RawDir string `yaml:"raw_dir" envconfig:"RAW_DIR"`

	// SignalDir holds per-subject signal CSV files.
	SignalDir string `yaml:"signal_dir" envconfig:"SIGNAL_DIR"`

	// LabelDir holds per-subject label CSV files.
	LabelDir string `yaml:"label_dir" envconfig:"LABEL_DIR"`

	// LabelsFile is a single label table keyed by ID.
	LabelsFile string `yaml:"labels_file" envconfig:"LABELS_FILE"`

	// Dataset is the output dataset file.
	Dataset string `yaml:"dataset" envconfig:"DATASET"`

	// DatasetFormat overrides the format implied by the Dataset extension.
	DatasetFormat string `yaml:"dataset_format" envconfig:"DATASET_FORMAT" validate:"omitempty,oneof=gob csv"`
}

// Default returns the built-in configuration.
func Default() *App {
	d := ppgprep.DefaultConfig()
	return &App{
		Pipeline: Pipeline{
			SourceRateHz:    d.SourceRateHz,
			TargetRateHz:    d.TargetRateHz,
			LowPassCutoffHz: d.LowPassCutoffHz,
			BandLowHz:       d.BandPass.LowHz,
			BandHighHz:      d.BandPass.HighHz,
			FilterOrder:     d.FilterOrder,
			ChannelName:     d.ChannelName,
			ChannelIndex:    d.ChannelIndex,
			ChannelCount:    d.ChannelCount,
			ResampleMethod:  string(d.ResampleMethod),
			Workers:         d.Workers,
		},
		Logging: logging.DefaultConfig(),
		Paths: Paths{
			RawDir:    "data/raw",
			SignalDir: "data/signals",
			LabelDir:  "data/labels",
			Dataset:   "ppg_dataset.gob",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*App, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %w", ppgprep.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML document at path onto cfg. Unknown keys
// are rejected.
func loadFromFile(path string, cfg *App) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", ppgprep.ErrInvalidConfig, path, err)
	}
	return nil
}

// Validate applies the struct-tag rules and then the pipeline's own checks.
func (a *App) Validate() error {
	if err := validator.New().Struct(a); err != nil {
		return fmt.Errorf("%w: %w", ppgprep.ErrInvalidConfig, err)
	}
	pc := a.PipelineConfig()
	return pc.Validate()
}

// PipelineConfig converts the pipeline section to a ppgprep.Config.
func (a *App) PipelineConfig() ppgprep.Config {
	p := a.Pipeline
	return ppgprep.Config{
		SourceRateHz:    p.SourceRateHz,
		TargetRateHz:    p.TargetRateHz,
		LowPassCutoffHz: p.LowPassCutoffHz,
		BandPass:        ppgprep.Band{LowHz: p.BandLowHz, HighHz: p.BandHighHz},
		FilterOrder:     p.FilterOrder,
		ChannelName:     p.ChannelName,
		ChannelIndex:    p.ChannelIndex,
		ChannelCount:    p.ChannelCount,
		ResampleMethod:  ppgprep.ResampleMethod(p.ResampleMethod),
		Workers:         p.Workers,
	}
}

// DatasetFormat returns the configured dataset format. An empty result means
// the format follows the dataset file's extension.
func (a *App) DatasetFormat() (dataset.Format, error) {
	if a.Paths.DatasetFormat == "" {
		return "", nil
	}
	return dataset.ParseFormat(a.Paths.DatasetFormat)
}
