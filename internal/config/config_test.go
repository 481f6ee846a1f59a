package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nigm-lab/ppgprep"
	"github.com/nigm-lab/ppgprep/internal/dataset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ppgprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ppgprep.DefaultConfig(), cfg.PipelineConfig())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YAMLOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  target_rate_hz: 40
  resample_method: polyphase
  workers: 2
logging:
  format: json
paths:
  dataset: out/rows.csv
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	pc := cfg.PipelineConfig()
	assert.InDelta(t, 40.0, pc.TargetRateHz, 0)
	assert.Equal(t, ppgprep.ResamplePolyphase, pc.ResampleMethod)
	assert.Equal(t, 2, pc.Workers)
	assert.InDelta(t, ppgprep.DefaultSourceRateHz, pc.SourceRateHz, 0, "untouched keys keep defaults")
	assert.Equal(t, ppgprep.DefaultChannelName, pc.ChannelName)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, "out/rows.csv", cfg.Paths.Dataset)
	assert.Equal(t, dataset.FormatCSV, dataset.FormatForPath(cfg.Paths.Dataset))
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  workers: 2\n")
	t.Setenv("PPG_PIPELINE_WORKERS", "6")
	t.Setenv("PPG_PIPELINE_CHANNEL_NAME", "PPG_R")
	t.Setenv("PPG_PIPELINE_CHANNEL_INDEX", "0")
	t.Setenv("PPG_LOG_LEVEL", "debug")
	t.Setenv("PPG_PATHS_DATASET_FORMAT", "csv")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Pipeline.Workers)
	assert.Equal(t, "PPG_R", cfg.Pipeline.ChannelName)
	assert.Equal(t, 0, cfg.Pipeline.ChannelIndex)
	assert.Equal(t, "debug", cfg.Logging.Level)

	format, err := cfg.DatasetFormat()
	require.NoError(t, err)
	assert.Equal(t, dataset.FormatCSV, format)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"order_zero", "pipeline:\n  filter_order: 0\n", ppgprep.ErrInvalidConfig},
		{"order_too_high", "pipeline:\n  filter_order: 20\n", ppgprep.ErrInvalidConfig},
		{"unknown_key", "pipeline:\n  sample_rate: 100\n", ppgprep.ErrInvalidConfig},
		{"index_past_count", "pipeline:\n  channel_index: 3\n", ppgprep.ErrInvalidConfig},
		{"band_inverted", "pipeline:\n  band_high_hz: 0.2\n", ppgprep.ErrInvalidConfig},
		{"unknown_method", "pipeline:\n  resample_method: linear\n", ppgprep.ErrInvalidConfig},
		{"empty_channel", "pipeline:\n  channel_name: \"\"\n", ppgprep.ErrInvalidConfig},
		{"log_format", "logging:\n  format: xml\n", ppgprep.ErrInvalidConfig},
		{"dataset_format", "paths:\n  dataset_format: parquet\n", ppgprep.ErrInvalidConfig},
		{"not_yaml", "pipeline: [1, 2\n", ppgprep.ErrInvalidConfig},
		{"cutoff_above_target_nyquist", "pipeline:\n  lowpass_cutoff_hz: 20\n", ppgprep.ErrInvalidFilterBand},
		{"band_above_target_nyquist", "pipeline:\n  band_high_hz: 16\n", ppgprep.ErrInvalidFilterBand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("PPG_PIPELINE_WORKERS", "many")
	_, err := Load("")
	require.ErrorIs(t, err, ppgprep.ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDatasetFormat_DefaultFollowsExtension(t *testing.T) {
	cfg := Default()
	format, err := cfg.DatasetFormat()
	require.NoError(t, err)
	assert.Empty(t, format)
}
