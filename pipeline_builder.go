package ppgprep

import (
	"fmt"

	"github.com/nigm-lab/ppgprep/internal/filter"
	"github.com/nigm-lab/ppgprep/internal/resample"
)

// buildStages designs both filters once and returns the chain
// low-pass -> resample -> band-pass -> normalize.
func buildStages(cfg *Config) ([]stage, error) {
	lowPass, err := filter.LowPass(cfg.FilterOrder, cfg.LowPassCutoffHz, cfg.SourceRateHz)
	if err != nil {
		return nil, fmt.Errorf("failed to design low-pass filter: %w", err)
	}

	bandPass, err := filter.BandPass(cfg.FilterOrder, cfg.BandPass.LowHz, cfg.BandPass.HighHz, cfg.TargetRateHz)
	if err != nil {
		return nil, fmt.Errorf("failed to design band-pass filter: %w", err)
	}

	if cfg.ResampleMethod == ResamplePolyphase {
		// Surface an impossible ratio at construction rather than per recording.
		if _, _, err := resample.Ratio(cfg.SourceRateHz, cfg.TargetRateHz); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	return []stage{
		newFilterStage(StageLowPass, lowPass),
		newResampleStage(cfg.SourceRateHz, cfg.TargetRateHz, cfg.ResampleMethod),
		newFilterStage(StageBandPass, bandPass),
		newNormalizeStage(),
	}, nil
}
