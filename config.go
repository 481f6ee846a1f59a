package ppgprep

import (
	"fmt"
	"math"
	"runtime"

	"github.com/nigm-lab/ppgprep/internal/resample"
)

// ResampleMethod selects the sample-rate converter.
type ResampleMethod = resample.Method

// Resampling methods.
const (
	// ResampleFourier truncates or zero-pads the spectrum. It is the default.
	ResampleFourier = resample.MethodFourier

	// ResamplePolyphase applies a rational polyphase FIR filter and requires
	// whole-hertz rates.
	ResamplePolyphase = resample.MethodPolyphase
)

// Band is a frequency interval in Hz.
type Band struct {
	LowHz  float64
	HighHz float64
}

// Config holds the conditioning parameters.
type Config struct {
	// SourceRateHz is the sample rate of the raw recording.
	SourceRateHz float64

	// TargetRateHz is the canonical output sample rate.
	TargetRateHz float64

	// LowPassCutoffHz is the -3 dB point of the anti-alias filter applied at
	// the source rate. It must lie below the target Nyquist frequency.
	LowPassCutoffHz float64

	// BandPass is the physiological band isolated at the target rate.
	BandPass Band

	// FilterOrder is the Butterworth prototype order of both filters.
	FilterOrder int

	// ChannelName is the header token of the channel to decode.
	ChannelName string

	// ChannelIndex is the zero-based position of the channel in a frame.
	ChannelIndex int

	// ChannelCount is the number of interleaved channels.
	ChannelCount int

	// ResampleMethod selects the rate converter.
	ResampleMethod ResampleMethod

	// Workers bounds the number of recordings processed concurrently by a
	// Batch. Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// DefaultConfig returns the parameters used to build the reference dataset.
func DefaultConfig() Config {
	return Config{
		SourceRateHz:    DefaultSourceRateHz,
		TargetRateHz:    DefaultTargetRateHz,
		LowPassCutoffHz: DefaultLowPassCutoffHz,
		BandPass:        Band{LowHz: DefaultBandPassLowHz, HighHz: DefaultBandPassHighHz},
		FilterOrder:     DefaultFilterOrder,
		ChannelName:     DefaultChannelName,
		ChannelIndex:    DefaultChannelIndex,
		ChannelCount:    DefaultChannelCount,
		ResampleMethod:  ResampleFourier,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !finitePositive(c.SourceRateHz) || !finitePositive(c.TargetRateHz) {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if c.FilterOrder < minFilterOrder || c.FilterOrder > maxFilterOrder {
		return fmt.Errorf("%w: filter order must be %d-%d", ErrInvalidConfig, minFilterOrder, maxFilterOrder)
	}

	if c.ChannelName == "" {
		return fmt.Errorf("%w: channel name is empty", ErrInvalidConfig)
	}

	if c.ChannelCount < 1 || c.ChannelIndex < 0 || c.ChannelIndex >= c.ChannelCount {
		return fmt.Errorf("%w: channel index %d outside %d channels", ErrInvalidConfig, c.ChannelIndex, c.ChannelCount)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}

	if _, err := resample.ParseMethod(string(c.ResampleMethod)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	sourceNyquist := c.SourceRateHz / 2
	targetNyquist := c.TargetRateHz / 2
	if !(c.LowPassCutoffHz > 0 && c.LowPassCutoffHz < sourceNyquist) {
		return fmt.Errorf("%w: low-pass cutoff %g Hz must be in (0, %g)", ErrInvalidFilterBand, c.LowPassCutoffHz, sourceNyquist)
	}
	if c.LowPassCutoffHz > targetNyquist {
		return fmt.Errorf("%w: low-pass cutoff %g Hz exceeds the target Nyquist frequency %g Hz", ErrInvalidFilterBand, c.LowPassCutoffHz, targetNyquist)
	}
	if !(c.BandPass.LowHz > 0 && c.BandPass.HighHz < targetNyquist && c.BandPass.LowHz < c.BandPass.HighHz) {
		return fmt.Errorf("%w: band %g-%g Hz must satisfy 0 < low < high < %g", ErrInvalidFilterBand,
			c.BandPass.LowHz, c.BandPass.HighHz, targetNyquist)
	}

	return nil
}

// workers returns the effective concurrency limit.
func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
