package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sourceRate   = 2175.0
	targetRate   = 30.0
	lowCutoff    = 15.0
	bandLow      = 0.5
	bandHigh     = 8.0
	defaultOrder = 4

	halfPower     = 0.7071067811865476 // 1/√2, the -3 dB point
	gainTolerance = 1e-9
	edgeTolerance = 1e-6
)

func TestLowPass_Defaults(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	assert.Len(t, sos, 2, "order 4 needs two biquads")
	assert.True(t, sos.Stable())
	assert.InDelta(t, 1.0, sos.DCGain(), gainTolerance)
	assert.InDelta(t, halfPower, sos.Magnitude(lowCutoff, sourceRate), edgeTolerance)
	assert.Less(t, sos.Magnitude(100, sourceRate), 1e-3)
	assert.Less(t, MagnitudeDB(sos.Magnitude(200, sourceRate)), -80.0)

	for _, sec := range sos {
		assert.InDelta(t, 1.0, sec.A[0], 0)
	}
}

func TestLowPass_Orders(t *testing.T) {
	for _, order := range []int{1, 2, 3, 5, 8} {
		sos, err := LowPass(order, 40, 1000)
		require.NoError(t, err, "order %d", order)

		assert.Len(t, sos, (order+1)/2, "order %d", order)
		assert.True(t, sos.Stable(), "order %d", order)
		assert.InDelta(t, 1.0, sos.DCGain(), gainTolerance, "order %d", order)
		assert.InDelta(t, halfPower, sos.Magnitude(40, 1000), edgeTolerance, "order %d", order)
	}
}

func TestBandPass_Defaults(t *testing.T) {
	sos, err := BandPass(defaultOrder, bandLow, bandHigh, targetRate)
	require.NoError(t, err)

	assert.Len(t, sos, 4, "band-pass doubles the order")
	assert.True(t, sos.Stable())
	assert.InDelta(t, 0.0, sos.DCGain(), gainTolerance)
	assert.InDelta(t, halfPower, sos.Magnitude(bandLow, targetRate), edgeTolerance)
	assert.InDelta(t, halfPower, sos.Magnitude(bandHigh, targetRate), edgeTolerance)

	// Unity gain at the (warped) geometric centre of the band.
	center := targetRate / math.Pi * math.Atan(math.Sqrt(
		math.Tan(math.Pi*bandLow/targetRate)*math.Tan(math.Pi*bandHigh/targetRate)))
	assert.InDelta(t, 1.0, sos.Magnitude(center, targetRate), gainTolerance)

	assert.Less(t, sos.Magnitude(0.05, targetRate), 1e-3)
	assert.Less(t, sos.Magnitude(14.5, targetRate), 1e-2)
}

func TestDesign_InvalidBand(t *testing.T) {
	tests := []struct {
		name   string
		design func() (SOS, error)
		want   error
	}{
		{"lowpass_zero_cutoff", func() (SOS, error) { return LowPass(4, 0, sourceRate) }, ErrInvalidFilterBand},
		{"lowpass_negative_cutoff", func() (SOS, error) { return LowPass(4, -1, sourceRate) }, ErrInvalidFilterBand},
		{"lowpass_at_nyquist", func() (SOS, error) { return LowPass(4, 15, targetRate) }, ErrInvalidFilterBand},
		{"lowpass_above_nyquist", func() (SOS, error) { return LowPass(4, 20, targetRate) }, ErrInvalidFilterBand},
		{"lowpass_zero_rate", func() (SOS, error) { return LowPass(4, 15, 0) }, ErrInvalidFilterBand},
		{"lowpass_order_zero", func() (SOS, error) { return LowPass(0, 15, sourceRate) }, ErrInvalidOrder},
		{"bandpass_inverted", func() (SOS, error) { return BandPass(4, 8, 0.5, targetRate) }, ErrInvalidFilterBand},
		{"bandpass_empty", func() (SOS, error) { return BandPass(4, 5, 5, targetRate) }, ErrInvalidFilterBand},
		{"bandpass_high_at_nyquist", func() (SOS, error) { return BandPass(4, 0.5, 15, targetRate) }, ErrInvalidFilterBand},
		{"bandpass_low_zero", func() (SOS, error) { return BandPass(4, 0, 8, targetRate) }, ErrInvalidFilterBand},
		{"bandpass_order_too_high", func() (SOS, error) { return BandPass(64, 0.5, 8, targetRate) }, ErrInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sos, err := tt.design()
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, sos)
		})
	}
}

func TestMagnitudeDB(t *testing.T) {
	assert.InDelta(t, 0.0, MagnitudeDB(1), 1e-12)
	assert.InDelta(t, -20.0, MagnitudeDB(0.1), 1e-12)
	assert.InDelta(t, -200.0, MagnitudeDB(0), 1e-12)
}
