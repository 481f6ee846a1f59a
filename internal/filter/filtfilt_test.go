package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nigm-lab/ppgprep/internal/testutil"
)

func TestFiltFilt_PreservesLength(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	for _, n := range []int{16, 17, 100, 1000} {
		x := testutil.Sine(2, sourceRate, 1, n)
		y, err := FiltFilt(sos, x)
		require.NoError(t, err, "n=%d", n)
		assert.Len(t, y, n, "n=%d", n)
		testutil.AssertNoNaNOrInf(t, y)
	}
}

func TestFiltFilt_ConstantPassesThroughLowPass(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	x := make([]float64, 500)
	for i := range x {
		x[i] = 3.5
	}
	y, err := FiltFilt(sos, x)
	require.NoError(t, err)

	for i, v := range y {
		assert.InDelta(t, 3.5, v, 1e-9, "sample %d", i)
	}
}

func TestFiltFilt_ZeroPhase(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	// 2 Hz sits deep in the passband, so the output should overlay the
	// input with no lag.
	x := testutil.Sine(2, sourceRate, 1, int(4*sourceRate))
	y, err := FiltFilt(sos, x)
	require.NoError(t, err)

	margin := int(sourceRate) / 2
	testutil.AssertCloseInRange(t, x, y, margin, len(x)-margin, 1e-3)
}

func TestFiltFilt_LowPassRemovesHighFrequency(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	n := int(4 * sourceRate)
	x := testutil.Sine(200, sourceRate, 1, n)
	y, err := FiltFilt(sos, x)
	require.NoError(t, err)

	margin := int(sourceRate) / 2
	for i := margin; i < n-margin; i++ {
		assert.Less(t, math.Abs(y[i]), 1e-3, "sample %d", i)
	}
}

func TestFiltFilt_BandPassRemovesOffset(t *testing.T) {
	sos, err := BandPass(defaultOrder, bandLow, bandHigh, targetRate)
	require.NoError(t, err)

	n := int(60 * targetRate)
	clean := testutil.Sine(1.2, targetRate, 1, n)
	x := testutil.Offset(clean, 5)

	y, err := FiltFilt(sos, x)
	require.NoError(t, err)

	margin := int(10 * targetRate)
	testutil.AssertCloseInRange(t, clean, y, margin, n-margin, 1e-2)

	var sum float64
	for _, v := range y[margin : n-margin] {
		sum += v
	}
	assert.InDelta(t, 0.0, sum/float64(n-2*margin), 0.05, "DC should be removed")
}

func TestFiltFilt_DoesNotModifyInput(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	x := testutil.Sine(5, sourceRate, 1, 200)
	orig := append([]float64(nil), x...)
	_, err = FiltFilt(sos, x)
	require.NoError(t, err)
	assert.Equal(t, orig, x)
}

func TestFiltFilt_Errors(t *testing.T) {
	sos, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)

	_, err = FiltFilt(sos, nil)
	require.ErrorIs(t, err, ErrEmptySignal)

	_, err = FiltFilt(SOS{}, []float64{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidOrder)
}

func TestFiltFilt_RejectsShortSignal(t *testing.T) {
	lowPass, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)
	bandPass, err := BandPass(defaultOrder, bandLow, bandHigh, targetRate)
	require.NoError(t, err)

	tests := []struct {
		name string
		sos  SOS
		n    int
	}{
		{"lowpass_two_samples", lowPass, 2},
		{"lowpass_at_pad", lowPass, 15},
		{"bandpass_at_pad", bandPass, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y, err := FiltFilt(tt.sos, testutil.Sine(1, targetRate, 1, tt.n))
			require.ErrorIs(t, err, ErrSignalTooShort)
			assert.Nil(t, y)
		})
	}

	y, err := FiltFilt(bandPass, testutil.Sine(1, targetRate, 1, 28))
	require.NoError(t, err)
	assert.Len(t, y, 28)
}

func TestPadLength(t *testing.T) {
	lowPass, err := LowPass(defaultOrder, lowCutoff, sourceRate)
	require.NoError(t, err)
	bandPass, err := BandPass(defaultOrder, bandLow, bandHigh, targetRate)
	require.NoError(t, err)

	assert.Equal(t, 15, lowPass.PadLength())
	assert.Equal(t, 27, bandPass.PadLength())
}

func TestApply_StepSettlesToDCGain(t *testing.T) {
	sos, err := LowPass(2, 10, 1000)
	require.NoError(t, err)

	x := make([]float64, 2000)
	for i := range x {
		x[i] = 1
	}
	y := sos.Apply(x)
	assert.InDelta(t, 0.0, y[0], 0.01, "starts from rest")
	assert.InDelta(t, 1.0, y[len(y)-1], 1e-6)
}
