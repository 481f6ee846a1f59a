// Package spectrum estimates the periodicity of a conditioned PPG signal:
// its dominant spectral component and a peak-based heart rate.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/nigm-lab/ppgprep/internal/filter"
)

const (
	// Minimum spacing between beats. 0.33 s caps the estimate near 180 BPM.
	refractorySeconds = 0.33
	secondsPerMinute  = 60.0

	minSpectrumSamples = 2
	minBeats           = 2
)

// Errors returned by the estimators.
var (
	ErrEmptySignal = filter.ErrEmptySignal
	ErrInvalidRate = errors.New("invalid sample rate")
	ErrNoBeats     = errors.New("too few beats")
)

// DominantFrequency returns the frequency in Hz of the largest-magnitude
// non-DC bin of the real spectrum of x.
func DominantFrequency(x []float64, rateHz float64) (float64, error) {
	if !(rateHz > 0) {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidRate, rateHz)
	}
	if len(x) < minSpectrumSamples {
		return 0, fmt.Errorf("%w: need at least %d samples, have %d", ErrEmptySignal, minSpectrumSamples, len(x))
	}

	fft := fourier.NewFFT(len(x))
	coeffs := fft.Coefficients(nil, x)

	mags := make([]float64, len(coeffs)-1)
	for i, c := range coeffs[1:] {
		mags[i] = cmplx.Abs(c)
	}
	peak := floats.MaxIdx(mags) + 1
	return fft.Freq(peak) * rateHz, nil
}

// Beats returns the indices of local maxima above zero, keeping the earliest
// peak of any group closer together than the refractory period.
func Beats(x []float64, rateHz float64) []int {
	minGap := int(math.Ceil(refractorySeconds * rateHz))
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] <= 0 || x[i] <= x[i-1] || x[i] < x[i+1] {
			continue
		}
		if n := len(peaks); n > 0 && i-peaks[n-1] < minGap {
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}

// HeartRate returns beats per minute from the median inter-beat interval of
// a zero-mean signal.
func HeartRate(x []float64, rateHz float64) (float64, error) {
	if !(rateHz > 0) {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidRate, rateHz)
	}
	peaks := Beats(x, rateHz)
	if len(peaks) < minBeats {
		return 0, fmt.Errorf("%w: found %d", ErrNoBeats, len(peaks))
	}

	intervals := make(stats.Float64Data, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = float64(peaks[i]-peaks[i-1]) / rateHz
	}
	median, err := stats.Median(intervals)
	if err != nil {
		return 0, fmt.Errorf("median beat interval: %w", err)
	}
	return secondsPerMinute / median, nil
}
