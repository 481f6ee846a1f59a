package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

const (
	// FIR design limits
	minFIRTaps = 3
	maxFIRTaps = 1 << 16

	// Maximum normalised cutoff in cycles per sample (Nyquist)
	maxFIRCutoff = 0.5

	// besselTolerance terminates the I0 power series
	besselTolerance = 1e-17
	besselMaxTerms  = 500

	sincZeroThreshold = 1e-10
)

// besselI0 evaluates the zeroth-order modified Bessel function of the first
// kind with its power series Σ ((x/2)^k / k!)^2.
func besselI0(x float64) float64 {
	half := x / 2
	term := 1.0
	sum := 1.0
	for k := 1; k < besselMaxTerms; k++ {
		term *= half / float64(k)
		sq := term * term
		sum += sq
		if sq < besselTolerance*sum {
			break
		}
	}
	return sum
}

// KaiserWindow returns a symmetric Kaiser window of the given length.
// The centre tap of an odd-length window is 1.
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}

	alpha := float64(length-1) / 2
	norm := besselI0(beta)
	for n := range window {
		x := (float64(n) - alpha) / alpha
		window[n] = besselI0(beta*math.Sqrt(math.Max(0, 1-x*x))) / norm
	}
	return window
}

// DesignLowPass returns a Kaiser windowed-sinc low-pass FIR filter.
//
// cutoff is in cycles per sample and must lie in (0, 0.5). The taps are
// scaled so that the DC gain equals gain; a polyphase interpolator by L uses
// gain = L to restore the amplitude lost to zero stuffing.
func DesignLowPass(numTaps int, cutoff, beta, gain float64) ([]float64, error) {
	if numTaps < minFIRTaps || numTaps > maxFIRTaps {
		return nil, fmt.Errorf("%w: %d taps (must be %d-%d)", ErrInvalidOrder, numTaps, minFIRTaps, maxFIRTaps)
	}
	if !(cutoff > 0 && cutoff < maxFIRCutoff) {
		return nil, fmt.Errorf("%w: FIR cutoff %g cycles/sample", ErrInvalidFilterBand, cutoff)
	}
	if gain <= 0 {
		return nil, fmt.Errorf("%w: gain %g", ErrInvalidFilterBand, gain)
	}

	window := KaiserWindow(numTaps, beta)
	taps := make([]float64, numTaps)
	center := float64(numTaps-1) / 2
	for n := range taps {
		x := float64(n) - center
		var sinc float64
		if math.Abs(x) < sincZeroThreshold {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		taps[n] = sinc * window[n]
	}

	if sum := f64.Sum(taps); math.Abs(sum) > sincZeroThreshold {
		f64.Scale(taps, taps, gain/sum)
	}
	return taps, nil
}
