// Package filter designs and applies the digital filters used to condition
// PPG recordings: Butterworth IIR filters realised as second-order sections
// for zero-phase filtering, and Kaiser windowed-sinc FIR filters for the
// polyphase resampler.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

const (
	// Bilinear transform constants (sample rate normalised to 2, so the
	// Nyquist frequency is 1 and s = 4(z-1)/(z+1)).
	bilinearFs    = 2.0
	bilinearScale = 2.0 * bilinearFs

	// nyquistFactor converts a sample rate into its Nyquist frequency.
	nyquistFactor = 0.5

	// conjugateTolerance separates complex poles from real ones.
	conjugateTolerance = 1e-10

	minOrder = 1
	maxOrder = 16
)

// Errors returned by filter design and application.
var (
	// ErrInvalidFilterBand indicates a cutoff outside (0, Nyquist) or an
	// empty band.
	ErrInvalidFilterBand = errors.New("invalid filter band")

	// ErrInvalidOrder indicates an unsupported filter order.
	ErrInvalidOrder = errors.New("invalid filter order")

	// ErrEmptySignal indicates there is nothing to filter.
	ErrEmptySignal = errors.New("empty signal")

	// ErrSignalTooShort indicates a signal no longer than the edge padding
	// of a forward-backward filter.
	ErrSignalTooShort = errors.New("signal too short to filter")
)

// Section is one biquad: H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2).
// A[0] is always 1.
type Section struct {
	B [3]float64
	A [3]float64
}

// SOS is a cascade of second-order sections.
type SOS []Section

// LowPass designs an order-n Butterworth low-pass filter with the given
// -3 dB cutoff.
func LowPass(order int, cutoffHz, rateHz float64) (SOS, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	wn, err := normalizeCutoff(cutoffHz, rateHz)
	if err != nil {
		return nil, err
	}

	wo := prewarp(wn)
	proto := prototypePoles(order)
	poles := make([]complex128, len(proto))
	for i, p := range proto {
		poles[i] = p * complex(wo, 0)
	}
	gain := math.Pow(wo, float64(order))

	return bilinear(nil, poles, gain), nil
}

// BandPass designs a Butterworth band-pass filter whose low-pass prototype
// has the given order (the resulting filter has order 2n).
func BandPass(order int, lowHz, highHz, rateHz float64) (SOS, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	low, err := normalizeCutoff(lowHz, rateHz)
	if err != nil {
		return nil, err
	}
	high, err := normalizeCutoff(highHz, rateHz)
	if err != nil {
		return nil, err
	}
	if low >= high {
		return nil, fmt.Errorf("%w: low edge %g Hz is not below high edge %g Hz", ErrInvalidFilterBand, lowHz, highHz)
	}

	w1, w2 := prewarp(low), prewarp(high)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	proto := prototypePoles(order)
	poles := make([]complex128, 0, 2*order)
	halfBW := complex(bw/2, 0)
	woSq := complex(wo*wo, 0)
	for _, p := range proto {
		pl := p * halfBW
		d := cmplx.Sqrt(pl*pl - woSq)
		poles = append(poles, pl+d, pl-d)
	}
	zeros := make([]complex128, order)
	gain := math.Pow(bw, float64(order))

	return bilinear(zeros, poles, gain), nil
}

func validateOrder(order int) error {
	if order < minOrder || order > maxOrder {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidOrder, order, minOrder, maxOrder)
	}
	return nil
}

// normalizeCutoff maps a frequency in Hz onto (0, 1), 1 being Nyquist.
func normalizeCutoff(hz, rateHz float64) (float64, error) {
	if rateHz <= 0 || math.IsNaN(rateHz) {
		return 0, fmt.Errorf("%w: sample rate %g Hz", ErrInvalidFilterBand, rateHz)
	}
	wn := hz / (nyquistFactor * rateHz)
	if !(wn > 0 && wn < 1) {
		return 0, fmt.Errorf("%w: %g Hz at %g Hz sampling (normalised %g, must be in (0, 1))",
			ErrInvalidFilterBand, hz, rateHz, wn)
	}
	return wn, nil
}

// prewarp returns the analog frequency that the bilinear transform maps
// onto normalised digital frequency wn.
func prewarp(wn float64) float64 {
	return bilinearScale * math.Tan(math.Pi*wn/bilinearFs)
}

// prototypePoles returns the poles of the unit-cutoff analog Butterworth
// low-pass filter, all in the left half plane.
func prototypePoles(order int) []complex128 {
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		theta := math.Pi * float64(m) / float64(2*order)
		poles = append(poles, -cmplx.Exp(complex(0, theta)))
	}
	return poles
}

// bilinear maps an analog zero/pole/gain description to the z plane and
// groups the result into second-order sections. Zeros at infinity land on
// z = -1.
func bilinear(zeros, poles []complex128, gain float64) SOS {
	fs2 := complex(bilinearScale, 0)

	num := complex(1, 0)
	dz := make([]complex128, 0, len(poles))
	for _, z := range zeros {
		num *= fs2 - z
		dz = append(dz, (fs2+z)/(fs2-z))
	}
	den := complex(1, 0)
	dp := make([]complex128, len(poles))
	for i, p := range poles {
		den *= fs2 - p
		dp[i] = (fs2 + p) / (fs2 - p)
	}
	for len(dz) < len(dp) {
		dz = append(dz, complex(-1, 0))
	}

	k := gain * real(num/den)
	return zpkToSOS(dz, dp, k)
}

// zpkToSOS pairs conjugate roots into real quadratics. The overall gain is
// folded into the first section.
func zpkToSOS(zeros, poles []complex128, gain float64) SOS {
	den := quadratics(poles)
	num := quadratics(zeros)
	for len(num) < len(den) {
		num = append(num, [3]float64{1, 0, 0})
	}

	sos := make(SOS, len(den))
	for i := range den {
		sos[i] = Section{B: num[i], A: den[i]}
	}
	if len(sos) > 0 {
		for j := range sos[0].B {
			sos[0].B[j] *= gain
		}
	}
	return sos
}

// quadratics expands roots into monic polynomials of degree at most two:
// complex pairs first, then real roots paired outermost-first, then a single
// leftover real root.
func quadratics(roots []complex128) [][3]float64 {
	var out [][3]float64
	var reals []float64
	for _, r := range roots {
		switch {
		case imag(r) > conjugateTolerance:
			out = append(out, [3]float64{1, -2 * real(r), real(r)*real(r) + imag(r)*imag(r)})
		case imag(r) < -conjugateTolerance:
			// Conjugate partner of a root already expanded.
		default:
			reals = append(reals, real(r))
		}
	}

	sort.Float64s(reals)
	i, j := 0, len(reals)-1
	for i < j {
		a, b := reals[i], reals[j]
		out = append(out, [3]float64{1, -(a + b), a * b})
		i++
		j--
	}
	if i == j {
		out = append(out, [3]float64{1, -reals[i], 0})
	}
	return out
}
