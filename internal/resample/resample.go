// Package resample changes the sample rate of a finite, fully buffered
// signal. Two methods are provided: a frequency-domain method that truncates
// or zero-pads the spectrum, and a polyphase FIR method for rational ratios.
//
// Both methods return exactly round(n * to / from) samples.
package resample

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/nigm-lab/ppgprep/internal/filter"
)

// Method selects the resampling algorithm.
type Method string

const (
	// MethodFourier resamples in the frequency domain, treating the signal
	// as one period of a periodic sequence.
	MethodFourier Method = "fourier"

	// MethodPolyphase upsamples by L, low-pass filters and decimates by M
	// using a Kaiser windowed-sinc FIR filter.
	MethodPolyphase Method = "polyphase"
)

const (
	// fftHermitianDivisor: a real FFT of size N has N/2 + 1 unique bins.
	fftHermitianDivisor = 2

	// Nyquist bin adjustment when the shorter spectrum has even length.
	nyquistFold   = 2.0
	nyquistSplit  = 0.5
	rateTolerance = 1e-9

	// Polyphase FIR design: half length in input-rate taps per unit of the
	// larger of L and M, and the Kaiser shape parameter.
	polyHalfLenFactor = 10
	polyKaiserBeta    = 5.0
	polyCutoffNumer   = 0.5

	// Largest L or M accepted before the prototype filter becomes too long.
	maxPolyFactor = 3000
)

// Errors returned by the resamplers.
var (
	// ErrEmptySignal indicates an empty input or a zero-length result. It is
	// the same sentinel the filters return.
	ErrEmptySignal = filter.ErrEmptySignal

	// ErrInvalidRate indicates a non-positive or non-finite sample rate.
	ErrInvalidRate = errors.New("invalid sample rate")

	// ErrUnsupportedRatio indicates a rate pair the polyphase method cannot
	// express as a small integer ratio.
	ErrUnsupportedRatio = errors.New("unsupported resampling ratio")

	// ErrUnknownMethod indicates an unrecognised method name.
	ErrUnknownMethod = errors.New("unknown resampling method")
)

// ParseMethod converts a method name to a Method. Matching is
// case-insensitive; the empty string selects MethodFourier.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodFourier, "":
		return MethodFourier, nil
	case MethodPolyphase:
		return MethodPolyphase, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownMethod, s, MethodFourier, MethodPolyphase)
	}
}

// OutputLength returns round(n * toHz / fromHz).
func OutputLength(n int, fromHz, toHz float64) int {
	return int(math.Round(float64(n) * toHz / fromHz))
}

// Resample converts x from fromHz to toHz with the given method.
func Resample(x []float64, fromHz, toHz float64, method Method) ([]float64, error) {
	switch method {
	case MethodFourier, "":
		return Fourier(x, fromHz, toHz)
	case MethodPolyphase:
		return Polyphase(x, fromHz, toHz)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}

func validateRates(fromHz, toHz float64) error {
	for _, r := range []float64{fromHz, toHz} {
		if !(r > 0) || math.IsInf(r, 0) {
			return fmt.Errorf("%w: %g Hz", ErrInvalidRate, r)
		}
	}
	return nil
}

// Fourier resamples x by truncating (downsampling) or zero-padding
// (upsampling) its real spectrum. When the retained spectrum has an even
// length the shared Nyquist bin is folded or split so that the energy of a
// real signal is preserved. Output amplitude matches the input.
func Fourier(x []float64, fromHz, toHz float64) ([]float64, error) {
	if err := validateRates(fromHz, toHz); err != nil {
		return nil, err
	}
	nx := len(x)
	if nx == 0 {
		return nil, ErrEmptySignal
	}
	m := OutputLength(nx, fromHz, toHz)
	if m <= 0 {
		return nil, fmt.Errorf("%w: %d samples at %g Hz leave nothing at %g Hz", ErrEmptySignal, nx, fromHz, toHz)
	}
	if nx == 1 {
		out := make([]float64, m)
		for i := range out {
			out[i] = x[0]
		}
		return out, nil
	}

	spectrum := fourier.NewFFT(nx).Coefficients(nil, x)

	y := make([]complex128, m/fftHermitianDivisor+1)
	n := min(m, nx)
	copy(y, spectrum[:n/fftHermitianDivisor+1])
	if n%fftHermitianDivisor == 0 {
		nyq := n / fftHermitianDivisor
		switch {
		case m < nx:
			y[nyq] *= nyquistFold
		case m > nx:
			y[nyq] *= nyquistSplit
		}
	}

	out := fourier.NewFFT(m).Sequence(nil, y)
	// gonum does not normalise the inverse transform.
	f64.Scale(out, out, 1/float64(nx))
	return out, nil
}

// Ratio reduces toHz/fromHz to lowest terms up/down. Both rates must be
// whole numbers of hertz.
func Ratio(fromHz, toHz float64) (up, down int, err error) {
	if err := validateRates(fromHz, toHz); err != nil {
		return 0, 0, err
	}
	from, to := math.Round(fromHz), math.Round(toHz)
	if math.Abs(from-fromHz) > rateTolerance || math.Abs(to-toHz) > rateTolerance {
		return 0, 0, fmt.Errorf("%w: %g Hz to %g Hz is not an integer ratio", ErrUnsupportedRatio, fromHz, toHz)
	}
	g := gcd(int(from), int(to))
	up, down = int(to)/g, int(from)/g
	if up > maxPolyFactor || down > maxPolyFactor {
		return 0, 0, fmt.Errorf("%w: %d/%d exceeds factor %d", ErrUnsupportedRatio, up, down, maxPolyFactor)
	}
	return up, down, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Polyphase resamples x by the rational factor up/down derived from the two
// rates. The anti-aliasing filter is a zero-delay (centred) Kaiser
// windowed-sinc with cutoff at the lower of the two Nyquist frequencies;
// samples beyond either end of x are taken to be the mean of x, so a
// baseline offset does not turn into an edge step.
func Polyphase(x []float64, fromHz, toHz float64) ([]float64, error) {
	up, down, err := Ratio(fromHz, toHz)
	if err != nil {
		return nil, err
	}
	n := len(x)
	if n == 0 {
		return nil, ErrEmptySignal
	}
	outLen := OutputLength(n, fromHz, toHz)
	if outLen <= 0 {
		return nil, fmt.Errorf("%w: %d samples at %g Hz leave nothing at %g Hz", ErrEmptySignal, n, fromHz, toHz)
	}
	if up == down {
		out := make([]float64, n)
		copy(out, x)
		return out, nil
	}

	factor := max(up, down)
	half := polyHalfLenFactor * factor
	taps, err := filter.DesignLowPass(2*half+1, polyCutoffNumer/float64(factor), polyKaiserBeta, float64(up))
	if err != nil {
		return nil, fmt.Errorf("design anti-aliasing filter: %w", err)
	}
	bank, err := filter.NewPolyphaseBank(taps, up)
	if err != nil {
		return nil, fmt.Errorf("polyphase decomposition: %w", err)
	}

	// padded[q : q+per] is the input window ending at x[q].
	per := bank.TapsPerPhase
	lead := per - 1
	lastQ := ((outLen-1)*down + half) / up
	padded := make([]float64, max(lead+n, lastQ+per))
	mean := f64.Sum(x) / float64(n)
	for i := range padded {
		padded[i] = mean
	}
	copy(padded[lead:], x)

	out := make([]float64, outLen)
	for k := range out {
		t := k*down + half
		p := t % up
		q := (t - p) / up
		out[k] = f64.DotProductUnsafe(bank.Phase(p), padded[q:q+per])
	}
	return out, nil
}
