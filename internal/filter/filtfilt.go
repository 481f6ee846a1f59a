package filter

import (
	"fmt"
	"slices"
)

// Edge padding: 3 * (number of coefficients of the equivalent single
// transfer function), matching the usual forward-backward convention.
const (
	padTapsMultiplier = 3
	coeffsPerSection  = 2
)

// state is the transposed direct form II delay line of one section.
type state [2]float64

// PadLength returns the number of samples reflected at each edge before
// forward-backward filtering. FiltFilt needs a signal longer than this.
func (s SOS) PadLength() int {
	return padTapsMultiplier * (coeffsPerSection*len(s) + 1)
}

// Apply runs the cascade once, forward, starting from rest.
func (s SOS) Apply(x []float64) []float64 {
	zi := make([]state, len(s))
	return s.run(x, zi)
}

// FiltFilt filters x forward and then backward, giving zero phase shift and
// the squared magnitude response. The signal is extended at both ends by an
// odd reflection and each pass starts from the steady state for its first
// sample, which suppresses edge transients. The output has the same length
// as x; x is not modified. A signal no longer than PadLength is rejected
// with ErrSignalTooShort.
func FiltFilt(s SOS, x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no sections", ErrInvalidOrder)
	}

	pad := s.PadLength()
	if len(x) <= pad {
		return nil, fmt.Errorf("%w: %d samples, need more than %d", ErrSignalTooShort, len(x), pad)
	}
	ext := oddExtend(x, pad)
	zi := s.steadyState()

	y := s.run(ext, scaleStates(zi, ext[0]))
	slices.Reverse(y)
	y = s.run(y, scaleStates(zi, y[0]))
	slices.Reverse(y)

	out := make([]float64, len(x))
	copy(out, y[pad:pad+len(x)])
	return out, nil
}

// run filters x through every section in turn. zi is consumed.
func (s SOS) run(x []float64, zi []state) []float64 {
	y := slices.Clone(x)
	for i, sec := range s {
		b, a := sec.B, sec.A
		z := zi[i]
		for n, v := range y {
			out := b[0]*v + z[0]
			z[0] = b[1]*v - a[1]*out + z[1]
			z[1] = b[2]*v - a[2]*out
			y[n] = out
		}
	}
	return y
}

// steadyState returns, per section, the delay-line contents reached after
// an infinitely long unit step at the cascade input.
func (s SOS) steadyState() []state {
	zi := make([]state, len(s))
	scale := 1.0
	for i, sec := range s {
		g := sec.dcGain()
		z1 := sec.B[2] - sec.A[2]*g
		z0 := sec.B[1] - sec.A[1]*g + z1
		zi[i] = state{z0 * scale, z1 * scale}
		scale *= g
	}
	return zi
}

func scaleStates(zi []state, x0 float64) []state {
	out := make([]state, len(zi))
	for i, z := range zi {
		out[i] = state{z[0] * x0, z[1] * x0}
	}
	return out
}

// oddExtend reflects pad samples about each endpoint:
// 2*x[0]-x[pad..1], x, 2*x[n-1]-x[n-2..n-1-pad].
func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)
	first, last := x[0], x[n-1]
	for i := range pad {
		ext[i] = 2*first - x[pad-i]
		ext[pad+n+i] = 2*last - x[n-2-i]
	}
	copy(ext[pad:], x)
	return ext
}
