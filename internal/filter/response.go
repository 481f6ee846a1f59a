package filter

import (
	"math"
	"math/cmplx"
)

// dcGain is the section gain at z = 1.
func (sec Section) dcGain() float64 {
	return (sec.B[0] + sec.B[1] + sec.B[2]) / (sec.A[0] + sec.A[1] + sec.A[2])
}

// DCGain returns the cascade gain at 0 Hz.
func (s SOS) DCGain() float64 {
	g := 1.0
	for _, sec := range s {
		g *= sec.dcGain()
	}
	return g
}

// Response evaluates H(e^jω) at freqHz for a filter running at rateHz.
func (s SOS) Response(freqHz, rateHz float64) complex128 {
	omega := 2 * math.Pi * freqHz / rateHz
	z1 := cmplx.Exp(complex(0, -omega))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, sec := range s {
		num := complex(sec.B[0], 0) + complex(sec.B[1], 0)*z1 + complex(sec.B[2], 0)*z2
		den := complex(sec.A[0], 0) + complex(sec.A[1], 0)*z1 + complex(sec.A[2], 0)*z2
		h *= num / den
	}
	return h
}

// Magnitude returns |H| at freqHz.
func (s SOS) Magnitude(freqHz, rateHz float64) float64 {
	return cmplx.Abs(s.Response(freqHz, rateHz))
}

// Stable reports whether every pole lies strictly inside the unit circle.
// For a monic quadratic 1 + a1 z^-1 + a2 z^-2 that holds when |a2| < 1 and
// |a1| < 1 + a2.
func (s SOS) Stable() bool {
	for _, sec := range s {
		a1, a2 := sec.A[1], sec.A[2]
		if math.Abs(a2) >= 1 || math.Abs(a1) >= 1+a2 {
			return false
		}
	}
	return true
}

// MagnitudeDB converts linear magnitude to decibels.
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10 // Avoid log(0)
		dbMultiplier = 20.0
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
