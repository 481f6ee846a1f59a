package filter

import (
	"fmt"
)

const (
	minBankPhases = 1
	maxBankPhases = 1 << 12
)

// PolyphaseBank is the polyphase decomposition of an FIR filter for an
// integer interpolation factor.
//
// Phase p holds taps h[p], h[p+up], h[p+2up], ... stored in reverse order, so
// that the output sample whose filter centre falls on the upsampled index
// t = q*up + p is the plain dot product of Phases[p] with the input window
// ending at x[q].
type PolyphaseBank struct {
	// Phases holds one reversed sub-filter per phase, each TapsPerPhase long.
	// Sub-filters shorter than TapsPerPhase are zero-padded at the front.
	Phases [][]float64

	// NumPhases is the interpolation factor.
	NumPhases int

	// TapsPerPhase is ceil(TotalTaps / NumPhases).
	TapsPerPhase int

	// TotalTaps is the prototype filter length.
	TotalTaps int
}

// NewPolyphaseBank splits taps into numPhases sub-filters.
func NewPolyphaseBank(taps []float64, numPhases int) (*PolyphaseBank, error) {
	if numPhases < minBankPhases || numPhases > maxBankPhases {
		return nil, fmt.Errorf("%w: %d phases (must be %d-%d)", ErrInvalidOrder, numPhases, minBankPhases, maxBankPhases)
	}
	if len(taps) == 0 {
		return nil, fmt.Errorf("%w: no taps", ErrInvalidOrder)
	}

	perPhase := (len(taps) + numPhases - 1) / numPhases
	bank := &PolyphaseBank{
		Phases:       make([][]float64, numPhases),
		NumPhases:    numPhases,
		TapsPerPhase: perPhase,
		TotalTaps:    len(taps),
	}
	for p := range bank.Phases {
		sub := make([]float64, perPhase)
		for i := 0; p+i*numPhases < len(taps); i++ {
			sub[perPhase-1-i] = taps[p+i*numPhases]
		}
		bank.Phases[p] = sub
	}
	return bank, nil
}

// Phase returns the reversed sub-filter for phase p.
func (b *PolyphaseBank) Phase(p int) []float64 {
	return b.Phases[p]
}

// DCGain returns the sum of every tap across all phases, which equals the
// prototype's DC gain.
func (b *PolyphaseBank) DCGain() float64 {
	var sum float64
	for _, sub := range b.Phases {
		for _, v := range sub {
			sum += v
		}
	}
	return sum
}
