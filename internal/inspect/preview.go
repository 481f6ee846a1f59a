package inspect

import (
	"fmt"
	"math"

	"github.com/jfcg/butter"

	"github.com/nigm-lab/ppgprep/internal/filter"
)

// Preview applies a causal first-order band-pass (high-pass at lowHz, then
// low-pass at highHz) sample by sample. It is a cheap quick-look for raw
// traces, not the zero-phase conditioning chain.
func Preview(values []float64, rateHz, lowHz, highHz float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, filter.ErrEmptySignal
	}
	if !(rateHz > 0) || !(lowHz < highHz) {
		return nil, fmt.Errorf("%w: %g-%g Hz at %g Hz", filter.ErrInvalidFilterBand, lowHz, highHz, rateHz)
	}

	wcBase := 2 * math.Pi / rateHz
	hp := butter.NewHighPass1(lowHz * wcBase)
	if hp == nil {
		return nil, fmt.Errorf("%w: high-pass at %g Hz (wc=%g, need .0001 < wc < pi)", filter.ErrInvalidFilterBand, lowHz, lowHz*wcBase)
	}
	lp := butter.NewLowPass1(highHz * wcBase)
	if lp == nil {
		return nil, fmt.Errorf("%w: low-pass at %g Hz (wc=%g, need .0001 < wc < pi)", filter.ErrInvalidFilterBand, highHz, highHz*wcBase)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = hp.Next(lp.Next(v))
	}
	return out, nil
}
