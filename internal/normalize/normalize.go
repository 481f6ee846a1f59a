// Package normalize rescales signals to zero mean and unit variance.
package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nigm-lab/ppgprep/internal/filter"
)

// Errors returned by ZScore. ErrEmptySignal is the sentinel the filters use.
var (
	ErrEmptySignal      = filter.ErrEmptySignal
	ErrDegenerateSignal = errors.New("degenerate signal")
	ErrNonFinite        = errors.New("non-finite sample")
)

// ZScore returns (x - mean(x)) / std(x) using the population standard
// deviation. A constant signal has no defined z-score and is rejected with
// ErrDegenerateSignal. x is not modified.
func ZScore(x []float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: sample %d is %g", ErrNonFinite, i, v)
		}
	}

	// Rounding in the mean can leave a tiny non-zero spread for a constant
	// signal, so constancy is tested on the samples themselves.
	mean, std := stat.PopMeanStdDev(x, nil)
	if floats.Min(x) == floats.Max(x) || std == 0 {
		return nil, fmt.Errorf("%w: standard deviation is zero (constant %g over %d samples)", ErrDegenerateSignal, mean, len(x))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	f64.Scale(out, out, 1/std)
	return out, nil
}
