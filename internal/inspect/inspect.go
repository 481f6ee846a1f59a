// Package inspect renders conditioned signals for human review: PNG charts,
// WAV audition files, a quick causal preview filter for raw traces, and
// dataset summaries.
package inspect

import "errors"

// ErrNoData indicates there is nothing to render or summarise.
var ErrNoData = errors.New("no data")

// timeAxis returns the sample times of n samples at rateHz.
func timeAxis(n int, rateHz float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / rateHz
	}
	return xs
}
