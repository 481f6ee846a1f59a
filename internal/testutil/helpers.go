// Package testutil provides shared assertions and synthetic signals for the
// signal conditioning tests.
package testutil

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	MomentTolerance  = 1e-9
)

// Sine returns n samples of amp*sin(2πft) sampled at rateHz.
func Sine(freqHz, rateHz, amp float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freqHz*float64(i)/rateHz)
	}
	return out
}

// Noisy returns a copy of s with uniform noise in [-amp, amp) added. The
// generator is seeded so runs are reproducible.
func Noisy(s []float64, amp float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v + amp*(2*rng.Float64()-1)
	}
	return out
}

// Offset returns a copy of s shifted by c.
func Offset(s []float64, c float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v + c
	}
	return out
}

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertMeanStd verifies the mean and population standard deviation of s.
func AssertMeanStd(t *testing.T, s []float64, wantMean, wantStd, tolerance float64) bool {
	t.Helper()
	if len(s) == 0 {
		return assert.Fail(t, "empty slice")
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	mean := sum / float64(len(s))
	var ss float64
	for _, v := range s {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(s)))

	ok := assert.InDelta(t, wantMean, mean, tolerance, "mean")
	return assert.InDelta(t, wantStd, std, tolerance, "population std") && ok
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertCloseInRange verifies |a[i]-b[i]| <= tolerance for i in [from, to).
func AssertCloseInRange(t *testing.T, a, b []float64, from, to int, tolerance float64) bool {
	t.Helper()
	if !assert.Equal(t, len(a), len(b), "length mismatch") {
		return false
	}
	for i := from; i < to; i++ {
		if math.Abs(a[i]-b[i]) > tolerance {
			return assert.Fail(t, "values differ",
				"index %d: %f vs %f (tolerance %e)", i, a[i], b[i], tolerance)
		}
	}
	return true
}
