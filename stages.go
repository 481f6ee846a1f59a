package ppgprep

import (
	"github.com/nigm-lab/ppgprep/internal/filter"
	"github.com/nigm-lab/ppgprep/internal/normalize"
	"github.com/nigm-lab/ppgprep/internal/resample"
)

// stage is one step of the conditioning chain. run must not modify its
// input and must return a freshly allocated slice.
type stage struct {
	name string
	run  func(x []float64) ([]float64, error)
}

// newFilterStage applies sos forward and backward.
func newFilterStage(name string, sos filter.SOS) stage {
	return stage{
		name: name,
		run: func(x []float64) ([]float64, error) {
			return filter.FiltFilt(sos, x)
		},
	}
}

// newResampleStage converts from the source to the target rate.
func newResampleStage(fromHz, toHz float64, method resample.Method) stage {
	return stage{
		name: StageResample,
		run: func(x []float64) ([]float64, error) {
			return resample.Resample(x, fromHz, toHz, method)
		},
	}
}

// newNormalizeStage rescales to zero mean and unit population variance.
func newNormalizeStage() stage {
	return stage{
		name: StageNormalize,
		run:  normalize.ZScore,
	}
}
