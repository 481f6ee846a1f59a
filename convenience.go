package ppgprep

import "sync"

var defaultPipeline = sync.OnceValues(func() (*Pipeline, error) {
	return New(DefaultConfig())
})

// ConditionDefault conditions a recording sampled at DefaultSourceRateHz
// using DefaultConfig. The filters are designed once and shared.
//
// Example:
//
//	out, err := ppgprep.ConditionDefault(raw)
func ConditionDefault(x []float64) ([]float64, error) {
	p, err := defaultPipeline()
	if err != nil {
		return nil, err
	}
	return p.Condition(x)
}

// ProcessDefault is ConditionDefault paired with label.
func ProcessDefault(id string, x []float64, label LabelRecord) (DatasetRow, error) {
	p, err := defaultPipeline()
	if err != nil {
		return DatasetRow{}, err
	}
	return p.Process(id, x, label)
}
