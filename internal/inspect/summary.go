package inspect

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/nigm-lab/ppgprep/internal/dataset"
	"github.com/nigm-lab/ppgprep/internal/labels"
	"github.com/nigm-lab/ppgprep/internal/spectrum"
)

// Summary describes a dataset.
type Summary struct {
	Rows    int
	Samples int // total over all rows

	MinLength int
	MaxLength int

	GlucoseMean   float64
	GlucoseMedian float64
	GlucoseP25    float64
	GlucoseP75    float64
	GlucoseMin    float64
	GlucoseMax    float64

	AgeMean float64
	AgeStd  float64

	Male   int
	Female int

	// HeartRateMedian is the median of the per-row heart-rate estimates, in
	// beats per minute. Rows without detectable beats are counted in
	// NoBeats and left out.
	HeartRateMedian float64
	NoBeats         int
}

// Summarize computes label and signal statistics of rows sampled at rateHz.
func Summarize(rows []dataset.Row, rateHz float64) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, fmt.Errorf("%w: empty dataset", ErrNoData)
	}

	s := Summary{Rows: len(rows), MinLength: len(rows[0].Signal)}
	glucose := make(stats.Float64Data, len(rows))
	ages := make([]float64, len(rows))
	var rates stats.Float64Data

	for i, r := range rows {
		glucose[i] = r.Glucose
		ages[i] = r.Age
		s.Samples += len(r.Signal)
		s.MinLength = min(s.MinLength, len(r.Signal))
		s.MaxLength = max(s.MaxLength, len(r.Signal))
		switch r.Gender {
		case labels.Male:
			s.Male++
		case labels.Female:
			s.Female++
		}

		bpm, err := spectrum.HeartRate(r.Signal, rateHz)
		switch {
		case err == nil:
			rates = append(rates, bpm)
		case errors.Is(err, spectrum.ErrNoBeats), errors.Is(err, spectrum.ErrEmptySignal):
			s.NoBeats++
		default:
			return Summary{}, fmt.Errorf("row %s: %w", r.ID, err)
		}
	}

	var err error
	if s.GlucoseMean, err = glucose.Mean(); err != nil {
		return Summary{}, err
	}
	if s.GlucoseMedian, err = glucose.Median(); err != nil {
		return Summary{}, err
	}
	// Empirical quantiles are defined for any non-empty sample.
	sorted := slices.Clone([]float64(glucose))
	slices.Sort(sorted)
	s.GlucoseP25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.GlucoseP75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	if s.GlucoseMin, err = glucose.Min(); err != nil {
		return Summary{}, err
	}
	if s.GlucoseMax, err = glucose.Max(); err != nil {
		return Summary{}, err
	}
	s.AgeMean, s.AgeStd = stat.PopMeanStdDev(ages, nil)

	if len(rates) > 0 {
		if s.HeartRateMedian, err = rates.Median(); err != nil {
			return Summary{}, err
		}
	}
	return s, nil
}

// Write prints s as an aligned two-column table.
func (s Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	lines := []struct {
		key string
		val string
	}{
		{"rows", fmt.Sprint(s.Rows)},
		{"samples", fmt.Sprint(s.Samples)},
		{"row length", fmt.Sprintf("%d-%d", s.MinLength, s.MaxLength)},
		{"glucose mean", fmt.Sprintf("%.1f", s.GlucoseMean)},
		{"glucose median", fmt.Sprintf("%.1f", s.GlucoseMedian)},
		{"glucose p25-p75", fmt.Sprintf("%.1f-%.1f", s.GlucoseP25, s.GlucoseP75)},
		{"glucose range", fmt.Sprintf("%.1f-%.1f", s.GlucoseMin, s.GlucoseMax)},
		{"age", fmt.Sprintf("%.1f ± %.1f", s.AgeMean, s.AgeStd)},
		{"male/female", fmt.Sprintf("%d/%d", s.Male, s.Female)},
		{"heart rate median (bpm)", fmt.Sprintf("%.1f", s.HeartRateMedian)},
		{"rows without beats", fmt.Sprint(s.NoBeats)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", l.key, l.val); err != nil {
			return err
		}
	}
	return tw.Flush()
}
