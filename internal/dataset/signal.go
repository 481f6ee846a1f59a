package dataset

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// signalRow is one line of a per-subject signal CSV.
type signalRow struct {
	Time float64 `csv:"Time (s)"`
	PPGG float64 `csv:"PPGG"`
}

// WriteSignalCSV writes values as "Time (s),PPGG" rows, time measured from
// the first sample at rateHz.
func WriteSignalCSV(w io.Writer, values []float64, rateHz float64) error {
	if !(rateHz > 0) {
		return fmt.Errorf("invalid sample rate %g Hz", rateHz)
	}
	rows := make([]signalRow, len(values))
	for i, v := range values {
		rows[i] = signalRow{Time: float64(i) / rateHz, PPGG: v}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write signal CSV: %w", err)
	}
	return nil
}
