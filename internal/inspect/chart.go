package inspect

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// Single-trace chart size in pixels.
const (
	chartWidth  = 1024
	chartHeight = 320
)

// PlotSignal renders one trace against time as a PNG.
func PlotSignal(w io.Writer, title string, values []float64, rateHz float64) error {
	if len(values) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, have %d", ErrNoData, len(values))
	}
	if !(rateHz > 0) {
		return fmt.Errorf("invalid sample rate %g Hz", rateHz)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name: "Time (s)",
		},
		YAxis: chart.YAxis{
			Name: "Amplitude",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: timeAxis(len(values), rateHz),
				YValues: values,
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
