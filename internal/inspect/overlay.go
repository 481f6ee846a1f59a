package inspect

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/nigm-lab/ppgprep/internal/dataset"
)

// Overlay plot size.
const (
	overlayWidth  = 10 * vg.Inch
	overlayHeight = 4 * vg.Inch
)

// PlotRows overlays the signals of the first n rows, each labelled with its
// glucose level, and saves the plot to path. The image format follows the
// extension (.png, .svg, .pdf, ...).
func PlotRows(path string, rows []dataset.Row, n int, rateHz float64) error {
	n = min(n, len(rows))
	if n <= 0 {
		return fmt.Errorf("%w: no rows to plot", ErrNoData)
	}
	if !(rateHz > 0) {
		return fmt.Errorf("invalid sample rate %g Hz", rateHz)
	}

	p := plot.New()
	p.Title.Text = "PPG Signals"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Amplitude"
	p.Legend.Top = true

	for i, row := range rows[:n] {
		xys := make(plotter.XYs, len(row.Signal))
		for j, v := range row.Signal {
			xys[j].X = float64(j) / rateHz
			xys[j].Y = v
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("row %s: %w", row.ID, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s Glucose: %g", row.ID, row.Glucose), line)
	}

	if err := p.Save(overlayWidth, overlayHeight, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
