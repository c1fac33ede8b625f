package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/meshfab/unfold/internal/pipeline"
)

// histogramBins is a reasonable default for the triangle counts patterns
// usually carry; plotter merges empty tail bins itself.
const histogramBins = 32

// ExportHistogram renders the per-triangle angle distortion distribution as
// a PNG histogram with the acceptance threshold marked.
func ExportHistogram(path string, res *pipeline.Result) error {
	if res.Distortion == nil {
		return fmt.Errorf("result carries no distortion report to plot")
	}
	d := res.Distortion

	values := make(plotter.Values, len(d.Triangles))
	for i, tm := range d.Triangles {
		values[i] = tm.AngleDistortion
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Pattern %s - Angle Distortion", res.PatternID)
	p.X.Label.Text = "Angle distortion (deg)"
	p.Y.Label.Text = "Triangles"

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return fmt.Errorf("cannot build histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 100, G: 140, B: 200, A: 255}
	p.Add(h)

	// Threshold marker so the over-tolerance tail reads at a glance.
	threshold := plotter.XYs{
		{X: d.ThresholdDeg, Y: 0},
		{X: d.ThresholdDeg, Y: float64(len(d.Triangles))},
	}
	line, err := plotter.NewLine(threshold)
	if err != nil {
		return fmt.Errorf("cannot build threshold line: %w", err)
	}
	line.Color = color.RGBA{R: 200, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("threshold %.3g deg", d.ThresholdDeg), line)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
