package compare

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"bayesarima/pkg/results"
)

const (
	chartWidthPx  = 640
	chartHeightPx = 480
)

// RenderBarChart draws the comparison table as a grouped bar chart, one group
// per parameter and one bar per model, and writes it as a 640x480 PNG.
func RenderBarChart(table *results.Table, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "estimate"

	barWidth := vg.Points(14)
	models := table.Cols()

	for j := 0; j < models; j++ {
		values := make(plotter.Values, table.Rows())
		for i := range values {
			values[i] = table.At(i, j)
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("building bars for %s: %w", table.Column(j), err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(j)
		bars.Offset = barWidth * vg.Length(j-models/2)

		p.Add(bars)
		p.Legend.Add(table.Column(j), bars)
	}

	p.Legend.Top = true
	p.NominalX(table.RowLabels()...)

	// 72 DPI makes one point one pixel, so the canvas size is exact.
	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Points(chartWidthPx), vg.Points(chartHeightPx)),
		vgimg.UseDPI(72))
	p.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
