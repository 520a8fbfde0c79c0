package render

import (
	"errors"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram configures a scalar field histogram plot.
type Histogram struct {
	Title string
	// Bins is the amount of histogram bins. Defaults to 32.
	Bins int
	// Marks are drawn as vertical lines over the histogram, i.e. threshold bounds.
	Marks []float64
	// Width and Height of the plot. Default to 6x4 inches.
	Width, Height vg.Length
}

// WriteHistogram plots the distribution of values and writes it to w as a PNG image.
func WriteHistogram(w io.Writer, h Histogram, values []float64) error {
	if len(values) == 0 {
		return errors.New("no values to plot")
	}
	if h.Bins <= 0 {
		h.Bins = 32
	}
	if h.Width <= 0 || h.Height <= 0 {
		h.Width, h.Height = 6*vg.Inch, 4*vg.Inch
	}
	p := plot.New()
	p.Title.Text = h.Title
	p.X.Label.Text = "value"
	p.Y.Label.Text = "count"
	hist, err := plotter.NewHist(plotter.Values(values), h.Bins)
	if err != nil {
		return err
	}
	p.Add(hist)
	top := 0.0
	for _, b := range hist.Bins {
		top = max(top, b.Weight)
	}
	for _, m := range h.Marks {
		line, err := plotter.NewLine(plotter.XYs{{X: m, Y: 0}, {X: m, Y: top}})
		if err != nil {
			return err
		}
		line.Color = color.RGBA{R: 0xB6, G: 0x49, B: 0x26, A: 0xff}
		line.Width = vg.Points(1.5)
		p.Add(line)
	}
	wt, err := p.WriterTo(h.Width, h.Height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
