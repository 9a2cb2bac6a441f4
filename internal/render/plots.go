package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Series is a named column plotted against time.
type Series struct {
	Name   string
	Values []float64
}

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 5 * vg.Inch
)

func plotSize() (vg.Length, vg.Length) {
	return plotWidth, plotHeight
}

func newLine(xs, ys []float64) (*plotter.Line, error) {
	if len(xs) != len(ys) || len(xs) == 0 {
		return nil, errors.New("plot data invalid")
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return plotter.NewLine(pts)
}

// TimeSeries writes a plot of each series against times. The format follows
// the file extension.
func TimeSeries(path, title string, times []float64, series []Series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, s := range series {
		line, err := newLine(times, s.Values)
		if err != nil {
			return &dynamo.RenderError{Op: "plot", Frame: -1, Wrapped: fmt.Errorf("%s: %w", s.Name, err)}
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	return savePlot(path, p.WriterTo, plotSize)
}

// Phase writes a phase portrait of ys against xs.
func Phase(path, title, xlabel, ylabel string, xs, ys []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	line, err := newLine(xs, ys)
	if err != nil {
		return &dynamo.RenderError{Op: "plot", Frame: -1, Wrapped: err}
	}
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)
	return savePlot(path, p.WriterTo, func() (vg.Length, vg.Length) { return 6 * vg.Inch, 6 * vg.Inch })
}
