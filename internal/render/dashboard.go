package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Panel selects what an animation frame shows.
type Panel int

const (
	PanelMechanism Panel = iota
	PanelTimeSeries
	PanelPhase
	// PanelDashboard tiles the time series and phase portrait on the left
	// of the mechanism.
	PanelDashboard
)

var panelNames = map[Panel]string{
	PanelMechanism:  "mechanism",
	PanelTimeSeries: "timeseries",
	PanelPhase:      "phase",
	PanelDashboard:  "dashboard",
}

func (p Panel) String() string {
	if name, ok := panelNames[p]; ok {
		return name
	}
	return fmt.Sprintf("panel(%d)", int(p))
}

// ParsePanel maps a panel name to its Panel. The empty string is
// PanelMechanism.
func ParsePanel(name string) (Panel, error) {
	if name == "" {
		return PanelMechanism, nil
	}
	for p, n := range panelNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown panel %q (mechanism, timeseries, phase, dashboard)", name)
}

var markerColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}

// Dashboard draws progressive plots: frame i traces every series up to
// sample i against axes fixed over the whole run, so the curves grow
// without the view jumping.
type Dashboard struct {
	Scene  Scene
	Title  string
	Times  []float64
	Series []Series

	// PhaseX and PhaseY index Series for the phase portrait.
	PhaseX, PhaseY int

	tRange, yRange [2]float64
	pxRange        [2]float64
	pyRange        [2]float64
}

func NewDashboard(scene Scene, times []float64, series []Series, phaseX, phaseY int) (*Dashboard, error) {
	if len(times) == 0 || len(series) == 0 {
		return nil, fmt.Errorf("%w: dashboard needs samples and series", dynamo.ErrInvalidSamples)
	}
	for _, s := range series {
		if len(s.Values) != len(times) {
			return nil, fmt.Errorf("%w: series %s has %d values for %d times", dynamo.ErrDimensionMismatch, s.Name, len(s.Values), len(times))
		}
	}
	if phaseX < 0 || phaseX >= len(series) || phaseY < 0 || phaseY >= len(series) {
		return nil, fmt.Errorf("%w: phase axes %d, %d of %d series", dynamo.ErrDimensionMismatch, phaseX, phaseY, len(series))
	}

	d := &Dashboard{Scene: scene, Times: times, Series: series, PhaseX: phaseX, PhaseY: phaseY}
	d.tRange = [2]float64{times[0], times[len(times)-1]}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		slo, shi := extent(s.Values)
		lo, hi = math.Min(lo, slo), math.Max(hi, shi)
	}
	d.yRange = padRange(lo, hi)
	d.pxRange = padRange(extent(series[phaseX].Values))
	d.pyRange = padRange(extent(series[phaseY].Values))
	return d, nil
}

// Len is the number of frames the dashboard can draw.
func (d *Dashboard) Len() int {
	return len(d.Times)
}

func extent(v []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}

func padRange(lo, hi float64) [2]float64 {
	if hi-lo < 1e-12 {
		return [2]float64{lo - 1, hi + 1}
	}
	pad := 0.05 * (hi - lo)
	return [2]float64{lo - pad, hi + pad}
}

// TimePlot plots every series over samples 0..i.
func (d *Dashboard) TimePlot(i int) (*plot.Plot, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = "time (s)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for k, s := range d.Series {
		line, err := newLine(d.Times[:i+1], s.Values[:i+1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		line.LineStyle.Color = plotutil.Color(k)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.X.Min, p.X.Max = d.tRange[0], d.tRange[1]
	p.Y.Min, p.Y.Max = d.yRange[0], d.yRange[1]
	return p, nil
}

// PhasePlot traces the phase portrait over samples 0..i and marks sample i.
func (d *Dashboard) PhasePlot(i int) (*plot.Plot, error) {
	if err := d.check(i); err != nil {
		return nil, err
	}
	xs, ys := d.Series[d.PhaseX].Values, d.Series[d.PhaseY].Values

	p := plot.New()
	p.X.Label.Text = d.Series[d.PhaseX].Name
	p.Y.Label.Text = d.Series[d.PhaseY].Name
	p.Add(plotter.NewGrid())

	line, err := newLine(xs[:i+1], ys[:i+1])
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	marker, err := plotter.NewScatter(plotter.XYs{{X: xs[i], Y: ys[i]}})
	if err != nil {
		return nil, err
	}
	marker.GlyphStyle = draw.GlyphStyle{Color: markerColor, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
	p.Add(marker)

	p.X.Min, p.X.Max = d.pxRange[0], d.pxRange[1]
	p.Y.Min, p.Y.Max = d.pyRange[0], d.pyRange[1]
	return p, nil
}

func (d *Dashboard) check(i int) error {
	if i < 0 || i >= len(d.Times) {
		return fmt.Errorf("frame %d out of range [0, %d)", i, len(d.Times))
	}
	return nil
}

func (d *Dashboard) px(n int) vg.Length {
	return vg.Length(float64(n)/float64(d.Scene.DPI)) * vg.Inch
}

func (d *Dashboard) canvas(w, h int) *vgimg.Canvas {
	return vgimg.NewWith(vgimg.UseWH(d.px(w), d.px(h)), vgimg.UseDPI(d.Scene.DPI))
}

// Draw rasterizes frame i of panel. layer and label are only used by the
// panels that show the mechanism.
func (d *Dashboard) Draw(panel Panel, i int, layer Layer, label string) (image.Image, error) {
	w := d.Scene.Width
	switch panel {
	case PanelMechanism:
		return d.Scene.Draw([]Layer{layer}, label)

	case PanelTimeSeries:
		p, err := d.TimePlot(i)
		if err != nil {
			return nil, err
		}
		c := d.canvas(w, w*5/8)
		p.Draw(draw.New(c))
		return c.Image(), nil

	case PanelPhase:
		p, err := d.PhasePlot(i)
		if err != nil {
			return nil, err
		}
		c := d.canvas(w, w)
		p.Draw(draw.New(c))
		return c.Image(), nil

	case PanelDashboard:
		return d.drawDashboard(i, layer, label)
	}
	return nil, fmt.Errorf("unknown panel %v", panel)
}

// drawDashboard lays out a left column of two tiles (time series over
// phase portrait) beside the mechanism, which keeps the scene's own aspect
// ratio and is centred vertically.
func (d *Dashboard) drawDashboard(i int, layer Layer, label string) (image.Image, error) {
	tp, err := d.TimePlot(i)
	if err != nil {
		return nil, err
	}
	pp, err := d.PhasePlot(i)
	if err != nil {
		return nil, err
	}
	mp, err := d.Scene.Plot([]Layer{layer}, label)
	if err != nil {
		return nil, err
	}

	left := d.Scene.Width / 2
	width := left + d.Scene.Width
	height := max(d.Scene.Height, d.Scene.Width*3/4)

	c := d.canvas(width, height)
	dc := draw.New(c)

	column := draw.Crop(dc, 0, 0, -d.px(d.Scene.Width), 0)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadY:      vg.Points(6),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}
	cells := plot.Align([][]*plot.Plot{{tp}, {pp}}, tiles, column)
	tp.Draw(cells[0][0])
	pp.Draw(cells[1][0])

	gap := d.px(height-d.Scene.Height) / 2
	mp.Draw(draw.Crop(dc, d.px(left), gap, 0, -gap))
	return c.Image(), nil
}
