package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/kinematics"
)

const defaultDPI = 96

// Layer is one configuration to draw. Trail, when set, is drawn as a thin
// line under the bodies.
type Layer struct {
	Config kinematics.Configuration
	Color  color.Color
	Trail  []kinematics.Point
}

// Scene fixes the viewport and pixel geometry shared by every frame of an
// animation, so frames differ only in the layers drawn.
type Scene struct {
	Min, Max kinematics.Point

	Width  int
	Height int
	DPI    int

	Background  color.Color
	Foreground  color.Color
	SpringColor color.Color
	LineWidth   vg.Length
}

// NewScene returns a scene over [min, max] whose height keeps a 1:1 aspect
// ratio for the given pixel width.
func NewScene(min, max kinematics.Point, width int) Scene {
	dx := max.X - min.X
	dy := max.Y - min.Y
	height := int(math.Round(float64(width) * dy / dx))
	if height < 1 {
		height = 1
	}
	return Scene{
		Min:         min,
		Max:         max,
		Width:       width,
		Height:      height,
		DPI:         defaultDPI,
		Background:  color.White,
		Foreground:  color.Black,
		SpringColor: color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
		LineWidth:   vg.Points(2),
	}
}

// FitScene sizes a scene to hold every configuration the trajectory passes
// through, plus pad world units on each side.
func FitScene(tr *dynamo.Trajectory, m kinematics.Mapper, width int, pad float64) Scene {
	min := kinematics.Point{X: math.Inf(1), Y: math.Inf(1)}
	max := kinematics.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	tr.Each(func(i int, t float64, x dynamo.State) {
		lo, hi := m.Map(x, t).Bounds()
		min.X, min.Y = math.Min(min.X, lo.X), math.Min(min.Y, lo.Y)
		max.X, max.Y = math.Max(max.X, hi.X), math.Max(max.Y, hi.Y)
	})
	return NewScene(
		kinematics.Point{X: min.X - pad, Y: min.Y - pad},
		kinematics.Point{X: max.X + pad, Y: max.Y + pad},
		width,
	)
}

// Union widens s to also cover o's viewport, keeping s's pixel width.
func (s Scene) Union(o Scene) Scene {
	u := NewScene(
		kinematics.Point{X: math.Min(s.Min.X, o.Min.X), Y: math.Min(s.Min.Y, o.Min.Y)},
		kinematics.Point{X: math.Max(s.Max.X, o.Max.X), Y: math.Max(s.Max.Y, o.Max.Y)},
		s.Width,
	)
	u.Background, u.Foreground, u.SpringColor, u.LineWidth = s.Background, s.Foreground, s.SpringColor, s.LineWidth
	return u
}

func (s Scene) size() (vg.Length, vg.Length) {
	w := vg.Length(float64(s.Width)/float64(s.DPI)) * vg.Inch
	h := vg.Length(float64(s.Height)/float64(s.DPI)) * vg.Inch
	return w, h
}

// worldToPoints converts a world length to a vg length at this scene's scale.
func (s Scene) worldToPoints(r float64) vg.Length {
	px := r * float64(s.Width) / (s.Max.X - s.Min.X)
	return vg.Length(px/float64(s.DPI)) * vg.Inch
}

// Plot builds the gonum plot for the given layers, drawn in order.
func (s Scene) Plot(layers []Layer, label string) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = s.Background
	if label != "" {
		p.Title.Text = label
	}

	for _, l := range layers {
		if err := s.addLayer(p, l); err != nil {
			return nil, err
		}
	}

	// Adding plotters widens the axes to fit their data; pin them last.
	p.X.Min, p.X.Max = s.Min.X, s.Max.X
	p.Y.Min, p.Y.Max = s.Min.Y, s.Max.Y
	return p, nil
}

func toXYs(pts []kinematics.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}
	return xys
}

func (s Scene) addLayer(p *plot.Plot, l Layer) error {
	col := l.Color
	if col == nil {
		col = s.Foreground
	}

	if len(l.Trail) > 1 {
		trail, err := plotter.NewLine(toXYs(l.Trail))
		if err != nil {
			return fmt.Errorf("trail: %w", err)
		}
		trail.LineStyle.Color = col
		trail.LineStyle.Width = s.LineWidth / 2
		p.Add(trail)
	}

	for _, pl := range l.Config.Polylines {
		coil, err := plotter.NewLine(toXYs(pl))
		if err != nil {
			return fmt.Errorf("polyline: %w", err)
		}
		coil.LineStyle.Color = s.SpringColor
		coil.LineStyle.Width = s.LineWidth
		p.Add(coil)
	}

	bodies := l.Config.Bodies
	for _, seg := range l.Config.Segments {
		rod, err := plotter.NewLine(toXYs([]kinematics.Point{bodies[seg.From].Pos, bodies[seg.To].Pos}))
		if err != nil {
			return fmt.Errorf("segment: %w", err)
		}
		rod.LineStyle.Color = col
		rod.LineStyle.Width = s.LineWidth * vg.Length(seg.Width)
		p.Add(rod)
	}

	if len(bodies) == 0 {
		return nil
	}
	pts := make([]kinematics.Point, len(bodies))
	for i, b := range bodies {
		pts[i] = b.Pos
	}
	sc, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return fmt.Errorf("bodies: %w", err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		gs := draw.GlyphStyle{
			Color:  col,
			Radius: s.worldToPoints(bodies[i].Radius),
			Shape:  draw.CircleGlyph{},
		}
		if bodies[i].Role == kinematics.RolePivot {
			gs.Color = s.Foreground
		}
		return gs
	}
	p.Add(sc)
	return nil
}

// Draw rasterizes the layers into an image of Width x Height pixels.
func (s Scene) Draw(layers []Layer, label string) (image.Image, error) {
	p, err := s.Plot(layers, label)
	if err != nil {
		return nil, err
	}
	w, h := s.size()
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(s.DPI))
	p.Draw(draw.New(c))
	return c.Image(), nil
}
