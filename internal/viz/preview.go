package viz

import (
	"github.com/san-kum/lagrange/internal/kinematics"
)

// Preview draws one configuration into a width×height cell braille
// canvas whose viewport is [min, max].
func Preview(cfg kinematics.Configuration, min, max kinematics.Point, width, height int) *Canvas {
	c := NewCanvas(width, height)
	c.SetViewport(min, max)

	for _, pl := range cfg.Polylines {
		c.Polyline(pl)
	}
	for _, s := range cfg.Segments {
		c.Line(cfg.Bodies[s.From].Pos, cfg.Bodies[s.To].Pos)
	}
	for _, b := range cfg.Bodies {
		c.Disc(b.Pos, b.Radius)
	}
	return c
}

// Trace draws the path of a single point, typically the last mass over
// a trajectory.
func Trace(c *Canvas, pts []kinematics.Point) {
	for _, p := range pts {
		x, y := c.dot(p)
		c.Set(x, y)
	}
}
