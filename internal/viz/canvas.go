package viz

import (
	"math"
	"strings"

	"github.com/san-kum/lagrange/internal/kinematics"
)

const brailleBlank = 0x2800

// Each terminal cell holds a 2×4 braille dot matrix:
//
//	1 4
//	2 5
//	3 6
//	7 8
var dotBits = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid of Width×Height cells, addressable either
// in dots (Width*2 × Height*4) or in world coordinates through its
// viewport.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	min, max kinematics.Point
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		min:    kinematics.Point{X: 0, Y: 0},
		max:    kinematics.Point{X: float64(2 * w), Y: float64(4 * h)},
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// SetViewport maps the world rectangle [min, max] onto the full dot grid,
// keeping one world unit the same number of dots on both axes.
func (c *Canvas) SetViewport(min, max kinematics.Point) {
	dw, dh := float64(2*c.Width), float64(4*c.Height)
	w, h := max.X-min.X, max.Y-min.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	scale := math.Max(w/dw, h/dh)
	cx, cy := (min.X+max.X)/2, (min.Y+max.Y)/2
	c.min = kinematics.Point{X: cx - scale*dw/2, Y: cy - scale*dh/2}
	c.max = kinematics.Point{X: cx + scale*dw/2, Y: cy + scale*dh/2}
}

// dot converts a world point to dot coordinates, y growing downwards.
func (c *Canvas) dot(p kinematics.Point) (int, int) {
	dw, dh := float64(2*c.Width-1), float64(4*c.Height-1)
	x := (p.X - c.min.X) / (c.max.X - c.min.X) * dw
	y := (c.max.Y - p.Y) / (c.max.Y - c.min.Y) * dh
	return int(math.Round(x)), int(math.Round(y))
}

// Set turns on the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &^= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a dot line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Line draws a segment between two world points.
func (c *Canvas) Line(a, b kinematics.Point) {
	x0, y0 := c.dot(a)
	x1, y1 := c.dot(b)
	c.DrawLine(x0, y0, x1, y1)
}

// Polyline draws consecutive segments through pts.
func (c *Canvas) Polyline(pts []kinematics.Point) {
	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1], pts[i])
	}
}

// Disc fills a world-space circle, always marking at least its centre dot.
func (c *Canvas) Disc(center kinematics.Point, r float64) {
	cx, cy := c.dot(center)
	rd := int(r / (c.max.X - c.min.X) * float64(2*c.Width))
	for y := -rd; y <= rd; y++ {
		for x := -rd; x <= rd; x++ {
			if x*x+y*y <= rd*rd {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
