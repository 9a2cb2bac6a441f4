package physics

import (
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// DoublePendulum is two unit point masses on unit massless rods. State is
// [θ1, θ1', θ2, θ2'] where θ2 is measured relative to the first rod.
type DoublePendulum struct {
	Gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{Gravity: StandardGravity}
}

func (d *DoublePendulum) StateDim() int {
	return 4
}

func (d *DoublePendulum) Derive(x dynamo.State, t float64) dynamo.State {
	g := d.Gravity
	th1, w1, th2, w2 := x[0], x[1], x[2], x[3]

	s1 := math.Sin(th1)
	s2 := math.Sin(th2)
	s22 := math.Sin(2 * th2)
	c2 := math.Cos(th2)

	a1 := (-3*g*s1 + g*math.Sin(th1+2*th2) +
		2*w1*w1*s2 + w1*w1*s22 + 4*w1*w2*s2 + 2*w2*w2*s2) /
		(3 - math.Cos(2*th2))

	a2 := (-1.5*g*s1 - g*math.Sin(th1-th2) + g*math.Sin(th1+th2) + 0.5*g*math.Sin(th1+2*th2) +
		3*w1*w1*s2 + w1*w1*s22 + 2*w1*w2*s2 + w1*w2*s22 + w2*w2*s2 + 0.5*w2*w2*s22) /
		(c2*c2 - 2)

	return dynamo.State{w1, a1, w2, a2}
}

// Denominator is the mass matrix determinant 2 - cos²θ2, never below 1.
func (d *DoublePendulum) Denominator(x dynamo.State) float64 {
	c2 := math.Cos(x[2])
	return 2 - c2*c2
}

func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	th1, w1, th2, w2 := x[0], x[1], x[2], x[3]
	w12 := w1 + w2

	ke := 0.5 * (w1*w1 + w1*w1 + w12*w12 + 2*w1*w12*math.Cos(th2))

	y1 := -math.Cos(th1)
	y2 := y1 - math.Cos(th1+th2)
	return ke + d.Gravity*(y1+y2)
}

func (d *DoublePendulum) DefaultState() dynamo.State {
	return dynamo.State{math.Pi / 2, 0, 0.001, 0}
}

func (d *DoublePendulum) params() paramTable {
	return paramTable{"gravity": &d.Gravity}
}

func (d *DoublePendulum) GetParams() map[string]float64 {
	return d.params().values()
}

func (d *DoublePendulum) SetParam(name string, value float64) error {
	return d.params().set(name, value)
}

// CompoundPendulum is two uniform unit rods of unit mass (moment of inertia
// 1/12 about the centre). State layout matches [DoublePendulum].
type CompoundPendulum struct {
	Gravity float64
}

const rodInertia = 1.0 / 12.0

func NewCompoundPendulum() *CompoundPendulum {
	return &CompoundPendulum{Gravity: StandardGravity}
}

func (c *CompoundPendulum) StateDim() int {
	return 4
}

func (c *CompoundPendulum) Derive(x dynamo.State, t float64) dynamo.State {
	g := c.Gravity
	th1, w1, th2, w2 := x[0], x[1], x[2], x[3]

	s1 := math.Sin(th1)
	s2 := math.Sin(th2)
	s22 := math.Sin(2 * th2)
	c2 := math.Cos(th2)
	den := -36*c2*c2 + 12*c2 + 67

	a1 := (-54*g*s1 - 6*g*math.Sin(th1+th2) + 18*g*math.Sin(th1+2*th2) +
		18*w1*w1*s2 + 18*w1*w1*s22 + 48*w1*w2*s2 + 24*w2*w2*s2) / den

	a2 := (36*g*s1 + 54*g*math.Sin(th1-th2) - 42*g*math.Sin(th1+th2) - 18*g*math.Sin(th1+2*th2) -
		114*w1*w1*s2 - 36*w1*w1*s22 - 36*w1*w2*s2 - 36*w1*w2*s22 - 18*w2*w2*s2 - 18*w2*w2*s22) / den

	return dynamo.State{w1, a1, w2, a2}
}

// Denominator is 144 times the mass matrix determinant. It stays in [19, 68], reaching 19 at θ2 = π.
func (c *CompoundPendulum) Denominator(x dynamo.State) float64 {
	c2 := math.Cos(x[2])
	return -36*c2*c2 + 12*c2 + 67
}

// Energy matches the Lagrangian the equations were derived from, in which
// the second rod's spin term uses the relative rate θ2'.
func (c *CompoundPendulum) Energy(x dynamo.State) float64 {
	th1, w1, th2, w2 := x[0], x[1], x[2], x[3]
	w12 := w1 + w2

	v1sq := 0.25 * w1 * w1
	v2sq := w1*w1 + 0.25*w12*w12 + w1*w12*math.Cos(th2)
	ke := 0.5*(v1sq+v2sq) + 0.5*rodInertia*(w1*w1+w2*w2)

	y1 := -0.5 * math.Cos(th1)
	y2 := -math.Cos(th1) - 0.5*math.Cos(th1+th2)
	return ke + c.Gravity*(y1+y2)
}

func (c *CompoundPendulum) DefaultState() dynamo.State {
	return dynamo.State{math.Pi / 3, 0, math.Pi / 2, 0}
}

func (c *CompoundPendulum) params() paramTable {
	return paramTable{"gravity": &c.Gravity}
}

func (c *CompoundPendulum) GetParams() map[string]float64 {
	return c.params().values()
}

func (c *CompoundPendulum) SetParam(name string, value float64) error {
	return c.params().set(name, value)
}
