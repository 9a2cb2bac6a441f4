package kinematics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is a planar position in world units.
type Point struct {
	X, Y float64
}

// Transform is a 3x3 planar homogeneous transform. The zero value is not
// usable; build one with the constructors below.
type Transform struct {
	m *mat.Dense
}

func newTransform(vals []float64) Transform {
	return Transform{m: mat.NewDense(3, 3, vals)}
}

func Identity() Transform {
	return newTransform([]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

func Rotation(theta float64) Transform {
	c, s := math.Cos(theta), math.Sin(theta)
	return newTransform([]float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

func Translation(x, y float64) Transform {
	return newTransform([]float64{
		1, 0, x,
		0, 1, y,
		0, 0, 1,
	})
}

func Scale(sx, sy float64) Transform {
	return newTransform([]float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})
}

// Link is the rigid transform of a rod of the given length hanging at angle
// theta from the downward vertical: Rotation(theta)·Translation(0, -length).
func Link(theta, length float64) Transform {
	c, s := math.Cos(theta), math.Sin(theta)
	return newTransform([]float64{
		c, -s, length * s,
		s, c, -length * c,
		0, 0, 1,
	})
}

// Stretch is the affine map that turns a unit-height coil into one of the
// given length, thinned so its width times length stays at width.
func Stretch(width, length float64) Transform {
	return Scale(width/length, length)
}

// Compose returns t·u, i.e. u applied first.
func (t Transform) Compose(u Transform) Transform {
	var out mat.Dense
	out.Mul(t.m, u.m)
	return Transform{m: &out}
}

// Chain composes transforms left to right: Chain(a, b, c) = a·b·c.
func Chain(ts ...Transform) Transform {
	out := Identity()
	for _, t := range ts {
		out = out.Compose(t)
	}
	return out
}

func (t Transform) Apply(p Point) Point {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var r mat.VecDense
	r.MulVec(t.m, v)
	return Point{X: r.AtVec(0), Y: r.AtVec(1)}
}

// ApplyAll maps every point through t into a fresh slice.
func (t Transform) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// Origin is the image of the local origin, the translation column.
func (t Transform) Origin() Point {
	return t.Apply(Point{})
}

func (t Transform) Det() float64 {
	return mat.Det(t.m)
}

func (t Transform) At(i, j int) float64 {
	return t.m.At(i, j)
}
