package kinematics

import "math"

type Role int

const (
	RolePivot Role = iota
	RoleJoint
	RoleMass
)

func (r Role) String() string {
	switch r {
	case RolePivot:
		return "pivot"
	case RoleJoint:
		return "joint"
	default:
		return "mass"
	}
}

type Body struct {
	Role   Role
	Pos    Point
	Radius float64
}

// Segment joins two bodies by index. Width is relative, 1 for a thin rod.
type Segment struct {
	From, To int
	Width    float64
}

// Configuration is the Cartesian geometry of one state. Mappers return a
// fresh value on every call.
type Configuration struct {
	Bodies    []Body
	Segments  []Segment
	Polylines [][]Point
}

// Masses returns the positions of all mass bodies in order.
func (c Configuration) Masses() []Point {
	var out []Point
	for _, b := range c.Bodies {
		if b.Role == RoleMass {
			out = append(out, b.Pos)
		}
	}
	return out
}

// Bounds returns the axis-aligned box containing every body and polyline
// vertex, padded by each body's radius.
func (c Configuration) Bounds() (min, max Point) {
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	grow := func(p Point, r float64) {
		min.X = math.Min(min.X, p.X-r)
		min.Y = math.Min(min.Y, p.Y-r)
		max.X = math.Max(max.X, p.X+r)
		max.Y = math.Max(max.Y, p.Y+r)
	}
	for _, b := range c.Bodies {
		grow(b.Pos, b.Radius)
	}
	for _, pl := range c.Polylines {
		for _, p := range pl {
			grow(p, 0)
		}
	}
	return min, max
}
