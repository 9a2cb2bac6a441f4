package kinematics

import (
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Mapper turns a state into Cartesian geometry. Map must be pure: the same
// (x, t) always yields an identical Configuration.
type Mapper interface {
	Map(x dynamo.State, t float64) Configuration
}

const (
	defaultCoils      = 30
	massRadius        = 0.08
	pivotRadius       = 0.03
	springMassRadius  = 0.25
	elasticCoilWidth  = 2.0
	verticalCoilWidth = 8.0
)

var origin = Point{}

type PendulumMapper struct {
	Length float64
}

func (m PendulumMapper) Map(x dynamo.State, t float64) Configuration {
	bob := Link(x[0], m.Length).Origin()
	return Configuration{
		Bodies: []Body{
			{Role: RolePivot, Pos: origin, Radius: pivotRadius},
			{Role: RoleMass, Pos: bob, Radius: massRadius},
		},
		Segments: []Segment{{From: 0, To: 1, Width: 1}},
	}
}

// DoublePendulumMapper places two links with the second angle relative to
// the first. Rods marks uniform rods rather than point masses on strings.
type DoublePendulumMapper struct {
	L1, L2 float64
	Rods   bool
}

// Joints returns the two link end points Tsa·o and Tsb·o.
func (m DoublePendulumMapper) Joints(x dynamo.State) (Point, Point) {
	tsa := Link(x[0], m.L1)
	tsb := tsa.Compose(Link(x[2], m.L2))
	return tsa.Origin(), tsb.Origin()
}

func (m DoublePendulumMapper) Map(x dynamo.State, t float64) Configuration {
	p1, p2 := m.Joints(x)

	width, mid := 1.0, RoleMass
	radius := massRadius
	if m.Rods {
		width, mid = 4.0, RoleJoint
		radius = pivotRadius
	}
	return Configuration{
		Bodies: []Body{
			{Role: RolePivot, Pos: origin, Radius: pivotRadius},
			{Role: mid, Pos: p1, Radius: radius},
			{Role: RoleMass, Pos: p2, Radius: radius},
		},
		Segments: []Segment{
			{From: 0, To: 1, Width: width},
			{From: 1, To: 2, Width: width},
		},
	}
}

// ElasticMapper draws a swinging spring. The coil is stretched to the
// current length ℓ0+ℓ of the state being mapped, never a stored one.
type ElasticMapper struct {
	RestLength float64
	Coils      int
}

func (m ElasticMapper) Map(x dynamo.State, t float64) Configuration {
	length := m.RestLength + x[2]
	coil := Chain(Rotation(x[0]), Stretch(elasticCoilWidth, length)).ApplyAll(GenerateSpring(m.coils()))
	bob := Point{X: length * math.Sin(x[0]), Y: -length * math.Cos(x[0])}

	return Configuration{
		Bodies: []Body{
			{Role: RolePivot, Pos: origin, Radius: pivotRadius},
			{Role: RoleMass, Pos: bob, Radius: massRadius},
		},
		Polylines: [][]Point{coil},
	}
}

func (m ElasticMapper) coils() int {
	if m.Coils <= 0 {
		return defaultCoils
	}
	return m.Coils
}

// SpringMassMapper draws a vertical spring hanging from the origin with the
// mass at depth RestLength+x.
type SpringMassMapper struct {
	RestLength float64
	Coils      int
}

func (m SpringMassMapper) Map(x dynamo.State, t float64) Configuration {
	length := m.RestLength + x[0]
	coils := m.Coils
	if coils <= 0 {
		coils = defaultCoils
	}
	coil := Stretch(verticalCoilWidth, length).ApplyAll(GenerateSpring(coils))

	return Configuration{
		Bodies: []Body{
			{Role: RolePivot, Pos: origin, Radius: pivotRadius},
			{Role: RoleMass, Pos: Point{X: 0, Y: -length}, Radius: springMassRadius},
		},
		Polylines: [][]Point{coil},
	}
}

// KapitzaMapper draws an inverted pendulum on a pivot oscillating as
// Amplitude·sin(Frequency·t).
type KapitzaMapper struct {
	Length    float64
	Amplitude float64
	Frequency float64
}

func (m KapitzaMapper) Map(x dynamo.State, t float64) Configuration {
	lift := Translation(0, m.Amplitude*math.Sin(m.Frequency*t))
	pivot := lift.Origin()
	// θ is measured from upright, clockwise.
	bob := lift.Compose(Link(math.Pi-x[0], m.Length)).Origin()

	return Configuration{
		Bodies: []Body{
			{Role: RolePivot, Pos: pivot, Radius: pivotRadius},
			{Role: RoleMass, Pos: bob, Radius: massRadius},
		},
		Segments: []Segment{{From: 0, To: 1, Width: 1}},
	}
}
