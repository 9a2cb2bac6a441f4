package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// SpringMass is a mass hanging from a vertical spring. State is [x, x']
// with x the downward extension from the unstretched length.
type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
	Gravity   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      1.0,
		Stiffness: 40.0,
		Damping:   0.0,
		Gravity:   StandardGravity,
	}
}

func (s *SpringMass) StateDim() int {
	return 2
}

func (s *SpringMass) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{
		x[1],
		s.Gravity - s.Stiffness*x[0]/s.Mass - s.Damping*x[1]/s.Mass,
	}
}

// Energy counts gravity as a negative potential below the spring's rest point.
func (s *SpringMass) Energy(x dynamo.State) float64 {
	return 0.5*s.Mass*x[1]*x[1] + 0.5*s.Stiffness*x[0]*x[0] - s.Mass*s.Gravity*x[0]
}

func (s *SpringMass) AngularFrequency() float64 {
	return math.Sqrt(s.Stiffness / s.Mass)
}

// Equilibrium is the static extension mg/k.
func (s *SpringMass) Equilibrium() float64 {
	return s.Mass * s.Gravity / s.Stiffness
}

// Analytic returns the exact undamped solution from x0 at time t.
func (s *SpringMass) Analytic(x0 dynamo.State, t float64) dynamo.State {
	w := s.AngularFrequency()
	eq := s.Equilibrium()
	u0 := x0[0] - eq
	c, sn := math.Cos(w*t), math.Sin(w*t)
	return dynamo.State{
		eq + u0*c + x0[1]/w*sn,
		-u0*w*sn + x0[1]*c,
	}
}

func (s *SpringMass) DefaultState() dynamo.State {
	return dynamo.State{0, 0}
}

func (s *SpringMass) params() paramTable {
	return paramTable{
		"mass":      &s.Mass,
		"stiffness": &s.Stiffness,
		"damping":   &s.Damping,
		"gravity":   &s.Gravity,
	}
}

func (s *SpringMass) GetParams() map[string]float64 {
	return s.params().values()
}

func (s *SpringMass) SetParam(name string, value float64) error {
	if (name == "mass" || name == "stiffness") && value <= 0 {
		return fmt.Errorf("%s must be positive: %w", name, dynamo.ErrParameterBounds)
	}
	return s.params().set(name, value)
}
