package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Pendulum is a point mass on a massless rod. State is [θ, θ'] with θ
// measured from the downward vertical.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.0,
		Gravity: StandardGravity,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) Derive(x dynamo.State, t float64) dynamo.State {
	theta := x[0]
	omega := x[1]

	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta)) / (p.Mass * p.Length * p.Length)

	return dynamo.State{omega, alpha}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	v := p.Length * x[1]
	ke := 0.5 * p.Mass * v * v
	pe := p.Mass * p.Gravity * p.Length * (1.0 - math.Cos(x[0]))
	return ke + pe
}

// SmallAnglePeriod is 2π√(ℓ/g).
func (p *Pendulum) SmallAnglePeriod() float64 {
	return 2 * math.Pi * math.Sqrt(p.Length/p.Gravity)
}

func (p *Pendulum) DefaultState() dynamo.State {
	return dynamo.State{math.Pi / 6, 0}
}

func (p *Pendulum) params() paramTable {
	return paramTable{
		"mass":    &p.Mass,
		"length":  &p.Length,
		"damping": &p.Damping,
		"gravity": &p.Gravity,
	}
}

func (p *Pendulum) GetParams() map[string]float64 {
	return p.params().values()
}

func (p *Pendulum) SetParam(name string, value float64) error {
	if (name == "mass" || name == "length") && value <= 0 {
		return fmt.Errorf("%s must be positive: %w", name, dynamo.ErrParameterBounds)
	}
	return p.params().set(name, value)
}
