package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// ElasticPendulum is a mass on a spring that can both swing and stretch.
// State is [θ, θ', ℓ, ℓ'] where ℓ is the extension beyond RestLength.
type ElasticPendulum struct {
	Mass       float64
	Stiffness  float64
	RestLength float64
	Gravity    float64
}

func NewElasticPendulum() *ElasticPendulum {
	return &ElasticPendulum{
		Mass:       1.0,
		Stiffness:  20.0,
		RestLength: 1.0,
		Gravity:    StandardGravity,
	}
}

func (e *ElasticPendulum) StateDim() int {
	return 4
}

func (e *ElasticPendulum) Derive(x dynamo.State, t float64) dynamo.State {
	th, w, l, ldot := x[0], x[1], x[2], x[3]
	r := l + e.RestLength

	alpha := (-2*ldot*w - e.Gravity*math.Sin(th)) / r
	accel := -l*e.Stiffness/e.Mass + r*w*w + e.Gravity*math.Cos(th)

	return dynamo.State{w, alpha, ldot, accel}
}

// Denominator is the current spring length; the equations break down as it
// reaches zero.
func (e *ElasticPendulum) Denominator(x dynamo.State) float64 {
	return x[2] + e.RestLength
}

func (e *ElasticPendulum) Energy(x dynamo.State) float64 {
	th, w, l, ldot := x[0], x[1], x[2], x[3]
	r := e.RestLength + l
	ke := 0.5 * e.Mass * (ldot*ldot + r*r*w*w)
	pe := 0.5*e.Stiffness*l*l - e.Mass*e.Gravity*r*math.Cos(th)
	return ke + pe
}

func (e *ElasticPendulum) DefaultState() dynamo.State {
	return dynamo.State{15 * math.Pi / 180, 0, 0.25, 0}
}

func (e *ElasticPendulum) params() paramTable {
	return paramTable{
		"mass":        &e.Mass,
		"stiffness":   &e.Stiffness,
		"rest_length": &e.RestLength,
		"gravity":     &e.Gravity,
	}
}

func (e *ElasticPendulum) GetParams() map[string]float64 {
	return e.params().values()
}

func (e *ElasticPendulum) SetParam(name string, value float64) error {
	if name != "gravity" && value <= 0 {
		return fmt.Errorf("%s must be positive: %w", name, dynamo.ErrParameterBounds)
	}
	return e.params().set(name, value)
}
