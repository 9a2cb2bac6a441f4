package dynamo

import (
	"fmt"
	"math"
)

// State holds generalized coordinates and their velocities, interleaved as
// [q1, q1', q2, q2', ...].
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Coords returns the generalized coordinates (even slots).
func (s State) Coords() []float64 {
	q := make([]float64, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		q = append(q, s[i])
	}
	return q
}

// System is a closed-form equation of motion. Derive must be pure.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is implemented by systems with a conserved mechanical energy
// when undamped and undriven.
type Hamiltonian interface {
	Energy(x State) float64
}

// Singular is implemented by systems whose mass matrix can degenerate.
// Denominator returns the quantity the equations divide by.
type Singular interface {
	Denominator(x State) float64
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Initializer supplies the reference initial condition for a system.
type Initializer interface {
	DefaultState() State
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator takes one embedded step and reports the scaled error
// norm of that step. A norm <= 1 means the step is acceptable.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt float64) (State, float64)
	NextStep(dt, errNorm float64) float64
}

// Span is a closed integration interval [Start, End].
type Span struct {
	Start float64
	End   float64
}

func (s Span) Duration() float64 {
	return s.End - s.Start
}

func (s Span) Valid() bool {
	return !math.IsNaN(s.Start) && !math.IsNaN(s.End) &&
		!math.IsInf(s.Start, 0) && !math.IsInf(s.End, 0) &&
		s.End > s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%g, %g]", s.Start, s.End)
}

type Stats struct {
	Evaluations int `json:"evaluations"`
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
}
