package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// KapitzaPendulum is a damped pendulum whose pivot oscillates vertically as
// a·sin(ωt). State is [θ, θ'] with θ measured from the upright position.
// The drive makes it time dependent, so it has no conserved energy.
type KapitzaPendulum struct {
	Mass      float64
	Length    float64
	Amplitude float64
	Frequency float64
	Damping   float64
	Gravity   float64
}

func NewKapitzaPendulum() *KapitzaPendulum {
	return &KapitzaPendulum{
		Mass:      1.0,
		Length:    1.0,
		Amplitude: 0.1,
		Frequency: 2 * math.Pi * 40,
		Damping:   3.0,
		Gravity:   StandardGravity,
	}
}

func (k *KapitzaPendulum) StateDim() int {
	return 2
}

func (k *KapitzaPendulum) Derive(x dynamo.State, t float64) dynamo.State {
	th, w := x[0], x[1]
	drive := -k.Amplitude * k.Frequency * k.Frequency * math.Sin(k.Frequency*t)
	alpha := (-k.Damping*w + k.Length*k.Mass*(drive+k.Gravity)*math.Sin(th)) /
		(k.Length * k.Length * k.Mass)
	return dynamo.State{w, alpha}
}

// PivotHeight is the vertical pivot offset at time t.
func (k *KapitzaPendulum) PivotHeight(t float64) float64 {
	return k.Amplitude * math.Sin(k.Frequency*t)
}

// Stabilized reports whether the drive satisfies a²ω² > 2gℓ, the condition
// for the inverted position to be stable.
func (k *KapitzaPendulum) Stabilized() bool {
	return k.Amplitude*k.Amplitude*k.Frequency*k.Frequency > 2*k.Gravity*k.Length
}

func (k *KapitzaPendulum) DefaultState() dynamo.State {
	return dynamo.State{0.1, 0}
}

func (k *KapitzaPendulum) params() paramTable {
	return paramTable{
		"mass":      &k.Mass,
		"length":    &k.Length,
		"amplitude": &k.Amplitude,
		"frequency": &k.Frequency,
		"damping":   &k.Damping,
		"gravity":   &k.Gravity,
	}
}

func (k *KapitzaPendulum) GetParams() map[string]float64 {
	return k.params().values()
}

func (k *KapitzaPendulum) SetParam(name string, value float64) error {
	if (name == "mass" || name == "length") && value <= 0 {
		return fmt.Errorf("%s must be positive: %w", name, dynamo.ErrParameterBounds)
	}
	return k.params().set(name, value)
}
