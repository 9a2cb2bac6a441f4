package metrics

import (
	"github.com/san-kum/lagrange/internal/dynamo"
)

// Metric accumulates a scalar over the samples of a trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every sample of tr and returns the
// results by name.
func Evaluate(tr *dynamo.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	tr.Each(func(i int, t float64, x dynamo.State) {
		for _, m := range ms {
			m.Observe(x, t)
		}
	})
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns the metrics that apply to sys. angles lists the state
// slots holding angles; revolutions are only counted when there are any.
func Default(sys dynamo.System, angles ...int) []Metric {
	var ms []Metric
	if len(angles) > 0 {
		ms = append(ms, NewRevolutions(angles...))
	}
	if h, ok := sys.(dynamo.Hamiltonian); ok {
		ms = append(ms, NewEnergyDrift(h), NewEnergy(h))
	}
	return ms
}
