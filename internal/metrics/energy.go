package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lagrange/internal/dynamo"
)

// Energy reports the mean total energy over the observed samples and keeps
// the series for spread statistics.
type Energy struct {
	name   string
	sys    dynamo.Hamiltonian
	values []float64
}

func NewEnergy(sys dynamo.Hamiltonian) *Energy {
	return &Energy{name: "energy", sys: sys}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	e.values = append(e.values, e.sys.Energy(x))
}

func (e *Energy) Value() float64 {
	if len(e.values) == 0 {
		return 0
	}
	return stat.Mean(e.values, nil)
}

// StdDev is the sample standard deviation of the observed energies.
func (e *Energy) StdDev() float64 {
	if len(e.values) < 2 {
		return 0
	}
	return stat.StdDev(e.values, nil)
}

func (e *Energy) Reset() {
	e.values = e.values[:0]
}

// EnergyDrift is the largest deviation of energy from its first observed
// value, relative to that value. When the initial energy is near zero the
// deviation is reported in absolute terms.
type EnergyDrift struct {
	name          string
	sys           dynamo.Hamiltonian
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(sys dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", sys: sys}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	scale := math.Abs(e.initialEnergy)
	if scale < 1 {
		scale = 1
	}
	e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e.initialEnergy)/scale)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
