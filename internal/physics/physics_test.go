package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lagrange/internal/dynamo"
)

type conservative interface {
	dynamo.System
	dynamo.Hamiltonian
}

// energyRate is dE/dt along the flow, by central difference.
func energyRate(sys conservative, x dynamo.State) float64 {
	const h = 1e-6
	d := sys.Derive(x, 0)
	xp := x.Clone()
	xm := x.Clone()
	for i := range x {
		xp[i] += h * d[i]
		xm[i] -= h * d[i]
	}
	return (sys.Energy(xp) - sys.Energy(xm)) / (2 * h)
}

func TestEnergyConservedAlongFlow(t *testing.T) {
	tests := []struct {
		name string
		sys  conservative
	}{
		{"pendulum", NewPendulum()},
		{"spring_mass", NewSpringMass()},
		{"double_pendulum", NewDoublePendulum()},
		{"compound_pendulum", NewCompoundPendulum()},
		{"elastic_pendulum", NewElasticPendulum()},
	}

	rng := rand.New(rand.NewSource(7))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				x := make(dynamo.State, tt.sys.StateDim())
				for j := range x {
					x[j] = rng.Float64()*4 - 2
				}
				if _, ok := tt.sys.(*ElasticPendulum); ok {
					x[2] = rng.Float64()*1.2 - 0.5
				}
				assert.InDelta(t, 0, energyRate(tt.sys, x), 1e-5, "state %v", x)
			}
		})
	}
}

func TestRestIsEquilibrium(t *testing.T) {
	tests := []struct {
		name string
		sys  dynamo.System
		x    dynamo.State
	}{
		{"pendulum", NewPendulum(), dynamo.State{0, 0}},
		{"double_pendulum", NewDoublePendulum(), dynamo.State{0, 0, 0, 0}},
		{"compound_pendulum", NewCompoundPendulum(), dynamo.State{0, 0, 0, 0}},
		{"spring_mass", NewSpringMass(), dynamo.State{StandardGravity / 40, 0}},
		{"elastic_pendulum", NewElasticPendulum(), dynamo.State{0, 0, StandardGravity / 20, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.sys.Derive(tt.x, 0)
			for i, v := range d {
				assert.InDelta(t, 0, v, 1e-12, "component %d", i)
			}
		})
	}
}

func TestDeriveIsPure(t *testing.T) {
	sys := NewCompoundPendulum()
	x := sys.DefaultState()
	before := x.Clone()
	a := sys.Derive(x, 1.2)
	b := sys.Derive(x, 1.2)
	assert.Equal(t, before, x)
	assert.Equal(t, a, b)
}

func TestDoublePendulum_DenominatorNeverVanishes(t *testing.T) {
	dp := NewDoublePendulum()
	cp := NewCompoundPendulum()
	for th := -math.Pi; th <= math.Pi; th += 0.01 {
		x := dynamo.State{0, 0, th, 0}
		assert.GreaterOrEqual(t, dp.Denominator(x), 1.0-1e-12)
		assert.GreaterOrEqual(t, cp.Denominator(x), 19.0-1e-9)
		assert.LessOrEqual(t, cp.Denominator(x), 68.0+1e-9)
	}
	assert.InDelta(t, 19.0, cp.Denominator(dynamo.State{0, 0, math.Pi, 0}), 1e-12)
}

func TestSpringMass_Analytic(t *testing.T) {
	s := NewSpringMass()
	assert.InDelta(t, math.Sqrt(40), s.AngularFrequency(), 1e-12)

	x0 := dynamo.State{0, 0}
	for _, tm := range []float64{0, 0.3, 1.7, 4.2} {
		want := s.Mass * s.Gravity / s.Stiffness * (1 - math.Cos(math.Sqrt(40)*tm))
		assert.InDelta(t, want, s.Analytic(x0, tm)[0], 1e-12)
	}
}

func TestPendulum_SmallAnglePeriod(t *testing.T) {
	p := NewPendulum()
	assert.InDelta(t, 2.006, p.SmallAnglePeriod(), 1e-3)
}

func TestKapitza_Drive(t *testing.T) {
	k := NewKapitzaPendulum()
	assert.True(t, k.Stabilized())
	assert.InDelta(t, 0, k.PivotHeight(0), 1e-15)

	// Upright and at rest with no pivot acceleration, the pendulum is in
	// unstable equilibrium.
	d := k.Derive(dynamo.State{0, 0}, 0)
	assert.InDelta(t, 0, d[1], 1e-12)
}

func TestSetParam(t *testing.T) {
	p := NewPendulum()
	require.NoError(t, p.SetParam("length", 2))
	assert.Equal(t, 2.0, p.GetParams()["length"])

	err := p.SetParam("length", -1)
	assert.True(t, errors.Is(err, dynamo.ErrParameterBounds))

	assert.Error(t, p.SetParam("nonexistent", 1))

	e := NewElasticPendulum()
	require.NoError(t, e.SetParam("gravity", 1.62))
	assert.Error(t, e.SetParam("rest_length", 0))
}

func TestParamNames_Sorted(t *testing.T) {
	names := ParamNames(NewKapitzaPendulum().GetParams())
	assert.Equal(t, []string{"amplitude", "damping", "frequency", "gravity", "length", "mass"}, names)
}
