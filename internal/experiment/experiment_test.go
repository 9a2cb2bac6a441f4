package experiment

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/lagrange/internal/config"
	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/integrators"
	"github.com/san-kum/lagrange/internal/metrics"
	"github.com/san-kum/lagrange/internal/physics"
)

func TestRegistry_Systems(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{
		"compound_pendulum", "double_pendulum", "elastic_pendulum",
		"kapitza", "pendulum", "spring_mass",
	}, reg.ListSystems())

	for _, name := range reg.ListSystems() {
		entry, err := reg.Lookup(name)
		require.NoError(t, err)
		sys := entry.New()
		init, ok := sys.(dynamo.Initializer)
		require.True(t, ok, name)

		x0 := init.DefaultState()
		cfg := entry.Mapper(sys).Map(x0, 0)
		assert.NotEmpty(t, cfg.Masses(), name)
	}

	_, err := reg.GetSystem("cartpole")
	assert.Error(t, err)
}

func TestEntry_AngleSlots(t *testing.T) {
	reg := NewRegistry()
	tests := map[string][]int{
		"pendulum":          {0},
		"double_pendulum":   {0, 2},
		"compound_pendulum": {0, 2},
		"elastic_pendulum":  {0},
		"spring_mass":       nil,
	}
	for name, want := range tests {
		entry, err := reg.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, want, entry.AngleSlots(), name)
	}
}

func TestRegistry_MapperFollowsParams(t *testing.T) {
	reg := NewRegistry()
	cfg := config.DefaultConfig()
	cfg.Params = map[string]float64{"length": 2}

	e, err := New(reg, cfg)
	require.NoError(t, err)

	masses := e.Mapper().Map(dynamo.State{0, 0}, 0).Masses()
	require.Len(t, masses, 1)
	assert.InDelta(t, -2, masses[0].Y, 1e-12)
}

func TestNew_Rejects(t *testing.T) {
	reg := NewRegistry()

	cfg := config.DefaultConfig()
	cfg.System = "nbody"
	_, err := New(reg, cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig()
	cfg.Initial = []float64{1, 2, 3}
	_, err = New(reg, cfg)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)

	cfg = config.DefaultConfig()
	cfg.Params = map[string]float64{"mass": 0}
	_, err = New(reg, cfg)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestRun_Pendulum(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	cfg := config.GetPreset("pendulum", "thirty")
	cfg.Duration = 2
	e, err := New(NewRegistry(), cfg, WithCollector(collector))
	require.NoError(t, err)
	assert.Equal(t, 61, e.Samples())

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	tr := res.Trajectory
	assert.Equal(t, 61, tr.Len())
	assert.Equal(t, 2.0, tr.Time(tr.Len()-1))
	assert.InDelta(t, math.Pi/6, tr.State(0)[0], 1e-15)
	assert.Less(t, res.Metrics["energy_drift"], 1e-6)
	assert.Equal(t, 0.0, res.Metrics["revolutions"], "a 30 degree swing never goes over the top")

	evals := testutil.ToFloat64(collector.Evaluations.WithLabelValues("pendulum"))
	assert.Equal(t, float64(tr.Stats().Evaluations), evals)
	assert.Equal(t, float64(tr.Stats().Accepted), testutil.ToFloat64(collector.Steps.WithLabelValues("pendulum", "accepted")))

	meta := e.Metadata(res)
	assert.Equal(t, "pendulum", meta.System)
	assert.Equal(t, integrators.MethodRK45, meta.Integrator)
	assert.InDeltaSlice(t, []float64{math.Pi / 6, 0}, meta.Initial, 1e-15)
	assert.Contains(t, meta.Params, "length")
}

func TestRun_FixedStep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.System = "spring_mass"
	cfg.Integrator = integrators.MethodRK4
	cfg.Duration = 1

	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/300, e.Options().InitialStep, 1e-15)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	sm := physics.NewSpringMass()
	last := res.Trajectory.Len() - 1
	want := sm.Analytic(e.Initial(), res.Trajectory.Time(last))
	assert.InDelta(t, want[0], res.Trajectory.State(last)[0], 1e-6)
}

func TestRunEnsemble(t *testing.T) {
	cfg := config.GetPreset("double_pendulum", "ensemble")
	cfg.Duration = 0.5
	cfg.Ensemble.Members = 3

	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)

	ens, err := e.RunEnsemble(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, ens.Len())
	assert.Equal(t, e.Samples(), ens.Samples())

	want := ens.Member(0).Trajectory.Times()
	for i := 1; i < ens.Len(); i++ {
		assert.Equal(t, want, ens.Member(i).Trajectory.Times())
	}

	cfg.Ensemble.Index = 9
	_, err = e.Ensemble()
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.GetPreset("elastic_pendulum", "default")
	cfg.Duration = 0.2
	cfg.Render.Width = 120
	cfg.Render.Color = "#1f77b4"
	cfg.Render.Trail = 5

	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	frames := 0
	gif := filepath.Join(dir, "elastic.gif")
	require.NoError(t, e.Animate(context.Background(), res.Trajectory, gif, func(int) { frames++ }))
	assert.FileExists(t, gif)
	assert.Equal(t, res.Trajectory.Len(), frames)

	still := filepath.Join(dir, "still.png")
	require.NoError(t, e.Still(res.Trajectory, 0, still))
	assert.FileExists(t, still)
	assert.ErrorIs(t, e.Still(res.Trajectory, 99, still), dynamo.ErrInvalidSamples)

	paths, err := e.Plots(res.Trajectory, dir)
	require.NoError(t, err)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	series := e.Series(res.Trajectory)
	require.Len(t, series, 4)
	assert.Equal(t, "ℓ", series[2].Name)
}

func TestAnimate_Panels(t *testing.T) {
	dir := t.TempDir()
	cfg := config.GetPreset("pendulum", "thirty")
	cfg.Duration = 0.2
	cfg.Speed = 0.5
	cfg.Render.Width = 120

	for _, panel := range []string{"timeseries", "phase", "dashboard"} {
		t.Run(panel, func(t *testing.T) {
			cfg := cfg.Clone()
			cfg.Render.Panel = panel
			e, err := New(NewRegistry(), cfg)
			require.NoError(t, err)
			res, err := e.Run(context.Background())
			require.NoError(t, err)

			frames := 0
			out := filepath.Join(dir, panel+".gif")
			require.NoError(t, e.Animate(context.Background(), res.Trajectory, out, func(int) { frames++ }))
			assert.FileExists(t, out)
			assert.Equal(t, res.Trajectory.Len(), frames)
		})
	}

	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	d, err := e.Dashboard(res.Trajectory)
	require.NoError(t, err)
	assert.Len(t, d.Series, 2)
	assert.Equal(t, "pendulum", d.Title)
	assert.Equal(t, 0, d.PhaseX)
	assert.Equal(t, 1, d.PhaseY)
}

func TestAnimate_BadColor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 0.1
	cfg.Render.Color = "teal"
	e, err := New(NewRegistry(), cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	var rerr *dynamo.RenderError
	err = e.Animate(context.Background(), res.Trajectory, filepath.Join(t.TempDir(), "x.gif"), nil)
	assert.ErrorAs(t, err, &rerr)
}
