package metrics

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/physics"
)

func trajectory(t *testing.T, states ...dynamo.State) *dynamo.Trajectory {
	t.Helper()
	times := make([]float64, len(states))
	for i := range times {
		times[i] = float64(i)
	}
	tr, err := dynamo.NewTrajectory(times, states, dynamo.Stats{})
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestEnergy_Mean(t *testing.T) {
	p := physics.NewPendulum()
	m := NewEnergy(p)

	theta := math.Pi / 4
	m.Observe(dynamo.State{theta, 0}, 0)
	expected := 9.81 * (1 - math.Cos(theta))
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}
	if m.StdDev() != 0 {
		t.Errorf("single sample should have no spread, got %f", m.StdDev())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	p := physics.NewPendulum()
	tests := []struct {
		name   string
		states []dynamo.State
		want   float64
	}{
		{"constant", []dynamo.State{{0.3, 0}, {0.3, 0}}, 0},
		// E0 = 9.81 (horizontal), E1 = 9.81 + 0.5·1² → drift 0.5/9.81.
		{"relative", []dynamo.State{{math.Pi / 2, 0}, {math.Pi / 2, 1}}, 0.5 / 9.81},
		// Near-zero initial energy is measured absolutely.
		{"absolute", []dynamo.State{{0, 0}, {0, 0.2}}, 0.02},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(trajectory(t, tt.states...), NewEnergyDrift(p))["energy_drift"]
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("drift = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRevolutions(t *testing.T) {
	tests := []struct {
		name   string
		slots  []int
		states []dynamo.State
		want   float64
	}{
		{"swinging", []int{0}, []dynamo.State{{0.5, 0}, {-2.9, 0}, {3.0, 0}}, 0},
		// 3.0 → 3.3 crosses π, 3.3 → 9.5 crosses 3π.
		{"spinning", []int{0}, []dynamo.State{{3.0, 0}, {3.3, 0}, {9.5, 0}}, 2},
		{"back over the top", []int{0}, []dynamo.State{{3.0, 0}, {3.3, 0}, {3.0, 0}}, 2},
		// Slot 1 is a velocity and is not counted.
		{"angle slots only", []int{0, 2}, []dynamo.State{{0, 0, 0, 0}, {0, 50, -3.3, 0}}, 1},
		{"out of range slot", []int{4}, []dynamo.State{{0, 0}, {7, 0}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(trajectory(t, tt.states...), NewRevolutions(tt.slots...))["revolutions"]
			if got != tt.want {
				t.Errorf("revolutions = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRevolutions_Reset(t *testing.T) {
	r := NewRevolutions(0)
	tr := trajectory(t, dynamo.State{0, 0}, dynamo.State{4, 0})
	Evaluate(tr, r)
	if got := Evaluate(tr, r)["revolutions"]; got != 1 {
		t.Errorf("second evaluation = %v, want 1", got)
	}
}

func TestDefault(t *testing.T) {
	if n := len(Default(physics.NewKapitzaPendulum(), 0)); n != 1 {
		t.Errorf("driven system should only count revolutions, got %d metrics", n)
	}
	if n := len(Default(physics.NewDoublePendulum(), 0, 2)); n != 3 {
		t.Errorf("expected 3 metrics, got %d", n)
	}
	if n := len(Default(physics.NewSpringMass())); n != 2 {
		t.Errorf("spring has no angles, expected 2 metrics, got %d", n)
	}
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	obs := c.StepObserver("pendulum")
	obs.OnStep(0, 0.01, true)
	obs.OnStep(0.01, 0.02, false)
	obs.OnStep(0.01, 0.005, true)
	c.RecordRun("pendulum", dynamo.Stats{Evaluations: 21})
	frame := c.FrameCounter("gif")
	frame(0)
	frame(1)

	if got := testutil.ToFloat64(c.Steps.WithLabelValues("pendulum", "accepted")); got != 2 {
		t.Errorf("accepted = %v", got)
	}
	if got := testutil.ToFloat64(c.Steps.WithLabelValues("pendulum", "rejected")); got != 1 {
		t.Errorf("rejected = %v", got)
	}
	if got := testutil.ToFloat64(c.Evaluations.WithLabelValues("pendulum")); got != 21 {
		t.Errorf("evaluations = %v", got)
	}
	if got := testutil.ToFloat64(c.Frames.WithLabelValues("gif")); got != 2 {
		t.Errorf("frames = %v", got)
	}

	// Registering twice reuses the existing collectors.
	again, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}
	if again.Steps != c.Steps {
		t.Error("expected existing counter vec to be reused")
	}

	path := filepath.Join(t.TempDir(), "lagrange.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "lagrange_integrator_steps_total") {
		t.Errorf("textfile missing steps metric:\n%s", data)
	}
}
