package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/lagrange/internal/dynamo"
)

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	for i := 0; i < 100; i++ {
		x = integ.Step(&harmonicOscillator{}, x, float64(i)*dt, dt)
	}
	if diff := math.Abs(x[0] - math.Cos(1)); diff > 1e-8 {
		t.Errorf("RK4 error too large: %e", diff)
	}
}

func TestRK45_StepAdaptive(t *testing.T) {
	integ := NewRK45(1e-8, 1e-10)
	x, errNorm := integ.StepAdaptive(&harmonicOscillator{}, dynamo.State{1.0, 0.0}, 0, 0.1)

	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if errNorm <= 0 || math.IsInf(errNorm, 0) {
		t.Errorf("unexpected error norm %v", errNorm)
	}
	if next := integ.NextStep(0.1, errNorm); next <= 0 {
		t.Errorf("NextStep returned invalid dt: %f", next)
	}
}

func TestRK45_NextStep(t *testing.T) {
	integ := NewRK45(1e-6, 1e-9)
	tests := []struct {
		name    string
		errNorm float64
		check   func(float64) bool
	}{
		{"exact", 0, func(dt float64) bool { return dt == 1.0 }},
		{"small error grows", 1e-6, func(dt float64) bool { return dt > 0.1 }},
		{"large error shrinks", 100, func(dt float64) bool { return dt < 0.1 && dt >= 0.02 }},
		{"invalid shrinks hard", math.Inf(1), func(dt float64) bool { return math.Abs(dt-0.02) < 1e-15 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := integ.NextStep(0.1, tt.errNorm); !tt.check(got) {
				t.Errorf("NextStep(0.1, %v) = %v", tt.errNorm, got)
			}
		})
	}
}

func TestRK45_ConvergesFifthOrder(t *testing.T) {
	integ := NewRK45(1, 1)
	errAt := func(dt float64) float64 {
		x := dynamo.State{1, 0}
		steps := int(math.Round(1 / dt))
		for i := 0; i < steps; i++ {
			x = integ.Step(&harmonicOscillator{}, x, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - math.Cos(1))
	}
	ratio := errAt(0.1) / errAt(0.05)
	if ratio < 20 {
		t.Errorf("expected roughly 32x error reduction when halving dt, got %.1f", ratio)
	}
}
