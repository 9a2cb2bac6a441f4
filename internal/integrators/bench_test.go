package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/physics"
)

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45(1e-9, 1e-10)
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _ = integrator.StepAdaptive(dyn, x, 0, 0.01)
	}
}

func BenchmarkIntegrateDoublePendulum(b *testing.B) {
	sys := physics.NewDoublePendulum()
	x0 := sys.DefaultState()
	opts := DefaultOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Resample(context.Background(), sys, x0, 15, 30, opts); err != nil {
			b.Fatal(err)
		}
	}
}
