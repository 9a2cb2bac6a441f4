package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/integrators"
)

// Separation returns the Euclidean distance between two trajectories at
// every sample. Both must share the same time column.
func Separation(a, b *dynamo.Trajectory) ([]float64, error) {
	if a.Len() != b.Len() || a.Dim() != b.Dim() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", dynamo.ErrDimensionMismatch, a.Len(), a.Dim(), b.Len(), b.Dim())
	}
	if !floats.Equal(a.Times(), b.Times()) {
		return nil, fmt.Errorf("%w: time columns differ", dynamo.ErrDimensionMismatch)
	}

	sep := make([]float64, a.Len())
	for i := range sep {
		sep[i] = floats.Distance(a.State(i), b.State(i), 2)
	}
	return sep, nil
}

// LyapunovExponent fits ln(separation) against time by least squares and
// returns the slope. Samples with zero separation are skipped, as are
// those after the separation first exceeds saturate (0 = no limit), since
// growth stops being exponential once the trajectories decorrelate.
// A positive value indicates chaos.
func LyapunovExponent(a, b *dynamo.Trajectory, saturate float64) (float64, error) {
	sep, err := Separation(a, b)
	if err != nil {
		return 0, err
	}

	times := a.Times()
	xs := make([]float64, 0, len(sep))
	ys := make([]float64, 0, len(sep))
	for i, d := range sep {
		if saturate > 0 && d > saturate {
			break
		}
		if d <= 0 {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, math.Log(d))
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: %d usable samples", dynamo.ErrInvalidSamples, len(xs))
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope, nil
}

// EstimateLyapunov integrates x0 and a copy with component j shifted by
// delta over the same grid and fits the exponent of their separation.
func EstimateLyapunov(ctx context.Context, sys dynamo.System, x0 dynamo.State, j int, delta float64, span dynamo.Span, n int, opts integrators.Options) (float64, error) {
	if j < 0 || j >= len(x0) {
		return 0, fmt.Errorf("%w: component %d of %d", dynamo.ErrDimensionMismatch, j, len(x0))
	}
	a, err := integrators.Integrate(ctx, sys, span, x0, n, opts)
	if err != nil {
		return 0, err
	}
	xp := x0.Clone()
	xp[j] += delta
	b, err := integrators.Integrate(ctx, sys, span, xp, n, opts)
	if err != nil {
		return 0, err
	}
	return LyapunovExponent(a, b, 1)
}
