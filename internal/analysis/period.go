package analysis

import (
	"errors"
	"fmt"

	"github.com/san-kum/lagrange/internal/dynamo"
)

var ErrNoOscillation = errors.New("analysis: fewer than two zero crossings")

// ZeroCrossings returns the times at which component j changes sign,
// located by linear interpolation between neighbouring samples.
func ZeroCrossings(tr *dynamo.Trajectory, j int) []float64 {
	if j < 0 || j >= tr.Dim() {
		return nil
	}
	col := tr.Column(j)
	times := tr.Times()

	var out []float64
	for i := 1; i < len(col); i++ {
		a, b := col[i-1], col[i]
		if (a < 0 && b >= 0) || (a > 0 && b <= 0) {
			frac := a / (a - b)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period estimates the oscillation period of component j. Successive
// zero crossings are half a period apart.
func Period(tr *dynamo.Trajectory, j int) (float64, error) {
	if j < 0 || j >= tr.Dim() {
		return 0, fmt.Errorf("%w: component %d of %d", dynamo.ErrDimensionMismatch, j, tr.Dim())
	}
	zc := ZeroCrossings(tr, j)
	if len(zc) < 2 {
		return 0, ErrNoOscillation
	}
	return 2 * (zc[len(zc)-1] - zc[0]) / float64(len(zc)-1), nil
}
