package integrators

import (
	"math"

	"github.com/san-kum/lagrange/internal/dynamo"
)

var _ dynamo.AdaptiveIntegrator = (*RK45)(nil)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince 5(4) embedded pair. The error of each step is
// measured as an RMS norm scaled by AbsTol + RelTol·max(|x|, |x_new|).
type RK45 struct {
	RelTol float64
	AbsTol float64

	safety   float64
	minScale float64
	maxScale float64

	scratch dynamo.State
}

func NewRK45(relTol, absTol float64) *RK45 {
	return &RK45{
		RelTol:   relTol,
		AbsTol:   absTol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	xNew, _ := r.StepAdaptive(sys, x, t, dt)
	return xNew
}

func (r *RK45) stage(x dynamo.State, dt float64, ks []dynamo.State, bs ...float64) dynamo.State {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}
	for i := 0; i < n; i++ {
		acc := 0.0
		for j, b := range bs {
			acc += b * ks[j][i]
		}
		r.scratch[i] = x[i] + dt*acc
	}
	return r.scratch
}

func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, float64) {
	n := len(x)

	k1 := sys.Derive(x, t)
	k2 := sys.Derive(r.stage(x, dt, []dynamo.State{k1}, b21), t+a2*dt)
	k3 := sys.Derive(r.stage(x, dt, []dynamo.State{k1, k2}, b31, b32), t+a3*dt)
	k4 := sys.Derive(r.stage(x, dt, []dynamo.State{k1, k2, k3}, b41, b42, b43), t+a4*dt)
	k5 := sys.Derive(r.stage(x, dt, []dynamo.State{k1, k2, k3, k4}, b51, b52, b53, b54), t+a5*dt)
	k6 := sys.Derive(r.stage(x, dt, []dynamo.State{k1, k2, k3, k4, k5}, b61, b62, b63, b64, b65), t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	if !xNew.IsValid() {
		return xNew, math.Inf(1)
	}

	k7 := sys.Derive(xNew, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.AbsTol + r.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	errNorm := math.Sqrt(sum / float64(n))
	if math.IsNaN(errNorm) {
		errNorm = math.Inf(1)
	}

	return xNew, errNorm
}

// NextStep proposes the following step size from the error of the last one.
func (r *RK45) NextStep(dt, errNorm float64) float64 {
	switch {
	case errNorm == 0:
		return dt * r.maxScale
	case math.IsInf(errNorm, 1):
		return dt * r.minScale
	case errNorm > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	default:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	}
}
