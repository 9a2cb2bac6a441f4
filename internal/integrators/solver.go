package integrators

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/lagrange/internal/dynamo"
)

const (
	MethodRK45 = "rk45"
	MethodRK4  = "rk4"
)

// Observer is notified of every attempted step.
type Observer interface {
	OnStep(t, dt float64, accepted bool)
}

type Options struct {
	Method      string
	RelTol      float64
	AbsTol      float64
	InitialStep float64 // fixed step for rk4; first trial step for rk45 (0 = auto)
	MaxStep     float64 // 0 = unbounded
	MinStep     float64
	MaxSteps    int

	// SingularTol enables the check against systems implementing
	// dynamo.Singular. Zero disables it.
	SingularTol float64

	Observer Observer
}

func DefaultOptions() Options {
	return Options{
		Method:   MethodRK45,
		RelTol:   1e-9,
		AbsTol:   1e-10,
		MinStep:  1e-12,
		MaxSteps: 2_000_000,
	}
}

// SampleTimes returns n evenly spaced times covering span, both ends included.
func SampleTimes(span dynamo.Span, n int) []float64 {
	times := make([]float64, n)
	floats.Span(times, span.Start, span.End)
	return times
}

// counting tallies right-hand side evaluations.
type counting struct {
	dynamo.System
	n int
}

func (c *counting) Derive(x dynamo.State, t float64) dynamo.State {
	c.n++
	return c.System.Derive(x, t)
}

// Integrate solves sys from x0 over span and returns the state at n evenly
// spaced output times. On any failure it returns an error and no trajectory.
func Integrate(ctx context.Context, sys dynamo.System, span dynamo.Span, x0 dynamo.State, n int, opts Options) (*dynamo.Trajectory, error) {
	if !span.Valid() {
		return nil, &dynamo.IntegrationError{Time: span.Start, Wrapped: fmt.Errorf("%w: %v", dynamo.ErrInvalidSpan, span)}
	}
	if n < 2 {
		return nil, &dynamo.IntegrationError{Time: span.Start, Wrapped: dynamo.ErrInvalidSamples}
	}
	if len(x0) != sys.StateDim() || len(x0)%2 != 0 {
		return nil, &dynamo.IntegrationError{
			Time:    span.Start,
			State:   x0.Clone(),
			Wrapped: fmt.Errorf("%w: got %d values, system has %d", dynamo.ErrDimensionMismatch, len(x0), sys.StateDim()),
		}
	}
	if !x0.IsValid() {
		return nil, &dynamo.IntegrationError{Time: span.Start, State: x0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}

	switch opts.Method {
	case MethodRK4, MethodRK45, "":
	default:
		return nil, &dynamo.IntegrationError{Time: span.Start, Wrapped: fmt.Errorf("%w: %q", dynamo.ErrUnknownMethod, opts.Method)}
	}

	times := SampleTimes(span, n)
	for i := 1; i < n; i++ {
		if !(times[i] > times[i-1]) {
			return nil, &dynamo.IntegrationError{Time: times[i], Wrapped: fmt.Errorf("%w: span too short for %d samples", dynamo.ErrInvalidSamples, n)}
		}
	}

	s := &solver{
		ctx:  ctx,
		sys:  &counting{System: sys},
		opts: opts,
	}
	if sg, ok := sys.(dynamo.Singular); ok && opts.SingularTol > 0 {
		s.singular = sg
	}

	states := make([]dynamo.State, n)
	states[0] = x0.Clone()
	if err := s.checkSingular(span.Start, x0); err != nil {
		return nil, err
	}

	var err error
	switch opts.Method {
	case MethodRK4:
		err = s.runFixed(times, states)
	default:
		err = s.runAdaptive(times, states)
	}
	if err != nil {
		return nil, err
	}

	return dynamo.NewTrajectory(times, states, dynamo.Stats{
		Evaluations: s.sys.n,
		Accepted:    s.accepted,
		Rejected:    s.rejected,
	})
}

type solver struct {
	ctx      context.Context
	sys      *counting
	opts     Options
	singular dynamo.Singular

	accepted int
	rejected int
}

func (s *solver) fail(t float64, x dynamo.State, err error) error {
	return &dynamo.IntegrationError{
		Step:    s.accepted + s.rejected,
		Time:    t,
		State:   x.Clone(),
		Wrapped: err,
	}
}

func (s *solver) observe(t, dt float64, accepted bool) {
	if accepted {
		s.accepted++
	} else {
		s.rejected++
	}
	if s.opts.Observer != nil {
		s.opts.Observer.OnStep(t, dt, accepted)
	}
}

func (s *solver) checkBudget(t float64, x dynamo.State) error {
	if err := s.ctx.Err(); err != nil {
		return s.fail(t, x, fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err))
	}
	if s.opts.MaxSteps > 0 && s.accepted+s.rejected >= s.opts.MaxSteps {
		return s.fail(t, x, dynamo.ErrMaxSteps)
	}
	return nil
}

func (s *solver) checkSingular(t float64, x dynamo.State) error {
	if s.singular == nil {
		return nil
	}
	if d := s.singular.Denominator(x); math.Abs(d) < s.opts.SingularTol {
		return &dynamo.SingularConfigurationError{Time: t, State: x.Clone(), Denominator: d}
	}
	return nil
}

func (s *solver) runAdaptive(times []float64, states []dynamo.State) error {
	stepper := NewRK45(s.opts.RelTol, s.opts.AbsTol)

	x := states[0].Clone()
	t := times[0]
	dt := s.opts.InitialStep
	if dt <= 0 {
		dt = (times[1] - times[0]) / 4
	}

	for i := 1; i < len(times); i++ {
		target := times[i]
		for t < target {
			if err := s.checkBudget(t, x); err != nil {
				return err
			}

			h := dt
			if s.opts.MaxStep > 0 && h > s.opts.MaxStep {
				h = s.opts.MaxStep
			}
			clipped := false
			if t+h >= target {
				h = target - t
				clipped = true
			}
			if !clipped && h < s.opts.MinStep {
				return s.fail(t, x, dynamo.ErrStepTooSmall)
			}

			xNew, errNorm := stepper.StepAdaptive(s.sys, x, t, h)
			next := stepper.NextStep(h, errNorm)

			if errNorm <= 1 {
				s.observe(t, h, true)
				if clipped {
					t = target
					if next < h {
						dt = next
					}
				} else {
					t += h
					dt = next
				}
				x = xNew
				if err := s.checkSingular(t, x); err != nil {
					return err
				}
				continue
			}

			s.observe(t, h, false)
			dt = next
			if dt < s.opts.MinStep {
				if !xNew.IsValid() {
					return s.fail(t, x, dynamo.ErrUnstable)
				}
				return s.fail(t, x, dynamo.ErrStepTooSmall)
			}
		}
		states[i] = x.Clone()
	}
	return nil
}

func (s *solver) runFixed(times []float64, states []dynamo.State) error {
	h := s.opts.InitialStep
	if h <= 0 {
		return s.fail(times[0], states[0], fmt.Errorf("%w: rk4 needs a positive step", dynamo.ErrStepTooSmall))
	}
	stepper := NewRK4()

	x := states[0].Clone()
	for i := 1; i < len(times); i++ {
		t0, t1 := times[i-1], times[i]
		sub := int(math.Ceil((t1 - t0) / h))
		if sub < 1 {
			sub = 1
		}
		dt := (t1 - t0) / float64(sub)
		for j := 0; j < sub; j++ {
			t := t0 + float64(j)*dt
			if err := s.checkBudget(t, x); err != nil {
				return err
			}
			x = stepper.Step(s.sys, x, t, dt)
			s.observe(t, dt, true)
			if !x.IsValid() {
				return s.fail(t+dt, x, dynamo.ErrUnstable)
			}
		}
		if err := s.checkSingular(t1, x); err != nil {
			return err
		}
		states[i] = x.Clone()
	}
	return nil
}

// Resample is a convenience wrapper that integrates over [0, duration] at
// the given frame rate, producing duration·fps+1 samples.
func Resample(ctx context.Context, sys dynamo.System, x0 dynamo.State, duration, fps float64, opts Options) (*dynamo.Trajectory, error) {
	n := int(math.Round(duration*fps)) + 1
	return Integrate(ctx, sys, dynamo.Span{Start: 0, End: duration}, x0, n, opts)
}
