package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation and rendering.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the integration diverged.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the integration was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepTooSmall indicates the adaptive step fell below the minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrMaxSteps indicates the step budget ran out before the span ended.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrDimensionMismatch indicates mismatched state and system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	ErrInvalidSpan    = errors.New("dynamo: empty or negative time span")
	ErrInvalidSamples = errors.New("dynamo: at least two output samples required")
	ErrSingular       = errors.New("dynamo: singular configuration")
	ErrUnknownMethod  = errors.New("dynamo: unknown integration method")

	ErrFrameOrder         = errors.New("dynamo: frame index out of order")
	ErrBackendUnavailable = errors.New("dynamo: encoder backend unavailable")
)

// IntegrationError wraps a solver failure with the point it was reached.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}

// SingularConfigurationError reports a state where the equations of motion
// divide by a vanishing denominator.
type SingularConfigurationError struct {
	Time        float64
	State       State
	Denominator float64
}

func (e *SingularConfigurationError) Error() string {
	return fmt.Sprintf("singular configuration at t=%.6g (denominator %.3g)", e.Time, e.Denominator)
}

func (e *SingularConfigurationError) Unwrap() error {
	return ErrSingular
}

// RenderError wraps a failure to produce or encode a frame.
type RenderError struct {
	Op      string
	Frame   int
	Wrapped error
}

func (e *RenderError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("render %s: %v", e.Op, e.Wrapped)
	}
	return fmt.Sprintf("render %s (frame %d): %v", e.Op, e.Frame, e.Wrapped)
}

func (e *RenderError) Unwrap() error {
	return e.Wrapped
}
