// Package dynamo provides the core primitives shared by every mechanical
// system in lagrange.
//
//   - [State]: generalized coordinates and velocities
//   - [System]: closed-form equation of motion, dX/dt = f(X, t)
//   - [Trajectory]: immutable, time-ordered solver output
//   - [Span]: closed integration interval
//
// Optional capabilities are expressed as small interfaces a system may
// implement: [Hamiltonian], [Configurable], [Singular] and [Initializer].
//
// # Example
//
//	sys := physics.NewDoublePendulum()
//	span := dynamo.Span{Start: 0, End: 15}
//	tr, err := integrators.Integrate(ctx, sys, span, sys.DefaultState(), 451, integrators.DefaultOptions())
//
// # Errors
//
// Failures surface as [*IntegrationError], [*SingularConfigurationError] or
// [*RenderError]. Each unwraps to one of the package sentinels, so callers
// match with [errors.Is].
package dynamo
