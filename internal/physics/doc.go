// Package physics holds the equations of motion for each mechanical system.
//
// The right-hand sides are closed forms obtained offline from each system's
// Lagrangian; nothing is derived at runtime. Every model implements
// [dynamo.System] and [dynamo.Configurable]:
//
//   - [Pendulum]: point mass on a rigid rod
//   - [SpringMass]: mass hanging from a vertical spring
//   - [DoublePendulum]: two point masses, unit rods
//   - [CompoundPendulum]: two uniform rods
//   - [ElasticPendulum]: swinging spring
//   - [KapitzaPendulum]: inverted pendulum on a vibrating pivot
//
// All but the Kapitza pendulum implement [dynamo.Hamiltonian]. Models whose
// equations divide by a state-dependent quantity also implement
// [dynamo.Singular].
//
// # Energy Conservation
//
//	sys := physics.NewDoublePendulum()
//	if h, ok := any(sys).(dynamo.Hamiltonian); ok {
//	    e0 := h.Energy(sys.DefaultState())
//	}
package physics
