// Package physics provides the physical models driven by the engine.
//
// Each model implements the [dynamo.Model] interface:
//
//   - [MassSpringDamper]: 1D mass on a linear spring with viscous damping
//
// # Integration
//
// MassSpringDamper uses semi-implicit (symplectic) Euler:
//
//	a  = -(c/m)·v - (k/m)·x
//	v' = v + a·dt
//	x' = x + v'·dt
//
// With c == 0 the total energy oscillates around its initial value instead
// of growing, as long as dt is small relative to sqrt(m/k).
package physics
