// Package dynamo provides the core primitives for the phase-point
// evolution engine:
//
//   - [State]: flat state vector holding the first-moment (dipole) and
//     second-moment (pair-correlation) tensors of the lattice
//   - [Kernel]: right-hand side of the equations of motion (dX/dt = f(X, t))
//   - the domain error taxonomy shared by every stage of a run
//
// # Thread Safety
//
// Kernel implementations may carry a scratch workspace and are not safe
// for concurrent Derive calls; each worker rank owns its own instance.
package dynamo
