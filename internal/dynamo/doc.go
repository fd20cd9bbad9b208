// Package dynamo provides the simulation primitives the rest of chaosynth
// is built on.
//
// The package defines the fundamental types for integrating an ordinary
// differential equation with a fixed step:
//
//   - [State]: vector representing a point in phase space
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Trajectory]: the ordered record of states produced by a run
//
// # Example
//
//	sys := physics.DefaultLorenz()
//	traj, _ := sim.Integrate(ctx, sys, integrators.NewRK4(), sys.DefaultState(), cfg)
//	xs := traj.Axis(0)
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// A Trajectory is read-only once returned and may be shared freely.
package dynamo
