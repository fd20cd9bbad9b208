// Package physics provides the dynamical system models chaosynth sonifies.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution:
//
//   - [Lorenz]: butterfly attractor
//
// Models also implement [dynamo.Configurable] so presets and CLI flags can
// adjust their constants by name:
//
//	l := physics.DefaultLorenz()
//	_ = l.SetParam("rho", 99.96)
package physics
