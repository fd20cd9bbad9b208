// Package analysis characterizes a rendered trajectory.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [PowerSpectrum] and [DominantFrequency]: FFT of a single axis
//   - [PhaseASCII]: 2D phase projection drawn as text
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, integ, x0, dt, steps, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
