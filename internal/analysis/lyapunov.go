package analysis

import (
	"math"

	"github.com/san-kum/chaosynth/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent from two
// trajectories started perturbation apart on the first axis. The
// separation is renormalized back to perturbation after every step, so
// the result is the mean of ln(d/d0) per unit time.
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt float64,
	steps int,
	perturbation float64,
) float64 {
	if len(x0) == 0 || steps <= 0 || dt <= 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation

	t := 0.0
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t += dt

		sep := xp.Sub(x).Norm()
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		if sep == 0 {
			continue
		}

		sumLog += math.Log(sep / perturbation)
		count++

		scale := perturbation / sep
		for j := range xp {
			xp[j] = x[j] + (xp[j]-x[j])*scale
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
