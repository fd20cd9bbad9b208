package features

import (
	"math"

	"github.com/san-kum/chaosynth/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Midpoint is the neutral value substituted when a series cannot be scaled.
const Midpoint = 0.5

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalize min-max scales s into [0, 1]. Non-finite samples and every
// sample of a degenerate series map to Midpoint.
func Normalize(s []float64) []float64 {
	out := make([]float64, len(s))

	valid := make([]float64, 0, len(s))
	for _, v := range s {
		if finite(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		fill(out, Midpoint)
		return out
	}

	lo, hi := floats.Min(valid), floats.Max(valid)
	span := hi - lo
	if span <= 0 || !finite(span) {
		fill(out, Midpoint)
		return out
	}

	for i, v := range s {
		if !finite(v) {
			out[i] = Midpoint
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}

// Diff is the first difference of s; out[0] is zero by convention.
func Diff(s []float64) []float64 {
	out := make([]float64, len(s))
	for i := 1; i < len(s); i++ {
		out[i] = s[i] - s[i-1]
	}
	return out
}

// Speed is the per-step Euclidean magnitude of the difference vector.
// Axes shorter than the longest one contribute zero.
func Speed(deltas ...[]float64) []float64 {
	n := 0
	for _, d := range deltas {
		if len(d) > n {
			n = len(d)
		}
	}

	out := make([]float64, n)
	vec := make([]float64, len(deltas))
	for i := 0; i < n; i++ {
		for k, d := range deltas {
			vec[k] = 0
			if i < len(d) {
				vec[k] = d[i]
			}
		}
		out[i] = floats.Norm(vec, 2)
	}
	return out
}

// SignChanges marks steps where d flips sign relative to the previous step.
// Zero and non-finite samples never count as a flip.
func SignChanges(d []float64) []bool {
	out := make([]bool, len(d))
	for i := 1; i < len(d); i++ {
		a, b := d[i-1], d[i]
		if !finite(a) || !finite(b) {
			continue
		}
		out[i] = (a < 0 && b > 0) || (a > 0 && b < 0)
	}
	return out
}

func fill(s []float64, v float64) {
	for i := range s {
		s[i] = v
	}
}

// Set holds every feature series derived from one trajectory.
type Set struct {
	// Normalized coordinates.
	X, Y, Z []float64
	// First differences of the raw coordinates.
	DX, DY, DZ []float64
	// Speed is the raw difference magnitude, SpeedNorm its normalization.
	Speed     []float64
	SpeedNorm []float64
	// Sign flips of DX, DY and DZ.
	FlipX, FlipY, FlipZ []bool
}

func (s *Set) Len() int { return len(s.X) }

// Extract derives the feature set for a three-dimensional trajectory.
// Missing coordinates are treated as non-finite.
func Extract(traj dynamo.Trajectory) *Set {
	xs, ys, zs := traj.Axis(0), traj.Axis(1), traj.Axis(2)

	set := &Set{
		X:  Normalize(xs),
		Y:  Normalize(ys),
		Z:  Normalize(zs),
		DX: Diff(xs),
		DY: Diff(ys),
		DZ: Diff(zs),
	}
	set.Speed = Speed(set.DX, set.DY, set.DZ)
	set.SpeedNorm = Normalize(set.Speed)
	set.FlipX = SignChanges(set.DX)
	set.FlipY = SignChanges(set.DY)
	set.FlipZ = SignChanges(set.DZ)
	return set
}
