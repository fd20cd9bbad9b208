package mapping

import "math"

// Range is a closed interval of allowed control values.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Declared safe bounds for each control series.
var (
	NoteBounds   = Range{Min: 0, Max: 127}
	CutoffBounds = Range{Min: 20, Max: 20000}
	PanBounds    = Range{Min: 0, Max: 1}
	GainBounds   = Range{Min: 0, Max: 1}
)

func (r Range) Mid() float64 { return r.Min + (r.Max-r.Min)/2 }

// Valid reports whether both bounds are finite and ordered.
func (r Range) Valid() bool {
	return finite(r.Min) && finite(r.Max) && r.Min <= r.Max
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (r Range) Contains(v float64) bool {
	return !math.IsNaN(v) && v >= r.Min && v <= r.Max
}

// Intersect narrows r to the part that also lies inside outer. A
// non-finite bound of r is replaced by the matching bound of outer, and
// disjoint ranges fall back to outer.
func (r Range) Intersect(outer Range) Range {
	lo, hi := r.Min, r.Max
	if !finite(lo) {
		lo = outer.Min
	}
	if !finite(hi) {
		hi = outer.Max
	}
	in := Range{Min: math.Max(lo, outer.Min), Max: math.Min(hi, outer.Max)}
	if !in.Valid() {
		return outer
	}
	return in
}

// Sanitize clamps v into r. NaN and infinities become the midpoint. The
// result is always finite: on a range that is not Valid, finite values pass
// through and non-finite ones become zero.
func (r Range) Sanitize(v float64) float64 {
	if !r.Valid() {
		if !finite(v) {
			return 0
		}
		return v
	}
	if !finite(v) {
		return r.Mid()
	}
	return Clamp(v, r.Min, r.Max)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Percussion symbols understood by the playback engines.
const (
	Kick  = "bd"
	Snare = "sd"
	Hat   = "hh"
	Rest  = "~"
)

// Hits lists every valid percussion symbol.
var Hits = []string{Kick, Snare, Hat, Rest}

// SanitizeHit maps anything that is not a known percussion symbol to Rest.
func SanitizeHit(s string) string {
	switch s {
	case Kick, Snare, Hat, Rest:
		return s
	}
	return Rest
}
