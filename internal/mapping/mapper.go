package mapping

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/chaosynth/internal/features"
)

// Rand is the random source percussion rules draw from.
type Rand interface {
	Float64() float64
}

// Params are the fixed formulas' constants. The yaml tags double as the
// mapping section of the configuration file.
type Params struct {
	NoteBase int    `yaml:"note_base" json:"note_base"`
	NoteSpan int    `yaml:"note_span" json:"note_span"`
	NoteMin  int    `yaml:"note_min" json:"note_min"`
	NoteMax  int    `yaml:"note_max" json:"note_max"`
	Scale    string `yaml:"scale" json:"scale"`

	CutoffMin float64 `yaml:"cutoff_min" json:"cutoff_min"`
	CutoffMax float64 `yaml:"cutoff_max" json:"cutoff_max"`
	GainMin   float64 `yaml:"gain_min" json:"gain_min"`
	GainMax   float64 `yaml:"gain_max" json:"gain_max"`

	KickProb     float64 `yaml:"kick_prob" json:"kick_prob"`
	SnareProb    float64 `yaml:"snare_prob" json:"snare_prob"`
	HatProb      float64 `yaml:"hat_prob" json:"hat_prob"`
	HatThreshold float64 `yaml:"hat_threshold" json:"hat_threshold"`
}

func DefaultParams() Params {
	return Params{
		NoteBase:     48,
		NoteSpan:     24,
		NoteMin:      24,
		NoteMax:      96,
		Scale:        "minor",
		CutoffMin:    200,
		CutoffMax:    8000,
		GainMin:      0.3,
		GainMax:      0.9,
		KickProb:     0.9,
		SnareProb:    0.6,
		HatProb:      0.7,
		HatThreshold: 0.6,
	}
}

func (p Params) Validate() error {
	if p.NoteMin > p.NoteMax {
		return fmt.Errorf("note range inverted: %d > %d", p.NoteMin, p.NoteMax)
	}
	if p.NoteBase < 0 || p.NoteBase > 127 {
		return fmt.Errorf("note base must be within [0, 127], got %d", p.NoteBase)
	}
	if p.NoteSpan < 0 || p.NoteSpan > 127 {
		return fmt.Errorf("note span must be within [0, 127], got %d", p.NoteSpan)
	}
	if p.Scale != "" {
		if _, ok := Scales[p.Scale]; !ok {
			return fmt.Errorf("unknown scale %q (available: %v)", p.Scale, ScaleNames())
		}
	}
	for name, v := range map[string]float64{
		"cutoff_min": p.CutoffMin, "cutoff_max": p.CutoffMax,
		"gain_min": p.GainMin, "gain_max": p.GainMax,
	} {
		if !finite(v) {
			return fmt.Errorf("%s must be finite, got %g", name, v)
		}
	}
	if p.CutoffMin <= 0 || p.CutoffMin > p.CutoffMax {
		return fmt.Errorf("cutoff range invalid: %g..%g", p.CutoffMin, p.CutoffMax)
	}
	if p.GainMin > p.GainMax {
		return fmt.Errorf("gain range inverted: %g > %g", p.GainMin, p.GainMax)
	}
	for name, v := range map[string]float64{
		"kick_prob": p.KickProb, "snare_prob": p.SnareProb,
		"hat_prob": p.HatProb, "hat_threshold": p.HatThreshold,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %g", name, v)
		}
	}
	return nil
}

// NoteRange is the configured note window intersected with MIDI bounds.
func (p Params) NoteRange() Range {
	return Range{Min: float64(p.NoteMin), Max: float64(p.NoteMax)}.Intersect(NoteBounds)
}

func (p Params) CutoffRange() Range {
	return Range{Min: p.CutoffMin, Max: p.CutoffMax}.Intersect(CutoffBounds)
}

// Controls are the bounded series handed to a playback engine. Every series
// has one entry per trajectory step.
type Controls struct {
	Notes  []int     `json:"notes"`
	Cutoff []float64 `json:"cutoff"`
	Pan    []float64 `json:"pan"`
	Gain   []float64 `json:"gain"`
	Kick   []string  `json:"kick"`
	Snare  []string  `json:"snare"`
	Hat    []string  `json:"hat"`
}

func (c *Controls) Len() int { return len(c.Notes) }

// Mapper applies Params to feature sets.
type Mapper struct {
	params Params
}

func NewMapper(p Params) *Mapper {
	return &Mapper{params: p}
}

func (m *Mapper) Params() Params { return m.params }

// Map derives every control series from set. A nil rng gets a fixed-seed
// source so the result stays reproducible.
func (m *Mapper) Map(set *features.Set, rng Rand) *Controls {
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	n := set.Len()
	c := &Controls{
		Notes:  make([]int, n),
		Cutoff: make([]float64, n),
		Pan:    make([]float64, n),
		Gain:   make([]float64, n),
		Kick:   make([]string, n),
		Snare:  make([]string, n),
		Hat:    make([]string, n),
	}

	for i := 0; i < n; i++ {
		c.Notes[i] = m.Note(at(set.X, i))
		c.Cutoff[i] = m.Cutoff(at(set.Y, i))
		c.Pan[i] = m.Pan(at(set.Z, i))
		c.Gain[i] = m.Gain(at(set.SpeedNorm, i))

		c.Kick[i] = trigger(flag(set.FlipX, i), m.params.KickProb, Kick, rng)
		c.Snare[i] = trigger(flag(set.FlipY, i), m.params.SnareProb, Snare, rng)
		c.Hat[i] = trigger(at(set.SpeedNorm, i) > m.params.HatThreshold, m.params.HatProb, Hat, rng)
	}

	Sanitize(c, m.params)
	return c
}

// Note is base + round(nx * span), snapped to the scale and clamped. The
// sum is held to MIDI bounds before snapping so oversized spans saturate.
func (m *Mapper) Note(nx float64) int {
	nx = PanBounds.Sanitize(nx)
	raw := NoteBounds.Sanitize(float64(m.params.NoteBase) + math.Round(nx*float64(m.params.NoteSpan)))
	note := Snap(int(raw), m.params.NoteBase, m.params.Scale)
	return int(m.params.NoteRange().Sanitize(float64(note)))
}

// Cutoff sweeps exponentially from CutoffMin to CutoffMax.
func (m *Mapper) Cutoff(ny float64) float64 {
	ny = PanBounds.Sanitize(ny)
	lo, hi := m.params.CutoffMin, m.params.CutoffMax
	var v float64
	if lo > 0 && hi > 0 {
		v = lo * math.Pow(hi/lo, ny)
	} else {
		v = lo + ny*(hi-lo)
	}
	return m.params.CutoffRange().Sanitize(v)
}

func (m *Mapper) Pan(nz float64) float64 {
	return PanBounds.Sanitize(nz)
}

func (m *Mapper) Gain(speed float64) float64 {
	speed = PanBounds.Sanitize(speed)
	v := m.params.GainMin + speed*(m.params.GainMax-m.params.GainMin)
	return GainBounds.Sanitize(v)
}

func trigger(cond bool, prob float64, hit string, rng Rand) string {
	if cond && rng.Float64() < prob {
		return hit
	}
	return Rest
}

func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return math.NaN()
}

func flag(s []bool, i int) bool {
	return i < len(s) && s[i]
}

// Sanitize forces every control into its declared range in place. Numeric
// values that are not finite become the range midpoint; unknown percussion
// symbols become rests.
func Sanitize(c *Controls, p Params) {
	notes := p.NoteRange()
	for i, v := range c.Notes {
		c.Notes[i] = int(math.Round(notes.Sanitize(float64(v))))
	}
	cutoff := p.CutoffRange()
	for i, v := range c.Cutoff {
		c.Cutoff[i] = cutoff.Sanitize(v)
	}
	for i, v := range c.Pan {
		c.Pan[i] = PanBounds.Sanitize(v)
	}
	for i, v := range c.Gain {
		c.Gain[i] = GainBounds.Sanitize(v)
	}
	for _, lane := range [][]string{c.Kick, c.Snare, c.Hat} {
		for i, s := range lane {
			lane[i] = SanitizeHit(s)
		}
	}
}

// Validate reports the first control that is outside its declared range.
func (c *Controls) Validate(p Params) error {
	n := len(c.Notes)
	for name, l := range map[string]int{
		"cutoff": len(c.Cutoff), "pan": len(c.Pan), "gain": len(c.Gain),
		"kick": len(c.Kick), "snare": len(c.Snare), "hat": len(c.Hat),
	} {
		if l != n {
			return fmt.Errorf("%s has %d steps, notes has %d", name, l, n)
		}
	}

	check := func(name string, r Range, vs []float64) error {
		for i, v := range vs {
			if !r.Contains(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s[%d] = %g outside [%g, %g]", name, i, v, r.Min, r.Max)
			}
		}
		return nil
	}

	notes := make([]float64, n)
	for i, v := range c.Notes {
		notes[i] = float64(v)
	}
	if err := check("note", p.NoteRange(), notes); err != nil {
		return err
	}
	if err := check("cutoff", p.CutoffRange(), c.Cutoff); err != nil {
		return err
	}
	if err := check("pan", PanBounds, c.Pan); err != nil {
		return err
	}
	if err := check("gain", GainBounds, c.Gain); err != nil {
		return err
	}
	for _, lane := range [][]string{c.Kick, c.Snare, c.Hat} {
		for i, s := range lane {
			if SanitizeHit(s) != s {
				return fmt.Errorf("unknown percussion symbol %q at step %d", s, i)
			}
		}
	}
	return nil
}
