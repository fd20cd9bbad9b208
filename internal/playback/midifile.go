package playback

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/chaosynth/internal/mapping"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Ticks per quarter note in written files.
const PPQ = 480

const (
	synthChannel = 0
	drumChannel  = 9

	ccCutoff = 74
	ccPan    = 10
)

// GM percussion keys.
var drumKeys = map[string]uint8{
	mapping.Kick:  36,
	mapping.Snare: 38,
	mapping.Hat:   42,
}

// GM lead programs standing in for the oscillator voices.
var voicePrograms = map[string]uint8{
	"square":   80,
	"sawtooth": 81,
	"triangle": 82,
	"sine":     88,
}

// MIDIFileEngine writes each pattern as a Standard MIDI File so any
// sequencer can play it back.
type MIDIFileEngine struct {
	w        io.Writer
	registry []string
}

func NewMIDIFileEngine(w io.Writer, registry []string) *MIDIFileEngine {
	return &MIDIFileEngine{w: w, registry: cloneVoices(registry)}
}

func (e *MIDIFileEngine) Voices() []string { return cloneVoices(e.registry) }

func (e *MIDIFileEngine) Play(ctx context.Context, p *Pattern) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := BuildSMF(p)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(e.w); err != nil {
		return fmt.Errorf("write midi file: %w", err)
	}
	return nil
}

// BuildSMF lays the pattern out one step per 1/stepsPerCycle of a bar.
func BuildSMF(p *Pattern) (*smf.SMF, error) {
	c := p.Controls
	if c == nil {
		return nil, ErrEmptyPattern
	}
	if p.BPM <= 0 || math.IsNaN(p.BPM) || math.IsInf(p.BPM, 0) {
		return nil, fmt.Errorf("playback: tempo must be positive, got %g bpm", p.BPM)
	}

	stepTicks := uint32(4 * PPQ / p.CycleSteps())
	if stepTicks == 0 {
		stepTicks = 1
	}

	var tr smf.Track
	if p.Name != "" {
		tr.Add(0, smf.MetaTrackSequenceName(p.Name))
	}
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Add(0, smf.MetaTempo(p.BPM))
	tr.Add(0, midi.ProgramChange(synthChannel, voicePrograms[p.Voice]))

	for i := 0; i < c.Len(); i++ {
		note := uint8(mapping.NoteBounds.Sanitize(float64(c.Notes[i])))
		vel := velocity(valueAt(c.Gain, i))

		tr.Add(0, midi.ControlChange(synthChannel, ccCutoff, cutoffCC(valueAt(c.Cutoff, i))))
		tr.Add(0, midi.ControlChange(synthChannel, ccPan, unitCC(valueAt(c.Pan, i))))
		tr.Add(0, midi.NoteOn(synthChannel, note, vel))

		drums := hitsAt(c, i)
		for _, key := range drums {
			tr.Add(0, midi.NoteOn(drumChannel, key, vel))
		}

		tr.Add(stepTicks, midi.NoteOff(synthChannel, note))
		for _, key := range drums {
			tr.Add(0, midi.NoteOff(drumChannel, key))
		}
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(PPQ)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}
	return s, nil
}

func hitsAt(c *mapping.Controls, i int) []uint8 {
	var keys []uint8
	for _, lane := range [][]string{c.Kick, c.Snare, c.Hat} {
		if i >= len(lane) {
			continue
		}
		if key, ok := drumKeys[lane[i]]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func valueAt(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return math.NaN()
}

// velocity maps gain to 1..127; zero velocity would read as note-off.
func velocity(gain float64) uint8 {
	v := math.Round(mapping.GainBounds.Sanitize(gain) * 127)
	if v < 1 {
		v = 1
	}
	return uint8(v)
}

func unitCC(v float64) uint8 {
	return uint8(math.Round(mapping.PanBounds.Sanitize(v) * 127))
}

// cutoffCC spreads the audible cutoff bounds logarithmically over 0..127.
func cutoffCC(hz float64) uint8 {
	hz = mapping.CutoffBounds.Sanitize(hz)
	lo, hi := mapping.CutoffBounds.Min, mapping.CutoffBounds.Max
	frac := math.Log(hz/lo) / math.Log(hi/lo)
	return unitCC(frac)
}
