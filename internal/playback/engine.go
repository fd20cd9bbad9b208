package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/chaosynth/internal/mapping"
)

var (
	// ErrUnknownEngine indicates an engine name with no adapter.
	ErrUnknownEngine = errors.New("playback: unknown engine")

	// ErrEmptyPattern indicates a pattern without controls.
	ErrEmptyPattern = errors.New("playback: pattern has no controls")
)

// DefaultStepsPerCycle plays one step per sixteenth note of a 4/4 cycle.
const DefaultStepsPerCycle = 16

// Pattern is everything an engine needs to play one run.
type Pattern struct {
	Name          string
	BPM           float64
	StepsPerCycle int
	Voice         string
	Controls      *mapping.Controls
}

// CPS is the tempo in cycles per second, one cycle being a 4/4 bar.
func (p *Pattern) CPS() float64 {
	return p.BPM / 60 / 4
}

// CycleSteps is StepsPerCycle, or DefaultStepsPerCycle when unset.
func (p *Pattern) CycleSteps() int {
	if p.StepsPerCycle <= 0 {
		return DefaultStepsPerCycle
	}
	return p.StepsPerCycle
}

// Engine is the external playback API.
type Engine interface {
	// Voices is the registry of synth voice names the engine can play.
	Voices() []string
	// Play hands the pattern off. Engines do not report back once accepted.
	Play(ctx context.Context, p *Pattern) error
}

type factory func(w io.Writer, registry []string) Engine

var engines = map[string]factory{
	"script": func(w io.Writer, r []string) Engine { return NewScriptEngine(w, r) },
	"midi":   func(w io.Writer, r []string) Engine { return NewMIDIFileEngine(w, r) },
	"dry":    func(_ io.Writer, r []string) Engine { return NewRecorder(r) },
}

// New builds the named engine writing to w with the given voice registry.
func New(name string, w io.Writer, registry []string) (Engine, error) {
	f, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownEngine, name, EngineNames())
	}
	return f(w, registry), nil
}

func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
