package playback

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func samplePattern() *Pattern {
	return &Pattern{
		Name:  "test",
		BPM:   120,
		Voice: "sawtooth",
		Controls: &mapping.Controls{
			Notes:  []int{60, 62, 63},
			Cutoff: []float64{200, 1000, 8000},
			Pan:    []float64{0, 0.5, 1},
			Gain:   []float64{0.3, 0.6, 0.9},
			Kick:   []string{"bd", "~", "~"},
			Snare:  []string{"~", "sd", "~"},
			Hat:    []string{"hh", "~", "hh"},
		},
	}
}

func TestResolveVoice(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		preferred []string
		want      string
	}{
		{"first preferred available", []string{"sine", "sawtooth"}, nil, "sawtooth"},
		{"falls through order", []string{"sine", "triangle"}, nil, "triangle"},
		{"custom order", []string{"sine", "square"}, []string{"sine", "square"}, "sine"},
		{"empty registry", nil, []string{"square", "sine"}, "square"},
		{"empty registry default order", nil, nil, "sawtooth"},
		{"nothing matches", []string{"piano", "gm_flute"}, nil, FallbackVoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVoice(tt.available, tt.preferred))
		})
	}
}

func TestNewEngine(t *testing.T) {
	for _, name := range EngineNames() {
		e, err := New(name, &bytes.Buffer{}, []string{"sine"})
		require.NoError(t, err, name)
		assert.Equal(t, []string{"sine"}, e.Voices())
	}

	_, err := New("supercollider", nil, nil)
	assert.True(t, errors.Is(err, ErrUnknownEngine))
}

func TestVoicesAreCopied(t *testing.T) {
	reg := []string{"sine"}
	e := NewScriptEngine(&bytes.Buffer{}, reg)
	reg[0] = "noise"
	got := e.Voices()
	assert.Equal(t, []string{"sine"}, got)
	got[0] = "square"
	assert.Equal(t, []string{"sine"}, e.Voices())
}

func TestPatternCPS(t *testing.T) {
	p := &Pattern{BPM: 120}
	assert.InDelta(t, 0.5, p.CPS(), 1e-12)
}

func TestScriptEngine(t *testing.T) {
	var buf bytes.Buffer
	e := NewScriptEngine(&buf, nil)
	require.NoError(t, e.Play(context.Background(), samplePattern()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "// test\nsetcps(0.5000)\n"), out)
	assert.Contains(t, out, `note("60 62 63")`)
	assert.Contains(t, out, `.s("sawtooth")`)
	assert.Contains(t, out, `.lpf("200 1000 8000")`)
	assert.Contains(t, out, `.pan("0.000 0.500 1.000")`)
	assert.Contains(t, out, `.gain("0.300 0.600 0.900")`)
	assert.Contains(t, out, `s("bd ~ ~").slow(1.0000)`)
	assert.Contains(t, out, `s("~ sd ~")`)
	assert.Contains(t, out, `s("hh ~ hh")`)
}

func TestScriptEngineSlowsLongPatterns(t *testing.T) {
	p := samplePattern()
	p.StepsPerCycle = 2
	var buf bytes.Buffer
	require.NoError(t, RenderScript(&buf, p))
	assert.Contains(t, buf.String(), ".slow(1.5000)")
}

func TestScriptEngineEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderScript(&buf, &Pattern{BPM: 60, Controls: &mapping.Controls{}}))
	assert.Equal(t, "setcps(0.2500)\nsilence\n", buf.String())
}

func TestEnginesRespectCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, name := range EngineNames() {
		var buf bytes.Buffer
		e, err := New(name, &buf, nil)
		require.NoError(t, err)
		assert.ErrorIs(t, e.Play(ctx, samplePattern()), context.Canceled, name)
		assert.Zero(t, buf.Len(), name)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder([]string{"sine"})
	assert.Nil(t, r.Last())

	p := samplePattern()
	require.NoError(t, r.Play(context.Background(), p))
	assert.Same(t, p, r.Last())
	assert.Len(t, r.Patterns(), 1)
}

func TestMIDIFileEngine(t *testing.T) {
	var buf bytes.Buffer
	e := NewMIDIFileEngine(&buf, nil)
	require.NoError(t, e.Play(context.Background(), samplePattern()))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	var (
		synthNotes []uint8
		drumNotes  []uint8
		tempo      float64
	)
	for _, ev := range s.Tracks[0] {
		var bpm float64
		if ev.Message.GetMetaTempo(&bpm) {
			tempo = bpm
		}
		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			if ch == drumChannel {
				drumNotes = append(drumNotes, key)
			} else {
				synthNotes = append(synthNotes, key)
			}
		}
	}

	assert.InDelta(t, 120.0, tempo, 0.01)
	assert.Equal(t, []uint8{60, 62, 63}, synthNotes)
	assert.Equal(t, []uint8{36, 42, 38, 42}, drumNotes)
}

func TestBuildSMFRejectsBadPatterns(t *testing.T) {
	_, err := BuildSMF(&Pattern{BPM: 120})
	assert.ErrorIs(t, err, ErrEmptyPattern)

	p := samplePattern()
	p.BPM = 0
	_, err = BuildSMF(p)
	assert.Error(t, err)
}

func TestCCMapping(t *testing.T) {
	assert.Equal(t, uint8(0), cutoffCC(20))
	assert.Equal(t, uint8(127), cutoffCC(20000))
	assert.Equal(t, uint8(64), unitCC(0.5))
	assert.Equal(t, uint8(1), velocity(0))
	assert.Equal(t, uint8(127), velocity(1))
}
