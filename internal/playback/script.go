package playback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ScriptEngine renders patterns as a live-coding program: a tempo call
// followed by a stack of a melodic line and three percussion lanes.
type ScriptEngine struct {
	w        io.Writer
	registry []string
}

func NewScriptEngine(w io.Writer, registry []string) *ScriptEngine {
	return &ScriptEngine{w: w, registry: cloneVoices(registry)}
}

func (e *ScriptEngine) Voices() []string { return cloneVoices(e.registry) }

func (e *ScriptEngine) Play(ctx context.Context, p *Pattern) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriter(e.w)
	if err := RenderScript(bw, p); err != nil {
		return err
	}
	return bw.Flush()
}

// RenderScript writes the program for p to w.
func RenderScript(w io.Writer, p *Pattern) error {
	var sb strings.Builder

	if p.Name != "" {
		fmt.Fprintf(&sb, "// %s\n", p.Name)
	}
	fmt.Fprintf(&sb, "setcps(%s)\n", formatFloat(p.CPS(), 4))

	c := p.Controls
	if c == nil || c.Len() == 0 {
		sb.WriteString("silence\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	slow := float64(c.Len()) / float64(p.CycleSteps())
	if slow < 1 {
		slow = 1
	}
	slowStr := formatFloat(slow, 4)

	notes := make([]string, len(c.Notes))
	for i, n := range c.Notes {
		notes[i] = strconv.Itoa(n)
	}

	sb.WriteString("stack(\n")
	fmt.Fprintf(&sb, "  note(%q)\n", strings.Join(notes, " "))
	fmt.Fprintf(&sb, "    .s(%q)\n", p.Voice)
	fmt.Fprintf(&sb, "    .lpf(%q)\n", joinFloats(c.Cutoff, 0))
	fmt.Fprintf(&sb, "    .pan(%q)\n", joinFloats(c.Pan, 3))
	fmt.Fprintf(&sb, "    .gain(%q)\n", joinFloats(c.Gain, 3))
	fmt.Fprintf(&sb, "    .slow(%s),\n", slowStr)
	for _, lane := range [][]string{c.Kick, c.Snare, c.Hat} {
		fmt.Fprintf(&sb, "  s(%q).slow(%s),\n", strings.Join(lane, " "), slowStr)
	}
	sb.WriteString(")\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func joinFloats(vs []float64, prec int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v, prec)
	}
	return strings.Join(parts, " ")
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
