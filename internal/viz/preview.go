package viz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/san-kum/chaosynth/internal/playback"
)

const (
	laneWindow  = 16
	noteHistory = 32
	barWidth    = 20
)

type TickMsg time.Time

// Model steps through a pattern's control series.
type Model struct {
	pattern  *playback.Pattern
	controls *mapping.Controls
	cutoff   mapping.Range
	interval time.Duration
	pos      int
	running  bool
}

// NewModel builds a preview of p. The tick interval is one step at the
// pattern tempo.
func NewModel(p *playback.Pattern, cutoff mapping.Range) Model {
	interval := time.Second / 8
	if cps := p.CPS(); cps > 0 {
		interval = time.Duration(float64(time.Second) / (cps * float64(p.CycleSteps())))
	}

	c := p.Controls
	if c == nil {
		c = &mapping.Controls{}
	}

	return Model{
		pattern:  p,
		controls: c,
		cutoff:   cutoff,
		interval: interval,
		running:  true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Pos is the current step index.
func (m Model) Pos() int { return m.pos }

func (m Model) Running() bool { return m.running }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "left", "h":
			m.running = false
			m.scrub(-1)
		case "right", "l":
			m.running = false
			m.scrub(1)
		case "home":
			m.pos = 0
		}
	case TickMsg:
		if m.running {
			m.scrub(1)
		}
		return m, m.tick()
	}
	return m, nil
}

// scrub moves the play head, wrapping around like a looping pattern.
func (m *Model) scrub(dir int) {
	n := m.controls.Len()
	if n == 0 {
		return
	}
	m.pos = ((m.pos+dir)%n + n) % n
}

func (m Model) View() string {
	c := m.controls
	var s strings.Builder

	s.WriteString(headerStyle.Render(strings.ToUpper(m.pattern.Name)) + "\n")
	status := statusPlaying.Render("PLAYING")
	if !m.running {
		status = statusPaused.Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  %.0f bpm  voice %s\n\n", status, m.pattern.BPM, m.pattern.Voice))

	if c.Len() == 0 {
		s.WriteString(restStyle.Render("(no steps)") + "\n")
		s.WriteString(helpStyle.Render("\nQ:Quit"))
		return panelStyle.Render(s.String())
	}

	i := m.pos
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d/%d", i+1, c.Len())) + "\n")
	s.WriteString(labelStyle.Render("Note") + valueStyle.Render(fmt.Sprintf("%-4s %d", mapping.NoteName(c.Notes[i]), c.Notes[i])) + "\n")
	s.WriteString(labelStyle.Render("Cutoff") + ProgressBar(m.cutoffRatio(c.Cutoff[i]), barWidth) + valueStyle.Render(fmt.Sprintf(" %6.0f Hz", c.Cutoff[i])) + "\n")
	s.WriteString(labelStyle.Render("Pan") + ProgressBar(c.Pan[i], barWidth) + valueStyle.Render(fmt.Sprintf(" %.2f", c.Pan[i])) + "\n")
	s.WriteString(labelStyle.Render("Gain") + ProgressBar(c.Gain[i], barWidth) + valueStyle.Render(fmt.Sprintf(" %.2f", c.Gain[i])) + "\n\n")

	s.WriteString(m.lane("Kick", c.Kick) + "\n")
	s.WriteString(m.lane("Snare", c.Snare) + "\n")
	s.WriteString(m.lane("Hat", c.Hat) + "\n\n")

	if recent := m.recentNotes(); len(recent) > 1 {
		chart := asciigraph.Plot(recent, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("Notes"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(helpStyle.Render("\nSP:Pause ←→:Scrub Home:Start Q:Quit"))
	return panelStyle.Render(s.String())
}

// cutoffRatio places hz on a log scale between the cutoff bounds.
func (m Model) cutoffRatio(hz float64) float64 {
	lo, hi := m.cutoff.Min, m.cutoff.Max
	if lo <= 0 || hi <= lo || hz <= 0 {
		return 0
	}
	return math.Log(hz/lo) / math.Log(hi/lo)
}

// lane renders the laneWindow steps starting at the play head's bar.
func (m Model) lane(name string, hits []string) string {
	start := (m.pos / laneWindow) * laneWindow
	cells := make([]string, 0, laneWindow)
	for j := start; j < start+laneWindow && j < len(hits); j++ {
		sym := fmt.Sprintf("%-2s", hits[j])
		switch {
		case j == m.pos:
			cells = append(cells, headStyle.Render(sym))
		case hits[j] == mapping.Rest:
			cells = append(cells, restStyle.Render(sym))
		default:
			cells = append(cells, hitStyle.Render(sym))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(name), strings.Join(cells, " "))
}

func (m Model) recentNotes() []float64 {
	start := m.pos - noteHistory + 1
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, m.pos-start+1)
	for _, n := range m.controls.Notes[start : m.pos+1] {
		out = append(out, float64(n))
	}
	return out
}

// Preview runs the model in the terminal until the user quits or ctx ends.
func Preview(ctx context.Context, p *playback.Pattern, cutoff mapping.Range) error {
	prog := tea.NewProgram(NewModel(p, cutoff), tea.WithContext(ctx))
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
