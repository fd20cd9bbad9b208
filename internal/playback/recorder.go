package playback

import (
	"context"
	"sync"
)

// Recorder is an Engine that keeps every pattern it is given.
type Recorder struct {
	mu       sync.Mutex
	registry []string
	patterns []*Pattern
}

func NewRecorder(registry []string) *Recorder {
	return &Recorder{registry: cloneVoices(registry)}
}

func (r *Recorder) Voices() []string { return cloneVoices(r.registry) }

func (r *Recorder) Play(ctx context.Context, p *Pattern) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, p)
	return nil
}

// Patterns returns the patterns played so far, oldest first.
func (r *Recorder) Patterns() []*Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Pattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// Last returns the most recent pattern or nil.
func (r *Recorder) Last() *Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.patterns) == 0 {
		return nil
	}
	return r.patterns[len(r.patterns)-1]
}
