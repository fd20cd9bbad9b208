// Package pipeline runs chaosynth end to end: integrate the attractor,
// derive features, map them to controls and hand the pattern to an engine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/chaosynth/internal/config"
	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/features"
	"github.com/san-kum/chaosynth/internal/integrators"
	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/san-kum/chaosynth/internal/physics"
	"github.com/san-kum/chaosynth/internal/playback"
	"github.com/san-kum/chaosynth/internal/sim"
)

// progressEvery is how often, in steps, integration progress is logged.
const progressEvery = 1000

type Result struct {
	Trajectory dynamo.Trajectory
	Features   *features.Set
	Controls   *mapping.Controls
	Pattern    *playback.Pattern
	// Diverged is set when the trajectory contains non-finite states.
	Diverged bool
}

// Run executes every stage with cfg. The random source drives percussion
// and the engine supplies the voice registry.
func Run(ctx context.Context, cfg *config.Config, engine playback.Engine, rng mapping.Rand, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res, err := Compose(ctx, cfg, engine.Voices(), rng, logger)
	if err != nil {
		return nil, err
	}

	if err := Handoff(ctx, engine, res, logger); err != nil {
		return res, err
	}
	return res, nil
}

// Handoff plays a composed result on engine.
func Handoff(ctx context.Context, engine playback.Engine, res *Result, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := engine.Play(ctx, res.Pattern); err != nil {
		return fmt.Errorf("hand off pattern: %w", err)
	}
	logger.Debug("pattern handed off", "voice", res.Pattern.Voice, "steps", res.Controls.Len())
	return nil
}

// Compose runs every stage except the handoff.
func Compose(ctx context.Context, cfg *config.Config, registry []string, rng mapping.Rand, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sys := physics.NewLorenz(cfg.System)
	s := sim.New(sys, integrators.NewRK4())
	s.AddObserver(sim.ObserverFunc(func(step int, t float64, x dynamo.State) {
		if (step+1)%progressEvery == 0 {
			logger.Debug("integrating", "step", step+1, "t", t, "x", x[0], "y", x[1], "z", x[2])
		}
	}))

	traj, err := s.Run(ctx, sys.DefaultState(), cfg.DynamoConfig())
	if err != nil {
		return nil, fmt.Errorf("integrate: %w", err)
	}

	res := &Result{Trajectory: traj}
	for i, st := range traj {
		if !st.IsValid() {
			res.Diverged = true
			logger.Warn("trajectory diverged, non-finite states will be neutralized", "step", i)
			break
		}
	}

	res.Features = features.Extract(traj)
	res.Controls = mapping.NewMapper(cfg.Mapping).Map(res.Features, rng)
	logger.Debug("mapped controls", "steps", res.Controls.Len(), "scale", cfg.Mapping.Scale)

	voice := playback.ResolveVoice(registry, cfg.Playback.Voices)
	logger.Debug("resolved voice", "voice", voice, "registry", registry)

	res.Pattern = &playback.Pattern{
		Name:          fmt.Sprintf("lorenz sigma=%g rho=%g beta=%.4g seed=%d", cfg.System.Sigma, cfg.System.Rho, cfg.System.Beta, cfg.Seed),
		BPM:           cfg.Playback.BPM,
		StepsPerCycle: cfg.Playback.StepsPerCycle,
		Voice:         voice,
		Controls:      res.Controls,
	}
	return res, nil
}
