package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/integrators"
	"github.com/san-kum/chaosynth/internal/physics"
)

// Observer is notified after every recorded step.
type Observer interface {
	OnStep(step int, t float64, x dynamo.State)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(step int, t float64, x dynamo.State)

func (f ObserverFunc) OnStep(step int, t float64, x dynamo.State) { f(step, t, x) }

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	observers  []Observer
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances x0 by cfg.Steps fixed steps and records each resulting state.
// The initial condition itself is not part of the trajectory, so zero steps
// yield an empty trajectory. Diverging states are recorded as they are.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (dynamo.Trajectory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system wants %d", dynamo.ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}

	traj := make(dynamo.Trajectory, 0, cfg.Steps)
	x := x0.Clone()
	t := 0.0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return traj, &dynamo.StepError{Step: i, Time: t, Wrapped: fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, ctx.Err())}
		default:
		}

		x = s.integrator.Step(s.sys, x, t, cfg.Dt)
		t += cfg.Dt

		traj = append(traj, x.Clone())
		for _, obs := range s.observers {
			obs.OnStep(i, t, x)
		}
	}

	return traj, nil
}

// Integrate runs sys from x0 with integ.
func Integrate(ctx context.Context, sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, cfg dynamo.Config) (dynamo.Trajectory, error) {
	return New(sys, integ).Run(ctx, x0, cfg)
}

// Lorenz integrates the Lorenz system with RK4 from (1, 1, 1).
func Lorenz(ctx context.Context, p physics.LorenzParams, steps int, dt float64) (dynamo.Trajectory, error) {
	sys := physics.NewLorenz(p)
	return Integrate(ctx, sys, integrators.NewRK4(), sys.DefaultState(), dynamo.Config{Steps: steps, Dt: dt})
}
