package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/physics"
)

type decay struct{}

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-x[0]}
}

func (d *decay) StateDim() int { return 1 }

type euler struct{}

func (e *euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	return dynamo.State{x[0] + dt*dx[0]}
}

func TestSimulatorRun(t *testing.T) {
	s := New(&decay{}, &euler{})

	traj, err := s.Run(context.Background(), dynamo.State{1.0}, dynamo.Config{Dt: 0.1, Steps: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if traj.Len() != 10 {
		t.Errorf("expected 10 states, got %d", traj.Len())
	}

	final := traj[traj.Len()-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(final-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestSimulatorZeroSteps(t *testing.T) {
	traj, err := Lorenz(context.Background(), physics.DefaultLorenzParams(), 0, 0.01)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if traj.Len() != 0 {
		t.Errorf("expected empty trajectory, got %d states", traj.Len())
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&decay{}, &euler{})

	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero dt", dynamo.Config{Dt: 0, Steps: 10}},
		{"negative dt", dynamo.Config{Dt: -0.1, Steps: 10}},
		{"nan dt", dynamo.Config{Dt: math.NaN(), Steps: 10}},
		{"negative steps", dynamo.Config{Dt: 0.1, Steps: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), dynamo.State{1.0}, tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	s := New(&decay{}, &euler{})
	_, err := s.Run(context.Background(), dynamo.State{1, 2}, dynamo.Config{Dt: 0.1, Steps: 1})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lorenz(ctx, physics.DefaultLorenzParams(), 100, 0.01)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
	var stepErr *dynamo.StepError
	if !errors.As(err, &stepErr) || stepErr.Step != 0 {
		t.Errorf("expected step error at step 0, got %v", err)
	}
}

func TestSimulatorObserver(t *testing.T) {
	s := New(&decay{}, &euler{})
	var seen []int
	s.AddObserver(ObserverFunc(func(step int, _ float64, _ dynamo.State) {
		seen = append(seen, step)
	}))

	if _, err := s.Run(context.Background(), dynamo.State{1.0}, dynamo.Config{Dt: 0.1, Steps: 3}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 2 {
		t.Errorf("unexpected observer steps: %v", seen)
	}
}

func TestLorenzDeterministic(t *testing.T) {
	a, err := Lorenz(context.Background(), physics.DefaultLorenzParams(), 50, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Lorenz(context.Background(), physics.DefaultLorenzParams(), 50, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		for k := range a[i] {
			if a[i][k] != b[i][k] {
				t.Fatalf("step %d axis %d differs: %v vs %v", i, k, a[i][k], b[i][k])
			}
		}
	}
	if math.Abs(a[0][0]-1.0125671910736112) > 1e-12 {
		t.Errorf("unexpected first state %v", a[0])
	}
}
