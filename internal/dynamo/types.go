package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an autonomous or time-dependent ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Configurable systems expose their constants by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// Trajectory is the ordered record of states, one per integration step.
type Trajectory []State

func (tr Trajectory) Len() int { return len(tr) }

// Axis returns a copy of coordinate i across all states. States shorter
// than i+1 contribute NaN.
func (tr Trajectory) Axis(i int) []float64 {
	out := make([]float64, len(tr))
	for k, s := range tr {
		if i < len(s) {
			out[k] = s[i]
		} else {
			out[k] = math.NaN()
		}
	}
	return out
}

// Dim is the state dimension of the first sample, or 0 when empty.
func (tr Trajectory) Dim() int {
	if len(tr) == 0 {
		return 0
	}
	return len(tr[0])
}

// Config controls a fixed-step run.
type Config struct {
	Steps int
	Dt    float64
}

func DefaultConfig() Config {
	return Config{
		Steps: 256,
		Dt:    0.01,
	}
}

func (c Config) Validate() error {
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	return nil
}
