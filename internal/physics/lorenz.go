package physics

import (
	"fmt"

	"github.com/san-kum/chaosynth/internal/dynamo"
)

// Classic constants for the chaotic regime.
const (
	DefaultSigma = 10.0
	DefaultRho   = 28.0
	DefaultBeta  = 8.0 / 3.0
)

// LorenzParams are the three system constants.
type LorenzParams struct {
	Sigma float64 `yaml:"sigma" json:"sigma"`
	Rho   float64 `yaml:"rho" json:"rho"`
	Beta  float64 `yaml:"beta" json:"beta"`
}

func DefaultLorenzParams() LorenzParams {
	return LorenzParams{Sigma: DefaultSigma, Rho: DefaultRho, Beta: DefaultBeta}
}

type Lorenz struct{ sigma, rho, beta float64 }

func NewLorenz(p LorenzParams) *Lorenz { return &Lorenz{p.Sigma, p.Rho, p.Beta} }
func DefaultLorenz() *Lorenz           { return NewLorenz(DefaultLorenzParams()) }
func (l *Lorenz) StateDim() int        { return 3 }

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz) Derive(s dynamo.State, _ float64) dynamo.State {
	return dynamo.State{l.sigma * (s[1] - s[0]), s[0]*(l.rho-s[2]) - s[1], s[0]*s[1] - l.beta*s[2]}
}

// DefaultState is the fixed initial condition (1, 1, 1).
func (l *Lorenz) DefaultState() dynamo.State { return dynamo.State{1.0, 1.0, 1.0} }

func (l *Lorenz) Params() LorenzParams {
	return LorenzParams{Sigma: l.sigma, Rho: l.rho, Beta: l.beta}
}

func (l *Lorenz) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.sigma = v
	case "rho":
		l.rho = v
	case "beta":
		l.beta = v
	default:
		return fmt.Errorf("lorenz: unknown parameter %q", n)
	}
	return nil
}
