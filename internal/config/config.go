package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/mapping"
	"github.com/san-kum/chaosynth/internal/physics"
	"github.com/san-kum/chaosynth/internal/playback"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSteps  = 256
	DefaultDt     = 0.01
	DefaultBPM    = 120.0
	DefaultEngine = "script"
	DefaultSeed   = 1
)

var (
	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("config: unknown preset")

	// ErrInvalid indicates a configuration that fails validation.
	ErrInvalid = errors.New("config: invalid configuration")
)

type Config struct {
	System      physics.LorenzParams `yaml:"system"`
	Integration IntegrationConfig    `yaml:"integration"`
	Mapping     mapping.Params       `yaml:"mapping"`
	Playback    PlaybackConfig       `yaml:"playback"`
	Seed        int64                `yaml:"seed"`
}

type IntegrationConfig struct {
	Steps int     `yaml:"steps"`
	Dt    float64 `yaml:"dt"`
}

type PlaybackConfig struct {
	BPM           float64 `yaml:"bpm"`
	StepsPerCycle int     `yaml:"steps_per_cycle"`
	Engine        string  `yaml:"engine"`
	// Voices is the preference order for the synth voice.
	Voices []string `yaml:"voices"`
	// Registry lists the voices the target engine provides.
	Registry []string `yaml:"registry"`
	// Output is a file path; empty means stdout.
	Output string `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		System: physics.DefaultLorenzParams(),
		Integration: IntegrationConfig{
			Steps: DefaultSteps,
			Dt:    DefaultDt,
		},
		Mapping: mapping.DefaultParams(),
		Playback: PlaybackConfig{
			BPM:           DefaultBPM,
			StepsPerCycle: playback.DefaultStepsPerCycle,
			Engine:        DefaultEngine,
			Voices:        append([]string(nil), playback.DefaultVoices...),
			Registry:      []string{"sine", "square", "triangle", "sawtooth"},
		},
		Seed: DefaultSeed,
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := LoadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto decodes the file at path over cfg, so keys missing from the
// file keep cfg's values.
func LoadInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DynamoConfig is the integration section as a run config.
func (c *Config) DynamoConfig() dynamo.Config {
	return dynamo.Config{Steps: c.Integration.Steps, Dt: c.Integration.Dt}
}

func (c *Config) Validate() error {
	for name, v := range map[string]float64{
		"sigma": c.System.Sigma, "rho": c.System.Rho, "beta": c.System.Beta,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: system.%s must be finite", ErrInvalid, name)
		}
	}
	if err := c.DynamoConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Mapping.Validate(); err != nil {
		return fmt.Errorf("%w: mapping: %v", ErrInvalid, err)
	}
	if c.Playback.BPM <= 0 || math.IsNaN(c.Playback.BPM) || math.IsInf(c.Playback.BPM, 0) {
		return fmt.Errorf("%w: playback.bpm must be positive, got %g", ErrInvalid, c.Playback.BPM)
	}
	if c.Playback.StepsPerCycle < 0 {
		return fmt.Errorf("%w: playback.steps_per_cycle must be non-negative", ErrInvalid)
	}
	return nil
}
