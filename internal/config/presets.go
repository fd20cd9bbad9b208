package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]func(*Config){
	"classic": func(c *Config) {},
	// Long, slow sweep across both wings.
	"drift": func(c *Config) {
		c.Integration.Steps = 512
		c.Integration.Dt = 0.005
		c.Playback.BPM = 84
		c.Mapping.Scale = "dorian"
		c.Mapping.KickProb = 0.5
		c.Mapping.HatProb = 0.3
	},
	// Coarse steps make every wing switch audible.
	"storm": func(c *Config) {
		c.Integration.Steps = 192
		c.Integration.Dt = 0.02
		c.Playback.BPM = 150
		c.Mapping.Scale = "blues"
		c.Mapping.NoteSpan = 36
		c.Mapping.HatThreshold = 0.4
		c.Mapping.HatProb = 0.9
	},
	// rho = 99.96 sits in a periodic window.
	"periodic": func(c *Config) {
		c.System.Rho = 99.96
		c.Integration.Steps = 256
		c.Mapping.Scale = "pentatonic"
	},
	"sparse": func(c *Config) {
		c.Integration.Steps = 128
		c.Playback.BPM = 96
		c.Mapping.KickProb = 0.4
		c.Mapping.SnareProb = 0.2
		c.Mapping.HatProb = 0.1
		c.Mapping.GainMin = 0.2
		c.Mapping.GainMax = 0.6
	},
}

// GetPreset returns a fresh config with the named preset applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
