package config

// Overrides holds values set explicitly on the command line. A nil field
// leaves the underlying config untouched.
type Overrides struct {
	Seed   *int64
	Steps  *int
	Dt     *float64
	Sigma  *float64
	Rho    *float64
	Beta   *float64
	BPM    *float64
	Engine *string
	Output *string
	Scale  *string
}

func (o Overrides) Apply(c *Config) {
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.Steps != nil {
		c.Integration.Steps = *o.Steps
	}
	if o.Dt != nil {
		c.Integration.Dt = *o.Dt
	}
	if o.Sigma != nil {
		c.System.Sigma = *o.Sigma
	}
	if o.Rho != nil {
		c.System.Rho = *o.Rho
	}
	if o.Beta != nil {
		c.System.Beta = *o.Beta
	}
	if o.BPM != nil {
		c.Playback.BPM = *o.BPM
	}
	if o.Engine != nil {
		c.Playback.Engine = *o.Engine
	}
	if o.Output != nil {
		c.Playback.Output = *o.Output
	}
	if o.Scale != nil {
		c.Mapping.Scale = *o.Scale
	}
}

// Resolve builds a validated config from, lowest to highest precedence,
// the defaults, the named preset, the file at path and the overrides.
// Empty preset or path skip that layer.
func Resolve(preset, path string, o Overrides) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		p, err := GetPreset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}
	if path != "" {
		if err := LoadInto(path, cfg); err != nil {
			return nil, err
		}
	}
	o.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
