package config

import (
	"fmt"
	"os"

	"github.com/san-kum/seirsim/internal/dynamo"
	"github.com/san-kum/seirsim/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDuration = 180
	DefaultSubsteps = 10
	DefaultS0       = 0.99
	DefaultI0       = 0.01
	DefaultBeta     = 0.5
	DefaultRho      = 5.0
	DefaultGamma    = 7.0
)

type Config struct {
	Duration int           `yaml:"duration"`
	Substeps int           `yaml:"substeps"`
	Initial  InitialConfig `yaml:"initial"`
	Params   models.Params `yaml:"params"`
}

// InitialConfig only carries S and I. Exposed and recovered always start at zero.
type InitialConfig struct {
	S0 float64 `yaml:"s0"`
	I0 float64 `yaml:"i0"`
}

func DefaultConfig() *Config {
	return &Config{
		Duration: DefaultDuration,
		Substeps: DefaultSubsteps,
		Initial: InitialConfig{
			S0: DefaultS0,
			I0: DefaultI0,
		},
		Params: models.Params{
			Beta:  DefaultBeta,
			Rho:   DefaultRho,
			Gamma: DefaultGamma,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be positive, got %d", dynamo.ErrInvalidGrid, c.Substeps)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative, got %d", dynamo.ErrInvalidGrid, c.Duration)
	}
	if c.Initial.S0 < 0 || c.Initial.I0 < 0 {
		return fmt.Errorf("%w: initial compartments must be non-negative", dynamo.ErrParameterBounds)
	}
	return c.Params.Validate()
}

func (c *Config) GetInitState() dynamo.State {
	return models.InitialState(c.Initial.S0, c.Initial.I0)
}
