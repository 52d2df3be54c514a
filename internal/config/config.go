package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	DefaultMass         = 1.0
	DefaultStiffness    = 20.0
	DefaultDamping      = 0.0
	DefaultDisplacement = 0.2
	DefaultVelocity     = 0.0
	DefaultDt           = 0.016
	DefaultCadenceMs    = 16
	DefaultSteps        = 1000
	DefaultDataDir      = ".springsim"
	DefaultLogLevel     = "info"
)

type Config struct {
	Mass         float64 `yaml:"m"`
	Stiffness    float64 `yaml:"k"`
	Damping      float64 `yaml:"c"`
	Displacement float64 `yaml:"x0"`
	Velocity     float64 `yaml:"v0"`
	Dt           float64 `yaml:"dt"`
	CadenceMs    int     `yaml:"cadence"`
	Steps        int     `yaml:"steps"`
	DataDir      string  `yaml:"data_dir"`
	LogLevel     string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Mass:         DefaultMass,
		Stiffness:    DefaultStiffness,
		Damping:      DefaultDamping,
		Displacement: DefaultDisplacement,
		Velocity:     DefaultVelocity,
		Dt:           DefaultDt,
		CadenceMs:    DefaultCadenceMs,
		Steps:        DefaultSteps,
		DataDir:      DefaultDataDir,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base, e.g. a preset. base is not
// modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params is the parameter map handed to the model's Reset.
func (c *Config) Params() dynamo.Params {
	return dynamo.Params{
		"m":  c.Mass,
		"k":  c.Stiffness,
		"c":  c.Damping,
		"x0": c.Displacement,
		"v0": c.Velocity,
		"dt": c.Dt,
	}
}

// Cadence is the wall-clock tick period; non-positive values fall back to
// the default.
func (c *Config) Cadence() time.Duration {
	if c.CadenceMs <= 0 {
		return DefaultCadenceMs * time.Millisecond
	}
	return time.Duration(c.CadenceMs) * time.Millisecond
}

// Validate checks the values a model reset would reject, plus dt.
func (c *Config) Validate() error {
	p := c.Params()
	for _, key := range []string{"m", "k", "dt"} {
		if _, err := dynamo.RequirePositive(p, key); err != nil {
			return err
		}
	}
	if c.Steps < 0 {
		return fmt.Errorf("config: steps must be non-negative, got %d", c.Steps)
	}
	return nil
}
