package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bisect/internal/bisect"
)

const (
	DefaultLow           = 0.0
	DefaultHigh          = 3.0
	DefaultMaxIterations = 10
	DefaultDelaySeconds  = 1.0
	DefaultTheme         = "cyberpunk"
)

// Config is the on-disk form of a run configuration.
type Config struct {
	Low           float64 `yaml:"low"`
	High          float64 `yaml:"high"`
	MaxIterations int     `yaml:"max_iterations"`
	DelaySeconds  float64 `yaml:"delay_seconds"`
	StepMode      bool    `yaml:"step_mode"`
	Theme         string  `yaml:"theme,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Low:           DefaultLow,
		High:          DefaultHigh,
		MaxIterations: DefaultMaxIterations,
		DelaySeconds:  DefaultDelaySeconds,
		Theme:         DefaultTheme,
	}
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file on top of base. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
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

// RunConfig converts to the engine's form. Validation is left to the engine.
func (c *Config) RunConfig() bisect.RunConfig {
	return bisect.RunConfig{
		Low:           c.Low,
		High:          c.High,
		MaxIterations: c.MaxIterations,
		Delay:         bisect.DelayFromSeconds(c.DelaySeconds),
		StepMode:      c.StepMode,
	}
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
