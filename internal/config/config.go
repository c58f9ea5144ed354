package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sysflow/internal/builtin"
)

const (
	DefaultModel    = "decay"
	DefaultDt       = 1.0
	DefaultDuration = 50.0
)

// Config selects a model and its run settings. Params override the
// model's default parameter values by name.
type Config struct {
	Model    string             `yaml:"model"`
	Dt       float64            `yaml:"dt"`
	Duration float64            `yaml:"duration"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	TimeUnit string             `yaml:"time_unit,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		TimeUnit: "day",
	}
}

// ForModel returns a config preloaded with a registered model's own
// timestep and duration.
func ForModel(name string) (*Config, error) {
	e, err := builtin.Get(name)
	if err != nil {
		return nil, err
	}
	return &Config{
		Model:    e.Name,
		Dt:       e.Dt,
		Duration: e.Duration,
		TimeUnit: "day",
	}, nil
}

// Load reads a YAML config; absent keys keep their defaults.
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
