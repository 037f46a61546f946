package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level sterling.yaml configuration.
type Config struct {
	Rates  RatesConfig  `yaml:"rates"`
	Output OutputConfig `yaml:"output"`
}

// RatesConfig controls the historical-rate source.
type RatesConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// OutputConfig controls output file defaulting.
type OutputConfig struct {
	Suffix string `yaml:"suffix"` // appended to the input stem when no -o is given
}

// Load reads a sterling.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Rates: RatesConfig{
			BaseURL:        "https://api.frankfurter.dev/v1",
			TimeoutSeconds: 10,
		},
		Output: OutputConfig{
			Suffix: "_normalized",
		},
	}
}
