// Package config loads detection thresholds from YAML, layered over the
// per-detector defaults so a partial file only overrides what it names.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jayalath-jknr/GraphRisk/internal/detect/bonus"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/mirror"
	"github.com/jayalath-jknr/GraphRisk/internal/detect/opposite"
)

// Output controls where report artifacts land.
type Output struct {
	Dir string `yaml:"dir"`
}

// Config is the full detection configuration.
type Config struct {
	// Workers sizes the fixed worker pool for pair scans; 0 means one per
	// CPU.
	Workers  int             `yaml:"workers"`
	Opposite opposite.Config `yaml:"opposite_trading"`
	Mirror   mirror.Config   `yaml:"mirror_trading"`
	Bonus    bonus.Config    `yaml:"bonus_abuse"`
	Output   Output          `yaml:"output"`
}

// Default returns the production configuration.
func Default() *Config {
	return &Config{
		Workers:  0,
		Opposite: opposite.DefaultConfig(),
		Mirror:   mirror.DefaultConfig(),
		Bonus:    bonus.DefaultConfig(),
		Output:   Output{Dir: "out/reports"},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg, nil
}
