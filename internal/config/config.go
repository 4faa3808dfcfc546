// Package config loads and validates the world-start parameter file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HiddenPCOfficial/biotica/internal/civ"
	"github.com/HiddenPCOfficial/biotica/internal/genesis"
)

// Config is the full world-start parameter set.
type Config struct {
	Seed          uint32 `yaml:"seed"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	CreatureCount int    `yaml:"creatureCount"`

	Tuner genesis.TunerConfig `yaml:"tuner"`
	Civ   civ.Config          `yaml:"civ"`

	NarrativeAPIKey    string `yaml:"narrativeApiKey"`
	NarrativeTimeoutMs int    `yaml:"narrativeTimeoutMs"`

	DBPath string `yaml:"dbPath"`
}

// Default returns a runnable configuration.
func Default() Config {
	return Config{
		Width:              96,
		Height:             96,
		CreatureCount:      120,
		Tuner:              genesis.DefaultTunerConfig(),
		Civ:                civ.DefaultConfig(),
		NarrativeTimeoutMs: 30000,
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects out-of-range parameters before any state exists.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("world dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.CreatureCount < 0 {
		return fmt.Errorf("creature count must not be negative, got %d", c.CreatureCount)
	}
	if c.Tuner.Enabled {
		if err := c.Tuner.Validate(); err != nil {
			return err
		}
	}
	if err := c.Civ.Validate(); err != nil {
		return err
	}
	return nil
}
