package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SALESBOARD_CONFIG is set
//  3. env (prefix SALESBOARD_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SALESBOARD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SALESBOARD_ADDR, SALESBOARD_SCAN_BUDGET_SECONDS, ...
	// Map env keys like SALESBOARD_SCAN_BUDGET_SECONDS -> scan_budget_seconds
	// (flat keys). Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SALESBOARD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "salesboard_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScanBudgetSeconds <= 0:
		return fmt.Errorf("%w: scan_budget_seconds must be positive", ErrInvalidConfig)
	case c.CheckpointTTLMinutes <= 0:
		return fmt.Errorf("%w: checkpoint_ttl_minutes must be positive", ErrInvalidConfig)
	case c.ScanConcurrency <= 0:
		return fmt.Errorf("%w: scan_concurrency must be positive", ErrInvalidConfig)
	case c.ActivityPageCap <= 0:
		return fmt.Errorf("%w: activity_page_cap must be positive", ErrInvalidConfig)
	case c.BonusMultiplier < 1:
		return fmt.Errorf("%w: bonus_multiplier must be at least 1", ErrInvalidConfig)
	case c.BonusWeekday < 0 || c.BonusWeekday > 6:
		return fmt.Errorf("%w: bonus_weekday must be 0..6", ErrInvalidConfig)
	}
	return nil
}
