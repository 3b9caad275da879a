// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and env vars.
// - External errors are wrapped via this package's error helpers.
package config

import (
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/domain/score"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BusinessTimezone fixes all day/month boundary arithmetic.
	BusinessTimezone string `koanf:"business_timezone"`

	// RedisAddr points at the durable KV store. Empty falls back to the
	// in-process store (state then dies with the process).
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`

	// CRMBaseURL is the upstream CRM API root.
	CRMBaseURL string `koanf:"crm_base_url"`

	// CRMAPIToken is a long-lived bearer token provisioned out of band.
	// Empty means no session until one is persisted in the KV store.
	CRMAPIToken string `koanf:"crm_api_token"`

	// WebhookURL receives recent-wins notifications; empty disables.
	WebhookURL string `koanf:"webhook_url"`

	// Scan tuning.
	ScanBudgetSeconds    int `koanf:"scan_budget_seconds"`
	CheckpointTTLMinutes int `koanf:"checkpoint_ttl_minutes"`
	ScanConcurrency      int `koanf:"scan_concurrency"`

	// Activity fetch tuning.
	ActivityPageCap         int `koanf:"activity_page_cap"`
	ActivityTimeCapSeconds  int `koanf:"activity_time_cap_seconds"`
	ActivityCacheTTLMinutes int `koanf:"activity_cache_ttl_minutes"`

	// BoardCacheTTLSeconds memoizes the composed leaderboard.
	BoardCacheTTLSeconds int `koanf:"board_cache_ttl_seconds"`

	// Promotional bonus tuning. Weekday uses time.Weekday numbering,
	// Sunday = 0.
	BonusWeekday    int     `koanf:"bonus_weekday"`
	BonusMultiplier float64 `koanf:"bonus_multiplier"`

	// Weights are the scoring multipliers.
	Weights score.Weights `koanf:"weights"`

	// Roster is the team being ranked.
	Roster []model.TeamMember `koanf:"roster"`

	// Profiles are named monthly KPI target sets.
	Profiles []model.TargetProfile `koanf:"profiles"`

	// TargetOverrides merges per-member KPI targets over the assigned
	// profile; outer key is the member id.
	TargetOverrides map[string]map[string]int `koanf:"target_overrides"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		BusinessTimezone:        bizdate.DefaultTimezone,
		ScanBudgetSeconds:       20,
		CheckpointTTLMinutes:    60,
		ScanConcurrency:         4,
		ActivityPageCap:         30,
		ActivityTimeCapSeconds:  15,
		ActivityCacheTTLMinutes: 10,
		BoardCacheTTLSeconds:    90,
		BonusWeekday:            2, // Tuesday
		BonusMultiplier:         2.0,
		Weights: score.Weights{
			DealPoints:       500,
			CallPoints:       2,
			TalkMinutePoints: 1,
		},
	}
}
