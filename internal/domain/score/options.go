package score

import "github.com/okian/salesboard/internal/domain/model"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the point-total multipliers. Zero or negative values
// keep their defaults.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w.DealPoints > 0 {
			e.weights.DealPoints = w.DealPoints
		}
		if w.CallPoints > 0 {
			e.weights.CallPoints = w.CallPoints
		}
		if w.TalkMinutePoints > 0 {
			e.weights.TalkMinutePoints = w.TalkMinutePoints
		}
	}
}

// WithKPIs replaces the tracked KPI definitions.
func WithKPIs(kpis []model.KPIDefinition) Option {
	return func(e *Engine) {
		if len(kpis) > 0 {
			e.kpis = kpis
		}
	}
}

// WithProfiles registers target profiles by name. The default profile is
// kept unless explicitly replaced.
func WithProfiles(profiles []model.TargetProfile) Option {
	return func(e *Engine) {
		for _, p := range profiles {
			if p.Name != "" {
				e.profiles[p.Name] = p
			}
		}
	}
}

// WithOverrides sets per-member KPI target overrides.
func WithOverrides(overrides map[int]map[string]int) Option {
	return func(e *Engine) {
		if overrides != nil {
			e.overrides = overrides
		}
	}
}
