// Package telephony abstracts the call analytics provider. The provider
// itself lives outside this system; the pipeline only consumes an opaque
// per-extension call and talk-time map and degrades to zeros without it.
package telephony

import (
	"context"
	"time"

	"github.com/okian/salesboard/internal/domain/model"
)

// Provider returns call stats per telephony extension for a date range.
type Provider interface {
	CallStats(ctx context.Context, extensionIDs []string, from, to time.Time) (map[string]model.CallStats, error)
}

// Noop is the fallback Provider when telephony is unconfigured or the
// session is missing; every extension reports zero.
type Noop struct{}

// CallStats returns an empty map.
func (Noop) CallStats(_ context.Context, _ []string, _, _ time.Time) (map[string]model.CallStats, error) {
	return map[string]model.CallStats{}, nil
}
