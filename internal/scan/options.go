package scan

import (
	"time"

	"github.com/okian/salesboard/pkg/logger"
)

// Option applies a configuration option to the Scanner.
type Option func(*Scanner)

// WithTimeBudget bounds the wall-clock time of one invocation.
func WithTimeBudget(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.budget = d
		}
	}
}

// WithFreshness sets how long a completed checkpoint is trusted before
// the generation resets.
func WithFreshness(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.freshness = d
		}
	}
}

// WithConcurrency bounds the per-page placement fetch fan-out.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock injects a clock for deterministic budget and TTL tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Scanner) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}
