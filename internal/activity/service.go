package activity

import (
	"context"
	"time"

	"github.com/okian/salesboard/internal/adapters/cache"
	"github.com/okian/salesboard/internal/adapters/kvstore"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/classify"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/pkg/logger"
)

// Default service configuration constants.
const (
	defaultCacheTTL = 10 * time.Minute

	freshCacheName    = "activities"
	lastGoodCacheName = "activities-lastgood"
)

// Summary is the classified month-to-date roll-up for the whole roster.
type Summary struct {
	Members   map[int]*model.MemberActivity `json:"members"`
	Wins      []model.Win                   `json:"wins"`
	Partial   bool                          `json:"partial"`
	FetchedAt time.Time                     `json:"fetched_at"`
}

// Service fetches, classifies, and memoizes activity aggregates.
type Service struct {
	fetcher    *Fetcher
	classifier *classify.Classifier
	cal        *bizdate.Calendar
	log        logger.Logger
	clock      func() time.Time
	cacheTTL   time.Duration
	fresh      *cache.Cache[Summary]
	lastGood   *cache.Cache[Summary]
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithServiceClock injects a clock for deterministic tests.
func WithServiceClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithServiceLogger sets a custom logger.
func WithServiceLogger(log logger.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCacheTTL sets the freshness window of the aggregate cache.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewService creates an activity aggregation service.
func NewService(fetcher *Fetcher, classifier *classify.Classifier, kv kvstore.Store, cal *bizdate.Calendar, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:    fetcher,
		classifier: classifier,
		cal:        cal,
		clock:      time.Now,
		cacheTTL:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fresh = cache.New[Summary](kv, freshCacheName, s.cacheTTL)
	s.lastGood = cache.New[Summary](kv, lastGoodCacheName, 0)
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// MonthToDate returns the classified aggregate for the current business
// month. Partial snapshots are cached; an entirely empty fetch is not,
// because emptiness is frequently a rate-limiting artifact, and a cached
// false "no activity" state would poison every read until expiry.
func (s *Service) MonthToDate(ctx context.Context, roster []model.TeamMember) (*Summary, error) {
	now := s.clock()
	key := s.cal.MonthKey(now)

	if cached, ok, err := s.fresh.Get(ctx, key); err == nil && ok {
		return &cached, nil
	}

	records, partial, err := s.fetcher.FetchRange(ctx, s.cal.StartOfMonth(now), now)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		if prev, ok, err := s.lastGood.Get(ctx, key); err == nil && ok {
			s.log.Warn(ctx, "empty activity fetch, serving last good snapshot",
				logger.Time("fetched_at", prev.FetchedAt),
			)
			return &prev, nil
		}
		return &Summary{Members: map[int]*model.MemberActivity{}, FetchedAt: now}, nil
	}

	res := s.classifier.Classify(records, roster)
	summary := Summary{
		Members:   res.Members,
		Wins:      res.Wins,
		Partial:   partial,
		FetchedAt: now,
	}
	if err := s.fresh.Set(ctx, key, summary); err != nil {
		s.log.Warn(ctx, "failed to cache activity aggregate", logger.Error(err))
	}
	if err := s.lastGood.Set(ctx, key, summary); err != nil {
		s.log.Warn(ctx, "failed to persist last good aggregate", logger.Error(err))
	}
	return &summary, nil
}

// Invalidate drops the fresh aggregate for the current business month,
// forcing the next read to refetch. The last-good snapshot is kept.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.fresh.Delete(ctx, s.cal.MonthKey(s.clock()))
}
