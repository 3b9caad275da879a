// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/okian/salesboard/internal/activity"
	"github.com/okian/salesboard/internal/adapters/cache"
	"github.com/okian/salesboard/internal/adapters/kvstore"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/classify"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/domain/score"
	"github.com/okian/salesboard/internal/scan"
	"github.com/okian/salesboard/internal/upstream/credentials"
	"github.com/okian/salesboard/internal/upstream/notify"
	"github.com/okian/salesboard/internal/upstream/telephony"
	"github.com/okian/salesboard/pkg/logger"
	"github.com/okian/salesboard/pkg/metrics"
)

const (
	boardCacheName  = "board"
	defaultBoardTTL = 90 * time.Second
)

// DealScanner runs one invocation of the resumable deal scan.
type DealScanner interface {
	Run(ctx context.Context, roster []model.TeamMember) (*scan.Result, error)
}

// ActivitySource serves classified month-to-date activity aggregates.
type ActivitySource interface {
	MonthToDate(ctx context.Context, roster []model.TeamMember) (*activity.Summary, error)
	Invalidate(ctx context.Context) error
}

// Service composes the deal scan, activity aggregation, telephony stats,
// and scoring into leaderboard reads.
type Service struct {
	mu sync.Mutex

	roster     []model.TeamMember
	cal        *bizdate.Calendar
	scanner    DealScanner
	activities ActivitySource
	phones     telephony.Provider
	engine     *score.Engine
	notifier   notify.Notifier

	boardTTL   time.Duration
	boardCache *cache.Cache[model.Board]
	clock      func() time.Time
	logger     logger.Logger

	// winsPostedThrough marks the newest win timestamp already sent to
	// the notifier, so repeated builds do not re-announce the same wins.
	winsPostedThrough time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBoardTTL sets the memoization window of the composed leaderboard.
func WithBoardTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.boardTTL = ttl
		}
	}
}

// WithTelephony sets the call-stats provider.
func WithTelephony(p telephony.Provider) Option {
	return func(s *Service) {
		if p != nil {
			s.phones = p
		}
	}
}

// WithNotifier sets the recent-wins notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock injects a clock for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration.
func New(
	roster []model.TeamMember,
	cal *bizdate.Calendar,
	scanner DealScanner,
	activities ActivitySource,
	engine *score.Engine,
	kv kvstore.Store,
	opts ...Option,
) *Service {
	s := &Service{
		roster:     roster,
		cal:        cal,
		scanner:    scanner,
		activities: activities,
		engine:     engine,
		phones:     telephony.Noop{},
		notifier:   notify.Noop{},
		boardTTL:   defaultBoardTTL,
		clock:      time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.boardCache = cache.New[model.Board](kv, boardCacheName, s.boardTTL)
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// BuildLeaderboard returns the composed leaderboard for the current
// business month, memoized briefly so dashboard polling does not hammer
// the upstreams. Each source degrades independently to zeros when the
// upstream session is gone.
func (s *Service) BuildLeaderboard(ctx context.Context) (*model.Board, error) {
	now := s.clock()
	key := s.cal.MonthKey(now)

	if board, ok, err := s.boardCache.Get(ctx, key); err == nil && ok {
		return &board, nil
	}

	started := now
	defer func() {
		metrics.ObserveBuildDuration(time.Since(started))
	}()

	summary, err := s.monthActivities(ctx)
	if err != nil {
		return nil, err
	}

	scanRes, err := s.dealScan(ctx)
	if err != nil {
		return nil, err
	}

	calls := s.callStats(ctx, now)

	board := s.compose(summary, scanRes, calls, now)
	s.announceWins(ctx, board.Wins, scanRes.ColdStart, now)

	if err := s.boardCache.Set(ctx, key, *board); err != nil {
		s.logger.Warn(ctx, "board cache write failed", logger.Error(err))
	}
	return board, nil
}

// TeamDeals runs one deal-scan invocation and returns its counters.
func (s *Service) TeamDeals(ctx context.Context) (*scan.Result, error) {
	return s.scanner.Run(ctx, s.roster)
}

// TeamActivities returns the classified month-to-date activity summary.
func (s *Service) TeamActivities(ctx context.Context) (*activity.Summary, error) {
	return s.activities.MonthToDate(ctx, s.roster)
}

// ClearCache drops the memoized board and the fresh activity aggregate.
// Persistent scan checkpoints and last-good snapshots survive.
func (s *Service) ClearCache(ctx context.Context) error {
	key := s.cal.MonthKey(s.clock())
	if err := s.boardCache.Delete(ctx, key); err != nil {
		return err
	}
	return s.activities.Invalidate(ctx)
}

func (s *Service) monthActivities(ctx context.Context) (*activity.Summary, error) {
	summary, err := s.activities.MonthToDate(ctx, s.roster)
	if err != nil {
		if errors.Is(err, credentials.ErrNotAuthenticated) {
			s.logger.Warn(ctx, "activity source unauthenticated, serving zeros")
			return &activity.Summary{Members: map[int]*model.MemberActivity{}, Partial: true}, nil
		}
		return nil, err
	}
	return summary, nil
}

func (s *Service) dealScan(ctx context.Context) (*scan.Result, error) {
	res, err := s.scanner.Run(ctx, s.roster)
	if err != nil {
		if errors.Is(err, credentials.ErrNotAuthenticated) {
			s.logger.Warn(ctx, "deal scan unauthenticated, serving zeros")
			return &scan.Result{Counters: map[int]model.DealCounters{}}, nil
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) callStats(ctx context.Context, now time.Time) map[string]model.CallStats {
	ids := make([]string, 0, len(s.roster))
	for _, m := range s.roster {
		if m.ExtensionID != "" {
			ids = append(ids, m.ExtensionID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	stats, err := s.phones.CallStats(ctx, ids, s.cal.StartOfMonth(now), now)
	if err != nil {
		s.logger.Warn(ctx, "telephony stats unavailable, serving zeros", logger.Error(err))
		return nil
	}
	return stats
}

func (s *Service) compose(summary *activity.Summary, scanRes *scan.Result, calls map[string]model.CallStats, now time.Time) *model.Board {
	provisional := !scanRes.Complete || summary.Partial

	entries := make([]model.LeaderboardEntry, 0, len(s.roster))
	totals := model.TeamTotals{}
	for _, member := range s.roster {
		deals := scanRes.Counters[member.ID]
		act := summary.Members[member.ID]
		stats := calls[member.ExtensionID]

		var activityPoints, bonusPoints, dealActivityPoints int
		if act != nil {
			activityPoints = act.TotalPoints
			bonusPoints = act.BonusPoints
			if agg, ok := act.Categories[classify.CategoryDeals]; ok {
				dealActivityPoints = agg.Points
			}
		}

		talkMinutes := stats.TalkSeconds / 60
		points := s.engine.Points(score.Input{
			Deals:              deals.Deals,
			Calls:              stats.Calls,
			TalkMinutes:        talkMinutes,
			ActivityPoints:     activityPoints,
			DealActivityPoints: dealActivityPoints,
		})

		entries = append(entries, model.LeaderboardEntry{
			MemberID:       member.ID,
			Name:           member.Name,
			Deals:          deals.Deals,
			ActiveDeals:    deals.Active,
			Calls:          stats.Calls,
			TalkMinutes:    talkMinutes,
			ActivityPoints: activityPoints,
			BonusPoints:    bonusPoints,
			Points:         points,
			KPIs:           s.engine.KPIs(member, act, deals.Deals, now),
			Provisional:    provisional,
		})

		totals.Deals += deals.Deals
		totals.Calls += stats.Calls
		totals.Points += points
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	return &model.Board{
		Entries:     entries,
		Totals:      totals,
		Wins:        summary.Wins,
		LastUpdated: now,
	}
}

// announceWins posts newly observed wins to the notifier. The first scan
// generation for a period stays silent: announcing a whole month of
// backfilled wins at once is noise, not news.
func (s *Service) announceWins(ctx context.Context, wins []model.Win, coldStart bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if coldStart {
		s.winsPostedThrough = now
		return
	}

	var fresh []model.Win
	for _, w := range wins {
		if w.At.After(s.winsPostedThrough) {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		return
	}

	for _, w := range fresh {
		s.notifier.Post(ctx, w)
	}
	s.winsPostedThrough = now
}
