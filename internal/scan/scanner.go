// Package scan implements the resumable, rate-limit-aware placement
// scanner. The upstream jobs API offers only small fixed-size pages and
// no per-salesperson filter, so deal counts are reconciled by paging the
// whole job list, surviving hard time budgets by checkpointing progress
// to durable storage and deduplicating across repeated partial scans.
package scan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/salesboard/internal/adapters/kvstore"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/pkg/logger"
	"github.com/okian/salesboard/pkg/metrics"
)

// ScanTypeDeals is the checkpoint scope for the placement/deal scan.
const ScanTypeDeals = "deals"

// Default scanner configuration constants.
const (
	defaultTimeBudget  = 20 * time.Second
	defaultFreshness   = time.Hour
	defaultConcurrency = 4
)

// Statuses that keep a deal counted but not active.
var inactiveStatuses = map[string]bool{
	"terminated": true,
	"cancelled":  true,
}

// CRM is the slice of the CRM client the scanner consumes.
type CRM interface {
	// JobsPage returns one page of job ids at the given offset, sorted
	// by creation date ascending, plus the total job count.
	JobsPage(ctx context.Context, start int) (ids []string, total int, err error)

	// Placements returns the placements recorded against one job.
	Placements(ctx context.Context, jobID string) ([]model.PlacementRecord, error)
}

// Scanner pages through jobs and reconciles per-member deal counters.
type Scanner struct {
	crm         CRM
	kv          kvstore.Store
	cal         *bizdate.Calendar
	log         logger.Logger
	clock       func() time.Time
	scanType    string
	budget      time.Duration
	freshness   time.Duration
	concurrency int
}

// New creates a Scanner with configuration options.
func New(crmClient CRM, kv kvstore.Store, cal *bizdate.Calendar, opts ...Option) *Scanner {
	s := &Scanner{
		crm:         crmClient,
		kv:          kv,
		cal:         cal,
		clock:       time.Now,
		scanType:    ScanTypeDeals,
		budget:      defaultTimeBudget,
		freshness:   defaultFreshness,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Result is the outcome of one scan invocation.
type Result struct {
	Counters   map[int]model.DealCounters
	Unmatched  map[string]int
	Complete   bool
	Generation string
	ColdStart  bool
}

// Run executes one invocation of the scan state machine. A completed,
// fresh checkpoint is served as-is; an expired one resets the whole
// generation; anything else resumes at the persisted cursor until the
// time budget runs out. The checkpoint is persisted before Run returns,
// whatever happened.
func (s *Scanner) Run(ctx context.Context, roster []model.TeamMember) (*Result, error) {
	started := s.clock()
	periodKey := s.cal.MonthKey(started)

	cp, err := s.load(ctx, periodKey)
	if err != nil {
		return nil, err
	}
	coldStart := cp == nil
	if coldStart {
		cp = newCheckpoint(s.scanType, periodKey, started)
	}

	if cp.Complete {
		if started.Sub(cp.UpdatedAt) < s.freshness {
			metrics.RecordScanInvocation("cached")
			return s.result(cp, coldStart), nil
		}
		// Expired: staleness from upstream corrections is bounded by a
		// full generation reset, never incremental re-validation.
		s.log.Info(ctx, "checkpoint expired, resetting generation",
			logger.String("period", periodKey),
			logger.String("generation", cp.Generation),
		)
		cp = newCheckpoint(s.scanType, periodKey, started)
	}

	byEmail := make(map[string]model.TeamMember, len(roster))
	for _, m := range roster {
		byEmail[strings.ToLower(m.Email)] = m
	}

	var scanErr error
	for {
		if s.clock().Sub(started) >= s.budget {
			s.log.Info(ctx, "scan time budget exceeded, persisting partial progress",
				logger.Int("cursor", cp.Cursor),
				logger.Int("total", cp.Total),
			)
			break
		}
		if cp.Total > 0 && cp.Cursor >= cp.Total {
			cp.Complete = true
			break
		}

		ids, total, err := s.crm.JobsPage(ctx, cp.Cursor)
		if err != nil {
			// A listing failure aborts only this invocation; persisted
			// progress carries into the next one.
			scanErr = errors.Join(ErrListingFetch, err)
			break
		}
		metrics.RecordScanPage()
		cp.Total = total

		if len(ids) == 0 {
			cp.Complete = true
			break
		}

		s.scanJobs(ctx, cp, ids, byEmail)
		cp.Cursor += len(ids)
		if cp.Cursor >= cp.Total {
			cp.Complete = true
			break
		}
	}

	cp.UpdatedAt = s.clock()
	if err := s.persist(ctx, cp); err != nil {
		return nil, err
	}
	metrics.ObserveScanDuration(s.clock().Sub(started))

	switch {
	case scanErr != nil:
		metrics.RecordScanInvocation("error")
		return nil, scanErr
	case cp.Complete:
		metrics.RecordScanInvocation("complete")
	default:
		metrics.RecordScanInvocation("partial")
	}
	return s.result(cp, coldStart), nil
}

// scanJobs fetches placements for the page's unscanned jobs with bounded
// concurrency and folds them into the checkpoint. Individual placement
// fetch failures mark the job scanned-but-empty and never abort the page.
func (s *Scanner) scanJobs(ctx context.Context, cp *model.ScanCheckpoint, ids []string, byEmail map[string]model.TeamMember) {
	pending := make([]string, 0, len(ids))
	for _, id := range ids {
		if !cp.ScannedJobs[id] {
			pending = append(pending, id)
		}
	}

	var mu sync.Mutex
	fetched := make(map[string][]model.PlacementRecord, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, jobID := range pending {
		g.Go(func() error {
			records, err := s.crm.Placements(gctx, jobID)
			if err != nil {
				s.log.Warn(gctx, "placement fetch failed, marking job scanned",
					logger.String("job", jobID),
					logger.Error(err),
				)
				records = nil
			}
			mu.Lock()
			fetched[jobID] = records
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Fold in page order so resumed scans stay deterministic.
	for _, jobID := range pending {
		for _, rec := range fetched[jobID] {
			s.apply(cp, rec, byEmail)
		}
		cp.ScannedJobs[jobID] = true
	}
}

// apply folds one placement into the checkpoint counters.
func (s *Scanner) apply(cp *model.ScanCheckpoint, rec model.PlacementRecord, byEmail map[string]model.TeamMember) {
	// Renewals are contract extensions, not new deals.
	if rec.RenewalNumber > 1 {
		metrics.RecordRenewalExcluded()
		return
	}
	if rec.ApplicationID == "" {
		return
	}
	if cp.SeenApps[rec.ApplicationID] {
		metrics.RecordPlacementDeduplicated()
		return
	}
	cp.SeenApps[rec.ApplicationID] = true

	member, ok := byEmail[strings.ToLower(rec.PlacedBy)]
	if !ok {
		cp.Unmatched[strings.ToLower(rec.PlacedBy)]++
		metrics.RecordUnmatchedAttribution()
		return
	}

	counters := cp.Counters[member.ID]
	counters.Deals++
	if !inactiveStatuses[strings.ToLower(rec.Status)] {
		counters.Active++
	}
	cp.Counters[member.ID] = counters
	metrics.RecordPlacementCounted()
}

func (s *Scanner) result(cp *model.ScanCheckpoint, coldStart bool) *Result {
	counters := make(map[int]model.DealCounters, len(cp.Counters))
	for id, c := range cp.Counters {
		counters[id] = c
	}
	unmatched := make(map[string]int, len(cp.Unmatched))
	for email, n := range cp.Unmatched {
		unmatched[email] = n
	}
	return &Result{
		Counters:   counters,
		Unmatched:  unmatched,
		Complete:   cp.Complete,
		Generation: cp.Generation,
		ColdStart:  coldStart,
	}
}
