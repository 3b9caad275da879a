// Package activity fetches and aggregates the global CRM activity
// stream. The upstream offers no per-user filter, so the whole range is
// paged down, classified, and rolled up per roster member.
package activity

import (
	"context"
	"time"

	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/pkg/logger"
	"github.com/okian/salesboard/pkg/metrics"
)

// Default fetcher configuration constants.
const (
	defaultPageCap = 30
	defaultTimeCap = 15 * time.Second
)

// Stream is the slice of the CRM client the fetcher consumes.
type Stream interface {
	Activities(ctx context.Context, from, to time.Time, pageIndex int) ([]model.ActivityRecord, bool, error)
}

// Fetcher pages the activity stream under a hard page and time cap.
type Fetcher struct {
	stream  Stream
	log     logger.Logger
	clock   func() time.Time
	pageCap int
	timeCap time.Duration
}

// FetcherOption applies a configuration option to the Fetcher.
type FetcherOption func(*Fetcher)

// WithPageCap bounds the number of pages fetched in one call.
func WithPageCap(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageCap = n
		}
	}
}

// WithTimeCap bounds the elapsed wall-clock time of one call.
func WithTimeCap(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeCap = d
		}
	}
}

// WithFetcherClock injects a clock for deterministic cap tests.
func WithFetcherClock(clock func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(log logger.Logger) FetcherOption {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFetcher creates a Fetcher over the given stream.
func NewFetcher(stream Stream, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		stream:  stream,
		clock:   time.Now,
		pageCap: defaultPageCap,
		timeCap: defaultTimeCap,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Get()
	}
	return f
}

// FetchRange pages the stream for [from, to). It stops on an empty page,
// an explicit last-page signal, the page cap, or the time cap, whichever
// comes first, and returns the unsorted concatenation fetched so far.
// A capped or mid-range-failed result is a documented partial outcome,
// not an error; only a failure on the very first page is.
func (f *Fetcher) FetchRange(ctx context.Context, from, to time.Time) (records []model.ActivityRecord, partial bool, err error) {
	started := f.clock()
	for page := 0; ; page++ {
		if page >= f.pageCap {
			f.log.Warn(ctx, "activity fetch hit page cap",
				logger.Int("pages", page),
				logger.Int("records", len(records)),
			)
			return records, true, nil
		}
		if f.clock().Sub(started) >= f.timeCap {
			f.log.Warn(ctx, "activity fetch hit time cap",
				logger.Int("pages", page),
				logger.Int("records", len(records)),
			)
			return records, true, nil
		}

		batch, last, err := f.stream.Activities(ctx, from, to, page)
		if err != nil {
			if len(records) == 0 {
				return nil, false, err
			}
			f.log.Warn(ctx, "activity fetch failed mid-range, keeping partial snapshot",
				logger.Int("pages", page),
				logger.Int("records", len(records)),
				logger.Error(err),
			)
			return records, true, nil
		}
		metrics.RecordActivityPage(len(batch))
		if len(batch) == 0 {
			return records, false, nil
		}
		records = append(records, batch...)
		if last {
			return records, false, nil
		}
	}
}
