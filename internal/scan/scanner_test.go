package scan_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/salesboard/internal/adapters/kvstore"
	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/scan"
	"github.com/okian/salesboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// fakeCRM serves fixed job pages keyed by offset.
type fakeCRM struct {
	mu            sync.Mutex
	pages         map[int][]string
	total         int
	placements    map[string][]model.PlacementRecord
	pageErrs      map[int]error
	placementErrs map[string]error
	jobsCalls     int
	jobsStarts    []int
	onJobsPage    func()
}

func (f *fakeCRM) JobsPage(_ context.Context, start int) ([]string, int, error) {
	f.mu.Lock()
	f.jobsCalls++
	f.jobsStarts = append(f.jobsStarts, start)
	hook := f.onJobsPage
	err := f.pageErrs[start]
	ids := f.pages[start]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, 0, err
	}
	return ids, f.total, nil
}

func (f *fakeCRM) Placements(_ context.Context, jobID string) ([]model.PlacementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.placementErrs[jobID]; err != nil {
		return nil, err
	}
	return f.placements[jobID], nil
}

func placement(job, app, email, status string, renewal int) model.PlacementRecord {
	return model.PlacementRecord{
		JobID:         job,
		ApplicationID: app,
		PlacedBy:      email,
		Status:        status,
		RenewalNumber: renewal,
	}
}

var roster = []model.TeamMember{
	{ID: 1, Name: "Anna", Email: "a@x.com"},
	{ID: 2, Name: "Ben", Email: "b@x.com"},
}

type fixture struct {
	crm     *fakeCRM
	kv      *kvstore.MemoryStore
	scanner *scan.Scanner
	now     time.Time
	advance func(time.Duration)
}

func newFixture(crm *fakeCRM, opts ...scan.Option) *fixture {
	fx := &fixture{
		crm: crm,
		kv:  kvstore.NewMemoryStore(),
		now: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
	fx.advance = func(d time.Duration) { fx.now = fx.now.Add(d) }
	all := append([]scan.Option{
		scan.WithClock(func() time.Time { return fx.now }),
	}, opts...)
	fx.scanner = scan.New(crm, fx.kv, bizdate.MustNew("Europe/Amsterdam"), all...)
	return fx
}

func TestScanDedupAcrossPages(t *testing.T) {
	Convey("Given a placement duplicated across two pages", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1", "J2"}, 2: {"J3", "J4"}},
			total: 4,
			placements: map[string][]model.PlacementRecord{
				"J1": {placement("J1", "A1", "a@x.com", "active", 0)},
				"J3": {placement("J3", "A1", "a@x.com", "active", 0)},
			},
		}
		fx := newFixture(crm)

		Convey("When the scan runs to completion", func() {
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then the application id is counted exactly once", func() {
				So(res.Complete, ShouldBeTrue)
				So(res.Counters[1].Deals, ShouldEqual, 1)
				So(res.Counters[1].Active, ShouldEqual, 1)
			})
		})
	})
}

func TestRenewalAndStatusFiltering(t *testing.T) {
	Convey("Given placements with renewals and inactive statuses", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1"}},
			total: 1,
			placements: map[string][]model.PlacementRecord{
				"J1": {
					placement("J1", "A1", "a@x.com", "active", 0),
					placement("J1", "A2", "a@x.com", "active", 1),
					placement("J1", "A3", "a@x.com", "active", 2),
					placement("J1", "A4", "A@X.com", "Terminated", 0),
					placement("J1", "A5", "ghost@x.com", "active", 0),
				},
			},
		}
		fx := newFixture(crm)

		Convey("When the scan runs", func() {
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then renewal numbers above one never count", func() {
				So(res.Counters[1].Deals, ShouldEqual, 3) // A1, A2, A4
			})

			Convey("Then terminated placements count as deals but not active", func() {
				So(res.Counters[1].Active, ShouldEqual, 2)
			})

			Convey("Then email matching is case-insensitive", func() {
				// A4 attributed through the upper-cased spelling.
				So(res.Counters[1].Deals, ShouldEqual, 3)
			})

			Convey("Then unmatched attribution is recorded, never fatal", func() {
				So(res.Unmatched["ghost@x.com"], ShouldEqual, 1)
				So(res.Counters[2].Deals, ShouldEqual, 0)
			})
		})
	})
}

func TestResumeAfterBudget(t *testing.T) {
	Convey("Given a scan whose first page exhausts the time budget", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1", "J2"}, 2: {"J3", "J4"}},
			total: 4,
			placements: map[string][]model.PlacementRecord{
				"J1": {placement("J1", "A1", "a@x.com", "active", 0)},
				"J3": {placement("J3", "A3", "b@x.com", "active", 0)},
			},
		}
		fx := newFixture(crm)
		crm.onJobsPage = func() { fx.advance(25 * time.Second) }

		Convey("When the first invocation runs", func() {
			res1, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then it persists partial progress", func() {
				So(res1.Complete, ShouldBeFalse)
				So(res1.Counters[1].Deals, ShouldEqual, 1)
				So(res1.Counters[2].Deals, ShouldEqual, 0)
			})

			Convey("And when the next invocation resumes", func() {
				res2, err := fx.scanner.Run(context.Background(), roster)
				So(err, ShouldBeNil)

				Convey("Then it picks up at the persisted cursor", func() {
					So(crm.jobsStarts, ShouldResemble, []int{0, 2})
				})

				Convey("Then counters stay monotonic within the generation", func() {
					So(res2.Counters[1].Deals, ShouldBeGreaterThanOrEqualTo, res1.Counters[1].Deals)
				})

				Convey("Then the resumed total matches a single full scan", func() {
					So(res2.Complete, ShouldBeTrue)
					So(res2.Counters[1].Deals, ShouldEqual, 1)
					So(res2.Counters[2].Deals, ShouldEqual, 1)
					So(res2.Generation, ShouldEqual, res1.Generation)
				})
			})
		})
	})
}

func TestCompleteCheckpointCaching(t *testing.T) {
	Convey("Given a completed scan", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1"}},
			total: 1,
			placements: map[string][]model.PlacementRecord{
				"J1": {placement("J1", "A1", "a@x.com", "active", 0)},
			},
		}
		fx := newFixture(crm, scan.WithFreshness(time.Hour))
		first, err := fx.scanner.Run(context.Background(), roster)
		So(err, ShouldBeNil)
		So(first.Complete, ShouldBeTrue)
		callsAfterFirst := crm.jobsCalls

		Convey("When invoked again within the freshness TTL", func() {
			fx.advance(30 * time.Minute)
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then the checkpoint is served without touching upstream", func() {
				So(res.Complete, ShouldBeTrue)
				So(res.Counters[1].Deals, ShouldEqual, 1)
				So(crm.jobsCalls, ShouldEqual, callsAfterFirst)
				So(res.Generation, ShouldEqual, first.Generation)
			})
		})

		Convey("When invoked after the freshness TTL", func() {
			fx.advance(2 * time.Hour)
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then the generation resets and rescans from zero", func() {
				So(res.Generation, ShouldNotEqual, first.Generation)
				So(crm.jobsCalls, ShouldBeGreaterThan, callsAfterFirst)
				So(res.Complete, ShouldBeTrue)
				So(res.Counters[1].Deals, ShouldEqual, 1)
			})
		})
	})
}

func TestFailureIsolation(t *testing.T) {
	Convey("Given a job whose placement fetch fails", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1", "J2"}},
			total: 2,
			placements: map[string][]model.PlacementRecord{
				"J1": {placement("J1", "A1", "a@x.com", "active", 0)},
				"J2": {placement("J2", "A2", "b@x.com", "active", 0)},
			},
			placementErrs: map[string]error{"J2": errors.New("boom")},
		}
		fx := newFixture(crm)

		Convey("When the scan runs", func() {
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then the failed job is scanned-but-empty and the scan completes", func() {
				So(res.Complete, ShouldBeTrue)
				So(res.Counters[1].Deals, ShouldEqual, 1)
				So(res.Counters[2].Deals, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a failing job-listing page", t, func() {
		crm := &fakeCRM{
			pages: map[int][]string{0: {"J1"}, 1: {"J2"}},
			total: 2,
			placements: map[string][]model.PlacementRecord{
				"J1": {placement("J1", "A1", "a@x.com", "active", 0)},
				"J2": {placement("J2", "A2", "b@x.com", "active", 0)},
			},
			pageErrs: map[int]error{1: errors.New("upstream down")},
		}
		fx := newFixture(crm)

		Convey("When the scan hits the failing page", func() {
			_, err := fx.scanner.Run(context.Background(), roster)

			Convey("Then only the current invocation aborts", func() {
				So(errors.Is(err, scan.ErrListingFetch), ShouldBeTrue)
			})

			Convey("And when the page recovers", func() {
				crm.mu.Lock()
				delete(crm.pageErrs, 1)
				crm.mu.Unlock()

				res, err := fx.scanner.Run(context.Background(), roster)
				So(err, ShouldBeNil)

				Convey("Then the scan resumes from the persisted cursor", func() {
					So(res.Complete, ShouldBeTrue)
					So(res.Counters[1].Deals, ShouldEqual, 1)
					So(res.Counters[2].Deals, ShouldEqual, 1)
					// First page never refetched after the failure.
					So(crm.jobsStarts, ShouldResemble, []int{0, 1, 1})
				})
			})
		})
	})
}

func TestColdStartFlag(t *testing.T) {
	Convey("Given no prior checkpoint for the period", t, func() {
		crm := &fakeCRM{pages: map[int][]string{0: {}}, total: 0}
		fx := newFixture(crm)

		Convey("When the first-ever scan runs", func() {
			res, err := fx.scanner.Run(context.Background(), roster)
			So(err, ShouldBeNil)

			Convey("Then it reports a cold start", func() {
				So(res.ColdStart, ShouldBeTrue)
			})

			Convey("And a second run does not", func() {
				res2, err := fx.scanner.Run(context.Background(), roster)
				So(err, ShouldBeNil)
				So(res2.ColdStart, ShouldBeFalse)
			})
		})
	})
}
