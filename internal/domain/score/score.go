// Package score combines deal counts, call stats, and activity points
// into point totals and KPI target tracking.
package score

import (
	"math"
	"time"

	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/model"
)

// Default scoring weights.
const (
	defaultDealPoints       = 500.0
	defaultCallPoints       = 2.0
	defaultTalkMinutePoints = 1.0
)

// Weights are the multipliers for the point total.
type Weights struct {
	DealPoints       float64 `koanf:"deal_points"`
	CallPoints       float64 `koanf:"call_points"`
	TalkMinutePoints float64 `koanf:"talk_minute_points"`
}

// Engine computes point totals and KPI statuses.
type Engine struct {
	cal       *bizdate.Calendar
	weights   Weights
	kpis      []model.KPIDefinition
	profiles  map[string]model.TargetProfile
	overrides map[int]map[string]int
}

// New creates an Engine with configuration options.
func New(cal *bizdate.Calendar, opts ...Option) *Engine {
	e := &Engine{
		cal: cal,
		weights: Weights{
			DealPoints:       defaultDealPoints,
			CallPoints:       defaultCallPoints,
			TalkMinutePoints: defaultTalkMinutePoints,
		},
		kpis:      DefaultKPIs(),
		profiles:  map[string]model.TargetProfile{DefaultProfileName: DefaultProfile()},
		overrides: make(map[int]map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Input carries the raw counters for one member's point total.
type Input struct {
	Deals              int
	Calls              int
	TalkMinutes        int
	ActivityPoints     int
	DealActivityPoints int
}

// Points computes the rounded weighted total. Deal-category activity
// points are subtracted first so a placement counted by the scan does not
// score twice through its activity record.
func (e *Engine) Points(in Input) int {
	net := in.ActivityPoints - in.DealActivityPoints
	if net < 0 {
		net = 0
	}
	total := float64(in.Deals)*e.weights.DealPoints +
		float64(in.Calls)*e.weights.CallPoints +
		float64(in.TalkMinutes)*e.weights.TalkMinutePoints +
		float64(net)
	return int(math.Round(total))
}

// TargetsFor merges a member's per-KPI overrides over their profile
// defaults. Unknown profiles fall back to the default profile.
func (e *Engine) TargetsFor(member model.TeamMember) map[string]int {
	profile, ok := e.profiles[member.ProfileID]
	if !ok {
		profile = e.profiles[DefaultProfileName]
	}
	merged := make(map[string]int, len(profile.Targets))
	for k, v := range profile.Targets {
		merged[k] = v
	}
	for k, v := range e.overrides[member.ID] {
		merged[k] = v
	}
	return merged
}

// KPIs evaluates every tracked KPI for one member at the given time.
// dealCount feeds the deal-sourced KPI; everything else sums matching raw
// activity-name counts.
func (e *Engine) KPIs(member model.TeamMember, activity *model.MemberActivity, dealCount int, now time.Time) []model.KPIStatus {
	targets := e.TargetsFor(member)
	statuses := make([]model.KPIStatus, 0, len(e.kpis))
	for _, def := range e.kpis {
		actual := dealCount
		if !def.FromDealScan {
			actual = 0
			if activity != nil {
				for _, name := range def.ActivityNames {
					actual += activity.NameCounts[name]
				}
			}
		}
		statuses = append(statuses, e.evaluate(def, targets[def.Key], actual, now))
	}
	return statuses
}

// Sentinel pct when the pro-rated target is zero but work happened.
const pctSentinel = 999

func (e *Engine) evaluate(def model.KPIDefinition, target, actual int, now time.Time) model.KPIStatus {
	proRated := ProRate(target, e.cal.DayOfMonth(now), e.cal.DaysInMonth(now))
	pct := 0
	switch {
	case proRated > 0:
		pct = int(math.Round(float64(actual) / float64(proRated) * 100))
	case actual > 0:
		pct = pctSentinel
	}
	return model.KPIStatus{
		Key:      def.Key,
		Label:    def.Label,
		Target:   target,
		ProRated: proRated,
		Actual:   actual,
		Variance: actual - proRated,
		Pct:      pct,
		OnTrack:  actual >= proRated,
	}
}

// ProRate scales a monthly target to the elapsed fraction of the month.
func ProRate(target, dayOfMonth, daysInMonth int) int {
	if target <= 0 || daysInMonth <= 0 {
		return 0
	}
	return int(math.Round(float64(target) * float64(dayOfMonth) / float64(daysInMonth)))
}
