// Package classify turns the raw, heterogeneously shaped activity stream
// into categorized, weighted, timezone-aware per-member aggregates.
package classify

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/salesboard/internal/domain/bizdate"
	"github.com/okian/salesboard/internal/domain/model"
)

// Default classification configuration constants.
const (
	defaultFloorPoints     = 1
	defaultBonusMultiplier = 2.0
	defaultBonusWeekday    = time.Tuesday
	defaultWinsCap         = 20
	defaultContextRunes    = 80
)

// Classifier assigns categories and points to raw activity records.
type Classifier struct {
	cal             *bizdate.Calendar
	floorPoints     int
	bonusMultiplier float64
	bonusWeekday    time.Weekday
	winsCap         int
	contextRunes    int
}

// New creates a Classifier with configuration options.
func New(cal *bizdate.Calendar, opts ...Option) *Classifier {
	c := &Classifier{
		cal:             cal,
		floorPoints:     defaultFloorPoints,
		bonusMultiplier: defaultBonusMultiplier,
		bonusWeekday:    defaultBonusWeekday,
		winsCap:         defaultWinsCap,
		contextRunes:    defaultContextRunes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the classified roll-up for a batch of activity records.
type Result struct {
	Members      map[int]*model.MemberActivity
	Wins         []model.Win
	Unclassified int
}

// Classify aggregates records for the given roster. Records whose actor is
// not on the roster are ignored; records that match no table are excluded
// from category totals but still counted toward the member's raw total.
func (c *Classifier) Classify(records []model.ActivityRecord, roster []model.TeamMember) *Result {
	byID := make(map[int]model.TeamMember, len(roster))
	for _, m := range roster {
		byID[m.ID] = m
	}

	res := &Result{Members: make(map[int]*model.MemberActivity)}
	for _, rec := range records {
		member, ok := byID[rec.ActorID]
		if !ok {
			continue
		}
		agg := res.Members[member.ID]
		if agg == nil {
			agg = &model.MemberActivity{
				MemberID:   member.ID,
				Categories: make(map[string]model.CategoryAggregate),
				NameCounts: make(map[string]int),
			}
			res.Members[member.ID] = agg
		}

		agg.TotalCount++
		if rec.ActivityName != "" {
			agg.NameCounts[rec.ActivityName]++
		}

		category, points, classified := c.lookup(rec)
		if !classified {
			res.Unclassified++
			continue
		}

		points, bonus := c.applyBonus(rec, points)
		cat := agg.Categories[category]
		cat.Count++
		cat.Points += points
		if cat.ByName == nil {
			cat.ByName = make(map[string]int)
		}
		if rec.ActivityName != "" {
			cat.ByName[rec.ActivityName]++
		}
		agg.Categories[category] = cat
		agg.TotalPoints += points
		agg.BonusPoints += bonus

		if notableNames[rec.ActivityName] {
			res.Wins = append(res.Wins, c.win(member, rec))
		}
	}

	sort.Slice(res.Wins, func(i, j int) bool { return res.Wins[i].At.After(res.Wins[j].At) })
	if len(res.Wins) > c.winsCap {
		res.Wins = res.Wins[:c.winsCap]
	}
	return res
}

// lookup resolves category and base points for one record. Precedence:
// exact activity name, then category:entitytype, then unclassified.
func (c *Classifier) lookup(rec model.ActivityRecord) (category string, points int, ok bool) {
	if e, hit := activityNames[rec.ActivityName]; hit {
		return e.category, c.orFloor(e.points), true
	}
	if key := typeKey(rec); key != "" {
		if e, hit := typeKeys[key]; hit {
			return e.category, c.orFloor(e.points), true
		}
	}
	return "", 0, false
}

func (c *Classifier) orFloor(points int) int {
	if points <= 0 {
		return c.floorPoints
	}
	return points
}

// applyBonus doubles (by the configured multiplier) eligible outbound
// calls whose business-local timestamp lands on the promotional weekday.
// The delta is returned separately so same-day displays can show it.
func (c *Classifier) applyBonus(rec model.ActivityRecord, base int) (total, delta int) {
	if !bonusNames[rec.ActivityName] {
		return base, 0
	}
	if c.cal.Weekday(rec.Timestamp) != c.bonusWeekday {
		return base, 0
	}
	boosted := int(float64(base) * c.bonusMultiplier)
	return boosted, boosted - base
}

func (c *Classifier) win(member model.TeamMember, rec model.ActivityRecord) model.Win {
	return model.Win{
		MemberID:     member.ID,
		MemberName:   member.Name,
		ActivityName: rec.ActivityName,
		Candidate:    truncate(rec.Candidate, c.contextRunes),
		Company:      truncate(rec.Company, c.contextRunes),
		Contact:      truncate(rec.Contact, c.contextRunes),
		JobTitle:     truncate(rec.JobTitle, c.contextRunes),
		At:           rec.Timestamp,
	}
}

// typeKey derives "category:entitytype" from a record, empty when either
// part is missing.
func typeKey(rec model.ActivityRecord) string {
	if rec.Category == "" || rec.EntityType == "" {
		return ""
	}
	return strings.ToLower(rec.Category + ":" + rec.EntityType)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
