// Package model contains domain models passed between layers.
package model

import "time"

// TeamMember is a roster entry mapping external identities to one person.
type TeamMember struct {
	ID          int    `json:"id" koanf:"id"`
	Name        string `json:"name" koanf:"name"`
	Email       string `json:"email" koanf:"email"`
	ExtensionID string `json:"extension_id" koanf:"extension_id"`
	ProfileID   string `json:"profile_id" koanf:"profile_id"`
}

// PlacementRecord is one placement as reported by the CRM.
type PlacementRecord struct {
	JobID         string `json:"job_id"`
	ApplicationID string `json:"application_id"`
	PlacedBy      string `json:"placed_by"`
	Status        string `json:"status"`
	RenewalNumber int    `json:"renewal_number"`
}

// ActivityRecord is one raw activity event from the CRM stream.
// Context fields are denormalized by the upstream and may be empty.
type ActivityRecord struct {
	Category     string    `json:"category"`
	EntityType   string    `json:"entity_type"`
	ActivityName string    `json:"activity_name"`
	ActorID      int       `json:"actor_id"`
	Timestamp    time.Time `json:"timestamp"`
	Candidate    string    `json:"candidate,omitempty"`
	Company      string    `json:"company,omitempty"`
	Contact      string    `json:"contact,omitempty"`
	JobTitle     string    `json:"job_title,omitempty"`
}

// DealCounters holds per-member placement counts for one scan generation.
type DealCounters struct {
	Deals  int `json:"deals"`
	Active int `json:"active"`
}

// ScanCheckpoint is the persisted state of one scan generation. It is
// owned exclusively by the scanner and written after every invocation.
type ScanCheckpoint struct {
	ScanType    string               `json:"scan_type"`
	PeriodKey   string               `json:"period_key"`
	Generation  string               `json:"generation"`
	Cursor      int                  `json:"cursor"`
	Total       int                  `json:"total"`
	Counters    map[int]DealCounters `json:"counters"`
	SeenApps    map[string]bool      `json:"seen_apps"`
	ScannedJobs map[string]bool      `json:"scanned_jobs"`
	Unmatched   map[string]int       `json:"unmatched"`
	Complete    bool                 `json:"complete"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// CategoryAggregate accumulates one member's totals for one category.
type CategoryAggregate struct {
	Count  int            `json:"count"`
	Points int            `json:"points"`
	ByName map[string]int `json:"by_name"`
}

// MemberActivity is the classified activity roll-up for one member.
type MemberActivity struct {
	MemberID    int                          `json:"member_id"`
	Categories  map[string]CategoryAggregate `json:"categories"`
	TotalCount  int                          `json:"total_count"`
	TotalPoints int                          `json:"total_points"`
	BonusPoints int                          `json:"bonus_points"`
	NameCounts  map[string]int               `json:"name_counts"`
}

// Win is one entry in the recent-wins feed.
type Win struct {
	MemberID     int       `json:"member_id"`
	MemberName   string    `json:"member_name"`
	ActivityName string    `json:"activity_name"`
	Candidate    string    `json:"candidate,omitempty"`
	Company      string    `json:"company,omitempty"`
	Contact      string    `json:"contact,omitempty"`
	JobTitle     string    `json:"job_title,omitempty"`
	At           time.Time `json:"at"`
}

// KPIDefinition describes one tracked KPI and where its actual comes from.
type KPIDefinition struct {
	Key           string   `json:"key"`
	Label         string   `json:"label"`
	FromDealScan  bool     `json:"from_deal_scan"`
	ActivityNames []string `json:"activity_names"`
}

// TargetProfile carries named monthly KPI targets; member overrides merge
// over the profile values.
type TargetProfile struct {
	Name    string         `json:"name" koanf:"name"`
	Targets map[string]int `json:"targets" koanf:"targets"`
}

// KPIStatus is one KPI evaluated against its pro-rated target.
type KPIStatus struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Target   int    `json:"target"`
	ProRated int    `json:"pro_rated"`
	Actual   int    `json:"actual"`
	Variance int    `json:"variance"`
	Pct      int    `json:"pct"`
	OnTrack  bool   `json:"on_track"`
}

// CallStats is the telephony roll-up for one extension.
type CallStats struct {
	Calls       int `json:"calls"`
	TalkSeconds int `json:"talk_seconds"`
}

// LeaderboardEntry is the composed per-member output row.
type LeaderboardEntry struct {
	MemberID       int         `json:"member_id"`
	Name           string      `json:"name"`
	Deals          int         `json:"deals"`
	ActiveDeals    int         `json:"active_deals"`
	Calls          int         `json:"calls"`
	TalkMinutes    int         `json:"talk_minutes"`
	ActivityPoints int         `json:"activity_points"`
	BonusPoints    int         `json:"bonus_points"`
	Points         int         `json:"points"`
	KPIs           []KPIStatus `json:"kpis"`
	Provisional    bool        `json:"provisional"`
}

// TeamTotals sums the headline numbers across the roster.
type TeamTotals struct {
	Deals  int `json:"deals"`
	Calls  int `json:"calls"`
	Points int `json:"points"`
}

// Board is the full leaderboard build output.
type Board struct {
	Entries     []LeaderboardEntry `json:"entries"`
	Totals      TeamTotals         `json:"totals"`
	Wins        []Win              `json:"wins"`
	LastUpdated time.Time          `json:"last_updated"`
}
