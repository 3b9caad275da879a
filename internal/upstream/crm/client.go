package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/salesboard/internal/domain/model"
)

// Client exposes the typed CRM endpoints the pipeline consumes.
type Client struct {
	fetcher *Fetcher
}

// NewClient wraps a Fetcher with the typed endpoints.
func NewClient(fetcher *Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// JobsPage fetches one page of job ids at the given offset, sorted by
// creation date ascending so resumed scans see a stable order.
func (c *Client) JobsPage(ctx context.Context, start int) (ids []string, total int, err error) {
	q := url.Values{}
	q.Set("sort", "created_date")
	q.Set("order", "asc")
	q.Set("start", strconv.Itoa(start))

	raw, err := c.fetcher.GetJSON(ctx, "/jobs", q)
	if err != nil {
		return nil, 0, err
	}
	page, err := ParsePage(raw)
	if err != nil {
		return nil, 0, fmt.Errorf("jobs page at %d: %w", start, err)
	}

	ids = make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		var row struct {
			ID json.Number `json:"id"`
		}
		if err := json.Unmarshal(item, &row); err != nil || row.ID.String() == "" {
			continue
		}
		ids = append(ids, row.ID.String())
	}
	return ids, page.Total, nil
}

// placementPayload carries every field spelling observed for a placement.
type placementPayload struct {
	ApplicationID  json.Number `json:"application_id"`
	PlacedBy       string      `json:"placed_by"`
	PlacedByEmail  string      `json:"placed_by_email"`
	Status         string      `json:"status"`
	RenewalNumber  *int        `json:"renewal_number"`
	Renewal        *int        `json:"renewal"`
	SequenceNumber *int        `json:"sequence_number"`
}

// renewal resolves the renewal number through the fallback field chain.
// Missing everywhere means a first placement.
func (p placementPayload) renewal() int {
	for _, v := range []*int{p.RenewalNumber, p.Renewal, p.SequenceNumber} {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (p placementPayload) email() string {
	if p.PlacedBy != "" {
		return p.PlacedBy
	}
	return p.PlacedByEmail
}

// Placements fetches the placements recorded against one job.
func (c *Client) Placements(ctx context.Context, jobID string) ([]model.PlacementRecord, error) {
	raw, err := c.fetcher.GetJSON(ctx, "/jobs/"+jobID+"/placements", nil)
	if err != nil {
		return nil, err
	}
	page, err := ParsePage(raw)
	if err != nil {
		return nil, fmt.Errorf("placements for job %s: %w", jobID, err)
	}

	records := make([]model.PlacementRecord, 0, len(page.Items))
	for _, item := range page.Items {
		var p placementPayload
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		records = append(records, model.PlacementRecord{
			JobID:         jobID,
			ApplicationID: p.ApplicationID.String(),
			PlacedBy:      p.email(),
			Status:        p.Status,
			RenewalNumber: p.renewal(),
		})
	}
	return records, nil
}

// activityPayload carries every field spelling observed for an activity.
type activityPayload struct {
	Category     string `json:"category"`
	EntityType   string `json:"entity_type"`
	ActivityName string `json:"activity_name"`
	Name         string `json:"name"`
	ActorID      int    `json:"actor_id"`
	UserID       int    `json:"user_id"`
	Timestamp    int64  `json:"timestamp"` // epoch milliseconds
	Date         string `json:"date"`      // RFC 3339 fallback
	Candidate    string `json:"candidate_name"`
	Company      string `json:"company_name"`
	Contact      string `json:"contact_name"`
	JobTitle     string `json:"job_title"`
}

func (a activityPayload) name() string {
	if a.ActivityName != "" {
		return a.ActivityName
	}
	return a.Name
}

func (a activityPayload) actor() int {
	if a.ActorID != 0 {
		return a.ActorID
	}
	return a.UserID
}

func (a activityPayload) when() time.Time {
	if a.Timestamp > 0 {
		return time.UnixMilli(a.Timestamp).UTC()
	}
	if a.Date != "" {
		if t, err := time.Parse(time.RFC3339, a.Date); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Activities fetches one page of the global activity stream for the date
// range. There is no server-side per-user filter; callers aggregate.
func (c *Client) Activities(ctx context.Context, from, to time.Time, pageIndex int) ([]model.ActivityRecord, bool, error) {
	body := map[string]any{
		"date_from":  from.UTC().Format(time.RFC3339),
		"date_to":    to.UTC().Format(time.RFC3339),
		"page_index": pageIndex,
	}
	raw, err := c.fetcher.PostJSON(ctx, "/activities", body)
	if err != nil {
		return nil, false, err
	}
	page, err := ParsePage(raw)
	if err != nil {
		return nil, false, fmt.Errorf("activities page %d: %w", pageIndex, err)
	}

	records := make([]model.ActivityRecord, 0, len(page.Items))
	for _, item := range page.Items {
		var a activityPayload
		if err := json.Unmarshal(item, &a); err != nil {
			continue
		}
		records = append(records, model.ActivityRecord{
			Category:     a.Category,
			EntityType:   a.EntityType,
			ActivityName: a.name(),
			ActorID:      a.actor(),
			Timestamp:    a.when(),
			Candidate:    a.Candidate,
			Company:      a.Company,
			Contact:      a.Contact,
			JobTitle:     a.JobTitle,
		})
	}
	return records, page.IsLast, nil
}
