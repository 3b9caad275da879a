package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/salesboard/internal/domain/model"
)

// checkpointKey scopes persisted scan state by scan type and period, so
// a new business month always starts a fresh generation.
func checkpointKey(scanType, periodKey string) string {
	return "checkpoint:" + scanType + ":" + periodKey
}

// newCheckpoint starts an empty generation for the period.
func newCheckpoint(scanType, periodKey string, now time.Time) *model.ScanCheckpoint {
	return &model.ScanCheckpoint{
		ScanType:    scanType,
		PeriodKey:   periodKey,
		Generation:  uuid.NewString(),
		Counters:    make(map[int]model.DealCounters),
		SeenApps:    make(map[string]bool),
		ScannedJobs: make(map[string]bool),
		Unmatched:   make(map[string]int),
		UpdatedAt:   now,
	}
}

// load returns the persisted checkpoint for the period, or nil when none
// exists yet (a cold start).
func (s *Scanner) load(ctx context.Context, periodKey string) (*model.ScanCheckpoint, error) {
	raw, ok, err := s.kv.Get(ctx, checkpointKey(s.scanType, periodKey))
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var cp model.ScanCheckpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		// A checkpoint we cannot read is a checkpoint we do not trust;
		// the scan restarts from zero.
		return nil, nil
	}
	return &cp, nil
}

// persist writes the checkpoint. Called after every invocation no matter
// how it ended.
func (s *Scanner) persist(ctx context.Context, cp *model.ScanCheckpoint) error {
	raw, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := s.kv.Set(ctx, checkpointKey(cp.ScanType, cp.PeriodKey), raw, 0); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}
