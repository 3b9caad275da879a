// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/salesboard/internal/domain/model"
	"github.com/okian/salesboard/internal/upstream/credentials"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	BuildLeaderboard(ctx context.Context) (*model.Board, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	board, err := h.deps.BuildLeaderboard(r.Context())
	if err != nil {
		if errors.Is(err, credentials.ErrNotAuthenticated) {
			writeError(w, http.StatusServiceUnavailable, "upstream_unauthenticated", err)
			return
		}
		writeError(w, http.StatusBadGateway, "upstream_error", err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// CacheDependencies defines the interface for cache invalidation.
type CacheDependencies interface {
	ClearCache(ctx context.Context) error
}

// CacheHandler handles cache invalidation requests.
type CacheHandler struct {
	deps CacheDependencies
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(deps CacheDependencies) *CacheHandler {
	return &CacheHandler{deps: deps}
}

// HandleClearCache handles DELETE /cache requests.
func (h *CacheHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}

	if err := h.deps.ClearCache(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
