package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/curator/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]types.Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps         LeaderboardDependencies
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests.
// A missing limit uses the default; larger limits are capped.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"

	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		n = h.maxLimit
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
