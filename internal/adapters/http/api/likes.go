package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/curator/internal/adapters/mq/queue"
	"github.com/okian/curator/internal/domain/dedupe"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/pkg/metrics"
)

// LikeDependencies defines the interface for like ingestion.
type LikeDependencies interface {
	dedupe.Deduper
	// Enqueue pushes a submission for async processing.
	// Returns queue.ErrFull on backpressure and queue.ErrClosed during shutdown.
	Enqueue(ctx context.Context, sub model.LikeSubmission) error
}

// likeRequest is the body of POST /likes.
type likeRequest struct {
	ItemID    string       `json:"itemId"`
	Sender    string       `json:"sender"`
	Timestamp int64        `json:"timestamp"`
	Action    model.Action `json:"action"`
	TxID      string       `json:"txId"`
}

func (l *likeRequest) normalize(now time.Time) error {
	l.ItemID = strings.TrimSpace(l.ItemID)
	l.Sender = strings.TrimSpace(l.Sender)
	l.TxID = strings.TrimSpace(l.TxID)
	switch {
	case l.ItemID == "":
		return errors.New("missing itemId")
	case l.Sender == "":
		return errors.New("missing sender")
	case l.Timestamp < 0:
		return errors.New("timestamp must not be negative")
	}
	if _, ok := model.Segments(l.ItemID); !ok {
		return errors.New("itemId must address a review, comment or reply")
	}
	if l.Action == "" {
		l.Action = model.ActionLike
	}
	if !l.Action.Valid() {
		return errors.New("action must be LIKE or UNLIKE")
	}
	if l.Timestamp == 0 {
		l.Timestamp = now.Unix()
	}
	if l.TxID == "" {
		l.TxID = uuid.NewString()
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	TxID      string `json:"txId"`
}

// LikesHandler handles like submissions.
type LikesHandler struct {
	deps LikeDependencies
	now  func() time.Time
}

// NewLikesHandler creates a new likes handler.
func NewLikesHandler(deps LikeDependencies) *LikesHandler {
	return &LikesHandler{deps: deps, now: time.Now}
}

// HandlePostLike handles POST /likes requests.
func (h *LikesHandler) HandlePostLike(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_like"
	metrics.RecordLikeReceived()

	var req likeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.normalize(h.now()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.TxID) {
		metrics.RecordLikeDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, TxID: req.TxID})
		return
	}

	sub := model.LikeSubmission{
		ItemID: req.ItemID,
		Event: model.LikeEvent{
			Sender:    req.Sender,
			Timestamp: req.Timestamp,
			Action:    req.Action,
			TxID:      req.TxID,
		},
	}
	if err := h.deps.Enqueue(r.Context(), sub); err != nil {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.TxID)
		if errors.Is(err, queue.ErrClosed) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
			return
		}
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, TxID: req.TxID})
}
