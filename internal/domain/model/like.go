package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is the kind of a like-history entry.
type Action string

const (
	ActionLike   Action = "LIKE"
	ActionUnlike Action = "UNLIKE"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionLike || a == ActionUnlike
}

// UnmarshalJSON accepts the action case-insensitively.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("action: %w", err)
	}
	*a = Action(strings.ToUpper(strings.TrimSpace(s)))
	return nil
}

// LikeEvent is one entry of an item's like history as recorded on chain.
type LikeEvent struct {
	Sender    Address `json:"sender"`
	Timestamp int64   `json:"timestamp"` // unix seconds
	Action    Action  `json:"action"`
	TxID      string  `json:"txId"`
}

// IsLike reports whether the event counts toward curator scoring.
func (e LikeEvent) IsLike() bool { return e.Action == ActionLike }

// LikeSubmission is a like or unlike addressed to an item, as received by the ingest path.
type LikeSubmission struct {
	ItemID string
	Event  LikeEvent
}
