// Package repository holds the project forest and the curator index computed from it.
package repository

import (
	"context"

	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
)

// Store provides read/write access to the forest and its scores.
type Store interface {
	// Replace swaps in a new forest and recomputes every score.
	Replace(ctx context.Context, forest model.Forest) error

	// UpsertProject adds or replaces one project, keyed by its id.
	UpsertProject(ctx context.Context, p *model.Project) error

	// ApplyLike appends a like or unlike to the item addressed by the submission.
	// Returns false when the event's tx id is already in that item's history.
	ApplyLike(ctx context.Context, sub model.LikeSubmission) (bool, error)

	// Forest returns a deep copy of the current forest.
	Forest(ctx context.Context) model.Forest

	// Rank returns the leaderboard entry for a curator.
	// Returns ErrNotFound if the curator has no positive score.
	Rank(ctx context.Context, addr model.Address) (types.Entry, error)

	// TopN returns the top-N curators ordered by overall index desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Index returns the full index breakdown; unknown addresses get zeros.
	Index(ctx context.Context, addr model.Address) types.CuratorIndex

	// Count returns the number of curators with a record.
	Count(ctx context.Context) int

	// Summary describes the current snapshot.
	Summary(ctx context.Context) types.Summary
}

// Archive persists the forest so it survives restarts.
type Archive interface {
	SaveForest(ctx context.Context, forest model.Forest) error
	SaveProject(ctx context.Context, p *model.Project) error
	RecordLike(ctx context.Context, sub model.LikeSubmission) (bool, error)
	LoadForest(ctx context.Context) (model.Forest, error)
	Close() error
}
