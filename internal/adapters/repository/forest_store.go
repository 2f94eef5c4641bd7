package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
	"github.com/okian/curator/pkg/logger"
	"github.com/okian/curator/pkg/metrics"
)

const defaultTopCacheSize = 500

var _ Store = (*ForestStore)(nil)

// Snapshot is an immutable view of one index computation.
// Readers load it through an atomic pointer and never block writers.
type Snapshot struct {
	Result   *curator.Result
	Version  uint64
	Projects int

	// TopCache holds the first entries of the leaderboard, best first.
	TopCache []types.Entry
}

// ForestStore keeps the forest in memory and recomputes the whole index on
// every mutation.
type ForestStore struct {
	mu      sync.Mutex
	forest  model.Forest
	txSeen  map[string]struct{}
	version uint64

	snapshot atomic.Pointer[Snapshot]

	computeOpts  []curator.Option
	topCacheSize int
	archive      Archive
	logger       logger.Logger
}

// NewForestStore constructs an empty store with configuration options.
func NewForestStore(opts ...Option) *ForestStore {
	s := &ForestStore{
		forest:       model.Forest{},
		txSeen:       make(map[string]struct{}),
		topCacheSize: defaultTopCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}

	s.mu.Lock()
	s.recompute(context.Background())
	s.mu.Unlock()
	return s
}

// Restore replaces the in-memory forest with the archived one.
// It is a no-op without an archive.
func (s *ForestStore) Restore(ctx context.Context) error {
	if s.archive == nil {
		return nil
	}
	forest, err := s.archive.LoadForest(ctx)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrArchive, err)
	}
	if err := validateForest(forest); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.install(forest)
	s.recompute(ctx)
	s.logger.Info(ctx, "forest restored from archive", logger.Int("projects", len(forest)))
	return nil
}

// Close releases the archive, if any.
func (s *ForestStore) Close() error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Close()
}

// Replace implements Store.Replace.
func (s *ForestStore) Replace(ctx context.Context, forest model.Forest) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("replace", sinceMs(start)) }()

	if err := validateForest(forest); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_forest")
		return err
	}
	cp := forest.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.SaveForest(ctx, cp); err != nil {
			metrics.RecordArchiveError()
			return fmt.Errorf("%w: save forest: %w", ErrArchive, err)
		}
	}
	s.install(cp)
	s.recompute(ctx)
	return nil
}

// UpsertProject implements Store.UpsertProject.
func (s *ForestStore) UpsertProject(ctx context.Context, p *model.Project) error {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("upsert_project", sinceMs(start)) }()

	if p == nil || p.ID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_forest")
		return fmt.Errorf("%w: project without id", ErrInvalidForest)
	}
	cp := p.Clone()
	if err := validateForest(model.Forest{cp.ID: cp}); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_forest")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.SaveProject(ctx, cp); err != nil {
			metrics.RecordArchiveError()
			return fmt.Errorf("%w: save project: %w", ErrArchive, err)
		}
	}
	next := make(model.Forest, len(s.forest)+1)
	for id, existing := range s.forest {
		next[id] = existing
	}
	next[cp.ID] = cp
	s.install(next)
	s.recompute(ctx)
	return nil
}

// install swaps the forest and rebuilds the tx index. Caller holds mu.
func (s *ForestStore) install(forest model.Forest) {
	s.forest = forest
	s.txSeen = make(map[string]struct{})
	walkHistories(forest, func(_ string, h []model.LikeEvent) {
		for _, ev := range h {
			if ev.TxID != "" {
				s.txSeen[ev.TxID] = struct{}{}
			}
		}
	})
}

// ApplyLike implements Store.ApplyLike.
func (s *ForestStore) ApplyLike(ctx context.Context, sub model.LikeSubmission) (bool, error) {
	start := time.Now()
	defer func() { metrics.RecordRepositoryLatency("apply_like", sinceMs(start)) }()

	if _, ok := model.Segments(sub.ItemID); !ok {
		metrics.RecordLikeRejected("invalid_item_id")
		return false, fmt.Errorf("%w: %q", ErrInvalidItemID, sub.ItemID)
	}
	ev := sub.Event
	if ev.Sender == "" || !ev.Action.Valid() || ev.Timestamp < 0 {
		metrics.RecordLikeRejected("invalid_event")
		return false, fmt.Errorf("%w: sender=%q action=%q timestamp=%d", ErrInvalidLike, ev.Sender, ev.Action, ev.Timestamp)
	}

	// memory and archive must agree on the id or a restore diverges
	if ev.TxID == "" {
		ev.TxID = uuid.NewString()
		sub.Event = ev
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.txSeen[ev.TxID]; dup {
		return false, nil
	}
	if !s.forest.AppendLike(sub.ItemID, ev) {
		metrics.RecordLikeRejected("unknown_item")
		return false, fmt.Errorf("%w: %s", ErrUnknownItem, sub.ItemID)
	}
	s.txSeen[ev.TxID] = struct{}{}

	if s.archive != nil {
		if _, err := s.archive.RecordLike(ctx, sub); err != nil {
			metrics.RecordArchiveError()
			s.logger.Error(ctx, "archive like failed",
				logger.String("item", sub.ItemID),
				logger.String("txId", ev.TxID),
				logger.Error(err),
			)
		}
	}

	s.recompute(ctx)
	return true, nil
}

// recompute runs the index over the current forest and publishes a new
// snapshot. Caller holds mu.
func (s *ForestStore) recompute(ctx context.Context) {
	start := time.Now()
	res := curator.Compute(s.forest, s.computeOpts...)

	cache := res.Leaderboard(s.topCacheSize)

	s.version++
	snap := &Snapshot{
		Result:   res,
		Version:  s.version,
		Projects: len(s.forest),
		TopCache: cache,
	}
	s.snapshot.Store(snap)

	ms := sinceMs(start)
	metrics.RecordRecompute(ms)
	metrics.UpdateIndexSize(snap.Projects, res.Items(), res.Len(), res.Ranked())
	metrics.UpdateSnapshot(snap.Version, res.ComputedAt().Unix())
	s.logger.Debug(ctx, "index recomputed",
		logger.Uint64("version", snap.Version),
		logger.Int("curators", res.Len()),
		logger.Float64("duration_ms", ms),
	)
}

// Snapshot returns the latest published snapshot.
func (s *ForestStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Forest implements Store.Forest.
func (s *ForestStore) Forest(_ context.Context) model.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest.Clone()
}

// Rank implements Store.Rank.
func (s *ForestStore) Rank(_ context.Context, addr model.Address) (types.Entry, error) {
	snap := s.Snapshot()
	rank := snap.Result.Rank(addr)
	if rank == 0 {
		return types.Entry{}, ErrNotFound
	}
	rec, _ := snap.Result.Record(addr)
	return types.Entry{Rank: rank, Address: addr, Score: rec.FinalScore}, nil
}

// TopN implements Store.TopN.
func (s *ForestStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.Snapshot()
	if n <= len(snap.TopCache) {
		out := make([]types.Entry, n)
		copy(out, snap.TopCache[:n])
		return out, nil
	}
	if len(snap.TopCache) < s.topCacheSize {
		// The cache already holds every ranked curator.
		out := make([]types.Entry, len(snap.TopCache))
		copy(out, snap.TopCache)
		return out, nil
	}
	return snap.Result.Leaderboard(n), nil
}

// Index implements Store.Index.
func (s *ForestStore) Index(_ context.Context, addr model.Address) types.CuratorIndex {
	return s.Snapshot().Result.CuratorIndex(addr)
}

// Count implements Store.Count.
func (s *ForestStore) Count(_ context.Context) int {
	return s.Snapshot().Result.Len()
}

// Summary implements Store.Summary.
func (s *ForestStore) Summary(_ context.Context) types.Summary {
	snap := s.Snapshot()
	return types.Summary{
		Projects:   snap.Projects,
		Items:      snap.Result.Items(),
		Curators:   snap.Result.Len(),
		Ranked:     snap.Result.Ranked(),
		Version:    snap.Version,
		ComputedAt: snap.Result.ComputedAt(),
	}
}

// validateForest checks that every child key extends its parent's id by one segment.
func validateForest(f model.Forest) error {
	for pid, p := range f {
		if p == nil {
			continue
		}
		if pid == "" || strings.Contains(pid, model.Separator) {
			return fmt.Errorf("%w: project id %q", ErrInvalidForest, pid)
		}
		if p.ID != "" && p.ID != pid {
			return fmt.Errorf("%w: project %q keyed as %q", ErrInvalidForest, p.ID, pid)
		}
		for rid, r := range p.Reviews {
			if r == nil {
				continue
			}
			if err := checkChild(pid, rid, model.KindReview); err != nil {
				return err
			}
			for cid, c := range r.Comments {
				if c == nil {
					continue
				}
				if err := checkChild(rid, cid, model.KindComment); err != nil {
					return err
				}
				for xid, x := range c.Replies {
					if x == nil {
						continue
					}
					if err := checkChild(cid, xid, model.KindReply); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkChild(parent, id string, kind model.Kind) error {
	if _, ok := model.Segments(id); !ok || model.KindOf(id) != kind || !strings.HasPrefix(id, parent+model.Separator) {
		return fmt.Errorf("%w: %s id %q under %q", ErrInvalidForest, kind, id, parent)
	}
	return nil
}

// walkHistories calls fn for every interactable's like history.
func walkHistories(f model.Forest, fn func(id string, h []model.LikeEvent)) {
	for _, p := range f {
		if p == nil {
			continue
		}
		for rid, r := range p.Reviews {
			if r == nil {
				continue
			}
			fn(rid, r.LikeHistory)
			for cid, c := range r.Comments {
				if c == nil {
					continue
				}
				fn(cid, c.LikeHistory)
				for xid, x := range c.Replies {
					if x != nil {
						fn(xid, x.LikeHistory)
					}
				}
			}
		}
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
