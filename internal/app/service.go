// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/okian/curator/internal/adapters/mq/queue"
	"github.com/okian/curator/internal/adapters/mq/worker"
	"github.com/okian/curator/internal/adapters/repository"
	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/internal/domain/dedupe"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
	"github.com/okian/curator/pkg/logger"
	"github.com/okian/curator/pkg/metrics"
)

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the curator index.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.ForestStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	topCacheSize int
	dbPath       string
	snapshotPath string
	computeOpts  []curator.Option

	// State
	started  bool
	rejected atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the like queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithTopCacheSize sets how many leaderboard entries each snapshot precomputes.
func WithTopCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}

// WithDBPath enables the sqlite archive at path.
func WithDBPath(path string) Option {
	return func(s *Service) { s.dbPath = path }
}

// WithSnapshotPath loads a JSON forest at startup when the store is empty.
func WithSnapshotPath(path string) Option {
	return func(s *Service) { s.snapshotPath = path }
}

// WithComputeOptions passes options through to every index computation.
func WithComputeOptions(opts ...curator.Option) Option {
	return func(s *Service) {
		s.computeOpts = append(s.computeOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    10_000,
		dedupeSize:   50_000,
		topCacheSize: 1_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the store, restores persisted state and starts the workers.
// Workers run until ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting curator service...")

	storeOpts := []repository.Option{
		repository.WithComputeOptions(s.computeOpts...),
		repository.WithTopCacheSize(s.topCacheSize),
	}
	if s.dbPath != "" {
		archive, err := repository.OpenSQLiteArchive(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		storeOpts = append(storeOpts, repository.WithArchive(archive))
		s.logger.Info(ctx, "using sqlite archive", logger.String("path", s.dbPath))
	}
	store := repository.NewForestStore(storeOpts...)
	if err := store.Restore(ctx); err != nil {
		_ = store.Close()
		return err
	}
	if s.snapshotPath != "" && store.Summary(ctx).Projects == 0 {
		forest, err := model.ReadForestFile(s.snapshotPath)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("load snapshot: %w", err)
		}
		if err := store.Replace(ctx, forest); err != nil {
			_ = store.Close()
			return fmt.Errorf("load snapshot: %w", err)
		}
		s.logger.Info(ctx, "snapshot loaded",
			logger.String("path", s.snapshotPath),
			logger.Int("projects", len(forest)),
		)
	}

	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	deduper := s.deduper
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithOnRejected(func(ctx context.Context, m worker.Message, _ error) {
			// the tx id was recorded at submit time; forget it so the sender can retry
			deduper.Unrecord(ctx, m.Event.TxID)
			s.rejected.Add(1)
		}),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "curator service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue and releases the archive. Likes still queued when
// ctx ends are dropped.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping curator service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}

	s.started = false
	s.logger.Info(ctx, "curator service stopped")
	return errors.Join(errs...)
}

// running returns the store when the service is started.
func (s *Service) running() (*repository.ForestStore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.started
}

// SeenAndRecord atomically checks if a tx id was seen and records it if not.
// Returns true if the id was already seen, false if it was newly recorded.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.deduper.SeenAndRecord(ctx, id)
}

// Unrecord removes a tx id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a like for asynchronous application.
func (s *Service) Enqueue(ctx context.Context, sub model.LikeSubmission) error {
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return queue.ErrClosed
	}

	s.logger.Debug(ctx, "enqueueing like",
		logger.String("item", sub.ItemID),
		logger.String("sender", sub.Event.Sender),
		logger.String("txId", sub.Event.TxID),
	)
	return q.Enqueue(ctx, sub)
}

// ApplyLike applies a like synchronously, bypassing the queue.
func (s *Service) ApplyLike(ctx context.Context, sub model.LikeSubmission) (bool, error) {
	store, ok := s.running()
	if !ok {
		return false, ErrNotStarted
	}
	return store.ApplyLike(ctx, sub)
}

// Replace swaps in a new forest.
func (s *Service) Replace(ctx context.Context, forest model.Forest) error {
	store, ok := s.running()
	if !ok {
		return ErrNotStarted
	}
	return store.Replace(ctx, forest)
}

// UpsertProject adds or replaces one project.
func (s *Service) UpsertProject(ctx context.Context, p *model.Project) error {
	store, ok := s.running()
	if !ok {
		return ErrNotStarted
	}
	return store.UpsertProject(ctx, p)
}

// Forest returns a copy of the current forest.
func (s *Service) Forest(ctx context.Context) model.Forest {
	store, ok := s.running()
	if !ok {
		return model.Forest{}
	}
	return store.Forest(ctx)
}

// Summary describes the current snapshot.
func (s *Service) Summary(ctx context.Context) types.Summary {
	store, ok := s.running()
	if !ok {
		return types.Summary{}
	}
	return store.Summary(ctx)
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	store, ok := s.running()
	if !ok {
		return nil, ErrNotStarted
	}
	return store.TopN(ctx, n)
}

// Rank returns the leaderboard entry for addr.
func (s *Service) Rank(ctx context.Context, addr string) (types.Entry, error) {
	store, ok := s.running()
	if !ok {
		return types.Entry{}, ErrNotStarted
	}
	return store.Rank(ctx, addr)
}

// Index returns the curator breakdown for addr. Unknown addresses get zeros.
func (s *Service) Index(ctx context.Context, addr string) types.CuratorIndex {
	store, ok := s.running()
	if !ok {
		return types.CuratorIndex{Address: addr}
	}
	return store.Index(ctx, addr)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		sum := s.store.Summary(ctx)
		queueLen := s.queue.Len(ctx)

		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		stats["applied"] = s.pool.Applied()
		stats["rejected"] = s.rejected.Load()
		stats["projects"] = sum.Projects
		stats["items"] = sum.Items
		stats["curators"] = sum.Curators
		stats["ranked"] = sum.Ranked
		stats["version"] = sum.Version
		stats["computedAt"] = sum.ComputedAt

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
