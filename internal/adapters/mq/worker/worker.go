// Package worker drains the like queue into the forest store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/curator/internal/adapters/mq/queue"
	"github.com/okian/curator/pkg/logger"
	"github.com/okian/curator/pkg/metrics"
)

// Message is what workers read off the queue.
type Message = queue.Message

// Applier appends a like submission to the forest.
type Applier interface {
	ApplyLike(ctx context.Context, sub Message) (bool, error)
}

// Queue defines how workers receive messages.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Message
}

// Worker processes messages until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker applies queued likes one at a time.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	processed  atomic.Int64
	onApplied  func()
	onRejected func(ctx context.Context, m Message, err error)

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	messages := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case m, ok := <-messages:
			if !ok {
				return
			}
			if err := w.process(ctx, m); err != nil {
				w.logger.Error(ctx, "error applying like", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many messages this worker applied.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, m Message) error { //nolint:gocritic // hugeParam: messages travel by value over channels
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	applied, err := w.applier.ApplyLike(ctx, m)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply_error")
		metrics.RecordErrorByType("apply_error", "high")
		if w.onRejected != nil {
			w.onRejected(ctx, m, err)
		}
		return fmt.Errorf("apply like %s on %s: %w", m.Event.TxID, m.ItemID, err)
	}

	w.processed.Add(1)
	if applied {
		metrics.RecordLikeApplied()
		if w.onApplied != nil {
			w.onApplied()
		}
	}
	w.logger.Debug(ctx, "like processed",
		logger.String("item", m.ItemID),
		logger.String("txId", m.Event.TxID),
		logger.Bool("applied", applied),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	applied atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 uses runtime.NumCPU().
// opts apply to every worker.
func NewPool(workerCount int, q Queue, applier Applier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{
			WithName("worker-" + strconv.Itoa(i)),
			withOnApplied(func() { p.applied.Add(1) }),
		}, opts...)
		p.workers[i] = NewInMemoryWorker(q, applier, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Applied returns how many submissions changed the forest.
func (p *Pool) Applied() int64 { return p.applied.Load() }

// Shutdown closes the queue and lets workers drain it. Workers still running
// when ctx ends are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers stopped before draining: %w", timedOut, ctx.Err())
	}
	return nil
}
