// Package queue defines the contract for enqueuing and consuming like submissions.
//
// The in-memory implementation is a bounded channel: producers never block,
// and a full queue is reported so the HTTP layer can apply backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Message is the payload flowing through the queue.
type Message = model.LikeSubmission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a message without blocking.
	// Returns ErrFull when at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, m Message) error

	// Dequeue returns a channel that receives messages as they become available.
	// The channel is closed when the queue is closed and drained, or ctx ends.
	Dequeue(ctx context.Context) <-chan Message

	// Len returns the current number of queued messages.
	Len(ctx context.Context) int

	// Close stops accepting messages. Already queued messages are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	messages chan Message
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds a message to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	select {
	case q.messages <- m:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive messages as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Message {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-q.messages:
				if !ok {
					return
				}
				select {
				case out <- m:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (q *InMemoryQueue) observe() {
	size := len(q.messages)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Len returns the current number of queued messages.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.observe()
	return len(q.messages)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
