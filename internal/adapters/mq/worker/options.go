package worker

import (
	"context"

	"github.com/okian/curator/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnRejected registers fn to run when the applier returns an error for m.
func WithOnRejected(fn func(ctx context.Context, m Message, err error)) Option {
	return func(w *InMemoryWorker) { w.onRejected = fn }
}

func withOnApplied(fn func()) Option {
	return func(w *InMemoryWorker) { w.onApplied = fn }
}
