package repository

import (
	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/pkg/logger"
)

// Option applies a configuration option to the ForestStore.
type Option func(*ForestStore)

// WithComputeOptions sets the options passed to every index computation.
func WithComputeOptions(opts ...curator.Option) Option {
	return func(s *ForestStore) {
		s.computeOpts = append(s.computeOpts, opts...)
	}
}

// WithArchive mirrors every mutation into a.
func WithArchive(a Archive) Option {
	return func(s *ForestStore) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithTopCacheSize sets how many leaderboard entries each snapshot precomputes.
func WithTopCacheSize(n int) Option {
	return func(s *ForestStore) {
		if n > 0 {
			s.topCacheSize = n
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *ForestStore) {
		if l != nil {
			s.logger = l
		}
	}
}
