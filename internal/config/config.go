// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and CURATOR_* env vars on top.
// - Validate reports the first invalid field wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory like queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of workers applying likes.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many like tx ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// LeaderboardSize is the default number of entries returned. The reward
	// aggregator pays the top 5, so that is the default.
	LeaderboardSize int `koanf:"leaderboard_size"`

	// DBPath enables the sqlite archive when non-empty.
	DBPath string `koanf:"db_path"`

	// SnapshotPath is a JSON forest loaded at startup when non-empty.
	SnapshotPath string `koanf:"snapshot_path"`

	// Mitigation weights for writer diversity, project diversity and recency.
	WriterWeight  float64 `koanf:"writer_weight"`
	ProjectWeight float64 `koanf:"project_weight"`
	RecencyWeight float64 `koanf:"recency_weight"`

	// Recency is 1.0 up to RecencyFullDays and decays to the floor at RecencyZeroDays.
	RecencyFullDays float64 `koanf:"recency_full_days"`
	RecencyZeroDays float64 `koanf:"recency_zero_days"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 1_000,
		LeaderboardSize:     5,
		WriterWeight:        10,
		ProjectWeight:       5,
		RecencyWeight:       1,
		RecencyFullDays:     10,
		RecencyZeroDays:     90,
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.LeaderboardSize <= 0 || c.LeaderboardSize > c.MaxLeaderboardLimit:
		return fmt.Errorf("%w: leaderboard_size must be in (0, max_leaderboard_limit]", ErrInvalidConfig)
	case c.WriterWeight < 0 || c.ProjectWeight < 0 || c.RecencyWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.WriterWeight+c.ProjectWeight+c.RecencyWeight == 0:
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidConfig)
	case c.RecencyFullDays < 0 || c.RecencyZeroDays <= c.RecencyFullDays:
		return fmt.Errorf("%w: need 0 <= recency_full_days < recency_zero_days", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
