// Command curator serves and computes the Curator Index.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/curator/internal/config"
	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/pkg/logger"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "curator",
		Short:        "Curator Index service and tools",
		SilenceUsage: true,
	}
	root.AddCommand(
		serveCmd(),
		computeCmd(),
		seedCmd(),
	)
	return root
}

// setup loads configuration and initializes logging from it.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// computeOptions maps configured weights and the recency window onto the index.
func computeOptions(cfg *config.Config) []curator.Option {
	return []curator.Option{
		curator.WithWeights(curator.Weights{
			Writers:  cfg.WriterWeight,
			Projects: cfg.ProjectWeight,
			Recency:  cfg.RecencyWeight,
		}),
		curator.WithRecencyWindow(cfg.RecencyFullDays, cfg.RecencyZeroDays),
	}
}
