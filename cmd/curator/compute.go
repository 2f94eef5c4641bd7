package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/curator/internal/domain/curator"
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
)

type computeOutput struct {
	Summary     types.Summary       `json:"summary" yaml:"summary"`
	Leaderboard []types.Entry       `json:"leaderboard,omitempty" yaml:"leaderboard,omitempty"`
	Curator     *types.CuratorIndex `json:"curator,omitempty" yaml:"curator,omitempty"`
}

func computeCmd() *cobra.Command {
	var (
		snapshot string
		address  string
		top      int
		format   string
		at       string
	)
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute the index for a forest snapshot file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd)
			if err != nil {
				return err
			}
			forest, err := model.ReadForestFile(snapshot)
			if err != nil {
				return err
			}
			opts := computeOptions(cfg)
			if at != "" {
				ts, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				opts = append(opts, curator.WithNow(ts))
			}

			res := curator.Compute(forest, opts...)
			out := computeOutput{
				Summary: types.Summary{
					Projects:   len(forest),
					Items:      res.Items(),
					Curators:   res.Len(),
					Ranked:     res.Ranked(),
					ComputedAt: res.ComputedAt(),
				},
			}
			if address != "" {
				idx := res.CuratorIndex(address)
				out.Curator = &idx
			} else {
				out.Leaderboard = res.Leaderboard(top)
			}
			return render(cmd.OutOrStdout(), format, out)
		},
	}
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "JSON forest to score")
	cmd.Flags().StringVar(&address, "address", "", "Print the breakdown for one curator instead of the leaderboard")
	cmd.Flags().IntVar(&top, "top", 5, "Leaderboard entries to print (0 for all)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&at, "at", "", "Reference time for recency (RFC3339); defaults to now")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer func() { _ = enc.Close() }()
		return enc.Encode(v)
	default:
		return errors.New("--format must be json or yaml")
	}
}
