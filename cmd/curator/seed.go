package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/curator/internal/fixture"
)

func seedCmd() *cobra.Command {
	var (
		projects int
		reviews  int
		writers  int
		curators int
		seed     int64
		out      string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a synthetic forest for demos and load tests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if projects < 1 || reviews < 1 {
				return errors.New("--projects and --reviews must be positive")
			}
			forest := fixture.Generate(
				fixture.WithSeed(seed),
				fixture.WithNow(time.Now()),
				fixture.WithShape(projects, reviews, 2, 1),
				fixture.WithPopulation(writers, curators),
			)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				fh, err := os.Create(out) //nolint:gosec // operator supplied path
				if err != nil {
					return err
				}
				defer func() { _ = fh.Close() }()
				w = fh
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(forest)
		},
	}
	cmd.Flags().IntVar(&projects, "projects", 4, "Number of projects")
	cmd.Flags().IntVar(&reviews, "reviews", 5, "Reviews per project")
	cmd.Flags().IntVar(&writers, "writers", 8, "Distinct writer addresses")
	cmd.Flags().IntVar(&curators, "curators", 12, "Distinct curator addresses")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	cmd.Flags().StringVar(&out, "out", "", "Output file (stdout when empty)")
	return cmd
}
