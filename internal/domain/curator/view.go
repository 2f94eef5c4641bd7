package curator

import (
	"github.com/okian/curator/internal/domain/model"
	"github.com/okian/curator/internal/domain/types"
)

// Leaderboard returns the first n ranked curators as entries, rank 1 first.
// n <= 0 returns all of them.
func (r *Result) Leaderboard(n int) []types.Entry {
	top := r.Top(n)
	out := make([]types.Entry, len(top))
	for i, rec := range top {
		out[i] = types.Entry{Rank: i + 1, Address: rec.Address, Score: rec.FinalScore}
	}
	return out
}

// CuratorIndex returns the lookup view of addr with its leaderboard rank.
func (r *Result) CuratorIndex(addr model.Address) types.CuratorIndex {
	idx := r.Lookup(addr)
	return types.CuratorIndex{
		Address:             addr,
		Rank:                r.Rank(addr),
		OverallIndex:        idx.OverallIndex,
		A1Score:             idx.A1Score,
		A2Score:             idx.A2Score,
		MitigationFactor:    idx.MitigationFactor,
		D1DiversityWriters:  idx.D1DiversityWriters,
		D2DiversityProjects: idx.D2DiversityProjects,
		D3Recency:           idx.D3Recency,
		TotalLikesGiven:     idx.TotalLikesGiven,
	}
}
