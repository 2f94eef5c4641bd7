// Package curator computes the Curator Index: a ranking of likers by the
// predictive value and influence of their likes (A1, A2), dampened by
// writer diversity, project diversity and recency (D1, D2, D3 -> M).
//
// The computation is a pure function of one forest snapshot. It never
// modifies its input, performs no I/O and re-runs from scratch on every call.
package curator

import (
	"sort"
	"time"

	"github.com/okian/curator/internal/domain/graph"
	"github.com/okian/curator/internal/domain/model"
)

// Result is the immutable outcome of one computation.
type Result struct {
	curators   map[model.Address]*Record
	ranked     []*Record // FinalScore > 0, best first
	items      int
	computedAt time.Time
}

// Compute runs the full pipeline over forest:
// graph -> registry -> A1 -> A2 -> mitigation -> final score.
func Compute(forest model.Forest, opts ...Option) *Result {
	st := newSettings(opts)
	g := graph.Build(forest)
	e := newEngagement(g)

	reg := buildRegistry(e)
	a1 := predictive(e)
	a2 := influence(e, support(e, a1.mean))
	mit := mitigate(reg, st)

	for addr, rec := range reg {
		rec.LocalScoresA1 = a1.local[addr]
		rec.LocalScoresA2 = a2.local[addr]
		rec.A1 = a1.mean[addr]
		rec.A2 = a2.mean[addr]
		mt := mit[addr]
		rec.D1, rec.D2, rec.D3, rec.M = mt.d1, mt.d2, mt.d3, mt.m
		rec.FinalScore = rec.A2 * rec.M
	}

	return &Result{
		curators:   reg,
		ranked:     rank(reg),
		items:      len(g.Items),
		computedAt: st.clock(),
	}
}

// rank orders curators by FinalScore desc, then address asc. Zero scores are dropped.
func rank(reg map[model.Address]*Record) []*Record {
	out := make([]*Record, 0, len(reg))
	for _, rec := range reg {
		if rec.FinalScore > 0 {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Len returns the number of curators.
func (r *Result) Len() int { return len(r.curators) }

// Ranked returns the number of curators with a positive score.
func (r *Result) Ranked() int { return len(r.ranked) }

// Items returns the number of interactable items in the snapshot.
func (r *Result) Items() int { return r.items }

// ComputedAt returns the reference time used for recency.
func (r *Result) ComputedAt() time.Time { return r.computedAt }

// Record returns a copy of the record for addr.
func (r *Result) Record(addr model.Address) (Record, bool) {
	rec, ok := r.curators[addr]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Lookup returns the index for addr, or the zero Index if addr is not a curator.
func (r *Result) Lookup(addr model.Address) Index {
	rec, ok := r.curators[addr]
	if !ok {
		return Index{}
	}
	return rec.Index()
}

// Curators returns a copy of every curator record keyed by address.
func (r *Result) Curators() map[model.Address]Record {
	out := make(map[model.Address]Record, len(r.curators))
	for addr, rec := range r.curators {
		out[addr] = rec.clone()
	}
	return out
}

// Top returns the n best-scoring curators with a non-zero score.
// n <= 0 returns all of them.
func (r *Result) Top(n int) []Record {
	if n <= 0 || n > len(r.ranked) {
		n = len(r.ranked)
	}
	out := make([]Record, n)
	for i := 0; i < n; i++ {
		out[i] = r.ranked[i].clone()
	}
	return out
}

// Rank returns the 1-based leaderboard position of addr, or 0 if unranked.
func (r *Result) Rank(addr model.Address) int {
	rec, ok := r.curators[addr]
	if !ok || rec.FinalScore <= 0 {
		return 0
	}
	i := sort.Search(len(r.ranked), func(i int) bool {
		x := r.ranked[i]
		if x.FinalScore != rec.FinalScore {
			return x.FinalScore < rec.FinalScore
		}
		return x.Address >= addr
	})
	if i < len(r.ranked) && r.ranked[i].Address == addr {
		return i + 1
	}
	return 0
}
