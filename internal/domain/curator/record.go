package curator

import (
	"sort"

	"github.com/okian/curator/internal/domain/model"
)

// Record is the computed aggregate for one curator address.
type Record struct {
	Address           model.Address
	LastLikeTimestamp *int64

	UniqueWritersLiked  map[model.Address]struct{}
	UniqueProjectsLiked map[string]struct{}

	// Per-like local scores, in item id order then like-history order.
	LocalScoresA1 []float64
	LocalScoresA2 []float64

	TotalLikesGiven int

	A1         float64
	A2         float64
	D1         float64
	D2         float64
	D3         float64
	M          float64
	FinalScore float64
}

func newRecord(addr model.Address) *Record {
	return &Record{
		Address:             addr,
		UniqueWritersLiked:  make(map[model.Address]struct{}),
		UniqueProjectsLiked: make(map[string]struct{}),
	}
}

// WritersLiked returns the distinct writers this curator liked, sorted.
func (r Record) WritersLiked() []model.Address { return sortedKeys(r.UniqueWritersLiked) }

// ProjectsLiked returns the distinct projects this curator liked, sorted.
func (r Record) ProjectsLiked() []string { return sortedKeys(r.UniqueProjectsLiked) }

// Index projects the record onto its per-address lookup shape.
func (r Record) Index() Index {
	return Index{
		OverallIndex:        r.FinalScore,
		A1Score:             r.A1,
		A2Score:             r.A2,
		MitigationFactor:    r.M,
		D1DiversityWriters:  r.D1,
		D2DiversityProjects: r.D2,
		D3Recency:           r.D3,
		TotalLikesGiven:     r.TotalLikesGiven,
	}
}

func (r *Record) clone() Record {
	cp := *r
	if r.LastLikeTimestamp != nil {
		ts := *r.LastLikeTimestamp
		cp.LastLikeTimestamp = &ts
	}
	cp.UniqueWritersLiked = make(map[model.Address]struct{}, len(r.UniqueWritersLiked))
	for k := range r.UniqueWritersLiked {
		cp.UniqueWritersLiked[k] = struct{}{}
	}
	cp.UniqueProjectsLiked = make(map[string]struct{}, len(r.UniqueProjectsLiked))
	for k := range r.UniqueProjectsLiked {
		cp.UniqueProjectsLiked[k] = struct{}{}
	}
	cp.LocalScoresA1 = append([]float64(nil), r.LocalScoresA1...)
	cp.LocalScoresA2 = append([]float64(nil), r.LocalScoresA2...)
	return cp
}

// Index is the per-address view of a curator's scores. The zero value is
// returned for addresses without a record.
type Index struct {
	OverallIndex        float64
	A1Score             float64
	A2Score             float64
	MitigationFactor    float64
	D1DiversityWriters  float64
	D2DiversityProjects float64
	D3Recency           float64
	TotalLikesGiven     int
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
