package curator

import (
	"math"
	"time"

	"github.com/okian/curator/internal/domain/model"
)

// Mitigation bounds and conversion constants.
const (
	mitigationFloor = 0.1
	mitigationCeil  = 1.0
	mitigationSpan  = mitigationCeil - mitigationFloor
	secondsPerDay   = 24 * 60 * 60
)

type mitigation struct {
	d1, d2, d3, m float64
}

// span is the population min and max of a count.
type span struct{ lo, hi int }

func spanOf(reg map[model.Address]*Record, count func(*Record) int) span {
	s := span{lo: math.MaxInt, hi: math.MinInt}
	for _, rec := range reg {
		c := count(rec)
		s.lo = min(s.lo, c)
		s.hi = max(s.hi, c)
	}
	return s
}

// diversity min-max normalizes count onto [0.1, 1].
//
// A population that ties at 1 scores the floor while one that ties above 1
// scores the ceiling.
func diversity(count int, s span) float64 {
	lo, hi := s.lo, s.hi
	if hi == lo {
		if count <= 1 {
			return mitigationFloor
		}
		lo--
	}
	return clamp(mitigationFloor + mitigationSpan*float64(count-lo)/float64(hi-lo))
}

// recency decays linearly from 1 at fullDays to 0.1 at zeroDays.
func recency(last *int64, now time.Time, fullDays, zeroDays float64) float64 {
	if last == nil {
		return mitigationFloor
	}
	days := float64(now.Unix()-*last) / secondsPerDay
	switch {
	case days <= fullDays:
		return mitigationCeil
	case days >= zeroDays:
		return mitigationFloor
	}
	return clamp(mitigationCeil - mitigationSpan*(days-fullDays)/(zeroDays-fullDays))
}

// mitigate computes D1, D2, D3 and the weighted M for every curator,
// relative to the whole population in reg.
func mitigate(reg map[model.Address]*Record, st settings) map[model.Address]mitigation {
	out := make(map[model.Address]mitigation, len(reg))
	if len(reg) == 0 {
		return out
	}
	writers := spanOf(reg, func(r *Record) int { return len(r.UniqueWritersLiked) })
	projects := spanOf(reg, func(r *Record) int { return len(r.UniqueProjectsLiked) })
	now := st.clock()
	w := st.weights

	for addr, rec := range reg {
		var mt mitigation
		mt.d1 = diversity(len(rec.UniqueWritersLiked), writers)
		mt.d2 = diversity(len(rec.UniqueProjectsLiked), projects)
		mt.d3 = recency(rec.LastLikeTimestamp, now, st.fullDays, st.zeroDays)
		mt.m = clamp((mt.d1*w.Writers + mt.d2*w.Projects + mt.d3*w.Recency) / w.total())
		out[addr] = mt
	}
	return out
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return mitigationFloor
	}
	return math.Max(mitigationFloor, math.Min(mitigationCeil, x))
}
