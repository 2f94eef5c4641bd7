package curator

import "github.com/okian/curator/internal/domain/model"

// scores holds one pass's per-like local scores and their per-curator mean.
type scores struct {
	local map[model.Address][]float64
	mean  map[model.Address]float64
}

func newScores() scores {
	return scores{
		local: make(map[model.Address][]float64),
		mean:  make(map[model.Address]float64),
	}
}

func (s scores) finish() scores {
	for addr, xs := range s.local {
		s.mean[addr] = mean(xs)
	}
	return s
}

// earliness is (L - p) + 1 for the like at 1-indexed position p of L.
func earliness(total, index int) float64 {
	return float64(total - index)
}

// predictive computes A1: the first of L likers scores L, the last scores 1.
func predictive(e engagement) scores {
	out := newScores()
	for _, item := range e {
		total := len(item.likes)
		for i, ev := range item.likes {
			out.local[ev.Sender] = append(out.local[ev.Sender], earliness(total, i))
		}
	}
	return out.finish()
}

// support returns SP per item, parallel to e: the sum of A1 over every
// counted like on it.
func support(e engagement, a1 map[model.Address]float64) []float64 {
	out := make([]float64, len(e))
	for i, item := range e {
		for _, ev := range item.likes {
			out[i] += a1[ev.Sender]
		}
	}
	return out
}

// influence computes A2 by weighting each like's earliness with the item's SP.
// Items with no likes or zero support are skipped.
func influence(e engagement, sp []float64) scores {
	out := newScores()
	for n, item := range e {
		total := len(item.likes)
		itemSP := sp[n]
		if total == 0 || itemSP == 0 {
			continue
		}
		for i, ev := range item.likes {
			out.local[ev.Sender] = append(out.local[ev.Sender], itemSP*earliness(total, i))
		}
	}
	return out.finish()
}
