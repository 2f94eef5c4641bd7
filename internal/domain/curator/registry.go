package curator

import (
	"github.com/okian/curator/internal/domain/graph"
	"github.com/okian/curator/internal/domain/model"
)

// itemLikes pairs an item with its counted likes. writer is the author the
// self-like filter ran against.
type itemLikes struct {
	id      string
	writer  model.Address
	project string
	likes   []model.LikeEvent
}

// engagement is the flattened counted-like stream every pass reads.
type engagement []itemLikes

func newEngagement(g *graph.Graph) engagement {
	out := make(engagement, 0, len(g.Items))
	for _, it := range g.Items {
		out = append(out, itemLikes{
			id:      it.ID,
			writer:  it.Author,
			project: it.ProjectID,
			likes:   it.CountedLikes(),
		})
	}
	return out
}

// buildRegistry folds the counted-like stream into one fresh record per
// curator. Self-likes never reach this point.
func buildRegistry(e engagement) map[model.Address]*Record {
	reg := make(map[model.Address]*Record)
	for _, item := range e {
		for _, ev := range item.likes {
			rec, ok := reg[ev.Sender]
			if !ok {
				rec = newRecord(ev.Sender)
				reg[ev.Sender] = rec
			}
			if rec.LastLikeTimestamp == nil || ev.Timestamp > *rec.LastLikeTimestamp {
				ts := ev.Timestamp
				rec.LastLikeTimestamp = &ts
			}
			if item.writer != "" {
				rec.UniqueWritersLiked[item.writer] = struct{}{}
			}
			if item.project != "" {
				rec.UniqueProjectsLiked[item.project] = struct{}{}
			}
			rec.TotalLikesGiven++
		}
	}
	return reg
}
