// Package graph flattens a project forest into the engagement graph the
// curator scoring passes consume.
package graph

import (
	"sort"

	"github.com/okian/curator/internal/domain/model"
)

// Interactable is the uniform projection of a review, comment or reply.
type Interactable struct {
	ID          string
	Kind        model.Kind
	Author      model.Address
	ProjectID   string
	LikeHistory []model.LikeEvent
}

// Graph holds every interactable item of a forest and three lookups over them.
// Items is sorted by id so that passes over it are deterministic.
type Graph struct {
	Items         []Interactable
	LikesByItem   map[string][]model.LikeEvent
	WriterByItem  map[string]model.Address
	ProjectByItem map[string]string
}

// Build walks the forest once. Every item is included whether or not it has
// likes. Nil maps and nil children are treated as empty. The forest is not modified.
func Build(f model.Forest) *Graph {
	g := &Graph{
		LikesByItem:   make(map[string][]model.LikeEvent),
		WriterByItem:  make(map[string]model.Address),
		ProjectByItem: make(map[string]string),
	}

	for pKey, p := range f {
		if p == nil {
			continue
		}
		projectID := orKey(p.ID, pKey)
		for rKey, r := range p.Reviews {
			if r == nil {
				continue
			}
			g.add(orKey(r.ID, rKey), model.KindReview, r.Sender, projectID, r.LikeHistory)
			for cKey, c := range r.Comments {
				if c == nil {
					continue
				}
				g.add(orKey(c.ID, cKey), model.KindComment, c.Sender, projectID, c.LikeHistory)
				for xKey, x := range c.Replies {
					if x == nil {
						continue
					}
					g.add(orKey(x.ID, xKey), model.KindReply, x.Sender, projectID, x.LikeHistory)
				}
			}
		}
	}

	sort.Slice(g.Items, func(i, j int) bool { return g.Items[i].ID < g.Items[j].ID })
	return g
}

func (g *Graph) add(id string, kind model.Kind, author model.Address, projectID string, history []model.LikeEvent) {
	if history == nil {
		history = []model.LikeEvent{}
	}
	g.Items = append(g.Items, Interactable{
		ID:          id,
		Kind:        kind,
		Author:      author,
		ProjectID:   projectID,
		LikeHistory: history,
	})
	g.LikesByItem[id] = history
	g.WriterByItem[id] = author
	g.ProjectByItem[id] = projectID
}

// CountedLikes returns the LIKE events of an item that are not self-likes,
// in like-history order. These define an item's like count L and each
// liker's position p.
func (it Interactable) CountedLikes() []model.LikeEvent {
	out := make([]model.LikeEvent, 0, len(it.LikeHistory))
	for _, ev := range it.LikeHistory {
		if !ev.IsLike() || ev.Sender == it.Author {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func orKey(id, key string) string {
	if id != "" {
		return id
	}
	return key
}
