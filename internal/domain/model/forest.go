// Package model contains domain models passed between layers.
package model

import "strings"

// Address identifies a wallet on the chain. Writers and curators are both addresses.
type Address = string

// Forest is the full project snapshot keyed by project id.
type Forest map[string]*Project

// Project owns reviews keyed by their full dotted id ("project.review").
type Project struct {
	ID      string             `json:"id"`
	Name    string             `json:"name,omitempty"`
	Reviews map[string]*Review `json:"reviews,omitempty"`
}

// Review is a top-level post on a project.
type Review struct {
	ID          string              `json:"id"`
	Sender      Address             `json:"sender"`
	Content     string              `json:"content,omitempty"`
	Timestamp   int64               `json:"timestamp,omitempty"`
	Comments    map[string]*Comment `json:"comments,omitempty"`
	LikeHistory []LikeEvent         `json:"likeHistory,omitempty"`
}

// Comment answers a review.
type Comment struct {
	ID          string            `json:"id"`
	Sender      Address           `json:"sender"`
	Content     string            `json:"content,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"`
	Replies     map[string]*Reply `json:"replies,omitempty"`
	LikeHistory []LikeEvent       `json:"likeHistory,omitempty"`
}

// Reply answers a comment.
type Reply struct {
	ID          string      `json:"id"`
	Sender      Address     `json:"sender"`
	Content     string      `json:"content,omitempty"`
	Timestamp   int64       `json:"timestamp,omitempty"`
	LikeHistory []LikeEvent `json:"likeHistory,omitempty"`
}

// Kind distinguishes the three interactable levels of the hierarchy.
type Kind string

const (
	KindUnknown Kind = ""
	KindReview  Kind = "review"
	KindComment Kind = "comment"
	KindReply   Kind = "reply"
)

// Separator joins the segments of an item id.
const Separator = "."

// KindOf derives the item kind from the number of dotted segments in id.
func KindOf(id string) Kind {
	if id == "" {
		return KindUnknown
	}
	switch strings.Count(id, Separator) {
	case 1:
		return KindReview
	case 2:
		return KindComment
	case 3:
		return KindReply
	default:
		return KindUnknown
	}
}

// Segments splits an item id and reports whether it addresses an interactable.
func Segments(id string) ([]string, bool) {
	if KindOf(id) == KindUnknown {
		return nil, false
	}
	segs := strings.Split(id, Separator)
	for _, s := range segs {
		if s == "" {
			return nil, false
		}
	}
	return segs, true
}

// Clone returns a deep copy of the forest. Nil children are dropped.
func (f Forest) Clone() Forest {
	out := make(Forest, len(f))
	for id, p := range f {
		if p == nil {
			continue
		}
		out[id] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	cp := &Project{ID: p.ID, Name: p.Name}
	if p.Reviews != nil {
		cp.Reviews = make(map[string]*Review, len(p.Reviews))
		for id, r := range p.Reviews {
			if r == nil {
				continue
			}
			cp.Reviews[id] = r.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy of the review.
func (r *Review) Clone() *Review {
	cp := *r
	cp.LikeHistory = cloneHistory(r.LikeHistory)
	if r.Comments != nil {
		cp.Comments = make(map[string]*Comment, len(r.Comments))
		for id, c := range r.Comments {
			if c == nil {
				continue
			}
			cp.Comments[id] = c.Clone()
		}
	}
	return &cp
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	cp := *c
	cp.LikeHistory = cloneHistory(c.LikeHistory)
	if c.Replies != nil {
		cp.Replies = make(map[string]*Reply, len(c.Replies))
		for id, x := range c.Replies {
			if x == nil {
				continue
			}
			cp.Replies[id] = x.Clone()
		}
	}
	return &cp
}

// Clone returns a deep copy of the reply.
func (x *Reply) Clone() *Reply {
	cp := *x
	cp.LikeHistory = cloneHistory(x.LikeHistory)
	return &cp
}

func cloneHistory(h []LikeEvent) []LikeEvent {
	if h == nil {
		return nil
	}
	out := make([]LikeEvent, len(h))
	copy(out, h)
	return out
}
