package model

import "strings"

// locate walks the hierarchy to the item at a dotted id.
func (f Forest) locate(id string) (history *[]LikeEvent, author Address, ok bool) {
	segs, ok := Segments(id)
	if !ok {
		return nil, "", false
	}
	p := f[segs[0]]
	if p == nil {
		return nil, "", false
	}
	r := p.Reviews[strings.Join(segs[:2], Separator)]
	if r == nil {
		return nil, "", false
	}
	if len(segs) == 2 {
		return &r.LikeHistory, r.Sender, true
	}
	c := r.Comments[strings.Join(segs[:3], Separator)]
	if c == nil {
		return nil, "", false
	}
	if len(segs) == 3 {
		return &c.LikeHistory, c.Sender, true
	}
	x := c.Replies[id]
	if x == nil {
		return nil, "", false
	}
	return &x.LikeHistory, x.Sender, true
}

// Author returns the writer of the item at id.
func (f Forest) Author(id string) (Address, bool) {
	_, author, ok := f.locate(id)
	return author, ok
}

// AppendLike appends ev to the history of the item at id.
// It reports false when the forest has no such item.
func (f Forest) AppendLike(id string, ev LikeEvent) bool {
	h, _, ok := f.locate(id)
	if !ok {
		return false
	}
	*h = append(*h, ev)
	return true
}

// ProjectOf returns the project segment of an item id.
func ProjectOf(id string) string {
	project, _, _ := strings.Cut(id, Separator)
	return project
}
