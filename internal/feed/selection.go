package feed

import "tickerfeed/internal/domain"

// Selection is the set of selected post ids plus the anchor position of the
// last activation, -1 when unset.
type Selection struct {
	ids    map[domain.PostID]struct{}
	anchor int
}

// NewSelection creates an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[domain.PostID]struct{}), anchor: -1}
}

// Activate handles one activation of the item id at position pos in order.
// With rangeMod and an anchor set, every id between the anchor and pos
// inclusive is added; nothing is removed. Otherwise id is toggled. The
// anchor moves to pos in both cases.
func (s *Selection) Activate(id domain.PostID, pos int, rangeMod bool, order []domain.PostID) {
	if rangeMod && s.anchor >= 0 {
		lo, hi := min(s.anchor, pos), max(s.anchor, pos)
		hi = min(hi, len(order)-1)
		for i := max(lo, 0); i <= hi; i++ {
			s.ids[order[i]] = struct{}{}
		}
	} else if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.anchor = pos
}

// Clear empties the selection and unsets the anchor.
func (s *Selection) Clear() {
	clear(s.ids)
	s.anchor = -1
}

// Evict drops ids removed from the head of the feed and shifts the anchor
// by the number of removed positions.
func (s *Selection) Evict(evicted []domain.PostID) {
	if len(evicted) == 0 {
		return
	}
	for _, id := range evicted {
		delete(s.ids, id)
	}
	if s.anchor >= 0 {
		s.anchor -= len(evicted)
		if s.anchor < 0 {
			s.anchor = -1
		}
	}
}

// Has reports whether id is selected.
func (s *Selection) Has(id domain.PostID) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Anchor returns the anchor position, -1 when unset.
func (s *Selection) Anchor() int { return s.anchor }

// InOrder returns the selected ids following order.
func (s *Selection) InOrder(order []domain.PostID) []domain.PostID {
	var out []domain.PostID
	for _, id := range order {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
