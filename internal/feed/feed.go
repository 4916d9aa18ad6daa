package feed

import (
	"slices"
	"time"

	"tickerfeed/internal/domain"
)

// DefaultMaxPosts is the retained-item cap.
const DefaultMaxPosts = 200

// DefaultWidth is the text wrap width used until the host reports its size.
const DefaultWidth = 80

// State describes what the feed surface should show.
type State int

const (
	// StateIdle means no query has completed yet.
	StateIdle State = iota
	StateLoaded
	// StateEmpty means the last query matched nothing.
	StateEmpty
	// StateError means the last full query failed.
	StateError
)

// Item is one materialized post. Everything derived from untrusted fields
// is already sanitized.
type Item struct {
	Post     domain.Post
	Username string
	PostedAt string // "2006-01-02 15:04" in local time, or "N/A"
	Source   string
	Badges   []Badge
	Lines    []string
	// NoText is set when Lines holds the missing-text placeholder.
	NoText   bool
	Expanded bool
}

// ID returns the post id.
func (it *Item) ID() domain.PostID { return it.Post.ID }

// Truncatable reports whether the text exceeds the line budget and so gets
// an expand toggle.
func (it *Item) Truncatable() bool { return len(it.Lines) > TextLineBudget }

// VisibleLines returns the lines to draw given the expanded flag.
func (it *Item) VisibleLines() []string {
	if it.Expanded || !it.Truncatable() {
		return it.Lines
	}
	return it.Lines[:TextLineBudget]
}

// Feed is the ordered, capped list of materialized posts. Order is the only
// source of positions; nothing caches an index.
type Feed struct {
	items    []*Item
	maxPosts int
	width    int
	loc      *time.Location
	state    State
	errMsg   string
}

// NewFeed creates an empty feed retaining at most maxPosts items.
func NewFeed(maxPosts int, loc *time.Location) *Feed {
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}
	if loc == nil {
		loc = time.Local
	}
	return &Feed{maxPosts: maxPosts, width: DefaultWidth, loc: loc}
}

// State returns the current surface state.
func (f *Feed) State() State { return f.state }

// Err returns the message of the last full-query failure.
func (f *Feed) Err() string { return f.errMsg }

// Len returns the number of materialized items.
func (f *Feed) Len() int { return len(f.items) }

// MaxPosts returns the retained-item cap.
func (f *Feed) MaxPosts() int { return f.maxPosts }

// Items returns the items in display order. Callers must not modify the
// slice.
func (f *Feed) Items() []*Item { return f.items }

// At returns the item at position i, or nil when out of range.
func (f *Feed) At(i int) *Item {
	if i < 0 || i >= len(f.items) {
		return nil
	}
	return f.items[i]
}

// IndexOf returns the current position of id, or -1.
func (f *Feed) IndexOf(id domain.PostID) int {
	return slices.IndexFunc(f.items, func(it *Item) bool { return it.Post.ID == id })
}

// IDs returns every post id in display order.
func (f *Feed) IDs() []domain.PostID {
	ids := make([]domain.PostID, len(f.items))
	for i, it := range f.items {
		ids[i] = it.Post.ID
	}
	return ids
}

// Replace discards every item and materializes posts in order. Duplicate ids
// within posts keep their first occurrence; at most maxPosts are kept.
func (f *Feed) Replace(posts []domain.Post) {
	f.items = f.items[:0:0]
	f.errMsg = ""
	seen := make(map[domain.PostID]bool, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		f.items = append(f.items, f.materialize(p))
		if len(f.items) == f.maxPosts {
			break
		}
	}
	if len(f.items) == 0 {
		f.state = StateEmpty
	} else {
		f.state = StateLoaded
	}
}

// Append materializes posts after the tail, skipping ids already present,
// then evicts from the head until the cap holds. It returns the evicted ids
// in their former order.
func (f *Feed) Append(posts []domain.Post) []domain.PostID {
	present := make(map[domain.PostID]bool, len(f.items)+len(posts))
	for _, it := range f.items {
		present[it.Post.ID] = true
	}
	for _, p := range posts {
		if present[p.ID] {
			continue
		}
		present[p.ID] = true
		f.items = append(f.items, f.materialize(p))
	}
	if len(f.items) > 0 {
		f.state = StateLoaded
	}

	over := len(f.items) - f.maxPosts
	if over <= 0 {
		return nil
	}
	evicted := make([]domain.PostID, over)
	for i := range over {
		evicted[i] = f.items[i].Post.ID
	}
	f.items = slices.Delete(f.items, 0, over)
	return evicted
}

// Fail clears the feed into the error state.
func (f *Feed) Fail(msg string) {
	f.items = f.items[:0:0]
	f.state = StateError
	f.errMsg = msg
}

// ToggleExpanded flips the expanded flag of id. Text is not re-processed.
// It returns false when id is absent or its text fits the budget.
func (f *Feed) ToggleExpanded(id domain.PostID) bool {
	i := f.IndexOf(id)
	if i < 0 || !f.items[i].Truncatable() {
		return false
	}
	f.items[i].Expanded = !f.items[i].Expanded
	return true
}

// SetWidth changes the wrap width and re-wraps every item when it differs.
func (f *Feed) SetWidth(width int) {
	if width <= 0 || width == f.width {
		return
	}
	f.width = width
	for _, it := range f.items {
		it.Lines, it.NoText = processText(it.Post.OriginalText, f.width)
	}
}

// Width returns the wrap width.
func (f *Feed) Width() int { return f.width }

func (f *Feed) materialize(p domain.Post) *Item {
	it := &Item{
		Post:     p,
		Username: SanitizeLine(p.Username),
		PostedAt: "N/A",
		Source:   SanitizeLine(p.SourceURL),
		Badges:   badgesFor(p.TickerSentiments),
	}
	if t, ok := p.PostedAt(); ok {
		it.PostedAt = t.In(f.loc).Format("2006-01-02 15:04")
	}
	it.Lines, it.NoText = processText(p.OriginalText, f.width)
	return it
}
