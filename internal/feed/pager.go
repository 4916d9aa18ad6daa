package feed

import "tickerfeed/internal/domain"

// Pager owns the pagination cursor and the in-flight guard. At most one page
// request is outstanding at any time, across generations.
type Pager struct {
	cursor  domain.Cursor
	loading bool
}

// Cursor returns the cursor for the next page.
func (p *Pager) Cursor() domain.Cursor { return p.cursor }

// Loading reports whether a page request is in flight.
func (p *Pager) Loading() bool { return p.loading }

// Begin claims the in-flight slot. It refuses while a page is loading or when
// there is no further page.
func (p *Pager) Begin() bool {
	if p.loading || p.cursor.Done() {
		return false
	}
	p.loading = true
	return true
}

// Finish releases the in-flight slot. Every page response calls it, stale or
// not, success or failure.
func (p *Pager) Finish() { p.loading = false }

// Advance stores the cursor from a response.
func (p *Pager) Advance(next domain.Cursor) { p.cursor = next }

// Reset discards the cursor when a new query starts. A page request that is
// still in flight keeps the slot until its response arrives.
func (p *Pager) Reset() { p.cursor = domain.NoCursor }
