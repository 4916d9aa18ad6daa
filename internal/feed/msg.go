// Package feed is the post feed controller: it turns filter criteria into a
// keyset-paginated, capped, multi-selectable list of posts.
//
// The package is independent of any UI toolkit. Every blocking operation is
// returned as a Cmd to be run off the owner goroutine; its result comes back
// as a Msg that the owner passes to Controller.Update. All Controller methods
// must be called from that single owner goroutine.
package feed

import "tickerfeed/internal/domain"

// Msg is a result delivered back to the owner goroutine.
type Msg any

// Cmd is deferred work. The host runs it on another goroutine and feeds the
// returned Msg to Controller.Update. A nil Cmd means there is nothing to do.
type Cmd func() Msg

// DebounceMsg reports that a debounce window elapsed.
type DebounceMsg struct {
	Seq uint64
}

// QueryResultMsg carries the outcome of one filter call. Gen is the
// generation the call was issued under; Full distinguishes a new query from
// a page fetch.
type QueryResultMsg struct {
	Gen  uint64
	Full bool
	Page *domain.Page
	Err  error
}
