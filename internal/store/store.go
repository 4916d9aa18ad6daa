// Package store holds the post data behind the development filtering
// server: a SQLite database queried with keyset pagination, and Parquet
// fixture files used to seed it.
package store

import (
	"context"
	"errors"

	"tickerfeed/internal/domain"
)

// ErrBadCursor is returned when a cursor was not produced by this store.
var ErrBadCursor = errors.New("invalid cursor")

// PostQuery selects posts. Zero values place no constraint.
type PostQuery struct {
	Keyword     string
	Accounts    []string
	MinLikes    *int
	MinRetweets *int
	Tickers     []string
	Sectors     []string
	SubSectors  []string
	Sentiment   string
	Limit       int
	Cursor      string
}

// PostStore answers filtered, paginated post queries.
type PostStore interface {
	// QueryPosts returns up to q.Limit posts, newest first, and the cursor
	// of the following page (domain.NoCursor on the last page).
	QueryPosts(ctx context.Context, q PostQuery) (*domain.Page, error)
}

// FixtureLoader bulk-loads fixture data.
type FixtureLoader interface {
	// LoadFixtures inserts fx, replacing posts with the same id.
	LoadFixtures(ctx context.Context, fx *Fixtures) error
}
