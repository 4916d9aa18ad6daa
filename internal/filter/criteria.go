// Package filter holds the user-editable filter state of the feed: the raw
// form inputs, the committed ticker tags, the account checklist and the
// sector hierarchy, and collects them into an immutable Criteria value.
package filter

import (
	"slices"

	"tickerfeed/internal/domain"
)

// Criteria is an immutable snapshot of the filters applied to one query.
// Nil thresholds and empty sets mean "no constraint".
type Criteria struct {
	Keyword     string
	MinLikes    *int
	MinRetweets *int
	Tickers     []string
	Sectors     []string
	SubSectors  []string
	Sentiment   domain.Sentiment
	Accounts    []string
}

// Equal reports whether c and o would produce the same query. Set-valued
// fields are compared without regard to order or duplicates.
func (c Criteria) Equal(o Criteria) bool {
	return c.Keyword == o.Keyword &&
		intPtrEqual(c.MinLikes, o.MinLikes) &&
		intPtrEqual(c.MinRetweets, o.MinRetweets) &&
		c.Sentiment == o.Sentiment &&
		setEqual(c.Tickers, o.Tickers) &&
		setEqual(c.Sectors, o.Sectors) &&
		setEqual(c.SubSectors, o.SubSectors) &&
		setEqual(c.Accounts, o.Accounts)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func setEqual(a, b []string) bool {
	sa := slices.Compact(slices.Sorted(slices.Values(a)))
	sb := slices.Compact(slices.Sorted(slices.Values(b)))
	return slices.Equal(sa, sb)
}
