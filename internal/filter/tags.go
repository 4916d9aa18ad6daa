package filter

import (
	"slices"
	"strings"

	"golang.org/x/text/width"
)

// NormalizeTicker folds full-width characters to ASCII, trims surrounding
// whitespace, strips a leading cashtag "$" and uppercases the result.
func NormalizeTicker(raw string) string {
	s := strings.TrimSpace(width.Narrow.String(raw))
	s = strings.TrimPrefix(s, "$")
	return strings.ToUpper(strings.TrimSpace(s))
}

// TagStore is the ordered set of committed ticker tags, most recent first.
// It is the only source of tickers for a query.
type TagStore struct {
	tags []string
}

// NewTagStore creates an empty TagStore.
func NewTagStore() *TagStore {
	return &TagStore{}
}

// Add normalizes raw and inserts it at the front. It returns false, without
// error, when the normalized value is empty or already present.
func (s *TagStore) Add(raw string) bool {
	t := NormalizeTicker(raw)
	if t == "" || s.Contains(t) {
		return false
	}
	s.tags = slices.Insert(s.tags, 0, t)
	return true
}

// Remove deletes ticker (compared in normalized form). It returns false when
// the ticker was not present.
func (s *TagStore) Remove(ticker string) bool {
	i := slices.Index(s.tags, NormalizeTicker(ticker))
	if i < 0 {
		return false
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	return true
}

// Contains reports whether the normalized form of ticker is present.
func (s *TagStore) Contains(ticker string) bool {
	return slices.Contains(s.tags, NormalizeTicker(ticker))
}

// Tags returns a copy of the tags in display order.
func (s *TagStore) Tags() []string {
	return slices.Clone(s.tags)
}

// Len returns the number of tags.
func (s *TagStore) Len() int { return len(s.tags) }
