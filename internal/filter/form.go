package filter

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"tickerfeed/internal/domain"
)

// Form holds the raw filter inputs exactly as the user left them. Numeric
// thresholds stay as text until Collect parses them.
type Form struct {
	Keyword     string
	MinLikes    string
	MinRetweets string
	Sentiment   domain.Sentiment
	Accounts    *Checklist
	Sectors     *SectorTree
}

// NewForm creates an empty form over the given account checklist and sector
// tree. Either may be nil when the corresponding filter is not offered.
func NewForm(accounts *Checklist, sectors *SectorTree) *Form {
	if accounts == nil {
		accounts = NewChecklist(nil)
	}
	if sectors == nil {
		sectors, _ = NewSectorTree(nil)
	}
	return &Form{Accounts: accounts, Sectors: sectors}
}

// CycleSentiment advances the sentiment filter to the next value, wrapping
// back to "any".
func (f *Form) CycleSentiment() {
	for i, s := range domain.FilterSentiments {
		if s == f.Sentiment {
			f.Sentiment = domain.FilterSentiments[(i+1)%len(domain.FilterSentiments)]
			return
		}
	}
	f.Sentiment = domain.SentimentAny
}

// Collector reads the form and tag store into Criteria.
type Collector struct {
	form *Form
	tags *TagStore
}

// NewCollector creates a Collector over form and tags.
func NewCollector(form *Form, tags *TagStore) *Collector {
	return &Collector{form: form, tags: tags}
}

// Collect snapshots the current inputs. It has no side effects. Tickers come
// only from the tag store, so text still being typed into the ticker input
// never joins the query.
func (c *Collector) Collect() Criteria {
	f := c.form
	sectors, subSectors := f.Sectors.Selected()
	return Criteria{
		Keyword:     strings.TrimSpace(f.Keyword),
		MinLikes:    ParseThreshold(f.MinLikes),
		MinRetweets: ParseThreshold(f.MinRetweets),
		Tickers:     c.tags.Tags(),
		Sectors:     sectors,
		SubSectors:  subSectors,
		Sentiment:   f.Sentiment,
		Accounts:    f.Accounts.Checked(),
	}
}

// ParseThreshold parses a non-negative integer threshold. Empty, malformed
// or negative input yields nil ("no constraint"), never zero.
func ParseThreshold(raw string) *int {
	s := strings.TrimSpace(width.Narrow.String(raw))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
