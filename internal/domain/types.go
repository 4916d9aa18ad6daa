// Package domain defines the core types shared across tickerfeed: posts as the
// filtering service returns them, their per-ticker sentiment analysis, and the
// opaque keyset pagination cursor.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Post identity
// ---------------------------------------------------------------------------

// PostID identifies a post. The service may send it as a JSON string or a
// JSON integer; both decode to the same comparable string form.
type PostID string

// UnmarshalJSON accepts a quoted string or a bare number.
func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

// ---------------------------------------------------------------------------
// Sentiment
// ---------------------------------------------------------------------------

// Sentiment is the analyzed stance of a post toward one ticker.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"

	// SentimentAny places no constraint on sentiment when used as a filter.
	SentimentAny Sentiment = ""
)

// FilterSentiments lists the values a sentiment filter cycles through.
var FilterSentiments = []Sentiment{SentimentAny, SentimentPositive, SentimentNegative, SentimentNeutral}

// Label returns a display name, "Any" for SentimentAny.
func (s Sentiment) Label() string {
	if s == SentimentAny {
		return "Any"
	}
	return string(s)
}

// TickerSentiment pairs a ticker symbol with the sentiment a post expresses
// toward it.
type TickerSentiment struct {
	Ticker    string    `json:"ticker"`
	Sentiment Sentiment `json:"sentiment"`
}

// ---------------------------------------------------------------------------
// Link summary flag
// ---------------------------------------------------------------------------

// Flag is a loosely typed presence marker. The service sends link summaries
// as null, a boolean, a string, or an object; any non-empty value counts.
type Flag bool

// UnmarshalJSON treats null, false, "", 0, {} and [] as absent.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*f = false
	case bytes.Equal(data, []byte("true")):
		*f = true
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flag(strings.TrimSpace(s) != "")
	case data[0] == '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*f = Flag(len(m) > 0)
	case data[0] == '[':
		var a []json.RawMessage
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*f = Flag(len(a) > 0)
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("link summary flag: %w", err)
		}
		*f = Flag(n != 0)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Post
// ---------------------------------------------------------------------------

// Post is one record returned by the filtering service. Posts are immutable
// once received; identity is ID.
type Post struct {
	ID               PostID            `json:"id"`
	Username         string            `json:"username"`
	PostedAtISO      string            `json:"posted_at_iso,omitempty"`
	OriginalText     string            `json:"original_text,omitempty"`
	LikeCount        int               `json:"like_count"`
	RetweetCount     int               `json:"retweet_count"`
	SourceURL        string            `json:"source_url,omitempty"`
	LinkSummary      Flag              `json:"link_summary,omitempty"`
	TickerSentiments []TickerSentiment `json:"ticker_sentiments"`
}

// isoLayouts are tried in order when parsing PostedAtISO. The service emits
// both zoned and naive timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// PostedAt parses PostedAtISO. It returns false when the field is missing or
// not a recognizable ISO-8601 timestamp.
func (p Post) PostedAt() (time.Time, bool) {
	s := strings.TrimSpace(p.PostedAtISO)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ---------------------------------------------------------------------------
// Pagination cursor
// ---------------------------------------------------------------------------

// Cursor is the opaque keyset continuation token returned with each page.
type Cursor string

// NoCursor means there are no further pages.
const NoCursor Cursor = ""

// Done reports whether c signals the end of the result set.
func (c Cursor) Done() bool { return c == NoCursor }

// Page is one response from the filtering service.
type Page struct {
	Posts []Post
	Next  Cursor
}
