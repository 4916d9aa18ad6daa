package feed

import (
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"
	"mvdan.cc/xurls/v2"

	"tickerfeed/internal/domain"
)

// TextLineBudget is how many wrapped lines of post text show before the
// block collapses behind an expand toggle.
const TextLineBudget = 3

// MissingTextPlaceholder replaces empty or sentinel post text.
const MissingTextPlaceholder = "(no text content)"

// NoAnalysisPlaceholder is shown for posts without ticker sentiments.
const NoAnalysisPlaceholder = "(no ticker analysis)"

var (
	urlPattern     = xurls.Relaxed()
	mentionPattern = regexp.MustCompile(`(?:^|[^\w@/])(@\w{1,15})\b`)
	hashtagPattern = regexp.MustCompile(`(?:^|[^\w&#/])(#\w*[A-Za-z_]\w*)`)
)

// missingText reports whether raw is empty or one of the sentinels the
// ingestion pipeline writes for absent text.
func missingText(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none", "null":
		return true
	}
	return false
}

// Sanitize removes terminal escape sequences and control characters from
// untrusted text. Newlines survive; tabs become spaces.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Bidi_Control, r):
			return -1
		}
		return r
	}, s)
}

// SanitizeLine is Sanitize for single-line fields such as usernames.
func SanitizeLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(Sanitize(s), "\n", " "))
}

// processText turns raw post text into display lines: unescape HTML
// entities, strip control sequences, wrap to width, then re-link URLs,
// mentions and hashtags. missing is true when the placeholder was used.
func processText(raw string, width int) (lines []string, missing bool) {
	if missingText(raw) {
		return []string{MissingTextPlaceholder}, true
	}
	s := Sanitize(html.UnescapeString(raw))
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{MissingTextPlaceholder}, true
	}
	if width < 10 {
		width = 10
	}
	for _, line := range strings.Split(wordwrap.String(s, width), "\n") {
		lines = append(lines, linkify(line))
	}
	return lines, false
}

type linkSpan struct {
	start, end int
	target     string
}

// linkify wraps URLs, @mentions and #hashtags in OSC 8 hyperlinks. The
// visible text is unchanged.
func linkify(line string) string {
	var spans []linkSpan
	for _, m := range urlPattern.FindAllStringIndex(line, -1) {
		u := line[m[0]:m[1]]
		target := u
		if !strings.Contains(u, "://") && !strings.HasPrefix(u, "mailto:") {
			target = "https://" + u
		}
		spans = append(spans, linkSpan{m[0], m[1], target})
	}
	for _, m := range mentionPattern.FindAllStringSubmatchIndex(line, -1) {
		name := line[m[2]+1 : m[3]]
		spans = append(spans, linkSpan{m[2], m[3], "https://x.com/" + name})
	}
	for _, m := range hashtagPattern.FindAllStringSubmatchIndex(line, -1) {
		tag := line[m[2]+1 : m[3]]
		spans = append(spans, linkSpan{m[2], m[3], "https://x.com/hashtag/" + tag})
	}
	if len(spans) == 0 {
		return line
	}
	slices.SortStableFunc(spans, func(a, b linkSpan) int { return a.start - b.start })

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		// URLs may contain # or @; the first span claiming a range wins.
		if sp.start < pos {
			continue
		}
		b.WriteString(line[pos:sp.start])
		b.WriteString(ansi.SetHyperlink(sp.target))
		b.WriteString(line[sp.start:sp.end])
		b.WriteString(ansi.ResetHyperlink())
		pos = sp.end
	}
	b.WriteString(line[pos:])
	return b.String()
}

// Badge is one ticker sentiment rendered on a post.
type Badge struct {
	Ticker    string
	Sentiment domain.Sentiment
	Icon      string
}

// SentimentIcon maps a sentiment to its badge icon. Unknown values render as
// neutral.
func SentimentIcon(s domain.Sentiment) string {
	switch s {
	case domain.SentimentPositive:
		return "✓"
	case domain.SentimentNegative:
		return "✗"
	default:
		return "–"
	}
}

func badgesFor(ts []domain.TickerSentiment) []Badge {
	out := make([]Badge, 0, len(ts))
	for _, t := range ts {
		ticker := SanitizeLine(t.Ticker)
		if ticker == "" {
			continue
		}
		out = append(out, Badge{Ticker: ticker, Sentiment: t.Sentiment, Icon: SentimentIcon(t.Sentiment)})
	}
	return out
}
