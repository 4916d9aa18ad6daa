package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPostIDAcceptsStringAndNumber(t *testing.T) {
	var posts []Post
	raw := `[{"id": 42, "username": "a"}, {"id": "42"}, {"id": "tw-9"}]`
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if posts[0].ID != posts[1].ID {
		t.Errorf("numeric and string ids differ: %q vs %q", posts[0].ID, posts[1].ID)
	}
	if posts[2].ID != "tw-9" {
		t.Errorf("ID = %q, want %q", posts[2].ID, "tw-9")
	}
}

func TestPostDefaults(t *testing.T) {
	var p Post
	raw := `{"id": 1, "username": "u", "like_count": null, "ticker_sentiments": null}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.LikeCount != 0 || p.RetweetCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", p.LikeCount, p.RetweetCount)
	}
	if bool(p.LinkSummary) {
		t.Error("expected absent link summary")
	}
	if len(p.TickerSentiments) != 0 {
		t.Errorf("expected no sentiments, got %v", p.TickerSentiments)
	}
}

func TestFlagUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`null`, false},
		{`false`, false},
		{`true`, true},
		{`""`, false},
		{`"  "`, false},
		{`"summary text"`, true},
		{`0`, false},
		{`1`, true},
		{`{}`, false},
		{`{"title": "x"}`, true},
		{`[]`, false},
	}
	for _, tt := range tests {
		var f Flag
		if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
			t.Errorf("%s: unexpected error %v", tt.raw, err)
			continue
		}
		if bool(f) != tt.want {
			t.Errorf("%s: got %v, want %v", tt.raw, f, tt.want)
		}
	}
}

func TestPostedAt(t *testing.T) {
	tests := []struct {
		iso  string
		ok   bool
		want time.Time
	}{
		{"2024-03-05T14:07:00Z", true, time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)},
		{"2024-03-05T14:07:00.123456", true, time.Date(2024, 3, 5, 14, 7, 0, 123456000, time.UTC)},
		{"2024-03-05 14:07:00", true, time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}
	for _, tt := range tests {
		got, ok := Post{PostedAtISO: tt.iso}.PostedAt()
		if ok != tt.ok {
			t.Errorf("%q: ok = %v, want %v", tt.iso, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("%q: got %v, want %v", tt.iso, got, tt.want)
		}
	}
}

func TestSentimentLabel(t *testing.T) {
	if SentimentAny.Label() != "Any" {
		t.Errorf("SentimentAny.Label() = %q", SentimentAny.Label())
	}
	if SentimentPositive.Label() != "Positive" {
		t.Errorf("SentimentPositive.Label() = %q", SentimentPositive.Label())
	}
	if len(FilterSentiments) != 4 || FilterSentiments[0] != SentimentAny {
		t.Errorf("FilterSentiments = %v", FilterSentiments)
	}
}

func TestCursorDone(t *testing.T) {
	if !NoCursor.Done() {
		t.Error("NoCursor should be done")
	}
	if Cursor("c1").Done() {
		t.Error("c1 should not be done")
	}
}
