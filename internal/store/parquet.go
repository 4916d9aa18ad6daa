package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
)

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// PostRecord is the Parquet schema for a post.
type PostRecord struct {
	ID           int64  `parquet:"id"`
	PostID       string `parquet:"post_id"`
	Username     string `parquet:"username"`
	OriginalText string `parquet:"original_text"`
	SourceURL    string `parquet:"source_url"`
	PostedAt     int64  `parquet:"posted_at,timestamp(millisecond)"` // Unix ms
	LikeCount    int64  `parquet:"like_count"`
	RetweetCount int64  `parquet:"retweet_count"`
	LinkSummary  string `parquet:"link_summary"`
}

// SentimentRecord is the Parquet schema for one ticker sentiment of a post.
type SentimentRecord struct {
	PostID    int64  `parquet:"post_id"`
	Position  int32  `parquet:"position"`
	Ticker    string `parquet:"ticker"`
	Sentiment string `parquet:"sentiment"`
}

// TickerRecord is the Parquet schema for the ticker to sector map.
type TickerRecord struct {
	Ticker      string `parquet:"ticker"`
	CompanyName string `parquet:"company_name"`
	Sector      string `parquet:"gics_sector"`
	SubIndustry string `parquet:"gics_sub_industry"`
}

// Fixtures is a complete data set for the development server.
type Fixtures struct {
	Posts      []PostRecord
	Sentiments []SentimentRecord
	Tickers    []TickerRecord
}

// Fixture file names inside a fixture directory.
const (
	postsFile      = "posts.parquet"
	sentimentsFile = "ticker_sentiments.parquet"
	tickersFile    = "tickers.parquet"
)

// ReadFixtures reads the fixture files in dir. A missing file yields an
// empty section rather than an error.
func ReadFixtures(dir string) (*Fixtures, error) {
	var fx Fixtures
	var err error
	if fx.Posts, err = readOptional[PostRecord](filepath.Join(dir, postsFile)); err != nil {
		return nil, err
	}
	if fx.Sentiments, err = readOptional[SentimentRecord](filepath.Join(dir, sentimentsFile)); err != nil {
		return nil, err
	}
	if fx.Tickers, err = readOptional[TickerRecord](filepath.Join(dir, tickersFile)); err != nil {
		return nil, err
	}
	return &fx, nil
}

// WriteFixtures merges fx into the fixture files in dir. Records with the
// same key replace existing ones.
func WriteFixtures(dir string, fx *Fixtures) error {
	existing, err := ReadFixtures(dir)
	if err != nil {
		return err
	}
	if err := writeParquetFile(filepath.Join(dir, postsFile), mergePostRecords(existing.Posts, fx.Posts)); err != nil {
		return fmt.Errorf("writing posts: %w", err)
	}
	if err := writeParquetFile(filepath.Join(dir, sentimentsFile), mergeSentimentRecords(existing.Sentiments, fx.Sentiments)); err != nil {
		return fmt.Errorf("writing sentiments: %w", err)
	}
	if err := writeParquetFile(filepath.Join(dir, tickersFile), mergeTickerRecords(existing.Tickers, fx.Tickers)); err != nil {
		return fmt.Errorf("writing tickers: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func readOptional[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	rows, err := readParquetFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// mergePostRecords deduplicates posts by id, preferring incoming records.
// Results are sorted by posted_at.
func mergePostRecords(existing, incoming []PostRecord) []PostRecord {
	seen := make(map[int64]PostRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.ID] = r
	}
	for _, r := range incoming {
		seen[r.ID] = r
	}
	merged := make([]PostRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].PostedAt != merged[j].PostedAt {
			return merged[i].PostedAt < merged[j].PostedAt
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// mergeSentimentRecords replaces the whole sentiment list of every post that
// appears in incoming.
func mergeSentimentRecords(existing, incoming []SentimentRecord) []SentimentRecord {
	replaced := make(map[int64]bool)
	for _, r := range incoming {
		replaced[r.PostID] = true
	}
	merged := make([]SentimentRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if !replaced[r.PostID] {
			merged = append(merged, r)
		}
	}
	merged = append(merged, incoming...)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].PostID != merged[j].PostID {
			return merged[i].PostID < merged[j].PostID
		}
		return merged[i].Position < merged[j].Position
	})
	return merged
}

// mergeTickerRecords deduplicates tickers, preferring incoming records.
func mergeTickerRecords(existing, incoming []TickerRecord) []TickerRecord {
	seen := make(map[string]TickerRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Ticker] = r
	}
	for _, r := range incoming {
		seen[r.Ticker] = r
	}
	merged := make([]TickerRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Ticker < merged[j].Ticker })
	return merged
}
