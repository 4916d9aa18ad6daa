package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tickerfeed/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ PostStore = (*SQLiteStore)(nil)
var _ FixtureLoader = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id            INTEGER PRIMARY KEY,
	post_id       TEXT NOT NULL UNIQUE,
	username      TEXT NOT NULL,
	original_text TEXT NOT NULL DEFAULT '',
	source_url    TEXT NOT NULL DEFAULT '',
	posted_at     INTEGER NOT NULL,
	like_count    INTEGER NOT NULL DEFAULT 0,
	retweet_count INTEGER NOT NULL DEFAULT 0,
	link_summary  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS ix_posts_posted_at ON posts (posted_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS ix_posts_username ON posts (username);
CREATE INDEX IF NOT EXISTS ix_posts_like_count ON posts (like_count);

CREATE TABLE IF NOT EXISTS ticker_sentiments (
	post_id   INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	ticker    TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	PRIMARY KEY (post_id, position)
);
CREATE INDEX IF NOT EXISTS ix_ticker_sentiments_ticker ON ticker_sentiments (ticker);

CREATE TABLE IF NOT EXISTS tickers (
	ticker            TEXT PRIMARY KEY,
	company_name      TEXT NOT NULL DEFAULT '',
	gics_sector       TEXT NOT NULL DEFAULT '',
	gics_sub_industry TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore implements PostStore and FixtureLoader backed by a SQLite
// database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CountPosts returns the number of stored posts.
func (s *SQLiteStore) CountPosts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

// ---------------------------------------------------------------------------
// FixtureLoader implementation
// ---------------------------------------------------------------------------

// LoadFixtures inserts fx in one transaction. Existing posts with the same
// id are replaced together with their sentiments.
func (s *SQLiteStore) LoadFixtures(ctx context.Context, fx *Fixtures) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range fx.Tickers {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO tickers (ticker, company_name, gics_sector, gics_sub_industry) VALUES (?, ?, ?, ?)`,
			t.Ticker, t.CompanyName, t.Sector, t.SubIndustry); err != nil {
			return fmt.Errorf("inserting ticker %s: %w", t.Ticker, err)
		}
	}
	for _, p := range fx.Posts {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ticker_sentiments WHERE post_id = ?`, p.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO posts (id, post_id, username, original_text, source_url, posted_at, like_count, retweet_count, link_summary)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.PostID, p.Username, p.OriginalText, p.SourceURL, p.PostedAt, p.LikeCount, p.RetweetCount, p.LinkSummary); err != nil {
			return fmt.Errorf("inserting post %d: %w", p.ID, err)
		}
	}
	for _, ts := range fx.Sentiments {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO ticker_sentiments (post_id, position, ticker, sentiment) VALUES (?, ?, ?, ?)`,
			ts.PostID, ts.Position, ts.Ticker, ts.Sentiment); err != nil {
			return fmt.Errorf("inserting sentiment for post %d: %w", ts.PostID, err)
		}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// PostStore implementation
// ---------------------------------------------------------------------------

// pageKey is the keyset position encoded into a cursor.
type pageKey struct {
	PostedAt int64 `json:"t"`
	ID       int64 `json:"i"`
}

func encodeCursor(k pageKey) domain.Cursor {
	b, _ := json.Marshal(k)
	return domain.Cursor(base64.RawURLEncoding.EncodeToString(b))
}

func decodeCursor(c string) (pageKey, error) {
	var k pageKey
	b, err := base64.RawURLEncoding.DecodeString(c)
	if err != nil {
		return k, ErrBadCursor
	}
	if err := json.Unmarshal(b, &k); err != nil {
		return k, ErrBadCursor
	}
	return k, nil
}

// QueryPosts returns posts newest first, ordered by (posted_at, id)
// descending, starting after q.Cursor.
func (s *SQLiteStore) QueryPosts(ctx context.Context, q PostQuery) (*domain.Page, error) {
	where, args, err := buildWhere(q)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, username, original_text, source_url, posted_at, like_count, retweet_count, link_summary
		FROM posts p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.posted_at DESC, p.id DESC LIMIT ?"
	args = append(args, q.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	type row struct {
		id       int64
		postedAt int64
		post     domain.Post
	}
	var got []row
	for rows.Next() {
		var r row
		var summary string
		if err := rows.Scan(&r.id, &r.post.Username, &r.post.OriginalText, &r.post.SourceURL,
			&r.postedAt, &r.post.LikeCount, &r.post.RetweetCount, &summary); err != nil {
			return nil, err
		}
		r.post.ID = domain.PostID(strconv.FormatInt(r.id, 10))
		r.post.PostedAtISO = time.UnixMilli(r.postedAt).UTC().Format(time.RFC3339)
		r.post.LinkSummary = domain.Flag(summary != "")
		got = append(got, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &domain.Page{}
	if len(got) > q.Limit {
		got = got[:q.Limit]
		last := got[len(got)-1]
		page.Next = encodeCursor(pageKey{PostedAt: last.postedAt, ID: last.id})
	}

	ids := make([]int64, len(got))
	for i, r := range got {
		ids[i] = r.id
	}
	sentiments, err := s.sentimentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	page.Posts = make([]domain.Post, len(got))
	for i, r := range got {
		r.post.TickerSentiments = sentiments[r.id]
		page.Posts[i] = r.post
	}
	return page, nil
}

func (s *SQLiteStore) sentimentsFor(ctx context.Context, ids []int64) (map[int64][]domain.TickerSentiment, error) {
	out := make(map[int64][]domain.TickerSentiment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, ticker, sentiment FROM ticker_sentiments WHERE post_id IN (`+placeholders(len(ids))+`) ORDER BY post_id, position`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying sentiments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var ts domain.TickerSentiment
		if err := rows.Scan(&id, &ts.Ticker, &ts.Sentiment); err != nil {
			return nil, err
		}
		out[id] = append(out[id], ts)
	}
	return out, rows.Err()
}

// buildWhere translates q into SQL conditions on posts p.
func buildWhere(q PostQuery) ([]string, []any, error) {
	var where []string
	var args []any

	if q.Cursor != "" {
		k, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, nil, err
		}
		where = append(where, "(p.posted_at < ? OR (p.posted_at = ? AND p.id < ?))")
		args = append(args, k.PostedAt, k.PostedAt, k.ID)
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		where = append(where, "p.original_text LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	if len(q.Accounts) > 0 {
		where = append(where, "p.username IN ("+placeholders(len(q.Accounts))+")")
		args = appendStrings(args, q.Accounts)
	}
	if q.MinLikes != nil {
		where = append(where, "p.like_count >= ?")
		args = append(args, *q.MinLikes)
	}
	if q.MinRetweets != nil {
		where = append(where, "p.retweet_count >= ?")
		args = append(args, *q.MinRetweets)
	}

	sentiment := q.Sentiment
	if strings.EqualFold(sentiment, "any") {
		sentiment = ""
	}
	// Ticker and sentiment apply to the same analysis row.
	if len(q.Tickers) > 0 || sentiment != "" {
		cond := []string{"ts.post_id = p.id"}
		if len(q.Tickers) > 0 {
			cond = append(cond, "ts.ticker IN ("+placeholders(len(q.Tickers))+")")
			args = appendStrings(args, q.Tickers)
		}
		if sentiment != "" {
			cond = append(cond, "ts.sentiment = ?")
			args = append(args, sentiment)
		}
		where = append(where, "EXISTS (SELECT 1 FROM ticker_sentiments ts WHERE "+strings.Join(cond, " AND ")+")")
	}

	if len(q.Sectors) > 0 || len(q.SubSectors) > 0 {
		var anyOf []string
		if len(q.Sectors) > 0 {
			anyOf = append(anyOf, "t.gics_sector IN ("+placeholders(len(q.Sectors))+")")
			args = appendStrings(args, q.Sectors)
		}
		if len(q.SubSectors) > 0 {
			anyOf = append(anyOf, "t.gics_sub_industry IN ("+placeholders(len(q.SubSectors))+")")
			args = appendStrings(args, q.SubSectors)
		}
		where = append(where, `EXISTS (SELECT 1 FROM ticker_sentiments ts JOIN tickers t ON t.ticker = ts.ticker
			WHERE ts.post_id = p.id AND (`+strings.Join(anyOf, " OR ")+`))`)
	}
	return where, args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendStrings(args []any, ss []string) []any {
	for _, s := range ss {
		args = append(args, s)
	}
	return args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
