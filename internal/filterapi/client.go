package filterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/filter"
)

// maxResponseBytes bounds a single page body. A full page of long posts with
// sentiment arrays stays well under this.
const maxResponseBytes = 8 << 20

// QueryError is returned for every failed filter call. Message is suitable
// for showing to the user as-is.
type QueryError struct {
	Status  int // HTTP status, 0 when the service was not reached
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to the filtering service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the service at baseURL. timeout bounds each
// call including reading the body; zero means 30s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// RunQuery issues one filter call for criteria starting at cursor.
func (c *Client) RunQuery(ctx context.Context, criteria filter.Criteria, cursor domain.Cursor, limit int) (*domain.Page, error) {
	return c.FilterPosts(ctx, NewRequest(criteria, cursor, limit))
}

// FilterPosts sends req and returns the page on a "success" response. Any
// other outcome is a *QueryError.
// POST /api/filter-posts -> { status, posts, next_cursor, message }
func (c *Client) FilterPosts(ctx context.Context, req Request) (*domain.Page, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &QueryError{Message: "could not encode filter request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, &QueryError{Message: "could not build filter request", Err: err}
	}
	reqID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("filter request failed", "request_id", reqID, "error", err)
		return nil, &QueryError{Message: "could not reach the filtering service", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &QueryError{Status: resp.StatusCode, Message: "failed to read filtering service response", Err: err}
	}

	var out Response
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("filtering service returned %d", resp.StatusCode)
		if decodeErr == nil && out.Message != "" {
			msg = out.Message
		}
		c.logger.Warn("filter request rejected", "request_id", reqID, "status", resp.StatusCode, "message", msg)
		return nil, &QueryError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &QueryError{Status: resp.StatusCode, Message: "malformed response from filtering service", Err: decodeErr}
	}
	if out.Status != StatusSuccess {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("filtering service reported status %q", out.Status)
		}
		return nil, &QueryError{Status: resp.StatusCode, Message: msg}
	}

	page := &domain.Page{Posts: out.Posts}
	if out.NextCursor != nil {
		page.Next = domain.Cursor(*out.NextCursor)
	}
	c.logger.Debug("filter request done",
		"request_id", reqID,
		"posts", len(page.Posts),
		"next", string(page.Next),
		"elapsed", time.Since(start))
	return page, nil
}
