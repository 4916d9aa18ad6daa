package filterapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/filter"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/", 0, nil)
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpClient == nil || c.httpClient.Timeout == 0 {
		t.Fatal("expected http client with a default timeout")
	}
}

func TestNewRequestSerialization(t *testing.T) {
	likes := 100
	req := NewRequest(filter.Criteria{Keyword: "AAPL", MinLikes: &likes}, domain.NoCursor, 50)
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"keyword":    "AAPL",
		"accounts":   []any{},
		"likes":      float64(100),
		"rts":        nil,
		"ticker":     []any{},
		"sector":     []any{},
		"sub_sector": []any{},
		"sentiment":  "",
		"limit":      float64(50),
		"cursor":     nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	req = NewRequest(filter.Criteria{}, domain.Cursor("c1"), 50)
	if req.Cursor == nil || *req.Cursor != "c1" {
		t.Errorf("cursor = %v, want c1", req.Cursor)
	}
}

func TestFilterPostsSuccess(t *testing.T) {
	var gotReq Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != Path {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"success","posts":[{"id":1,"username":"a"},{"id":"2","username":"b"}],"next_cursor":"c1"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, slog.New(slog.DiscardHandler))
	page, err := c.RunQuery(context.Background(), filter.Criteria{Tickers: []string{"AAPL"}}, domain.NoCursor, 50)
	if err != nil {
		t.Fatalf("RunQuery: %v", err)
	}
	if len(page.Posts) != 2 || page.Posts[0].ID != "1" || page.Posts[1].ID != "2" {
		t.Errorf("unexpected posts %+v", page.Posts)
	}
	if page.Next != "c1" {
		t.Errorf("Next = %q, want c1", page.Next)
	}
	if diff := cmp.Diff([]string{"AAPL"}, gotReq.Ticker); diff != "" {
		t.Errorf("ticker mismatch (-want +got):\n%s", diff)
	}
	if gotReq.Limit != 50 || gotReq.Cursor != nil {
		t.Errorf("limit/cursor = %d/%v", gotReq.Limit, gotReq.Cursor)
	}
}

func TestFilterPostsNullCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"success","posts":[],"next_cursor":null}`)
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL, 0, slog.New(slog.DiscardHandler)).FilterPosts(context.Background(), Request{Limit: 50})
	if err != nil {
		t.Fatalf("FilterPosts: %v", err)
	}
	if !page.Next.Done() {
		t.Errorf("Next = %q, want done", page.Next)
	}
}

func TestFilterPostsErrors(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{"server message on error status", 200, `{"status":"error","message":"bad ticker"}`, "bad ticker", 200},
		{"status without message", 200, `{"status":"pending"}`, `filtering service reported status "pending"`, 200},
		{"http error with message", 400, `{"status":"error","message":"limit too large"}`, "limit too large", 400},
		{"http error without body", 502, `<html>bad gateway</html>`, "filtering service returned 502", 502},
		{"malformed body", 200, `{"status":`, "malformed response from filtering service", 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, 0, slog.New(slog.DiscardHandler)).FilterPosts(context.Background(), Request{Limit: 50})
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected *QueryError, got %v", err)
			}
			if qe.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", qe.Message, tt.wantMsg)
			}
			if qe.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", qe.Status, tt.wantStatus)
			}
		})
	}
}

func TestFilterPostsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0, slog.New(slog.DiscardHandler)).FilterPosts(context.Background(), Request{Limit: 50})
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %v", err)
	}
	if qe.Status != 0 || qe.Err == nil {
		t.Errorf("expected transport error with cause, got %+v", qe)
	}
	if qe.Error() != "could not reach the filtering service" {
		t.Errorf("Error() = %q", qe.Error())
	}
}
