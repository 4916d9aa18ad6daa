package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/filterapi"
	"tickerfeed/internal/store"
)

// FilterServer serves the filter call from a PostStore.
type FilterServer struct {
	store    store.PostStore
	validate *validator.Validate
	log      *slog.Logger
}

// NewFilterServer creates a filter server over ps.
func NewFilterServer(ps store.PostStore, log *slog.Logger) *FilterServer {
	if log == nil {
		log = slog.Default()
	}
	return &FilterServer{store: ps, validate: newValidator(), log: log}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *FilterServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+filterapi.Path, s.handleFilterPosts)
}

// Handler returns an http.Handler with request-id, logging and CORS
// middleware.
func (s *FilterServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logRequests(corsMiddleware(mux))
}

func (s *FilterServer) handleFilterPosts(w http.ResponseWriter, r *http.Request) {
	var req filterapi.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	page, err := s.store.QueryPosts(r.Context(), toQuery(req))
	if errors.Is(err, store.ErrBadCursor) {
		writeError(w, http.StatusBadRequest, "invalid cursor")
		return
	}
	if err != nil {
		s.log.Error("querying posts", "request_id", w.Header().Get(requestIDHeader), "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	resp := filterapi.Response{Status: filterapi.StatusSuccess, Posts: page.Posts}
	if resp.Posts == nil {
		resp.Posts = []domain.Post{}
	}
	if !page.Next.Done() {
		next := string(page.Next)
		resp.NextCursor = &next
	}
	writeJSON(w, resp)
}

const requestIDHeader = "X-Request-ID"

// logRequests echoes (or assigns) a request id and logs each call.
func (s *FilterServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", id,
			"elapsed", time.Since(start).Round(time.Microsecond))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Status: "error", Message: msg})
}
