// Package mockapi simulates the sales-suite backend so the console can be
// exercised without a running deployment. It serves the same endpoints with
// seeded data and optional failure injection for the queue and the knowledge
// index.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ncanzani/salesdeck/internal/backend"
)

// Options control the simulated backend's behavior.
type Options struct {
	Env       string
	FailQueue bool // report the queue backend as down in /admin/stats
	FailRAG   bool // report the knowledge index as down in /admin/stats
}

// Server holds the seeded data set behind the mock endpoints. The seeded
// slices are read-only after New; only the index counters mutate, so mu
// guards just those.
type Server struct {
	opts          Options
	conversations []backend.Conversation
	leads         []backend.Lead

	mu           sync.Mutex
	catalogCount int
	docsCount    int
}

// New creates a mock backend with a seeded data set.
func New(opts Options) *Server {
	if opts.Env == "" {
		opts.Env = "development"
	}
	s := &Server{opts: opts, catalogCount: 120, docsCount: 40}
	s.seed()
	return s
}

// Handler returns the HTTP handler serving the mock API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/admin/stats", s.handleStats)
	r.Post("/admin/ingest", s.handleIngest)
	r.Get("/admin/conversations", s.handleConversations)
	r.Get("/admin/leads", s.handleLeads)
	r.Get("/admin/jobs/{id}", s.handleJob)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// httpError mirrors the backend's error shape: a bare detail string.
func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.HealthSnapshot{
		Status:  "ok",
		Version: "1.0.0",
		Env:     s.opts.Env,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	catalog, docs := s.catalogCount, s.docsCount
	s.mu.Unlock()

	stats := backend.StatsSnapshot{
		Queue: backend.QueueStats{Queued: 2, Started: 1, Finished: 10},
		RAG:   backend.RAGStats{Catalog: catalog, SupportDocs: docs},
		Config: backend.BotConfig{
			WhatsAppProvider: "twilio",
			LLMModel:         "gpt-4o",
			Env:              s.opts.Env,
		},
	}
	if s.opts.FailQueue {
		stats.Queue = backend.QueueStats{Error: "Redis unavailable"}
	}
	if s.opts.FailRAG {
		stats.RAG = backend.RAGStats{Error: "vector store unavailable"}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type      string            `json:"type"`
		Data      []json.RawMessage `json:"data"`
		FilePath  string            `json:"file_path"`
		SourceTag string            `json:"source_tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}

	switch req.Type {
	case "catalog":
		if len(req.Data) == 0 {
			httpError(w, http.StatusBadRequest, "'data' is required for type 'catalog'")
			return
		}
		s.mu.Lock()
		s.catalogCount += len(req.Data)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, backend.IngestResult{
			Status:        "ok",
			ChunksIndexed: len(req.Data),
			Collection:    "product_catalog",
		})
	case "document":
		if req.FilePath == "" {
			httpError(w, http.StatusBadRequest, "'file_path' is required for type 'document'")
			return
		}
		chunks := 12
		s.mu.Lock()
		s.docsCount += chunks
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, backend.IngestResult{
			Status:        "ok",
			ChunksIndexed: chunks,
			Collection:    "support_docs",
		})
	default:
		httpError(w, http.StatusBadRequest, "invalid type, use 'catalog' or 'document'")
	}
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(s.conversations, page, pageSize))
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(s.leads, page, pageSize))
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != "job-1" {
		httpError(w, http.StatusNotFound, "job not found: %s", id)
		return
	}
	writeJSON(w, http.StatusOK, backend.JobStatus{
		JobID:      id,
		Status:     "finished",
		Result:     "replied",
		EnqueuedAt: time.Now().Add(-time.Minute).UTC().Format(time.RFC3339),
		StartedAt:  time.Now().Add(-50 * time.Second).UTC().Format(time.RFC3339),
	})
}

func pageParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 {
		pageSize = v
	}
	return page, pageSize
}

// paginate slices items into the requested page. Out-of-range pages answer
// with empty items and the true total, matching the real backend.
func paginate[T any](items []T, page, pageSize int) backend.Page[T] {
	p := backend.Page[T]{
		Items:    []T{},
		Total:    len(items),
		Page:     page,
		PageSize: pageSize,
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return p
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}
