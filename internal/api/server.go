package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtokuda/honeysift/internal/analyzer"
	"github.com/mtokuda/honeysift/internal/snapshot"
)

// Server is the read surface the dashboard polls. It never exposes raw
// commands, only finished reports and cycle history.
type Server struct {
	analyzer *analyzer.Analyzer
	store    *snapshot.Store
	log      *slog.Logger
}

func NewServer(a *analyzer.Analyzer, store *snapshot.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{analyzer: a, store: store, log: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/insights/latest", s.handleLatest)
	r.Get("/api/insights/history", s.handleHistory)
	r.Post("/api/analyze", s.handleAnalyze)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLatest always answers 200: when no cycle has ever persisted the body
// is the status-only "no data" report and the dashboard renders its empty
// state from it.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.analyzer.LatestInsights())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	rows, err := s.store.History(limit)
	if err != nil {
		s.log.Error("cycle history", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	if rows == nil {
		rows = []snapshot.CycleRow{}
	}
	s.writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	res := s.analyzer.AnalyzeLogs(r.Context())
	body := map[string]any{
		"status":   res.Status,
		"commands": res.Commands,
	}
	if res.Detail != "" {
		body["detail"] = res.Detail
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}
