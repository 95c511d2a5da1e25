// Package api serves read-side access to persisted insights and the state
// of the last batch run.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lilac-app/insightd/internal/pipeline"
	"github.com/lilac-app/insightd/internal/store"
)

// InsightLister reads persisted insights by tier.
type InsightLister interface {
	ListInsights(ctx context.Context, meta bool) ([]store.InsightRow, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	insights  InsightLister
	statePath string
}

func NewServer(port int, insights InsightLister, statePath string) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		insights:  insights,
		statePath: statePath,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/insights", s.listInsights)
	router.Get("/api/v1/runs/last", s.lastRun)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type insightResponse struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Tagline            string `json:"tagline"`
	Insight            string `json:"insight"`
	Context            string `json:"context"`
	SupportingEvidence string `json:"supporting_evidence"`
	Metainsight        int    `json:"metainsight"`
	CreatedAt          string `json:"created_at"`
}

// listInsights returns one tier at a time. The meta query parameter selects
// the tier; it defaults to day-level insights.
func (s *Server) listInsights(w http.ResponseWriter, r *http.Request) {
	meta := false
	switch r.URL.Query().Get("meta") {
	case "", "0":
	case "1":
		meta = true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "meta must be 0 or 1"})
		return
	}

	rows, err := s.insights.ListInsights(r.Context(), meta)
	if err != nil {
		slog.Error("list insights failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list insights"})
		return
	}

	out := make([]insightResponse, 0, len(rows))
	for _, row := range rows {
		metaInt := 0
		if row.Meta {
			metaInt = 1
		}
		out = append(out, insightResponse{
			ID:                 row.ID.String(),
			Title:              row.Title,
			Tagline:            row.Tagline,
			Insight:            row.Description,
			Context:            row.Context,
			SupportingEvidence: row.SupportingEvidence,
			Metainsight:        metaInt,
			CreatedAt:          row.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": out})
}

// lastRun reports the persisted state of the most recent batch run.
func (s *Server) lastRun(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.statePath); os.IsNotExist(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run recorded"})
		return
	}

	state, err := pipeline.LoadState(s.statePath)
	if err != nil {
		slog.Error("load run state failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load run state"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
