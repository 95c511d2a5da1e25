package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lilac-app/insightd/internal/store"
)

type fakeLister struct {
	rows map[bool][]store.InsightRow
	err  error
}

func (f *fakeLister) ListInsights(_ context.Context, meta bool) ([]store.InsightRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[meta], nil
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8810, &fakeLister{}, filepath.Join(t.TempDir(), "state.json"))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestListInsightsByTier(t *testing.T) {
	lister := &fakeLister{rows: map[bool][]store.InsightRow{
		false: {{
			ID:          uuid.New(),
			Title:       "Deep focus sessions",
			Description: "Long editor sessions carry the real work.",
			CreatedAt:   time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC),
		}},
		true: {{
			ID:          uuid.New(),
			Title:       "Protects focus time",
			Tagline:     "Guards the flow state",
			Description: "A recurring preference for uninterrupted work.",
			Meta:        true,
			CreatedAt:   time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC),
		}},
	}}
	srv := NewServer(8810, lister, filepath.Join(t.TempDir(), "state.json"))

	var body struct {
		Insights []insightResponse `json:"insights"`
	}

	req := httptest.NewRequest("GET", "/api/v1/insights", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Insights) != 1 || body.Insights[0].Metainsight != 0 {
		t.Errorf("default tier = %+v, want one day insight", body.Insights)
	}
	if body.Insights[0].Tagline != "" {
		t.Errorf("day insight tagline = %q, want empty", body.Insights[0].Tagline)
	}

	req = httptest.NewRequest("GET", "/api/v1/insights?meta=1", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Insights) != 1 || body.Insights[0].Metainsight != 1 {
		t.Errorf("meta tier = %+v, want one meta insight", body.Insights)
	}
	if body.Insights[0].Tagline == "" {
		t.Error("meta insight tagline empty")
	}
}

func TestListInsightsRejectsBadTier(t *testing.T) {
	srv := NewServer(8810, &fakeLister{}, filepath.Join(t.TempDir(), "state.json"))

	req := httptest.NewRequest("GET", "/api/v1/insights?meta=2", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestListInsightsStoreError(t *testing.T) {
	srv := NewServer(8810, &fakeLister{err: fmt.Errorf("connection refused")}, filepath.Join(t.TempDir(), "state.json"))

	req := httptest.NewRequest("GET", "/api/v1/insights", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestLastRunEndpoint(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	srv := NewServer(8810, &fakeLister{}, statePath)

	req := httptest.NewRequest("GET", "/api/v1/runs/last", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any run, got %d", w.Code)
	}

	state := `{"started_at":"2026-03-09T09:00:00Z","days_processed":["2026-03-09"],"day_insights":3}`
	if err := os.WriteFile(statePath, []byte(state), 0o644); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest("GET", "/api/v1/runs/last", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		DaysProcessed []string `json:"days_processed"`
		DayInsights   int      `json:"day_insights"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.DaysProcessed) != 1 || body.DaysProcessed[0] != "2026-03-09" {
		t.Errorf("days_processed = %v", body.DaysProcessed)
	}
	if body.DayInsights != 3 {
		t.Errorf("day_insights = %d, want 3", body.DayInsights)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := NewServer(8810, &fakeLister{}, filepath.Join(t.TempDir(), "state.json"))

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
