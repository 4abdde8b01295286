package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedwatch/internal/config"
	"feedwatch/internal/database"
	"feedwatch/internal/models"
)

func testHandler(t *testing.T) (*Handler, *database.Repository) {
	t.Helper()

	db, err := database.Connect("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Connect(file::memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	repo := database.NewRepository(db)
	return NewHandler(config.Default(), repo, nil), repo
}

func TestStatusFragmentEscapesError(t *testing.T) {
	h, _ := testHandler(t)

	view := &models.StatusView{
		GeneratedAt: time.Now(),
		Error:       `dial tcp: <script>alert(1)</script>`,
	}

	rec := httptest.NewRecorder()
	h.respondStatusHTML(rec, view)

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("error text rendered unescaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped error text missing: %s", body)
	}
}

func TestStatusFragmentNoViewYet(t *testing.T) {
	h, _ := testHandler(t)

	rec := httptest.NewRecorder()
	h.respondStatusHTML(rec, nil)

	if !strings.Contains(rec.Body.String(), "Waiting for first poll") {
		t.Errorf("nil view fragment = %q", rec.Body.String())
	}
}

func TestHandleErrors(t *testing.T) {
	h, repo := testHandler(t)

	now := time.Now()
	repo.CreateErrorLog(&models.ErrorLog{Timestamp: now.Add(-time.Hour), ErrorMsg: "recent failure"})
	repo.CreateErrorLog(&models.ErrorLog{Timestamp: now.AddDate(0, 0, -3), ErrorMsg: "old failure"})

	req := httptest.NewRequest(http.MethodGet, "/api/errors", nil)
	rec := httptest.NewRecorder()
	h.handleErrors(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var errs []models.ErrorLog
	if err := json.Unmarshal(rec.Body.Bytes(), &errs); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if len(errs) != 1 || errs[0].ErrorMsg != "recent failure" {
		t.Errorf("default window should cover 1 day only: %+v", errs)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/errors?days=7", nil)
	rec = httptest.NewRecorder()
	h.handleErrors(rec, req)

	if err := json.Unmarshal(rec.Body.Bytes(), &errs); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors over 7 days, want 2", len(errs))
	}
}

func TestHandleHealthReportsLastPoll(t *testing.T) {
	h, repo := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.handleHealth(rec, req)

	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v", health["status"])
	}
	if _, ok := health["last_poll"]; ok {
		t.Error("last_poll present with empty history")
	}

	polledAt := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	repo.CreateCycleLog(&models.CycleLog{PolledAt: polledAt, FeedingDayStart: polledAt, TotalWindows: 2})

	rec = httptest.NewRecorder()
	h.handleHealth(rec, req)

	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("response not valid JSON: %v", err)
	}
	if _, ok := health["last_poll"]; !ok {
		t.Error("last_poll missing after a recorded cycle")
	}
}
