package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"liveclass-backend/internal/models"
	"liveclass-backend/internal/websocket"
)

type nopDurable struct{}

func (nopDurable) RecordAttendance(ctx context.Context, courseID, userID, role string, joinedAt time.Time) error {
	return nil
}

func (nopDurable) MarkClassEnded(ctx context.Context, courseID string, endedAt time.Time) error {
	return nil
}

func (nopDurable) ArchiveChatMessage(ctx context.Context, courseID string, msg models.ChatMessage) error {
	return nil
}

func newLiveRouter() http.Handler {
	hub := websocket.NewHub(nopDurable{}, "test-secret")
	h := NewLiveHandler(hub)

	r := chi.NewRouter()
	r.Get("/api/v1/live/classes", h.ListClasses)
	r.Get("/api/v1/live/classes/{courseID}", h.GetClass)
	return r
}

func TestListClassesEmpty(t *testing.T) {
	router := newLiveRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/live/classes", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var body struct {
		Classes []models.ClassSummary `json:"classes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Classes == nil {
		t.Error("Expected classes to marshal as an empty array, got null")
	}
	if len(body.Classes) != 0 {
		t.Errorf("Expected no classes, got %d", len(body.Classes))
	}
}

func TestGetClassNotFound(t *testing.T) {
	router := newLiveRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/live/classes/CS101", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", body.Error.Code)
	}
	if body.Error.RequestID != "req-123" {
		t.Errorf("Expected request_id echoed back, got %q", body.Error.RequestID)
	}
}
