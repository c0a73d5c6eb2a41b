package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"liveclass-backend/internal/models"
	"liveclass-backend/internal/websocket"
)

// LiveHandler is the read-only REST view over the in-memory session
// state: what is live right now and who is in it. All mutation happens
// over the websocket.
type LiveHandler struct {
	hub *websocket.Hub
}

func NewLiveHandler(hub *websocket.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

func (h *LiveHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"classes": h.hub.ActiveClasses(),
	})
}

func (h *LiveHandler) GetClass(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if courseID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Course ID is required", r))
		return
	}

	snapshot, ok := h.hub.ClassSnapshot(courseID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No live session for this course", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"class": snapshot,
	})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
