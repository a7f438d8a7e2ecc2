package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adityapathak/posefit/internal/store"
)

// SessionsHandler handles HTTP requests for workout session history.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a new SessionsHandler with the given store.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

// ServeHTTP routes requests to the collection or per-session endpoints.
// Expected paths: /api/sessions, /api/sessions/totals, /api/sessions/{id}.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	switch path {
	case "":
		h.list(w, r)
	case "totals":
		h.totals(w, r)
	default:
		h.get(w, r, path)
	}
}

type sessionResponse struct {
	ID          string  `json:"id"`
	Exercise    string  `json:"exercise"`
	Reps        int     `json:"reps"`
	HoldSeconds float64 `json:"hold_seconds,omitempty"`
	StartedAt   string  `json:"started_at"`
	EndedAt     string  `json:"ended_at"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

// toResponse converts a store.SessionRecord to a sessionResponse.
func toResponse(rec *store.SessionRecord) sessionResponse {
	return sessionResponse{
		ID:          rec.ID,
		Exercise:    rec.Exercise,
		Reps:        rec.Reps,
		HoldSeconds: rec.HoldSeconds,
		StartedAt:   rec.StartedAt.Format(time.RFC3339),
		EndedAt:     rec.EndedAt.Format(time.RFC3339),
	}
}

// list handles GET /api/sessions with an optional ?limit= parameter.
func (h *SessionsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	records, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(records)),
	}
	for _, rec := range records {
		response.Sessions = append(response.Sessions, toResponse(rec))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

// totals handles GET /api/sessions/totals, summing reps per exercise.
func (h *SessionsHandler) totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.store.Sessions().TotalsByExercise()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sum sessions")
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
