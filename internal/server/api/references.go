// Package api provides the REST handlers for the posefit dashboard.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/adityapathak/posefit/internal/engine"
	"github.com/adityapathak/posefit/internal/store"
)

// ReferencesHandler handles HTTP requests for calibrated reference ranges.
type ReferencesHandler struct {
	store *store.Store
}

// NewReferencesHandler creates a new ReferencesHandler with the given store.
func NewReferencesHandler(s *store.Store) *ReferencesHandler {
	return &ReferencesHandler{store: s}
}

// ServeHTTP routes requests to the collection or per-exercise endpoints.
// Expected paths: /api/references or /api/references/{exercise}.
func (h *ReferencesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/references")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	exercise := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, exercise)
	case http.MethodPut:
		h.put(w, r, exercise)
	case http.MethodDelete:
		h.delete(w, r, exercise)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/references and returns every stored reference.
func (h *ReferencesHandler) list(w http.ResponseWriter, r *http.Request) {
	set, err := h.store.References().Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load references")
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// get handles GET /api/references/{exercise}.
func (h *ReferencesHandler) get(w http.ResponseWriter, r *http.Request, exercise string) {
	ref, err := h.store.References().Get(exercise)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No references for exercise")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load references")
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// put handles PUT /api/references/{exercise}, upserting the posted ranges.
func (h *ReferencesHandler) put(w http.ResponseWriter, r *http.Request, exercise string) {
	var ref engine.ExerciseRef
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(ref.Joints) == 0 && len(ref.Phases) == 0 {
		writeError(w, http.StatusBadRequest, "At least one range is required")
		return
	}

	if err := h.store.References().Save(exercise, ref); err != nil {
		if errors.Is(err, engine.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save references")
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// delete handles DELETE /api/references/{exercise}.
func (h *ReferencesHandler) delete(w http.ResponseWriter, r *http.Request, exercise string) {
	if err := h.store.References().Delete(exercise); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No references for exercise")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete references")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
