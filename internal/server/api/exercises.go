package api

import (
	"encoding/json"
	"net/http"
)

// TrackerControl is the slice of the application the exercise endpoint
// needs: which exercises exist, which one is live, and switching between
// them.
type TrackerControl interface {
	Exercises() []string
	ActiveExercise() string
	SetExercise(name string) error
}

// ExercisesHandler handles listing exercises and switching the active one.
type ExercisesHandler struct {
	control TrackerControl
}

// NewExercisesHandler creates a new ExercisesHandler.
func NewExercisesHandler(control TrackerControl) *ExercisesHandler {
	return &ExercisesHandler{control: control}
}

type exercisesResponse struct {
	Exercises []string `json:"exercises"`
	Active    string   `json:"active"`
}

type selectExerciseRequest struct {
	Exercise string `json:"exercise"`
}

// ServeHTTP handles GET (list) and POST (switch) on /api/exercises.
func (h *ExercisesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, exercisesResponse{
			Exercises: h.control.Exercises(),
			Active:    h.control.ActiveExercise(),
		})
	case http.MethodPost:
		var req selectExerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Exercise == "" {
			writeError(w, http.StatusBadRequest, "Exercise is required")
			return
		}
		if err := h.control.SetExercise(req.Exercise); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, exercisesResponse{
			Exercises: h.control.Exercises(),
			Active:    h.control.ActiveExercise(),
		})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
