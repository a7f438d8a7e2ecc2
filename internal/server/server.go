// Package server provides the HTTP server for the posefit dashboard: REST
// endpoints for references and session history, an MJPEG camera preview, and
// a WebSocket feed of live tracking results.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adityapathak/posefit/internal/capture"
	"github.com/adityapathak/posefit/internal/server/api"
	"github.com/adityapathak/posefit/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Source    capture.Source
	Tracker   api.TrackerControl
}

// Server represents the HTTP server for the posefit application.
type Server struct {
	config Config
	mux    *http.ServeMux
	live   *LiveHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		live:   NewLiveHandler(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Live returns the WebSocket broadcaster the pipeline publishes frame
// results to.
func (s *Server) Live() *LiveHandler {
	return s.live
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		refHandler := api.NewReferencesHandler(s.config.Store)
		s.mux.Handle("/api/references", refHandler)
		s.mux.Handle("/api/references/", refHandler)

		sessionHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)
	}

	if s.config.Tracker != nil {
		s.mux.Handle("/api/exercises", api.NewExercisesHandler(s.config.Tracker))
	}

	if s.config.Source != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Source))
	}

	s.mux.Handle("/api/live", s.live)

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
