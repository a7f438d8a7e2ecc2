// Package app wires the live tracking pipeline together: camera capture,
// presence gating, pose detection, the per-session engine, persistence, and
// the dashboard feed.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adityapathak/posefit/internal/capture"
	"github.com/adityapathak/posefit/internal/engine"
	"github.com/adityapathak/posefit/internal/pose"
	"github.com/adityapathak/posefit/internal/store"
)

// Pipeline timing defaults, used when the config leaves them zero.
const (
	DefaultIdleFPS   = 2
	DefaultActiveFPS = 15
	DefaultIdleAfter = 30
)

// Publisher receives every processed frame result. The dashboard's WebSocket
// broadcaster implements it.
type Publisher interface {
	Publish(result engine.FrameResult)
}

// Config holds configuration options for the application.
type Config struct {
	Store         *store.Store
	CameraID      int
	ActiveFPS     int
	IdleFPS       int
	IdleAfter     int
	Exercise      string
	Window        int
	MinVisibility float64
}

// App coordinates the tracking pipeline and owns the active session.
type App struct {
	config   Config
	source   capture.Source
	presence *capture.PresenceDetector
	detector pose.Detector

	mu        sync.RWMutex
	refs      engine.RefSet
	session   *engine.Session
	publisher Publisher
	enabled   bool
	stopCh    chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.IdleAfter <= 0 {
		config.IdleAfter = DefaultIdleAfter
	}
	if config.Exercise == "" {
		config.Exercise = engine.ExerciseSquat
	}

	a := &App{
		config:   config,
		source:   capture.NewWebcam(config.CameraID),
		presence: capture.NewPresenceDetector(capture.DefaultChangePercent, config.IdleAfter),
		refs:     engine.DefaultRefSet(),
	}

	// Prefer the real pose model, fall back to the mock so everything else
	// still runs on machines without the Python side installed.
	if mp, err := pose.NewMediaPipeDetector(pose.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = pose.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables tracking. Disabling finishes and persists
// the active session.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled && !enabled {
		a.finishSessionLocked()
	}
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d pose.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetSource replaces the capture source. Tests inject playback sources here.
func (a *App) SetSource(s capture.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = s
}

// SetPublisher sets the sink for per-frame results.
func (a *App) SetPublisher(p Publisher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publisher = p
}

// LoadReferences layers stored calibrated ranges over the built-in defaults.
func (a *App) LoadReferences() error {
	if a.config.Store == nil {
		return nil
	}

	stored, err := a.config.Store.References().Load()
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs.Merge(stored)
	log.Printf("Loaded references for %d exercises from database", len(stored))
	return nil
}

// MergeReferences overlays an additional reference set, e.g. one loaded
// from a JSON file.
func (a *App) MergeReferences(set engine.RefSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refs.Merge(set)
	return nil
}

// Exercises returns the names of all supported exercises.
func (a *App) Exercises() []string {
	return engine.ExerciseNames()
}

// ActiveExercise returns the name of the exercise being tracked.
func (a *App) ActiveExercise() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session != nil {
		return a.session.Exercise().Name
	}
	return a.config.Exercise
}

// SetExercise switches tracking to the named exercise. The current session
// is finished and persisted, and a fresh one starts from zero.
func (a *App) SetExercise(name string) error {
	ex, ok := engine.LookupExercise(name)
	if !ok {
		return fmt.Errorf("unknown exercise: %s", name)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.finishSessionLocked()
	a.config.Exercise = ex.Name

	session, err := a.newSessionLocked(ex)
	if err != nil {
		return err
	}
	a.session = session

	if a.config.Store != nil {
		if err := a.config.Store.Settings().Set(store.SettingActiveExercise, ex.Name); err != nil {
			log.Printf("Failed to persist active exercise: %v", err)
		}
	}
	return nil
}

// Session returns the active session, or nil when none has started.
func (a *App) Session() *engine.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Source returns the capture source.
func (a *App) Source() capture.Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.source
}

// Detector returns the pose detector.
func (a *App) Detector() pose.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Start opens the camera and begins the tracking pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	ex, ok := engine.LookupExercise(a.config.Exercise)
	if !ok {
		return fmt.Errorf("unknown exercise: %s", a.config.Exercise)
	}
	if a.session == nil {
		session, err := a.newSessionLocked(ex)
		if err != nil {
			return err
		}
		a.session = session
	}

	if err := a.source.Open(); err != nil {
		return err
	}
	a.source.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Tracking pipeline started")
	return nil
}

// Stop halts the pipeline, persists the active session, and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	a.finishSessionLocked()

	if err := a.source.Close(); err != nil {
		log.Printf("Error closing capture source: %v", err)
	}
	a.presence.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Tracking pipeline stopped")
}

// newSessionLocked builds a session for the exercise from the current
// reference set. Caller holds a.mu.
func (a *App) newSessionLocked(ex engine.Exercise) (*engine.Session, error) {
	opts := []engine.SessionOption{}
	if a.config.Window > 0 {
		opts = append(opts, engine.WithWindow(a.config.Window))
	}
	if a.config.MinVisibility > 0 {
		opts = append(opts, engine.WithVisibility(a.config.MinVisibility))
	}
	return engine.NewSession(ex, a.refs[ex.Name], opts...)
}

// finishSessionLocked persists the active session if it recorded anything
// and clears it. Caller holds a.mu.
func (a *App) finishSessionLocked() {
	sess := a.session
	a.session = nil
	if sess == nil {
		return
	}
	if sess.Reps() == 0 && sess.HoldDuration() == 0 {
		return
	}

	if a.config.Store == nil {
		return
	}
	rec := &store.SessionRecord{
		ID:          sess.ID(),
		Exercise:    sess.Exercise().Name,
		Reps:        sess.Reps(),
		HoldSeconds: sess.HoldDuration().Seconds(),
		StartedAt:   sess.Started(),
		EndedAt:     time.Now(),
	}
	if err := a.config.Store.Sessions().Create(rec); err != nil {
		log.Printf("Failed to persist session %s: %v", rec.ID, err)
		return
	}
	log.Printf("Session saved: %s, %d reps", rec.Exercise, rec.Reps)
}
