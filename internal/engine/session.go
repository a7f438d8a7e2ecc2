package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/adityapathak/posefit/internal/pose"
)

// Session owns the live per-frame state for one exercise bout: the
// smoothing windows and the tracker. Sessions are single-threaded and
// frame-driven; each concurrent bout needs its own instance.
type Session struct {
	id         string
	ex         Exercise
	smoother   *Smoother
	tracker    *Tracker
	visibility float64

	frame     int
	started   time.Time
	lastFrame time.Time
	holdTotal time.Duration
}

// FrameResult is the per-frame output exposed to the rendering layer:
// smoothed angles, phase state, and form feedback. Read-only query results,
// never inputs back into the core.
type FrameResult struct {
	Frame    int                `json:"frame"`
	Exercise string             `json:"exercise"`
	Angles   map[string]float64 `json:"angles"`
	Status
	// Updated is false when the primary joint was not measurable this
	// frame and the phase state was held unchanged.
	Updated bool `json:"updated"`
	// HoldSeconds accumulates time spent with valid form in hold-mode
	// exercises.
	HoldSeconds float64 `json:"hold_seconds,omitempty"`
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithWindow sets the smoothing window size.
func WithWindow(window int) SessionOption {
	return func(s *Session) { s.smoother = NewSmoother(window) }
}

// WithVisibility sets the minimum landmark confidence.
func WithVisibility(v float64) SessionOption {
	return func(s *Session) { s.visibility = v }
}

// NewSession creates a session for the exercise with the given reference
// data. Reference validation failures propagate; everything else about a
// session is recoverable per frame.
func NewSession(ex Exercise, refs ExerciseRef, opts ...SessionOption) (*Session, error) {
	tracker, err := NewTracker(ex, refs)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:         uuid.New().String(),
		ex:         ex,
		smoother:   NewSmoother(DefaultWindow),
		tracker:    tracker,
		visibility: DefaultVisibility,
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Exercise returns the session's exercise configuration.
func (s *Session) Exercise() Exercise { return s.ex }

// Started returns when the session began.
func (s *Session) Started() time.Time { return s.started }

// Reps returns the completed repetition count.
func (s *Session) Reps() int { return s.tracker.Reps() }

// Phase returns the current phase label.
func (s *Session) Phase() string { return s.tracker.Phase() }

// HoldDuration returns accumulated valid-form hold time for hold-mode
// exercises.
func (s *Session) HoldDuration() time.Duration { return s.holdTotal }

// ProcessFrame runs one live frame through the pipeline: joint angles,
// smoothing, and the tracker. Nil landmarks (no person detected) yield a
// held state with Updated false.
func (s *Session) ProcessFrame(lms pose.Landmarks) FrameResult {
	s.frame++
	now := time.Now()
	elapsed := time.Duration(0)
	if !s.lastFrame.IsZero() {
		elapsed = now.Sub(s.lastFrame)
	}
	s.lastFrame = now

	raw := JointAngles(lms, s.ex.Joints, s.visibility)

	// Only joints measurable this frame reach the tracker; it holds state
	// for anything missing.
	smoothed := make(map[string]float64, len(raw))
	for joint, angle := range raw {
		smoothed[joint] = s.smoother.Push(joint, angle)
	}

	status := s.tracker.Update(smoothed)

	_, primaryOK := smoothed[s.ex.Primary]
	if s.ex.Mode == ModeHold && primaryOK && status.FormOK {
		s.holdTotal += elapsed
	}

	return FrameResult{
		Frame:       s.frame,
		Exercise:    s.ex.Name,
		Angles:      smoothed,
		Status:      status,
		Updated:     primaryOK,
		HoldSeconds: s.holdTotal.Seconds(),
	}
}
