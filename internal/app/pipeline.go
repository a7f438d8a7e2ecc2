package app

import (
	"errors"
	"log"
	"time"

	"github.com/adityapathak/posefit/internal/capture"
	"github.com/adityapathak/posefit/internal/pose"
)

// runPipeline is the main tracking loop. It reads frames at a rate gated by
// presence detection, runs pose detection on active frames, feeds the
// session, and pushes every result to the publisher.
//
// Pipeline logic:
//  1. Start throttled (idle FPS); nobody is in frame yet.
//  2. On movement, switch to active FPS and start detecting poses.
//  3. Each detected pose runs through the session: smoothing, phase
//     tracking, rep counting, form feedback.
//  4. After enough still frames the scene is idle again: throttle down and
//     skip pose detection until the next movement.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	activeMode := false
	frameInterval := time.Second / time.Duration(a.config.IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Source().Read()
			if err != nil {
				if errors.Is(err, capture.ErrEndOfStream) {
					return
				}
				log.Printf("Error reading frame: %v", err)
				continue
			}

			moving, _ := a.presence.Observe(frame)

			if moving && !activeMode {
				activeMode = true
				a.Source().SetFPS(a.config.ActiveFPS)
				frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to active mode")
			} else if activeMode && a.presence.Idle() {
				activeMode = false
				a.Source().SetFPS(a.config.IdleFPS)
				frameInterval = time.Second / time.Duration(a.config.IdleFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to idle mode")
			}

			if !activeMode {
				frame.Close()
				continue
			}

			lms, err := a.Detector().Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting pose: %v", err)
				continue
			}

			a.processFrame(lms)
		}
	}
}

// processFrame runs one detected pose through the active session and
// publishes the result. The session is advanced under a.mu: SetExercise,
// SetEnabled, and Stop read and persist session counters holding the same
// lock, so a switch mid-frame can neither tear the count nor publish a
// frame against the wrong exercise. The pipeline is the only frame driver,
// so the lock is uncontended in practice.
func (a *App) processFrame(lms pose.Landmarks) {
	a.mu.Lock()
	if a.session == nil {
		a.mu.Unlock()
		return
	}
	result := a.session.ProcessFrame(lms)
	publisher := a.publisher
	a.mu.Unlock()

	if result.RepCompleted {
		log.Printf("%s rep %d", result.Exercise, result.Reps)
	}

	if publisher != nil {
		publisher.Publish(result)
	}
}
