package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// presenceBlurSize is the Gaussian blur kernel applied before frame
	// differencing, to keep sensor noise from registering as activity.
	presenceBlurSize = 21
	// presenceDiffThreshold is the per-pixel binary threshold on the
	// difference image.
	presenceDiffThreshold = 25

	// DefaultChangePercent is the fraction of pixels (in percent) that must
	// change between frames to count as someone moving in front of the
	// camera.
	DefaultChangePercent = 1.0
	// DefaultIdleAfter is how many consecutive still frames mark the scene
	// as idle.
	DefaultIdleAfter = 30
)

// PresenceDetector decides whether anyone is active in front of the camera
// by differencing consecutive frames. The pipeline uses it to drop the
// capture rate and skip pose detection while the room is still, and to ramp
// back up on the first movement.
type PresenceDetector struct {
	mu          sync.Mutex
	minChange   float64
	idleAfter   int
	stillStreak int
	prev        gocv.Mat
	primed      bool
}

// NewPresenceDetector creates a detector that reports activity when at least
// minChange percent of pixels differ between consecutive frames, and idle
// after idleAfter consecutive still frames. Non-positive arguments fall back
// to the defaults.
func NewPresenceDetector(minChange float64, idleAfter int) *PresenceDetector {
	if minChange <= 0 {
		minChange = DefaultChangePercent
	}
	if idleAfter <= 0 {
		idleAfter = DefaultIdleAfter
	}
	return &PresenceDetector{
		minChange: minChange,
		idleAfter: idleAfter,
		prev:      gocv.NewMat(),
	}
}

// Observe compares the frame with its predecessor and reports whether it
// shows activity, along with the percentage of changed pixels. The first
// frame primes the detector and never reports activity.
func (p *PresenceDetector) Observe(frame *gocv.Mat) (active bool, changePercent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred,
		image.Point{X: presenceBlurSize, Y: presenceBlurSize}, 0, 0, gocv.BorderDefault)

	if !p.primed {
		blurred.CopyTo(&p.prev)
		p.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, p.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, presenceDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	changePercent = float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&p.prev)

	active = changePercent > p.minChange
	if active {
		p.stillStreak = 0
	} else {
		p.stillStreak++
	}
	return active, changePercent
}

// Idle reports whether enough consecutive still frames have accumulated for
// the pipeline to throttle down.
func (p *PresenceDetector) Idle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stillStreak >= p.idleAfter
}

// Reset drops the baseline frame and the still-frame streak. The next
// Observe call primes the detector again.
func (p *PresenceDetector) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// Close releases the retained baseline frame.
func (p *PresenceDetector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *PresenceDetector) reset() {
	if !p.prev.Empty() {
		p.prev.Close()
		p.prev = gocv.NewMat()
	}
	p.primed = false
	p.stillStreak = 0
}
