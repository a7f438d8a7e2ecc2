package pose

import (
	"math"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	landmarks Landmarks
	queue     []Landmarks
	err       error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetLandmarks sets the landmarks that will be returned by Detect.
func (m *MockDetector) SetLandmarks(lms Landmarks) {
	m.landmarks = lms
	m.queue = nil
}

// SetSequence queues a sequence of frames; each Detect call consumes one,
// and the last entry repeats once the queue is drained.
func (m *MockDetector) SetSequence(frames []Landmarks) {
	m.queue = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured landmarks or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Landmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		lms := m.queue[0]
		if len(m.queue) > 1 {
			m.queue = m.queue[1:]
		}
		return lms, nil
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SideViewLandmarks returns a synthetic left-side-on pose whose knee and
// elbow form the given angles in degrees. The torso is vertical, so the
// hip and back measurements read 180 degrees. All points have visibility 0.95.
func SideViewLandmarks(kneeDeg, elbowDeg float64) Landmarks {
	lms := Landmarks{}

	put := func(name string, x, y float64) {
		lms[name] = Landmark{Point: Point{X: x, Y: y}, Visibility: 0.95}
	}

	// Vertical torso: shoulder above hip above knee.
	put(Nose, 320, 60)
	put(LeftShoulder, 320, 120)
	put(LeftHip, 320, 240)
	put(LeftKnee, 320, 360)

	// Ankle rotated away from the thigh direction by the requested knee angle.
	// The thigh vector at the knee points straight up, so a knee angle of
	// 180 puts the ankle directly below the knee.
	kneeRad := kneeDeg * math.Pi / 180
	put(LeftAnkle, 320+120*math.Sin(kneeRad), 360-120*math.Cos(kneeRad))

	// Elbow below the shoulder, wrist rotated by the requested elbow angle.
	put(LeftElbow, 320, 190)
	elbowRad := elbowDeg * math.Pi / 180
	put(LeftWrist, 320+70*math.Sin(elbowRad), 190-70*math.Cos(elbowRad))

	put(LeftHeel, 320, 480)
	return lms
}

// WithVisibility returns a copy of lms with the named landmarks' visibility
// replaced by v. Useful for simulating low-confidence detections.
func WithVisibility(lms Landmarks, v float64, names ...string) Landmarks {
	out := make(Landmarks, len(lms))
	for name, lm := range lms {
		out[name] = lm
	}
	for _, name := range names {
		if lm, ok := out[name]; ok {
			lm.Visibility = v
			out[name] = lm
		}
	}
	return out
}
