// Package pose provides body pose detection interfaces and types for exercise tracking.
package pose

// Landmark names following the MediaPipe Pose convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          = "NOSE"
	LeftShoulder  = "LEFT_SHOULDER"
	RightShoulder = "RIGHT_SHOULDER"
	LeftElbow     = "LEFT_ELBOW"
	RightElbow    = "RIGHT_ELBOW"
	LeftWrist     = "LEFT_WRIST"
	RightWrist    = "RIGHT_WRIST"
	LeftHip       = "LEFT_HIP"
	RightHip      = "RIGHT_HIP"
	LeftKnee      = "LEFT_KNEE"
	RightKnee     = "RIGHT_KNEE"
	LeftAnkle     = "LEFT_ANKLE"
	RightAnkle    = "RIGHT_ANKLE"
	LeftHeel      = "LEFT_HEEL"
	RightHeel     = "RIGHT_HEEL"
	LeftFootIndex = "LEFT_FOOT_INDEX"
	RightFootIdx  = "RIGHT_FOOT_INDEX"
)

// Point represents a point in space with x, y, z coordinates.
// X and Y are in pixel coordinates, Z is the MediaPipe relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmark is a named body point with a per-point confidence score.
type Landmark struct {
	Point
	Visibility float64 `json:"visibility"`
}

// Landmarks maps MediaPipe landmark names to detected points for one frame.
type Landmarks map[string]Landmark

// Get returns the landmark with the given name, if present.
func (l Landmarks) Get(name string) (Landmark, bool) {
	lm, ok := l[name]
	return lm, ok
}

// Visible reports whether every named landmark is present with a
// visibility score of at least min.
func (l Landmarks) Visible(min float64, names ...string) bool {
	for _, name := range names {
		lm, ok := l[name]
		if !ok || lm.Visibility < min {
			return false
		}
	}
	return true
}
