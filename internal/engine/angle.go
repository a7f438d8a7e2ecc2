// Package engine implements the signal-processing and repetition-tracking
// core: joint-angle geometry, smoothing, repetition segmentation, reference
// extraction, and the live phase/rep state machine.
package engine

import (
	"math"

	"github.com/adityapathak/posefit/internal/pose"
)

// zeroVectorEpsilon guards against degenerate joint geometry where two of
// the three points coincide.
const zeroVectorEpsilon = 1e-9

// Angle computes the angle at vertex b formed by the segments b->a and b->c,
// in degrees within [0, 180]. The second return value is false when either
// segment has near-zero length; callers must treat such samples as invalid
// rather than as zero degrees.
func Angle(a, b, c pose.Point) (float64, bool) {
	bax, bay, baz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	bcx, bcy, bcz := c.X-b.X, c.Y-b.Y, c.Z-b.Z

	normBA := math.Sqrt(bax*bax + bay*bay + baz*baz)
	normBC := math.Sqrt(bcx*bcx + bcy*bcy + bcz*bcz)
	if normBA < zeroVectorEpsilon || normBC < zeroVectorEpsilon {
		return 0, false
	}

	cosine := (bax*bcx + bay*bcy + baz*bcz) / (normBA * normBC)

	// Floating error can push the cosine slightly outside [-1, 1].
	if cosine > 1 {
		cosine = 1
	} else if cosine < -1 {
		cosine = -1
	}

	return math.Acos(cosine) * 180 / math.Pi, true
}

// JointTriplet names the A-B-C landmarks whose vertex angle defines one
// joint measurement. Names are suffix-free; the side prefix is applied
// when resolving against detected landmarks.
type JointTriplet struct {
	A, B, C string
}

// Joint measurement names used across exercise configurations.
const (
	JointKnee     = "Knee"
	JointHip      = "Hip"
	JointElbow    = "Elbow"
	JointShoulder = "Shoulder"
	JointBack     = "Back"
)

// jointTriplets maps joint measurement names to their landmark triplets,
// with the vertex in the middle.
var jointTriplets = map[string]JointTriplet{
	JointKnee:     {"HIP", "KNEE", "ANKLE"},
	JointHip:      {"SHOULDER", "HIP", "KNEE"},
	JointElbow:    {"SHOULDER", "ELBOW", "WRIST"},
	JointShoulder: {"ELBOW", "SHOULDER", "HIP"},
	JointBack:     {"SHOULDER", "HIP", "KNEE"},
}

// sidePriority controls which body side is tried first when resolving a
// joint triplet against detected landmarks.
var sidePriority = []string{"LEFT_", "RIGHT_"}

// JointAngle resolves the named joint against the landmarks, trying the left
// side first and falling back to the right, and returns its vertex angle in
// degrees. The second return value is false when the joint is unknown, any
// contributing landmark is missing or below minVisibility, or the geometry
// is degenerate.
func JointAngle(lms pose.Landmarks, joint string, minVisibility float64) (float64, bool) {
	triplet, ok := jointTriplets[joint]
	if !ok {
		return 0, false
	}

	for _, prefix := range sidePriority {
		a, aok := lms.Get(prefix + triplet.A)
		b, bok := lms.Get(prefix + triplet.B)
		c, cok := lms.Get(prefix + triplet.C)
		if !aok || !bok || !cok {
			continue
		}
		if a.Visibility < minVisibility || b.Visibility < minVisibility || c.Visibility < minVisibility {
			continue
		}
		if angle, valid := Angle(a.Point, b.Point, c.Point); valid {
			return angle, true
		}
	}

	return 0, false
}

// JointAngles computes all requested joint angles for one frame. Joints that
// cannot be measured this frame are omitted from the result.
func JointAngles(lms pose.Landmarks, joints []string, minVisibility float64) map[string]float64 {
	angles := make(map[string]float64, len(joints))
	for _, joint := range joints {
		if angle, ok := JointAngle(lms, joint, minVisibility); ok {
			angles[joint] = angle
		}
	}
	return angles
}
