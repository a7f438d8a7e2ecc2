package engine

import (
	"math"
	"testing"

	"github.com/adityapathak/posefit/internal/pose"
)

func TestAngle_RightAngle(t *testing.T) {
	a := pose.Point{X: 0, Y: 1}
	b := pose.Point{X: 0, Y: 0}
	c := pose.Point{X: 1, Y: 0}

	angle, ok := Angle(a, b, c)
	if !ok {
		t.Fatal("expected valid angle")
	}
	if math.Abs(angle-90) > 1e-9 {
		t.Errorf("angle = %f, want 90", angle)
	}
}

func TestAngle_Collinear(t *testing.T) {
	// Points on a straight line through the vertex read 180 degrees.
	a := pose.Point{X: -1, Y: 0}
	b := pose.Point{X: 0, Y: 0}
	c := pose.Point{X: 2, Y: 0}

	angle, ok := Angle(a, b, c)
	if !ok {
		t.Fatal("expected valid angle")
	}
	if math.Abs(angle-180) > 1e-9 {
		t.Errorf("angle = %f, want 180", angle)
	}

	// Same direction reads 0 degrees.
	angle, ok = Angle(c, b, pose.Point{X: 1, Y: 0})
	if !ok {
		t.Fatal("expected valid angle")
	}
	if math.Abs(angle) > 1e-9 {
		t.Errorf("angle = %f, want 0", angle)
	}
}

func TestAngle_Symmetry(t *testing.T) {
	points := []struct {
		a, b, c pose.Point
	}{
		{pose.Point{X: 1, Y: 2}, pose.Point{X: 3, Y: 1}, pose.Point{X: 0, Y: 5}},
		{pose.Point{X: 0.2, Y: 0.9, Z: 0.1}, pose.Point{X: 0.5, Y: 0.5}, pose.Point{X: 0.9, Y: 0.1, Z: -0.2}},
		{pose.Point{X: 100, Y: 50}, pose.Point{X: 120, Y: 80}, pose.Point{X: 90, Y: 130}},
	}

	for _, tt := range points {
		fwd, ok1 := Angle(tt.a, tt.b, tt.c)
		rev, ok2 := Angle(tt.c, tt.b, tt.a)
		if !ok1 || !ok2 {
			t.Fatalf("expected valid angles for %v", tt)
		}
		if math.Abs(fwd-rev) > 1e-9 {
			t.Errorf("angle(a,b,c) = %f, angle(c,b,a) = %f", fwd, rev)
		}
		if fwd < 0 || fwd > 180 {
			t.Errorf("angle %f outside [0, 180]", fwd)
		}
	}
}

func TestAngle_DegenerateGeometry(t *testing.T) {
	b := pose.Point{X: 1, Y: 1}
	c := pose.Point{X: 2, Y: 2}

	// A coincides with the vertex.
	angle, ok := Angle(b, b, c)
	if ok {
		t.Errorf("expected invalid angle for zero-length vector, got %f", angle)
	}
	if math.IsNaN(angle) {
		t.Error("degenerate geometry must not produce NaN")
	}

	// C coincides with the vertex.
	if _, ok := Angle(c, b, b); ok {
		t.Error("expected invalid angle when C equals the vertex")
	}
}

func TestJointAngle_FromLandmarks(t *testing.T) {
	lms := pose.SideViewLandmarks(120, 45)

	knee, ok := JointAngle(lms, JointKnee, 0.3)
	if !ok {
		t.Fatal("expected valid knee angle")
	}
	if math.Abs(knee-120) > 0.5 {
		t.Errorf("knee angle = %f, want 120", knee)
	}

	elbow, ok := JointAngle(lms, JointElbow, 0.3)
	if !ok {
		t.Fatal("expected valid elbow angle")
	}
	if math.Abs(elbow-45) > 0.5 {
		t.Errorf("elbow angle = %f, want 45", elbow)
	}

	// The synthetic torso is vertical, so hip and back read straight.
	hip, ok := JointAngle(lms, JointHip, 0.3)
	if !ok || math.Abs(hip-180) > 0.5 {
		t.Errorf("hip angle = %f ok=%v, want 180", hip, ok)
	}
}

func TestJointAngle_LowVisibility(t *testing.T) {
	lms := pose.WithVisibility(pose.SideViewLandmarks(120, 45), 0.1, pose.LeftKnee)

	if _, ok := JointAngle(lms, JointKnee, 0.3); ok {
		t.Error("expected invalid knee angle when the knee landmark is below the visibility threshold")
	}

	// Other joints are unaffected.
	if _, ok := JointAngle(lms, JointElbow, 0.3); !ok {
		t.Error("elbow angle should remain valid")
	}
}

func TestJointAngle_UnknownJoint(t *testing.T) {
	lms := pose.SideViewLandmarks(120, 45)
	if _, ok := JointAngle(lms, "Neck", 0.3); ok {
		t.Error("expected invalid result for unknown joint")
	}
}

func TestJointAngles_OmitsInvalid(t *testing.T) {
	lms := pose.WithVisibility(pose.SideViewLandmarks(150, 90), 0.1, pose.LeftElbow, pose.RightElbow)

	angles := JointAngles(lms, []string{JointKnee, JointElbow}, 0.3)
	if _, ok := angles[JointElbow]; ok {
		t.Error("invalid elbow must be omitted")
	}
	if _, ok := angles[JointKnee]; !ok {
		t.Error("knee should be present")
	}
}
