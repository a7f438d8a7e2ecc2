package engine

import (
	"errors"
	"testing"
)

func pushupTracker(t *testing.T) *Tracker {
	t.Helper()
	ex, ok := LookupExercise(ExercisePushup)
	if !ok {
		t.Fatal("push-up config missing")
	}
	tracker, err := NewTracker(ex, ExerciseRef{})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	return tracker
}

func TestTracker_TwoThresholdTrace(t *testing.T) {
	tracker := pushupTracker(t)

	// high=165, low=90: unknown->Up(0), Up->Down(1, +1 rep),
	// Down->Up(1), Up->Up(1).
	trace := []struct {
		angle     float64
		wantPhase string
		wantReps  int
		wantRep   bool
	}{
		{180, PhaseUp, 0, false},
		{85, PhaseDown, 1, true},
		{170, PhaseUp, 1, false},
		{180, PhaseUp, 1, false},
	}

	for i, step := range trace {
		status := tracker.Update(map[string]float64{JointElbow: step.angle})
		if status.Phase != step.wantPhase {
			t.Errorf("frame %d: phase = %s, want %s", i, status.Phase, step.wantPhase)
		}
		if status.Reps != step.wantReps {
			t.Errorf("frame %d: reps = %d, want %d", i, status.Reps, step.wantReps)
		}
		if status.RepCompleted != step.wantRep {
			t.Errorf("frame %d: rep completed = %v, want %v", i, status.RepCompleted, step.wantRep)
		}
	}
}

func TestTracker_NoDoubleCountOnOscillation(t *testing.T) {
	tracker := pushupTracker(t)

	// Arm, then oscillate around the low threshold without crossing high.
	for _, angle := range []float64{180, 85, 95, 85, 95, 85} {
		tracker.Update(map[string]float64{JointElbow: angle})
	}

	if tracker.Reps() != 1 {
		t.Errorf("reps = %d, want 1: oscillation around one threshold must not count", tracker.Reps())
	}
}

func TestTracker_RepeatedFrameIdempotent(t *testing.T) {
	tracker := pushupTracker(t)

	for _, angle := range []float64{180, 85, 170} {
		tracker.Update(map[string]float64{JointElbow: angle})
	}
	phase, reps := tracker.Phase(), tracker.Reps()

	for i := 0; i < 10; i++ {
		tracker.Update(map[string]float64{JointElbow: 170})
	}

	if tracker.Phase() != phase || tracker.Reps() != reps {
		t.Errorf("re-feeding the same frame changed state: phase %s reps %d, want %s %d",
			tracker.Phase(), tracker.Reps(), phase, reps)
	}
}

func TestTracker_HoldsOnMissingPrimary(t *testing.T) {
	tracker := pushupTracker(t)

	tracker.Update(map[string]float64{JointElbow: 180})
	tracker.Update(map[string]float64{JointElbow: 85})

	// Primary invalid this frame: nothing moves.
	status := tracker.Update(map[string]float64{JointBack: 178})
	if status.Phase != PhaseDown || status.Reps != 1 {
		t.Errorf("state changed on missing primary: phase %s reps %d", status.Phase, status.Reps)
	}
	if status.Transitioned || status.RepCompleted {
		t.Error("missing primary must not transition or count")
	}

	// An angle that would normally count must still count afterwards.
	status = tracker.Update(map[string]float64{JointElbow: 170})
	if status.Phase != PhaseUp || status.Reps != 1 {
		t.Errorf("recovery frame: phase %s reps %d, want Up 1", status.Phase, status.Reps)
	}
}

func TestTracker_Reset(t *testing.T) {
	tracker := pushupTracker(t)

	for _, angle := range []float64{180, 85, 170, 85} {
		tracker.Update(map[string]float64{JointElbow: angle})
	}
	if tracker.Reps() == 0 {
		t.Fatal("setup should have counted repetitions")
	}

	tracker.Reset()
	if tracker.Phase() != PhaseUnknown || tracker.Reps() != 0 {
		t.Errorf("after reset: phase %s reps %d, want unknown 0", tracker.Phase(), tracker.Reps())
	}
}

func TestTracker_CountEdgeEnterHigh(t *testing.T) {
	// A squat finishes when standing back up: the increment happens on the
	// rising edge, not the falling one.
	ex, _ := LookupExercise(ExerciseSquat)
	tracker, err := NewTracker(ex, DefaultRefSet()[ExerciseSquat])
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	angles := func(knee, hip float64) map[string]float64 {
		return map[string]float64{JointKnee: knee, JointHip: hip}
	}

	status := tracker.Update(angles(172, 175))
	if status.Phase != PhaseUp || status.Reps != 0 {
		t.Fatalf("standing: phase %s reps %d, want Up 0", status.Phase, status.Reps)
	}

	status = tracker.Update(angles(80, 160))
	if status.Phase != PhaseDown || status.Reps != 0 {
		t.Fatalf("bottom: phase %s reps %d, want Down 0", status.Phase, status.Reps)
	}

	status = tracker.Update(angles(172, 175))
	if status.Phase != PhaseUp || status.Reps != 1 {
		t.Fatalf("standing again: phase %s reps %d, want Up 1", status.Phase, status.Reps)
	}
	if !status.RepCompleted {
		t.Error("rising edge should complete the repetition")
	}
}

func TestTracker_PhaseMatchingPrefersPrevious(t *testing.T) {
	ex, _ := LookupExercise(ExerciseSquat)
	tracker, err := NewTracker(ex, DefaultRefSet()[ExerciseSquat])
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	// Hip 170 matches both Down (150-180) and Up (165-180); knee missing.
	// The first frame settles on some phase, later identical frames must
	// not flicker away from it... but a missing primary holds anyway, so
	// drive the tie through a mid-range knee.
	tracker.Update(map[string]float64{JointKnee: 172, JointHip: 175})
	if tracker.Phase() != PhaseUp {
		t.Fatalf("phase = %s, want Up", tracker.Phase())
	}

	// Knee 130 matches neither phase; hip 170 matches both. Scores tie, so
	// hysteresis keeps Up.
	for i := 0; i < 5; i++ {
		status := tracker.Update(map[string]float64{JointKnee: 130, JointHip: 170})
		if status.Phase != PhaseUp {
			t.Fatalf("frame %d: ambiguous angles flipped phase to %s", i, status.Phase)
		}
	}
}

func TestTracker_OutOfRangeJoints(t *testing.T) {
	ex, _ := LookupExercise(ExercisePlank)
	tracker, err := NewTracker(ex, DefaultRefSet()[ExercisePlank])
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	status := tracker.Update(map[string]float64{JointBack: 178, JointHip: 170})
	if !status.FormOK || len(status.OutOfRange) != 0 {
		t.Errorf("good plank flagged: formOK=%v out=%v", status.FormOK, status.OutOfRange)
	}

	status = tracker.Update(map[string]float64{JointBack: 140, JointHip: 170})
	if status.FormOK {
		t.Error("sagging back should fail form validation")
	}
	if len(status.OutOfRange) != 1 || status.OutOfRange[0] != JointBack {
		t.Errorf("out of range = %v, want [Back]", status.OutOfRange)
	}
}

func TestNewTracker_RejectsMalformedRange(t *testing.T) {
	ex, _ := LookupExercise(ExercisePushup)

	_, err := NewTracker(ex, ExerciseRef{
		Joints: map[string]Range{JointElbow: {Min: 120, Max: 40}},
	})
	if err == nil {
		t.Fatal("expected error for min > max")
	}
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("error = %v, want ErrInvalidRange", err)
	}
}

func TestNewTracker_DerivesThresholdsFromReference(t *testing.T) {
	ex, _ := LookupExercise(ExerciseBicepCurl)
	tracker, err := NewTracker(ex, ExerciseRef{
		Joints: map[string]Range{JointElbow: {Min: 20, Max: 175}},
	})
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	high, low := tracker.Thresholds()
	if high != 165 || low != 30 {
		t.Errorf("thresholds = %f/%f, want 165/30 (range narrowed by margin)", high, low)
	}
}
