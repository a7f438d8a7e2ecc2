package engine

import "sort"

// Phase labels. PhaseUnknown is the initial state of every tracker; the
// remaining labels are exercise-specific.
const (
	PhaseUnknown = "unknown"
	PhaseUp      = "Up"
	PhaseDown    = "Down"
	PhaseHold    = "Hold"
)

// CounterMode selects the transition policy driving a tracker.
type CounterMode string

const (
	// ModeThreshold counts repetitions from two angle thresholds on the
	// primary joint.
	ModeThreshold CounterMode = "threshold"
	// ModePhase picks the best-matching phase from per-phase reference
	// ranges and counts cycles on the primary joint.
	ModePhase CounterMode = "phase"
	// ModeHold validates a static position and accumulates hold time
	// instead of counting.
	ModeHold CounterMode = "hold"
)

// CountEdge selects which threshold crossing completes a repetition. The
// direction deliberately differs between exercises (a squat finishes coming
// back up, a push-up is counted at the bottom) and must be preserved as
// configured rather than normalized.
type CountEdge string

const (
	// EdgeEnterLow increments when the primary angle drops below the low
	// threshold while the tracker is in the high phase.
	EdgeEnterLow CountEdge = "low"
	// EdgeEnterHigh increments when the primary angle rises above the high
	// threshold while the tracker is in the low phase.
	EdgeEnterHigh CountEdge = "high"
)

// Exercise names.
const (
	ExerciseSquat     = "Squat"
	ExercisePushup    = "Push-up"
	ExercisePlank     = "Plank"
	ExerciseBicepCurl = "Bicep Curl"
)

// Exercise is the static configuration record for one exercise: which joint
// measurements matter, which phase labels exist, and how repetitions are
// counted. Exercises are data values dispatched by name, not types.
type Exercise struct {
	Name    string
	Joints  []string
	Primary string

	// HighLabel and LowLabel name the phases entered above the high and
	// below the low threshold respectively.
	HighLabel string
	LowLabel  string

	// High and Low are the default thresholds in degrees, used when no
	// extracted reference range is available for the primary joint.
	High float64
	Low  float64

	// Margin narrows thresholds derived from an extracted reference range:
	// high = max - Margin, low = min + Margin.
	Margin float64

	Mode      CounterMode
	CountEdge CountEdge
}

// exercises is the dispatch table of supported exercises.
var exercises = map[string]Exercise{
	ExerciseSquat: {
		Name:      ExerciseSquat,
		Joints:    []string{JointKnee, JointHip, JointBack},
		Primary:   JointKnee,
		HighLabel: PhaseUp,
		LowLabel:  PhaseDown,
		High:      165,
		Low:       90,
		Margin:    10,
		Mode:      ModePhase,
		CountEdge: EdgeEnterHigh,
	},
	ExercisePushup: {
		Name:      ExercisePushup,
		Joints:    []string{JointElbow, JointShoulder, JointBack},
		Primary:   JointElbow,
		HighLabel: PhaseUp,
		LowLabel:  PhaseDown,
		High:      165,
		Low:       90,
		Margin:    10,
		Mode:      ModeThreshold,
		CountEdge: EdgeEnterLow,
	},
	ExercisePlank: {
		Name:    ExercisePlank,
		Joints:  []string{JointBack, JointHip},
		Primary: JointBack,
		Mode:    ModeHold,
	},
	ExerciseBicepCurl: {
		Name:      ExerciseBicepCurl,
		Joints:    []string{JointElbow, JointShoulder},
		Primary:   JointElbow,
		HighLabel: PhaseDown, // arm extended hangs down
		LowLabel:  PhaseUp,   // arm flexed curls up
		High:      160,
		Low:       30,
		Margin:    10,
		Mode:      ModeThreshold,
		CountEdge: EdgeEnterLow,
	},
}

// LookupExercise returns the configuration for the named exercise.
func LookupExercise(name string) (Exercise, bool) {
	ex, ok := exercises[name]
	return ex, ok
}

// ExerciseNames returns the names of all supported exercises.
func ExerciseNames() []string {
	names := make([]string, 0, len(exercises))
	for name := range exercises {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
