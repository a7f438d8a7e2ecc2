package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tracker is the live phase-detection and repetition-counting state machine
// for one exercise session. It consumes one smoothed angle set per frame and
// never transitions or counts on missing data. One instance per session;
// instances share nothing.
type Tracker struct {
	ex   Exercise
	refs ExerciseRef

	high float64
	low  float64

	phase          string // displayed phase
	counterPhase   string // armed state of the rep counter
	count          int
	lastTransition time.Time
}

// Status is the read-only result of one tracker update, exposed to the
// rendering layer.
type Status struct {
	Phase        string   `json:"phase"`
	Reps         int      `json:"reps"`
	Transitioned bool     `json:"transitioned"`
	RepCompleted bool     `json:"rep_completed"`
	FormOK       bool     `json:"form_ok"`
	OutOfRange   []string `json:"out_of_range,omitempty"`
	Message      string   `json:"message"`
}

// NewTracker creates a tracker for the exercise using the given reference
// data. Thresholds derive from the primary joint's extracted range, narrowed
// by the exercise's calibration margin, falling back to the configured
// defaults. Malformed reference ranges are rejected here rather than being
// allowed to mis-score live frames.
func NewTracker(ex Exercise, refs ExerciseRef) (*Tracker, error) {
	if err := refs.Validate(); err != nil {
		return nil, fmt.Errorf("references for %s: %w", ex.Name, err)
	}

	t := &Tracker{
		ex:           ex,
		refs:         refs,
		high:         ex.High,
		low:          ex.Low,
		phase:        PhaseUnknown,
		counterPhase: PhaseUnknown,
	}

	if r, ok := refs.Joints[ex.Primary]; ok {
		t.high = r.Max - ex.Margin
		t.low = r.Min + ex.Margin
	}

	return t, nil
}

// Phase returns the current phase label.
func (t *Tracker) Phase() string { return t.phase }

// Reps returns the completed repetition count.
func (t *Tracker) Reps() int { return t.count }

// LastTransition returns the time of the most recent phase change.
func (t *Tracker) LastTransition() time.Time { return t.lastTransition }

// Thresholds returns the effective high and low thresholds in degrees.
func (t *Tracker) Thresholds() (high, low float64) { return t.high, t.low }

// Reset returns the tracker to its initial state: unknown phase, zero reps.
func (t *Tracker) Reset() {
	t.phase = PhaseUnknown
	t.counterPhase = PhaseUnknown
	t.count = 0
	t.lastTransition = time.Time{}
}

// Update consumes the smoothed joint angles for one frame. Joints that could
// not be measured this frame must be absent from the map; when the primary
// joint is absent the tracker holds its previous phase and count unchanged.
func (t *Tracker) Update(angles map[string]float64) Status {
	primary, ok := angles[t.ex.Primary]
	if !ok {
		return Status{
			Phase:   t.phase,
			Reps:    t.count,
			Message: "Move fully visible: " + t.ex.Primary,
		}
	}

	var status Status
	switch t.ex.Mode {
	case ModePhase:
		status = t.updatePhase(primary, angles)
	case ModeHold:
		status = t.updateHold(angles)
	default:
		status = t.updateThreshold(primary, angles)
	}

	if status.Transitioned {
		t.lastTransition = time.Now()
	}
	return status
}

// updateThreshold advances the two-threshold counter: entering the high
// region arms the machine, and the configured counting edge increments the
// count exactly once per full cycle. Oscillation around a single threshold
// without crossing the opposite one never counts.
func (t *Tracker) updateThreshold(primary float64, angles map[string]float64) Status {
	transitioned, rep := t.step(primary)
	t.phase = t.counterPhase

	ok, out, msg := t.formCheck(t.refs.Joints, angles)
	return Status{
		Phase:        t.phase,
		Reps:         t.count,
		Transitioned: transitioned,
		RepCompleted: rep,
		FormOK:       ok,
		OutOfRange:   out,
		Message:      msg,
	}
}

// step applies one primary angle to the counter state machine and reports
// whether a phase boundary was crossed and whether a repetition completed.
func (t *Tracker) step(primary float64) (transitioned, rep bool) {
	switch {
	case primary > t.high:
		if t.counterPhase != t.ex.HighLabel {
			rep = t.ex.CountEdge == EdgeEnterHigh && t.counterPhase == t.ex.LowLabel
			t.counterPhase = t.ex.HighLabel
			transitioned = true
		}
	case primary < t.low:
		if t.counterPhase != t.ex.LowLabel {
			rep = t.ex.CountEdge == EdgeEnterLow && t.counterPhase == t.ex.HighLabel
			t.counterPhase = t.ex.LowLabel
			transitioned = true
		}
	}
	if rep {
		t.count++
	}
	return transitioned, rep
}

// updatePhase evaluates every candidate phase's ranges against the current
// angles and keeps the best match, preferring the previous phase on ties so
// the display does not flicker. Counting still follows the primary joint's
// threshold cycle.
func (t *Tracker) updatePhase(primary float64, angles map[string]float64) Status {
	_, rep := t.step(primary)

	phase, ranges := t.bestPhase(angles)
	transitioned := phase != t.phase
	t.phase = phase

	ok, out, msg := t.formCheck(ranges, angles)
	return Status{
		Phase:        t.phase,
		Reps:         t.count,
		Transitioned: transitioned,
		RepCompleted: rep,
		FormOK:       ok,
		OutOfRange:   out,
		Message:      msg,
	}
}

// updateHold validates a static position. Holds never count repetitions.
func (t *Tracker) updateHold(angles map[string]float64) Status {
	transitioned := t.phase != PhaseHold
	t.phase = PhaseHold

	ok, out, msg := t.formCheck(t.refs.Phases[PhaseHold], angles)
	return Status{
		Phase:        t.phase,
		Reps:         t.count,
		Transitioned: transitioned,
		FormOK:       ok,
		OutOfRange:   out,
		Message:      msg,
	}
}

// bestPhase returns the phase whose ranges contain the most observed angles.
func (t *Tracker) bestPhase(angles map[string]float64) (string, map[string]Range) {
	names := make([]string, 0, len(t.refs.Phases))
	for name := range t.refs.Phases {
		names = append(names, name)
	}
	sort.Strings(names)

	best := t.phase
	bestRanges := t.refs.Phases[t.phase]
	bestScore := -1

	for _, name := range names {
		ranges := t.refs.Phases[name]
		score := 0
		for joint, r := range ranges {
			if angle, ok := angles[joint]; ok && r.Contains(angle) {
				score++
			}
		}
		if score > bestScore || (score == bestScore && name == t.phase) {
			best = name
			bestRanges = ranges
			bestScore = score
		}
	}

	if bestRanges == nil && len(names) > 0 {
		best = names[0]
		bestRanges = t.refs.Phases[best]
	}
	return best, bestRanges
}

// formCheck scores the observed angles against the given ranges and builds
// the feedback message shown to the user.
func (t *Tracker) formCheck(ranges map[string]Range, angles map[string]float64) (bool, []string, string) {
	if len(ranges) == 0 {
		return true, nil, "Good form!"
	}

	var missing, off []string
	for _, joint := range t.ex.Joints {
		r, tracked := ranges[joint]
		if !tracked {
			continue
		}
		angle, ok := angles[joint]
		if !ok {
			missing = append(missing, joint)
			continue
		}
		if !r.Contains(angle) {
			off = append(off, joint)
		}
	}

	if len(missing) == 0 && len(off) == 0 {
		return true, nil, "Good form!"
	}
	if len(missing) > 0 {
		return false, off, "Move fully visible: " + strings.Join(missing, ", ")
	}

	parts := make([]string, len(off))
	for i, joint := range off {
		parts[i] = "Adjust " + joint
	}
	return false, off, strings.Join(parts, ", ")
}
