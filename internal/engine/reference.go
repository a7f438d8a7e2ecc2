package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned when a reference range is structurally
// malformed. Malformed ranges are rejected at load time rather than being
// allowed to silently mis-score live frames.
var ErrInvalidRange = errors.New("invalid reference range")

// Range is a calibrated [Min, Max] angle interval in degrees for one joint
// measurement, immutable once loaded.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate checks that the range is well formed: Min <= Max and both bounds
// within [0, 180].
func (r Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %.1f > max %.1f", ErrInvalidRange, r.Min, r.Max)
	}
	if r.Min < 0 || r.Max > 180 {
		return fmt.Errorf("%w: bounds [%.1f, %.1f] outside [0, 180]", ErrInvalidRange, r.Min, r.Max)
	}
	return nil
}

// UnmarshalJSON accepts both the native {"min": x, "max": y} object and the
// legacy two-element [lo, hi] array form. Array bounds are clamped to
// [0, 180]; legacy files extend some ranges to 185 for sensor slack, which
// the angle geometry here can never produce.
func (r *Range) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("%w: want [lo, hi], got %d values", ErrInvalidRange, len(pair))
		}
		r.Min = math.Max(0, pair[0])
		r.Max = math.Min(180, pair[1])
		return nil
	}

	type plain Range
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Range(p)
	return nil
}

// Contains reports whether the angle lies within the range, inclusive.
func (r Range) Contains(angle float64) bool {
	return angle >= r.Min && angle <= r.Max
}

// ExerciseRef holds the reference data for one exercise: whole-movement
// ranges per joint, and optionally per-phase ranges for phase-matched
// exercises.
type ExerciseRef struct {
	Joints map[string]Range            `json:"joints,omitempty"`
	Phases map[string]map[string]Range `json:"phases,omitempty"`
}

// UnmarshalJSON accepts the native {"joints": ..., "phases": ...} object
// and the legacy phase-keyed form, where each top-level key is a phase name
// mapping joints to [lo, hi] pairs:
//
//	{"Down": {"Knee": [70, 100]}, "Up": {"Knee": [160, 180]}}
func (e *ExerciseRef) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	_, hasJoints := probe["joints"]
	_, hasPhases := probe["phases"]
	if hasJoints || hasPhases || len(probe) == 0 {
		type plain ExerciseRef
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*e = ExerciseRef(p)
		return nil
	}

	phases := make(map[string]map[string]Range, len(probe))
	for phase, raw := range probe {
		var joints map[string]Range
		if err := json.Unmarshal(raw, &joints); err != nil {
			return fmt.Errorf("phase %s: %w", phase, err)
		}
		phases[phase] = joints
	}
	e.Joints = nil
	e.Phases = phases
	return nil
}

// Validate checks every range in the reference.
func (e ExerciseRef) Validate() error {
	for joint, r := range e.Joints {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("joint %s: %w", joint, err)
		}
	}
	for phase, joints := range e.Phases {
		for joint, r := range joints {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("phase %s joint %s: %w", phase, joint, err)
			}
		}
	}
	return nil
}

// RefSet maps exercise names to their reference data.
type RefSet map[string]ExerciseRef

// Validate checks every reference in the set, failing fast on the first
// malformed range.
func (s RefSet) Validate() error {
	for exercise, ref := range s {
		if err := ref.Validate(); err != nil {
			return fmt.Errorf("exercise %s: %w", exercise, err)
		}
	}
	return nil
}

// Merge overlays other onto the set. New entries overwrite same-keyed old
// entries at the joint and phase level; unrelated exercises, joints, and
// phases are left untouched.
func (s RefSet) Merge(other RefSet) {
	for exercise, incoming := range other {
		existing, ok := s[exercise]
		if !ok {
			existing = ExerciseRef{}
		}

		if len(incoming.Joints) > 0 {
			if existing.Joints == nil {
				existing.Joints = make(map[string]Range, len(incoming.Joints))
			}
			for joint, r := range incoming.Joints {
				existing.Joints[joint] = r
			}
		}

		if len(incoming.Phases) > 0 {
			if existing.Phases == nil {
				existing.Phases = make(map[string]map[string]Range, len(incoming.Phases))
			}
			for phase, joints := range incoming.Phases {
				target := existing.Phases[phase]
				if target == nil {
					target = make(map[string]Range, len(joints))
					existing.Phases[phase] = target
				}
				for joint, r := range joints {
					target[joint] = r
				}
			}
		}

		s[exercise] = existing
	}
}

// DefaultRefSet returns the built-in reference data used until a
// demonstration recording has been analyzed.
func DefaultRefSet() RefSet {
	return RefSet{
		ExerciseSquat: {
			Phases: map[string]map[string]Range{
				PhaseDown: {
					JointKnee: {Min: 70, Max: 100},
					JointHip:  {Min: 150, Max: 180},
				},
				PhaseUp: {
					JointKnee: {Min: 160, Max: 180},
					JointHip:  {Min: 165, Max: 180},
				},
			},
		},
		ExercisePushup: {
			Phases: map[string]map[string]Range{
				PhaseDown: {
					JointElbow:    {Min: 70, Max: 100},
					JointShoulder: {Min: 60, Max: 100},
				},
				PhaseUp: {
					JointElbow: {Min: 160, Max: 180},
				},
			},
		},
		ExercisePlank: {
			Phases: map[string]map[string]Range{
				PhaseHold: {
					JointBack: {Min: 170, Max: 180},
					JointHip:  {Min: 160, Max: 180},
				},
			},
		},
		ExerciseBicepCurl: {
			Joints: map[string]Range{
				JointElbow: {Min: 7.4, Max: 180},
			},
		},
	}
}
