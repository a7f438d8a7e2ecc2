package engine

import (
	"fmt"
	"log"
	"math"

	"github.com/adityapathak/posefit/internal/pose"
)

// DefaultVisibility is the minimum per-landmark confidence for a sample to
// count as valid.
const DefaultVisibility = 0.3

// Series is the smoothed, valid-only angle history of one joint across a
// recording. Frames holds the original frame index of each value, so series
// for different joints stay alignable even when their invalid samples
// differ.
type Series struct {
	Frames []int
	Values []float64
}

// Extraction is the result of analyzing one demonstration recording.
type Extraction struct {
	Exercise string
	Ref      ExerciseRef
	// Series holds the smoothed per-joint angle series the ranges were
	// derived from, keyed by joint name.
	Series map[string]Series
	// Segments are repetition bounds as indices into the primary joint's
	// series.
	Segments []Segment
}

// Extractor turns a recorded demonstration into per-joint reference ranges
// for one exercise. It is side-effect-free on its input and may be rerun
// from scratch at any time.
type Extractor struct {
	window     int
	visibility float64
}

// NewExtractor creates an extractor with the default smoothing window and
// visibility threshold.
func NewExtractor() *Extractor {
	return &Extractor{window: DefaultWindow, visibility: DefaultVisibility}
}

// SetWindow overrides the smoothing window size.
func (e *Extractor) SetWindow(window int) { e.window = window }

// SetVisibility overrides the minimum landmark confidence.
func (e *Extractor) SetVisibility(v float64) { e.visibility = v }

// Extract runs the full offline pipeline over the recorded frames: joint
// angles per frame, smoothing, per-joint series accumulation, repetition
// segmentation on the primary joint, and per-segment min/max aggregation.
// Joints with zero valid samples across the recording are omitted from the
// output with a warning; a recording with no usable primary samples is an
// error.
func (e *Extractor) Extract(ex Exercise, frames []pose.Landmarks) (*Extraction, error) {
	smoother := NewSmoother(e.window)
	series := make(map[string]*Series, len(ex.Joints))
	for _, joint := range ex.Joints {
		series[joint] = &Series{}
	}

	for i, lms := range frames {
		angles := JointAngles(lms, ex.Joints, e.visibility)
		for joint, angle := range angles {
			smoothed := smoother.Push(joint, angle)
			s := series[joint]
			s.Frames = append(s.Frames, i)
			s.Values = append(s.Values, smoothed)
		}
	}

	primary := series[ex.Primary]
	if len(primary.Values) == 0 {
		return nil, fmt.Errorf("no valid samples for primary joint %s", ex.Primary)
	}

	segments := SegmentReps(primary.Values)

	ref := ExerciseRef{Joints: make(map[string]Range, len(ex.Joints))}
	for _, joint := range ex.Joints {
		s := series[joint]
		if len(s.Values) == 0 {
			log.Printf("warning: no valid samples for %s %s, omitting from references", ex.Name, joint)
			continue
		}

		r, ok := aggregateRange(s, primary, segments)
		if !ok {
			log.Printf("warning: no segment samples for %s %s, omitting from references", ex.Name, joint)
			continue
		}
		ref.Joints[joint] = r
	}

	// Hold exercises are form-checked against their hold-phase ranges, so
	// the extracted envelope must land there as well or live tracking
	// would never see the calibration.
	if ex.Mode == ModeHold && len(ref.Joints) > 0 {
		hold := make(map[string]Range, len(ref.Joints))
		for joint, r := range ref.Joints {
			hold[joint] = r
		}
		ref.Phases = map[string]map[string]Range{PhaseHold: hold}
	}

	result := &Extraction{
		Exercise: ex.Name,
		Ref:      ref,
		Series:   make(map[string]Series, len(series)),
		Segments: segments,
	}
	for joint, s := range series {
		result.Series[joint] = *s
	}
	return result, nil
}

// aggregateRange computes the segment-local min and max of s for every
// repetition segment, then takes the overall min of mins and max of maxes,
// clamped to [0, 180]. Segment bounds index the primary series; they are
// mapped to frame numbers so that series with differing invalid frames
// still line up.
func aggregateRange(s, primary *Series, segments []Segment) (Range, bool) {
	overallMin := math.Inf(1)
	overallMax := math.Inf(-1)
	found := false

	for _, seg := range segments {
		frameLo := primary.Frames[seg.Start]
		frameHi := primary.Frames[seg.End-1]

		segMin := math.Inf(1)
		segMax := math.Inf(-1)
		segFound := false
		for i, frame := range s.Frames {
			if frame < frameLo || frame > frameHi {
				continue
			}
			segMin = math.Min(segMin, s.Values[i])
			segMax = math.Max(segMax, s.Values[i])
			segFound = true
		}
		if !segFound {
			continue
		}

		overallMin = math.Min(overallMin, segMin)
		overallMax = math.Max(overallMax, segMax)
		found = true
	}

	if !found {
		return Range{}, false
	}
	return Range{
		Min: math.Max(0, overallMin),
		Max: math.Min(180, overallMax),
	}, true
}
