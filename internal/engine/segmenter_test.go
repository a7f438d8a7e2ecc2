package engine

import (
	"testing"
)

// rampSeries linearly interpolates between the given (index, value)
// breakpoints, producing one sample per index up to the final breakpoint.
func rampSeries(breaks [][2]float64) []float64 {
	last := int(breaks[len(breaks)-1][0])
	values := make([]float64, last+1)
	seg := 0
	for i := 0; i <= last; i++ {
		for seg+1 < len(breaks)-1 && float64(i) >= breaks[seg+1][0] {
			seg++
		}
		x0, y0 := breaks[seg][0], breaks[seg][1]
		x1, y1 := breaks[seg+1][0], breaks[seg+1][1]
		t := (float64(i) - x0) / (x1 - x0)
		values[i] = y0 + t*(y1-y0)
	}
	return values
}

func TestSegmentReps_ThreeValleys(t *testing.T) {
	// Three prominent valleys at 30, 70, and 110 with a short tail: three
	// repetitions, the tail too short to be a fourth.
	values := rampSeries([][2]float64{
		{0, 170}, {30, 10}, {50, 170}, {70, 10}, {90, 170}, {110, 10}, {113, 55},
	})

	segments := SegmentReps(values)
	if len(segments) != 3 {
		t.Fatalf("got %d segments %v, want 3", len(segments), segments)
	}

	wantBounds := []Segment{{0, 30}, {30, 70}, {70, 110}}
	for i, seg := range segments {
		if seg != wantBounds[i] {
			t.Errorf("segment %d = %v, want %v", i, seg, wantBounds[i])
		}
	}

	// Time bounds strictly increasing and non-overlapping.
	for i := 1; i < len(segments); i++ {
		if segments[i].Start < segments[i-1].End {
			t.Errorf("segments %d and %d overlap", i-1, i)
		}
		if segments[i].Start <= segments[i-1].Start {
			t.Errorf("segment starts not strictly increasing")
		}
	}
}

func TestSegmentReps_BoundarySamplesCoveredOnce(t *testing.T) {
	values := rampSeries([][2]float64{
		{0, 170}, {30, 10}, {50, 170}, {70, 10}, {100, 170},
	})

	segments := SegmentReps(values)
	if len(segments) < 2 {
		t.Fatalf("got %d segments %v, want at least 2", len(segments), segments)
	}

	// Each shared valley opens the following segment, and the final
	// segment reaches one past the last sample, so concatenating the
	// half-open ranges covers the series with no gap or double count.
	covered := make([]int, len(values))
	for _, seg := range segments {
		for i := seg.Start; i < seg.End; i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		if c != 1 {
			t.Fatalf("sample %d covered %d times, want exactly once", i, c)
		}
	}
	if last := segments[len(segments)-1]; last.End != len(values) {
		t.Errorf("final segment ends at %d, want %d (tail sample included)", last.End, len(values))
	}
}

func TestSegmentReps_MonotonicFallsBack(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 10 + float64(i)*160/49
	}

	segments := SegmentReps(values)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != len(values) {
		t.Errorf("fallback segment = %v, want whole series", segments[0])
	}
}

func TestSegmentReps_SingleValleyFallsBack(t *testing.T) {
	// One repetition: down and back up. Fewer than two valleys means the
	// whole series is one segment.
	values := rampSeries([][2]float64{{0, 170}, {40, 20}, {80, 170}})

	segments := SegmentReps(values)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0] != (Segment{0, len(values)}) {
		t.Errorf("segment = %v, want whole series", segments[0])
	}
}

func TestSegmentReps_NoiseBelowProminenceIgnored(t *testing.T) {
	// A slow rise with small dips: range is 100 degrees, so the prominence
	// threshold is 15 and dips of a few degrees never become valleys.
	values := rampSeries([][2]float64{
		{0, 70}, {20, 74}, {25, 71}, {45, 80}, {50, 77}, {100, 170},
	})

	segments := SegmentReps(values)
	if len(segments) != 1 {
		t.Fatalf("noise dips produced %d segments, want 1", len(segments))
	}
}

func TestSegmentReps_Empty(t *testing.T) {
	if segments := SegmentReps(nil); segments != nil {
		t.Errorf("got %v for empty input, want nil", segments)
	}
}

func TestSegmentReps_CloseExtremaSuppressed(t *testing.T) {
	// Two deep valleys only four samples apart: the separation rule keeps
	// one of them, leaving fewer than two valleys and the whole-series
	// fallback.
	values := rampSeries([][2]float64{
		{0, 170}, {20, 10}, {22, 60}, {24, 12}, {44, 170},
	})

	segments := SegmentReps(values)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1 after suppression", len(segments))
	}
}
