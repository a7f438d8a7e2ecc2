package engine

import (
	"math"
	"sort"
)

// Segmentation constants. The prominence formula and its floor are what the
// shipped reference ranges were tuned against.
const (
	// RangeFraction scales the observed angle range into a prominence
	// threshold, so exercises with very different motion ranges need no
	// absolute tuning.
	RangeFraction = 0.15
	// MinProminence is the absolute floor for extremum prominence, in degrees.
	MinProminence = 5.0
)

// Segment is a half-open [Start, End) index range of an angle series
// believed to correspond to one repetition. A valley shared by two
// repetitions belongs to the following segment; the final segment extends
// one past the last boundary so the series tail is never dropped. Together
// the segments cover every retained sample exactly once.
type Segment struct {
	Start int
	End   int
}

// Len returns the number of samples covered by the segment.
func (s Segment) Len() int { return s.End - s.Start }

// SegmentReps splits a smoothed angle series into repetition-aligned
// segments. Valleys with sufficient prominence form the segment boundaries;
// when fewer than two usable valleys exist (a single repetition, or a short
// or noisy recording) the whole series is returned as one segment so that
// downstream extraction always has something to work with.
func SegmentReps(values []float64) []Segment {
	n := len(values)
	if n == 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	prominence := math.Max(MinProminence, RangeFraction*(hi-lo))
	separation := minSeparation(n)

	inverted := make([]float64, n)
	for i, v := range values {
		inverted[i] = -v
	}
	valleys := findPeaks(inverted, prominence, separation)

	if len(valleys) < 2 {
		return []Segment{{Start: 0, End: n}}
	}

	// Boundaries are the valleys plus the series edges. Edge segments that
	// are much shorter than the valley spacing are partial movements, not
	// repetitions, and are dropped.
	bounds := make([]int, 0, len(valleys)+2)
	if valleys[0] > 0 {
		bounds = append(bounds, 0)
	}
	bounds = append(bounds, valleys...)
	if valleys[len(valleys)-1] < n-1 {
		bounds = append(bounds, n-1)
	}

	minLen := separation / 2
	segments := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		seg := Segment{Start: bounds[i], End: bounds[i+1]}
		if i+2 == len(bounds) {
			seg.End = bounds[i+1] + 1 // include the final boundary sample
		}
		edge := i == 0 && valleys[0] > 0 || i+2 == len(bounds) && valleys[len(valleys)-1] < n-1
		if edge && seg.Len() < minLen {
			continue
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return []Segment{{Start: 0, End: n}}
	}
	return segments
}

// minSeparation returns the minimum sample distance enforced between
// detected extrema, matching the spacing used when the reference data was
// produced (roughly one second of video).
func minSeparation(n int) int {
	sep := n / 30
	if sep < 10 {
		sep = 10
	}
	return sep
}

// findPeaks returns the indices of local maxima whose prominence meets the
// threshold, at least separation samples apart. Prominence is measured as
// the height of the peak above the higher of the two minima reached before
// encountering a taller value on each side.
func findPeaks(values []float64, prominence float64, separation int) []int {
	n := len(values)
	var candidates []int

	for i := 1; i < n-1; i++ {
		if values[i] <= values[i-1] {
			continue
		}
		// Walk across any plateau.
		j := i
		for j+1 < n && values[j+1] == values[i] {
			j++
		}
		if j+1 < n && values[j+1] < values[i] {
			candidates = append(candidates, (i+j)/2)
		}
		i = j
	}

	var peaks []int
	for _, p := range candidates {
		if peakProminence(values, p) >= prominence {
			peaks = append(peaks, p)
		}
	}

	return enforceSeparation(values, peaks, separation)
}

func peakProminence(values []float64, p int) float64 {
	height := values[p]

	leftMin := height
	for i := p - 1; i >= 0 && values[i] <= height; i-- {
		leftMin = math.Min(leftMin, values[i])
	}

	rightMin := height
	for i := p + 1; i < len(values) && values[i] <= height; i++ {
		rightMin = math.Min(rightMin, values[i])
	}

	return height - math.Max(leftMin, rightMin)
}

// enforceSeparation greedily keeps the tallest peaks, suppressing any peak
// closer than separation to an already accepted one.
func enforceSeparation(values []float64, peaks []int, separation int) []int {
	if len(peaks) <= 1 {
		return peaks
	}

	order := make([]int, len(peaks))
	copy(order, peaks)
	sort.Slice(order, func(i, j int) bool {
		return values[order[i]] > values[order[j]]
	})

	var kept []int
	for _, p := range order {
		ok := true
		for _, k := range kept {
			if abs(p-k) < separation {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, p)
		}
	}

	sort.Ints(kept)
	return kept
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
