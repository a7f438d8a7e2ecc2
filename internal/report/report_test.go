package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adityapathak/posefit/internal/engine"
)

func testExtraction() *engine.Extraction {
	frames := make([]int, 60)
	knee := make([]float64, 60)
	hip := make([]float64, 60)
	for i := range frames {
		frames[i] = i
		knee[i] = 170 - float64(i%30)*3
		hip[i] = 175
	}

	return &engine.Extraction{
		Exercise: engine.ExerciseSquat,
		Ref: engine.ExerciseRef{
			Joints: map[string]engine.Range{
				engine.JointKnee: {Min: 80, Max: 170},
				engine.JointHip:  {Min: 170, Max: 180},
			},
		},
		Series: map[string]engine.Series{
			engine.JointKnee: {Frames: frames, Values: knee},
			engine.JointHip:  {Frames: frames, Values: hip},
		},
		Segments: []engine.Segment{{Start: 0, End: 30}, {Start: 30, End: 60}},
	}
}

func TestSavePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "squat.png")

	if err := SavePlot(testExtraction(), path); err != nil {
		t.Fatalf("SavePlot failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestSavePlot_EmptySeries(t *testing.T) {
	ext := &engine.Extraction{
		Exercise: engine.ExerciseSquat,
		Series:   map[string]engine.Series{},
	}
	path := filepath.Join(t.TempDir(), "empty.png")

	// No series still renders an (empty) chart rather than failing.
	if err := SavePlot(ext, path); err != nil {
		t.Fatalf("SavePlot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plot file missing: %v", err)
	}
}
