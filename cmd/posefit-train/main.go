// Command posefit-train extracts calibrated reference ranges from a recorded
// demonstration video. The ranges can be written to the posefit database, to
// a JSON file consumable by the tracking config, or both, with an optional
// angle-series plot for eyeballing the segmentation.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/adityapathak/posefit/internal/capture"
	"github.com/adityapathak/posefit/internal/engine"
	"github.com/adityapathak/posefit/internal/pose"
	"github.com/adityapathak/posefit/internal/report"
	"github.com/adityapathak/posefit/internal/store"
)

func main() {
	var (
		videoPath    = flag.String("video", "", "demonstration video to analyze (required)")
		exerciseName = flag.String("exercise", engine.ExerciseSquat, "exercise performed in the video")
		dbPath       = flag.String("db", "", "save ranges into this posefit database")
		outPath      = flag.String("out", "", "write ranges to this JSON file")
		plotPath     = flag.String("plot", "", "write an angle-series plot to this PNG file")
		window       = flag.Int("window", engine.DefaultWindow, "smoothing window in frames")
		visibility   = flag.Float64("visibility", engine.DefaultVisibility, "minimum landmark confidence")
	)
	flag.Parse()

	if *videoPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	ex, ok := engine.LookupExercise(*exerciseName)
	if !ok {
		log.Fatalf("Unknown exercise %q; supported: %v", *exerciseName, engine.ExerciseNames())
	}

	detector, err := pose.NewMediaPipeDetector(pose.DefaultConfig())
	if err != nil {
		log.Fatalf("MediaPipe is required for training: %v", err)
	}
	defer detector.Close()

	frames, err := detectVideo(*videoPath, detector)
	if err != nil {
		log.Fatalf("Failed to analyze video: %v", err)
	}
	fmt.Printf("Analyzed %d frames from %s\n", len(frames), *videoPath)

	extractor := engine.NewExtractor()
	extractor.SetWindow(*window)
	extractor.SetVisibility(*visibility)

	ext, err := extractor.Extract(ex, frames)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	printRanges(ext)

	if *dbPath != "" {
		if err := saveToStore(*dbPath, ext); err != nil {
			log.Fatalf("Failed to save ranges to database: %v", err)
		}
		fmt.Printf("Ranges saved to %s\n", *dbPath)
	}
	if *outPath != "" {
		if err := writeJSON(*outPath, ext); err != nil {
			log.Fatalf("Failed to write %s: %v", *outPath, err)
		}
		fmt.Printf("Ranges written to %s\n", *outPath)
	}
	if *plotPath != "" {
		if err := report.SavePlot(ext, *plotPath); err != nil {
			log.Fatalf("Failed to write plot: %v", err)
		}
		fmt.Printf("Plot written to %s\n", *plotPath)
	}
}

// detectVideo runs pose detection over every frame of the video. Frames
// where no person is detected contribute nil landmarks, which the extractor
// skips.
func detectVideo(path string, detector pose.Detector) ([]pose.Landmarks, error) {
	src := capture.NewVideoFile(path)
	if err := src.Open(); err != nil {
		return nil, err
	}
	defer src.Close()

	var frames []pose.Landmarks
	for {
		frame, err := src.Read()
		if errors.Is(err, capture.ErrEndOfStream) {
			break
		}
		if err != nil {
			return nil, err
		}

		lms, err := detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("frame %d: detection error: %v", len(frames), err)
			lms = nil
		}
		frames = append(frames, lms)
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("video %s contains no frames", path)
	}
	return frames, nil
}

func printRanges(ext *engine.Extraction) {
	fmt.Printf("\n%s: %d repetitions detected\n", ext.Exercise, len(ext.Segments))

	joints := make([]string, 0, len(ext.Ref.Joints))
	for joint := range ext.Ref.Joints {
		joints = append(joints, joint)
	}
	sort.Strings(joints)
	for _, joint := range joints {
		r := ext.Ref.Joints[joint]
		fmt.Printf("  %-10s %6.1f - %6.1f\n", joint, r.Min, r.Max)
	}
}

func saveToStore(dbPath string, ext *engine.Extraction) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.References().Save(ext.Exercise, ext.Ref)
}

func writeJSON(path string, ext *engine.Extraction) error {
	set := engine.RefSet{ext.Exercise: ext.Ref}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
