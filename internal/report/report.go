// Package report renders analysis plots for extracted reference data: each
// joint's smoothed angle series over the recording, repetition boundaries,
// and the calibrated range of the primary joint.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/adityapathak/posefit/internal/engine"
)

// palette holds distinct line colors, one per joint.
var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
}

var boundaryColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
var rangeColor = color.RGBA{R: 180, G: 30, B: 30, A: 255}

// SavePlot renders the extraction to a PNG at path, creating parent
// directories as needed.
func SavePlot(ext *engine.Extraction, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Joint Angles", ext.Exercise)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Angle (deg)"
	p.Y.Min = 0
	p.Y.Max = 185

	// Sort joints for a stable legend.
	joints := make([]string, 0, len(ext.Series))
	for joint := range ext.Series {
		joints = append(joints, joint)
	}
	sort.Strings(joints)

	lastFrame := 0
	for i, joint := range joints {
		series := ext.Series[joint]
		if len(series.Frames) == 0 {
			continue
		}
		if f := series.Frames[len(series.Frames)-1]; f > lastFrame {
			lastFrame = f
		}

		pts := make(plotter.XYs, len(series.Frames))
		for j, frame := range series.Frames {
			pts[j] = plotter.XY{X: float64(frame), Y: series.Values[j]}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(joint, line)
	}

	if err := addSegmentBoundaries(p, ext); err != nil {
		return err
	}
	if err := addReferenceRange(p, ext, lastFrame); err != nil {
		return err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(12*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// addSegmentBoundaries draws a vertical marker at the start of each detected
// repetition.
func addSegmentBoundaries(p *plot.Plot, ext *engine.Extraction) error {
	primary, ok := ext.Series[primaryJoint(ext)]
	if !ok {
		return nil
	}

	for _, seg := range ext.Segments {
		if seg.Start >= len(primary.Frames) {
			continue
		}
		frame := float64(primary.Frames[seg.Start])

		marker, err := plotter.NewLine(plotter.XYs{
			{X: frame, Y: 0},
			{X: frame, Y: 185},
		})
		if err != nil {
			return err
		}
		marker.Color = boundaryColor
		marker.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(marker)
	}
	return nil
}

// addReferenceRange draws the extracted min and max of the primary joint as
// horizontal lines across the recording.
func addReferenceRange(p *plot.Plot, ext *engine.Extraction, lastFrame int) error {
	primary := primaryJoint(ext)
	rng, ok := ext.Ref.Joints[primary]
	if !ok || lastFrame == 0 {
		return nil
	}

	for _, y := range []float64{rng.Min, rng.Max} {
		line, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: y},
			{X: float64(lastFrame), Y: y},
		})
		if err != nil {
			return err
		}
		line.Color = rangeColor
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		line.Width = vg.Points(1)
		p.Add(line)
	}

	label := fmt.Sprintf("%s range [%.1f, %.1f]", primary, rng.Min, rng.Max)
	dummy, err := plotter.NewLine(plotter.XYs{{X: 0, Y: rng.Min}, {X: 0, Y: rng.Min}})
	if err != nil {
		return err
	}
	dummy.Color = rangeColor
	p.Legend.Add(label, dummy)
	return nil
}

// primaryJoint resolves the exercise's primary joint name, falling back to
// an empty string for unknown exercises.
func primaryJoint(ext *engine.Extraction) string {
	ex, ok := engine.LookupExercise(ext.Exercise)
	if !ok {
		return ""
	}
	return ex.Primary
}
