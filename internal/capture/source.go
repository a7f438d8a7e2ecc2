// Package capture reads video frames from webcams and recorded exercise
// videos using GoCV (OpenCV), and detects whether anyone is in front of the
// camera so the pipeline can throttle itself when the room is empty.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings. Live tracking does not need more than 15 frames
// per second; the pose detector is the bottleneck anyway.
const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrSourceClosed is returned when reading from a source that is not open.
var ErrSourceClosed = errors.New("capture source is not open")

// ErrEndOfStream is returned by file-backed sources when playback reaches
// the end of the recording.
var ErrEndOfStream = errors.New("end of video stream")

// Source is a sequence of video frames: a webcam for live tracking or a
// recorded video for reference extraction.
type Source interface {
	Open() error
	Close() error
	// Read returns the next frame. The caller owns the returned Mat and
	// must close it.
	Read() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Webcam captures live frames from a camera device.
type Webcam struct {
	deviceID int

	mu      sync.Mutex
	capture *gocv.VideoCapture
	open    bool
	fps     int
}

// NewWebcam creates a webcam source for the given device ID.
func NewWebcam(deviceID int) *Webcam {
	return &Webcam{
		deviceID: deviceID,
		fps:      DefaultFPS,
	}
}

// Open opens the camera device at 640x480. Opening an already-open webcam
// is a no-op.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(w.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(w.fps))

	w.capture = capture
	w.open = true
	return nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open || w.capture == nil {
		w.open = false
		return nil
	}

	err := w.capture.Close()
	w.capture = nil
	w.open = false
	return err
}

// Read captures one frame from the camera.
func (w *Webcam) Read() (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open || w.capture == nil {
		return nil, ErrSourceClosed
	}

	mat := gocv.NewMat()
	if ok := w.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}
	return &mat, nil
}

// SetFPS changes the capture rate. The pipeline drops to a low rate while
// nobody is in frame. Values <= 0 are ignored.
func (w *Webcam) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.fps = fps
	if w.capture != nil {
		w.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate.
func (w *Webcam) FPS() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fps
}

// IsOpen reports whether the camera device is open.
func (w *Webcam) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// VideoFile plays back a recorded exercise video, frame by frame. Used by
// the reference trainer to analyze demonstration recordings.
type VideoFile struct {
	path string

	mu      sync.Mutex
	capture *gocv.VideoCapture
	open    bool
}

// NewVideoFile creates a source that reads frames from the video at path.
func NewVideoFile(path string) *VideoFile {
	return &VideoFile{path: path}
}

// Open opens the video file for playback.
func (v *VideoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(v.path)
	if err != nil {
		return err
	}

	v.capture = capture
	v.open = true
	return nil
}

// Close releases the video file.
func (v *VideoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		v.open = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.open = false
	return err
}

// Read returns the next frame of the recording, or ErrEndOfStream once the
// recording is exhausted.
func (v *VideoFile) Read() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		return nil, ErrSourceClosed
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}
	return &mat, nil
}

// SetFPS is a no-op: recordings play back as fast as the consumer reads.
func (v *VideoFile) SetFPS(fps int) {}

// FPS returns the recording's native frame rate, or 0 when closed.
func (v *VideoFile) FPS() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.open || v.capture == nil {
		return 0
	}
	return int(v.capture.Get(gocv.VideoCaptureFPS))
}

// IsOpen reports whether the recording is open.
func (v *VideoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}
