package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// SliceSource replays an in-memory sequence of frames. Tests use it in place
// of a real camera or video file.
type SliceSource struct {
	mu     sync.Mutex
	frames []*gocv.Mat
	index  int
	loop   bool
	open   bool
	fps    int
}

// NewSliceSource creates a source that plays the given frames once, or
// forever when loop is set.
func NewSliceSource(frames []*gocv.Mat, loop bool) *SliceSource {
	return &SliceSource{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

func (s *SliceSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.index = 0
	return nil
}

func (s *SliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

// Read returns a clone of the next frame, so callers may close it freely.
func (s *SliceSource) Read() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, ErrSourceClosed
	}
	if len(s.frames) == 0 {
		return nil, ErrEndOfStream
	}

	if s.index >= len(s.frames) {
		if !s.loop {
			return nil, ErrEndOfStream
		}
		s.index = 0
	}

	frame := s.frames[s.index].Clone()
	s.index++
	return &frame, nil
}

func (s *SliceSource) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fps = fps
}

func (s *SliceSource) FPS() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fps
}

func (s *SliceSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Rewind restarts playback from the first frame.
func (s *SliceSource) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = 0
}
