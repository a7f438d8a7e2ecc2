package engine

// DefaultWindow is the moving-average window size. Reference ranges shipped
// with the exercise table were extracted with this window; changing it
// shifts the extracted min/max by the smoothing edge effect.
const DefaultWindow = 7

// Smoother maintains independent sliding windows of the most recent valid
// samples per signal key and reports their arithmetic mean. Invalid samples
// are simply never pushed; they neither enter nor reset a window.
type Smoother struct {
	window  int
	windows map[string][]float64
}

// NewSmoother creates a Smoother with the given window size.
// Sizes less than 1 fall back to DefaultWindow.
func NewSmoother(window int) *Smoother {
	if window < 1 {
		window = DefaultWindow
	}
	return &Smoother{
		window:  window,
		windows: make(map[string][]float64),
	}
}

// Push adds a valid sample for the given key and returns the mean of the
// window contents.
func (s *Smoother) Push(key string, value float64) float64 {
	w := s.windows[key]
	if len(w) >= s.window {
		copy(w, w[1:])
		w = w[:len(w)-1]
	}
	w = append(w, value)
	s.windows[key] = w
	return mean(w)
}

// Value returns the current mean for the given key. The second return value
// is false while no valid sample has been seen yet.
func (s *Smoother) Value(key string) (float64, bool) {
	w := s.windows[key]
	if len(w) == 0 {
		return 0, false
	}
	return mean(w), true
}

// Count returns the number of samples currently held for the given key.
func (s *Smoother) Count(key string) int {
	return len(s.windows[key])
}

// Reset discards all window contents for all keys.
func (s *Smoother) Reset() {
	s.windows = make(map[string][]float64)
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
