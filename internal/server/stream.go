package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/adityapathak/posefit/internal/capture"
)

// StreamHandler serves MJPEG frames from the capture source.
type StreamHandler struct {
	source capture.Source
}

// NewStreamHandler creates a new StreamHandler with the given source.
func NewStreamHandler(source capture.Source) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.source.Read()
		if err != nil {
			// A playback source that runs out has nothing more to
			// stream; a live camera hiccup is worth retrying.
			if errors.Is(err, capture.ErrEndOfStream) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(66 * time.Millisecond) // ~15 FPS
	}
}
