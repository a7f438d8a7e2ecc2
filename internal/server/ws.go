package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adityapathak/posefit/internal/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only
	},
}

// LiveHandler broadcasts per-frame tracking results to WebSocket clients.
// The pipeline pushes results in; every connected dashboard receives them.
type LiveHandler struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

// NewLiveHandler creates a LiveHandler with no connected clients.
func NewLiveHandler() *LiveHandler {
	return &LiveHandler{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends one frame result to all connected clients. Broken
// connections are dropped; their read loops clean them up.
func (h *LiveHandler) Publish(result engine.FrameResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(struct {
		engine.FrameResult
		Timestamp int64 `json:"timestamp"`
	}{result, time.Now().UnixMilli()})
	if err != nil {
		return
	}

	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// Clients returns the number of connected WebSocket clients.
func (h *LiveHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
