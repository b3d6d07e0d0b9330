package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/recognize"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	// publishQueueSize bounds results waiting for broadcast. The frame loop
	// never waits on the network: when the queue is full, stale results are
	// dropped.
	publishQueueSize = 16
	// writeTimeout is the per-client write deadline. A client that misses it
	// is disconnected.
	writeTimeout = time.Second
)

// ResultsHandler broadcasts per-frame recognition results via WebSocket.
// The pipeline pushes results through Publish; a dedicated writer goroutine
// fans them out so a slow client never stalls recognition.
type ResultsHandler struct {
	logger  *zap.Logger
	queue   chan recognize.FrameResult
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewResultsHandler creates a ResultsHandler and starts its writer.
func NewResultsHandler(logger *zap.Logger) *ResultsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ResultsHandler{
		logger:  logger,
		queue:   make(chan recognize.FrameResult, publishQueueSize),
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
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

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish queues a frame result for broadcast. It never blocks: results are
// per-frame display state, so when the queue is full the oldest pending ones
// are simply superseded and the new result is dropped.
func (h *ResultsHandler) Publish(result recognize.FrameResult) {
	select {
	case h.queue <- result:
	default:
	}
}

// broadcast is the single writer: it drains the queue and fans each result
// out to the connected clients under a write deadline. A client that cannot
// keep up is closed; its read loop then removes it from the map.
func (h *ResultsHandler) broadcast() {
	for result := range h.queue {
		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.clients))
		for conn := range h.clients {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()

		if len(conns) == 0 {
			continue
		}

		msg, err := json.Marshal(map[string]any{
			"result":    result,
			"timestamp": time.Now().UnixMilli(),
		})
		if err != nil {
			continue
		}

		for _, conn := range conns {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Warn("dropping slow websocket client", zap.Error(err))
				conn.Close()
			}
		}
	}
}
