// Package server provides the HTTP surface for the Mudra recognition system.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/store"
)

const serviceName = "mudra"

// EventStore is the persistence surface the handlers run on. The resilient
// store satisfies it; tests substitute a fake.
type EventStore interface {
	Put(ctx context.Context, ev event.Event) (event.Event, error)
	List(ctx context.Context, q store.Query) ([]event.Event, error)
	Get(ctx context.Context, id string) (event.Event, error)
	Clear(ctx context.Context) (int64, error)
	State() *store.ConnState
}

// Capturer triggers immediate emission of the current recognition result.
type Capturer interface {
	Capture() (event.Event, bool)
}

// Config holds the server configuration. Coordinator may be nil when the
// server runs without a live pipeline (events API only).
type Config struct {
	Store       EventStore
	Capturer    Capturer
	LiveResults *ResultsHandler
}

// Server is the HTTP server for the Mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)

	if s.config.Store != nil {
		eventsHandler := NewEventsHandler(s.config.Store)
		s.mux.HandleFunc("/log_event", eventsHandler.handleLogEvent)
		s.mux.Handle("/events", eventsHandler)
		s.mux.Handle("/events/", eventsHandler)
	}

	if s.config.Capturer != nil {
		s.mux.HandleFunc("/capture", s.handleCapture)
	}

	if s.config.LiveResults != nil {
		s.mux.Handle("/ws/results", s.config.LiveResults)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.start).String(),
	}
	if s.config.Store != nil {
		response["store"] = s.config.Store.State().Current().String()
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCapture handles POST requests to /capture, emitting the current
// recognition result immediately.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ev, ok := s.config.Capturer.Capture()
	if !ok {
		writeError(w, http.StatusConflict, "No recognition result to capture")
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
