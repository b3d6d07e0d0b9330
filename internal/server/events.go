package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/store"
)

// EventsHandler handles HTTP requests for recognition event resources.
type EventsHandler struct {
	store EventStore
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s EventStore) *EventsHandler {
	return &EventsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods. Expected paths: /events or /events/{id}.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	h.get(w, r, path)
}

// Request and response types

type logEventRequest struct {
	Gesture    string   `json:"gesture"`
	Expression string   `json:"expression"`
	Confidence *float64 `json:"confidence"`
	Timestamp  string   `json:"timestamp"`
}

type logEventResponse struct {
	event.Event
	Persisted bool `json:"persisted"`
}

type listEventsResponse struct {
	Events []event.Event `json:"events"`
	Count  int           `json:"count"`
}

type clearEventsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// handleLogEvent handles POST /log_event and records an externally supplied
// recognition event. When the store is offline the request still succeeds:
// the response carries the event with persisted=false and no id.
func (h *EventsHandler) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req logEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Gesture == "" {
		writeError(w, http.StatusBadRequest, "Gesture is required")
		return
	}
	if req.Expression == "" {
		writeError(w, http.StatusBadRequest, "Expression is required")
		return
	}
	if req.Confidence == nil {
		writeError(w, http.StatusBadRequest, "Confidence is required")
		return
	}
	if *req.Confidence < 0 || *req.Confidence > 1 {
		writeError(w, http.StatusBadRequest, "Confidence must be between 0 and 1")
		return
	}

	ev := event.Event{
		Gesture:    req.Gesture,
		Expression: req.Expression,
		Confidence: *req.Confidence,
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Timestamp must be RFC 3339")
			return
		}
		ev.Timestamp = ts.UTC()
	}

	stored, err := h.store.Put(r.Context(), ev)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			if ev.Timestamp.IsZero() {
				ev.Timestamp = time.Now().UTC()
			}
			writeJSON(w, http.StatusOK, logEventResponse{Event: ev, Persisted: false})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to store event")
		return
	}

	writeJSON(w, http.StatusCreated, logEventResponse{Event: stored, Persisted: true})
}

// list handles GET /events and returns stored events, most recent first.
// Query parameters: limit (default 100), offset (default 0), gesture.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	q := store.Query{Gesture: r.URL.Query().Get("gesture")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Limit must be an integer")
			return
		}
		q.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Offset must be an integer")
			return
		}
		q.Offset = offset
	}

	events, err := h.store.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events, Count: len(events)})
}

// get handles GET /events/{id} and returns a single stored event.
func (h *EventsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	ev, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusServiceUnavailable, "Event store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, ev)
}

// clear handles DELETE /events and removes all stored events.
func (h *EventsHandler) clear(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear events")
		return
	}

	writeJSON(w, http.StatusOK, clearEventsResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Cleared %d events", count),
	})
}
