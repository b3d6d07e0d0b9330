// Package event defines recognition events and the emitter that hands them
// to the store.
package event

import (
	"context"
	"time"
)

// Event is a single recognized (gesture, expression) observation. ID is
// empty until the store persists the event; an event that was never stored
// keeps an empty ID.
type Event struct {
	ID         string    `json:"id"`
	Gesture    string    `json:"gesture"`
	Expression string    `json:"expression"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink receives emitted events for persistence. Put returns the stored
// representation with its assigned ID, or an error when the event could not
// be persisted. Put must respect the context deadline.
type Sink interface {
	Put(ctx context.Context, ev Event) (Event, error)
}
