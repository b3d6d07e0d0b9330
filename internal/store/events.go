// Package store provides durable persistence of recognition events with
// graceful degradation, plus local storage of gesture templates.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/event"
)

// List parameter bounds, matching the documented HTTP defaults.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

var (
	// ErrUnavailable is returned when the persistence backend cannot be
	// reached. It is an expected, recoverable condition: callers log it and
	// keep going.
	ErrUnavailable = errors.New("event store unavailable")

	// ErrNotFound is returned when a requested event does not exist.
	ErrNotFound = errors.New("not found")
)

// Query selects events to list.
type Query struct {
	Limit   int
	Offset  int
	Gesture string // optional label filter
}

// Backend is the minimal persistence surface the resilient store runs on.
// Implementations must respect context deadlines.
type Backend interface {
	Ping(ctx context.Context) error
	Insert(ctx context.Context, ev event.Event) error
	Find(ctx context.Context, q Query) ([]event.Event, error)
	FindByID(ctx context.Context, id string) (event.Event, error)
	DeleteAll(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// Resilient persists recognition events when the backend is reachable and
// degrades to offline mode otherwise. Every call attempts the backend, so a
// recovered backend flips the state back to connected without a dedicated
// health-check loop. A backend outage never propagates as a crash: Put
// reports ErrUnavailable, List returns an empty sequence, Clear reports zero.
type Resilient struct {
	backend Backend
	state   *ConnState
	timeout time.Duration
	logger  *zap.Logger
}

// NewResilient wraps a backend with degradation handling. The initial
// connection state is set by probing the backend once.
func NewResilient(b Backend, state *ConnState, timeout time.Duration, logger *zap.Logger) *Resilient {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resilient{
		backend: b,
		state:   state,
		timeout: timeout,
		logger:  logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := b.Ping(ctx); err != nil {
		if state.MarkOffline() || state.Current() == StateOffline {
			logger.Warn("event store backend unreachable, starting in offline mode", zap.Error(err))
		}
	} else {
		state.MarkConnected()
		logger.Info("event store backend connected")
	}

	return r
}

// State returns the injected connection state.
func (r *Resilient) State() *ConnState {
	return r.state
}

// Put persists the event, assigning a unique id. The event's timestamp is
// kept if set and stamped with the current UTC time otherwise. On backend
// failure the store flips to offline and returns ErrUnavailable; the caller's
// event was not persisted but the caller is expected to continue.
func (r *Resilient) Put(ctx context.Context, ev event.Event) (event.Event, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	ev.ID = uuid.New().String()

	if err := r.backend.Insert(ctx, ev); err != nil {
		r.degrade("put", err)
		return event.Event{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	r.recover()
	return ev, nil
}

// List returns stored events ordered by timestamp descending. Limit is
// clamped to [1, 1000] with a default of 100; offset is clamped to >= 0.
// When the backend is unreachable an empty sequence is returned, never an
// error.
func (r *Resilient) List(ctx context.Context, q Query) ([]event.Event, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	} else if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	events, err := r.backend.Find(ctx, q)
	if err != nil {
		r.degrade("list", err)
		return []event.Event{}, nil
	}

	r.recover()
	if events == nil {
		events = []event.Event{}
	}
	return events, nil
}

// Get returns a single stored event by id. When the backend is unreachable
// it reports ErrUnavailable.
func (r *Resilient) Get(ctx context.Context, id string) (event.Event, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	ev, err := r.backend.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.recover()
			return event.Event{}, ErrNotFound
		}
		r.degrade("get", err)
		return event.Event{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	r.recover()
	return ev, nil
}

// Clear deletes all stored events and returns the removed count. When the
// backend is unreachable it is a no-op returning zero.
func (r *Resilient) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	count, err := r.backend.DeleteAll(ctx)
	if err != nil {
		r.degrade("clear", err)
		return 0, nil
	}

	r.recover()
	return count, nil
}

// Close releases the backend.
func (r *Resilient) Close(ctx context.Context) error {
	return r.backend.Close(ctx)
}

// bound applies the store timeout when the caller's context has no deadline.
func (r *Resilient) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Resilient) degrade(op string, err error) {
	if r.state.MarkOffline() {
		r.logger.Warn("event store degraded to offline mode",
			zap.String("op", op), zap.Error(err))
	}
}

func (r *Resilient) recover() {
	if r.state.MarkConnected() {
		r.logger.Info("event store reconnected")
	}
}
