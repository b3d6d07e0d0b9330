package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
)

// memBackend is an in-memory Backend for testing the resilient wrapper.
// Setting fail makes every operation return an error, simulating an
// unreachable database.
type memBackend struct {
	mu     sync.Mutex
	events []event.Event
	fail   bool
}

var errBackendDown = errors.New("connection refused")

func (m *memBackend) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errBackendDown
	}
	return nil
}

func (m *memBackend) Insert(ctx context.Context, ev event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errBackendDown
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memBackend) Find(ctx context.Context, q Query) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errBackendDown
	}

	var matched []event.Event
	for _, ev := range m.events {
		if q.Gesture != "" && ev.Gesture != q.Gesture {
			continue
		}
		matched = append(matched, ev)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if q.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Offset:]
	if q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *memBackend) FindByID(ctx context.Context, id string) (event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return event.Event{}, errBackendDown
	}
	for _, ev := range m.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return event.Event{}, ErrNotFound
}

func (m *memBackend) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, errBackendDown
	}
	n := int64(len(m.events))
	m.events = nil
	return n, nil
}

func (m *memBackend) Close(ctx context.Context) error { return nil }

func (m *memBackend) setFail(fail bool) {
	m.mu.Lock()
	m.fail = fail
	m.mu.Unlock()
}

func newTestStore(t *testing.T, backend Backend) *Resilient {
	t.Helper()
	return NewResilient(backend, NewConnState(StateOffline), 2*time.Second, nil)
}

func TestPutAssignsIDAndTimestamp(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	before := time.Now().UTC()
	stored, err := s.Put(ctx, event.Event{Gesture: "Hello", Expression: "Happy", Confidence: 0.92})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	after := time.Now().UTC()

	if stored.ID == "" {
		t.Error("stored event should have an id")
	}
	if stored.Timestamp.Before(before) || stored.Timestamp.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", stored.Timestamp, before, after)
	}
	if got := s.State().Current(); got != StateConnected {
		t.Errorf("state after successful Put = %v, want %v", got, StateConnected)
	}
}

func TestPutKeepsCallerTimestamp(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stored, err := s.Put(context.Background(), event.Event{Gesture: "Yes", Timestamp: ts})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !stored.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", stored.Timestamp, ts)
	}
}

func TestListNewestFirst(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, gesture := range []string{"Hello", "Yes", "Stop"} {
		_, err := s.Put(ctx, event.Event{
			Gesture:   gesture,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Put %q: %v", gesture, err)
		}
	}

	events, err := s.List(ctx, Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("List returned %d events, want 3", len(events))
	}

	want := []string{"Stop", "Yes", "Hello"}
	for i, w := range want {
		if events[i].Gesture != w {
			t.Errorf("events[%d].Gesture = %q, want %q", i, events[i].Gesture, w)
		}
	}
}

func TestListLimitAndOffset(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Put(ctx, event.Event{
			Gesture:   "Hello",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	events, err := s.List(ctx, Query{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List returned %d events, want 2", len(events))
	}

	// Limit above the cap is clamped rather than rejected.
	events, err = s.List(ctx, Query{Limit: 50000})
	if err != nil {
		t.Fatalf("List with oversized limit: %v", err)
	}
	if len(events) != 5 {
		t.Errorf("List returned %d events, want 5", len(events))
	}
}

func TestListFiltersByGesture(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	for _, gesture := range []string{"Hello", "Stop", "Hello"} {
		if _, err := s.Put(ctx, event.Event{Gesture: gesture}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	events, err := s.List(ctx, Query{Gesture: "Hello"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List returned %d events, want 2", len(events))
	}
	for _, ev := range events {
		if ev.Gesture != "Hello" {
			t.Errorf("filtered list contains gesture %q", ev.Gesture)
		}
	}
}

func TestGet(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	stored, err := s.Put(ctx, event.Event{Gesture: "Help", Expression: "Sad", Confidence: 0.7})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, stored.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Gesture != "Help" || got.Expression != "Sad" {
		t.Errorf("Get returned %+v, want gesture Help expression Sad", got)
	}

	_, err = s.Get(ctx, "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing id error = %v, want ErrNotFound", err)
	}
}

func TestBackendFailureDegradesToOffline(t *testing.T) {
	backend := &memBackend{fail: true}
	s := newTestStore(t, backend)
	ctx := context.Background()

	if got := s.State().Current(); got != StateOffline {
		t.Errorf("initial state with failing backend = %v, want %v", got, StateOffline)
	}

	_, err := s.Put(ctx, event.Event{Gesture: "Hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Put error = %v, want ErrUnavailable", err)
	}

	events, err := s.List(ctx, Query{})
	if err != nil {
		t.Errorf("List while offline returned error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("List while offline returned %d events, want 0", len(events))
	}

	count, err := s.Clear(ctx)
	if err != nil {
		t.Errorf("Clear while offline returned error: %v", err)
	}
	if count != 0 {
		t.Errorf("Clear while offline returned count %d, want 0", count)
	}
}

func TestStoreRecoversWhenBackendReturns(t *testing.T) {
	backend := &memBackend{fail: true}
	s := newTestStore(t, backend)
	ctx := context.Background()

	if _, err := s.Put(ctx, event.Event{Gesture: "Hello"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Put while down error = %v, want ErrUnavailable", err)
	}

	backend.setFail(false)

	stored, err := s.Put(ctx, event.Event{Gesture: "Hello"})
	if err != nil {
		t.Fatalf("Put after recovery: %v", err)
	}
	if stored.ID == "" {
		t.Error("recovered Put should assign an id")
	}
	if got := s.State().Current(); got != StateConnected {
		t.Errorf("state after recovery = %v, want %v", got, StateConnected)
	}
}

func TestClearCount(t *testing.T) {
	backend := &memBackend{}
	s := newTestStore(t, backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Put(ctx, event.Event{Gesture: "Yes"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	count, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if count != 3 {
		t.Errorf("Clear count = %d, want 3", count)
	}

	events, err := s.List(ctx, Query{})
	if err != nil {
		t.Fatalf("List after Clear: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("List after Clear returned %d events, want 0", len(events))
	}
}
