package store

import "sync/atomic"

// ConnectionState is the backend reachability state.
type ConnectionState int32

const (
	// StateOffline means the persistence backend is unreachable; events are
	// not durably stored but the pipeline keeps running.
	StateOffline ConnectionState = iota
	// StateConnected means the persistence backend is reachable.
	StateConnected
)

// String returns the state name for logs and the health endpoint.
func (s ConnectionState) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "offline"
}

// ConnState tracks backend reachability as shared process-wide state. It is
// constructed once, injected into the store, and mutated only through the
// Mark transitions, which are atomic compare-and-set operations so concurrent
// store calls cannot race on the flag.
type ConnState struct {
	v atomic.Int32
}

// NewConnState creates a ConnState in the given initial state.
func NewConnState(initial ConnectionState) *ConnState {
	s := &ConnState{}
	s.v.Store(int32(initial))
	return s
}

// Current returns the current state.
func (s *ConnState) Current() ConnectionState {
	return ConnectionState(s.v.Load())
}

// MarkConnected transitions offline to connected. It reports whether the
// transition happened (false when already connected).
func (s *ConnState) MarkConnected() bool {
	return s.v.CompareAndSwap(int32(StateOffline), int32(StateConnected))
}

// MarkOffline transitions connected to offline. It reports whether the
// transition happened (false when already offline).
func (s *ConnState) MarkOffline() bool {
	return s.v.CompareAndSwap(int32(StateConnected), int32(StateOffline))
}
