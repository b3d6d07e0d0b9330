package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// queueSize bounds the number of events waiting for persistence. The frame
// loop never blocks on a slow backend: when the queue is full, events are
// dropped with a warning.
const queueSize = 64

// Emitter packages accepted recognition results into timestamped events and
// queues them for persistence. A single worker goroutine writes queued events
// in emission order.
type Emitter struct {
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger

	queue chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewEmitter creates an Emitter and starts its persistence worker. The
// timeout bounds every individual store call.
func NewEmitter(sink Sink, timeout time.Duration, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Emitter{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan Event, queueSize),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

// Emit stamps the triple with the current UTC time and queues it for
// persistence. It never blocks: if the queue is full the event is dropped.
// The returned event is the ephemeral (not yet persisted) representation.
func (e *Emitter) Emit(gesture, expression string, confidence float64) Event {
	ev := Event{
		Gesture:    gesture,
		Expression: expression,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.logger.Warn("emit after close, dropping event",
			zap.String("gesture", gesture), zap.String("expression", expression))
		return ev
	}

	select {
	case e.queue <- ev:
	default:
		e.logger.Warn("persistence queue full, dropping event",
			zap.String("gesture", gesture), zap.String("expression", expression))
	}

	return ev
}

// Close stops accepting events and waits for the queue to drain.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	<-e.done
}

func (e *Emitter) run() {
	defer close(e.done)

	for ev := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		stored, err := e.sink.Put(ctx, ev)
		cancel()

		if err != nil {
			e.logger.Warn("event not persisted",
				zap.String("gesture", ev.Gesture),
				zap.String("expression", ev.Expression),
				zap.Error(err))
			continue
		}

		e.logger.Debug("event persisted",
			zap.String("id", stored.ID),
			zap.String("gesture", stored.Gesture),
			zap.String("expression", stored.Expression),
			zap.Float64("confidence", stored.Confidence))
	}
}
