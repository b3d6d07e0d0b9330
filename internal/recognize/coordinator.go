// Package recognize orchestrates per-frame classification and decides when a
// recognition result becomes an event.
package recognize

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
)

// EventEmitter receives accepted recognition triples.
type EventEmitter interface {
	Emit(gesture, expression string, confidence float64) event.Event
}

// FrameResult is the per-frame outcome exposed for display. Confidences are
// the latest frame's raw classifier values, independent of emission gating.
type FrameResult struct {
	Gesture    classify.Result `json:"gesture"`
	Expression classify.Result `json:"expression"`
	Phase      string          `json:"phase"`
	Emitted    bool            `json:"emitted"`
}

// Config holds coordinator tuning.
type Config struct {
	// MinConfidence gates emission: gesture results below it are treated
	// as no detection.
	MinConfidence float64
	// DebounceFrames is the consecutive-frame count required before a
	// label is considered stable.
	DebounceFrames int
}

// Coordinator runs the gesture and expression classifiers on every frame,
// applies debounce and confidence gating, and emits events for newly stable
// results. Classifier failures are isolated per frame: the caller gets an
// error for the frame and the coordinator's state is left untouched.
type Coordinator struct {
	gesture    classify.Classifier
	expression classify.Classifier
	emitter    EventEmitter
	config     Config
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	latest   FrameResult
	onResult func(FrameResult)
}

// New creates a Coordinator. Both classifiers must be non-nil.
func New(gesture, expression classify.Classifier, emitter EventEmitter, config Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DebounceFrames < 1 {
		config.DebounceFrames = 1
	}

	return &Coordinator{
		gesture:    gesture,
		expression: expression,
		emitter:    emitter,
		config:     config,
		logger:     logger,
	}
}

// OnResult registers a hook invoked with every processed frame's result.
// Used by the live display feed.
func (c *Coordinator) OnResult(fn func(FrameResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResult = fn
}

// ProcessFrame classifies one frame and advances the recognition state.
// A classifier failure returns an error without touching state; the next
// frame is processed independently.
func (c *Coordinator) ProcessFrame(det *detector.Detection) (FrameResult, error) {
	gres, err := c.gesture.Classify(det)
	if err != nil {
		return FrameResult{}, fmt.Errorf("gesture classification: %w", err)
	}

	eres, err := c.expression.Classify(det)
	if err != nil {
		return FrameResult{}, fmt.Errorf("expression classification: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	gated := gres.Label
	if gated == classify.LabelNone || gated == classify.LabelUnknown ||
		gres.Confidence < c.config.MinConfidence {
		gated = ""
	}

	next, emit := advance(c.state, gated, eres.Label, c.config.DebounceFrames)
	c.state = next

	result := FrameResult{
		Gesture:    gres,
		Expression: eres,
		Phase:      next.Phase.String(),
		Emitted:    emit,
	}
	c.latest = result

	if emit {
		ev := c.emitter.Emit(gres.Label, eres.Label, gres.Confidence)
		c.logger.Info("recognition event",
			zap.String("gesture", ev.Gesture),
			zap.String("expression", ev.Expression),
			zap.Float64("confidence", ev.Confidence))
	}

	if c.onResult != nil {
		c.onResult(result)
	}

	return result, nil
}

// Capture emits the latest result immediately, regardless of debounce state.
// This backs the user-triggered record action. It reports false when there is
// no usable result to capture.
func (c *Coordinator) Capture() (event.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := c.latest.Gesture
	if g.Label == "" || g.Label == classify.LabelNone || g.Label == classify.LabelUnknown {
		return event.Event{}, false
	}

	ev := c.emitter.Emit(g.Label, c.latest.Expression.Label, g.Confidence)
	c.state.EmittedGesture = ev.Gesture
	c.state.EmittedExpression = ev.Expression

	c.logger.Info("manual capture",
		zap.String("gesture", ev.Gesture),
		zap.String("expression", ev.Expression),
		zap.Float64("confidence", ev.Confidence))

	return ev, true
}

// Latest returns the most recent frame result for display.
func (c *Coordinator) Latest() FrameResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Phase returns the current detection phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}
