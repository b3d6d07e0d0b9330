// Package classify maps landmark geometry to discrete communicative labels.
//
// All classifiers implement the same Classifier interface so the recognition
// coordinator stays agnostic to how a label was produced: the gesture forest
// wraps a pre-trained tree ensemble, the expression rules are deterministic
// geometric heuristics, and the template classifier matches against recorded
// hand poses.
package classify

import (
	"errors"

	"github.com/ayusman/mudra/internal/detector"
)

// Gesture labels emitted by the gesture classifiers.
const (
	GestureHello = "Hello"
	GestureHelp  = "Help"
	GestureYes   = "Yes"
	GestureNo    = "No"
	GestureStop  = "Stop"
)

// Expression labels emitted by the expression classifier.
const (
	ExpressionNeutral = "Neutral"
	ExpressionHappy   = "Happy"
	ExpressionSad     = "Sad"
	ExpressionAngry   = "Angry"
)

// Out-of-set labels.
const (
	// LabelNone means the relevant subject (hand or face) was not detected.
	LabelNone = "None"
	// LabelUnknown means a subject was detected but matched nothing.
	LabelUnknown = "Unknown"
)

// GestureLabels is the closed gesture label set, in model class order.
var GestureLabels = []string{GestureHello, GestureHelp, GestureYes, GestureNo, GestureStop}

var (
	// ErrModelNotLoaded is returned when inference is attempted before a
	// model artifact has been loaded.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrDimensionMismatch is returned when an input vector's length does
	// not match the model's expected input size.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
)

// Result is a single classification outcome.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // probability-like score in [0,1]
}

// Classifier turns a frame's landmarks into a labeled result. Implementations
// must be deterministic: identical input and identical loaded parameters
// produce an identical Result. Implementations are safe for concurrent use
// after construction since loaded parameters are read-only.
type Classifier interface {
	Classify(det *detector.Detection) (Result, error)
}
