package recognize

// Phase is the detection phase of the tracked subject.
type Phase int

const (
	// PhaseNoDetection means no usable hand is present.
	PhaseNoDetection Phase = iota
	// PhaseDetected means a hand is present but its label has not held long
	// enough to be trusted.
	PhaseDetected
	// PhaseStable means the label has held for the debounce window.
	PhaseStable
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseNoDetection:
		return "no_detection"
	case PhaseDetected:
		return "detected"
	case PhaseStable:
		return "stable"
	default:
		return "invalid"
	}
}

// State is the coordinator's debounce state as an explicit tagged value.
// Streak counts consecutive frames with the current gesture label. The
// Emitted pair remembers the last event so a re-stabilized identical pair
// does not fire again.
type State struct {
	Phase      Phase
	Gesture    string
	Expression string
	Streak     int

	EmittedGesture    string
	EmittedExpression string
}

// advance is the pure transition function of the recognition state machine.
// gesture is the gated gesture label ("" when the frame counts as no
// detection); expression is the latest expression label. It returns the next
// state and whether an event should be emitted this frame.
func advance(s State, gesture, expression string, debounce int) (State, bool) {
	if gesture == "" {
		s.Phase = PhaseNoDetection
		s.Gesture = ""
		s.Expression = ""
		s.Streak = 0
		return s, false
	}

	if gesture == s.Gesture && s.Phase != PhaseNoDetection {
		s.Streak++
	} else {
		s.Gesture = gesture
		s.Streak = 1
	}
	s.Expression = expression

	if s.Streak < debounce {
		s.Phase = PhaseDetected
		return s, false
	}

	entering := s.Phase != PhaseStable
	s.Phase = PhaseStable

	if !entering {
		return s, false
	}
	if gesture == s.EmittedGesture && expression == s.EmittedExpression {
		return s, false
	}

	s.EmittedGesture = gesture
	s.EmittedExpression = expression
	return s, true
}
