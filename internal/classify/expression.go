package classify

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
)

// Expression heuristic thresholds. A wide open mouth reads as happy; a
// moderately open mouth with narrowed eyes reads as angry; a closed mouth
// with lowered eyes reads as sad. Rules are checked most-specific-first
// (Angry > Sad > Happy > Neutral) so overlapping thresholds resolve to a
// single deterministic label.
const (
	happyMouthMin = 0.15
	angryMouthMin = 0.08
	angryEyeMax   = 0.25
	sadMouthMax   = 0.05
	sadEyeMax     = 0.20

	neutralConfidence = 0.90
)

// ExpressionRules classifies face landmark geometry into expression labels
// using fixed geometric heuristics. It carries no trained parameters.
type ExpressionRules struct{}

// NewExpressionRules creates the heuristic expression classifier.
func NewExpressionRules() *ExpressionRules {
	return &ExpressionRules{}
}

// Classify evaluates the mouth and eye metrics against the threshold rules.
// A frame without a face yields LabelUnknown with zero confidence and no
// error; a partial face mesh is a malformed input.
func (e *ExpressionRules) Classify(det *detector.Detection) (Result, error) {
	face := det.Face()
	if face == nil {
		return Result{Label: LabelUnknown, Confidence: 0}, nil
	}
	if !face.Valid() {
		return Result{}, fmt.Errorf("%w: face mesh has %d points, want %d",
			feature.ErrInvalidLandmarkCount, len(face.Points), detector.NumFaceLandmarks)
	}

	mouth := face.MouthRatio()
	eye := face.EyeOpenness()

	switch {
	case mouth > angryMouthMin && eye < angryEyeMax:
		return Result{Label: ExpressionAngry, Confidence: marginConfidence(mouth, angryMouthMin, true)}, nil
	case mouth < sadMouthMax && eye < sadEyeMax:
		return Result{Label: ExpressionSad, Confidence: marginConfidence(mouth, sadMouthMax, false)}, nil
	case mouth > happyMouthMin:
		return Result{Label: ExpressionHappy, Confidence: marginConfidence(mouth, happyMouthMin, true)}, nil
	default:
		return Result{Label: ExpressionNeutral, Confidence: neutralConfidence}, nil
	}
}

// marginConfidence converts how far the triggering metric sits past its
// threshold into a bounded confidence: 0.5 plus the relative margin, clamped
// to [0.55, 0.95].
func marginConfidence(value, threshold float64, above bool) float64 {
	var margin float64
	if above {
		margin = (value - threshold) / threshold
	} else {
		margin = (threshold - value) / threshold
	}

	c := 0.5 + margin
	if c < 0.55 {
		return 0.55
	}
	if c > 0.95 {
		return 0.95
	}
	return c
}
