package classify

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func helloTemplate(tolerance float64) *Template {
	palm := detector.OpenPalmLandmarks()
	normalized := palm.Normalize()

	return &Template{
		ID:        "tpl-hello",
		Label:     GestureHello,
		Landmarks: normalized.Points[:],
		Tolerance: tolerance,
	}
}

func TestTemplateClassifier_Match(t *testing.T) {
	c := NewTemplateClassifier()
	c.AddTemplate(helloTemplate(0.5))

	hand := detector.OpenPalmLandmarks()
	det := &detector.Detection{Hands: []detector.HandLandmarks{hand}}

	result, err := c.Classify(det)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != GestureHello {
		t.Errorf("expected label %q, got %q", GestureHello, result.Label)
	}
	if result.Confidence < 0.9 {
		t.Errorf("expected high confidence for identical pose, got %f", result.Confidence)
	}
}

func TestTemplateClassifier_NoMatchIsUnknown(t *testing.T) {
	c := NewTemplateClassifier()
	c.AddTemplate(helloTemplate(0.1)) // strict tolerance

	fist := detector.FistLandmarks()
	det := &detector.Detection{Hands: []detector.HandLandmarks{fist}}

	result, err := c.Classify(det)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != LabelUnknown {
		t.Errorf("expected %q for out-of-tolerance pose, got %q", LabelUnknown, result.Label)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence %f outside [0,1]", result.Confidence)
	}
}

func TestTemplateClassifier_NoHand(t *testing.T) {
	c := NewTemplateClassifier()
	c.AddTemplate(helloTemplate(0.5))

	result, err := c.Classify(&detector.Detection{})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != LabelNone {
		t.Errorf("expected %q for empty frame, got %q", LabelNone, result.Label)
	}
}

func TestTemplateClassifier_Empty(t *testing.T) {
	c := NewTemplateClassifier()

	det := &detector.Detection{Hands: []detector.HandLandmarks{detector.OpenPalmLandmarks()}}
	result, err := c.Classify(det)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != LabelUnknown {
		t.Errorf("expected %q with no templates, got %q", LabelUnknown, result.Label)
	}
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence with no templates, got %f", result.Confidence)
	}
}

func TestTemplateClassifier_PicksNearestWithinTolerance(t *testing.T) {
	c := NewTemplateClassifier()

	// A generous far-away template and an exact one; the exact one must win.
	far := helloTemplate(20.0)
	far.ID = "tpl-far"
	far.Label = GestureNo
	for i := range far.Landmarks {
		far.Landmarks[i].X += 0.5
	}
	c.AddTemplate(far)
	c.AddTemplate(helloTemplate(0.5))

	det := &detector.Detection{Hands: []detector.HandLandmarks{detector.OpenPalmLandmarks()}}
	result, err := c.Classify(det)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != GestureHello {
		t.Errorf("expected nearest template label %q, got %q", GestureHello, result.Label)
	}
}
