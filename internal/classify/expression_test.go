package classify

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
)

func faceDetection(f detector.FaceLandmarks) *detector.Detection {
	return &detector.Detection{Faces: []detector.FaceLandmarks{f}}
}

func TestExpressionRules_Fixtures(t *testing.T) {
	rules := NewExpressionRules()

	cases := []struct {
		name string
		face detector.FaceLandmarks
		want string
	}{
		{"neutral", detector.NeutralFaceLandmarks(), ExpressionNeutral},
		{"happy", detector.HappyFaceLandmarks(), ExpressionHappy},
		{"angry", detector.AngryFaceLandmarks(), ExpressionAngry},
		{"sad", detector.SadFaceLandmarks(), ExpressionSad},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := rules.Classify(faceDetection(tc.face))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}

			if result.Label != tc.want {
				t.Errorf("expected label %q, got %q", tc.want, result.Label)
			}
			if result.Confidence <= 0 || result.Confidence > 1 {
				t.Errorf("confidence %f outside (0,1]", result.Confidence)
			}
		})
	}
}

func TestExpressionRules_AngryWinsOverHappy(t *testing.T) {
	rules := NewExpressionRules()

	// Geometry satisfying both the Angry rule (mouth > 0.08, eyes < 0.25)
	// and the Happy rule (mouth > 0.15) must resolve to Angry.
	face := detector.SyntheticFace(0.20, 0.20)

	result, err := rules.Classify(faceDetection(face))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != ExpressionAngry {
		t.Errorf("expected Angry to win the priority conflict, got %q", result.Label)
	}
}

func TestExpressionRules_NoFace(t *testing.T) {
	rules := NewExpressionRules()

	result, err := rules.Classify(&detector.Detection{})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if result.Label != LabelUnknown {
		t.Errorf("expected %q for empty frame, got %q", LabelUnknown, result.Label)
	}
	if result.Confidence != 0 {
		t.Errorf("expected zero confidence for empty frame, got %f", result.Confidence)
	}
}

func TestExpressionRules_PartialMesh(t *testing.T) {
	rules := NewExpressionRules()

	partial := detector.FaceLandmarks{Points: make([]detector.Point3D, 50)}

	_, err := rules.Classify(faceDetection(partial))
	if !errors.Is(err, feature.ErrInvalidLandmarkCount) {
		t.Errorf("expected ErrInvalidLandmarkCount, got %v", err)
	}
}

func TestExpressionRules_Determinism(t *testing.T) {
	rules := NewExpressionRules()
	det := faceDetection(detector.AngryFaceLandmarks())

	first, err := rules.Classify(det)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := rules.Classify(det)
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}
		if again != first {
			t.Fatalf("result changed between identical invocations: %+v vs %+v", first, again)
		}
	}
}

func TestMarginConfidence_Bounds(t *testing.T) {
	values := []struct {
		value, threshold float64
		above            bool
	}{
		{0.151, 0.15, true},  // barely past threshold
		{10.0, 0.15, true},   // far past threshold
		{0.049, 0.05, false}, // barely below
		{0.0, 0.05, false},   // far below
	}

	for _, v := range values {
		c := marginConfidence(v.value, v.threshold, v.above)
		if c < 0.55 || c > 0.95 {
			t.Errorf("marginConfidence(%f, %f, %v) = %f outside [0.55, 0.95]",
				v.value, v.threshold, v.above, c)
		}
	}
}
