package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	detection *Detection
	err       error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{detection: &Detection{}}
}

// SetDetection sets the detection that will be returned by Detect.
func (m *MockDetector) SetDetection(d *Detection) {
	m.detection = d
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured detection or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Detection, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detection, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended
// upward, the canonical "Hello" pose.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.97,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.85, Z: 0.0}

	// Thumb splayed to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.44, Y: 0.80, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.40, Y: 0.74, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.37, Y: 0.69, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.35, Y: 0.64, Z: 0.0}

	// Four fingers extended upward (Y decreases going up)
	fingers := []struct {
		mcp, pip, dip, tip int
		x                  float64
	}{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.45},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.50},
		{RingMCP, RingPIP, RingDIP, RingTip, 0.55},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.60},
	}
	for _, f := range fingers {
		landmarks.Points[f.mcp] = Point3D{X: f.x, Y: 0.65, Z: 0.0}
		landmarks.Points[f.pip] = Point3D{X: f.x, Y: 0.55, Z: 0.0}
		landmarks.Points[f.dip] = Point3D{X: f.x, Y: 0.45, Z: 0.0}
		landmarks.Points[f.tip] = Point3D{X: f.x, Y: 0.35, Z: 0.0}
	}

	return landmarks
}

// FistLandmarks returns a preset HandLandmarks with all fingers curled into
// the palm, the canonical "Stop" pose.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.85, Z: 0.0}

	// Thumb wrapped across the front of the fingers
	landmarks.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.80, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.75, Z: -0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.46, Y: 0.71, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.70, Z: -0.04}

	// Fingers curled: tips folded back toward the palm
	fingers := []struct {
		mcp, pip, dip, tip int
		x                  float64
	}{
		{IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.46},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.50},
		{RingMCP, RingPIP, RingDIP, RingTip, 0.54},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.58},
	}
	for _, f := range fingers {
		landmarks.Points[f.mcp] = Point3D{X: f.x, Y: 0.68, Z: 0.0}
		landmarks.Points[f.pip] = Point3D{X: f.x, Y: 0.62, Z: -0.03}
		landmarks.Points[f.dip] = Point3D{X: f.x, Y: 0.66, Z: -0.05}
		landmarks.Points[f.tip] = Point3D{X: f.x, Y: 0.71, Z: -0.05}
	}

	return landmarks
}

// SyntheticFace builds a full face mesh whose MouthRatio and EyeOpenness
// metrics evaluate to exactly the given values. All other points sit at the
// mesh center.
func SyntheticFace(mouthRatio, eyeOpenness float64) FaceLandmarks {
	points := make([]Point3D, NumFaceLandmarks)
	for i := range points {
		points[i] = Point3D{X: 0.5, Y: 0.5, Z: 0.0}
	}

	const mouthWidth = 0.10
	mouthHeight := mouthRatio * (mouthWidth + 1e-5)

	points[MouthLeft] = Point3D{X: 0.45, Y: 0.62, Z: 0.0}
	points[MouthRight] = Point3D{X: 0.45 + mouthWidth, Y: 0.62, Z: 0.0}
	points[MouthTop] = Point3D{X: 0.50, Y: 0.60, Z: 0.0}
	points[MouthBottom] = Point3D{X: 0.50, Y: 0.60 + mouthHeight, Z: 0.0}

	points[LeftEyeLeft] = Point3D{X: 0.35, Y: 0.42, Z: 0.0}
	points[LeftEyeRight] = Point3D{X: 0.35 + eyeOpenness, Y: 0.42, Z: 0.0}
	points[RightEyeIn] = Point3D{X: 0.65, Y: 0.42, Z: 0.0}
	points[RightEyeOut] = Point3D{X: 0.65 - eyeOpenness, Y: 0.42, Z: 0.0}

	return FaceLandmarks{Points: points, Score: 0.96}
}

// NeutralFaceLandmarks returns a face mesh with relaxed metrics.
func NeutralFaceLandmarks() FaceLandmarks {
	return SyntheticFace(0.06, 0.30)
}

// HappyFaceLandmarks returns a face mesh with a wide open mouth.
func HappyFaceLandmarks() FaceLandmarks {
	return SyntheticFace(0.25, 0.30)
}

// AngryFaceLandmarks returns a face mesh with a tense mouth and narrowed eyes.
func AngryFaceLandmarks() FaceLandmarks {
	return SyntheticFace(0.12, 0.20)
}

// SadFaceLandmarks returns a face mesh with a closed mouth and lowered eyes.
func SadFaceLandmarks() FaceLandmarks {
	return SyntheticFace(0.03, 0.15)
}
