package detector

import "gocv.io/x/gocv"

// Detection holds all landmarks found in a single video frame.
type Detection struct {
	Hands []HandLandmarks `json:"hands"`
	Faces []FaceLandmarks `json:"faces"`
}

// Hand returns the primary detected hand, or nil if no hand is present.
func (d *Detection) Hand() *HandLandmarks {
	if d == nil || len(d.Hands) == 0 {
		return nil
	}
	return &d.Hands[0]
}

// Face returns the primary detected face, or nil if no face is present.
func (d *Detection) Face() *FaceLandmarks {
	if d == nil || len(d.Faces) == 0 {
		return nil
	}
	return &d.Faces[0]
}

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand and face
	// landmarks. Returns an empty Detection if nothing is found.
	Detect(frame *gocv.Mat) (*Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 1).
	MaxHands int

	// MaxFaces is the maximum number of faces to detect (default: 1).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MaxFaces:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
