// Package feature converts raw landmark geometry into classifier input
// vectors.
package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// HandDims is the hand feature vector length: x,y per landmark.
const HandDims = 2 * detector.NumHandLandmarks

// ErrInvalidLandmarkCount is returned when the input does not carry the
// expected number of landmark points.
var ErrInvalidLandmarkCount = errors.New("invalid landmark count")

// Vector is a fixed-length feature vector derived from landmark geometry.
type Vector []float64

// HandVector flattens 21 hand landmarks into a 42-dimensional feature vector.
// Points are translated so the wrist sits at the origin and scaled by the
// wrist to middle finger MCP distance, making the vector invariant to hand
// position and size in frame.
func HandVector(points []detector.Point3D) (Vector, error) {
	if len(points) != detector.NumHandLandmarks {
		return nil, fmt.Errorf("%w: got %d points, want %d",
			ErrInvalidLandmarkCount, len(points), detector.NumHandLandmarks)
	}

	wrist := points[detector.Wrist]

	dx := points[detector.MiddleMCP].X - wrist.X
	dy := points[detector.MiddleMCP].Y - wrist.Y
	scale := math.Sqrt(dx*dx + dy*dy)
	if scale < 1e-10 {
		// Degenerate hand; keep translation invariance only.
		scale = 1.0
	}

	vec := make(Vector, 0, HandDims)
	for _, p := range points {
		vec = append(vec, (p.X-wrist.X)/scale, (p.Y-wrist.Y)/scale)
	}

	return vec, nil
}
