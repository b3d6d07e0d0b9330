package detector

// Face mesh landmark indices following MediaPipe FaceMesh convention.
// Only the points consumed by the expression heuristics are named.
const (
	MouthLeft    = 61
	MouthRight   = 291
	MouthTop     = 13
	MouthBottom  = 14
	LeftEyeLeft  = 33
	LeftEyeRight = 133
	RightEyeIn   = 263
	RightEyeOut  = 362

	// NumFaceLandmarks is the full MediaPipe face mesh point count.
	NumFaceLandmarks = 468
)

// FaceLandmarks represents the face mesh points detected by MediaPipe.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Valid reports whether the mesh carries the full landmark set. Heuristics
// index deep into the mesh, so a partial mesh is rejected up front.
func (f *FaceLandmarks) Valid() bool {
	return f != nil && len(f.Points) >= NumFaceLandmarks
}

// MouthRatio returns mouth opening height relative to mouth width.
func (f *FaceLandmarks) MouthRatio() float64 {
	left := f.Points[MouthLeft]
	right := f.Points[MouthRight]
	top := f.Points[MouthTop]
	bottom := f.Points[MouthBottom]

	width := abs(left.X - right.X)
	height := abs(top.Y - bottom.Y)

	return height / (width + 1e-5)
}

// EyeOpenness returns the average horizontal eye extent across both eyes.
func (f *FaceLandmarks) EyeOpenness() float64 {
	leftWidth := abs(f.Points[LeftEyeLeft].X - f.Points[LeftEyeRight].X)
	rightWidth := abs(f.Points[RightEyeIn].X - f.Points[RightEyeOut].X)

	return (leftWidth + rightWidth) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
