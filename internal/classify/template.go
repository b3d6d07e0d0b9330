package classify

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Template is a recorded, labeled hand pose for nearest-template matching.
// Landmarks must already be normalized (wrist origin, unit palm scale).
type Template struct {
	ID        string
	Label     string
	Landmarks []detector.Point3D
	Tolerance float64 // maximum distance that still counts as a match
}

// TemplateClassifier matches hand landmarks against recorded pose templates.
// It serves as a model-free fallback gesture classifier: confidence is the
// distance-derived score of the nearest template.
type TemplateClassifier struct {
	templates []*Template
}

// NewTemplateClassifier creates an empty TemplateClassifier.
func NewTemplateClassifier() *TemplateClassifier {
	return &TemplateClassifier{
		templates: make([]*Template, 0),
	}
}

// AddTemplate registers a template for matching.
func (c *TemplateClassifier) AddTemplate(t *Template) {
	if t == nil {
		return
	}
	c.templates = append(c.templates, t)
}

// Len returns the number of registered templates.
func (c *TemplateClassifier) Len() int {
	return len(c.templates)
}

// Classify normalizes the detected hand and returns the label of the nearest
// template within tolerance. A frame without a hand yields LabelNone; a hand
// matching no template yields LabelUnknown with the nearest score.
func (c *TemplateClassifier) Classify(det *detector.Detection) (Result, error) {
	hand := det.Hand()
	if hand == nil {
		return Result{Label: LabelNone, Confidence: 0}, nil
	}

	normalized := hand.Normalize()

	var best *Template
	bestScore := 0.0
	nearest := 0.0
	for _, t := range c.templates {
		dist := landmarkDistance(normalized.Points[:], t.Landmarks)
		score := 1.0 / (1.0 + dist)

		// Track the nearest score even outside tolerance for the Unknown result.
		if score > nearest {
			nearest = score
		}
		if dist <= t.Tolerance && score > bestScore {
			best = t
			bestScore = score
		}
	}

	if best == nil {
		return Result{Label: LabelUnknown, Confidence: nearest}, nil
	}

	return Result{Label: best.Label, Confidence: bestScore}, nil
}

// landmarkDistance sums the Euclidean distances between corresponding points.
func landmarkDistance(a, b []detector.Point3D) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}
