package classify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/feature"
)

// TreeNode is one node of a decision tree in flat array form. Left and Right
// index into the tree's node slice; a node with Left < 0 is a leaf and Dist
// holds its class probability distribution.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Dist      []float64 `json:"dist,omitempty"`
}

// Tree is a single decision tree.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// Scaler standardizes feature vectors before inference, mirroring the
// preprocessing the model was trained with.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Model is a versioned gesture forest artifact.
type Model struct {
	Version string   `json:"version"`
	Labels  []string `json:"labels"`
	Scaler  Scaler   `json:"scaler"`
	Trees   []Tree   `json:"trees"`
}

// Dims returns the model's expected input vector length.
func (m *Model) Dims() int {
	return len(m.Scaler.Mean)
}

// validate checks the structural invariants a loadable artifact must hold.
func (m *Model) validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("model has no labels")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	if len(m.Scaler.Mean) == 0 || len(m.Scaler.Mean) != len(m.Scaler.Scale) {
		return fmt.Errorf("scaler mean/scale length mismatch: %d vs %d",
			len(m.Scaler.Mean), len(m.Scaler.Scale))
	}

	dims := m.Dims()
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Left < 0 {
				if len(node.Dist) != len(m.Labels) {
					return fmt.Errorf("tree %d leaf %d: distribution length %d, want %d",
						ti, ni, len(node.Dist), len(m.Labels))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= dims {
				return fmt.Errorf("tree %d node %d: feature %d out of range [0,%d)",
					ti, ni, node.Feature, dims)
			}
			if node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return nil
}

// GestureForest classifies hand feature vectors with a pre-trained ensemble
// of decision trees. The model is read-only after construction.
type GestureForest struct {
	model *Model
}

// NewGestureForest wraps an already-decoded model. The model must be valid.
func NewGestureForest(m *Model) (*GestureForest, error) {
	if m == nil {
		return nil, ErrModelNotLoaded
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &GestureForest{model: m}, nil
}

// LoadForest reads a JSON model artifact from disk.
func LoadForest(path string) (*GestureForest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	return NewGestureForest(&m)
}

// Version returns the loaded artifact version.
func (g *GestureForest) Version() string {
	if g == nil || g.model == nil {
		return ""
	}
	return g.model.Version
}

// Classify extracts the hand feature vector from the detection and runs
// forest inference. A frame without a hand yields LabelNone with zero
// confidence and no error.
func (g *GestureForest) Classify(det *detector.Detection) (Result, error) {
	hand := det.Hand()
	if hand == nil {
		return Result{Label: LabelNone, Confidence: 0}, nil
	}

	vec, err := feature.HandVector(hand.Points[:])
	if err != nil {
		return Result{}, err
	}

	return g.ClassifyVector(vec)
}

// ClassifyVector runs forest inference on a prepared feature vector.
// Inference is exactly reproducible: trees are walked in order, per-tree
// distributions are averaged, and probability ties break toward the lowest
// class index.
func (g *GestureForest) ClassifyVector(vec feature.Vector) (Result, error) {
	if g == nil || g.model == nil {
		return Result{}, ErrModelNotLoaded
	}
	if len(vec) != g.model.Dims() {
		return Result{}, fmt.Errorf("%w: got %d, want %d",
			ErrDimensionMismatch, len(vec), g.model.Dims())
	}

	scaled := make([]float64, len(vec))
	for i, v := range vec {
		s := g.model.Scaler.Scale[i]
		if s == 0 {
			s = 1
		}
		scaled[i] = (v - g.model.Scaler.Mean[i]) / s
	}

	probs := make([]float64, len(g.model.Labels))
	for _, tree := range g.model.Trees {
		leaf := walk(tree, scaled)
		for i, p := range leaf.Dist {
			probs[i] += p
		}
	}

	n := float64(len(g.model.Trees))
	best := 0
	for i := range probs {
		probs[i] /= n
		if probs[i] > probs[best] {
			best = i
		}
	}

	conf := probs[best]
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}

	return Result{Label: g.model.Labels[best], Confidence: conf}, nil
}

func walk(t Tree, vec []float64) TreeNode {
	node := t.Nodes[0]
	for node.Left >= 0 {
		if vec[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node
}
