// README: Predictor wraps the loaded regression model; read-only after construction.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"taxipred/internal/modules/features"
)

// ErrModelLoad marks any failure to load or validate the model artifact.
var ErrModelLoad = errors.New("model load failure")

// Predictor is safe for concurrent use; nothing mutates it after NewPredictor.
type Predictor struct {
	kind         Kind
	version      string
	trees        []Tree
	intercept    float64
	coefficients []float64
}

// Load reads the artifact at path and builds a Predictor.
func Load(path string) (*Predictor, error) {
	a, err := NewStore(path).LoadArtifact()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return NewPredictor(a)
}

// NewPredictor validates the artifact shape against the feature columns.
func NewPredictor(a Artifact) (*Predictor, error) {
	if err := validateArtifact(a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	p := &Predictor{kind: a.Kind, version: a.Version, intercept: a.Intercept}
	switch a.Kind {
	case KindForest:
		p.trees = append([]Tree(nil), a.Trees...)
	case KindLinear:
		p.coefficients = append([]float64(nil), a.Coefficients...)
	}
	return p, nil
}

func (p *Predictor) Kind() Kind      { return p.kind }
func (p *Predictor) Version() string { return p.version }

// Predict returns the model output for one feature vector.
func (p *Predictor) Predict(v features.Vector) (float64, error) {
	x := v.Values()
	var (
		y   float64
		err error
	)
	switch p.kind {
	case KindForest:
		y, err = evalForest(p.trees, x)
	case KindLinear:
		y = p.intercept
		for i, c := range p.coefficients {
			y += c * x[i]
		}
	default:
		err = fmt.Errorf("unsupported model kind %q", p.kind)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("model produced non-finite output %v", y)
	}
	return y, nil
}

func validateArtifact(a Artifact) error {
	if len(a.Features) > 0 {
		if len(a.Features) != features.NumColumns {
			return fmt.Errorf("artifact lists %d features, want %d", len(a.Features), features.NumColumns)
		}
		for i, name := range a.Features {
			if name != features.Columns[i] {
				return fmt.Errorf("feature %d is %q, want %q", i, name, features.Columns[i])
			}
		}
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != features.NumColumns {
			return fmt.Errorf("linear model has %d coefficients, want %d", len(a.Coefficients), features.NumColumns)
		}
		return nil
	case KindForest:
		if len(a.Trees) == 0 {
			return errors.New("forest has no trees")
		}
		for i, t := range a.Trees {
			if err := validateTree(t); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown model kind %q", a.Kind)
	}
}

func validateTree(t Tree) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= features.NumColumns {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		if n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has child out of range", i)
		}
	}
	return nil
}
