// README: Fare rate constants and the persisted regression model artifact.
package pricing

// Rate holds the static fare constants placed into every feature vector.
type Rate struct {
	BaseFare  float64
	PerKm     float64
	PerMinute float64
}

// DefaultRate matches the constants the model was trained with.
var DefaultRate = Rate{BaseFare: 3.0, PerKm: 1.2, PerMinute: 0.3}

type Kind string

const (
	KindForest Kind = "forest"
	KindLinear Kind = "linear"
)

// Artifact is the on-disk JSON form of a trained model.
type Artifact struct {
	Kind     Kind     `json:"kind"`
	Version  string   `json:"version,omitempty"`
	Features []string `json:"features,omitempty"`

	// forest
	Trees []Tree `json:"trees,omitempty"`

	// linear
	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// Tree is a flattened regression tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split when Left >= 0, otherwise a leaf carrying Value.
// Samples with x[Feature] <= Threshold go left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n Node) isLeaf() bool { return n.Left < 0 }
