// README: Regression forest evaluation over the flat node arrays of each tree.
package pricing

import "fmt"

// evalForest averages the tree outputs, as a regression forest does.
func evalForest(trees []Tree, x []float64) (float64, error) {
	var sum float64
	for i, t := range trees {
		y, err := evalTree(t, x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += y
	}
	return sum / float64(len(trees)), nil
}

func evalTree(t Tree, x []float64) (float64, error) {
	idx := 0
	// A well-formed tree reaches a leaf in fewer steps than it has nodes.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.isLeaf() {
			return n.Value, nil
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("no leaf reached after %d steps", len(t.Nodes)+1)
}
