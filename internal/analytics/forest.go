package analytics

import (
	"sort"

	"golang.org/x/exp/rand"
)

// ForestConfig controls the tree ensemble fit.
type ForestConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	Seed            uint64
}

// DefaultForestConfig mirrors the production model: 100 trees, depth 10,
// fixed seed so retraining the same data yields the same forest.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{NumTrees: 100, MaxDepth: 10, MinSamplesSplit: 2, Seed: 42}
}

// Forest is an ensemble of regression trees averaged for prediction.
type Forest struct {
	Trees       []*treeNode `json:"trees"`
	NumFeatures int         `json:"num_features"`
}

type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// fitForest trains the ensemble on bootstrap samples of (X, y) and returns
// the forest together with normalized impurity-based feature importances.
func fitForest(X [][]float64, y []float64, cfg ForestConfig) (*Forest, []float64) {
	n := len(X)
	numFeatures := 0
	if n > 0 {
		numFeatures = len(X[0])
	}

	forest := &Forest{NumFeatures: numFeatures}
	importances := make([]float64, numFeatures)
	rng := rand.New(rand.NewSource(cfg.Seed))

	for t := 0; t < cfg.NumTrees; t++ {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		root := growTree(X, y, indices, 0, cfg, importances)
		forest.Trees = append(forest.Trees, root)
	}

	normalize(importances)
	return forest, importances
}

// Predict averages the per-tree estimates for one feature row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, tree := range f.Trees {
		sum += tree.predict(row)
	}
	return sum / float64(len(f.Trees))
}

func (t *treeNode) predict(row []float64) float64 {
	node := t
	for !node.Leaf {
		if row[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// growTree builds a CART regression subtree over the sample indices,
// accumulating each split's weighted impurity decrease into importances.
func growTree(X [][]float64, y []float64, indices []int, depth int, cfg ForestConfig, importances []float64) *treeNode {
	if depth >= cfg.MaxDepth || len(indices) < cfg.MinSamplesSplit {
		return leaf(y, indices)
	}

	feature, threshold, gain, ok := bestSplit(X, y, indices)
	if !ok {
		return leaf(y, indices)
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf(y, indices)
	}

	importances[feature] += gain

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(X, y, left, depth+1, cfg, importances),
		Right:     growTree(X, y, right, depth+1, cfg, importances),
	}
}

func leaf(y []float64, indices []int) *treeNode {
	sum := 0.0
	for _, i := range indices {
		sum += y[i]
	}
	value := 0.0
	if len(indices) > 0 {
		value = sum / float64(len(indices))
	}
	return &treeNode{Leaf: true, Value: value}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children, using prefix sums over the
// feature-sorted sample.
func bestSplit(X [][]float64, y []float64, indices []int) (feature int, threshold, gain float64, ok bool) {
	n := len(indices)
	if n < 2 {
		return 0, 0, 0, false
	}

	parentSSE := sse(y, indices)
	bestSSE := parentSSE
	numFeatures := len(X[indices[0]])

	sorted := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return X[sorted[a]][f] < X[sorted[b]][f]
		})

		// Prefix sums of y and y^2 over the sorted order let each candidate
		// split evaluate in constant time.
		sumL, sqL := 0.0, 0.0
		sumT, sqT := 0.0, 0.0
		for _, i := range sorted {
			sumT += y[i]
			sqT += y[i] * y[i]
		}

		for k := 0; k < n-1; k++ {
			yi := y[sorted[k]]
			sumL += yi
			sqL += yi * yi

			// Cannot split between equal feature values.
			if X[sorted[k]][f] == X[sorted[k+1]][f] {
				continue
			}

			nl := float64(k + 1)
			nr := float64(n - k - 1)
			sumR := sumT - sumL
			sqR := sqT - sqL

			splitSSE := (sqL - sumL*sumL/nl) + (sqR - sumR*sumR/nr)
			if splitSSE < bestSSE {
				bestSSE = splitSSE
				feature = f
				threshold = (X[sorted[k]][f] + X[sorted[k+1]][f]) / 2
				ok = true
			}
		}
	}

	if !ok {
		return 0, 0, 0, false
	}
	return feature, threshold, parentSSE - bestSSE, true
}

func sse(y []float64, indices []int) float64 {
	sum, sq := 0.0, 0.0
	for _, i := range indices {
		sum += y[i]
		sq += y[i] * y[i]
	}
	n := float64(len(indices))
	return sq - sum*sum/n
}

func normalize(values []float64) {
	total := 0.0
	for _, v := range values {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range values {
		values[i] /= total
	}
}
