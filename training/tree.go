package training

import (
	"fmt"
	"math"
	"sort"
)

// RegressionNode is one node of a regression tree.
type RegressionNode struct {
	Feature   int
	Threshold float64
	Left      *RegressionNode
	Right     *RegressionNode
	Value     float64
	IsLeaf    bool
}

// DecisionTreeRegressor splits on the feature/threshold pair with the
// largest weighted variance reduction.
type DecisionTreeRegressor struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int

	// FeatureIndices restricts candidate split features; empty means all.
	// Random forests set this per tree.
	FeatureIndices []int

	Root        *RegressionNode
	NumFeatures int
	Importances []float64
	Trained     bool
}

// NewDecisionTreeRegressor creates a tree with the given depth and split
// limits. Zero values fall back to sensible defaults at fit time.
func NewDecisionTreeRegressor(maxDepth, minSamplesSplit int) *DecisionTreeRegressor {
	return &DecisionTreeRegressor{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  1,
	}
}

// Fit grows the tree on the full sample set.
func (dt *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	if dt.MaxDepth <= 0 {
		dt.MaxDepth = 10
	}
	if dt.MinSamplesSplit < 2 {
		dt.MinSamplesSplit = 2
	}
	if dt.MinSamplesLeaf < 1 {
		dt.MinSamplesLeaf = 1
	}

	dt.NumFeatures = len(X[0])
	dt.Importances = make([]float64, dt.NumFeatures)

	indices := make([]int, len(X))
	for i := range indices {
		indices[i] = i
	}
	dt.Root = dt.buildNode(X, y, indices, 0)
	dt.normalizeImportances()
	dt.Trained = true
	return nil
}

func (dt *DecisionTreeRegressor) buildNode(X [][]float64, y []float64, indices []int, depth int) *RegressionNode {
	if depth >= dt.MaxDepth || len(indices) < dt.MinSamplesSplit {
		return &RegressionNode{IsLeaf: true, Value: meanAt(y, indices)}
	}

	parentVar := varianceAt(y, indices)
	if parentVar == 0 {
		return &RegressionNode{IsLeaf: true, Value: meanAt(y, indices)}
	}

	feature, threshold, gain := dt.bestSplit(X, y, indices, parentVar)
	if gain <= 0 {
		return &RegressionNode{IsLeaf: true, Value: meanAt(y, indices)}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < dt.MinSamplesLeaf || len(right) < dt.MinSamplesLeaf {
		return &RegressionNode{IsLeaf: true, Value: meanAt(y, indices)}
	}

	dt.Importances[feature] += gain * float64(len(indices))

	return &RegressionNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      dt.buildNode(X, y, left, depth+1),
		Right:     dt.buildNode(X, y, right, depth+1),
	}
}

// bestSplit scans candidate features and midpoints between consecutive
// distinct values, maximizing weighted variance reduction.
func (dt *DecisionTreeRegressor) bestSplit(X [][]float64, y []float64, indices []int, parentVar float64) (int, float64, float64) {
	features := dt.FeatureIndices
	if len(features) == 0 {
		features = make([]int, dt.NumFeatures)
		for j := range features {
			features[j] = j
		}
	}

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	n := float64(len(indices))

	values := make([]float64, 0, len(indices))
	for _, feature := range features {
		values = values[:0]
		for _, i := range indices {
			values = append(values, X[i][feature])
		}
		sort.Float64s(values)

		for k := 0; k+1 < len(values); k++ {
			if values[k] == values[k+1] {
				continue
			}
			threshold := (values[k] + values[k+1]) / 2

			var leftSum, leftSq, rightSum, rightSq float64
			var leftN, rightN float64
			for _, i := range indices {
				v := y[i]
				if X[i][feature] <= threshold {
					leftSum += v
					leftSq += v * v
					leftN++
				} else {
					rightSum += v
					rightSq += v * v
					rightN++
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}

			leftVar := leftSq/leftN - (leftSum/leftN)*(leftSum/leftN)
			rightVar := rightSq/rightN - (rightSum/rightN)*(rightSum/rightN)
			gain := parentVar - (leftN/n*leftVar + rightN/n*rightVar)
			if gain > bestGain {
				bestFeature = feature
				bestThreshold = threshold
				bestGain = gain
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

func (dt *DecisionTreeRegressor) normalizeImportances() {
	var total float64
	for _, v := range dt.Importances {
		total += v
	}
	if total == 0 {
		return
	}
	for i := range dt.Importances {
		dt.Importances[i] /= total
	}
}

// Predict walks the tree for one sample.
func (dt *DecisionTreeRegressor) Predict(x []float64) (float64, error) {
	if !dt.Trained || dt.Root == nil {
		return 0, fmt.Errorf("model has not been trained")
	}
	if len(x) != dt.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", dt.NumFeatures, len(x))
	}
	node := dt.Root
	for !node.IsLeaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value, nil
}

func (dt *DecisionTreeRegressor) Name() string { return "decision_tree" }

func (dt *DecisionTreeRegressor) Params() map[string]any {
	return map[string]any{
		"max_depth":         dt.MaxDepth,
		"min_samples_split": dt.MinSamplesSplit,
		"min_samples_leaf":  dt.MinSamplesLeaf,
	}
}

// FeatureImportances returns normalized variance-reduction importances.
func (dt *DecisionTreeRegressor) FeatureImportances() []float64 {
	return dt.Importances
}

func meanAt(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func varianceAt(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	mean := meanAt(y, indices)
	var sum float64
	for _, i := range indices {
		d := y[i] - mean
		sum += d * d
	}
	v := sum / float64(len(indices))
	if math.IsNaN(v) {
		return 0
	}
	return v
}
