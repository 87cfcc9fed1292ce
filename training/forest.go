package training

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// RandomForestRegressor averages bootstrap-trained regression trees, each
// restricted to a random feature subset. Trees train in parallel.
type RandomForestRegressor struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int // 0 means sqrt(total features)
	Seed            int64

	Trees       []*DecisionTreeRegressor
	NumFeatures int
	Trained     bool
}

// NewRandomForestRegressor creates a forest with the given size and limits.
func NewRandomForestRegressor(numTrees, maxDepth int, seed int64) *RandomForestRegressor {
	return &RandomForestRegressor{
		NumTrees:        numTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: 2,
		Seed:            seed,
	}
}

// Fit trains NumTrees trees on bootstrap samples. Each tree gets its own
// deterministic sub-seed so the forest reproduces for a fixed Seed.
func (rf *RandomForestRegressor) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	if rf.NumTrees <= 0 {
		rf.NumTrees = 100
	}
	if rf.MaxDepth <= 0 {
		rf.MaxDepth = 10
	}
	rf.NumFeatures = len(X[0])

	maxFeatures := rf.MaxFeatures
	if maxFeatures <= 0 || maxFeatures > rf.NumFeatures {
		maxFeatures = int(math.Sqrt(float64(rf.NumFeatures)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rf.Trees = make([]*DecisionTreeRegressor, rf.NumTrees)
	errs := make([]error, rf.NumTrees)

	var wg sync.WaitGroup
	for t := 0; t < rf.NumTrees; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(rf.Seed + int64(t)))

			n := len(X)
			sampleX := make([][]float64, n)
			sampleY := make([]float64, n)
			for i := 0; i < n; i++ {
				idx := rng.Intn(n)
				sampleX[i] = X[idx]
				sampleY[i] = y[idx]
			}

			tree := NewDecisionTreeRegressor(rf.MaxDepth, rf.MinSamplesSplit)
			tree.FeatureIndices = sampleFeatures(rng, rf.NumFeatures, maxFeatures)
			if err := tree.Fit(sampleX, sampleY); err != nil {
				errs[t] = err
				return
			}
			rf.Trees[t] = tree
		}(t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("tree training failed: %w", err)
		}
	}
	rf.Trained = true
	return nil
}

func sampleFeatures(rng *rand.Rand, total, k int) []int {
	perm := rng.Perm(total)
	subset := perm[:k]
	out := make([]int, k)
	copy(out, subset)
	return out
}

// Predict averages the tree predictions.
func (rf *RandomForestRegressor) Predict(x []float64) (float64, error) {
	if !rf.Trained || len(rf.Trees) == 0 {
		return 0, fmt.Errorf("model has not been trained")
	}
	if len(x) != rf.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", rf.NumFeatures, len(x))
	}
	var sum float64
	for _, tree := range rf.Trees {
		p, err := tree.Predict(x)
		if err != nil {
			return 0, err
		}
		sum += p
	}
	return sum / float64(len(rf.Trees)), nil
}

func (rf *RandomForestRegressor) Name() string { return "random_forest" }

func (rf *RandomForestRegressor) Params() map[string]any {
	return map[string]any{
		"n_estimators":      rf.NumTrees,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"max_features":      rf.MaxFeatures,
	}
}

// FeatureImportances averages normalized importances across trees.
func (rf *RandomForestRegressor) FeatureImportances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}
	out := make([]float64, rf.NumFeatures)
	for _, tree := range rf.Trees {
		for i, v := range tree.FeatureImportances() {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(rf.Trees))
	}
	return out
}
