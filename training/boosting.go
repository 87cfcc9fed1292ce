package training

import (
	"fmt"
)

// GradientBoostingRegressor fits shallow regression trees stage-wise on
// the residuals of the running prediction.
type GradientBoostingRegressor struct {
	NumStages       int
	LearningRate    float64
	MaxDepth        int
	MinSamplesSplit int

	InitialValue float64
	Trees        []*DecisionTreeRegressor
	NumFeatures  int
	Trained      bool
}

// NewGradientBoostingRegressor creates a boosting model with the given
// stage count, shrinkage and tree depth.
func NewGradientBoostingRegressor(numStages int, learningRate float64, maxDepth int) *GradientBoostingRegressor {
	return &GradientBoostingRegressor{
		NumStages:       numStages,
		LearningRate:    learningRate,
		MaxDepth:        maxDepth,
		MinSamplesSplit: 2,
	}
}

// Fit starts from the target mean and adds LearningRate-scaled trees
// trained on the current residuals.
func (gb *GradientBoostingRegressor) Fit(X [][]float64, y []float64) error {
	if err := validateTrainingData(X, y); err != nil {
		return err
	}
	if gb.NumStages <= 0 {
		gb.NumStages = 100
	}
	if gb.LearningRate <= 0 {
		gb.LearningRate = 0.1
	}
	if gb.MaxDepth <= 0 {
		gb.MaxDepth = 3
	}
	gb.NumFeatures = len(X[0])

	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	gb.InitialValue = mean

	current := make([]float64, len(y))
	for i := range current {
		current[i] = mean
	}

	residuals := make([]float64, len(y))
	gb.Trees = make([]*DecisionTreeRegressor, 0, gb.NumStages)

	for stage := 0; stage < gb.NumStages; stage++ {
		for i := range y {
			residuals[i] = y[i] - current[i]
		}

		tree := NewDecisionTreeRegressor(gb.MaxDepth, gb.MinSamplesSplit)
		if err := tree.Fit(X, residuals); err != nil {
			return fmt.Errorf("stage %d failed: %w", stage, err)
		}
		gb.Trees = append(gb.Trees, tree)

		for i, x := range X {
			p, err := tree.Predict(x)
			if err != nil {
				return err
			}
			current[i] += gb.LearningRate * p
		}
	}

	gb.Trained = true
	return nil
}

// Predict sums the initial value and the shrunk stage predictions.
func (gb *GradientBoostingRegressor) Predict(x []float64) (float64, error) {
	if !gb.Trained {
		return 0, fmt.Errorf("model has not been trained")
	}
	if len(x) != gb.NumFeatures {
		return 0, fmt.Errorf("expected %d features, got %d", gb.NumFeatures, len(x))
	}
	pred := gb.InitialValue
	for _, tree := range gb.Trees {
		p, err := tree.Predict(x)
		if err != nil {
			return 0, err
		}
		pred += gb.LearningRate * p
	}
	return pred, nil
}

func (gb *GradientBoostingRegressor) Name() string { return "gradient_boosting" }

func (gb *GradientBoostingRegressor) Params() map[string]any {
	return map[string]any{
		"n_estimators":  gb.NumStages,
		"learning_rate": gb.LearningRate,
		"max_depth":     gb.MaxDepth,
	}
}

// FeatureImportances averages normalized importances across the stages.
func (gb *GradientBoostingRegressor) FeatureImportances() []float64 {
	if len(gb.Trees) == 0 {
		return nil
	}
	out := make([]float64, gb.NumFeatures)
	for _, tree := range gb.Trees {
		for i, v := range tree.FeatureImportances() {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= float64(len(gb.Trees))
	}
	return out
}
