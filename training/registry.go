package training

// Candidate describes one model in the training registry: how to build
// it, whether it trains on standardized inputs, and the parameter space
// the tuner may explore.
type Candidate struct {
	Name        string
	NeedsScaled bool
	Factory     func(params map[string]any) Regressor
	Space       ParamSpace // nil means the model is not tuned
}

// DefaultCandidates returns the registry in its fixed evaluation order.
// Selection ties break toward the earlier entry.
func DefaultCandidates(seed int64) []Candidate {
	return []Candidate{
		{
			Name:        "linear_regression",
			NeedsScaled: true,
			Factory: func(params map[string]any) Regressor {
				return NewLinearRegression()
			},
		},
		{
			Name:        "ridge",
			NeedsScaled: true,
			Factory: func(params map[string]any) Regressor {
				return NewRidgeRegression(paramFloat(params, "alpha", 1.0))
			},
			Space: ParamSpace{
				"alpha": {0.01, 0.1, 1.0, 10.0, 100.0},
			},
		},
		{
			Name:        "lasso",
			NeedsScaled: true,
			Factory: func(params map[string]any) Regressor {
				return NewLassoRegression(paramFloat(params, "alpha", 0.1))
			},
			Space: ParamSpace{
				"alpha": {0.001, 0.01, 0.1, 1.0},
			},
		},
		{
			Name:        "decision_tree",
			NeedsScaled: false,
			Factory: func(params map[string]any) Regressor {
				tree := NewDecisionTreeRegressor(
					paramInt(params, "max_depth", 10),
					paramInt(params, "min_samples_split", 2))
				tree.MinSamplesLeaf = paramInt(params, "min_samples_leaf", 1)
				return tree
			},
			Space: ParamSpace{
				"max_depth":         {5, 10, 15, 20},
				"min_samples_split": {2, 5, 10},
				"min_samples_leaf":  {1, 2, 4},
			},
		},
		{
			Name:        "random_forest",
			NeedsScaled: false,
			Factory: func(params map[string]any) Regressor {
				rf := NewRandomForestRegressor(
					paramInt(params, "n_estimators", 100),
					paramInt(params, "max_depth", 10),
					seed)
				rf.MinSamplesSplit = paramInt(params, "min_samples_split", 2)
				return rf
			},
			Space: ParamSpace{
				"n_estimators":      {50, 100, 200},
				"max_depth":         {5, 10, 15},
				"min_samples_split": {2, 5, 10},
			},
		},
		{
			Name:        "gradient_boosting",
			NeedsScaled: false,
			Factory: func(params map[string]any) Regressor {
				return NewGradientBoostingRegressor(
					paramInt(params, "n_estimators", 100),
					paramFloat(params, "learning_rate", 0.1),
					paramInt(params, "max_depth", 3))
			},
			Space: ParamSpace{
				"n_estimators":  {50, 100, 200},
				"learning_rate": {0.01, 0.05, 0.1, 0.2},
				"max_depth":     {2, 3, 4, 5},
			},
		},
	}
}
