package training

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ParamSpace maps a hyperparameter name to its candidate values.
type ParamSpace map[string][]any

// TuneConfig controls the randomized hyperparameter search.
type TuneConfig struct {
	Iterations int
	Folds      int
	Seed       int64
}

// DefaultTuneConfig is 10 random draws scored by 3-fold CV.
func DefaultTuneConfig(seed int64) TuneConfig {
	return TuneConfig{Iterations: 10, Folds: 3, Seed: seed}
}

// TuneResult is the outcome of a randomized search.
type TuneResult struct {
	BestParams map[string]any
	BestScore  float64
	Evaluated  int
}

// RandomizedSearch samples parameter combinations from the space and
// scores each with k-fold cross-validated R², returning the best. The
// search is deterministic for a fixed seed.
func RandomizedSearch(factory func(params map[string]any) Regressor, space ParamSpace,
	X [][]float64, y []float64, config TuneConfig) (*TuneResult, error) {

	if len(space) == 0 {
		return nil, fmt.Errorf("empty parameter space")
	}
	if config.Iterations <= 0 {
		config.Iterations = 10
	}
	if config.Folds < 2 {
		config.Folds = 3
	}
	if len(X) < config.Folds {
		return nil, fmt.Errorf("need at least %d samples for %d-fold CV, got %d",
			config.Folds, config.Folds, len(X))
	}

	// Stable iteration order over the space for reproducible draws.
	names := make([]string, 0, len(space))
	for name := range space {
		names = append(names, name)
	}
	sort.Strings(names)

	rng := rand.New(rand.NewSource(config.Seed))
	tried := make(map[string]bool)

	result := &TuneResult{BestScore: math.Inf(-1)}
	for i := 0; i < config.Iterations; i++ {
		params := make(map[string]any, len(names))
		sig := ""
		for _, name := range names {
			values := space[name]
			v := values[rng.Intn(len(values))]
			params[name] = v
			sig += fmt.Sprintf("%s=%v;", name, v)
		}
		if tried[sig] {
			continue
		}
		tried[sig] = true

		score, err := crossValidate(factory, params, X, y, config.Folds, config.Seed)
		if err != nil {
			return nil, fmt.Errorf("cross-validation failed for %v: %w", params, err)
		}
		result.Evaluated++
		if score > result.BestScore {
			result.BestScore = score
			result.BestParams = params
		}
	}

	if result.BestParams == nil {
		return nil, fmt.Errorf("no parameter combination could be evaluated")
	}
	return result, nil
}

// crossValidate returns the mean R² over k folds.
func crossValidate(factory func(params map[string]any) Regressor, params map[string]any,
	X [][]float64, y []float64, folds int, seed int64) (float64, error) {

	foldIdx := kFoldSplit(len(X), folds, seed)

	var total float64
	for f := 0; f < folds; f++ {
		var trainX, valX [][]float64
		var trainY, valY []float64
		for fold, indices := range foldIdx {
			for _, i := range indices {
				if fold == f {
					valX = append(valX, X[i])
					valY = append(valY, y[i])
				} else {
					trainX = append(trainX, X[i])
					trainY = append(trainY, y[i])
				}
			}
		}

		model := factory(params)
		if err := model.Fit(trainX, trainY); err != nil {
			return 0, err
		}
		preds, err := PredictBatch(model, valX)
		if err != nil {
			return 0, err
		}
		m, err := Evaluate(valY, preds)
		if err != nil {
			return 0, err
		}
		total += m.R2
	}
	return total / float64(folds), nil
}

// kFoldSplit deals shuffled indices into k folds.
func kFoldSplit(n, k int, seed int64) [][]int {
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)

	folds := make([][]int, k)
	for i, idx := range indices {
		f := i % k
		folds[f] = append(folds[f], idx)
	}
	return folds
}

// Param helpers for factories reading from map[string]any; JSON decoding
// and literal spaces produce mixed int/float64 values.

func paramInt(params map[string]any, key string, def int) int {
	if v, ok := params[key]; ok {
		switch t := v.(type) {
		case int:
			return t
		case int64:
			return int(t)
		case float64:
			return int(t)
		}
	}
	return def
}

func paramFloat(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		case int64:
			return float64(t)
		}
	}
	return def
}
