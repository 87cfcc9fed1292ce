package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearData generates y = 2*x0 - 3*x1 + 5 with optional noise.
func linearData(n int, noise float64, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64() * 10
		x1 := rng.Float64() * 10
		X[i] = []float64{x0, x1}
		y[i] = 2*x0 - 3*x1 + 5 + rng.NormFloat64()*noise
	}
	return X, y
}

// nonlinearData generates a step function a tree family can learn.
func nonlinearData(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64() * 10
		x1 := rng.Float64() * 10
		X[i] = []float64{x0, x1}
		switch {
		case x0 < 3:
			y[i] = 1
		case x0 < 7:
			y[i] = 2.5
		default:
			y[i] = 4
		}
		if x1 > 5 {
			y[i] += 0.5
		}
	}
	return X, y
}

func fitAndScore(t *testing.T, model Regressor, X [][]float64, y []float64) Metrics {
	t.Helper()
	require.NoError(t, model.Fit(X, y))
	preds, err := PredictBatch(model, X)
	require.NoError(t, err)
	m, err := Evaluate(y, preds)
	require.NoError(t, err)
	return m
}

func TestLinearRegression_RecoversCoefficients(t *testing.T) {
	X, y := linearData(200, 0, 1)
	model := NewLinearRegression()
	require.NoError(t, model.Fit(X, y))

	assert.InDelta(t, 2.0, model.Weights[0], 1e-6)
	assert.InDelta(t, -3.0, model.Weights[1], 1e-6)
	assert.InDelta(t, 5.0, model.Intercept, 1e-6)

	pred, err := model.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pred, 1e-6)
}

func TestLinearRegression_Errors(t *testing.T) {
	model := NewLinearRegression()

	t.Run("predict before fit", func(t *testing.T) {
		_, err := model.Predict([]float64{1, 2})
		assert.Error(t, err)
	})

	t.Run("mismatched samples", func(t *testing.T) {
		err := model.Fit([][]float64{{1}}, []float64{1, 2})
		assert.Error(t, err)
	})

	t.Run("wrong feature count", func(t *testing.T) {
		X, y := linearData(50, 0, 1)
		require.NoError(t, model.Fit(X, y))
		_, err := model.Predict([]float64{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 features")
	})
}

func TestRidgeRegression_ShrinksWeights(t *testing.T) {
	X, y := linearData(100, 1.0, 2)

	ols := NewLinearRegression()
	require.NoError(t, ols.Fit(X, y))

	ridge := NewRidgeRegression(1000)
	require.NoError(t, ridge.Fit(X, y))

	for i := range ols.Weights {
		assert.Less(t, absf(ridge.Weights[i]), absf(ols.Weights[i]),
			"strong penalty shrinks weight %d", i)
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestLassoRegression_ZeroesIrrelevantFeature(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 200
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0 := rng.Float64() * 10
		noiseFeature := rng.Float64() * 10
		X[i] = []float64{x0, noiseFeature}
		y[i] = 3*x0 + 1
	}

	model := NewLassoRegression(1.0)
	require.NoError(t, model.Fit(X, y))

	assert.Greater(t, model.Weights[0], 1.0, "informative weight survives")
	assert.InDelta(t, 0.0, model.Weights[1], 0.1, "irrelevant weight is driven to zero")
}

func TestDecisionTree_LearnsStepFunction(t *testing.T) {
	X, y := nonlinearData(300, 4)
	model := NewDecisionTreeRegressor(8, 2)
	m := fitAndScore(t, model, X, y)
	assert.Greater(t, m.R2, 0.95)
}

func TestDecisionTree_FeatureImportances(t *testing.T) {
	X, y := nonlinearData(300, 5)
	model := NewDecisionTreeRegressor(8, 2)
	require.NoError(t, model.Fit(X, y))

	imp := model.FeatureImportances()
	require.Len(t, imp, 2)
	assert.Greater(t, imp[0], imp[1], "x0 drives the target more than x1")

	var total float64
	for _, v := range imp {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestRandomForest_FitPredict(t *testing.T) {
	X, y := nonlinearData(300, 6)
	model := NewRandomForestRegressor(30, 8, 42)
	m := fitAndScore(t, model, X, y)
	assert.Greater(t, m.R2, 0.85)
}

func TestRandomForest_DeterministicForSeed(t *testing.T) {
	X, y := nonlinearData(150, 7)

	a := NewRandomForestRegressor(20, 6, 42)
	require.NoError(t, a.Fit(X, y))
	b := NewRandomForestRegressor(20, 6, 42)
	require.NoError(t, b.Fit(X, y))

	for _, x := range X[:20] {
		pa, err := a.Predict(x)
		require.NoError(t, err)
		pb, err := b.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}

func TestGradientBoosting_FitPredict(t *testing.T) {
	X, y := nonlinearData(300, 8)
	model := NewGradientBoostingRegressor(100, 0.1, 3)
	m := fitAndScore(t, model, X, y)
	assert.Greater(t, m.R2, 0.9)
}

func TestGradientBoosting_ImprovesOverSingleStage(t *testing.T) {
	X, y := nonlinearData(200, 9)

	one := NewGradientBoostingRegressor(1, 0.1, 2)
	many := NewGradientBoostingRegressor(100, 0.1, 2)

	mOne := fitAndScore(t, one, X, y)
	mMany := fitAndScore(t, many, X, y)
	assert.Greater(t, mMany.R2, mOne.R2)
}

func TestStackingRegressor_FitPredict(t *testing.T) {
	X, y := nonlinearData(250, 10)

	ensemble := NewStackingRegressor([]Regressor{
		NewDecisionTreeRegressor(6, 2),
		NewRandomForestRegressor(20, 6, 42),
		NewLinearRegression(),
	})
	m := fitAndScore(t, ensemble, X, y)
	assert.Greater(t, m.R2, 0.85)

	params := ensemble.Params()
	assert.Equal(t, "ridge", params["final_estimator"])
}

func TestStackingRegressor_NoBases(t *testing.T) {
	ensemble := NewStackingRegressor(nil)
	err := ensemble.Fit([][]float64{{1}}, []float64{1})
	assert.Error(t, err)
}
