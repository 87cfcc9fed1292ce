package training

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomizedSearch_FindsBetterDepth(t *testing.T) {
	X, y := nonlinearData(300, 20)

	factory := func(params map[string]any) Regressor {
		return NewDecisionTreeRegressor(paramInt(params, "max_depth", 1), 2)
	}
	space := ParamSpace{"max_depth": {1, 8}}

	result, err := RandomizedSearch(factory, space, X, y, TuneConfig{Iterations: 10, Folds: 3, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 8, paramInt(result.BestParams, "max_depth", 0),
		"the deeper tree wins on this target")
	assert.Greater(t, result.BestScore, 0.8)
	assert.GreaterOrEqual(t, result.Evaluated, 1)
}

func TestRandomizedSearch_Deterministic(t *testing.T) {
	X, y := nonlinearData(150, 21)
	factory := func(params map[string]any) Regressor {
		return NewDecisionTreeRegressor(paramInt(params, "max_depth", 3), 2)
	}
	space := ParamSpace{"max_depth": {2, 4, 6, 8}}
	config := TuneConfig{Iterations: 6, Folds: 3, Seed: 7}

	a, err := RandomizedSearch(factory, space, X, y, config)
	require.NoError(t, err)
	b, err := RandomizedSearch(factory, space, X, y, config)
	require.NoError(t, err)

	assert.Equal(t, a.BestParams, b.BestParams)
	assert.Equal(t, a.BestScore, b.BestScore)
}

func TestRandomizedSearch_Errors(t *testing.T) {
	factory := func(params map[string]any) Regressor { return NewLinearRegression() }

	t.Run("empty space", func(t *testing.T) {
		_, err := RandomizedSearch(factory, ParamSpace{}, [][]float64{{1}}, []float64{1},
			DefaultTuneConfig(42))
		assert.Error(t, err)
	})

	t.Run("too few samples for folds", func(t *testing.T) {
		_, err := RandomizedSearch(factory, ParamSpace{"a": {1}},
			[][]float64{{1}, {2}}, []float64{1, 2},
			TuneConfig{Iterations: 3, Folds: 3, Seed: 42})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "3-fold")
	})
}

func TestKFoldSplit_CoversAllIndices(t *testing.T) {
	folds := kFoldSplit(10, 3, 42)
	require.Len(t, folds, 3)

	seen := make(map[int]int)
	for _, fold := range folds {
		for _, i := range fold {
			seen[i]++
		}
	}
	assert.Len(t, seen, 10)
	for i, n := range seen {
		assert.Equal(t, 1, n, "index %d", i)
	}
}

func TestOversample_BalancesBins(t *testing.T) {
	// Skewed target: many low values, few high ones.
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, 1.0+float64(i%5)*0.01)
	}
	for i := 0; i < 5; i++ {
		X = append(X, []float64{100 + float64(i)})
		y = append(y, 5.0+float64(i)*0.1)
	}

	outX, outY, err := Oversample(X, y, 42)
	require.NoError(t, err)

	assert.Greater(t, len(outY), len(y), "minority strata are re-drawn")
	require.Equal(t, len(outX), len(outY))

	// Every oversampled row is a copy of an original row.
	originals := make(map[float64]bool)
	for _, v := range y {
		originals[v] = true
	}
	for _, v := range outY {
		assert.True(t, originals[v])
	}
}

func TestOversample_Deterministic(t *testing.T) {
	X, y := nonlinearData(60, 22)

	x1, y1, err := Oversample(X, y, 42)
	require.NoError(t, err)
	x2, y2, err := Oversample(X, y, 42)
	require.NoError(t, err)

	assert.Equal(t, y1, y2)
	assert.Equal(t, x1, x2)
}

func TestOversample_TooFewSamples(t *testing.T) {
	_, _, err := Oversample([][]float64{{1}}, []float64{1}, 42)
	assert.Error(t, err)
}

func TestOversample_DoesNotModifyInputs(t *testing.T) {
	X, y := nonlinearData(60, 23)
	yCopy := append([]float64(nil), y...)

	_, _, err := Oversample(X, y, 42)
	require.NoError(t, err)
	assert.Equal(t, yCopy, y)
}
