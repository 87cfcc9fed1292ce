package training

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_KnownValues(t *testing.T) {
	yTrue := []float64{3, -0.5, 2, 7}
	yPred := []float64{2.5, 0.0, 2, 8}

	m, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)

	assert.InDelta(t, 0.6123724357, m.RMSE, 1e-9)
	assert.InDelta(t, 0.5, m.MAE, 1e-9)
	assert.InDelta(t, 0.9486081370, m.R2, 1e-9)
}

func TestEvaluate_PerfectPrediction(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	m, err := Evaluate(y, y)
	require.NoError(t, err)

	assert.Zero(t, m.RMSE)
	assert.Zero(t, m.MAE)
	assert.Equal(t, 1.0, m.R2)
	assert.Zero(t, m.MAPE)
}

func TestEvaluate_ZeroTargetDoesNotExplodeMAPE(t *testing.T) {
	m, err := Evaluate([]float64{0, 1, 2}, []float64{0.1, 1, 2})
	require.NoError(t, err)
	assert.False(t, math.IsInf(m.MAPE, 1))
	assert.False(t, math.IsNaN(m.MAPE))
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(nil, nil)
	assert.Error(t, err)

	_, err = Evaluate([]float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lengths differ")
}

func TestEvaluate_ConstantTarget(t *testing.T) {
	m, err := Evaluate([]float64{2, 2, 2}, []float64{2, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.R2, "zero total variance yields R² of 0, not NaN")
}
