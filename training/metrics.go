// Package training implements the candidate model registry, regressors,
// hyperparameter search, evaluation, selection and artifact persistence.
package training

import (
	"fmt"
	"math"
)

// mapeEpsilon keeps the MAPE denominator away from zero targets.
const mapeEpsilon = 1e-8

// Metrics holds the regression metrics for one model on one split.
type Metrics struct {
	Model string  `json:"model"`
	Split string  `json:"split"`
	RMSE  float64 `json:"rmse"`
	MAE   float64 `json:"mae"`
	R2    float64 `json:"r2"`
	MAPE  float64 `json:"mape"`
}

// Evaluate computes RMSE, MAE, R² and MAPE for predictions against targets.
func Evaluate(yTrue, yPred []float64) (Metrics, error) {
	if len(yTrue) == 0 {
		return Metrics{}, fmt.Errorf("cannot evaluate empty target slice")
	}
	if len(yTrue) != len(yPred) {
		return Metrics{}, fmt.Errorf("target and prediction lengths differ: %d vs %d",
			len(yTrue), len(yPred))
	}

	n := float64(len(yTrue))
	var sumSq, sumAbs, sumPct float64
	var mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= n

	var ssRes, ssTot float64
	for i := range yTrue {
		diff := yTrue[i] - yPred[i]
		sumSq += diff * diff
		sumAbs += math.Abs(diff)
		sumPct += math.Abs(diff) / (math.Abs(yTrue[i]) + mapeEpsilon)
		ssRes += diff * diff
		ssTot += (yTrue[i] - mean) * (yTrue[i] - mean)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return Metrics{
		RMSE: math.Sqrt(sumSq / n),
		MAE:  sumAbs / n,
		R2:   r2,
		MAPE: sumPct / n * 100,
	}, nil
}
