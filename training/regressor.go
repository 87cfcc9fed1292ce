package training

import (
	"encoding/gob"
	"fmt"
)

// Regressor is the contract every candidate model implements. Fields of
// implementations are exported so models gob-encode for persistence.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
	Name() string
	Params() map[string]any
}

// FeatureImportancer is implemented by tree-family models that can report
// per-feature importances aligned with the training feature order.
type FeatureImportancer interface {
	FeatureImportances() []float64
}

func init() {
	// Register every concrete regressor so a Regressor interface value
	// round-trips through gob.
	gob.Register(&LinearRegression{})
	gob.Register(&RidgeRegression{})
	gob.Register(&LassoRegression{})
	gob.Register(&DecisionTreeRegressor{})
	gob.Register(&RandomForestRegressor{})
	gob.Register(&GradientBoostingRegressor{})
	gob.Register(&StackingRegressor{})
}

// PredictBatch runs Predict over every row of X.
func PredictBatch(model Regressor, X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, x := range X {
		p, err := model.Predict(x)
		if err != nil {
			return nil, fmt.Errorf("prediction failed at row %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

func validateTrainingData(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("no training samples")
	}
	if len(X) != len(y) {
		return fmt.Errorf("sample count %d does not match target count %d", len(X), len(y))
	}
	width := len(X[0])
	if width == 0 {
		return fmt.Errorf("training samples have no features")
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	return nil
}
