package training

import (
	"fmt"
)

// StackingRegressor combines base regressors through a ridge final
// estimator fit on their predictions.
type StackingRegressor struct {
	Bases   []Regressor
	Final   *RidgeRegression
	Trained bool
}

// NewStackingRegressor creates a stacking ensemble over the given bases.
func NewStackingRegressor(bases []Regressor) *StackingRegressor {
	return &StackingRegressor{
		Bases: bases,
		Final: NewRidgeRegression(1.0),
	}
}

// Fit trains every base on the data, then fits the ridge final estimator
// on the matrix of base predictions.
func (st *StackingRegressor) Fit(X [][]float64, y []float64) error {
	if len(st.Bases) == 0 {
		return fmt.Errorf("stacking ensemble has no base models")
	}
	if err := validateTrainingData(X, y); err != nil {
		return err
	}

	for _, base := range st.Bases {
		if err := base.Fit(X, y); err != nil {
			return fmt.Errorf("base model %s failed: %w", base.Name(), err)
		}
	}

	meta := make([][]float64, len(X))
	for i, x := range X {
		row := make([]float64, len(st.Bases))
		for j, base := range st.Bases {
			p, err := base.Predict(x)
			if err != nil {
				return fmt.Errorf("base model %s failed: %w", base.Name(), err)
			}
			row[j] = p
		}
		meta[i] = row
	}

	if err := st.Final.Fit(meta, y); err != nil {
		return fmt.Errorf("final estimator failed: %w", err)
	}
	st.Trained = true
	return nil
}

// Predict feeds the base predictions through the final estimator.
func (st *StackingRegressor) Predict(x []float64) (float64, error) {
	if !st.Trained {
		return 0, fmt.Errorf("model has not been trained")
	}
	row := make([]float64, len(st.Bases))
	for j, base := range st.Bases {
		p, err := base.Predict(x)
		if err != nil {
			return 0, err
		}
		row[j] = p
	}
	return st.Final.Predict(row)
}

func (st *StackingRegressor) Name() string { return "stacking" }

func (st *StackingRegressor) Params() map[string]any {
	names := make([]string, len(st.Bases))
	for i, base := range st.Bases {
		names[i] = base.Name()
	}
	return map[string]any{"base_models": names, "final_estimator": "ridge"}
}
