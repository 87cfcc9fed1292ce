package training

import (
	"fmt"

	"github.com/agridata-gh/maizeyield/preprocess"
)

// FeatureList returns the model feature columns of a dataset: every
// numeric column except the target, in dataset column order.
func FeatureList(ds *preprocess.Dataset) []string {
	var features []string
	for _, col := range ds.NumericColumns() {
		if col == preprocess.ColYield {
			continue
		}
		features = append(features, col)
	}
	return features
}

// Matrix extracts the feature matrix in the given column order. Every
// row must carry every feature.
func Matrix(ds *preprocess.Dataset, features []string) ([][]float64, error) {
	X := make([][]float64, ds.Len())
	for i, row := range ds.Rows {
		x := make([]float64, len(features))
		for j, col := range features {
			v, ok := row.Float(col)
			if !ok {
				return nil, fmt.Errorf("row %d is missing feature %s", i, col)
			}
			x[j] = v
		}
		X[i] = x
	}
	return X, nil
}

// Target extracts the yield column. Every row must carry a target.
func Target(ds *preprocess.Dataset) ([]float64, error) {
	y := make([]float64, ds.Len())
	for i, row := range ds.Rows {
		v, ok := row.Float(preprocess.ColYield)
		if !ok {
			return nil, fmt.Errorf("row %d is missing the target column %s", i, preprocess.ColYield)
		}
		y[i] = v
	}
	return y, nil
}
