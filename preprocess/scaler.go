package preprocess

import (
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes features to zero mean and unit variance.
// It is fit once on the training partition and then only transforms.
type StandardScaler struct {
	Features []string
	Mean     []float64
	Std      []float64
	Fitted   bool
}

// ScalingFeatures returns the dataset's numeric columns eligible for
// scaling: everything numeric except the target and the year.
func ScalingFeatures(ds *Dataset) []string {
	var features []string
	for _, col := range ds.NumericColumns() {
		if col == ColYield || col == ColYear {
			continue
		}
		features = append(features, col)
	}
	return features
}

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-feature mean and standard deviation from the dataset.
// Features with zero variance get std 1 so transforming is a no-op shift.
func (s *StandardScaler) Fit(ds *Dataset, features []string) error {
	if len(features) == 0 {
		return fmt.Errorf("no features to fit scaler on")
	}
	if ds.Len() == 0 {
		return fmt.Errorf("cannot fit scaler on empty dataset")
	}

	s.Features = make([]string, len(features))
	copy(s.Features, features)
	s.Mean = make([]float64, len(features))
	s.Std = make([]float64, len(features))

	for i, col := range features {
		values := ds.ColumnFloats(col)
		if len(values) == 0 {
			return fmt.Errorf("feature %s has no values to fit on", col)
		}
		mean, std := stat.MeanStdDev(values, nil)
		if std == 0 || len(values) < 2 {
			std = 1
		}
		s.Mean[i] = mean
		s.Std[i] = std
	}

	s.Fitted = true
	return nil
}

// Transform standardizes the scaler's features in every row, in place.
// Rows missing a feature are left untouched for that feature.
func (s *StandardScaler) Transform(ds *Dataset) error {
	if !s.Fitted {
		return fmt.Errorf("scaler has not been fitted")
	}
	for _, row := range ds.Rows {
		for i, col := range s.Features {
			if v, ok := row.Float(col); ok {
				row.SetFloat(col, (v-s.Mean[i])/s.Std[i])
			}
		}
	}
	return nil
}

// TransformVector standardizes a feature vector ordered like s.Features.
func (s *StandardScaler) TransformVector(x []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, fmt.Errorf("scaler has not been fitted")
	}
	if len(x) != len(s.Features) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.Features), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// InverseTransformVector undoes TransformVector.
func (s *StandardScaler) InverseTransformVector(x []float64) ([]float64, error) {
	if !s.Fitted {
		return nil, fmt.Errorf("scaler has not been fitted")
	}
	if len(x) != len(s.Features) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.Features), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v*s.Std[i] + s.Mean[i]
	}
	return out, nil
}

// Save persists the scaler as a gob binary.
func (s *StandardScaler) Save(path string) error {
	if !s.Fitted {
		return fmt.Errorf("refusing to save unfitted scaler")
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scaler file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(s); err != nil {
		return fmt.Errorf("failed to encode scaler: %w", err)
	}
	return nil
}

// LoadScaler reads a gob-encoded scaler from disk.
func LoadScaler(path string) (*StandardScaler, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scaler file: %w", err)
	}
	defer file.Close()

	var scaler StandardScaler
	if err := gob.NewDecoder(file).Decode(&scaler); err != nil {
		return nil, fmt.Errorf("failed to decode scaler: %w", err)
	}
	return &scaler, nil
}
