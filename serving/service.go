// Package serving is the model service boundary: artifact loading,
// prediction and the agronomic insight layer behind the HTTP handlers.
package serving

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agridata-gh/maizeyield/preprocess"
	"github.com/agridata-gh/maizeyield/training"
	"github.com/agridata-gh/maizeyield/utils"
)

// ErrModelUnavailable is returned by prediction calls when no model could
// be loaded.
var ErrModelUnavailable = errors.New("no trained model is available")

// PredictionInput is one prediction request after JSON decoding.
type PredictionInput struct {
	District     string   `json:"district"`
	Year         int      `json:"year"`
	Rainfall     float64  `json:"rainfall"`
	Temperature  float64  `json:"temperature"`
	Humidity     float64  `json:"humidity"`
	Sunlight     float64  `json:"sunlight"`
	SoilMoisture float64  `json:"soil_moisture"`
	SoilType     string   `json:"soil_type,omitempty"`
	PestRisk     int      `json:"pest_risk"`
	PFJPolicy    int      `json:"pfj_policy"`
	YieldLag1    *float64 `json:"yield_lag1,omitempty"`
	YieldLag2    *float64 `json:"yield_lag2,omitempty"`
}

// ConfidenceInterval bounds a prediction.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// PredictionResult is the full prediction payload.
type PredictionResult struct {
	PredictedYield     float64            `json:"predicted_yield"`
	Unit               string             `json:"unit"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	RiskFactors        []string           `json:"risk_factors"`
	Recommendations    []string           `json:"recommendations"`
	ModelName          string             `json:"model_name"`
	FeaturesUsed       int                `json:"features_used"`
}

// ModelService owns the loaded model, its metadata and the scaler. A
// missing model is a soft failure at load time and a hard error at
// predict time.
type ModelService struct {
	modelDir string

	mu       sync.RWMutex
	model    training.Regressor
	metadata *training.ModelMetadata
	scaler   *preprocess.StandardScaler
	degraded bool
}

// NewModelService creates the service and attempts an initial load.
// Load failure leaves the service running without a model.
func NewModelService(modelDir string) *ModelService {
	svc := &ModelService{modelDir: modelDir}
	if err := svc.Reload(); err != nil {
		utils.GetLogger().Warn("Model service starting without a model",
			utils.Component("model_service"),
			utils.String("model_dir", modelDir),
			utils.String("reason", err.Error()))
	}
	return svc
}

// Reload loads model artifacts from the model directory. The pointer file
// is authoritative; when it is missing or broken the newest
// best_model_*.gob is used and the service runs in a degraded mode.
func (s *ModelService) Reload() error {
	logger := utils.GetLogger()

	modelPath, degraded, err := s.resolveModelPath()
	if err != nil {
		return err
	}
	if degraded {
		logger.Warn("Model pointer file unusable, falling back to newest model artifact",
			utils.Component("model_service"),
			utils.String("model_path", modelPath))
	}

	model, err := training.LoadModel(modelPath)
	if err != nil {
		return err
	}

	name := modelNameFromPath(modelPath)
	metadata, err := training.LoadMetadata(filepath.Join(s.modelDir, training.MetadataFileName(name)))
	if err != nil {
		return fmt.Errorf("model %s has no readable metadata: %w", name, err)
	}

	var scaler *preprocess.StandardScaler
	if metadata.RequiresScaled {
		scaler, err = preprocess.LoadScaler(filepath.Join(s.modelDir, preprocess.ScalerFile))
		if err != nil {
			return fmt.Errorf("model %s requires scaled inputs but the scaler failed to load: %w", name, err)
		}
	}

	s.mu.Lock()
	s.model = model
	s.metadata = metadata
	s.scaler = scaler
	s.degraded = degraded
	s.mu.Unlock()

	logger.Info("Model loaded",
		utils.Component("model_service"),
		utils.String("model", metadata.ModelName),
		utils.Int("features", metadata.FeatureCount),
		utils.Bool("scaled_inputs", metadata.RequiresScaled))
	return nil
}

// resolveModelPath prefers the pointer file, then falls back to the
// lexically newest model artifact.
func (s *ModelService) resolveModelPath() (string, bool, error) {
	config, err := training.LoadConfig(filepath.Join(s.modelDir, training.ConfigFile))
	if err == nil {
		return filepath.Join(s.modelDir, training.ModelFileName(config.BestModelName)), false, nil
	}

	matches, globErr := filepath.Glob(filepath.Join(s.modelDir, "best_model_*.gob"))
	if globErr != nil || len(matches) == 0 {
		return "", false, fmt.Errorf("no model artifacts in %s: %w", s.modelDir, err)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true, nil
}

func modelNameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimPrefix(base, "best_model_")
	return strings.TrimSuffix(base, ".gob")
}

// Available reports whether a model is loaded.
func (s *ModelService) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Degraded reports whether the model was loaded through the glob
// fallback rather than the pointer file.
func (s *ModelService) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Metadata returns the loaded model's metadata, or nil.
func (s *ModelService) Metadata() *training.ModelMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

// FeatureImportance returns the loaded model's top-N importances, empty
// when the model family does not expose them.
func (s *ModelService) FeatureImportance(topN int) []training.FeatureWeight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil || s.metadata == nil {
		return nil
	}
	imp, ok := s.model.(training.FeatureImportancer)
	if !ok {
		return []training.FeatureWeight{}
	}
	values := imp.FeatureImportances()
	if len(values) != len(s.metadata.Features) {
		return []training.FeatureWeight{}
	}
	weights := make([]training.FeatureWeight, len(values))
	for i, v := range values {
		weights[i] = training.FeatureWeight{Feature: s.metadata.Features[i], Importance: v}
	}
	sort.SliceStable(weights, func(a, b int) bool {
		return weights[a].Importance > weights[b].Importance
	})
	if topN > 0 && topN < len(weights) {
		weights = weights[:topN]
	}
	return weights
}

// Predict runs the full inference path for one input: feature
// engineering, vector assembly in training feature order, optional
// scaling, model prediction and the insight layer.
func (s *ModelService) Predict(input *PredictionInput) (*PredictionResult, error) {
	s.mu.RLock()
	model, metadata, scaler := s.model, s.metadata, s.scaler
	s.mu.RUnlock()

	if model == nil || metadata == nil {
		return nil, ErrModelUnavailable
	}

	row := inputToRow(input)
	preprocess.EngineerRow(row)

	// Unknown history defaults the raw lag features to zero; the lag
	// deltas were already forced to zero by the engineering step.
	for _, col := range []string{preprocess.ColYieldLag1, preprocess.ColYieldLag2} {
		if _, ok := row.Float(col); !ok {
			row.SetFloat(col, 0)
		}
	}

	vector, err := assembleVector(row, metadata.Features)
	if err != nil {
		return nil, err
	}

	if metadata.RequiresScaled {
		if scaler == nil {
			return nil, fmt.Errorf("model requires scaled inputs but no scaler is loaded")
		}
		vector, err = scaleVector(scaler, metadata.Features, vector)
		if err != nil {
			return nil, err
		}
	}

	prediction, err := model.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	return &PredictionResult{
		PredictedYield:     prediction,
		Unit:               "tons/ha",
		ConfidenceInterval: confidenceInterval(prediction),
		RiskFactors:        riskFactors(input),
		Recommendations:    recommendations(input, prediction),
		ModelName:          metadata.ModelName,
		FeaturesUsed:       len(vector),
	}, nil
}

// PredictBatch predicts every input, failing on the first bad one with
// its position in the batch.
func (s *ModelService) PredictBatch(inputs []*PredictionInput) ([]*PredictionResult, error) {
	results := make([]*PredictionResult, len(inputs))
	for i, input := range inputs {
		result, err := s.Predict(input)
		if err != nil {
			if errors.Is(err, ErrModelUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		results[i] = result
	}
	return results, nil
}

func inputToRow(input *PredictionInput) preprocess.Row {
	row := preprocess.Row{
		preprocess.ColDistrict:     input.District,
		preprocess.ColYear:         float64(input.Year),
		preprocess.ColRainfall:     input.Rainfall,
		preprocess.ColTemperature:  input.Temperature,
		preprocess.ColHumidity:     input.Humidity,
		preprocess.ColSunlight:     input.Sunlight,
		preprocess.ColSoilMoisture: input.SoilMoisture,
		preprocess.ColPestRisk:     float64(input.PestRisk),
		preprocess.ColPFJPolicy:    float64(input.PFJPolicy),
	}
	if input.SoilType != "" {
		row[preprocess.ColSoilType] = input.SoilType
	}
	if input.YieldLag1 != nil {
		row.SetFloat(preprocess.ColYieldLag1, *input.YieldLag1)
	}
	if input.YieldLag2 != nil {
		row.SetFloat(preprocess.ColYieldLag2, *input.YieldLag2)
	}
	return row
}

// assembleVector orders the row values by the training feature list. The
// error names every absent feature, not just the first.
func assembleVector(row preprocess.Row, features []string) ([]float64, error) {
	vector := make([]float64, len(features))
	var missing []string
	for i, col := range features {
		v, ok := row.Float(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		vector[i] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required features: %s", strings.Join(missing, ", "))
	}
	return vector, nil
}

// scaleVector standardizes only the features the scaler was fit on,
// passing the rest (year, binary flags' engineered columns trained
// unscaled) straight through.
func scaleVector(scaler *preprocess.StandardScaler, features []string, vector []float64) ([]float64, error) {
	pos := make(map[string]int, len(scaler.Features))
	for i, col := range scaler.Features {
		pos[col] = i
	}
	out := make([]float64, len(vector))
	copy(out, vector)
	for i, col := range features {
		if j, ok := pos[col]; ok {
			out[i] = (vector[i] - scaler.Mean[j]) / scaler.Std[j]
		}
	}
	return out, nil
}
