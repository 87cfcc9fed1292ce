package training

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Artifact file names in the model directory.
const (
	ConfigFile  = "model_config.json"
	ResultsFile = "all_model_results.csv"
)

// ModelMetadata is the JSON sidecar saved next to each model binary.
type ModelMetadata struct {
	ModelName      string         `json:"model_name"`
	TrainingDate   string         `json:"training_date"`
	Features       []string       `json:"features"`
	FeatureCount   int            `json:"feature_count"`
	RequiresScaled bool           `json:"requires_scaled"`
	Hyperparams    map[string]any `json:"hyperparameters"`
	TestMetrics    Metrics        `json:"test_metrics"`
	RandomSeed     int64          `json:"random_seed"`
	TrainRows      int            `json:"train_rows"`
	ValRows        int            `json:"val_rows"`
	TestRows       int            `json:"test_rows"`
	RunID          string         `json:"run_id"`
}

// ModelConfig is the active-model pointer file.
type ModelConfig struct {
	BestModelName string `json:"best_model_name"`
	LastUpdated   string `json:"last_updated"`
	Description   string `json:"description"`
}

// ModelFileName returns the gob file name for a model.
func ModelFileName(name string) string {
	return fmt.Sprintf("best_model_%s.gob", name)
}

// MetadataFileName returns the metadata file name for a model.
func MetadataFileName(name string) string {
	return fmt.Sprintf("model_metadata_%s.json", name)
}

// SaveReport persists the best model, its metadata, the full results
// table and the active-model pointer into modelDir. Any write error
// propagates to the caller.
func SaveReport(report *TrainReport, modelDir string) error {
	if report.Best == nil {
		return fmt.Errorf("report has no selected model")
	}
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	name := report.Best.Name
	if err := saveModelGob(filepath.Join(modelDir, ModelFileName(name)), report.Best.Model); err != nil {
		return err
	}

	meta := &ModelMetadata{
		ModelName:      name,
		TrainingDate:   report.TrainedAt.Format(time.RFC3339),
		Features:       report.Features,
		FeatureCount:   len(report.Features),
		RequiresScaled: report.Best.NeedsScaled,
		Hyperparams:    report.Best.Params,
		TestMetrics:    report.TestMetrics,
		RandomSeed:     report.Seed,
		TrainRows:      report.TrainRows,
		ValRows:        report.ValRows,
		TestRows:       report.TestRows,
		RunID:          report.RunID,
	}
	if err := writeJSON(filepath.Join(modelDir, MetadataFileName(name)), meta); err != nil {
		return err
	}

	if err := saveResultsCSV(filepath.Join(modelDir, ResultsFile), report); err != nil {
		return err
	}

	config := &ModelConfig{
		BestModelName: name,
		LastUpdated:   report.TrainedAt.Format(time.RFC3339),
		Description:   fmt.Sprintf("Best model selected by validation R² (%.4f)", report.Best.ValMetrics.R2),
	}
	return writeJSON(filepath.Join(modelDir, ConfigFile), config)
}

func saveModelGob(path string, model Regressor) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer file.Close()

	// Encode through the interface so the concrete type is recorded.
	if err := gob.NewEncoder(file).Encode(&model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModel reads a gob-encoded regressor from disk.
func LoadModel(path string) (Regressor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	var model Regressor
	if err := gob.NewDecoder(file).Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return model, nil
}

// LoadMetadata reads a model metadata sidecar.
func LoadMetadata(path string) (*ModelMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata: %w", err)
	}
	var meta ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse model metadata: %w", err)
	}
	return &meta, nil
}

// LoadConfig reads the active-model pointer file.
func LoadConfig(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model config: %w", err)
	}
	var config ModelConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse model config: %w", err)
	}
	if config.BestModelName == "" {
		return nil, fmt.Errorf("model config has no best_model_name")
	}
	return &config, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// saveResultsCSV writes one row per candidate and split, plus the test
// row for the selected model and the stacking ensemble when present.
func saveResultsCSV(path string, report *TrainReport) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"model", "split", "rmse", "mae", "r2", "mape"}); err != nil {
		return fmt.Errorf("failed to write results header: %w", err)
	}

	rows := make([]Metrics, 0, len(report.Results)*2+3)
	for _, result := range report.Results {
		rows = append(rows, result.TrainMetrics, result.ValMetrics)
	}
	rows = append(rows, report.TestMetrics)
	if report.Stacking != nil {
		rows = append(rows, report.Stacking.TrainMetrics, report.Stacking.ValMetrics)
	}

	for _, m := range rows {
		record := []string{
			m.Model,
			m.Split,
			strconv.FormatFloat(m.RMSE, 'f', 6, 64),
			strconv.FormatFloat(m.MAE, 'f', 6, 64),
			strconv.FormatFloat(m.R2, 'f', 6, 64),
			strconv.FormatFloat(m.MAPE, 'f', 6, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write results row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush results file: %w", err)
	}
	return nil
}
