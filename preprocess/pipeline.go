package preprocess

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agridata-gh/maizeyield/utils"
)

// Artifact file names shared with the training and serving layers.
const (
	ScalerFile   = "scaler.gob"
	MetadataFile = "preprocessing_metadata.json"
)

// PipelineConfig drives a full preprocessing run.
type PipelineConfig struct {
	RawPath       string
	ProcessedDir  string
	ModelDir      string
	OutlierMethod string
	Split         SplitConfig
}

// Metadata records what a preprocessing run produced.
type Metadata struct {
	ProcessedAt    string        `json:"processed_at"`
	RawRows        int           `json:"raw_rows"`
	CleanRows      int           `json:"clean_rows"`
	TrainRows      int           `json:"train_rows"`
	ValRows        int           `json:"val_rows"`
	TestRows       int           `json:"test_rows"`
	RandomSeed     int64         `json:"random_seed"`
	OutlierMethod  string        `json:"outlier_method"`
	Cleaning       CleaningStats `json:"cleaning"`
	Columns        []string      `json:"columns"`
	ScaledFeatures []string      `json:"scaled_features"`
}

// Result bundles the outputs of a pipeline run.
type Result struct {
	Train    *Dataset
	Val      *Dataset
	Test     *Dataset
	Scaler   *StandardScaler
	Metadata *Metadata
}

// Run executes the full preprocessing pipeline: load, clean, engineer,
// split, fit the scaler on train only, and persist every artifact.
func Run(config PipelineConfig) (*Result, error) {
	logger := utils.GetLogger()

	ds, err := ReadCSV(config.RawPath)
	if err != nil {
		return nil, err
	}
	rawRows := ds.Len()
	logger.Info("Loaded raw dataset",
		utils.Component("preprocess"),
		utils.String("path", config.RawPath),
		utils.Int("rows", rawRows))

	cleaner, err := NewCleaner(config.OutlierMethod)
	if err != nil {
		return nil, err
	}
	cleanStats, err := cleaner.Clean(ds)
	if err != nil {
		return nil, fmt.Errorf("cleaning failed: %w", err)
	}
	logger.Info("Cleaned dataset",
		utils.Component("preprocess"),
		utils.Int("rows", ds.Len()),
		utils.Int("values_imputed", cleanStats.ValuesImputed),
		utils.Int("duplicates_removed", cleanStats.DuplicatesRemoved),
		utils.Int("outliers_capped", cleanStats.OutliersCapped),
		utils.Int("outliers_removed", cleanStats.OutliersRemoved))

	EngineerFeatures(ds)

	train, val, test, err := Split(ds, config.Split)
	if err != nil {
		return nil, fmt.Errorf("split failed: %w", err)
	}
	logger.Info("Split dataset",
		utils.Component("preprocess"),
		utils.Int("train", train.Len()),
		utils.Int("val", val.Len()),
		utils.Int("test", test.Len()))

	scaler := NewStandardScaler()
	features := ScalingFeatures(train)
	if err := scaler.Fit(train, features); err != nil {
		return nil, fmt.Errorf("scaler fit failed: %w", err)
	}

	meta := &Metadata{
		ProcessedAt:    time.Now().UTC().Format(time.RFC3339),
		RawRows:        rawRows,
		CleanRows:      ds.Len(),
		TrainRows:      train.Len(),
		ValRows:        val.Len(),
		TestRows:       test.Len(),
		RandomSeed:     config.Split.RandomSeed,
		OutlierMethod:  config.OutlierMethod,
		Cleaning:       *cleanStats,
		Columns:        ds.Columns,
		ScaledFeatures: scaler.Features,
	}

	result := &Result{Train: train, Val: val, Test: test, Scaler: scaler, Metadata: meta}
	if err := saveArtifacts(config, result); err != nil {
		return nil, err
	}
	return result, nil
}

func saveArtifacts(config PipelineConfig, result *Result) error {
	partitions := map[string]*Dataset{
		"train.csv": result.Train,
		"val.csv":   result.Val,
		"test.csv":  result.Test,
	}
	for name, part := range partitions {
		if err := part.WriteCSV(filepath.Join(config.ProcessedDir, name)); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	// Scaled copies for the models that train on standardized inputs.
	for name, part := range partitions {
		scaled := part.Clone()
		if err := result.Scaler.Transform(scaled); err != nil {
			return fmt.Errorf("failed to scale %s: %w", name, err)
		}
		scaledName := "scaled_" + name
		if err := scaled.WriteCSV(filepath.Join(config.ProcessedDir, scaledName)); err != nil {
			return fmt.Errorf("failed to write %s: %w", scaledName, err)
		}
	}

	if err := result.Scaler.Save(filepath.Join(config.ModelDir, ScalerFile)); err != nil {
		return err
	}
	if err := SaveMetadata(filepath.Join(config.ModelDir, MetadataFile), result.Metadata); err != nil {
		return err
	}
	return nil
}

// SaveMetadata writes preprocessing metadata as indented JSON.
func SaveMetadata(path string, meta *Metadata) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads preprocessing metadata from disk.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}
