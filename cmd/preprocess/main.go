// Command preprocess runs the data pipeline: raw CSV in, cleaned and
// split partitions plus the fitted scaler out.
package main

import (
	"flag"
	"log"

	"github.com/agridata-gh/maizeyield/preprocess"
	"github.com/agridata-gh/maizeyield/utils"
)

func main() {
	var (
		rawPath      = flag.String("data", "", "path to the raw dataset CSV (defaults to paths.raw_data)")
		processedDir = flag.String("out", "", "output directory for the split CSVs (defaults to paths.processed_dir)")
		modelDir     = flag.String("models", "", "directory for the scaler and metadata (defaults to paths.model_dir)")
		outliers     = flag.String("outliers", "", "outlier policy: cap or remove (defaults to training.outlier_method)")
		seed         = flag.Int64("seed", 0, "random seed for the split (defaults to training.random_seed)")
	)
	flag.Parse()

	if err := utils.LoadGlobalConfig(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	config := utils.GetConfigManager().GetConfig()
	if err := utils.InitLogger(config.Logging); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	pipelineConfig := preprocess.PipelineConfig{
		RawPath:       config.Paths.RawData,
		ProcessedDir:  config.Paths.ProcessedDir,
		ModelDir:      config.Paths.ModelDir,
		OutlierMethod: config.Training.OutlierMethod,
		Split: preprocess.SplitConfig{
			TrainSize:  config.Training.TrainSize,
			ValSize:    config.Training.ValSize,
			TestSize:   config.Training.TestSize,
			RandomSeed: config.Training.RandomSeed,
		},
	}
	if *rawPath != "" {
		pipelineConfig.RawPath = *rawPath
	}
	if *processedDir != "" {
		pipelineConfig.ProcessedDir = *processedDir
	}
	if *modelDir != "" {
		pipelineConfig.ModelDir = *modelDir
	}
	if *outliers != "" {
		pipelineConfig.OutlierMethod = *outliers
	}
	if *seed != 0 {
		pipelineConfig.Split.RandomSeed = *seed
	}

	result, err := preprocess.Run(pipelineConfig)
	if err != nil {
		utils.GetLogger().Fatal("Preprocessing failed", err, utils.Component("preprocess"))
	}

	utils.GetLogger().Info("Preprocessing complete",
		utils.Component("preprocess"),
		utils.Int("train_rows", result.Train.Len()),
		utils.Int("val_rows", result.Val.Len()),
		utils.Int("test_rows", result.Test.Len()),
		utils.String("processed_dir", pipelineConfig.ProcessedDir),
		utils.String("model_dir", pipelineConfig.ModelDir))
}
