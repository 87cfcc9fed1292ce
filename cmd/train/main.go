// Command train fits every candidate model on the preprocessed
// partitions, selects the best by validation R² and persists the
// artifacts the serving layer loads.
package main

import (
	"flag"
	"log"
	"path/filepath"

	"github.com/agridata-gh/maizeyield/preprocess"
	"github.com/agridata-gh/maizeyield/training"
	"github.com/agridata-gh/maizeyield/utils"
)

func main() {
	var (
		processedDir = flag.String("data", "", "directory with train/val/test CSVs (defaults to paths.processed_dir)")
		modelDir     = flag.String("models", "", "directory for model artifacts (defaults to paths.model_dir)")
		tune         = flag.Bool("tune", false, "run randomized hyperparameter search")
		oversample   = flag.Bool("oversample", true, "balance the target distribution before the final fit")
		stacking     = flag.Bool("stacking", false, "prepare a stacking ensemble over the top 3 models")
		seed         = flag.Int64("seed", 0, "random seed (defaults to training.random_seed)")
	)
	flag.Parse()

	if err := utils.LoadGlobalConfig(); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	config := utils.GetConfigManager().GetConfig()
	if err := utils.InitLogger(config.Logging); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	logger := utils.GetLogger()

	dataDir := config.Paths.ProcessedDir
	if *processedDir != "" {
		dataDir = *processedDir
	}
	outDir := config.Paths.ModelDir
	if *modelDir != "" {
		outDir = *modelDir
	}
	randomSeed := config.Training.RandomSeed
	if *seed != 0 {
		randomSeed = *seed
	}

	train, err := preprocess.ReadCSV(filepath.Join(dataDir, "train.csv"))
	if err != nil {
		logger.Fatal("Failed to load training partition", err, utils.Component("train"))
	}
	val, err := preprocess.ReadCSV(filepath.Join(dataDir, "val.csv"))
	if err != nil {
		logger.Fatal("Failed to load validation partition", err, utils.Component("train"))
	}
	test, err := preprocess.ReadCSV(filepath.Join(dataDir, "test.csv"))
	if err != nil {
		logger.Fatal("Failed to load test partition", err, utils.Component("train"))
	}
	scaler, err := preprocess.LoadScaler(filepath.Join(outDir, preprocess.ScalerFile))
	if err != nil {
		logger.Fatal("Failed to load scaler", err, utils.Component("train"))
	}

	trainer := training.NewTrainer(training.TrainerConfig{
		Seed:       randomSeed,
		Tune:       *tune,
		TuneIter:   config.Training.TuneIter,
		Oversample: *oversample,
		Stacking:   *stacking,
	})

	report, err := trainer.TrainAll(train, val, test, scaler)
	if err != nil {
		logger.Fatal("Training failed", err, utils.Component("train"))
	}
	if err := training.SaveReport(report, outDir); err != nil {
		logger.Fatal("Failed to save model artifacts", err, utils.Component("train"))
	}

	if history, err := training.OpenRunHistory(config.Paths.HistoryDB); err == nil {
		defer history.Close()
		if err := history.Record(report); err != nil {
			logger.Warn("Failed to record training run",
				utils.Component("train"),
				utils.String("reason", err.Error()))
		}
	}

	logger.Info("Training complete",
		utils.Component("train"),
		utils.String("best_model", report.Best.Name),
		utils.Float("val_r2", report.Best.ValMetrics.R2),
		utils.Float("test_r2", report.TestMetrics.R2),
		utils.String("model_dir", outDir))
}
