package training

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agridata-gh/maizeyield/preprocess"
	"github.com/agridata-gh/maizeyield/utils"
)

// TrainerConfig controls a full training run.
type TrainerConfig struct {
	Seed       int64
	Tune       bool
	TuneIter   int
	Oversample bool
	Stacking   bool
}

// ModelResult holds one trained candidate with its metrics.
type ModelResult struct {
	Name         string
	Model        Regressor
	NeedsScaled  bool
	Params       map[string]any
	TrainMetrics Metrics
	ValMetrics   Metrics
}

// TrainReport is the outcome of a training run.
type TrainReport struct {
	RunID       string
	TrainedAt   time.Time
	Seed        int64
	Features    []string
	Results     []ModelResult
	Best        *ModelResult
	TestMetrics Metrics
	Stacking    *ModelResult
	TrainRows   int
	ValRows     int
	TestRows    int
}

// Trainer fits every registered candidate and selects the best by
// validation R².
type Trainer struct {
	Candidates []Candidate
	Config     TrainerConfig
}

// NewTrainer creates a trainer over the default candidate registry.
func NewTrainer(config TrainerConfig) *Trainer {
	return &Trainer{
		Candidates: DefaultCandidates(config.Seed),
		Config:     config,
	}
}

// TrainAll fits every candidate on the partitions, evaluates on train and
// validation, selects the best by validation R² (earlier registry entry
// wins ties), and evaluates the winner on the held-out test set. Scaled
// candidates see standardized inputs through the scaler; the target is
// never scaled.
func (tr *Trainer) TrainAll(train, val, test *preprocess.Dataset, scaler *preprocess.StandardScaler) (*TrainReport, error) {
	logger := utils.GetLogger()

	features := FeatureList(train)
	if len(features) == 0 {
		return nil, fmt.Errorf("training set has no feature columns")
	}

	raw, err := buildPartitions(train, val, test, features)
	if err != nil {
		return nil, err
	}
	scaled, err := buildScaledPartitions(train, val, test, features, scaler)
	if err != nil {
		return nil, err
	}

	report := &TrainReport{
		RunID:     uuid.New().String(),
		TrainedAt: time.Now().UTC(),
		Seed:      tr.Config.Seed,
		Features:  features,
		TrainRows: train.Len(),
		ValRows:   val.Len(),
		TestRows:  test.Len(),
	}

	for _, candidate := range tr.Candidates {
		parts := raw
		if candidate.NeedsScaled {
			parts = scaled
		}

		result, err := tr.trainCandidate(candidate, parts)
		if err != nil {
			return nil, fmt.Errorf("training %s failed: %w", candidate.Name, err)
		}
		report.Results = append(report.Results, *result)
		logger.Info("Trained candidate",
			utils.Component("trainer"),
			utils.String("model", candidate.Name),
			utils.Float("val_r2", result.ValMetrics.R2),
			utils.Float("val_rmse", result.ValMetrics.RMSE))
	}

	// Strict > keeps the earlier registry entry on ties.
	best := &report.Results[0]
	for i := 1; i < len(report.Results); i++ {
		if report.Results[i].ValMetrics.R2 > best.ValMetrics.R2 {
			best = &report.Results[i]
		}
	}
	report.Best = best

	testParts := raw
	if best.NeedsScaled {
		testParts = scaled
	}
	testPreds, err := PredictBatch(best.Model, testParts.testX)
	if err != nil {
		return nil, fmt.Errorf("test evaluation failed: %w", err)
	}
	testMetrics, err := Evaluate(testParts.testY, testPreds)
	if err != nil {
		return nil, err
	}
	testMetrics.Model = best.Name
	testMetrics.Split = "test"
	report.TestMetrics = testMetrics

	logger.Info("Selected best model",
		utils.Component("trainer"),
		utils.String("model", best.Name),
		utils.Float("val_r2", best.ValMetrics.R2),
		utils.Float("test_r2", testMetrics.R2))

	if tr.Config.Stacking {
		stacking, err := tr.prepareStacking(report, raw, scaled)
		if err != nil {
			logger.Warn("Stacking ensemble preparation failed, continuing without it",
				utils.Component("trainer"),
				utils.String("reason", err.Error()))
		} else {
			report.Stacking = stacking
		}
	}

	return report, nil
}

// partitions holds aligned matrices for one input variant.
type partitions struct {
	trainX, valX, testX [][]float64
	trainY, valY, testY []float64
}

func buildPartitions(train, val, test *preprocess.Dataset, features []string) (*partitions, error) {
	var p partitions
	var err error
	if p.trainX, err = Matrix(train, features); err != nil {
		return nil, fmt.Errorf("train partition: %w", err)
	}
	if p.valX, err = Matrix(val, features); err != nil {
		return nil, fmt.Errorf("validation partition: %w", err)
	}
	if p.testX, err = Matrix(test, features); err != nil {
		return nil, fmt.Errorf("test partition: %w", err)
	}
	if p.trainY, err = Target(train); err != nil {
		return nil, err
	}
	if p.valY, err = Target(val); err != nil {
		return nil, err
	}
	if p.testY, err = Target(test); err != nil {
		return nil, err
	}
	return &p, nil
}

func buildScaledPartitions(train, val, test *preprocess.Dataset, features []string, scaler *preprocess.StandardScaler) (*partitions, error) {
	if scaler == nil || !scaler.Fitted {
		return nil, fmt.Errorf("scaled candidates require a fitted scaler")
	}
	scaledTrain := train.Clone()
	scaledVal := val.Clone()
	scaledTest := test.Clone()
	for _, ds := range []*preprocess.Dataset{scaledTrain, scaledVal, scaledTest} {
		if err := scaler.Transform(ds); err != nil {
			return nil, fmt.Errorf("scaling failed: %w", err)
		}
	}
	return buildPartitions(scaledTrain, scaledVal, scaledTest, features)
}

// trainCandidate tunes on the un-resampled training data, oversamples
// only for the final fit, then evaluates on train and validation.
// Tuning and oversampling failures degrade to defaults instead of
// aborting the run.
func (tr *Trainer) trainCandidate(candidate Candidate, parts *partitions) (*ModelResult, error) {
	logger := utils.GetLogger()

	params := map[string]any{}
	if tr.Config.Tune && candidate.Space != nil {
		tuneConfig := DefaultTuneConfig(tr.Config.Seed)
		if tr.Config.TuneIter > 0 {
			tuneConfig.Iterations = tr.Config.TuneIter
		}
		tuned, err := RandomizedSearch(candidate.Factory, candidate.Space,
			parts.trainX, parts.trainY, tuneConfig)
		if err != nil {
			logger.Warn("Hyperparameter search failed, falling back to defaults",
				utils.Component("trainer"),
				utils.String("model", candidate.Name),
				utils.String("reason", err.Error()))
		} else {
			params = tuned.BestParams
			logger.Debug("Tuned hyperparameters",
				utils.Component("trainer"),
				utils.String("model", candidate.Name),
				utils.Float("cv_r2", tuned.BestScore))
		}
	}

	fitX, fitY := parts.trainX, parts.trainY
	if tr.Config.Oversample {
		overX, overY, err := Oversample(parts.trainX, parts.trainY, tr.Config.Seed)
		if err != nil {
			logger.Warn("Oversampling failed, training on the original distribution",
				utils.Component("trainer"),
				utils.String("model", candidate.Name),
				utils.String("reason", err.Error()))
		} else {
			fitX, fitY = overX, overY
		}
	}

	model := candidate.Factory(params)
	if err := model.Fit(fitX, fitY); err != nil {
		return nil, err
	}

	trainMetrics, err := evaluateOn(model, candidate.Name, "train", parts.trainX, parts.trainY)
	if err != nil {
		return nil, err
	}
	valMetrics, err := evaluateOn(model, candidate.Name, "validation", parts.valX, parts.valY)
	if err != nil {
		return nil, err
	}

	return &ModelResult{
		Name:         candidate.Name,
		Model:        model,
		NeedsScaled:  candidate.NeedsScaled,
		Params:       model.Params(),
		TrainMetrics: trainMetrics,
		ValMetrics:   valMetrics,
	}, nil
}

func evaluateOn(model Regressor, name, split string, X [][]float64, y []float64) (Metrics, error) {
	preds, err := PredictBatch(model, X)
	if err != nil {
		return Metrics{}, err
	}
	m, err := Evaluate(y, preds)
	if err != nil {
		return Metrics{}, err
	}
	m.Model = name
	m.Split = split
	return m, nil
}

// prepareStacking fits a stacking ensemble over the top three candidates
// by validation R². It is recorded in the report but never replaces the
// selected best model.
func (tr *Trainer) prepareStacking(report *TrainReport, raw, scaled *partitions) (*ModelResult, error) {
	if len(report.Results) < 3 {
		return nil, fmt.Errorf("need at least 3 candidates, have %d", len(report.Results))
	}

	order := make([]int, len(report.Results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return report.Results[order[a]].ValMetrics.R2 > report.Results[order[b]].ValMetrics.R2
	})

	// The ensemble trains all bases on one input variant; use the raw
	// matrices and rebuild fresh base models so the candidates' fitted
	// state stays untouched.
	byName := make(map[string]Candidate)
	for _, c := range tr.Candidates {
		byName[c.Name] = c
	}
	var bases []Regressor
	for _, idx := range order[:3] {
		result := report.Results[idx]
		candidate, ok := byName[result.Name]
		if !ok {
			return nil, fmt.Errorf("unknown candidate %s", result.Name)
		}
		bases = append(bases, candidate.Factory(result.Params))
	}

	ensemble := NewStackingRegressor(bases)
	if err := ensemble.Fit(raw.trainX, raw.trainY); err != nil {
		return nil, err
	}

	trainMetrics, err := evaluateOn(ensemble, "stacking", "train", raw.trainX, raw.trainY)
	if err != nil {
		return nil, err
	}
	valMetrics, err := evaluateOn(ensemble, "stacking", "validation", raw.valX, raw.valY)
	if err != nil {
		return nil, err
	}

	return &ModelResult{
		Name:         "stacking",
		Model:        ensemble,
		NeedsScaled:  false,
		Params:       ensemble.Params(),
		TrainMetrics: trainMetrics,
		ValMetrics:   valMetrics,
	}, nil
}

// FeatureImportance returns the best model's top-N feature importances
// paired with feature names, descending. Models without importances
// return an empty slice.
func (report *TrainReport) FeatureImportance(topN int) []FeatureWeight {
	if report.Best == nil {
		return nil
	}
	imp, ok := report.Best.Model.(FeatureImportancer)
	if !ok {
		return []FeatureWeight{}
	}
	values := imp.FeatureImportances()
	if len(values) != len(report.Features) {
		return []FeatureWeight{}
	}

	weights := make([]FeatureWeight, len(values))
	for i, v := range values {
		weights[i] = FeatureWeight{Feature: report.Features[i], Importance: v}
	}
	sort.SliceStable(weights, func(a, b int) bool {
		return weights[a].Importance > weights[b].Importance
	})
	if topN > 0 && topN < len(weights) {
		weights = weights[:topN]
	}
	return weights
}

// FeatureWeight pairs a feature name with its importance.
type FeatureWeight struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}
