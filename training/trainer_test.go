package training

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agridata-gh/maizeyield/preprocess"
)

// yieldDataset builds a synthetic engineered dataset with a learnable
// yield target.
func yieldDataset(n int, seed int64) *preprocess.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := preprocess.NewDataset([]string{
		preprocess.ColDistrict, preprocess.ColYear, preprocess.ColRainfall,
		preprocess.ColTemperature, preprocess.ColSoilMoisture, preprocess.ColYield,
	})
	for i := 0; i < n; i++ {
		rain := 500 + rng.Float64()*600
		temp := 22 + rng.Float64()*10
		moisture := 0.3 + rng.Float64()*0.5
		yield := 0.002*rain + 0.05*temp + 2*moisture + rng.NormFloat64()*0.1
		ds.Rows = append(ds.Rows, preprocess.Row{
			preprocess.ColDistrict:     "Tamale",
			preprocess.ColYear:         float64(2010 + i%15),
			preprocess.ColRainfall:     rain,
			preprocess.ColTemperature:  temp,
			preprocess.ColSoilMoisture: moisture,
			preprocess.ColYield:        yield,
		})
	}
	return ds
}

func trainValTest(t *testing.T, n int, seed int64) (*preprocess.Dataset, *preprocess.Dataset, *preprocess.Dataset, *preprocess.StandardScaler) {
	t.Helper()
	ds := yieldDataset(n, seed)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)

	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))
	return train, val, test, scaler
}

// fixedFactorModel predicts factor*x0; with target y = x0 the factor
// controls the validation R² it achieves.
type fixedFactorModel struct {
	Factor  float64
	Trained bool
}

func (m *fixedFactorModel) Fit(X [][]float64, y []float64) error {
	m.Trained = true
	return nil
}

func (m *fixedFactorModel) Predict(x []float64) (float64, error) {
	if !m.Trained {
		return 0, fmt.Errorf("model has not been trained")
	}
	return x[0] * m.Factor, nil
}

func (m *fixedFactorModel) Name() string { return "fixed_factor" }

func (m *fixedFactorModel) Params() map[string]any {
	return map[string]any{"factor": m.Factor}
}

func stubCandidate(name string, factor float64) Candidate {
	return Candidate{
		Name:        name,
		NeedsScaled: false,
		Factory: func(params map[string]any) Regressor {
			return &fixedFactorModel{Factor: factor}
		},
	}
}

// identityDataset has yield equal to its single feature, so a factor-1
// model scores a perfect R².
func identityDataset(n int) *preprocess.Dataset {
	ds := preprocess.NewDataset([]string{
		preprocess.ColDistrict, preprocess.ColRainfall, preprocess.ColYield,
	})
	for i := 0; i < n; i++ {
		v := float64(i + 1)
		ds.Rows = append(ds.Rows, preprocess.Row{
			preprocess.ColDistrict: "Wa",
			preprocess.ColRainfall: v,
			preprocess.ColYield:    v,
		})
	}
	return ds
}

func TestTrainer_SelectsBestByValidationR2(t *testing.T) {
	ds := identityDataset(60)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)
	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))

	trainer := &Trainer{
		Candidates: []Candidate{
			stubCandidate("model_a", 0.5),
			stubCandidate("model_b", 1.0),
			stubCandidate("model_c", 0.8),
		},
		Config: TrainerConfig{Seed: 42},
	}

	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)
	require.NotNil(t, report.Best)

	assert.Equal(t, "model_b", report.Best.Name)
	assert.InDelta(t, 1.0, report.Best.ValMetrics.R2, 1e-9)
	assert.Equal(t, "test", report.TestMetrics.Split)
	assert.Equal(t, "model_b", report.TestMetrics.Model)
	assert.Len(t, report.Results, 3)
}

func TestTrainer_TiesBreakByRegistryOrder(t *testing.T) {
	ds := identityDataset(60)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)
	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))

	trainer := &Trainer{
		Candidates: []Candidate{
			stubCandidate("first_perfect", 1.0),
			stubCandidate("second_perfect", 1.0),
		},
		Config: TrainerConfig{Seed: 42},
	}

	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)
	assert.Equal(t, "first_perfect", report.Best.Name)
}

func TestTrainer_EndToEndWithDefaultRegistry(t *testing.T) {
	train, val, test, scaler := trainValTest(t, 150, 42)

	trainer := NewTrainer(TrainerConfig{Seed: 42, Oversample: true})
	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)

	assert.Len(t, report.Results, len(DefaultCandidates(42)))
	require.NotNil(t, report.Best)
	assert.Greater(t, report.Best.ValMetrics.R2, 0.5)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, train.Len(), report.TrainRows)
	assert.NotEmpty(t, report.Features)
	assert.NotContains(t, report.Features, preprocess.ColYield)

	t.Run("deterministic selection across runs", func(t *testing.T) {
		again, err := NewTrainer(TrainerConfig{Seed: 42, Oversample: true}).
			TrainAll(train, val, test, scaler)
		require.NoError(t, err)
		assert.Equal(t, report.Best.Name, again.Best.Name)
	})
}

func TestTrainer_OversampleFailureFallsBack(t *testing.T) {
	// 12 rows is enough to split but too few for quantile oversampling
	// after the 60% train cut.
	ds := identityDataset(12)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)
	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))

	trainer := &Trainer{
		Candidates: []Candidate{stubCandidate("only", 1.0)},
		Config:     TrainerConfig{Seed: 42, Oversample: true},
	}

	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err, "oversampling failure degrades, never aborts")
	assert.Equal(t, "only", report.Best.Name)
}

func TestTrainer_TuneFailureFallsBack(t *testing.T) {
	ds := identityDataset(4)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)
	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))

	// A space is declared but train is too small for 3-fold CV; the
	// trainer must fall back to default parameters.
	candidate := stubCandidate("tuned", 1.0)
	candidate.Space = ParamSpace{"factor": {0.5, 1.0}}

	trainer := &Trainer{
		Candidates: []Candidate{candidate},
		Config:     TrainerConfig{Seed: 42, Tune: true, TuneIter: 4},
	}

	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)
	assert.Equal(t, "tuned", report.Best.Name)
}

func TestTrainer_StackingPreparedButNotSelected(t *testing.T) {
	train, val, test, scaler := trainValTest(t, 150, 43)

	trainer := NewTrainer(TrainerConfig{Seed: 42, Stacking: true})
	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)

	require.NotNil(t, report.Stacking)
	assert.Equal(t, "stacking", report.Stacking.Name)
	assert.NotEqual(t, "stacking", report.Best.Name,
		"the ensemble is prepared but never auto-selected")
}

func TestTrainReport_FeatureImportance(t *testing.T) {
	train, val, test, scaler := trainValTest(t, 150, 44)

	trainer := &Trainer{
		Candidates: []Candidate{
			{
				Name:        "decision_tree",
				NeedsScaled: false,
				Factory: func(params map[string]any) Regressor {
					return NewDecisionTreeRegressor(8, 2)
				},
			},
		},
		Config: TrainerConfig{Seed: 42},
	}
	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)

	top := report.FeatureImportance(2)
	require.Len(t, top, 2)
	assert.GreaterOrEqual(t, top[0].Importance, top[1].Importance)
	assert.Contains(t, report.Features, top[0].Feature)
}

func TestTrainReport_FeatureImportanceWithoutSupport(t *testing.T) {
	ds := identityDataset(60)
	train, val, test, err := preprocess.Split(ds, preprocess.DefaultSplitConfig())
	require.NoError(t, err)
	scaler := preprocess.NewStandardScaler()
	require.NoError(t, scaler.Fit(train, preprocess.ScalingFeatures(train)))

	trainer := &Trainer{
		Candidates: []Candidate{stubCandidate("plain", 1.0)},
		Config:     TrainerConfig{Seed: 42},
	}
	report, err := trainer.TrainAll(train, val, test, scaler)
	require.NoError(t, err)

	assert.Empty(t, report.FeatureImportance(5))
	assert.NotNil(t, report.FeatureImportance(5))
}
