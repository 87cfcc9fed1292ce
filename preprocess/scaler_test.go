package preprocess

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func scalerDataset() *Dataset {
	ds := NewDataset([]string{ColDistrict, ColYear, ColRainfall, ColTemperature, ColYield})
	values := [][2]float64{{600, 25}, {700, 27}, {800, 29}, {900, 31}}
	for i, v := range values {
		ds.Rows = append(ds.Rows, Row{
			ColDistrict:    "Wa",
			ColYear:        float64(2018 + i),
			ColRainfall:    v[0],
			ColTemperature: v[1],
			ColYield:       1.0 + float64(i)*0.1,
		})
	}
	return ds
}

func TestScalingFeatures_ExcludesTargetAndYear(t *testing.T) {
	ds := scalerDataset()
	features := ScalingFeatures(ds)
	assert.Equal(t, []string{ColRainfall, ColTemperature}, features)
	assert.NotContains(t, features, ColYield)
	assert.NotContains(t, features, ColYear)
	assert.NotContains(t, features, ColDistrict)
}

func TestStandardScaler_FitTransform(t *testing.T) {
	ds := scalerDataset()
	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(ds, ScalingFeatures(ds)))

	scaled := ds.Clone()
	require.NoError(t, scaler.Transform(scaled))

	// Transformed columns have mean ~0 and std ~1.
	for _, col := range scaler.Features {
		values := scaled.ColumnFloats(col)
		mean, std := stat.MeanStdDev(values, nil)
		assert.InDelta(t, 0, mean, 1e-9, col)
		assert.InDelta(t, 1, std, 1e-9, col)
	}

	// Target and year untouched.
	assert.Equal(t, ds.ColumnFloats(ColYield), scaled.ColumnFloats(ColYield))
	assert.Equal(t, ds.ColumnFloats(ColYear), scaled.ColumnFloats(ColYear))
}

func TestStandardScaler_VectorRoundTrip(t *testing.T) {
	ds := scalerDataset()
	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(ds, ScalingFeatures(ds)))

	x := []float64{750, 28}
	scaled, err := scaler.TransformVector(x)
	require.NoError(t, err)
	back, err := scaler.InverseTransformVector(scaled)
	require.NoError(t, err)

	for i := range x {
		assert.InDelta(t, x[i], back[i], 1e-9)
	}
}

func TestStandardScaler_ZeroVarianceFeature(t *testing.T) {
	ds := NewDataset([]string{ColDistrict, ColRainfall})
	for i := 0; i < 4; i++ {
		ds.Rows = append(ds.Rows, Row{ColDistrict: "Wa", ColRainfall: 700.0})
	}

	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(ds, []string{ColRainfall}))

	out, err := scaler.TransformVector([]float64{700})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0], "constant feature transforms to zero, not NaN")
}

func TestStandardScaler_TransformBeforeFit(t *testing.T) {
	scaler := NewStandardScaler()
	err := scaler.Transform(scalerDataset())
	assert.Error(t, err)
	_, err = scaler.TransformVector([]float64{1})
	assert.Error(t, err)
}

func TestStandardScaler_GobRoundTrip(t *testing.T) {
	ds := scalerDataset()
	scaler := NewStandardScaler()
	require.NoError(t, scaler.Fit(ds, ScalingFeatures(ds)))

	path := filepath.Join(t.TempDir(), "scaler.gob")
	require.NoError(t, scaler.Save(path))

	loaded, err := LoadScaler(path)
	require.NoError(t, err)
	assert.Equal(t, scaler.Features, loaded.Features)
	assert.Equal(t, scaler.Mean, loaded.Mean)
	assert.Equal(t, scaler.Std, loaded.Std)
	assert.True(t, loaded.Fitted)

	x := []float64{750, 28}
	a, err := scaler.TransformVector(x)
	require.NoError(t, err)
	b, err := loaded.TransformVector(x)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStandardScaler_SaveUnfitted(t *testing.T) {
	scaler := NewStandardScaler()
	err := scaler.Save(filepath.Join(t.TempDir(), "scaler.gob"))
	assert.Error(t, err)
}
