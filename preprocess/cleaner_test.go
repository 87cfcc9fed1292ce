package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseColumns() []string {
	return []string{ColDistrict, ColYear, ColRainfall, ColTemperature,
		ColHumidity, ColSunlight, ColSoilMoisture, ColSoilType, ColYieldLag1, ColYield}
}

func mkRow(district string, year float64, vals map[string]any) Row {
	row := Row{ColDistrict: district, ColYear: year}
	for k, v := range vals {
		row[k] = v
	}
	return row
}

func TestCleaner_InvalidMethod(t *testing.T) {
	_, err := NewCleaner("drop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid outlier method")
}

func TestCleaner_ForwardFillLagPerDistrict(t *testing.T) {
	ds := NewDataset(baseColumns())
	ds.Rows = []Row{
		mkRow("Wa", 2019, map[string]any{ColYieldLag1: 1.5}),
		mkRow("Wa", 2020, map[string]any{}),
		mkRow("Wa", 2021, map[string]any{}),
		mkRow("Bolga", 2020, map[string]any{}), // different district, no carry-over
		mkRow("Bolga", 2021, map[string]any{ColYieldLag1: 2.0}),
	}

	cleaner, err := NewCleaner(OutlierCap)
	require.NoError(t, err)
	st, err := cleaner.Clean(ds)
	require.NoError(t, err)

	assert.Equal(t, 2, st.LagValuesFilled)

	byKey := func(district string, year float64) Row {
		for _, row := range ds.Rows {
			d, _ := row.String(ColDistrict)
			y, _ := row.Float(ColYear)
			if d == district && y == year {
				return row
			}
		}
		t.Fatalf("row %s/%v not found", district, year)
		return nil
	}

	v, ok := byKey("Wa", 2020).Float(ColYieldLag1)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
	v, ok = byKey("Wa", 2021).Float(ColYieldLag1)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)

	// Bolga 2020 had no prior value; median imputation fills it from the
	// district's only observation.
	v, ok = byKey("Bolga", 2020).Float(ColYieldLag1)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestCleaner_DistrictMedianImputation(t *testing.T) {
	ds := NewDataset(baseColumns())
	ds.Rows = []Row{
		mkRow("Wa", 2019, map[string]any{ColRainfall: 600.0}),
		mkRow("Wa", 2020, map[string]any{ColRainfall: 800.0}),
		mkRow("Wa", 2021, map[string]any{}), // missing rainfall
		mkRow("Ho", 2021, map[string]any{}), // district with no rainfall at all
	}

	cleaner, _ := NewCleaner(OutlierCap)
	st, err := cleaner.Clean(ds)
	require.NoError(t, err)
	assert.Greater(t, st.ValuesImputed, 0)

	for _, row := range ds.Rows {
		d, _ := row.String(ColDistrict)
		y, _ := row.Float(ColYear)
		v, ok := row.Float(ColRainfall)
		require.True(t, ok)
		if d == "Wa" && y == 2021 {
			assert.Equal(t, 700.0, v, "district median")
		}
		if d == "Ho" {
			assert.Equal(t, 700.0, v, "global median fallback")
		}
	}
}

func TestCleaner_ModeImputationForCategorical(t *testing.T) {
	ds := NewDataset(baseColumns())
	ds.Rows = []Row{
		mkRow("Wa", 2019, map[string]any{ColSoilType: "Loamy"}),
		mkRow("Wa", 2020, map[string]any{ColSoilType: "Loamy"}),
		mkRow("Wa", 2021, map[string]any{ColSoilType: "Sandy"}),
		mkRow("Ho", 2021, map[string]any{}),
	}

	cleaner, _ := NewCleaner(OutlierCap)
	_, err := cleaner.Clean(ds)
	require.NoError(t, err)

	for _, row := range ds.Rows {
		if d, _ := row.String(ColDistrict); d == "Ho" {
			s, ok := row.String(ColSoilType)
			require.True(t, ok)
			assert.Equal(t, "Loamy", s)
		}
	}
}

func TestCleaner_Deduplication(t *testing.T) {
	ds := NewDataset(baseColumns())
	dup := mkRow("Wa", 2020, map[string]any{ColRainfall: 700.0})
	ds.Rows = []Row{
		dup,
		dup.Clone(), // exact duplicate
		mkRow("Wa", 2020, map[string]any{ColRainfall: 900.0}), // same district-year
		mkRow("Wa", 2021, map[string]any{ColRainfall: 750.0}),
	}

	cleaner, _ := NewCleaner(OutlierCap)
	st, err := cleaner.Clean(ds)
	require.NoError(t, err)

	assert.Equal(t, 2, st.DuplicatesRemoved)
	assert.Equal(t, 2, ds.Len())

	// First occurrence wins.
	found := false
	for _, row := range ds.Rows {
		y, _ := row.Float(ColYear)
		if y == 2020 {
			v, _ := row.Float(ColRainfall)
			assert.Equal(t, 700.0, v)
			found = true
		}
	}
	assert.True(t, found)
}

func outlierDataset() *Dataset {
	ds := NewDataset(baseColumns())
	for i := 0; i < 20; i++ {
		ds.Rows = append(ds.Rows, mkRow("Wa", float64(2000+i), map[string]any{
			ColRainfall: 700.0 + float64(i%5),
		}))
	}
	// extreme value far outside the Tukey fences
	ds.Rows = append(ds.Rows, mkRow("Wa", 2025, map[string]any{ColRainfall: 5000.0}))
	return ds
}

func TestCleaner_OutlierCap(t *testing.T) {
	ds := outlierDataset()
	n := ds.Len()

	cleaner, _ := NewCleaner(OutlierCap)
	st, err := cleaner.Clean(ds)
	require.NoError(t, err)

	assert.Equal(t, n, ds.Len(), "cap keeps all rows")
	assert.Greater(t, st.OutliersCapped, 0)
	assert.Zero(t, st.OutliersRemoved)

	max := 0.0
	for _, row := range ds.Rows {
		if v, ok := row.Float(ColRainfall); ok && v > max {
			max = v
		}
	}
	assert.Less(t, max, 5000.0, "extreme value capped to the upper fence")
}

func TestCleaner_OutlierRemove(t *testing.T) {
	ds := outlierDataset()
	n := ds.Len()

	cleaner, _ := NewCleaner(OutlierRemove)
	st, err := cleaner.Clean(ds)
	require.NoError(t, err)

	assert.Equal(t, n-1, ds.Len())
	assert.Equal(t, 1, st.OutliersRemoved)
	assert.Zero(t, st.OutliersCapped)
}
