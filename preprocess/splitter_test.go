package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func splitDataset(n int) *Dataset {
	ds := NewDataset([]string{ColDistrict, ColYear, ColYield})
	for i := 0; i < n; i++ {
		ds.Rows = append(ds.Rows, Row{
			ColDistrict: "Wa",
			ColYear:     float64(2000 + i),
			ColYield:    float64(i),
		})
	}
	return ds
}

func TestSplit_ProportionsMustSumToOne(t *testing.T) {
	ds := splitDataset(10)
	_, _, _, err := Split(ds, SplitConfig{TrainSize: 0.5, ValSize: 0.2, TestSize: 0.2, RandomSeed: 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to 1.0")
	assert.Contains(t, err.Error(), "0.9000", "error reports the computed sum")
}

func TestSplit_Deterministic(t *testing.T) {
	ds := splitDataset(100)
	config := DefaultSplitConfig()

	train1, val1, test1, err := Split(ds, config)
	require.NoError(t, err)
	train2, val2, test2, err := Split(ds, config)
	require.NoError(t, err)

	assert.Equal(t, train1.Rows, train2.Rows)
	assert.Equal(t, val1.Rows, val2.Rows)
	assert.Equal(t, test1.Rows, test2.Rows)
}

func TestSplit_DifferentSeedDifferentPartition(t *testing.T) {
	ds := splitDataset(100)

	a, _, _, err := Split(ds, SplitConfig{TrainSize: 0.6, ValSize: 0.2, TestSize: 0.2, RandomSeed: 42})
	require.NoError(t, err)
	b, _, _, err := Split(ds, SplitConfig{TrainSize: 0.6, ValSize: 0.2, TestSize: 0.2, RandomSeed: 43})
	require.NoError(t, err)

	assert.NotEqual(t, a.Rows, b.Rows)
}

func TestSplit_PartitionsAreDisjointAndComplete(t *testing.T) {
	ds := splitDataset(100)
	train, val, test, err := Split(ds, DefaultSplitConfig())
	require.NoError(t, err)

	assert.Equal(t, 60, train.Len())
	assert.Equal(t, 20, val.Len())
	assert.Equal(t, 20, test.Len())

	seen := make(map[float64]int)
	for _, part := range []*Dataset{train, val, test} {
		for _, row := range part.Rows {
			y, _ := row.Float(ColYield)
			seen[y]++
		}
	}
	assert.Len(t, seen, 100, "every source row appears")
	for y, n := range seen {
		assert.Equal(t, 1, n, "row %v appears exactly once", y)
	}
}

func TestSplit_TooFewRows(t *testing.T) {
	ds := splitDataset(2)
	_, _, _, err := Split(ds, DefaultSplitConfig())
	assert.Error(t, err)
}
