package preprocess

import (
	"fmt"
	"math"
	"math/rand"
)

// SplitConfig controls the reproducible three-way split.
type SplitConfig struct {
	TrainSize  float64
	ValSize    float64
	TestSize   float64
	RandomSeed int64
}

// DefaultSplitConfig returns the standard 60/20/20 split with seed 42.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		TrainSize:  0.60,
		ValSize:    0.20,
		TestSize:   0.20,
		RandomSeed: 42,
	}
}

// Validate checks the proportions sum to 1.0, reporting the computed sum.
func (c SplitConfig) Validate() error {
	sum := c.TrainSize + c.ValSize + c.TestSize
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("split proportions must sum to 1.0, got %.4f", sum)
	}
	if c.TrainSize <= 0 || c.ValSize <= 0 || c.TestSize <= 0 {
		return fmt.Errorf("split proportions must all be positive")
	}
	return nil
}

// Split partitions the dataset into train, validation and test sets using
// two sequential seeded shuffles: first train vs rest, then the rest into
// validation and test. The same seed always yields the same partition.
func Split(ds *Dataset, config SplitConfig) (train, val, test *Dataset, err error) {
	if err := config.Validate(); err != nil {
		return nil, nil, nil, err
	}
	n := ds.Len()
	if n < 3 {
		return nil, nil, nil, fmt.Errorf("need at least 3 rows to split, got %d", n)
	}

	rng := rand.New(rand.NewSource(config.RandomSeed))

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTrain := int(math.Round(float64(n) * config.TrainSize))
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain > n-2 {
		nTrain = n - 2
	}
	trainIdx := indices[:nTrain]
	rest := indices[nTrain:]

	// Second shuffle of the remainder before the val/test cut.
	restCopy := make([]int, len(rest))
	copy(restCopy, rest)
	rng.Shuffle(len(restCopy), func(i, j int) {
		restCopy[i], restCopy[j] = restCopy[j], restCopy[i]
	})

	testFrac := config.TestSize / (config.ValSize + config.TestSize)
	nTest := int(math.Round(float64(len(restCopy)) * testFrac))
	if nTest < 1 {
		nTest = 1
	}
	if nTest > len(restCopy)-1 {
		nTest = len(restCopy) - 1
	}
	valIdx := restCopy[:len(restCopy)-nTest]
	testIdx := restCopy[len(restCopy)-nTest:]

	return subset(ds, trainIdx), subset(ds, valIdx), subset(ds, testIdx), nil
}

func subset(ds *Dataset, indices []int) *Dataset {
	out := NewDataset(ds.Columns)
	out.Rows = make([]Row, 0, len(indices))
	for _, i := range indices {
		out.Rows = append(out.Rows, ds.Rows[i].Clone())
	}
	return out
}
