package training

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// oversampleBins is the number of target-quantile strata.
const oversampleBins = 5

// Oversample balances the target distribution by binning y into quantile
// strata and re-drawing minority bins (with replacement) up to the size
// of the largest bin. Returns new slices; the inputs are not modified.
func Oversample(X [][]float64, y []float64, seed int64) ([][]float64, []float64, error) {
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("sample count %d does not match target count %d", len(X), len(y))
	}
	if len(y) < oversampleBins*2 {
		return nil, nil, fmt.Errorf("too few samples to oversample: %d", len(y))
	}

	sorted := append([]float64(nil), y...)
	sort.Float64s(sorted)

	edges := make([]float64, oversampleBins-1)
	for i := 1; i < oversampleBins; i++ {
		edges[i-1] = stat.Quantile(float64(i)/oversampleBins, stat.Empirical, sorted, nil)
	}

	bins := make([][]int, oversampleBins)
	for i, v := range y {
		bins[binOf(v, edges)] = append(bins[binOf(v, edges)], i)
	}

	maxSize := 0
	for _, bin := range bins {
		if len(bin) > maxSize {
			maxSize = len(bin)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	outX := make([][]float64, 0, maxSize*oversampleBins)
	outY := make([]float64, 0, maxSize*oversampleBins)

	for _, bin := range bins {
		if len(bin) == 0 {
			continue
		}
		for _, i := range bin {
			outX = append(outX, X[i])
			outY = append(outY, y[i])
		}
		for extra := len(bin); extra < maxSize; extra++ {
			i := bin[rng.Intn(len(bin))]
			outX = append(outX, X[i])
			outY = append(outY, y[i])
		}
	}

	return outX, outY, nil
}

func binOf(v float64, edges []float64) int {
	for i, edge := range edges {
		if v <= edge {
			return i
		}
	}
	return len(edges)
}
