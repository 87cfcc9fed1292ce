package preprocess

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Outlier handling policies.
const (
	OutlierCap    = "cap"
	OutlierRemove = "remove"
)

// outlierColumns is the fixed set screened for IQR outliers.
var outlierColumns = []string{
	ColYield,
	ColRainfall,
	ColTemperature,
	ColHumidity,
	ColSunlight,
	ColSoilMoisture,
}

// iqrMultiplier is the Tukey fence factor.
const iqrMultiplier = 1.5

// CleaningStats counts what the cleaner changed.
type CleaningStats struct {
	LagValuesFilled   int `json:"lag_values_filled"`
	ValuesImputed     int `json:"values_imputed"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	OutliersCapped    int `json:"outliers_capped"`
	OutliersRemoved   int `json:"outliers_removed"`
}

// Cleaner applies missing-value, duplicate and outlier handling.
type Cleaner struct {
	OutlierMethod string
}

// NewCleaner creates a cleaner with the given outlier policy ("cap" or
// "remove").
func NewCleaner(outlierMethod string) (*Cleaner, error) {
	if outlierMethod != OutlierCap && outlierMethod != OutlierRemove {
		return nil, fmt.Errorf("invalid outlier method %q: must be %q or %q",
			outlierMethod, OutlierCap, OutlierRemove)
	}
	return &Cleaner{OutlierMethod: outlierMethod}, nil
}

// Clean runs the full cleaning sequence in place: lag forward-fill,
// median/mode imputation, deduplication, then outlier handling.
func (c *Cleaner) Clean(ds *Dataset) (*CleaningStats, error) {
	st := &CleaningStats{}

	c.forwardFillLag(ds, st)
	if err := c.imputeNumeric(ds, st); err != nil {
		return nil, err
	}
	c.imputeCategorical(ds, st)
	c.dedupe(ds, st)
	if err := c.handleOutliers(ds, st); err != nil {
		return nil, err
	}

	return st, nil
}

// forwardFillLag fills missing Yield_Lag1 values with the last observed
// value of the same district, ordered by year. Leading gaps stay missing
// for the median imputer.
func (c *Cleaner) forwardFillLag(ds *Dataset, st *CleaningStats) {
	if !ds.HasColumn(ColYieldLag1) {
		return
	}
	ds.SortByDistrictYear()

	var lastDistrict string
	var lastValue float64
	var haveLast bool
	for _, row := range ds.Rows {
		district, _ := row.String(ColDistrict)
		if district != lastDistrict {
			lastDistrict = district
			haveLast = false
		}
		if v, ok := row.Float(ColYieldLag1); ok {
			lastValue = v
			haveLast = true
			continue
		}
		if haveLast {
			row.SetFloat(ColYieldLag1, lastValue)
			st.LagValuesFilled++
		}
	}
}

// imputeNumeric fills missing numeric values with the district median,
// falling back to the global median when a district has no observations.
func (c *Cleaner) imputeNumeric(ds *Dataset, st *CleaningStats) error {
	for _, col := range ds.NumericColumns() {
		byDistrict := make(map[string][]float64)
		var global []float64
		for _, row := range ds.Rows {
			if v, ok := row.Float(col); ok {
				district, _ := row.String(ColDistrict)
				byDistrict[district] = append(byDistrict[district], v)
				global = append(global, v)
			}
		}
		if len(global) == 0 {
			continue
		}

		globalMedian, err := stats.Median(global)
		if err != nil {
			return fmt.Errorf("failed to compute median for %s: %w", col, err)
		}

		medians := make(map[string]float64, len(byDistrict))
		for district, values := range byDistrict {
			m, err := stats.Median(values)
			if err != nil {
				return fmt.Errorf("failed to compute district median for %s: %w", col, err)
			}
			medians[district] = m
		}

		for _, row := range ds.Rows {
			if _, ok := row.Float(col); ok {
				continue
			}
			district, _ := row.String(ColDistrict)
			if m, ok := medians[district]; ok {
				row.SetFloat(col, m)
			} else {
				row.SetFloat(col, globalMedian)
			}
			st.ValuesImputed++
		}
	}
	return nil
}

// imputeCategorical fills missing categorical values with the global mode.
func (c *Cleaner) imputeCategorical(ds *Dataset, st *CleaningStats) {
	for _, col := range ds.Columns {
		if !CategoricalColumns[col] {
			continue
		}
		counts := make(map[string]int)
		for _, row := range ds.Rows {
			if s, ok := row.String(col); ok {
				counts[s]++
			}
		}
		if len(counts) == 0 {
			continue
		}

		var mode string
		best := -1
		for value, n := range counts {
			if n > best || (n == best && value < mode) {
				mode = value
				best = n
			}
		}

		for _, row := range ds.Rows {
			if _, ok := row.String(col); !ok {
				row[col] = mode
				st.ValuesImputed++
			}
		}
	}
}

// dedupe drops exact duplicate rows, then rows repeating a
// (district, year) pair, keeping the first occurrence of each.
func (c *Cleaner) dedupe(ds *Dataset, st *CleaningStats) {
	seen := make(map[string]bool, len(ds.Rows))
	seenKey := make(map[string]bool, len(ds.Rows))
	kept := ds.Rows[:0]

	for _, row := range ds.Rows {
		sig := rowSignature(row, ds.Columns)
		if seen[sig] {
			st.DuplicatesRemoved++
			continue
		}
		seen[sig] = true

		district, _ := row.String(ColDistrict)
		year, _ := row.Float(ColYear)
		key := fmt.Sprintf("%s|%g", district, year)
		if seenKey[key] {
			st.DuplicatesRemoved++
			continue
		}
		seenKey[key] = true
		kept = append(kept, row)
	}
	ds.Rows = kept
}

func rowSignature(row Row, columns []string) string {
	sig := ""
	for _, col := range columns {
		sig += formatCell(row, col) + "\x1f"
	}
	return sig
}

// handleOutliers screens the fixed outlier columns with Tukey fences
// (IQR x 1.5) and either caps values at the fence or removes the row.
func (c *Cleaner) handleOutliers(ds *Dataset, st *CleaningStats) error {
	type fence struct{ lower, upper float64 }
	fences := make(map[string]fence)

	for _, col := range outlierColumns {
		if !ds.HasColumn(col) {
			continue
		}
		values := ds.ColumnFloats(col)
		if len(values) < 4 {
			continue
		}
		q, err := stats.Quartile(values)
		if err != nil {
			return fmt.Errorf("failed to compute quartiles for %s: %w", col, err)
		}
		iqr := q.Q3 - q.Q1
		fences[col] = fence{
			lower: q.Q1 - iqrMultiplier*iqr,
			upper: q.Q3 + iqrMultiplier*iqr,
		}
	}

	if c.OutlierMethod == OutlierRemove {
		kept := ds.Rows[:0]
		for _, row := range ds.Rows {
			outlier := false
			for col, f := range fences {
				if v, ok := row.Float(col); ok && (v < f.lower || v > f.upper) {
					outlier = true
					break
				}
			}
			if outlier {
				st.OutliersRemoved++
				continue
			}
			kept = append(kept, row)
		}
		ds.Rows = kept
		return nil
	}

	for _, row := range ds.Rows {
		for col, f := range fences {
			v, ok := row.Float(col)
			if !ok {
				continue
			}
			if v < f.lower {
				row.SetFloat(col, f.lower)
				st.OutliersCapped++
			} else if v > f.upper {
				row.SetFloat(col, f.upper)
				st.OutliersCapped++
			}
		}
	}
	return nil
}
