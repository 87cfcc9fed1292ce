// Package preprocess implements the maize dataset pipeline: cleaning,
// feature engineering, splitting, scaling and artifact persistence.
package preprocess

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Canonical column names shared between the raw dataset, the engineered
// feature set and the serving layer.
const (
	ColDistrict     = "District"
	ColYear         = "Year"
	ColRainfall     = "Rainfall"
	ColTemperature  = "Temperature"
	ColHumidity     = "Humidity"
	ColSunlight     = "Sunlight"
	ColSoilMoisture = "Soil_Moisture"
	ColSoilType     = "Soil_Type"
	ColPestRisk     = "Pest_Risk"
	ColPFJPolicy    = "PFJ_Policy"
	ColYieldLag1    = "Yield_Lag1"
	ColYieldLag2    = "Yield_Lag2"
	ColYield        = "Yield"

	ColGrowingDegreeDays = "Growing_Degree_Days"
	ColWaterAvailability = "Water_Availability"
	ColClimateStress     = "Climate_Stress"
	ColMoistureTempRatio = "Moisture_Temp_Ratio"
	ColRainfallPerSun    = "Rainfall_per_Sun"
	ColYearsSincePFJ     = "Years_Since_PFJ"
	ColYieldChange       = "Yield_Change"
	ColYieldGrowthRate   = "Yield_Growth_Rate"
)

// CategoricalColumns are string-valued; everything else is numeric.
var CategoricalColumns = map[string]bool{
	ColDistrict: true,
	ColSoilType: true,
}

// Row is a single observation. Numeric values are float64, categorical
// values string. A missing value is an absent key.
type Row map[string]any

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Float returns the numeric value of a column and whether it is present.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// String returns the categorical value of a column.
func (r Row) String(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// SetFloat stores a numeric value.
func (r Row) SetFloat(col string, v float64) {
	r[col] = v
}

// Dataset is an ordered collection of rows with a stable column order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// NewDataset creates an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// HasColumn reports whether the dataset declares the column.
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends a column name if not already present.
func (d *Dataset) AddColumn(col string) {
	if !d.HasColumn(col) {
		d.Columns = append(d.Columns, col)
	}
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := NewDataset(d.Columns)
	out.Rows = make([]Row, len(d.Rows))
	for i, row := range d.Rows {
		out.Rows[i] = row.Clone()
	}
	return out
}

// NumericColumns returns the declared columns that are not categorical,
// preserving column order.
func (d *Dataset) NumericColumns() []string {
	var cols []string
	for _, c := range d.Columns {
		if !CategoricalColumns[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// ColumnFloats collects the present numeric values of a column.
func (d *Dataset) ColumnFloats(col string) []float64 {
	var values []float64
	for _, row := range d.Rows {
		if v, ok := row.Float(col); ok {
			values = append(values, v)
		}
	}
	return values
}

// SortByDistrictYear orders rows by district then year. Used before
// forward-filling lag features so the fill follows each district's
// own timeline.
func (d *Dataset) SortByDistrictYear() {
	sort.SliceStable(d.Rows, func(i, j int) bool {
		di, _ := d.Rows[i].String(ColDistrict)
		dj, _ := d.Rows[j].String(ColDistrict)
		if di != dj {
			return di < dj
		}
		yi, _ := d.Rows[i].Float(ColYear)
		yj, _ := d.Rows[j].Float(ColYear)
		return yi < yj
	})
}

// ReadCSV loads a dataset from a CSV file. The header row defines column
// order; empty cells become missing values.
func ReadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	header := records[0]
	ds := NewDataset(header)
	ds.Rows = make([]Row, 0, len(records)-1)

	for lineNo, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", lineNo+2, len(record), len(header))
		}
		row := make(Row, len(header))
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			col := header[i]
			if CategoricalColumns[col] {
				row[col] = cell
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: invalid numeric value %q", lineNo+2, col, cell)
			}
			row[col] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

// WriteCSV writes the dataset to a CSV file, creating parent directories.
// Missing values serialize as empty cells.
func (d *Dataset) WriteCSV(path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(d.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, col := range d.Columns {
			record[i] = formatCell(row, col)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func formatCell(row Row, col string) string {
	v, ok := row[col]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
