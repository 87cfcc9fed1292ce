package main

// Synthetic dataset generator for local development. Produces a
// district-year panel resembling the Ghana maize survey data, with a
// few missing cells and duplicate rows so the cleaning stage has
// something to do.

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

var districts = []struct {
	Name      string
	BaseYield float64
	BaseRain  float64
	Soil      string
}{
	{"Tamale", 1.8, 950, "Loamy"},
	{"Yendi", 1.6, 900, "Sandy"},
	{"Savelugu", 1.7, 920, "Loamy"},
	{"Kumbungu", 1.5, 880, "Sandy"},
	{"Tolon", 1.6, 890, "Loamy"},
	{"Gushegu", 1.4, 850, "Sandy"},
	{"Karaga", 1.3, 820, "Sandy"},
	{"Saboba", 1.5, 870, "Clay"},
	{"Zabzugu", 1.4, 840, "Clay"},
	{"Nanumba North", 1.9, 1000, "Loamy"},
	{"Nanumba South", 1.8, 980, "Loamy"},
	{"Mion", 1.5, 860, "Silty"},
	{"Sagnarigu", 1.7, 930, "Loamy"},
	{"Tatale Sanguli", 1.4, 830, "Clay"},
}

func main() {
	var (
		out       = flag.String("out", "data/ghana_maize.csv", "output CSV path")
		startYear = flag.Int("start", 2010, "first survey year")
		endYear   = flag.Int("end", 2024, "last survey year")
		seed      = flag.Int64("seed", 7, "random seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	header := []string{
		"District", "Year", "Rainfall", "Temperature", "Humidity",
		"Sunlight", "Soil_Moisture", "Soil_Type", "Pest_Risk",
		"PFJ_Policy", "Yield_Lag1", "Yield_Lag2", "Yield",
	}
	var records [][]string

	for _, d := range districts {
		prev1, prev2 := 0.0, 0.0
		for year := *startYear; year <= *endYear; year++ {
			rain := d.BaseRain + rng.NormFloat64()*120
			temp := 27.0 + rng.NormFloat64()*2.5
			humidity := 70.0 + rng.NormFloat64()*8
			sunlight := 7.0 + rng.NormFloat64()*0.8
			moisture := clamp(0.45+rain/4000+rng.NormFloat64()*0.08, 0.05, 0.95)
			pest := 0.0
			if rng.Float64() < 0.25 {
				pest = 1
			}
			pfj := 0.0
			if year >= 2017 {
				pfj = 1
			}

			yield := d.BaseYield +
				0.0012*(rain-d.BaseRain) -
				0.06*(temp-27) +
				0.4*(moisture-0.5) +
				0.25*pfj -
				0.3*pest +
				rng.NormFloat64()*0.15
			if yield < 0.3 {
				yield = 0.3
			}

			row := []string{
				d.Name,
				strconv.Itoa(year),
				formatFloat(rain),
				formatFloat(temp),
				formatFloat(humidity),
				formatFloat(sunlight),
				formatFloat(moisture),
				d.Soil,
				formatFloat(pest),
				formatFloat(pfj),
				lagValue(prev1, year > *startYear),
				lagValue(prev2, year > *startYear+1),
				formatFloat(yield),
			}

			// Roughly 3% of weather cells go missing.
			for _, col := range []int{2, 3, 4, 6} {
				if rng.Float64() < 0.03 {
					row[col] = ""
				}
			}

			records = append(records, row)
			if rng.Float64() < 0.02 {
				dup := make([]string, len(row))
				copy(dup, row)
				records = append(records, dup)
			}

			prev2 = prev1
			prev1 = yield
		}
	}

	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	if err := writeCSV(*out, header, records); err != nil {
		fmt.Fprintf(os.Stderr, "generate_data: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d rows to %s\n", len(records), *out)
}

func lagValue(v float64, known bool) string {
	if !known {
		return ""
	}
	return formatFloat(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func writeCSV(path string, header []string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
