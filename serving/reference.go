package serving

// Static reference data for the public lookup endpoints.

// ParameterRange documents the accepted span of one input parameter.
type ParameterRange struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// Districts lists the maize-growing districts the model was trained on.
func Districts() []string {
	return []string{
		"Bawku",
		"Bolgatanga",
		"Damongo",
		"Ejura",
		"Ho",
		"Kintampo",
		"Nkoranza",
		"Salaga",
		"Sunyani",
		"Tamale",
		"Techiman",
		"Wa",
		"Wenchi",
		"Yendi",
	}
}

// SoilTypes lists the recognized soil categories.
func SoilTypes() []string {
	return []string{"Clay", "Loamy", "Sandy", "Silty"}
}

// ParameterRanges documents the valid span for each numeric input.
func ParameterRanges() map[string]ParameterRange {
	return map[string]ParameterRange{
		"year": {
			Min: 2011, Max: 2030, Unit: "year",
			Description: "Season year",
		},
		"rainfall": {
			Min: 0, Max: 2000, Unit: "mm",
			Description: "Total seasonal rainfall",
		},
		"temperature": {
			Min: 10, Max: 45, Unit: "°C",
			Description: "Mean growing-season temperature",
		},
		"humidity": {
			Min: 0, Max: 100, Unit: "%",
			Description: "Mean relative humidity",
		},
		"sunlight": {
			Min: 0, Max: 14, Unit: "hours/day",
			Description: "Mean daily sunlight hours",
		},
		"soil_moisture": {
			Min: 0, Max: 1, Unit: "fraction",
			Description: "Volumetric soil moisture",
		},
		"pest_risk": {
			Min: 0, Max: 1, Unit: "flag",
			Description: "1 when elevated pest pressure is reported",
		},
		"pfj_policy": {
			Min: 0, Max: 1, Unit: "flag",
			Description: "1 when the district is enrolled in Planting for Food and Jobs",
		},
		"yield_lag1": {
			Min: 0, Max: 10, Unit: "tons/ha",
			Description: "Previous season yield, if known",
		},
		"yield_lag2": {
			Min: 0, Max: 10, Unit: "tons/ha",
			Description: "Yield two seasons back, if known",
		},
	}
}

// ValidateInput checks a prediction input against the documented ranges,
// returning every violation.
func ValidateInput(input *PredictionInput) []string {
	ranges := ParameterRanges()
	var problems []string

	check := func(name string, value float64) {
		r, ok := ranges[name]
		if !ok {
			return
		}
		if value < r.Min || value > r.Max {
			problems = append(problems,
				name+" is outside the accepted range")
		}
	}

	if input.District == "" {
		problems = append(problems, "district is required")
	}
	check("year", float64(input.Year))
	check("rainfall", input.Rainfall)
	check("temperature", input.Temperature)
	check("humidity", input.Humidity)
	check("sunlight", input.Sunlight)
	check("soil_moisture", input.SoilMoisture)
	check("pest_risk", float64(input.PestRisk))
	check("pfj_policy", float64(input.PFJPolicy))
	if input.YieldLag1 != nil {
		check("yield_lag1", *input.YieldLag1)
	}
	if input.YieldLag2 != nil {
		check("yield_lag2", *input.YieldLag2)
	}
	return problems
}
