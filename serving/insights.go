package serving

// Agronomic thresholds for the risk and recommendation rules. Rainfall is
// mm per season, temperature °C, yield tons per hectare.
const (
	lowRainfall     = 600.0
	highRainfall    = 1000.0
	highTemperature = 30.0
	lowTemperature  = 20.0
	lowSoilMoisture = 0.5
	highHumidity    = 85.0

	lowYield  = 1.5
	highYield = 2.5

	ciHalfWidth        = 1.96 * 0.25
	maxRecommendations = 5
)

// confidenceInterval is a fixed-width interval around the prediction,
// with the lower bound clamped at zero.
func confidenceInterval(prediction float64) ConfidenceInterval {
	lower := prediction - ciHalfWidth
	if lower < 0 {
		lower = 0
	}
	return ConfidenceInterval{Lower: lower, Upper: prediction + ciHalfWidth}
}

// riskFactors flags input conditions known to depress maize yield.
func riskFactors(input *PredictionInput) []string {
	risks := []string{}

	if input.Rainfall < lowRainfall {
		risks = append(risks, "Low rainfall may limit crop growth")
	} else if input.Rainfall > highRainfall {
		risks = append(risks, "Excess rainfall may cause waterlogging")
	}

	if input.Temperature > highTemperature {
		risks = append(risks, "High temperature may cause heat stress")
	} else if input.Temperature < lowTemperature {
		risks = append(risks, "Low temperature may slow crop development")
	}

	if input.SoilMoisture < lowSoilMoisture {
		risks = append(risks, "Low soil moisture indicates drought stress")
	}
	if input.PestRisk == 1 {
		risks = append(risks, "Elevated pest pressure reported in this area")
	}
	if input.Humidity > highHumidity {
		risks = append(risks, "High humidity increases fungal disease risk")
	}

	return risks
}

// recommendations suggests actions for the flagged conditions plus the
// policy and predicted-yield rules, capped at maxRecommendations.
func recommendations(input *PredictionInput, prediction float64) []string {
	recs := []string{}

	if input.Rainfall < lowRainfall {
		recs = append(recs, "Consider supplemental irrigation to offset low rainfall")
	} else if input.Rainfall > highRainfall {
		recs = append(recs, "Improve field drainage to prevent waterlogging")
	}

	if input.Temperature > highTemperature {
		recs = append(recs, "Plant heat-tolerant maize varieties")
	} else if input.Temperature < lowTemperature {
		recs = append(recs, "Delay planting until soil temperatures rise")
	}

	if input.SoilMoisture < lowSoilMoisture {
		recs = append(recs, "Apply mulching to conserve soil moisture")
	}
	if input.PestRisk == 1 {
		recs = append(recs, "Scout fields regularly and apply integrated pest management")
	}
	if input.Humidity > highHumidity {
		recs = append(recs, "Increase plant spacing to improve airflow and reduce disease")
	}
	if input.PFJPolicy == 0 {
		recs = append(recs, "Enroll in the Planting for Food and Jobs programme for input support")
	}

	if prediction < lowYield {
		recs = append(recs, "Predicted yield is low; review soil fertility and consider certified seed")
	} else if prediction > highYield {
		recs = append(recs, "Conditions look favorable; maintain current practices and plan storage")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
