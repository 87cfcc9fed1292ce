package preprocess

// EngineeredColumns lists the derived features in the order they are
// appended to the dataset.
var EngineeredColumns = []string{
	ColGrowingDegreeDays,
	ColWaterAvailability,
	ColClimateStress,
	ColMoistureTempRatio,
	ColRainfallPerSun,
	ColYearsSincePFJ,
	ColYieldChange,
	ColYieldGrowthRate,
}

// pfjLaunchYear is the first year of the Planting for Food and Jobs
// programme; years_since_pfj counts from it.
const pfjLaunchYear = 2017

// growthRateEpsilon guards the growth-rate denominator against a zero lag.
const growthRateEpsilon = 0.001

// EngineerRow derives all engineered features for a single row, in place.
// It is pure over the input columns: each feature is computed only when
// its inputs are present, the target never feeds a feature, and applying
// it twice yields the same values.
func EngineerRow(row Row) {
	temp, hasTemp := row.Float(ColTemperature)
	sun, hasSun := row.Float(ColSunlight)
	rain, hasRain := row.Float(ColRainfall)
	humidity, hasHumidity := row.Float(ColHumidity)
	moisture, hasMoisture := row.Float(ColSoilMoisture)

	if hasTemp && hasSun {
		row.SetFloat(ColGrowingDegreeDays, temp*sun)
	}
	if hasRain && hasMoisture {
		row.SetFloat(ColWaterAvailability, rain*moisture)
	}
	if hasTemp && hasHumidity {
		row.SetFloat(ColClimateStress, temp/(humidity+1))
	}
	if hasMoisture && hasTemp {
		row.SetFloat(ColMoistureTempRatio, moisture/(temp+1))
	}
	if hasRain && hasSun {
		row.SetFloat(ColRainfallPerSun, rain/(sun+1))
	}

	if year, hasYear := row.Float(ColYear); hasYear {
		if policy, hasPolicy := row.Float(ColPFJPolicy); hasPolicy {
			if policy == 1 {
				since := year - pfjLaunchYear
				if since < 0 {
					since = 0
				}
				row.SetFloat(ColYearsSincePFJ, since)
			} else {
				row.SetFloat(ColYearsSincePFJ, 0)
			}
		}
	}

	// Lag deltas use only the two lag columns. When either lag is absent
	// both features are exactly zero so train and inference agree.
	lag1, hasLag1 := row.Float(ColYieldLag1)
	lag2, hasLag2 := row.Float(ColYieldLag2)
	if hasLag1 && hasLag2 {
		row.SetFloat(ColYieldChange, lag1-lag2)
		row.SetFloat(ColYieldGrowthRate, (lag1-lag2)/(lag2+growthRateEpsilon))
	} else {
		row.SetFloat(ColYieldChange, 0)
		row.SetFloat(ColYieldGrowthRate, 0)
	}
}

// EngineerFeatures applies EngineerRow to every row and registers the
// engineered column names on the dataset.
func EngineerFeatures(ds *Dataset) {
	for _, row := range ds.Rows {
		EngineerRow(row)
	}
	for _, col := range EngineeredColumns {
		ds.AddColumn(col)
	}
}
