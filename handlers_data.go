package main

import (
	"net/http"

	"github.com/agridata-gh/maizeyield/serving"
)

// handleDistricts handles GET /api/v1/districts
func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	districts := serving.Districts()
	writeSuccessResponse(w, map[string]any{
		"districts": districts,
		"count":     len(districts),
	})
}

// handleSoilTypes handles GET /api/v1/soil-types
func (s *Server) handleSoilTypes(w http.ResponseWriter, r *http.Request) {
	soilTypes := serving.SoilTypes()
	writeSuccessResponse(w, map[string]any{
		"soil_types": soilTypes,
		"count":      len(soilTypes),
	})
}

// handleParameterRanges handles GET /api/v1/parameters/ranges
func (s *Server) handleParameterRanges(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, serving.ParameterRanges())
}
