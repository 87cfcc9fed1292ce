package main

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.errorRecoveryMiddleware)
	s.router.Use(s.loggingMiddleware)

	// Liveness probe outside the versioned API
	s.router.HandleFunc("/health", s.handleLiveness).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.versionMiddleware("v1"))

	// Health and model introspection
	api.HandleFunc("/health", s.handleReadiness).Methods("GET")
	api.HandleFunc("/model/info", s.handleModelInfo).Methods("GET")
	api.HandleFunc("/model/feature-importance", s.handleFeatureImportance).Methods("GET")
	api.HandleFunc("/model/runs", s.handleModelRuns).Methods("GET")

	// Prediction
	predict := api.PathPrefix("").Subrouter()
	if s.config.GetConfig().Security.EnableAuth {
		predict.Use(s.authManager.AuthMiddleware())
	}
	predict.HandleFunc("/predict", s.handlePredict).Methods("POST")
	predict.HandleFunc("/predict/batch", s.handlePredictBatch).Methods("POST")

	// Static reference data
	api.HandleFunc("/districts", s.handleDistricts).Methods("GET")
	api.HandleFunc("/soil-types", s.handleSoilTypes).Methods("GET")
	api.HandleFunc("/parameters/ranges", s.handleParameterRanges).Methods("GET")

	// Auth
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorResponse(w, http.StatusNotFound, "Endpoint not found")
	})
}
