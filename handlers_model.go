package main

import (
	"net/http"
	"strconv"
)

// handleModelInfo handles GET /api/v1/model/info
func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	meta := s.modelService.Metadata()
	if meta == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "No trained model is available")
		return
	}
	writeSuccessResponse(w, map[string]any{
		"model_name":      meta.ModelName,
		"training_date":   meta.TrainingDate,
		"features":        meta.Features,
		"feature_count":   meta.FeatureCount,
		"requires_scaled": meta.RequiresScaled,
		"hyperparameters": meta.Hyperparams,
		"test_metrics":    meta.TestMetrics,
		"train_rows":      meta.TrainRows,
		"run_id":          meta.RunID,
		"degraded_load":   s.modelService.Degraded(),
	})
}

// handleFeatureImportance handles GET /api/v1/model/feature-importance
func (s *Server) handleFeatureImportance(w http.ResponseWriter, r *http.Request) {
	if !s.modelService.Available() {
		writeErrorResponse(w, http.StatusServiceUnavailable, "No trained model is available")
		return
	}

	topN := 10
	if v := r.URL.Query().Get("top"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topN = n
		}
	}

	importance := s.modelService.FeatureImportance(topN)
	writeSuccessResponse(w, map[string]any{
		"feature_importance": importance,
		"count":              len(importance),
	})
}

// handleModelRuns handles GET /api/v1/model/runs
func (s *Server) handleModelRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeErrorResponse(w, http.StatusNotImplemented, "Training run history is not enabled")
		return
	}

	limit := parseLimit(r, 20)
	runs, err := s.history.List(limit)
	if err != nil {
		writeInternalServerErrorResponse(w, "Failed to list training runs: "+err.Error())
		return
	}
	writeSuccessResponse(w, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
