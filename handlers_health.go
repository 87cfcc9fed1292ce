package main

import (
	"net/http"
	"time"
)

// handleLiveness handles GET /health
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "maizeyield",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReadiness handles GET /api/v1/health, including model status
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	modelStatus := "unavailable"
	modelName := ""
	if s.modelService.Available() {
		modelStatus = "loaded"
		if s.modelService.Degraded() {
			modelStatus = "degraded"
		}
		if meta := s.modelService.Metadata(); meta != nil {
			modelName = meta.ModelName
		}
	}

	status := http.StatusOK
	if modelStatus == "unavailable" {
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, map[string]any{
		"status":       modelStatus,
		"model":        modelName,
		"uptime_secs":  int(time.Since(s.startedAt).Seconds()),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"history":      s.history != nil,
		"retrain_cron": s.config.GetConfig().Retrain.Enabled,
	})
}
