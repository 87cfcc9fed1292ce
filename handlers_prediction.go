package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/agridata-gh/maizeyield/serving"
)

// maxBatchSize bounds a single batch prediction request.
const maxBatchSize = 100

// handlePredict handles POST /api/v1/predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var input serving.PredictionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}

	if problems := serving.ValidateInput(&input); len(problems) > 0 {
		writeBadRequestResponse(w, "Invalid input: "+strings.Join(problems, "; "))
		return
	}

	result, err := s.modelService.Predict(&input)
	if err != nil {
		writePredictionError(w, err)
		return
	}
	writeSuccessResponse(w, result)
}

// BatchPredictionRequest wraps the inputs of a batch request
type BatchPredictionRequest struct {
	Inputs []*serving.PredictionInput `json:"inputs"`
}

// handlePredictBatch handles POST /api/v1/predict/batch
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Inputs) == 0 {
		writeBadRequestResponse(w, "Batch request has no inputs")
		return
	}
	if len(req.Inputs) > maxBatchSize {
		writeBadRequestResponse(w, "Batch size exceeds the maximum of 100")
		return
	}

	for i, input := range req.Inputs {
		if problems := serving.ValidateInput(input); len(problems) > 0 {
			writeBadRequestResponse(w,
				"Invalid input at item "+strconv.Itoa(i)+": "+strings.Join(problems, "; "))
			return
		}
	}

	results, err := s.modelService.PredictBatch(req.Inputs)
	if err != nil {
		writePredictionError(w, err)
		return
	}
	writeSuccessResponse(w, map[string]any{
		"predictions": results,
		"count":       len(results),
	})
}

// writePredictionError translates service errors to HTTP status codes
func writePredictionError(w http.ResponseWriter, err error) {
	if errors.Is(err, serving.ErrModelUnavailable) {
		writeErrorResponse(w, http.StatusServiceUnavailable,
			"No trained model is available; run the training pipeline first")
		return
	}
	if strings.Contains(err.Error(), "missing required features") {
		writeBadRequestResponse(w, err.Error())
		return
	}
	writeInternalServerErrorResponse(w, err.Error())
}
