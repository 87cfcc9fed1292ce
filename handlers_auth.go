package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agridata-gh/maizeyield/utils"
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister handles POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}

	user, err := s.authManager.RegisterUser(req.Email, req.Password, req.FullName, req.Organization)
	if err != nil {
		if errors.Is(err, utils.ErrUserExists) {
			writeErrorResponse(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		writeBadRequestResponse(w, err.Error())
		return
	}

	token, err := s.authManager.GenerateJWT(user)
	if err != nil {
		writeInternalServerErrorResponse(w, "Failed to issue token")
		return
	}

	writeJSONResponse(w, http.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"user_id":      user.ID,
			"email":        user.Email,
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   int(s.authManager.GetTokenExpiry().Seconds()),
		},
	})
}

// handleLogin handles POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, "Invalid request body: "+err.Error())
		return
	}

	user, err := s.authManager.AuthenticateUser(req.Email, req.Password)
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.authManager.GenerateJWT(user)
	if err != nil {
		writeInternalServerErrorResponse(w, "Failed to issue token")
		return
	}

	writeSuccessResponse(w, map[string]any{
		"user_id":      user.ID,
		"email":        user.Email,
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(s.authManager.GetTokenExpiry().Seconds()),
	})
}
