package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ukydev/shock-tracker/internal/auth"
)

// AuthHandler handles rider authentication requests
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Passcode string `json:"passcode"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the rider passcode for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Passcode == "" {
		http.Error(w, "Passcode is required", http.StatusBadRequest)
		return
	}

	if !h.authService.CheckPasscode(loginReq.Passcode) {
		http.Error(w, "Invalid passcode", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken()
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}
