package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ukydev/shock-tracker/internal/repository"
)

// ConfigHandler serves the global threshold configuration, descent rate
// and bike-profile mapping.
type ConfigHandler struct {
	repo *repository.Repository
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(repo *repository.Repository) *ConfigHandler {
	return &ConfigHandler{repo: repo}
}

// Config handles GET and PUT /api/config
func (h *ConfigHandler) Config(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.repo.GetThresholdConfig(r.Context()))
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		// Unmarshal over the stored config so omitted fields keep
		// their current values.
		config := h.repo.GetThresholdConfig(r.Context())
		if err := json.Unmarshal(body, &config); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if config.DefaultBasicServiceHours <= 0 || config.DefaultFullServiceHours <= 0 {
			http.Error(w, "Default thresholds must be positive", http.StatusBadRequest)
			return
		}

		if err := h.repo.SaveThresholdConfig(r.Context(), config); err != nil {
			http.Error(w, "Failed to save config", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(config)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// DescentRateRequest is the body for setting the descent rate.
type DescentRateRequest struct {
	MetersPerHour float64 `json:"meters_per_hour"`
}

// DescentRate handles GET and PUT /api/descent-rate
func (h *ConfigHandler) DescentRate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(DescentRateRequest{MetersPerHour: h.repo.GetDescentRate(r.Context())})
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var req DescentRateRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.MetersPerHour <= 0 {
			http.Error(w, "Descent rate must be positive", http.StatusBadRequest)
			return
		}

		if err := h.repo.SetDescentRate(r.Context(), req.MetersPerHour); err != nil {
			http.Error(w, "Failed to save descent rate", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(req)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ProfileMapRequest is the body for mapping a ride profile to a bike.
type ProfileMapRequest struct {
	ProfileID string `json:"profile_id"`
	BikeID    string `json:"bike_id"`
}

// ProfileMap handles GET and PUT /api/profile-map
func (h *ConfigHandler) ProfileMap(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.repo.GetBikeProfileMap(r.Context()))
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}

		var req ProfileMapRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.ProfileID == "" || req.BikeID == "" {
			http.Error(w, "Profile ID and bike ID are required", http.StatusBadRequest)
			return
		}

		if err := h.repo.SetBikeProfile(r.Context(), req.ProfileID, req.BikeID); err != nil {
			http.Error(w, "Failed to save profile mapping", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.repo.GetBikeProfileMap(r.Context()))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
