package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/shock-tracker/internal/models"
	"github.com/ukydev/shock-tracker/internal/repository"
)

// RecordsHandler serves maintenance records and their mutations for the
// presentation layer.
type RecordsHandler struct {
	repo *repository.Repository
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(repo *repository.Repository) *RecordsHandler {
	return &RecordsHandler{repo: repo}
}

// Records handles GET /api/records
func (h *RecordsHandler) Records(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := h.repo.GetAllRecords(r.Context())
	if records == nil {
		records = []models.MaintenanceRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// RecordByID routes /api/records/{bikeId} and its sub-resources:
// service, historical and thresholds.
func (h *RecordsHandler) RecordByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/records/")
	parts := strings.SplitN(rest, "/", 2)
	bikeID := parts[0]
	if bikeID == "" {
		http.Error(w, "Bike ID is required", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		h.getRecord(w, r, bikeID)
		return
	}

	switch parts[1] {
	case "service":
		h.recordService(w, r, bikeID)
	case "historical":
		h.addHistoricalHours(w, r, bikeID)
	case "thresholds":
		h.updateThresholds(w, r, bikeID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *RecordsHandler) getRecord(w http.ResponseWriter, r *http.Request, bikeID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	record, ok := h.repo.GetRecord(r.Context(), bikeID)
	if !ok {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// ServiceRequest is the body for recording a service.
type ServiceRequest struct {
	Position      models.ShockPosition `json:"position"`
	ServiceType   models.ServiceType   `json:"service_type"`
	ServiceDateMs int64                `json:"service_date_ms,omitempty"`
	Notes         string               `json:"notes,omitempty"`
}

func (h *RecordsHandler) recordService(w http.ResponseWriter, r *http.Request, bikeID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ServiceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !models.IsValidPosition(req.Position) {
		http.Error(w, "Invalid position", http.StatusBadRequest)
		return
	}
	if !models.IsValidServiceType(req.ServiceType) {
		http.Error(w, "Invalid service type", http.StatusBadRequest)
		return
	}

	if _, ok := h.repo.GetRecord(r.Context(), bikeID); !ok {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	serviceDate := req.ServiceDateMs
	if serviceDate == 0 {
		serviceDate = time.Now().UnixMilli()
	}

	if err := h.repo.RecordService(r.Context(), bikeID, req.Position, req.ServiceType, serviceDate, req.Notes); err != nil {
		http.Error(w, "Failed to record service", http.StatusInternalServerError)
		return
	}

	record, _ := h.repo.GetRecord(r.Context(), bikeID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// HistoricalHoursRequest is the body for adding retroactive hours.
type HistoricalHoursRequest struct {
	Hours float64 `json:"hours"`
}

func (h *RecordsHandler) addHistoricalHours(w http.ResponseWriter, r *http.Request, bikeID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req HistoricalHoursRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Hours <= 0 {
		http.Error(w, "Hours must be positive", http.StatusBadRequest)
		return
	}

	if _, ok := h.repo.GetRecord(r.Context(), bikeID); !ok {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	if err := h.repo.AddHistoricalHours(r.Context(), bikeID, req.Hours); err != nil {
		http.Error(w, "Failed to add historical hours", http.StatusInternalServerError)
		return
	}

	record, _ := h.repo.GetRecord(r.Context(), bikeID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// ThresholdsRequest is the body for updating a bike's service intervals.
type ThresholdsRequest struct {
	BasicHours float64 `json:"basic_hours"`
	FullHours  float64 `json:"full_hours"`
}

func (h *RecordsHandler) updateThresholds(w http.ResponseWriter, r *http.Request, bikeID string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req ThresholdsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.BasicHours <= 0 || req.FullHours <= 0 {
		http.Error(w, "Thresholds must be positive", http.StatusBadRequest)
		return
	}

	if _, ok := h.repo.GetRecord(r.Context(), bikeID); !ok {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	if err := h.repo.UpdateThresholds(r.Context(), bikeID, req.BasicHours, req.FullHours); err != nil {
		http.Error(w, "Failed to update thresholds", http.StatusInternalServerError)
		return
	}

	record, _ := h.repo.GetRecord(r.Context(), bikeID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// History handles GET /api/history with an optional bike_id filter.
func (h *RecordsHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := h.repo.GetServiceHistory(r.Context(), r.URL.Query().Get("bike_id"))
	if entries == nil {
		entries = []models.ServiceHistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
