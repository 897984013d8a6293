// Package repository owns all persisted maintenance state. Every mutation
// is a read-modify-write of a whole JSON document against the store; there
// are no partial updates, so concurrent writers must serialize.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/shock-tracker/internal/db"
	"github.com/ukydev/shock-tracker/internal/models"
)

// Repository provides access to maintenance records, service history,
// configuration and the active ride session.
type Repository struct {
	store db.DocumentStore
}

// New creates a repository over the given document store.
func New(store db.DocumentStore) *Repository {
	return &Repository{store: store}
}

// ========== Maintenance Records ==========

// GetAllRecords returns every maintenance record. Corrupt or missing
// stored data yields an empty list, never an error.
func (r *Repository) GetAllRecords(ctx context.Context) []models.MaintenanceRecord {
	data, err := r.store.Get(ctx, db.KeyMaintenanceRecords)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load maintenance records")
		}
		return nil
	}

	var records []models.MaintenanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.WithError(err).Error("Failed to decode maintenance records")
		return nil
	}
	return records
}

// GetRecord returns the record for a bike, if one exists.
func (r *Repository) GetRecord(ctx context.Context, bikeID string) (models.MaintenanceRecord, bool) {
	for _, rec := range r.GetAllRecords(ctx) {
		if rec.BikeID == bikeID {
			return rec, true
		}
	}
	return models.MaintenanceRecord{}, false
}

// SaveRecord inserts or replaces the record for its bike.
func (r *Repository) SaveRecord(ctx context.Context, record models.MaintenanceRecord) error {
	records := r.GetAllRecords(ctx)

	replaced := false
	for i := range records {
		if records[i].BikeID == record.BikeID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, db.KeyMaintenanceRecords, data); err != nil {
		return err
	}
	log.WithField("bike", record.BikeName).Debug("Saved maintenance record")
	return nil
}

// EnsureBikeRecord creates a record for the bike with the configured
// default thresholds if none exists yet.
func (r *Repository) EnsureBikeRecord(ctx context.Context, bikeID, bikeName string) error {
	if _, ok := r.GetRecord(ctx, bikeID); ok {
		return nil
	}
	config := r.GetThresholdConfig(ctx)
	record := models.NewMaintenanceRecord(bikeID, bikeName, config.DefaultBasicServiceHours, config.DefaultFullServiceHours)
	if err := r.SaveRecord(ctx, record); err != nil {
		return err
	}
	log.WithField("bike", bikeName).Debug("Created new maintenance record")
	return nil
}

// RecordService applies a service to a bike's record and appends a history
// entry. The history entry captures the position's lifetime hours before
// the counters reset. No-op when the bike has no record.
//
// The record update and the history append are separate single-key writes;
// a crash between them leaves the history entry missing. Accepted, since
// history is informational.
func (r *Repository) RecordService(ctx context.Context, bikeID string, position models.ShockPosition, serviceType models.ServiceType, serviceDateMs int64, notes string) error {
	record, ok := r.GetRecord(ctx, bikeID)
	if !ok {
		return nil
	}

	updated := record.ApplyService(position, serviceType, serviceDateMs)
	if err := r.SaveRecord(ctx, updated); err != nil {
		return err
	}

	entry := models.ServiceHistoryEntry{
		ID:             primitive.NewObjectID().Hex(),
		BikeID:         bikeID,
		Position:       position,
		ServiceType:    serviceType,
		ServiceDateMs:  serviceDateMs,
		HoursAtService: record.LifetimeHours(position),
		Notes:          notes,
	}
	if err := r.appendServiceHistory(ctx, entry); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"bike":     record.BikeName,
		"position": position,
		"type":     serviceType,
	}).Info("Recorded service")
	return nil
}

// AddRideDescentHours accrues a completed ride's descent hours to a bike's
// record. No-op when the bike has no record.
func (r *Repository) AddRideDescentHours(ctx context.Context, bikeID string, descentHours float64) error {
	record, ok := r.GetRecord(ctx, bikeID)
	if !ok {
		return nil
	}
	if err := r.SaveRecord(ctx, record.ApplyDescentHours(descentHours)); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"bike":  record.BikeName,
		"hours": descentHours,
	}).Info("Added ride descent hours")
	return nil
}

// AddHistoricalHours accrues retroactively entered descent hours.
// No-op when the bike has no record.
func (r *Repository) AddHistoricalHours(ctx context.Context, bikeID string, hours float64) error {
	record, ok := r.GetRecord(ctx, bikeID)
	if !ok {
		return nil
	}
	if err := r.SaveRecord(ctx, record.ApplyHistoricalHours(hours)); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"bike":  record.BikeName,
		"hours": hours,
	}).Info("Added historical hours")
	return nil
}

// UpdateThresholds sets the service intervals for a bike.
// No-op when the bike has no record.
func (r *Repository) UpdateThresholds(ctx context.Context, bikeID string, basicHours, fullHours float64) error {
	record, ok := r.GetRecord(ctx, bikeID)
	if !ok {
		return nil
	}
	record.BasicServiceThreshold = basicHours
	record.FullServiceThreshold = fullHours
	return r.SaveRecord(ctx, record)
}

// ========== Service History ==========

// GetServiceHistory returns service history entries, optionally filtered
// by bike. Pass an empty bikeID for all entries.
func (r *Repository) GetServiceHistory(ctx context.Context, bikeID string) []models.ServiceHistoryEntry {
	data, err := r.store.Get(ctx, db.KeyServiceHistory)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load service history")
		}
		return nil
	}

	var all []models.ServiceHistoryEntry
	if err := json.Unmarshal(data, &all); err != nil {
		log.WithError(err).Error("Failed to decode service history")
		return nil
	}
	if bikeID == "" {
		return all
	}

	var filtered []models.ServiceHistoryEntry
	for _, entry := range all {
		if entry.BikeID == bikeID {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func (r *Repository) appendServiceHistory(ctx context.Context, entry models.ServiceHistoryEntry) error {
	history := append(r.GetServiceHistory(ctx, ""), entry)
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, db.KeyServiceHistory, data)
}

// ========== Threshold Config ==========

// GetThresholdConfig returns the global configuration. Missing fields and
// decode failures fall back to the calibrated defaults.
func (r *Repository) GetThresholdConfig(ctx context.Context) models.ThresholdConfig {
	config := models.DefaultThresholdConfig()

	data, err := r.store.Get(ctx, db.KeyThresholdConfig)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load threshold config")
		}
		return config
	}
	if err := json.Unmarshal(data, &config); err != nil {
		log.WithError(err).Error("Failed to decode threshold config")
		return models.DefaultThresholdConfig()
	}
	return config
}

// SaveThresholdConfig stores the global configuration.
func (r *Repository) SaveThresholdConfig(ctx context.Context, config models.ThresholdConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, db.KeyThresholdConfig, data)
}

// ========== Active Session ==========

// GetActiveSession returns the persisted in-progress ride session, or nil
// when none is stored or the stored value cannot be decoded.
func (r *Repository) GetActiveSession(ctx context.Context) *models.RideSession {
	data, err := r.store.Get(ctx, db.KeyActiveSession)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load active session")
		}
		return nil
	}

	var session models.RideSession
	if err := json.Unmarshal(data, &session); err != nil {
		log.WithError(err).Error("Failed to decode active session")
		return nil
	}
	return &session
}

// SaveActiveSession stores the in-progress session. Passing nil removes
// the stored key entirely, which is how crash recovery distinguishes a
// finished ride from an interrupted one.
func (r *Repository) SaveActiveSession(ctx context.Context, session *models.RideSession) error {
	if session == nil {
		return r.store.Delete(ctx, db.KeyActiveSession)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, db.KeyActiveSession, data)
}

// ========== Bike-Profile Mapping ==========

// GetBikeProfileMap returns the ride-profile id to bike id mapping.
func (r *Repository) GetBikeProfileMap(ctx context.Context) map[string]string {
	data, err := r.store.Get(ctx, db.KeyBikeProfileMap)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load bike-profile map")
		}
		return map[string]string{}
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		log.WithError(err).Error("Failed to decode bike-profile map")
		return map[string]string{}
	}
	if m == nil {
		// A stored literal null decodes without error into a nil map.
		m = map[string]string{}
	}
	return m
}

// SetBikeProfile maps a ride-profile id to a bike id.
func (r *Repository) SetBikeProfile(ctx context.Context, profileID, bikeID string) error {
	m := r.GetBikeProfileMap(ctx)
	m[profileID] = bikeID
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, db.KeyBikeProfileMap, data)
}

// GetBikeIDForProfile resolves a ride-profile id to a bike id.
func (r *Repository) GetBikeIDForProfile(ctx context.Context, profileID string) (string, bool) {
	bikeID, ok := r.GetBikeProfileMap(ctx)[profileID]
	return bikeID, ok
}

// ========== Descent Rate ==========

// GetDescentRate returns the descent rate in meters per hour used to
// convert elevation lost into descent hours.
func (r *Repository) GetDescentRate(ctx context.Context) float64 {
	data, err := r.store.Get(ctx, db.KeyDescentRate)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to load descent rate")
		}
		return models.DefaultDescentRate
	}

	var rate float64
	if err := json.Unmarshal(data, &rate); err != nil || rate <= 0 {
		log.WithError(err).Error("Failed to decode descent rate")
		return models.DefaultDescentRate
	}
	return rate
}

// SetDescentRate stores the descent rate in meters per hour. Lower values
// mean faster, harder descents and therefore more wear per meter.
func (r *Repository) SetDescentRate(ctx context.Context, metersPerHour float64) error {
	data, err := json.Marshal(metersPerHour)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, db.KeyDescentRate, data); err != nil {
		return err
	}
	log.WithField("rate", metersPerHour).Debug("Set descent rate")
	return nil
}
