package db

import (
	"context"
	"errors"
)

// Store keys for the persisted documents. Each key holds one whole
// JSON document; there are no partial updates and no transactions
// across keys.
const (
	KeyMaintenanceRecords = "maintenance-records"
	KeyServiceHistory     = "service-history"
	KeyThresholdConfig    = "threshold-config"
	KeyActiveSession      = "active-ride-session"
	KeyBikeProfileMap     = "bike-profile-map"
	KeyDescentRate        = "descent-rate-meters-per-hour"
)

// ErrNotFound is returned when no document exists under a key.
var ErrNotFound = errors.New("document not found")

// DocumentStore defines the interface for whole-document persistence.
// Writes to a single key are atomic; a Put fully replaces any prior
// document under the key.
type DocumentStore interface {
	// Get returns the raw JSON document stored under key,
	// or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the raw JSON document under key, replacing any
	// existing document.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the document under key. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, key string) error
}
