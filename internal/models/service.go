package models

// ServiceHistoryEntry is an immutable record of a service event for a shock.
// Entries are append-only and never mutated or deleted.
type ServiceHistoryEntry struct {
	ID            string        `json:"id"`
	BikeID        string        `json:"bike_id"`
	Position      ShockPosition `json:"position"`
	ServiceType   ServiceType   `json:"service_type"`
	ServiceDateMs int64         `json:"service_date_ms"`

	// Lifetime descent hours for the position at the moment of service,
	// captured before the counters were reset.
	HoursAtService float64 `json:"hours_at_service"`

	Notes string `json:"notes"`
}
