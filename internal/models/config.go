package models

// Default service intervals in descent hours.
const (
	DefaultBasicServiceHours = 50.0
	DefaultFullServiceHours  = 100.0
)

// DefaultDescentRate is the descent rate in meters per hour used to convert
// elevation lost into descent hours. 300 m/h represents a typical MTB descent
// including technical sections and rest stops.
const DefaultDescentRate = 300.0

// ThresholdConfig is the global service threshold and alerting configuration.
type ThresholdConfig struct {
	// Intervals applied to newly created maintenance records.
	DefaultBasicServiceHours float64 `json:"default_basic_service_hours"`
	DefaultFullServiceHours  float64 `json:"default_full_service_hours"`

	AlertEnabled   bool `json:"alert_enabled"`
	AlertAtRideEnd bool `json:"alert_at_ride_end"`

	// Fractions of the service interval at which the UI shades a shock.
	WarningThreshold  float64 `json:"warning_threshold"`  // 0.8 - yellow
	CriticalThreshold float64 `json:"critical_threshold"` // 1.0 - red
}

// DefaultThresholdConfig returns the calibrated default configuration.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		DefaultBasicServiceHours: DefaultBasicServiceHours,
		DefaultFullServiceHours:  DefaultFullServiceHours,
		AlertEnabled:             true,
		AlertAtRideEnd:           true,
		WarningThreshold:         0.8,
		CriticalThreshold:        1.0,
	}
}
