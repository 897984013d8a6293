package models

import (
	"encoding/json"
	"fmt"
)

// MaintenanceRecord tracks suspension wear for a single bike.
// Front fork and rear shock are tracked separately; descent hours
// accrue to both since no per-position telemetry split exists.
type MaintenanceRecord struct {
	BikeID   string `json:"bike_id"`
	BikeName string `json:"bike_name"`

	// Front fork
	FrontLastBasicServiceMs int64   `json:"front_last_basic_service_ms"`
	FrontLastFullServiceMs  int64   `json:"front_last_full_service_ms"`
	FrontHoursSinceBasic    float64 `json:"front_hours_since_basic"`
	FrontHoursSinceFull     float64 `json:"front_hours_since_full"`
	FrontLifetimeHours      float64 `json:"front_lifetime_hours"`

	// Rear shock
	RearLastBasicServiceMs int64   `json:"rear_last_basic_service_ms"`
	RearLastFullServiceMs  int64   `json:"rear_last_full_service_ms"`
	RearHoursSinceBasic    float64 `json:"rear_hours_since_basic"`
	RearHoursSinceFull     float64 `json:"rear_hours_since_full"`
	RearLifetimeHours      float64 `json:"rear_lifetime_hours"`

	// Ride stats
	TotalRides        int     `json:"total_rides"`
	TotalDescentHours float64 `json:"total_descent_hours"`

	// Hours entered retroactively for rides that predate tracking.
	// Counted toward the since-service counters only.
	HistoricalDescentHours float64 `json:"historical_descent_hours"`

	// Service intervals in descent hours
	BasicServiceThreshold float64 `json:"basic_service_threshold"`
	FullServiceThreshold  float64 `json:"full_service_threshold"`
}

// NewMaintenanceRecord creates a record for a bike with the given default thresholds.
func NewMaintenanceRecord(bikeID, bikeName string, basicThreshold, fullThreshold float64) MaintenanceRecord {
	return MaintenanceRecord{
		BikeID:                bikeID,
		BikeName:              bikeName,
		BasicServiceThreshold: basicThreshold,
		FullServiceThreshold:  fullThreshold,
	}
}

// UnmarshalJSON decodes a record with missing fields at their calibrated
// defaults. Documents written before a field existed must stay usable, and
// zero thresholds would report every shock as due.
func (r *MaintenanceRecord) UnmarshalJSON(data []byte) error {
	type plain MaintenanceRecord
	decoded := plain{
		BasicServiceThreshold: DefaultBasicServiceHours,
		FullServiceThreshold:  DefaultFullServiceHours,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = MaintenanceRecord(decoded)
	return nil
}

// HoursSinceBasic returns descent hours since the last basic service for a position.
func (r MaintenanceRecord) HoursSinceBasic(position ShockPosition) float64 {
	if position == PositionFront {
		return r.FrontHoursSinceBasic
	}
	return r.RearHoursSinceBasic
}

// HoursSinceFull returns descent hours since the last full service for a position.
func (r MaintenanceRecord) HoursSinceFull(position ShockPosition) float64 {
	if position == PositionFront {
		return r.FrontHoursSinceFull
	}
	return r.RearHoursSinceFull
}

// LifetimeHours returns the total descent hours recorded for a position.
func (r MaintenanceRecord) LifetimeHours(position ShockPosition) float64 {
	if position == PositionFront {
		return r.FrontLifetimeHours
	}
	return r.RearLifetimeHours
}

// IsBasicServiceDue checks if basic service is due for a position.
func (r MaintenanceRecord) IsBasicServiceDue(position ShockPosition) bool {
	return r.HoursSinceBasic(position) >= r.BasicServiceThreshold
}

// IsFullServiceDue checks if full service is due for a position.
func (r MaintenanceRecord) IsFullServiceDue(position ShockPosition) bool {
	return r.HoursSinceFull(position) >= r.FullServiceThreshold
}

// ServiceNeed is a due service identified by MostUrgentService.
type ServiceNeed struct {
	Position ShockPosition
	Type     ServiceType
	Ratio    float64 // hours since service divided by threshold
}

// MostUrgentService returns the due service with the highest urgency ratio,
// or nil when nothing has reached its threshold. On equal ratios the first
// of full-front, full-rear, basic-front, basic-rear wins.
func (r MaintenanceRecord) MostUrgentService() *ServiceNeed {
	checks := []ServiceNeed{
		{PositionFront, ServiceFull, r.FrontHoursSinceFull / r.FullServiceThreshold},
		{PositionRear, ServiceFull, r.RearHoursSinceFull / r.FullServiceThreshold},
		{PositionFront, ServiceBasic, r.FrontHoursSinceBasic / r.BasicServiceThreshold},
		{PositionRear, ServiceBasic, r.RearHoursSinceBasic / r.BasicServiceThreshold},
	}

	var urgent *ServiceNeed
	for i := range checks {
		c := checks[i]
		if c.Ratio < 1.0 {
			continue
		}
		if urgent == nil || c.Ratio > urgent.Ratio {
			urgent = &checks[i]
		}
	}
	return urgent
}

// ApplyService returns the record after a service at the given time.
// A full service also resets the basic counters for that position.
func (r MaintenanceRecord) ApplyService(position ShockPosition, serviceType ServiceType, serviceDateMs int64) MaintenanceRecord {
	switch position {
	case PositionFront:
		r.FrontLastBasicServiceMs = serviceDateMs
		r.FrontHoursSinceBasic = 0
		if serviceType == ServiceFull {
			r.FrontLastFullServiceMs = serviceDateMs
			r.FrontHoursSinceFull = 0
		}
	case PositionRear:
		r.RearLastBasicServiceMs = serviceDateMs
		r.RearHoursSinceBasic = 0
		if serviceType == ServiceFull {
			r.RearLastFullServiceMs = serviceDateMs
			r.RearHoursSinceFull = 0
		}
	}
	return r
}

// ApplyDescentHours returns the record after a completed ride's descent hours.
// Both positions accrue identically and the ride count increments.
func (r MaintenanceRecord) ApplyDescentHours(hours float64) MaintenanceRecord {
	r.FrontHoursSinceBasic += hours
	r.FrontHoursSinceFull += hours
	r.FrontLifetimeHours += hours
	r.RearHoursSinceBasic += hours
	r.RearHoursSinceFull += hours
	r.RearLifetimeHours += hours
	r.TotalRides++
	r.TotalDescentHours += hours
	return r
}

// ApplyHistoricalHours returns the record after retroactively entered hours.
// These count toward the since-service counters but not lifetime totals or
// the ride count, since they predate ride instrumentation.
func (r MaintenanceRecord) ApplyHistoricalHours(hours float64) MaintenanceRecord {
	r.HistoricalDescentHours += hours
	r.FrontHoursSinceBasic += hours
	r.FrontHoursSinceFull += hours
	r.RearHoursSinceBasic += hours
	r.RearHoursSinceFull += hours
	return r
}

// StatusSummary returns a short front/rear hours line for list views.
func (r MaintenanceRecord) StatusSummary() string {
	return fmt.Sprintf("Front: %.1fh | Rear: %.1fh", r.FrontHoursSinceBasic, r.RearHoursSinceBasic)
}
