package models

// RideSession tracks metrics for an in-progress ride. At most one session
// is active at a time; it is persisted on ride start so a crash mid-ride
// can be recovered.
type RideSession struct {
	BikeID      string `json:"bike_id"`
	BikeName    string `json:"bike_name"`
	StartTimeMs int64  `json:"start_time_ms"`

	// Total elevation lost, cumulative as reported by the host stream.
	TotalDescentMeters float64 `json:"total_descent_meters"`

	DescentTimeMs int64 `json:"descent_time_ms"`
	ElapsedTimeMs int64 `json:"elapsed_time_ms"`
}

// ElapsedHours returns the total ride time in hours.
func (s RideSession) ElapsedHours() float64 {
	return float64(s.ElapsedTimeMs) / 3600000.0
}

// DescentHours returns the time spent descending in hours.
func (s RideSession) DescentHours() float64 {
	return float64(s.DescentTimeMs) / 3600000.0
}

// DescentPercentage returns the share of ride time spent descending.
func (s RideSession) DescentPercentage() float64 {
	if s.ElapsedTimeMs == 0 {
		return 0
	}
	return float64(s.DescentTimeMs) / float64(s.ElapsedTimeMs) * 100
}
