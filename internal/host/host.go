// Package host abstracts the ride-recording host the tracker runs beside.
// The host publishes the bike roster, the active ride profile, ride-state
// transitions and a live descent stream; the tracker publishes in-ride
// alerts back to it.
package host

// MQTT topics for host traffic.
const (
	TopicBikes     = "shocktracker/host/bikes"
	TopicProfile   = "shocktracker/host/profile"
	TopicRideState = "shocktracker/host/ride_state"
	TopicDescent   = "shocktracker/host/descent"
	TopicAction    = "shocktracker/host/action"
	TopicAlerts    = "shocktracker/alerts"
)

// RideState is the host's recording state.
type RideState string

const (
	StateRecording RideState = "recording"
	StatePaused    RideState = "paused"
	StateIdle      RideState = "idle"
)

// Bike is one entry in the host's bike roster.
type Bike struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RideProfile is the host's currently selected ride profile.
type RideProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StreamState reports the availability of the descent stream.
type StreamState string

const (
	StreamStreaming    StreamState = "streaming"
	StreamNotAvailable StreamState = "not_available"
	StreamSearching    StreamState = "searching"
)

// DescentSample is one update from the descent stream. Meters is the
// cumulative elevation lost for the ride so far, not a delta, and is
// only meaningful when State is StreamStreaming.
type DescentSample struct {
	State  StreamState `json:"state"`
	Meters float64     `json:"meters"`
}

// RideAlert is a displayable alert dispatched to the host.
type RideAlert struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Detail          string `json:"detail"`
	AutoDismissMs   int    `json:"auto_dismiss_ms"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
}

// Subscription is a handle to an active event consumer. Cancel releases
// it; cancelling twice is safe.
type Subscription interface {
	Cancel()
}

// Source delivers host events to registered consumers. Each Consume call
// registers interest and returns a handle that must be cancelled when the
// consumer is done, on all exit paths.
type Source interface {
	ConsumeBikes(fn func([]Bike)) (Subscription, error)
	ConsumeProfile(fn func(RideProfile)) (Subscription, error)
	ConsumeRideState(fn func(RideState)) (Subscription, error)
	ConsumeDescent(fn func(DescentSample)) (Subscription, error)
	ConsumeActions(fn func(actionID string)) (Subscription, error)
}

// Notifier dispatches alerts to the rider. Dispatch is best-effort; the
// caller never inspects display outcome.
type Notifier interface {
	Dispatch(alert RideAlert) error
}
