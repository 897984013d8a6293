// Package tracker drives the ride-session lifecycle: it consumes host
// ride-state transitions and descent telemetry, accrues descent wear on
// ride end and triggers maintenance alerts.
package tracker

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/shock-tracker/internal/alert"
	"github.com/ukydev/shock-tracker/internal/host"
	"github.com/ukydev/shock-tracker/internal/models"
	"github.com/ukydev/shock-tracker/internal/repository"
)

// descentTimeFraction is the assumed share of ride time spent descending
// when no telemetry arrived. A tunable heuristic, not a physical law.
const descentTimeFraction = 0.30

// Negligible-ride cutoffs; rides under either are discarded without
// recording wear, guarding against telemetry noise and zero-distance
// test rides.
const (
	minDescentMeters = 10.0
	minDescentHours  = 0.01
)

// Host actions the rider can trigger mid-ride.
const (
	ActionServiceFrontBasic = "service-front-basic"
	ActionServiceRearBasic  = "service-rear-basic"
	ActionCheckStatus       = "check-status"
)

// Tracker is the ride lifecycle controller. It is the single writer of
// ride-derived maintenance state; no two sessions are ever concurrently
// active.
type Tracker struct {
	repo   *repository.Repository
	source host.Source
	alerts *alert.Manager
	now    func() time.Time

	ctx context.Context

	mu         sync.Mutex
	subs       []host.Subscription
	descentSub host.Subscription

	knownBikes       []host.Bike
	currentProfileID string
	currentBikeID    string
	currentBikeName  string

	session        *models.RideSession
	recording      bool
	descentMeters  float64
	hasDescentData bool
}

// New creates a tracker. It does nothing until Start is called.
func New(repo *repository.Repository, source host.Source, alerts *alert.Manager) *Tracker {
	return &Tracker{
		repo:   repo,
		source: source,
		alerts: alerts,
		now:    time.Now,
	}
}

// Start registers the host event consumers and recovers a persisted
// session left behind by a crash mid-ride.
func (t *Tracker) Start(ctx context.Context) error {
	t.ctx = ctx

	consumers := []func() (host.Subscription, error){
		func() (host.Subscription, error) { return t.source.ConsumeBikes(t.handleBikes) },
		func() (host.Subscription, error) { return t.source.ConsumeProfile(t.handleProfile) },
		func() (host.Subscription, error) { return t.source.ConsumeRideState(t.handleRideState) },
		func() (host.Subscription, error) { return t.source.ConsumeActions(t.handleAction) },
	}
	for _, register := range consumers {
		sub, err := register()
		if err != nil {
			t.Stop()
			return err
		}
		t.subs = append(t.subs, sub)
	}
	log.WithField("consumers", len(t.subs)).Debug("Registered host event consumers")

	t.recoverSession()
	return nil
}

// Stop releases every host subscription, including a live descent
// subscription.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sub := range t.subs {
		sub.Cancel()
	}
	t.subs = nil
	t.stopDescentConsumerLocked()
}

// recoverSession restores a persisted active session after a restart.
// Telemetry is not resubscribed here; the next ride-state event from the
// host drives that.
func (t *Tracker) recoverSession() {
	saved := t.repo.GetActiveSession(t.ctx)
	if saved == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = saved
	t.currentBikeID = saved.BikeID
	t.currentBikeName = saved.BikeName
	t.recording = true
	log.WithField("bike", saved.BikeName).Info("Recovered active session")
}

func (t *Tracker) handleBikes(bikes []host.Bike) {
	log.WithField("count", len(bikes)).Debug("Received bike roster")

	t.mu.Lock()
	t.knownBikes = bikes
	t.mu.Unlock()

	for _, bike := range bikes {
		if err := t.repo.EnsureBikeRecord(t.ctx, bike.ID, bike.Name); err != nil {
			log.WithError(err).WithField("bike", bike.Name).Error("Failed to ensure bike record")
		}
	}
}

// handleProfile resolves which bike the upcoming ride is on. Resolution
// order: explicit profile mapping, name containment either way, the only
// known bike, and finally the profile itself registered as a bike.
func (t *Tracker) handleProfile(profile host.RideProfile) {
	log.WithFields(log.Fields{"id": profile.ID, "name": profile.Name}).Debug("Active profile changed")

	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentProfileID = profile.ID

	if mappedID, ok := t.repo.GetBikeIDForProfile(t.ctx, profile.ID); ok {
		t.currentBikeID = mappedID
		t.currentBikeName = ""
		for _, bike := range t.knownBikes {
			if bike.ID == mappedID {
				t.currentBikeName = bike.Name
			}
		}
		return
	}

	for _, bike := range t.knownBikes {
		if containsFold(profile.Name, bike.Name) || containsFold(bike.Name, profile.Name) {
			t.currentBikeID = bike.ID
			t.currentBikeName = bike.Name
			return
		}
	}

	if len(t.knownBikes) == 1 {
		t.currentBikeID = t.knownBikes[0].ID
		t.currentBikeName = t.knownBikes[0].Name
		return
	}

	// Fall back to tracking the profile as its own bike.
	t.currentBikeID = profile.ID
	t.currentBikeName = profile.Name
	if err := t.repo.EnsureBikeRecord(t.ctx, profile.ID, profile.Name); err != nil {
		log.WithError(err).Error("Failed to ensure profile record")
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (t *Tracker) handleRideState(state host.RideState) {
	switch state {
	case host.StateRecording:
		t.mu.Lock()
		alreadyRecording := t.recording
		if !alreadyRecording {
			t.recording = true
		}
		t.mu.Unlock()
		if !alreadyRecording {
			log.Info("Ride started")
			t.startRide()
		}
	case host.StatePaused:
		log.Debug("Ride paused")
	case host.StateIdle:
		t.mu.Lock()
		wasRecording := t.recording
		t.recording = false
		t.mu.Unlock()
		if wasRecording {
			log.Info("Ride ended")
			t.finalizeRide()
		}
	}
}

// startRide creates and persists the session and begins consuming the
// descent stream. A ride with no resolved bike is silently skipped.
func (t *Tracker) startRide() {
	t.mu.Lock()
	bikeID := t.currentBikeID
	bikeName := t.currentBikeName
	t.mu.Unlock()

	if bikeID == "" {
		log.Warn("Ride started with no resolved bike, not tracking")
		return
	}
	if bikeName == "" {
		bikeName = "Unknown"
	}

	session := &models.RideSession{
		BikeID:      bikeID,
		BikeName:    bikeName,
		StartTimeMs: t.now().UnixMilli(),
	}

	t.mu.Lock()
	t.session = session
	t.descentMeters = 0
	t.hasDescentData = false
	t.mu.Unlock()

	// Persist immediately so a crash mid-ride is recoverable.
	if err := t.repo.SaveActiveSession(t.ctx, session); err != nil {
		log.WithError(err).Error("Failed to persist active session")
	}

	t.startDescentConsumer()
	log.WithField("bike", bikeName).Info("Started tracking ride")
}

func (t *Tracker) startDescentConsumer() {
	sub, err := t.source.ConsumeDescent(t.handleDescent)
	if err != nil {
		log.WithError(err).Error("Failed to start descent consumer, will use estimate")
		return
	}
	t.mu.Lock()
	t.descentSub = sub
	t.mu.Unlock()
	log.Debug("Started descent consumer")
}

func (t *Tracker) stopDescentConsumerLocked() {
	if t.descentSub != nil {
		t.descentSub.Cancel()
		t.descentSub = nil
		log.Debug("Stopped descent consumer")
	}
}

// handleDescent stores the latest cumulative descent value. The stream
// reports descent-to-date, so each numeric sample overwrites the
// accumulator rather than adding to it.
func (t *Tracker) handleDescent(sample host.DescentSample) {
	switch sample.State {
	case host.StreamStreaming:
		t.mu.Lock()
		t.descentMeters = sample.Meters
		t.hasDescentData = true
		if t.session != nil {
			t.session.TotalDescentMeters = sample.Meters
		}
		t.mu.Unlock()
		log.WithField("meters", sample.Meters).Debug("Descent updated")
	case host.StreamNotAvailable:
		log.Debug("Descent data not available")
	case host.StreamSearching:
		log.Debug("Searching for descent data")
	}
}

// finalizeRide converts the ride's descent into wear hours and records
// them. Runs on every Recording to Idle transition; the active session
// is cleared unconditionally, whether or not wear was recorded.
func (t *Tracker) finalizeRide() {
	t.mu.Lock()
	session := t.session
	liveMeters := t.descentMeters
	hasData := t.hasDescentData
	t.stopDescentConsumerLocked()
	t.mu.Unlock()

	if session == nil {
		return
	}

	elapsedHours := float64(t.now().UnixMilli()-session.StartTimeMs) / 3600000.0
	descentRate := t.repo.GetDescentRate(t.ctx)

	// Prefer live stream data, then the session's last known value,
	// then estimate from ride time.
	var descentMeters float64
	usedActualData := true
	switch {
	case hasData && liveMeters > 0:
		descentMeters = liveMeters
	case session.TotalDescentMeters > 0:
		descentMeters = session.TotalDescentMeters
	default:
		descentMeters = elapsedHours * descentTimeFraction * descentRate
		usedActualData = false
		log.Warn("Using estimated descent (no actual data available)")
	}

	descentHours := descentMeters / descentRate

	if descentHours < minDescentHours || descentMeters < minDescentMeters {
		log.WithField("meters", descentMeters).Debug("Ride has minimal descent, not counting")
		t.clearActiveSession()
		return
	}

	if err := t.repo.AddRideDescentHours(t.ctx, session.BikeID, descentHours); err != nil {
		log.WithError(err).Error("Failed to record descent hours")
	}

	if record, ok := t.repo.GetRecord(t.ctx, session.BikeID); ok && t.alerts.ShouldAlert(t.ctx, record) {
		t.alerts.ShowMaintenanceAlert(record)
	}

	dataSource := "actual"
	if !usedActualData {
		dataSource = "estimated"
	}
	log.WithFields(log.Fields{
		"meters": descentMeters,
		"hours":  descentHours,
		"source": dataSource,
	}).Info("Finalized ride")

	t.clearActiveSession()
}

func (t *Tracker) clearActiveSession() {
	t.mu.Lock()
	t.session = nil
	t.descentMeters = 0
	t.hasDescentData = false
	t.mu.Unlock()

	if err := t.repo.SaveActiveSession(t.ctx, nil); err != nil {
		log.WithError(err).Error("Failed to clear active session")
	}
}

// handleAction responds to rider-triggered host actions.
func (t *Tracker) handleAction(actionID string) {
	log.WithField("action", actionID).Debug("Host action")
	switch actionID {
	case ActionServiceFrontBasic:
		t.recordServiceAction(models.PositionFront, models.ServiceBasic)
	case ActionServiceRearBasic:
		t.recordServiceAction(models.PositionRear, models.ServiceBasic)
	case ActionCheckStatus:
		t.checkStatusAction()
	}
}

func (t *Tracker) recordServiceAction(position models.ShockPosition, serviceType models.ServiceType) {
	t.mu.Lock()
	bikeID := t.currentBikeID
	t.mu.Unlock()
	if bikeID == "" {
		return
	}

	if err := t.repo.RecordService(t.ctx, bikeID, position, serviceType, t.now().UnixMilli(), ""); err != nil {
		log.WithError(err).Error("Failed to record service")
		return
	}
	t.alerts.ShowServiceConfirmation(position, serviceType)
}

func (t *Tracker) checkStatusAction() {
	t.mu.Lock()
	bikeID := t.currentBikeID
	t.mu.Unlock()
	if bikeID == "" {
		return
	}

	if record, ok := t.repo.GetRecord(t.ctx, bikeID); ok {
		t.alerts.ShowStatusAlert(record)
	}
}

// Recording reports whether a ride is currently being tracked.
func (t *Tracker) Recording() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recording
}

// ActiveSession returns a copy of the in-memory session, if any.
func (t *Tracker) ActiveSession() *models.RideSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return nil
	}
	copied := *t.session
	return &copied
}

// SetClock overrides the time source, for tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}
