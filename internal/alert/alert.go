// Package alert decides whether a maintenance alert is warranted and
// composes the alerts the host displays.
package alert

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/shock-tracker/internal/host"
	"github.com/ukydev/shock-tracker/internal/models"
)

// Alert display colors.
const (
	colorMaintenance = "#FF5722"
	colorStatus      = "#2196F3"
	colorConfirm     = "#4CAF50"
	colorText        = "#FFFFFF"
)

// Manager evaluates alert policy and dispatches alerts to the host.
type Manager struct {
	notifier host.Notifier
	config   ConfigSource
}

// ConfigSource supplies the current threshold configuration.
type ConfigSource interface {
	GetThresholdConfig(ctx context.Context) models.ThresholdConfig
}

// NewManager creates an alert manager.
func NewManager(notifier host.Notifier, config ConfigSource) *Manager {
	return &Manager{notifier: notifier, config: config}
}

// ShouldAlert reports whether any service is due on the record and
// alerting is enabled.
func (m *Manager) ShouldAlert(ctx context.Context, record models.MaintenanceRecord) bool {
	if !m.config.GetThresholdConfig(ctx).AlertEnabled {
		return false
	}
	return record.IsBasicServiceDue(models.PositionFront) ||
		record.IsBasicServiceDue(models.PositionRear) ||
		record.IsFullServiceDue(models.PositionFront) ||
		record.IsFullServiceDue(models.PositionRear)
}

// ComposeMaintenanceAlert builds the service-due alert for a record.
// Per position a due full service supersedes the basic line, since a
// full service clears the basic counters too. Returns false when no
// line is due, in which case nothing should be dispatched.
func ComposeMaintenanceAlert(record models.MaintenanceRecord) (host.RideAlert, bool) {
	var lines []string

	for _, position := range []models.ShockPosition{models.PositionFront, models.PositionRear} {
		if record.IsFullServiceDue(position) {
			lines = append(lines, fmt.Sprintf("%s FULL service due (%.1fh)", position.Label(), record.HoursSinceFull(position)))
		} else if record.IsBasicServiceDue(position) {
			lines = append(lines, fmt.Sprintf("%s basic service due (%.1fh)", position.Label(), record.HoursSinceBasic(position)))
		}
	}

	if len(lines) == 0 {
		return host.RideAlert{}, false
	}

	return host.RideAlert{
		ID:              "shock-service-alert-" + record.BikeID,
		Title:           "Suspension Service Due",
		Detail:          record.BikeName + ":\n" + strings.Join(lines, "\n"),
		AutoDismissMs:   15000,
		BackgroundColor: colorMaintenance,
		TextColor:       colorText,
	}, true
}

// ComposeStatusAlert builds the current-status alert for a record,
// unconditional on due state.
func ComposeStatusAlert(record models.MaintenanceRecord) host.RideAlert {
	var detail strings.Builder
	detail.WriteString(record.BikeName)

	for _, position := range []models.ShockPosition{models.PositionFront, models.PositionRear} {
		hours := record.HoursSinceBasic(position)
		remaining := record.BasicServiceThreshold - hours
		detail.WriteString(fmt.Sprintf("\n\n%s: %.1fh", position.Label(), hours))
		if remaining > 0 {
			detail.WriteString(fmt.Sprintf(" (%.1fh to service)", remaining))
		} else {
			detail.WriteString(" (SERVICE DUE)")
		}
	}

	return host.RideAlert{
		ID:              "shock-status-" + record.BikeID,
		Title:           "Suspension Status",
		Detail:          detail.String(),
		AutoDismissMs:   10000,
		BackgroundColor: colorStatus,
		TextColor:       colorText,
	}
}

// ComposeServiceConfirmation builds the confirmation shown after a
// rider records a service from the host.
func ComposeServiceConfirmation(position models.ShockPosition, serviceType models.ServiceType) host.RideAlert {
	return host.RideAlert{
		ID:              "shock-service-confirmed",
		Title:           "Service Recorded!",
		Detail:          fmt.Sprintf("%s %s service recorded.\nHours reset.", position.Label(), serviceType.Label()),
		AutoDismissMs:   5000,
		BackgroundColor: colorConfirm,
		TextColor:       colorText,
	}
}

// ShowMaintenanceAlert dispatches the service-due alert. Dispatch
// failures are logged and swallowed.
func (m *Manager) ShowMaintenanceAlert(record models.MaintenanceRecord) {
	a, ok := ComposeMaintenanceAlert(record)
	if !ok {
		return
	}
	if err := m.notifier.Dispatch(a); err != nil {
		log.WithError(err).Error("Failed to show maintenance alert")
		return
	}
	log.WithField("bike", record.BikeName).Info("Maintenance alert shown")
}

// ShowStatusAlert dispatches the current-status alert.
func (m *Manager) ShowStatusAlert(record models.MaintenanceRecord) {
	if err := m.notifier.Dispatch(ComposeStatusAlert(record)); err != nil {
		log.WithError(err).Error("Failed to show status alert")
	}
}

// ShowServiceConfirmation dispatches a service confirmation.
func (m *Manager) ShowServiceConfirmation(position models.ShockPosition, serviceType models.ServiceType) {
	if err := m.notifier.Dispatch(ComposeServiceConfirmation(position, serviceType)); err != nil {
		log.WithError(err).Error("Failed to show confirmation")
	}
}
