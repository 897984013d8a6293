package alert

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/shock-tracker/internal/host"
	"github.com/ukydev/shock-tracker/internal/models"
)

// stubConfig serves a fixed threshold configuration.
type stubConfig struct {
	config models.ThresholdConfig
}

func (s stubConfig) GetThresholdConfig(context.Context) models.ThresholdConfig {
	return s.config
}

func dueRecord() models.MaintenanceRecord {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 50.2
	return r
}

func TestShouldAlert(t *testing.T) {
	notifier := host.NewFakeHost()

	tests := []struct {
		name     string
		record   models.MaintenanceRecord
		enabled  bool
		expected bool
	}{
		{"nothing due", models.NewMaintenanceRecord("b1", "Enduro", 50, 100), true, false},
		{"basic due", dueRecord(), true, true},
		{"due but alerts disabled", dueRecord(), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := models.DefaultThresholdConfig()
			config.AlertEnabled = tt.enabled
			m := NewManager(notifier, stubConfig{config})
			assert.Equal(t, tt.expected, m.ShouldAlert(context.Background(), tt.record))
		})
	}
}

func TestShouldAlert_AnyOfFourChecks(t *testing.T) {
	notifier := host.NewFakeHost()
	m := NewManager(notifier, stubConfig{models.DefaultThresholdConfig()})

	mutations := []func(*models.MaintenanceRecord){
		func(r *models.MaintenanceRecord) { r.FrontHoursSinceBasic = 50 },
		func(r *models.MaintenanceRecord) { r.RearHoursSinceBasic = 50 },
		func(r *models.MaintenanceRecord) { r.FrontHoursSinceFull = 100 },
		func(r *models.MaintenanceRecord) { r.RearHoursSinceFull = 100 },
	}
	for i, mutate := range mutations {
		r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
		mutate(&r)
		assert.True(t, m.ShouldAlert(context.Background(), r), "check %d should trigger", i)
	}
}

func TestComposeMaintenanceAlert_BasicOnly(t *testing.T) {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 50.2

	a, ok := ComposeMaintenanceAlert(r)
	require.True(t, ok)
	assert.Equal(t, "Suspension Service Due", a.Title)
	assert.Contains(t, a.Detail, "Enduro")
	assert.Contains(t, a.Detail, "Fork basic service due (50.2h)")
	assert.NotContains(t, a.Detail, "FULL")
	assert.NotContains(t, a.Detail, "Rear shock")
}

func TestComposeMaintenanceAlert_FullSupersedesBasic(t *testing.T) {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.RearHoursSinceBasic = 60
	r.RearHoursSinceFull = 101

	a, ok := ComposeMaintenanceAlert(r)
	require.True(t, ok)
	assert.Contains(t, a.Detail, "Rear shock FULL service due (101.0h)")
	assert.NotContains(t, a.Detail, "Rear shock basic")
}

func TestComposeMaintenanceAlert_BothPositions(t *testing.T) {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceFull = 100
	r.RearHoursSinceBasic = 55

	a, ok := ComposeMaintenanceAlert(r)
	require.True(t, ok)
	lines := strings.Split(a.Detail, "\n")
	assert.Len(t, lines, 3) // bike name plus one line per position
	assert.Contains(t, a.Detail, "Fork FULL service due")
	assert.Contains(t, a.Detail, "Rear shock basic service due")
}

func TestComposeMaintenanceAlert_NothingDue(t *testing.T) {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	_, ok := ComposeMaintenanceAlert(r)
	assert.False(t, ok)
}

func TestShowMaintenanceAlert_SuppressedWhenEmpty(t *testing.T) {
	notifier := host.NewFakeHost()
	m := NewManager(notifier, stubConfig{models.DefaultThresholdConfig()})

	m.ShowMaintenanceAlert(models.NewMaintenanceRecord("b1", "Enduro", 50, 100))
	assert.Empty(t, notifier.Dispatched)

	m.ShowMaintenanceAlert(dueRecord())
	assert.Len(t, notifier.Dispatched, 1)
}

func TestShowMaintenanceAlert_DispatchFailureSwallowed(t *testing.T) {
	notifier := host.NewFakeHost()
	notifier.DispatchError = errors.New("display busy")
	m := NewManager(notifier, stubConfig{models.DefaultThresholdConfig()})

	// Must not panic or propagate.
	m.ShowMaintenanceAlert(dueRecord())
	assert.Empty(t, notifier.Dispatched)
}

func TestComposeStatusAlert(t *testing.T) {
	r := models.NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 12.5
	r.RearHoursSinceBasic = 51

	a := ComposeStatusAlert(r)
	assert.Equal(t, "Suspension Status", a.Title)
	assert.Contains(t, a.Detail, "Fork: 12.5h (37.5h to service)")
	assert.Contains(t, a.Detail, "Rear shock: 51.0h (SERVICE DUE)")
}

func TestComposeStatusAlert_UnconditionalOnDueState(t *testing.T) {
	a := ComposeStatusAlert(models.NewMaintenanceRecord("b1", "Enduro", 50, 100))
	assert.Contains(t, a.Detail, "Fork: 0.0h (50.0h to service)")
	assert.Contains(t, a.Detail, "Rear shock: 0.0h (50.0h to service)")
}

func TestComposeServiceConfirmation(t *testing.T) {
	a := ComposeServiceConfirmation(models.PositionFront, models.ServiceBasic)
	assert.Equal(t, "Service Recorded!", a.Title)
	assert.Contains(t, a.Detail, "Fork basic service recorded.")
	assert.Contains(t, a.Detail, "Hours reset.")
}
