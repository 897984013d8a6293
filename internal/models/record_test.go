package models

import (
	"encoding/json"
	"testing"
)

func TestIsServiceDue_BoundaryInclusive(t *testing.T) {
	tests := []struct {
		name     string
		hours    float64
		expected bool
	}{
		{"well under threshold", 10.0, false},
		{"just under threshold", 49.99, false},
		{"exactly at threshold", 50.0, true},
		{"just over threshold", 50.01, true},
		{"far over threshold", 200.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
			r.FrontHoursSinceBasic = tt.hours
			if got := r.IsBasicServiceDue(PositionFront); got != tt.expected {
				t.Errorf("IsBasicServiceDue(FRONT) with %.2fh = %v, want %v", tt.hours, got, tt.expected)
			}
		})
	}
}

func TestApplyService_BasicResetsOnlyBasic(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 42
	r.FrontHoursSinceFull = 80
	r.RearHoursSinceBasic = 30

	updated := r.ApplyService(PositionFront, ServiceBasic, 1700000000000)

	if updated.FrontHoursSinceBasic != 0 {
		t.Errorf("expected front basic counter reset, got %v", updated.FrontHoursSinceBasic)
	}
	if updated.FrontHoursSinceFull != 80 {
		t.Errorf("expected front full counter untouched, got %v", updated.FrontHoursSinceFull)
	}
	if updated.FrontLastBasicServiceMs != 1700000000000 {
		t.Errorf("expected basic service date stamped, got %v", updated.FrontLastBasicServiceMs)
	}
	if updated.FrontLastFullServiceMs != 0 {
		t.Errorf("expected full service date untouched, got %v", updated.FrontLastFullServiceMs)
	}
	if updated.RearHoursSinceBasic != 30 {
		t.Errorf("expected rear untouched, got %v", updated.RearHoursSinceBasic)
	}
}

func TestApplyService_FullImpliesBasic(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.RearHoursSinceBasic = 42
	r.RearHoursSinceFull = 104

	updated := r.ApplyService(PositionRear, ServiceFull, 1700000000000)

	if updated.RearHoursSinceBasic != 0 || updated.RearHoursSinceFull != 0 {
		t.Errorf("expected both rear counters reset, got basic=%v full=%v",
			updated.RearHoursSinceBasic, updated.RearHoursSinceFull)
	}
	if updated.RearLastBasicServiceMs != 1700000000000 {
		t.Errorf("expected basic date stamped by full service, got %v", updated.RearLastBasicServiceMs)
	}
	if updated.RearLastFullServiceMs != 1700000000000 {
		t.Errorf("expected full date stamped, got %v", updated.RearLastFullServiceMs)
	}
}

func TestApplyDescentHours_Additive(t *testing.T) {
	base := NewMaintenanceRecord("b1", "Enduro", 50, 100)

	split := base.ApplyDescentHours(1.2).ApplyDescentHours(0.8)
	once := base.ApplyDescentHours(2.0)

	if split.FrontHoursSinceBasic != once.FrontHoursSinceBasic {
		t.Errorf("front since-basic differs: %v vs %v", split.FrontHoursSinceBasic, once.FrontHoursSinceBasic)
	}
	if split.RearHoursSinceFull != once.RearHoursSinceFull {
		t.Errorf("rear since-full differs: %v vs %v", split.RearHoursSinceFull, once.RearHoursSinceFull)
	}
	if split.FrontLifetimeHours != once.FrontLifetimeHours {
		t.Errorf("front lifetime differs: %v vs %v", split.FrontLifetimeHours, once.FrontLifetimeHours)
	}
	if split.TotalDescentHours != once.TotalDescentHours {
		t.Errorf("total descent differs: %v vs %v", split.TotalDescentHours, once.TotalDescentHours)
	}
	if split.TotalRides != 2 {
		t.Errorf("expected 2 rides after two applications, got %d", split.TotalRides)
	}
	if once.TotalRides != 1 {
		t.Errorf("expected 1 ride after one application, got %d", once.TotalRides)
	}
}

func TestApplyDescentHours_BothPositions(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100).ApplyDescentHours(0.45)

	for _, pos := range []ShockPosition{PositionFront, PositionRear} {
		if r.HoursSinceBasic(pos) != 0.45 {
			t.Errorf("%s since-basic = %v, want 0.45", pos, r.HoursSinceBasic(pos))
		}
		if r.HoursSinceFull(pos) != 0.45 {
			t.Errorf("%s since-full = %v, want 0.45", pos, r.HoursSinceFull(pos))
		}
		if r.LifetimeHours(pos) != 0.45 {
			t.Errorf("%s lifetime = %v, want 0.45", pos, r.LifetimeHours(pos))
		}
	}
}

func TestApplyHistoricalHours(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100).ApplyHistoricalHours(12)

	if r.HistoricalDescentHours != 12 {
		t.Errorf("historical = %v, want 12", r.HistoricalDescentHours)
	}
	if r.FrontHoursSinceBasic != 12 || r.RearHoursSinceFull != 12 {
		t.Errorf("since counters not accrued: front basic=%v rear full=%v",
			r.FrontHoursSinceBasic, r.RearHoursSinceFull)
	}
	if r.FrontLifetimeHours != 0 || r.RearLifetimeHours != 0 {
		t.Errorf("lifetime totals should not accrue historical hours")
	}
	if r.TotalRides != 0 {
		t.Errorf("totalRides should not change, got %d", r.TotalRides)
	}
}

func TestMostUrgentService_NoneDue(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 49.9
	r.RearHoursSinceBasic = 40
	r.FrontHoursSinceFull = 99
	r.RearHoursSinceFull = 80

	if need := r.MostUrgentService(); need != nil {
		t.Errorf("expected nil when all ratios < 1.0, got %+v", need)
	}
}

func TestMostUrgentService_PicksHighestRatio(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 55  // ratio 1.1
	r.RearHoursSinceBasic = 75   // ratio 1.5
	r.FrontHoursSinceFull = 100  // ratio 1.0
	r.RearHoursSinceFull = 90    // ratio 0.9

	need := r.MostUrgentService()
	if need == nil {
		t.Fatal("expected a due service")
	}
	if need.Position != PositionRear || need.Type != ServiceBasic {
		t.Errorf("expected rear basic, got %s %s", need.Position, need.Type)
	}
}

func TestMostUrgentService_TieBreakOrder(t *testing.T) {
	// Front full and rear basic both at exactly ratio 1.0; evaluation
	// order puts full before basic and front before rear.
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceFull = 100
	r.RearHoursSinceBasic = 50

	need := r.MostUrgentService()
	if need == nil {
		t.Fatal("expected a due service")
	}
	if need.Position != PositionFront || need.Type != ServiceFull {
		t.Errorf("expected front full on tie, got %s %s", need.Position, need.Type)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 45, 120)
	r = r.ApplyDescentHours(3.5).ApplyHistoricalHours(10)
	r = r.ApplyService(PositionFront, ServiceFull, 1700000000000)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out MaintenanceRecord
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out != r {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", out, r)
	}
}

func TestRecordDecode_MissingFieldsDefault(t *testing.T) {
	// Older documents predate the historical hours field.
	data := []byte(`{"bike_id":"b1","bike_name":"Enduro","front_hours_since_basic":5,"unknown_field":true}`)

	var r MaintenanceRecord
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if r.HistoricalDescentHours != 0 {
		t.Errorf("missing historical hours should default to 0, got %v", r.HistoricalDescentHours)
	}
	if r.FrontHoursSinceBasic != 5 {
		t.Errorf("present field lost: %v", r.FrontHoursSinceBasic)
	}
}

func TestRecordDecode_MissingThresholdsDefault(t *testing.T) {
	// Documents written before the threshold fields existed must not
	// decode to zero thresholds, which would report every shock as due.
	data := []byte(`[{"bike_id":"b1","front_hours_since_basic":0.5}]`)

	var records []MaintenanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	r := records[0]

	if r.BasicServiceThreshold != DefaultBasicServiceHours {
		t.Errorf("basic threshold = %v, want %v", r.BasicServiceThreshold, DefaultBasicServiceHours)
	}
	if r.FullServiceThreshold != DefaultFullServiceHours {
		t.Errorf("full threshold = %v, want %v", r.FullServiceThreshold, DefaultFullServiceHours)
	}
	if r.IsBasicServiceDue(PositionFront) {
		t.Error("0.5h against the default threshold must not be due")
	}
	if need := r.MostUrgentService(); need != nil {
		t.Errorf("MostUrgentService() = %+v, want nil", need)
	}
}

func TestStatusSummary(t *testing.T) {
	r := NewMaintenanceRecord("b1", "Enduro", 50, 100)
	r.FrontHoursSinceBasic = 12.34
	r.RearHoursSinceBasic = 5.6

	want := "Front: 12.3h | Rear: 5.6h"
	if got := r.StatusSummary(); got != want {
		t.Errorf("StatusSummary() = %q, want %q", got, want)
	}
}
