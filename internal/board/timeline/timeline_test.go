package timeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func compute(t *testing.T, createdHoursAgo float64, source string, lastContact *time.Time) Result {
	t.Helper()
	calc := NewCalculator(DefaultTable())
	createdAt := testNow.Add(-time.Duration(createdHoursAgo * float64(time.Hour)))
	return calc.Compute(createdAt, source, lastContact, testNow)
}

func hoursAgo(h float64) *time.Time {
	ts := testNow.Add(-time.Duration(h * float64(time.Hour)))
	return &ts
}

func TestProgressBoundaries(t *testing.T) {
	// website has a 72h window, so progress percent maps directly to elapsed
	// hours * 100/72.
	cases := []struct {
		name            string
		progressPercent float64
		wantStatus      Status
	}{
		{"just under half", 49, StatusOnTime},
		{"just over half", 51, StatusWarning},
		{"just under eighty", 79, StatusWarning},
		{"just over eighty", 81, StatusWarning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			elapsed := tc.progressPercent / 100 * 72
			got := compute(t, elapsed, "website", nil)
			if got.Status != tc.wantStatus {
				t.Fatalf("status at %.0f%% = %s, want %s", tc.progressPercent, got.Status, tc.wantStatus)
			}
			if got.IsOverdue {
				t.Fatal("lead inside its window must not be overdue")
			}
		})
	}
}

func TestOverdueMatchesRemainingHours(t *testing.T) {
	cases := []float64{0, 1, 23, 24, 25, 50, 100, 200}
	for _, elapsed := range cases {
		got := compute(t, elapsed, "bobex", nil)
		if got.IsOverdue != (got.RemainingHours < 0) {
			t.Errorf("elapsed %.0fh: isOverdue=%v but remainingHours=%d", elapsed, got.IsOverdue, got.RemainingHours)
		}
		if got.Status == StatusCritical && !got.IsOverdue {
			t.Errorf("elapsed %.0fh: critical lead must be overdue", elapsed)
		}
	}
}

func TestBobexDeadlineBoundary(t *testing.T) {
	// Created exactly one SLA window ago: remaining is zero, which is not yet
	// overdue. Progress sits at 100% so the lead lands in the top warning
	// bucket.
	got := compute(t, 24, "bobex", nil)

	if got.RemainingHours != 0 {
		t.Fatalf("remainingHours = %d, want 0", got.RemainingHours)
	}
	if got.IsOverdue {
		t.Fatal("remaining of exactly zero is not overdue")
	}
	if got.Status != StatusWarning {
		t.Fatalf("status = %s, want %s", got.Status, StatusWarning)
	}
	if got.UrgencyLevel < 70 {
		t.Fatalf("urgency = %d, want >= 70", got.UrgencyLevel)
	}
}

func TestWebsiteOverdueScenario(t *testing.T) {
	// 100h elapsed against a 72h window: overdue by 28h, still short of the
	// 72h critical threshold.
	got := compute(t, 100, "website", nil)

	if got.Status != StatusOverdue {
		t.Fatalf("status = %s, want %s", got.Status, StatusOverdue)
	}
	if got.RemainingHours != -28 {
		t.Fatalf("remainingHours = %d, want -28", got.RemainingHours)
	}
	if got.UrgencyLevel < 90 || got.UrgencyLevel > 100 {
		t.Fatalf("urgency = %d, want within [90,100]", got.UrgencyLevel)
	}
}

func TestCriticalBeyondSeventyTwoHoursOverdue(t *testing.T) {
	got := compute(t, 24+73, "bobex", nil)
	if got.Status != StatusCritical {
		t.Fatalf("status = %s, want %s", got.Status, StatusCritical)
	}
	if got.UrgencyLevel != 100 {
		t.Fatalf("urgency = %d, want 100", got.UrgencyLevel)
	}

	// Exactly 72h over is still plain overdue.
	got = compute(t, 24+72, "bobex", nil)
	if got.Status != StatusOverdue {
		t.Fatalf("status at 72h over = %s, want %s", got.Status, StatusOverdue)
	}
}

func TestRecentContactDiscountsUrgencyByTwenty(t *testing.T) {
	elapsedCases := []float64{10, 20, 40, 60}
	for _, elapsed := range elapsedCases {
		without := compute(t, elapsed, "website", nil)
		with := compute(t, elapsed, "website", hoursAgo(1))

		wantDelta := recentContactDiscount
		if without.UrgencyLevel < wantDelta {
			wantDelta = without.UrgencyLevel // floored at zero
		}
		if without.UrgencyLevel-with.UrgencyLevel != wantDelta {
			t.Errorf("elapsed %.0fh: urgency %d -> %d, want discount of %d",
				elapsed, without.UrgencyLevel, with.UrgencyLevel, wantDelta)
		}
	}
}

func TestStaleContactRaisesUrgencyCappedAtHundred(t *testing.T) {
	without := compute(t, 40, "website", nil)
	with := compute(t, 40, "website", hoursAgo(80))
	if with.UrgencyLevel != without.UrgencyLevel+staleContactPenalty {
		t.Fatalf("urgency %d -> %d, want +%d", without.UrgencyLevel, with.UrgencyLevel, staleContactPenalty)
	}

	capped := compute(t, 200, "bobex", hoursAgo(150))
	if capped.UrgencyLevel != 100 {
		t.Fatalf("urgency = %d, want capped at 100", capped.UrgencyLevel)
	}
}

func TestContactBetweenWindowsLeavesUrgencyUnchanged(t *testing.T) {
	without := compute(t, 40, "website", nil)
	with := compute(t, 40, "website", hoursAgo(24))
	if with.UrgencyLevel != without.UrgencyLevel {
		t.Fatalf("urgency %d -> %d, contact between 12h and 72h ago must not adjust", without.UrgencyLevel, with.UrgencyLevel)
	}
	if with.LastContactHoursAgo == nil || *with.LastContactHoursAgo != 24 {
		t.Fatal("lastContactHoursAgo should still be reported")
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	calc := NewCalculator(DefaultTable())
	createdAt := testNow.Add(-30 * time.Hour)
	contact := testNow.Add(-5 * time.Hour)

	first := calc.Compute(createdAt, "email", &contact, testNow)
	second := calc.Compute(createdAt, "email", &contact, testNow)
	if first != secondWithoutPointer(second, first) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

// secondWithoutPointer aligns the contact pointer so struct comparison checks
// values, not addresses.
func secondWithoutPointer(second, first Result) Result {
	if second.LastContactHoursAgo != nil && first.LastContactHoursAgo != nil &&
		*second.LastContactHoursAgo == *first.LastContactHoursAgo {
		second.LastContactHoursAgo = first.LastContactHoursAgo
	}
	return second
}

func TestUnknownSourceFallsBackToDefault(t *testing.T) {
	table := DefaultTable()
	sla := table.Lookup("carrier_pigeon")
	if sla != table.Default {
		t.Fatalf("unknown source resolved %+v, want default %+v", sla, table.Default)
	}
	if table.Default.WindowHours != 24 || table.Default.Priority != PriorityMedium {
		t.Fatalf("default SLA = %+v, want 24h medium", table.Default)
	}
}

func TestZeroAndFutureCreatedAtTreatedAsNow(t *testing.T) {
	calc := NewCalculator(DefaultTable())

	zero := calc.Compute(time.Time{}, "bobex", nil, testNow)
	future := calc.Compute(testNow.Add(5*time.Hour), "bobex", nil, testNow)

	for _, got := range []Result{zero, future} {
		if got.Status != StatusOnTime || got.IsOverdue {
			t.Fatalf("malformed createdAt should classify as a fresh lead, got %+v", got)
		}
		if got.RemainingHours != 24 {
			t.Fatalf("remainingHours = %d, want the full 24h window", got.RemainingHours)
		}
	}
}

func TestLoadTableMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := "sources:\n  bobex:\n    windowHours: 8\n    priority: high\n  fairs:\n    windowHours: 168\n    priority: low\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	if got := table.Lookup("bobex"); got.WindowHours != 8 {
		t.Fatalf("bobex window = %d, want override 8", got.WindowHours)
	}
	if got := table.Lookup("fairs"); got.WindowHours != 168 || got.Priority != PriorityLow {
		t.Fatalf("fairs = %+v, want the new entry", got)
	}
	if got := table.Lookup("website"); got.WindowHours != 72 {
		t.Fatalf("website window = %d, defaults must survive a partial override", got.WindowHours)
	}
}

func TestLoadTableRejectsNonPositiveWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  bobex:\n    windowHours: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTable(path); err == nil {
		t.Fatal("expected error for non-positive window")
	}
}
