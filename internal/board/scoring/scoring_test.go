package scoring

import (
	"testing"

	"pipeline_board_backend/internal/board/timeline"
)

func TestWonAlwaysScoresHundred(t *testing.T) {
	timelines := []timeline.Result{
		{Status: timeline.StatusOnTime, RemainingHours: 20},
		{Status: timeline.StatusWarning, RemainingHours: 2, UrgencyLevel: 75},
		{Status: timeline.StatusOverdue, RemainingHours: -10, IsOverdue: true},
		{Status: timeline.StatusCritical, RemainingHours: -100, IsOverdue: true, UrgencyLevel: 100},
	}
	for _, tl := range timelines {
		got := Score("won", tl)
		if got.Type != ImpactPositive || got.Score != 100 {
			t.Errorf("won with timeline %s: %+v, want positive 100", tl.Status, got)
		}
	}
}

func TestUntreatedCriticalIsCriticalImpact(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusCritical, RemainingHours: -100, IsOverdue: true}
	got := Score("new", tl)
	if got.Type != ImpactCritical || got.Score != -100 {
		t.Fatalf("got %+v, want critical -100", got)
	}
}

func TestUntreatedOverdueScalesWithMagnitude(t *testing.T) {
	cases := []struct {
		remaining int
		wantScore int
	}{
		{-24, -60},  // -50 - 24/24*10
		{-48, -70},  // -50 - 48/24*10
		{-120, -100}, // capped at -50 - 50
	}
	for _, tc := range cases {
		tl := timeline.Result{Status: timeline.StatusOverdue, RemainingHours: tc.remaining, IsOverdue: true}
		got := Score("new", tl)
		if got.Type != ImpactNegative {
			t.Errorf("remaining %d: type %s, want negative", tc.remaining, got.Type)
		}
		if got.Score != tc.wantScore {
			t.Errorf("remaining %d: score %d, want %d", tc.remaining, got.Score, tc.wantScore)
		}
	}
}

func TestTreatedOverdueIsNotPenalized(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOverdue, RemainingHours: -30, IsOverdue: true}
	got := Score("meeting", tl)
	if got.Type == ImpactNegative || got.Type == ImpactCritical {
		t.Fatalf("treated lead must not take the untreated-overdue penalty, got %+v", got)
	}
}

func TestRejectedInTimeIsNeutralZero(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOnTime, RemainingHours: 10}
	for _, key := range []string{"unqualified", "not_interested", "lost"} {
		got := Score(key, tl)
		if got.Type != ImpactNeutral || got.Score != 0 {
			t.Errorf("%s in time: %+v, want neutral 0", key, got)
		}
	}
}

func TestTreatedInTimeScoresTwenty(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOnTime, RemainingHours: 10}
	for _, key := range []string{"contacted", "meeting", "proposal"} {
		got := Score(key, tl)
		if got.Type != ImpactNeutral || got.Score != 20 {
			t.Errorf("%s in time: %+v, want neutral 20", key, got)
		}
	}
}

func TestOpenWarningScoresNegativeHalfUrgency(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusWarning, RemainingHours: 4, UrgencyLevel: 64}
	got := Score("new", tl)
	if got.Type != ImpactNeutral || got.Score != -32 {
		t.Fatalf("got %+v, want neutral -32", got)
	}
}

func TestOpenOnTimeScoresTen(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOnTime, RemainingHours: 20, UrgencyLevel: 10}
	got := Score("new", tl)
	if got.Type != ImpactNeutral || got.Score != 10 {
		t.Fatalf("got %+v, want neutral 10", got)
	}
}
