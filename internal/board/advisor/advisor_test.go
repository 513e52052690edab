package advisor

import (
	"strings"
	"testing"

	"pipeline_board_backend/internal/board/scoring"
	"pipeline_board_backend/internal/board/timeline"
)

func TestBasePriorityFollowsTimeline(t *testing.T) {
	cases := []struct {
		status timeline.Status
		want   Priority
	}{
		{timeline.StatusCritical, PriorityCritical},
		{timeline.StatusOverdue, PriorityHigh},
		{timeline.StatusWarning, PriorityHigh},
		{timeline.StatusOnTime, PriorityMedium},
	}
	for _, tc := range cases {
		tl := timeline.Result{Status: tc.status}
		got := Recommend(tl, scoring.Impact{Type: scoring.ImpactNeutral}, timeline.PriorityMedium)
		if got.Priority != tc.want {
			t.Errorf("%s: priority %s, want %s", tc.status, got.Priority, tc.want)
		}
		if len(got.Actions) == 0 {
			t.Errorf("%s: no actions recommended", tc.status)
		}
	}
}

func TestCriticalImpactForcesCriticalPriority(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOnTime, RemainingHours: 12}
	impact := scoring.Impact{Type: scoring.ImpactCritical, Score: -100, Reason: "probable loss"}

	got := Recommend(tl, impact, timeline.PriorityMedium)
	if got.Priority != PriorityCritical {
		t.Fatalf("priority = %s, want critical regardless of timeline", got.Priority)
	}
	if got.Actions[0] != "assess potential losses" {
		t.Fatalf("first action = %q, loss assessment must lead the list", got.Actions[0])
	}
}

func TestNegativeImpactAppendsReviewWithoutEscalating(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusOnTime, RemainingHours: 12}
	impact := scoring.Impact{Type: scoring.ImpactNegative, Score: -60, Reason: "past deadline"}

	got := Recommend(tl, impact, timeline.PriorityMedium)
	if got.Priority != PriorityMedium {
		t.Fatalf("priority = %s, negative impact must not change the tier", got.Priority)
	}
	last := got.Actions[len(got.Actions)-1]
	if last != "schedule commercial review" {
		t.Fatalf("last action = %q, want the commercial review", last)
	}
}

func TestHighPrioritySourceBumpsMediumOnly(t *testing.T) {
	onTime := timeline.Result{Status: timeline.StatusOnTime}
	got := Recommend(onTime, scoring.Impact{Type: scoring.ImpactNeutral}, timeline.PriorityHigh)
	if got.Priority != PriorityHigh {
		t.Fatalf("priority = %s, high priority source must bump medium to high", got.Priority)
	}

	critical := timeline.Result{Status: timeline.StatusCritical}
	got = Recommend(critical, scoring.Impact{Type: scoring.ImpactNeutral}, timeline.PriorityHigh)
	if got.Priority != PriorityCritical {
		t.Fatalf("priority = %s, the bump applies to medium only", got.Priority)
	}
}

func TestSuggestionKeepsBothClauses(t *testing.T) {
	tl := timeline.Result{Status: timeline.StatusWarning, RemainingHours: 3, UrgencyLevel: 72}
	impact := scoring.Impact{Type: scoring.ImpactNeutral, Score: -36, Reason: "open lead approaching its deadline"}

	got := Recommend(tl, impact, timeline.PriorityMedium)
	if !strings.Contains(got.Suggestion, "3h left") {
		t.Fatalf("suggestion %q lost the timeline clause", got.Suggestion)
	}
	if !strings.Contains(got.Suggestion, impact.Reason) {
		t.Fatalf("suggestion %q lost the impact clause", got.Suggestion)
	}
}
