// Package advisor turns timeline and impact assessments into a concrete
// recommendation: a priority tier, suggested next actions and the reasoning
// behind them.
package advisor

import (
	"fmt"

	"pipeline_board_backend/internal/board/scoring"
	"pipeline_board_backend/internal/board/timeline"
)

// Priority is the recommended handling tier for a lead.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Recommendation is the advisor output for a single lead.
type Recommendation struct {
	Priority   Priority `json:"priority"`
	Actions    []string `json:"actions"`
	Reasoning  string   `json:"reasoning"`
	Suggestion string   `json:"suggestion"`
}

// Recommend combines a timeline result, an impact assessment and the
// source's priority class into a handling recommendation.
func Recommend(tl timeline.Result, impact scoring.Impact, sourcePriority timeline.PriorityClass) Recommendation {
	priority, actions, timelineClause := baseFromTimeline(tl)

	impactClause := impact.Reason
	switch impact.Type {
	case scoring.ImpactCritical:
		// A critical commercial impact overrides whatever the deadline math
		// said.
		priority = PriorityCritical
		actions = append([]string{"assess potential losses"}, actions...)
	case scoring.ImpactNegative:
		actions = append(actions, "schedule commercial review")
	}

	if sourcePriority == timeline.PriorityHigh && priority == PriorityMedium {
		priority = PriorityHigh
	}

	return Recommendation{
		Priority:   priority,
		Actions:    actions,
		Reasoning:  fmt.Sprintf("timeline %s, urgency %d, impact %s (%d)", tl.Status, tl.UrgencyLevel, impact.Type, impact.Score),
		Suggestion: timelineClause + " " + impactClause + ".",
	}
}

func baseFromTimeline(tl timeline.Result) (Priority, []string, string) {
	switch tl.Status {
	case timeline.StatusCritical:
		return PriorityCritical,
			[]string{"call immediately", "send follow-up email", "schedule daily follow-up"},
			fmt.Sprintf("Lead is %dh past its deadline and needs immediate attention.", -tl.RemainingHours)
	case timeline.StatusOverdue:
		return PriorityHigh,
			[]string{"contact with priority", "log outcome after contact"},
			fmt.Sprintf("Deadline passed %dh ago, contact before the backlog grows.", -tl.RemainingHours)
	case timeline.StatusWarning:
		return PriorityHigh,
			[]string{"contact today", "prepare proposal material"},
			fmt.Sprintf("Only %dh left in the handling window.", tl.RemainingHours)
	default:
		return PriorityMedium,
			[]string{"follow standard process"},
			fmt.Sprintf("%dh remaining, normal cadence applies.", tl.RemainingHours)
	}
}
