// Package scoring estimates the commercial impact of a lead's current
// handling state by combining its status with the timeline classification.
package scoring

import (
	"fmt"
	"math"

	"pipeline_board_backend/internal/board/timeline"
)

// ImpactType classifies the business effect of a lead's handling state.
type ImpactType string

const (
	ImpactPositive ImpactType = "positive"
	ImpactNeutral  ImpactType = "neutral"
	ImpactNegative ImpactType = "negative"
	ImpactCritical ImpactType = "critical"
)

// Impact is the scored commercial assessment of a single lead.
type Impact struct {
	Type   ImpactType `json:"impactType"`
	Score  int        `json:"score"` // within [-100, 100]
	Reason string     `json:"reason"`
}

// Status keys with special commercial meaning. These are catalog keys, not
// display names, so renaming a column does not change scoring.
const (
	statusWon = "won"
)

// treatedStatuses are stages where someone has already acted on the lead.
var treatedStatuses = map[string]bool{
	"contacted": true,
	"meeting":   true,
	"proposal":  true,
	"won":       true,
	"lost":      true,
}

// rejectedStatuses are stages where the lead ended without a sale.
var rejectedStatuses = map[string]bool{
	"lost":           true,
	"unqualified":    true,
	"not_interested": true,
}

// Score derives the commercial impact of a lead from its catalog status key
// and its timeline result.
func Score(statusKey string, tl timeline.Result) Impact {
	if statusKey == statusWon {
		return Impact{
			Type:   ImpactPositive,
			Score:  100,
			Reason: "deal won",
		}
	}

	if tl.IsOverdue && !treatedStatuses[statusKey] {
		if tl.Status == timeline.StatusCritical {
			return Impact{
				Type:   ImpactCritical,
				Score:  -100,
				Reason: "untreated lead far past its deadline, probable loss",
			}
		}
		overdueHours := float64(-tl.RemainingHours)
		score := -50 - math.Min(50, overdueHours/24*10)
		return Impact{
			Type:   ImpactNegative,
			Score:  int(math.Round(score)),
			Reason: fmt.Sprintf("untreated lead %dh past its deadline", -tl.RemainingHours),
		}
	}

	if rejectedStatuses[statusKey] && !tl.IsOverdue {
		// Refused but handled in time carries no penalty.
		return Impact{
			Type:   ImpactNeutral,
			Score:  0,
			Reason: "lead declined within the handling window",
		}
	}

	if treatedStatuses[statusKey] && !tl.IsOverdue {
		return Impact{
			Type:   ImpactNeutral,
			Score:  20,
			Reason: "lead in active treatment",
		}
	}

	if tl.Status == timeline.StatusWarning {
		return Impact{
			Type:   ImpactNeutral,
			Score:  -tl.UrgencyLevel / 2,
			Reason: "open lead approaching its deadline",
		}
	}
	return Impact{
		Type:   ImpactNeutral,
		Score:  10,
		Reason: "open lead within its handling window",
	}
}
