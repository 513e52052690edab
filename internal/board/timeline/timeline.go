// Package timeline computes deadline and urgency classifications for leads.
// Everything here is a pure function of the lead fields, the per-source SLA
// table and an explicit clock value; results are derived and never stored.
package timeline

import (
	"math"
	"time"
)

// Status classifies how a lead stands against its SLA deadline.
type Status string

const (
	StatusOnTime   Status = "on_time"
	StatusWarning  Status = "warning"
	StatusOverdue  Status = "overdue"
	StatusCritical Status = "critical"
)

// criticalOverdueHours is the overdue magnitude beyond which a lead is
// considered critical rather than merely overdue.
const criticalOverdueHours = 72

// Contact recency adjustments. A lead touched within the recent window is
// less urgent regardless of raw deadline math; a long-silent lead is more.
const (
	recentContactHours    = 12
	recentContactDiscount = 20
	staleContactHours     = 72
	staleContactPenalty   = 15
)

// Result is the derived deadline state of a single lead.
type Result struct {
	Status              Status    `json:"status"`
	RemainingHours      int       `json:"remainingHours"`
	UrgencyLevel        int       `json:"urgencyLevel"`
	DeadlineDate        time.Time `json:"deadlineDate"`
	IsOverdue           bool      `json:"isOverdue"`
	LastContactHoursAgo *int      `json:"lastContactHoursAgo,omitempty"`
}

// Calculator computes timeline results against a fixed SLA table.
type Calculator struct {
	table Table
}

// NewCalculator creates a calculator over the given SLA table.
func NewCalculator(table Table) *Calculator {
	return &Calculator{table: table}
}

// Compute derives the timeline result for a lead at the given instant.
// A zero or future createdAt is treated as now.
func (c *Calculator) Compute(createdAt time.Time, source string, lastContact *time.Time, now time.Time) Result {
	if createdAt.IsZero() || createdAt.After(now) {
		createdAt = now
	}

	sla := c.table.Lookup(source)
	window := time.Duration(sla.WindowHours) * time.Hour
	deadline := createdAt.Add(window)

	untilDeadline := deadline.Sub(now).Hours()
	remaining := int(math.Floor(untilDeadline))
	overdue := remaining < 0

	var status Status
	var urgency float64

	switch {
	case overdue && -untilDeadline > criticalOverdueHours:
		status = StatusCritical
		urgency = 100
	case overdue:
		overdueHours := -untilDeadline
		status = StatusOverdue
		urgency = 90 + math.Min(10, overdueHours/24*10)
	default:
		progress := now.Sub(createdAt).Hours() / window.Hours() * 100
		switch {
		case progress < 50:
			status = StatusOnTime
			urgency = progress / 2
		case progress < 80:
			status = StatusWarning
			urgency = 50 + (progress-50)*0.8
		default:
			status = StatusWarning
			urgency = 70 + (progress - 80)
		}
	}

	result := Result{
		Status:         status,
		RemainingHours: remaining,
		DeadlineDate:   deadline,
		IsOverdue:      overdue,
	}

	if lastContact != nil && !lastContact.IsZero() {
		hoursAgo := now.Sub(*lastContact).Hours()
		if hoursAgo < 0 {
			hoursAgo = 0
		}
		ago := int(math.Floor(hoursAgo))
		result.LastContactHoursAgo = &ago

		if hoursAgo <= recentContactHours {
			urgency -= recentContactDiscount
		} else if hoursAgo >= staleContactHours {
			urgency += staleContactPenalty
		}
	}

	result.UrgencyLevel = clampUrgency(urgency)
	return result
}

// Source returns the SLA entry the calculator resolves for a source tag.
func (c *Calculator) Source(source string) SourceSLA {
	return c.table.Lookup(source)
}

func clampUrgency(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
