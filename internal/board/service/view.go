package service

import (
	"time"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/advisor"
	"pipeline_board_backend/internal/board/scoring"
	"pipeline_board_backend/internal/board/timeline"
	leadsrepo "pipeline_board_backend/internal/leads/repository"
	catalogrepo "pipeline_board_backend/internal/statuscatalog/repository"
)

// urgentThreshold is the urgency level from which a lead counts as urgent in
// the aggregate metrics.
const urgentThreshold = 70

// Board is a rendered snapshot of one organization's pipeline.
type Board struct {
	OrganizationID uuid.UUID `json:"organizationId"`
	State          State     `json:"state"`
	Columns        []Column  `json:"columns"`
	Metrics        Metrics   `json:"metrics"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Column is one pipeline stage with its leads in display order.
type Column struct {
	Status catalogrepo.LeadStatus `json:"status"`
	Leads  []Card                 `json:"leads"`
}

// Card is one lead with its derived assessments. Misplaced marks a lead whose
// persisted status is unknown to the catalog and is shown here for display
// only.
type Card struct {
	Lead           leadsrepo.Lead         `json:"lead"`
	Timeline       timeline.Result        `json:"timeline"`
	Impact         scoring.Impact         `json:"impact"`
	Recommendation advisor.Recommendation `json:"recommendation"`
	Misplaced      bool                   `json:"misplaced,omitempty"`
}

// Metrics aggregates the board. CommercialScore sums per-lead contributions:
// critical -10, overdue -5, warning -1, won +10.
type Metrics struct {
	TotalLeads      int     `json:"totalLeads"`
	CriticalLeads   int     `json:"criticalLeads"`
	OverdueLeads    int     `json:"overdueLeads"`
	UrgentLeads     int     `json:"urgentLeads"`
	WonLeads        int     `json:"wonLeads"`
	ConversionRate  float64 `json:"conversionRate"`
	CommercialScore int     `json:"commercialScore"`
}

func accumulate(m *Metrics, statusKey string, tl timeline.Result) {
	m.TotalLeads++

	if statusKey == "won" {
		m.WonLeads++
		m.CommercialScore += 10
		return
	}

	switch tl.Status {
	case timeline.StatusCritical:
		m.CriticalLeads++
		m.CommercialScore -= 10
	case timeline.StatusOverdue:
		m.OverdueLeads++
		m.CommercialScore -= 5
	case timeline.StatusWarning:
		m.CommercialScore--
	}

	if tl.UrgencyLevel >= urgentThreshold {
		m.UrgentLeads++
	}
}

func finalizeMetrics(m *Metrics) {
	if m.TotalLeads > 0 {
		m.ConversionRate = float64(m.WonLeads) / float64(m.TotalLeads)
	}
}
