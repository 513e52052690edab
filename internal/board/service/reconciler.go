// Package service owns the board reconciliation loop: the in-memory lead
// list per organization, optimistic drag mutations against the remote store,
// and refresh suppression for self-initiated writes.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/advisor"
	"pipeline_board_backend/internal/board/scoring"
	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	leadsrepo "pipeline_board_backend/internal/leads/repository"
	catalogrepo "pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/platform/apperr"
	"pipeline_board_backend/platform/logger"
)

// State is the reconciliation loop state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// LeadStore is the lead persistence the board depends on.
type LeadStore interface {
	List(ctx context.Context, organizationID uuid.UUID) ([]leadsrepo.Lead, error)
	UpdateStatus(ctx context.Context, organizationID, leadID, statusID uuid.UUID) error
	RecordContact(ctx context.Context, organizationID, leadID uuid.UUID, contactedAt time.Time) error
}

// CatalogReader provides the ordered status definitions.
type CatalogReader interface {
	LeadStatuses(ctx context.Context, organizationID uuid.UUID) ([]catalogrepo.LeadStatus, error)
}

// Notifier is the fire-and-forget toast sink.
type Notifier interface {
	Success(organizationID uuid.UUID, message string)
	Error(organizationID uuid.UUID, message string)
	Warning(organizationID uuid.UUID, message string)
	Info(organizationID uuid.UUID, message string)
}

// Reconciler holds one organization's board state. The lead array is mutated
// only here; other views keep their own copies and resynchronize via refresh
// events.
type Reconciler struct {
	organizationID uuid.UUID
	leads          LeadStore
	catalog        CatalogReader
	calc           *timeline.Calculator
	notifier       Notifier
	bus            events.Bus
	log            *logger.Logger

	suppressWindow time.Duration
	now            func() time.Time

	mu            sync.Mutex
	state         State
	items         []leadsrepo.Lead
	statuses      []catalogrepo.LeadStatus
	lastSelfWrite time.Time
}

// NewReconciler creates the board loop for one organization.
func NewReconciler(
	organizationID uuid.UUID,
	leads LeadStore,
	catalog CatalogReader,
	calc *timeline.Calculator,
	notifier Notifier,
	bus events.Bus,
	log *logger.Logger,
	suppressWindow time.Duration,
) *Reconciler {
	return &Reconciler{
		organizationID: organizationID,
		leads:          leads,
		catalog:        catalog,
		calc:           calc,
		notifier:       notifier,
		bus:            bus,
		log:            log,
		suppressWindow: suppressWindow,
		now:            time.Now,
		state:          StateIdle,
	}
}

// State returns the current loop state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Load fetches the status catalog and lead list. Read failures degrade to an
// empty board plus a toast; the caller never sees an error.
func (r *Reconciler) Load(ctx context.Context) {
	r.mu.Lock()
	r.state = StateLoading
	r.mu.Unlock()

	statuses, err := r.catalog.LeadStatuses(ctx, r.organizationID)
	if err != nil {
		r.log.Error("board catalog fetch failed", "orgId", r.organizationID, "error", err)
		r.notifier.Error(r.organizationID, "Could not load pipeline statuses")
		statuses = nil
	}

	items, err := r.leads.List(ctx, r.organizationID)
	if err != nil {
		r.log.Error("board lead fetch failed", "orgId", r.organizationID, "error", err)
		r.notifier.Error(r.organizationID, "Could not load leads")
		items = nil
	}

	r.mu.Lock()
	r.statuses = statuses
	r.items = items
	r.state = StateReady
	r.mu.Unlock()
}

// HandleRefresh reacts to a refresh trigger. A self-tagged trigger inside the
// suppression window is skipped so a board write does not refetch and discard
// its own optimistic state; external triggers always reload.
func (r *Reconciler) HandleRefresh(ctx context.Context, origin events.RefreshOrigin, reason string) {
	if origin == events.RefreshOriginSelf {
		r.mu.Lock()
		suppressed := r.now().Sub(r.lastSelfWrite) <= r.suppressWindow
		r.mu.Unlock()
		if suppressed {
			r.log.Debug("board refresh suppressed", "orgId", r.organizationID, "reason", reason)
			return
		}
	}
	r.log.Info("board refresh", "orgId", r.organizationID, "origin", origin, "reason", reason)
	r.Load(ctx)
}

// MoveLead assigns a lead to a new status. The local state is rewritten
// optimistically before the remote write; on failure the whole list is
// refetched, which is the only rollback mechanism.
func (r *Reconciler) MoveLead(ctx context.Context, leadID, newStatusID uuid.UUID) error {
	r.mu.Lock()
	if !r.statusExists(newStatusID) {
		r.mu.Unlock()
		return apperr.Validation("target status is not in the pipeline")
	}
	idx := -1
	for i := range r.items {
		if r.items[i].ID == leadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return apperr.NotFound("lead not on this board")
	}
	oldStatusID := r.items[idx].StatusID
	r.items[idx].StatusID = newStatusID
	r.mu.Unlock()

	if err := r.leads.UpdateStatus(ctx, r.organizationID, leadID, newStatusID); err != nil {
		r.log.Error("lead status write failed", "orgId", r.organizationID, "leadId", leadID, "error", err)
		r.notifier.Error(r.organizationID, "Could not move lead, board reloaded")
		r.Load(ctx)
		return err
	}

	r.mu.Lock()
	r.lastSelfWrite = r.now()
	r.mu.Unlock()

	r.notifier.Success(r.organizationID, "Lead moved")
	r.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: r.organizationID,
		LeadID:         leadID,
		OldStatusID:    oldStatusID,
		NewStatusID:    newStatusID,
		Origin:         events.RefreshOriginSelf,
	})
	r.bus.Publish(ctx, events.BoardRefreshRequested{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: r.organizationID,
		Origin:         events.RefreshOriginSelf,
		Reason:         "move_lead",
	})
	return nil
}

// RecordContact logs a contact on a lead and updates the local copy so the
// urgency math reflects it without a refetch.
func (r *Reconciler) RecordContact(ctx context.Context, leadID uuid.UUID) error {
	contactedAt := r.now()
	if err := r.leads.RecordContact(ctx, r.organizationID, leadID, contactedAt); err != nil {
		r.notifier.Error(r.organizationID, "Could not record the contact")
		return err
	}

	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == leadID {
			ts := contactedAt
			r.items[i].LastContactDate = &ts
			break
		}
	}
	r.mu.Unlock()

	r.notifier.Success(r.organizationID, "Contact recorded")
	r.bus.Publish(ctx, events.LeadContactRecorded{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: r.organizationID,
		LeadID:         leadID,
		ContactedAt:    contactedAt,
	})
	return nil
}

// Snapshot renders the current board: leads bucketed into columns by the
// catalog order, per-card assessments, and aggregate metrics.
func (r *Reconciler) Snapshot() Board {
	r.mu.Lock()
	state := r.state
	items := make([]leadsrepo.Lead, len(r.items))
	copy(items, r.items)
	statuses := make([]catalogrepo.LeadStatus, len(r.statuses))
	copy(statuses, r.statuses)
	r.mu.Unlock()

	now := r.now()
	keyByID := make(map[uuid.UUID]string, len(statuses))
	for _, s := range statuses {
		keyByID[s.ID] = s.Key
	}

	columns := make([]Column, len(statuses))
	index := make(map[uuid.UUID]int, len(statuses))
	for i, s := range statuses {
		columns[i] = Column{Status: s}
		index[s.ID] = i
	}
	fallback := fallbackColumn(statuses, index)

	var metrics Metrics
	for _, lead := range items {
		tl := r.calc.Compute(lead.CreatedAt, lead.Source, lead.LastContactDate, now)
		statusKey := keyByID[lead.StatusID]
		impact := scoring.Score(statusKey, tl)
		rec := advisor.Recommend(tl, impact, r.calc.Source(lead.Source).Priority)

		card := Card{
			Lead:           lead,
			Timeline:       tl,
			Impact:         impact,
			Recommendation: rec,
		}

		col, ok := index[lead.StatusID]
		if !ok {
			// Unknown status: shown in the fallback column, never persisted.
			col = fallback
			card.Misplaced = true
		}
		if col >= 0 {
			columns[col].Leads = append(columns[col].Leads, card)
		}

		accumulate(&metrics, statusKey, tl)
	}
	finalizeMetrics(&metrics)

	return Board{
		OrganizationID: r.organizationID,
		State:          state,
		Columns:        columns,
		Metrics:        metrics,
		GeneratedAt:    now,
	}
}

// AssessLeads evaluates every lead against the SLA table, returning the ones
// currently overdue or critical. Used by the sweep worker.
func (r *Reconciler) AssessLeads() []Breach {
	r.mu.Lock()
	items := make([]leadsrepo.Lead, len(r.items))
	copy(items, r.items)
	r.mu.Unlock()

	now := r.now()
	var breaches []Breach
	for _, lead := range items {
		tl := r.calc.Compute(lead.CreatedAt, lead.Source, lead.LastContactDate, now)
		if tl.Status == timeline.StatusOverdue || tl.Status == timeline.StatusCritical {
			breaches = append(breaches, Breach{LeadID: lead.ID, Timeline: tl})
		}
	}
	return breaches
}

func (r *Reconciler) statusExists(id uuid.UUID) bool {
	for _, s := range r.statuses {
		if s.ID == id {
			return true
		}
	}
	return false
}

// fallbackColumn picks where leads with an unknown status are displayed: the
// default status if one exists, otherwise the first column. Returns -1 for an
// empty catalog.
func fallbackColumn(statuses []catalogrepo.LeadStatus, index map[uuid.UUID]int) int {
	for _, s := range statuses {
		if s.IsDefault {
			return index[s.ID]
		}
	}
	if len(statuses) > 0 {
		return 0
	}
	return -1
}

// Breach is one lead past its SLA deadline.
type Breach struct {
	LeadID   uuid.UUID
	Timeline timeline.Result
}

func (b Breach) String() string {
	return fmt.Sprintf("lead %s %s (urgency %d)", b.LeadID, b.Timeline.Status, b.Timeline.UrgencyLevel)
}
