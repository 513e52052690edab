package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	leadsrepo "pipeline_board_backend/internal/leads/repository"
	catalogrepo "pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/platform/apperr"
	"pipeline_board_backend/platform/logger"
)

type fakeLeadStore struct {
	mu          sync.Mutex
	items       []leadsrepo.Lead
	listCalls   int
	updateCalls int
	updateErr   error
}

func (f *fakeLeadStore) List(context.Context, uuid.UUID) ([]leadsrepo.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]leadsrepo.Lead, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeLeadStore) UpdateStatus(_ context.Context, _, leadID, statusID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == leadID {
			f.items[i].StatusID = statusID
		}
	}
	return nil
}

func (f *fakeLeadStore) RecordContact(_ context.Context, _, leadID uuid.UUID, contactedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == leadID {
			ts := contactedAt
			f.items[i].LastContactDate = &ts
		}
	}
	return nil
}

func (f *fakeLeadStore) lists() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeCatalog struct {
	statuses []catalogrepo.LeadStatus
}

func (f *fakeCatalog) LeadStatuses(context.Context, uuid.UUID) ([]catalogrepo.LeadStatus, error) {
	return f.statuses, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(_ uuid.UUID, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, msg)
}

func (f *fakeNotifier) Error(_ uuid.UUID, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, msg)
}

func (f *fakeNotifier) Warning(uuid.UUID, string) {}
func (f *fakeNotifier) Info(uuid.UUID, string)    {}

type boardFixture struct {
	reconciler *Reconciler
	store      *fakeLeadStore
	notifier   *fakeNotifier
	bus        *events.InMemoryBus
	now        time.Time
	statuses   []catalogrepo.LeadStatus
}

func newBoardFixture(t *testing.T, statuses []catalogrepo.LeadStatus, leads []leadsrepo.Lead) *boardFixture {
	t.Helper()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	store := &fakeLeadStore{items: leads}
	notifier := &fakeNotifier{}

	fx := &boardFixture{
		store:    store,
		notifier: notifier,
		bus:      bus,
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		statuses: statuses,
	}
	fx.reconciler = NewReconciler(
		uuid.New(),
		store,
		&fakeCatalog{statuses: statuses},
		timeline.NewCalculator(timeline.DefaultTable()),
		notifier,
		bus,
		log,
		2*time.Second,
	)
	fx.reconciler.now = func() time.Time { return fx.now }
	return fx
}

func pipelineStatuses() []catalogrepo.LeadStatus {
	return []catalogrepo.LeadStatus{
		{ID: uuid.New(), Key: "new", Name: "New", Order: 0, IsDefault: true},
		{ID: uuid.New(), Key: "contacted", Name: "Contacted", Order: 1},
		{ID: uuid.New(), Key: "won", Name: "Won", Order: 2},
	}
}

func leadFixture(statusID uuid.UUID, source string, createdHoursAgo float64, now time.Time) leadsrepo.Lead {
	return leadsrepo.Lead{
		ID:        uuid.New(),
		StatusID:  statusID,
		Source:    source,
		Name:      "Lead",
		CreatedAt: now.Add(-time.Duration(createdHoursAgo * float64(time.Hour))),
	}
}

func TestLoadTransitionsToReady(t *testing.T) {
	statuses := pipelineStatuses()
	fx := newBoardFixture(t, statuses, nil)

	if fx.reconciler.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", fx.reconciler.State())
	}
	fx.reconciler.Load(context.Background())
	if fx.reconciler.State() != StateReady {
		t.Fatalf("state after load = %s, want ready", fx.reconciler.State())
	}
}

func TestMoveLeadKeepsOptimisticStateOnSuccess(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lead := leadFixture(statuses[0].ID, "website", 2, now)
	fx := newBoardFixture(t, statuses, []leadsrepo.Lead{lead})

	fx.reconciler.Load(context.Background())
	listsAfterLoad := fx.store.lists()

	if err := fx.reconciler.MoveLead(context.Background(), lead.ID, statuses[1].ID); err != nil {
		t.Fatalf("MoveLead: %v", err)
	}

	if fx.store.lists() != listsAfterLoad {
		t.Fatal("successful move must not refetch the lead list")
	}
	if len(fx.notifier.successes) != 1 {
		t.Fatalf("successes = %v, want one move toast", fx.notifier.successes)
	}

	board := fx.reconciler.Snapshot()
	if len(board.Columns[1].Leads) != 1 {
		t.Fatal("optimistic state lost, lead not in the target column")
	}
}

func TestMoveLeadRefetchesOnWriteFailure(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lead := leadFixture(statuses[0].ID, "website", 2, now)
	fx := newBoardFixture(t, statuses, []leadsrepo.Lead{lead})
	fx.store.updateErr = errors.New("upstream 500")

	fx.reconciler.Load(context.Background())
	listsAfterLoad := fx.store.lists()

	if err := fx.reconciler.MoveLead(context.Background(), lead.ID, statuses[1].ID); err == nil {
		t.Fatal("expected the write error to propagate")
	}

	if fx.store.lists() != listsAfterLoad+1 {
		t.Fatal("failed move must refetch to discard the optimistic state")
	}
	if len(fx.notifier.errors) != 1 {
		t.Fatalf("errors = %v, want one failure toast", fx.notifier.errors)
	}

	board := fx.reconciler.Snapshot()
	if len(board.Columns[0].Leads) != 1 {
		t.Fatal("lead should be back in its original column after the refetch")
	}
}

func TestMoveLeadRejectsUnknownStatus(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lead := leadFixture(statuses[0].ID, "website", 2, now)
	fx := newBoardFixture(t, statuses, []leadsrepo.Lead{lead})
	fx.reconciler.Load(context.Background())

	err := fx.reconciler.MoveLead(context.Background(), lead.ID, uuid.New())
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("want validation error for a status outside the catalog, got %v", err)
	}
	if fx.store.updateCalls != 0 {
		t.Fatal("invalid move must not reach the remote store")
	}
}

func TestSelfRefreshSuppressedExternalRefetches(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lead := leadFixture(statuses[0].ID, "website", 2, now)
	fx := newBoardFixture(t, statuses, []leadsrepo.Lead{lead})
	fx.reconciler.Load(context.Background())

	if err := fx.reconciler.MoveLead(context.Background(), lead.ID, statuses[1].ID); err != nil {
		t.Fatalf("MoveLead: %v", err)
	}
	listsAfterMove := fx.store.lists()

	// The board's own confirmed write arrives back as a self-tagged trigger
	// inside the window: no refetch.
	fx.reconciler.HandleRefresh(context.Background(), events.RefreshOriginSelf, "move_lead")
	if fx.store.lists() != listsAfterMove {
		t.Fatal("self-tagged refresh inside the window must be suppressed")
	}

	// A different originator (organization switch) inside the same window
	// must still reload.
	fx.reconciler.HandleRefresh(context.Background(), events.RefreshOriginExternal, "organization_switch")
	if fx.store.lists() != listsAfterMove+1 {
		t.Fatal("external refresh must refetch even inside the suppression window")
	}

	// Once the window passes, a self-tagged trigger reloads again.
	fx.now = fx.now.Add(3 * time.Second)
	fx.reconciler.HandleRefresh(context.Background(), events.RefreshOriginSelf, "late")
	if fx.store.lists() != listsAfterMove+2 {
		t.Fatal("self-tagged refresh after the window must refetch")
	}
}

func TestSnapshotPlacesUnknownStatusInFallbackColumn(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orphan := leadFixture(uuid.New(), "website", 2, now)
	fx := newBoardFixture(t, statuses, []leadsrepo.Lead{orphan})
	fx.reconciler.Load(context.Background())

	board := fx.reconciler.Snapshot()
	defaultColumn := board.Columns[0]
	if len(defaultColumn.Leads) != 1 {
		t.Fatal("orphaned lead must render in the default column")
	}
	if !defaultColumn.Leads[0].Misplaced {
		t.Fatal("orphaned lead must be marked misplaced")
	}
	if defaultColumn.Leads[0].Lead.StatusID != orphan.StatusID {
		t.Fatal("display fallback must not mutate the persisted status")
	}
}

func TestSnapshotMetrics(t *testing.T) {
	statuses := pipelineStatuses()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	leads := []leadsrepo.Lead{
		leadFixture(statuses[0].ID, "website", 2, now),       // on_time
		leadFixture(statuses[0].ID, "website", 100, now),     // overdue by 28h
		leadFixture(statuses[0].ID, "bobex", 24+100, now),    // critical
		leadFixture(statuses[0].ID, "website", 0.9*72, now),  // warning, urgency >= 70
		leadFixture(statuses[2].ID, "website", 400, now),     // won, timeline irrelevant
	}
	fx := newBoardFixture(t, statuses, leads)
	fx.reconciler.Load(context.Background())

	m := fx.reconciler.Snapshot().Metrics
	if m.TotalLeads != 5 {
		t.Fatalf("total = %d, want 5", m.TotalLeads)
	}
	if m.CriticalLeads != 1 || m.OverdueLeads != 1 || m.WonLeads != 1 {
		t.Fatalf("counts = %+v", m)
	}
	if m.UrgentLeads < 3 {
		t.Fatalf("urgent = %d, overdue and critical and high-warning leads all count", m.UrgentLeads)
	}
	// won +10, critical -10, overdue -5, warning -1
	if m.CommercialScore != 10-10-5-1 {
		t.Fatalf("commercial score = %d, want -6", m.CommercialScore)
	}
	if m.ConversionRate != 0.2 {
		t.Fatalf("conversion rate = %f, want 0.2", m.ConversionRate)
	}
}

func TestManagerRoutesRefreshEvents(t *testing.T) {
	statuses := pipelineStatuses()
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	store := &fakeLeadStore{}
	manager := NewManager(
		store,
		&fakeCatalog{statuses: statuses},
		timeline.NewCalculator(timeline.DefaultTable()),
		&fakeNotifier{},
		bus,
		log,
		2*time.Second,
	)

	orgID := uuid.New()
	if err := manager.Handle(context.Background(), events.BoardRefreshRequested{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: orgID,
		Origin:         events.RefreshOriginExternal,
		Reason:         "organization_switch",
	}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if store.lists() != 1 {
		t.Fatalf("listCalls = %d, external refresh must load the board", store.lists())
	}
	if manager.Board(orgID).State() != StateReady {
		t.Fatal("board should be ready after the routed refresh")
	}
}
