package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/events"
	"pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/platform/apperr"
	"pipeline_board_backend/platform/logger"
)

type fakeStore struct {
	leadStatuses []repository.LeadStatus
	callStatuses []repository.CallStatus
	mappings     []repository.Mapping

	savedLeadOrder []uuid.UUID
	savedCallOrder []uuid.UUID
	created        []repository.Mapping
	saveErr        error
}

func (f *fakeStore) ListLeadStatuses(context.Context, uuid.UUID) ([]repository.LeadStatus, error) {
	return f.leadStatuses, nil
}

func (f *fakeStore) SaveLeadStatusOrder(_ context.Context, _ uuid.UUID, ordered []uuid.UUID) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedLeadOrder = ordered
	return nil
}

func (f *fakeStore) UpsertLeadStatus(_ context.Context, _ uuid.UUID, s repository.LeadStatus) (repository.LeadStatus, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return s, nil
}

func (f *fakeStore) DeleteLeadStatus(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) ListCallStatuses(context.Context, uuid.UUID) ([]repository.CallStatus, error) {
	return f.callStatuses, nil
}

func (f *fakeStore) SaveCallStatusOrder(_ context.Context, _ uuid.UUID, ordered []uuid.UUID) error {
	f.savedCallOrder = ordered
	return nil
}

func (f *fakeStore) UpsertCallStatus(_ context.Context, _ uuid.UUID, s repository.CallStatus) (repository.CallStatus, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return s, nil
}

func (f *fakeStore) DeleteCallStatus(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeStore) ListMappings(context.Context, uuid.UUID) ([]repository.Mapping, error) {
	return f.mappings, nil
}

func (f *fakeStore) CreateMapping(_ context.Context, _ uuid.UUID, m repository.Mapping) (repository.Mapping, error) {
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	f.created = append(f.created, m)
	return m, nil
}

func (f *fakeStore) UpdateMapping(_ context.Context, _ uuid.UUID, m repository.Mapping) (repository.Mapping, error) {
	return m, nil
}

func (f *fakeStore) DeleteMapping(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func newTestService(store *fakeStore) (*Service, *events.InMemoryBus) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(store, bus, log), bus
}

func leadStatusFixture(order int) repository.LeadStatus {
	return repository.LeadStatus{ID: uuid.New(), Key: "s", Name: "S", Color: "#ffffff", Order: order}
}

func TestLeadStatusesNormalizesOrder(t *testing.T) {
	store := &fakeStore{leadStatuses: []repository.LeadStatus{
		{ID: uuid.New(), Name: "C", Order: 7},
		{ID: uuid.New(), Name: "A", Order: 0},
		{ID: uuid.New(), Name: "B", Order: 3},
	}}
	svc, _ := newTestService(store)

	items, err := svc.LeadStatuses(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LeadStatuses: %v", err)
	}

	wantNames := []string{"A", "B", "C"}
	for i, item := range items {
		if item.Name != wantNames[i] {
			t.Errorf("position %d = %s, want %s", i, item.Name, wantNames[i])
		}
		if item.Order != i {
			t.Errorf("order at %d = %d, want contiguous %d", i, item.Order, i)
		}
	}
}

func TestReorderLeadStatusesRejectsNonPermutation(t *testing.T) {
	a, b := leadStatusFixture(0), leadStatusFixture(1)
	store := &fakeStore{leadStatuses: []repository.LeadStatus{a, b}}
	svc, _ := newTestService(store)
	orgID := uuid.New()

	cases := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing entry", []uuid.UUID{a.ID}},
		{"unknown entry", []uuid.UUID{a.ID, uuid.New()}},
		{"duplicate entry", []uuid.UUID{a.ID, a.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ReorderLeadStatuses(context.Background(), orgID, tc.ids)
			var appErr *apperr.Error
			if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
				t.Fatalf("want validation error, got %v", err)
			}
			if store.savedLeadOrder != nil {
				t.Fatal("invalid reorder must not be persisted")
			}
		})
	}
}

func TestReorderLeadStatusesPersistsAndPublishes(t *testing.T) {
	a, b, c := leadStatusFixture(0), leadStatusFixture(1), leadStatusFixture(2)
	store := &fakeStore{leadStatuses: []repository.LeadStatus{a, b, c}}
	svc, bus := newTestService(store)

	var got events.StatusCatalogReordered
	done := make(chan struct{})
	bus.Subscribe(events.StatusCatalogReordered{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		got = e.(events.StatusCatalogReordered)
		close(done)
		return nil
	}))

	ordered := []uuid.UUID{c.ID, a.ID, b.ID}
	if err := svc.ReorderLeadStatuses(context.Background(), uuid.New(), ordered); err != nil {
		t.Fatalf("ReorderLeadStatuses: %v", err)
	}

	if len(store.savedLeadOrder) != 3 || store.savedLeadOrder[0] != c.ID {
		t.Fatalf("saved order = %v, want %v", store.savedLeadOrder, ordered)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reorder event")
	}
	if got.ListKind != "lead_status" || len(got.OrderedIDs) != 3 {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestLinkCallStatusIsIdempotent(t *testing.T) {
	callID, leadID := uuid.New(), uuid.New()
	existing := repository.Mapping{ID: uuid.New(), CallStatusID: callID, LeadStatusID: leadID, Priority: 5}
	store := &fakeStore{mappings: []repository.Mapping{existing}}
	svc, _ := newTestService(store)

	got, err := svc.LinkCallStatus(context.Background(), uuid.New(), callID, leadID)
	if err != nil {
		t.Fatalf("LinkCallStatus: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatal("existing mapping should be returned, not recreated")
	}
	if got.Priority != 5 {
		t.Fatalf("priority = %d, curated priority must survive relinking", got.Priority)
	}
	if len(store.created) != 0 {
		t.Fatal("no new mapping should be created for an existing pair")
	}
}

func TestLinkCallStatusCreatesWithDefaultPriority(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(store)

	got, err := svc.LinkCallStatus(context.Background(), uuid.New(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("LinkCallStatus: %v", err)
	}
	if got.Priority != DefaultLinkPriority {
		t.Fatalf("priority = %d, want %d", got.Priority, DefaultLinkPriority)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d mappings, want 1", len(store.created))
	}
}

func TestResolveActiveMapping(t *testing.T) {
	callID := uuid.New()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	lowPriority := repository.Mapping{ID: uuid.New(), CallStatusID: callID, Priority: 1, CreatedAt: late}
	highPriority := repository.Mapping{ID: uuid.New(), CallStatusID: callID, Priority: 50, CreatedAt: early}
	other := repository.Mapping{ID: uuid.New(), CallStatusID: uuid.New(), Priority: 0, CreatedAt: early}

	got, ok := ResolveActiveMapping([]repository.Mapping{other, highPriority, lowPriority}, callID)
	if !ok {
		t.Fatal("expected a mapping to resolve")
	}
	if got.ID != lowPriority.ID {
		t.Fatal("lowest priority mapping must win")
	}

	tieA := repository.Mapping{ID: uuid.New(), CallStatusID: callID, Priority: 10, CreatedAt: late}
	tieB := repository.Mapping{ID: uuid.New(), CallStatusID: callID, Priority: 10, CreatedAt: early}
	got, ok = ResolveActiveMapping([]repository.Mapping{tieA, tieB}, callID)
	if !ok || got.ID != tieB.ID {
		t.Fatal("priority ties must break on earliest creation")
	}

	if _, ok := ResolveActiveMapping(nil, callID); ok {
		t.Fatal("no mappings should resolve to nothing")
	}
}
