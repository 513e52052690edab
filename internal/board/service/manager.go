package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	"pipeline_board_backend/platform/logger"
)

// Manager keeps one Reconciler per organization and routes refresh events to
// the right board.
type Manager struct {
	leads          LeadStore
	catalog        CatalogReader
	calc           *timeline.Calculator
	notifier       Notifier
	bus            events.Bus
	log            *logger.Logger
	suppressWindow time.Duration

	mu     sync.Mutex
	boards map[uuid.UUID]*Reconciler
}

// NewManager creates the board registry.
func NewManager(
	leads LeadStore,
	catalog CatalogReader,
	calc *timeline.Calculator,
	notifier Notifier,
	bus events.Bus,
	log *logger.Logger,
	suppressWindow time.Duration,
) *Manager {
	return &Manager{
		leads:          leads,
		catalog:        catalog,
		calc:           calc,
		notifier:       notifier,
		bus:            bus,
		log:            log,
		suppressWindow: suppressWindow,
		boards:         make(map[uuid.UUID]*Reconciler),
	}
}

// Board returns the reconciler for an organization, creating an idle one on
// first use. The caller decides when to Load.
func (m *Manager) Board(organizationID uuid.UUID) *Reconciler {
	m.mu.Lock()
	defer m.mu.Unlock()

	if board, ok := m.boards[organizationID]; ok {
		return board
	}
	board := NewReconciler(organizationID, m.leads, m.catalog, m.calc, m.notifier, m.bus, m.log, m.suppressWindow)
	m.boards[organizationID] = board
	return board
}

// Loaded returns every reconciler that has been created so far.
func (m *Manager) Loaded() []*Reconciler {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Reconciler, 0, len(m.boards))
	for _, board := range m.boards {
		out = append(out, board)
	}
	return out
}

// RegisterHandlers subscribes the manager to the refresh triggers it reacts
// to.
func (m *Manager) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.BoardRefreshRequested{}.EventName(), m)
	bus.Subscribe(events.StatusCatalogReordered{}.EventName(), m)
}

// Handle routes events to the owning board.
func (m *Manager) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.BoardRefreshRequested:
		m.Board(e.OrganizationID).HandleRefresh(ctx, e.Origin, e.Reason)
	case events.StatusCatalogReordered:
		if e.ListKind == "lead_status" {
			// Column order changed outside the board; refetch so grouping
			// follows the new catalog.
			m.Board(e.OrganizationID).HandleRefresh(ctx, events.RefreshOriginExternal, "catalog_reordered")
		}
	}
	return nil
}
