// Package board provides the pipeline board bounded context module.
package board

import (
	"context"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/handler"
	"pipeline_board_backend/internal/board/service"
	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	apphttp "pipeline_board_backend/internal/http"
	leadsrepo "pipeline_board_backend/internal/leads/repository"
	catalogrepo "pipeline_board_backend/internal/statuscatalog/repository"
	catalogsvc "pipeline_board_backend/internal/statuscatalog/service"
	"pipeline_board_backend/platform/config"
	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/logger"
	"pipeline_board_backend/platform/validator"
)

// Config combines the settings the board module consumes.
type Config interface {
	config.BoardConfig
	config.PhoneConfig
}

// Module is the pipeline board bounded context module implementing
// http.Module.
type Module struct {
	handler *handler.Handler
	manager *service.Manager
}

// NewModule creates and initializes the board module.
func NewModule(
	client *crmclient.Client,
	catalog *catalogsvc.Service,
	notifier service.Notifier,
	bus events.Bus,
	val *validator.Validator,
	cfg Config,
	log *logger.Logger,
) (*Module, error) {
	table, err := timeline.LoadTable(cfg.GetSLATablePath())
	if err != nil {
		return nil, err
	}

	leads := leadsrepo.New(client, cfg.GetPhoneRegion())
	manager := service.NewManager(
		leads,
		&catalogAdapter{svc: catalog},
		timeline.NewCalculator(table),
		notifier,
		bus,
		log,
		cfg.GetSelfRefreshWindow(),
	)
	h := handler.New(manager, catalog, notifier, val)

	return &Module{handler: h, manager: manager}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "board"
}

// Manager returns the board registry for external use.
func (m *Module) Manager() *service.Manager {
	return m.manager
}

// RegisterRoutes mounts board routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/board", m.handler.GetBoard)
	ctx.Protected.POST("/board/refresh", m.handler.Refresh)
	ctx.Protected.POST("/board/move", m.handler.MoveLead)
	ctx.Protected.POST("/board/drop", m.handler.Drop)
	ctx.Protected.POST("/board/leads/:id/contact", m.handler.RecordContact)
}

// RegisterHandlers subscribes the board to its refresh triggers.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	m.manager.RegisterHandlers(bus)
}

// catalogAdapter narrows the catalog service to the reader the board needs.
type catalogAdapter struct {
	svc *catalogsvc.Service
}

func (a *catalogAdapter) LeadStatuses(ctx context.Context, organizationID uuid.UUID) ([]catalogrepo.LeadStatus, error) {
	return a.svc.LeadStatuses(ctx, organizationID)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
