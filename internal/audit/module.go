// Package audit provides the board activity trail module.
package audit

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline_board_backend/internal/audit/handler"
	"pipeline_board_backend/internal/audit/repository"
	"pipeline_board_backend/internal/audit/service"
	"pipeline_board_backend/internal/events"
	apphttp "pipeline_board_backend/internal/http"
	"pipeline_board_backend/platform/logger"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts audit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/board/activity", m.handler.ListActivity)
	ctx.Protected.GET("/board/metrics/history", m.handler.ListMetricsHistory)
}

// RegisterHandlers subscribes the trail to the domain events it records.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	m.service.RegisterHandlers(bus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
