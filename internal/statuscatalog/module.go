// Package statuscatalog provides the status catalog bounded context module.
package statuscatalog

import (
	"pipeline_board_backend/internal/events"
	apphttp "pipeline_board_backend/internal/http"
	"pipeline_board_backend/internal/statuscatalog/handler"
	"pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/internal/statuscatalog/service"
	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/logger"
	"pipeline_board_backend/platform/validator"
)

// Module is the status catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the status catalog module.
func NewModule(client *crmclient.Client, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(client)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "statuscatalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts status catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Protected read and reorder endpoints
	ctx.Protected.GET("/statuses/lead", m.handler.ListLeadStatuses)
	ctx.Protected.PUT("/statuses/lead/reorder", m.handler.ReorderLeadStatuses)
	ctx.Protected.GET("/statuses/call", m.handler.ListCallStatuses)
	ctx.Protected.PUT("/statuses/call/reorder", m.handler.ReorderCallStatuses)
	ctx.Protected.GET("/statuses/mappings", m.handler.ListMappings)
	ctx.Protected.POST("/statuses/mappings", m.handler.CreateMapping)

	// Admin CRUD endpoints
	adminGroup := ctx.Admin.Group("/statuses")
	adminGroup.POST("/lead", m.handler.UpsertLeadStatus)
	adminGroup.DELETE("/lead/:id", m.handler.DeleteLeadStatus)
	adminGroup.POST("/call", m.handler.UpsertCallStatus)
	adminGroup.DELETE("/call/:id", m.handler.DeleteCallStatus)
	adminGroup.PUT("/mappings/:id", m.handler.UpdateMapping)
	adminGroup.DELETE("/mappings/:id", m.handler.DeleteMapping)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
