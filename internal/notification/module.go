// Package notification provides the toast notification module.
package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "pipeline_board_backend/internal/http"
	"pipeline_board_backend/internal/notification/toast"
	"pipeline_board_backend/platform/httpkit"
	"pipeline_board_backend/platform/logger"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	toasts *toast.Service
}

// NewModule creates and initializes the notification module.
func NewModule(log *logger.Logger) *Module {
	return &Module{toasts: toast.New(log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Toasts returns the toast sink for other modules to publish into.
func (m *Module) Toasts() *toast.Service {
	return m.toasts
}

// RegisterRoutes mounts the SSE stream on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.toasts.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		identity, ok := httpkit.GetIdentity(c)
		if !ok || identity.OrgID == nil {
			return uuid.Nil, false
		}
		return *identity.OrgID, true
	}))
}

// Close shuts the toast streams down.
func (m *Module) Close() {
	m.toasts.Close()
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
