// Package handler exposes the board activity trail over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pipeline_board_backend/internal/audit/repository"
	"pipeline_board_backend/internal/audit/service"
	"pipeline_board_backend/platform/httpkit"
)

// Handler handles HTTP requests for the activity trail.
type Handler struct {
	svc *service.Service
}

// New creates a new audit handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListActivity returns recent board activity for the caller's organization.
// GET /api/v1/board/activity
func (h *Handler) ListActivity(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.svc.Recent(c.Request.Context(), orgID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	if items == nil {
		items = []repository.Activity{}
	}
	c.JSON(http.StatusOK, items)
}

// ListMetricsHistory returns recent metrics snapshots for the caller's
// organization.
// GET /api/v1/board/metrics/history
func (h *Handler) ListMetricsHistory(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.svc.MetricsHistory(c.Request.Context(), orgID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}
