// Package handler exposes the pipeline board over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/dnd"
	"pipeline_board_backend/internal/board/service"
	"pipeline_board_backend/internal/board/transport"
	"pipeline_board_backend/internal/events"
	catalogsvc "pipeline_board_backend/internal/statuscatalog/service"
	"pipeline_board_backend/platform/apperr"
	"pipeline_board_backend/platform/httpkit"
	"pipeline_board_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the pipeline board.
type Handler struct {
	boards   *service.Manager
	catalog  *catalogsvc.Service
	notifier service.Notifier
	val      *validator.Validator
}

// New creates a new board handler.
func New(boards *service.Manager, catalog *catalogsvc.Service, notifier service.Notifier, val *validator.Validator) *Handler {
	return &Handler{boards: boards, catalog: catalog, notifier: notifier, val: val}
}

// GetBoard renders the caller's pipeline board, loading it on first access.
// GET /api/v1/board
func (h *Handler) GetBoard(c *gin.Context) {
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	board := h.boards.Board(orgID)
	if board.State() == service.StateIdle {
		board.Load(c.Request.Context())
	}
	httpkit.OK(c, board.Snapshot())
}

// Refresh forces a reload. Manual refreshes are external triggers and are
// never suppressed.
// POST /api/v1/board/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "manual"
	}

	board := h.boards.Board(orgID)
	board.HandleRefresh(c.Request.Context(), events.RefreshOriginExternal, reason)
	httpkit.OK(c, board.Snapshot())
}

// MoveLead assigns a lead to another status via the board.
// POST /api/v1/board/move
func (h *Handler) MoveLead(c *gin.Context) {
	var req transport.MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	board := h.boards.Board(orgID)
	if board.State() == service.StateIdle {
		board.Load(c.Request.Context())
	}
	if httpkit.HandleError(c, board.MoveLead(c.Request.Context(), req.LeadID, req.StatusID)) {
		return
	}
	httpkit.OK(c, board.Snapshot())
}

// Drop applies a completed drag gesture. The payload's kind tag decides
// whether it reorders a list, links a call status, or moves a lead.
// POST /api/v1/board/drop
func (h *Handler) Drop(c *gin.Context) {
	var req transport.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req.Target); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	session, err := h.newSession(c.Request.Context(), orgID, req.Payload)
	if httpkit.HandleError(c, err) {
		return
	}
	if httpkit.HandleError(c, session.BeginDrag(req.Payload)) {
		return
	}

	switch req.Target.Kind {
	case transport.DropOnColumn:
		err = session.DropOnColumn(c.Request.Context(), req.Target.ID)
	default:
		err = session.DropOnCard(c.Request.Context(), req.Target.ListKind, req.Target.Index, req.Target.ID)
	}
	if httpkit.HandleError(c, err) {
		return
	}
	if httpkit.HandleError(c, session.EndDrag(c.Request.Context())) {
		return
	}
	if req.Payload.Kind == dnd.KindLink {
		h.notifier.Success(orgID, "Call status linked")
	}
	httpkit.OK(c, gin.H{"applied": true})
}

// RecordContact logs a contact event on a lead.
// POST /api/v1/board/leads/:id/contact
func (h *Handler) RecordContact(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	board := h.boards.Board(orgID)
	if board.State() == service.StateIdle {
		board.Load(c.Request.Context())
	}
	if httpkit.HandleError(c, board.RecordContact(c.Request.Context(), leadID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// newSession builds a one-shot drag session seeded with the current order of
// the list the payload belongs to.
func (h *Handler) newSession(ctx context.Context, orgID uuid.UUID, payload dnd.Payload) (*dnd.Session, error) {
	dispatcher := &gestureDispatcher{orgID: orgID, boards: h.boards, catalog: h.catalog}

	list := payload.ListKind
	if payload.Kind != dnd.KindReorder {
		// Only reorder gestures need a seeded working order.
		return dnd.NewSession(dispatcher, dnd.ListLeadStatuses, nil), nil
	}

	var ids []uuid.UUID
	switch list {
	case dnd.ListCallStatuses:
		statuses, err := h.catalog.CallStatuses(ctx, orgID)
		if err != nil {
			return nil, err
		}
		for _, s := range statuses {
			ids = append(ids, s.ID)
		}
	case dnd.ListLeadStatuses:
		statuses, err := h.catalog.LeadStatuses(ctx, orgID)
		if err != nil {
			return nil, err
		}
		for _, s := range statuses {
			ids = append(ids, s.ID)
		}
	default:
		return nil, apperr.Validation("unknown list kind")
	}
	return dnd.NewSession(dispatcher, list, ids), nil
}

// gestureDispatcher routes committed drag intents to the owning services.
type gestureDispatcher struct {
	orgID   uuid.UUID
	boards  *service.Manager
	catalog *catalogsvc.Service
}

func (d *gestureDispatcher) SaveOrder(ctx context.Context, list dnd.ListKind, ordered []uuid.UUID) error {
	if list == dnd.ListCallStatuses {
		return d.catalog.ReorderCallStatuses(ctx, d.orgID, ordered)
	}
	return d.catalog.ReorderLeadStatuses(ctx, d.orgID, ordered)
}

func (d *gestureDispatcher) LinkStatuses(ctx context.Context, callStatusID, leadStatusID uuid.UUID) error {
	_, err := d.catalog.LinkCallStatus(ctx, d.orgID, callStatusID, leadStatusID)
	return err
}

func (d *gestureDispatcher) MoveLead(ctx context.Context, leadID, statusID uuid.UUID) error {
	board := d.boards.Board(d.orgID)
	if board.State() == service.StateIdle {
		board.Load(ctx)
	}
	return board.MoveLead(ctx, leadID, statusID)
}

func mustOrg(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, false
	}
	return httpkit.MustGetOrgID(c, identity)
}
