// Package handler exposes the status catalog over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/internal/statuscatalog/service"
	"pipeline_board_backend/internal/statuscatalog/transport"
	"pipeline_board_backend/platform/httpkit"
	"pipeline_board_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Handler handles HTTP requests for the status catalog.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new status catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListLeadStatuses retrieves the ordered lead status definitions.
// GET /api/v1/statuses/lead
func (h *Handler) ListLeadStatuses(c *gin.Context) {
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	items, err := h.svc.LeadStatuses(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadStatusResponses(items))
}

// UpsertLeadStatus creates or updates a lead status.
// POST /api/v1/admin/statuses/lead
func (h *Handler) UpsertLeadStatus(c *gin.Context) {
	var req transport.UpsertLeadStatusRequest
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

	status := repository.LeadStatus{
		Key:       req.Key,
		Name:      req.Name,
		Color:     req.Color,
		IsDefault: req.IsDefault,
	}
	if req.ID != nil {
		status.ID = *req.ID
	}

	saved, err := h.svc.UpsertLeadStatus(c.Request.Context(), orgID, status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toLeadStatusResponse(saved))
}

// DeleteLeadStatus removes a lead status.
// DELETE /api/v1/admin/statuses/lead/:id
func (h *Handler) DeleteLeadStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteLeadStatus(c.Request.Context(), orgID, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderLeadStatuses persists a new lead status order.
// PUT /api/v1/statuses/lead/reorder
func (h *Handler) ReorderLeadStatuses(c *gin.Context) {
	h.reorder(c, h.svc.ReorderLeadStatuses)
}

// ListCallStatuses retrieves the ordered call status definitions.
// GET /api/v1/statuses/call
func (h *Handler) ListCallStatuses(c *gin.Context) {
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	items, err := h.svc.CallStatuses(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toCallStatusResponses(items))
}

// UpsertCallStatus creates or updates a call status.
// POST /api/v1/admin/statuses/call
func (h *Handler) UpsertCallStatus(c *gin.Context) {
	var req transport.UpsertCallStatusRequest
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

	status := repository.CallStatus{
		Key:   req.Key,
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	}
	if req.ID != nil {
		status.ID = *req.ID
	}

	saved, err := h.svc.UpsertCallStatus(c.Request.Context(), orgID, status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toCallStatusResponse(saved))
}

// DeleteCallStatus removes a call status.
// DELETE /api/v1/admin/statuses/call/:id
func (h *Handler) DeleteCallStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteCallStatus(c.Request.Context(), orgID, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderCallStatuses persists a new call status order.
// PUT /api/v1/statuses/call/reorder
func (h *Handler) ReorderCallStatuses(c *gin.Context) {
	h.reorder(c, h.svc.ReorderCallStatuses)
}

// ListMappings retrieves call-status mappings.
// GET /api/v1/statuses/mappings
func (h *Handler) ListMappings(c *gin.Context) {
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	items, err := h.svc.Mappings(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.MappingResponse, 0, len(items))
	for _, mapping := range items {
		out = append(out, toMappingResponse(mapping))
	}
	httpkit.OK(c, out)
}

// CreateMapping links a call status to a lead status.
// POST /api/v1/statuses/mappings
func (h *Handler) CreateMapping(c *gin.Context) {
	var req transport.CreateMappingRequest
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

	saved, err := h.svc.LinkCallStatus(c.Request.Context(), orgID, req.CallStatusID, req.LeadStatusID)
	if httpkit.HandleError(c, err) {
		return
	}

	if req.Priority != nil || req.Condition != nil {
		if req.Priority != nil {
			saved.Priority = *req.Priority
		}
		if req.Condition != nil {
			saved.Condition = req.Condition
		}
		saved, err = h.svc.UpdateMapping(c.Request.Context(), orgID, saved)
		if httpkit.HandleError(c, err) {
			return
		}
	}
	httpkit.JSON(c, http.StatusCreated, toMappingResponse(saved))
}

// UpdateMapping updates a mapping's priority or condition.
// PUT /api/v1/admin/statuses/mappings/:id
func (h *Handler) UpdateMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateMappingRequest
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

	current, err := h.svc.Mappings(c.Request.Context(), orgID)
	if httpkit.HandleError(c, err) {
		return
	}
	var mapping repository.Mapping
	found := false
	for _, m := range current {
		if m.ID == id {
			mapping = m
			found = true
			break
		}
	}
	if !found {
		httpkit.Error(c, http.StatusNotFound, "mapping not found", nil)
		return
	}
	if req.Priority != nil {
		mapping.Priority = *req.Priority
	}
	if req.Condition != nil {
		mapping.Condition = req.Condition
	}

	saved, err := h.svc.UpdateMapping(c.Request.Context(), orgID, mapping)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toMappingResponse(saved))
}

// DeleteMapping removes a mapping.
// DELETE /api/v1/statuses/mappings/:id
func (h *Handler) DeleteMapping(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	orgID, ok := mustOrg(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteMapping(c.Request.Context(), orgID, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) reorder(c *gin.Context, save func(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) error) {
	var req transport.ReorderRequest
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

	if httpkit.HandleError(c, save(c.Request.Context(), orgID, req.OrderedIDs)) {
		return
	}
	httpkit.OK(c, gin.H{"orderedIds": req.OrderedIDs})
}

func mustOrg(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.Nil, false
	}
	return httpkit.MustGetOrgID(c, identity)
}

func toLeadStatusResponse(s repository.LeadStatus) transport.LeadStatusResponse {
	return transport.LeadStatusResponse{
		ID:        s.ID,
		Key:       s.Key,
		Name:      s.Name,
		Color:     s.Color,
		Order:     s.Order,
		IsDefault: s.IsDefault,
	}
}

func toLeadStatusResponses(items []repository.LeadStatus) []transport.LeadStatusResponse {
	out := make([]transport.LeadStatusResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toLeadStatusResponse(item))
	}
	return out
}

func toCallStatusResponse(s repository.CallStatus) transport.CallStatusResponse {
	return transport.CallStatusResponse{
		ID:                 s.ID,
		Key:                s.Key,
		Name:               s.Name,
		Color:              s.Color,
		Icon:               s.Icon,
		Order:              s.Order,
		MappedToLeadStatus: s.MappedToLeadStatus,
	}
}

func toCallStatusResponses(items []repository.CallStatus) []transport.CallStatusResponse {
	out := make([]transport.CallStatusResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toCallStatusResponse(item))
	}
	return out
}

func toMappingResponse(m repository.Mapping) transport.MappingResponse {
	return transport.MappingResponse{
		ID:           m.ID,
		CallStatusID: m.CallStatusID,
		LeadStatusID: m.LeadStatusID,
		Priority:     m.Priority,
		Condition:    m.Condition,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
