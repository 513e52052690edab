// Package service provides business logic for the status catalog: ordered
// lead status and call status definitions plus call-status mappings.
package service

import (
	"context"
	"sort"
	"strings"

	"pipeline_board_backend/internal/events"
	"pipeline_board_backend/internal/statuscatalog/repository"
	"pipeline_board_backend/platform/apperr"
	"pipeline_board_backend/platform/logger"

	"github.com/google/uuid"
)

// DefaultLinkPriority is assigned to mappings created by drop gestures.
// Lower priorities win, so gesture-created links never shadow curated ones.
const DefaultLinkPriority = 100

// Store is the catalog persistence the service depends on.
type Store interface {
	ListLeadStatuses(ctx context.Context, organizationID uuid.UUID) ([]repository.LeadStatus, error)
	SaveLeadStatusOrder(ctx context.Context, organizationID uuid.UUID, ordered []uuid.UUID) error
	UpsertLeadStatus(ctx context.Context, organizationID uuid.UUID, status repository.LeadStatus) (repository.LeadStatus, error)
	DeleteLeadStatus(ctx context.Context, organizationID, id uuid.UUID) error

	ListCallStatuses(ctx context.Context, organizationID uuid.UUID) ([]repository.CallStatus, error)
	SaveCallStatusOrder(ctx context.Context, organizationID uuid.UUID, ordered []uuid.UUID) error
	UpsertCallStatus(ctx context.Context, organizationID uuid.UUID, status repository.CallStatus) (repository.CallStatus, error)
	DeleteCallStatus(ctx context.Context, organizationID, id uuid.UUID) error

	ListMappings(ctx context.Context, organizationID uuid.UUID) ([]repository.Mapping, error)
	CreateMapping(ctx context.Context, organizationID uuid.UUID, mapping repository.Mapping) (repository.Mapping, error)
	UpdateMapping(ctx context.Context, organizationID uuid.UUID, mapping repository.Mapping) (repository.Mapping, error)
	DeleteMapping(ctx context.Context, organizationID, id uuid.UUID) error
}

// Service provides business logic for the status catalog.
type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new status catalog service.
func New(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// LeadStatuses returns the lead status definitions sorted by order, with the
// order field normalized to a contiguous 0..n-1 sequence.
func (s *Service) LeadStatuses(ctx context.Context, organizationID uuid.UUID) ([]repository.LeadStatus, error) {
	items, err := s.repo.ListLeadStatuses(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	for i := range items {
		items[i].Order = i
	}
	return items, nil
}

// CallStatuses returns the call status definitions sorted by order, with the
// order field normalized to a contiguous 0..n-1 sequence.
func (s *Service) CallStatuses(ctx context.Context, organizationID uuid.UUID) ([]repository.CallStatus, error) {
	items, err := s.repo.ListCallStatuses(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	for i := range items {
		items[i].Order = i
	}
	return items, nil
}

// ReorderLeadStatuses persists a new column order. The ordered ids must be a
// permutation of the current catalog; the remote rewrite is a single call.
func (s *Service) ReorderLeadStatuses(ctx context.Context, organizationID uuid.UUID, orderedIDs []uuid.UUID) error {
	current, err := s.repo.ListLeadStatuses(ctx, organizationID)
	if err != nil {
		return err
	}
	currentIDs := make([]uuid.UUID, len(current))
	for i, status := range current {
		currentIDs[i] = status.ID
	}
	if err := validatePermutation(orderedIDs, currentIDs); err != nil {
		return err
	}

	if err := s.repo.SaveLeadStatusOrder(ctx, organizationID, orderedIDs); err != nil {
		return err
	}

	s.log.Info("lead statuses reordered", "orgId", organizationID, "count", len(orderedIDs))
	s.bus.Publish(ctx, events.StatusCatalogReordered{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		ListKind:       "lead_status",
		OrderedIDs:     orderedIDs,
	})
	return nil
}

// ReorderCallStatuses persists a new call status order. Call status order is
// independent of lead status order.
func (s *Service) ReorderCallStatuses(ctx context.Context, organizationID uuid.UUID, orderedIDs []uuid.UUID) error {
	current, err := s.repo.ListCallStatuses(ctx, organizationID)
	if err != nil {
		return err
	}
	currentIDs := make([]uuid.UUID, len(current))
	for i, status := range current {
		currentIDs[i] = status.ID
	}
	if err := validatePermutation(orderedIDs, currentIDs); err != nil {
		return err
	}

	if err := s.repo.SaveCallStatusOrder(ctx, organizationID, orderedIDs); err != nil {
		return err
	}

	s.log.Info("call statuses reordered", "orgId", organizationID, "count", len(orderedIDs))
	s.bus.Publish(ctx, events.StatusCatalogReordered{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		ListKind:       "call_status",
		OrderedIDs:     orderedIDs,
	})
	return nil
}

// UpsertLeadStatus creates or updates a lead status definition.
func (s *Service) UpsertLeadStatus(ctx context.Context, organizationID uuid.UUID, status repository.LeadStatus) (repository.LeadStatus, error) {
	status.Name = strings.TrimSpace(status.Name)
	if status.Name == "" {
		return repository.LeadStatus{}, apperr.Validation("status name is required")
	}
	saved, err := s.repo.UpsertLeadStatus(ctx, organizationID, status)
	if err != nil {
		return repository.LeadStatus{}, err
	}
	s.log.Info("lead status saved", "orgId", organizationID, "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// DeleteLeadStatus removes a lead status definition.
func (s *Service) DeleteLeadStatus(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.repo.DeleteLeadStatus(ctx, organizationID, id); err != nil {
		return err
	}
	s.log.Info("lead status deleted", "orgId", organizationID, "id", id)
	return nil
}

// UpsertCallStatus creates or updates a call status definition.
func (s *Service) UpsertCallStatus(ctx context.Context, organizationID uuid.UUID, status repository.CallStatus) (repository.CallStatus, error) {
	status.Name = strings.TrimSpace(status.Name)
	if status.Name == "" {
		return repository.CallStatus{}, apperr.Validation("status name is required")
	}
	saved, err := s.repo.UpsertCallStatus(ctx, organizationID, status)
	if err != nil {
		return repository.CallStatus{}, err
	}
	s.log.Info("call status saved", "orgId", organizationID, "id", saved.ID, "name", saved.Name)
	return saved, nil
}

// DeleteCallStatus removes a call status definition.
func (s *Service) DeleteCallStatus(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.repo.DeleteCallStatus(ctx, organizationID, id); err != nil {
		return err
	}
	s.log.Info("call status deleted", "orgId", organizationID, "id", id)
	return nil
}

// Mappings returns all call-status mappings of the organization.
func (s *Service) Mappings(ctx context.Context, organizationID uuid.UUID) ([]repository.Mapping, error) {
	return s.repo.ListMappings(ctx, organizationID)
}

// LinkCallStatus creates or refreshes the mapping between a call status and a
// lead status. Used by cross-entity link drops; new mappings get
// DefaultLinkPriority.
func (s *Service) LinkCallStatus(ctx context.Context, organizationID, callStatusID, leadStatusID uuid.UUID) (repository.Mapping, error) {
	if callStatusID == uuid.Nil || leadStatusID == uuid.Nil {
		return repository.Mapping{}, apperr.Validation("call status and lead status are required")
	}

	existing, err := s.repo.ListMappings(ctx, organizationID)
	if err != nil {
		return repository.Mapping{}, err
	}

	for _, mapping := range existing {
		if mapping.CallStatusID == callStatusID && mapping.LeadStatusID == leadStatusID {
			// Already linked; keep the curated priority.
			return mapping, nil
		}
	}

	saved, err := s.repo.CreateMapping(ctx, organizationID, repository.Mapping{
		CallStatusID: callStatusID,
		LeadStatusID: leadStatusID,
		Priority:     DefaultLinkPriority,
	})
	if err != nil {
		return repository.Mapping{}, err
	}

	s.log.Info("call status linked", "orgId", organizationID, "callStatusId", callStatusID, "leadStatusId", leadStatusID)
	s.bus.Publish(ctx, events.CallStatusLinked{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: organizationID,
		CallStatusID:   callStatusID,
		LeadStatusID:   leadStatusID,
		Priority:       saved.Priority,
	})
	return saved, nil
}

// UpdateMapping updates an existing mapping's priority or condition.
func (s *Service) UpdateMapping(ctx context.Context, organizationID uuid.UUID, mapping repository.Mapping) (repository.Mapping, error) {
	if mapping.ID == uuid.Nil {
		return repository.Mapping{}, apperr.Validation("mapping id is required")
	}
	return s.repo.UpdateMapping(ctx, organizationID, mapping)
}

// DeleteMapping removes a mapping record.
func (s *Service) DeleteMapping(ctx context.Context, organizationID, id uuid.UUID) error {
	return s.repo.DeleteMapping(ctx, organizationID, id)
}

// ResolveActiveMapping picks the single mapping automatic transitions consult
// for a call status: lowest priority wins, ties break on earliest creation.
func ResolveActiveMapping(mappings []repository.Mapping, callStatusID uuid.UUID) (repository.Mapping, bool) {
	var winner repository.Mapping
	found := false

	for _, mapping := range mappings {
		if mapping.CallStatusID != callStatusID {
			continue
		}
		if !found {
			winner = mapping
			found = true
			continue
		}
		if mapping.Priority < winner.Priority ||
			(mapping.Priority == winner.Priority && mapping.CreatedAt.Before(winner.CreatedAt)) {
			winner = mapping
		}
	}

	return winner, found
}

func validatePermutation(proposed, current []uuid.UUID) error {
	if len(proposed) != len(current) {
		return apperr.Validation("reorder must include every status exactly once")
	}

	seen := make(map[uuid.UUID]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	for _, id := range proposed {
		if !seen[id] {
			return apperr.Validation("reorder references an unknown status")
		}
		delete(seen, id)
	}
	if len(seen) != 0 {
		return apperr.Validation("reorder must include every status exactly once")
	}
	return nil
}
