// Package service records board and catalog events into the activity trail.
package service

import (
	"context"

	"github.com/google/uuid"

	"pipeline_board_backend/internal/audit/repository"
	"pipeline_board_backend/internal/events"
	"pipeline_board_backend/platform/logger"
)

// Service subscribes to domain events and persists them as activity rows.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new audit service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Recent returns the newest activity for an organization.
func (s *Service) Recent(ctx context.Context, organizationID uuid.UUID, limit int) ([]repository.Activity, error) {
	return s.repo.ListRecent(ctx, organizationID, limit)
}

// MetricsHistory returns recent metrics snapshots for an organization.
func (s *Service) MetricsHistory(ctx context.Context, organizationID uuid.UUID, limit int) ([]repository.MetricsSnapshot, error) {
	return s.repo.ListMetricsSnapshots(ctx, organizationID, limit)
}

// SaveSnapshot stores one metrics snapshot.
func (s *Service) SaveSnapshot(ctx context.Context, snapshot repository.MetricsSnapshot) error {
	return s.repo.SaveMetricsSnapshot(ctx, snapshot)
}

// Handle writes the interesting domain events to the trail. Failures are
// logged only; the trail never blocks the publishing flow.
func (s *Service) Handle(ctx context.Context, event events.Event) error {
	var err error
	switch e := event.(type) {
	case events.LeadStatusChanged:
		leadID := e.LeadID
		err = s.repo.RecordActivity(ctx, e.OrganizationID, &leadID, e.EventName(), map[string]any{
			"oldStatusId": e.OldStatusID,
			"newStatusId": e.NewStatusID,
			"origin":      e.Origin,
		})
	case events.LeadContactRecorded:
		leadID := e.LeadID
		err = s.repo.RecordActivity(ctx, e.OrganizationID, &leadID, e.EventName(), map[string]any{
			"contactedAt": e.ContactedAt,
		})
	case events.LeadSLABreached:
		leadID := e.LeadID
		err = s.repo.RecordActivity(ctx, e.OrganizationID, &leadID, e.EventName(), map[string]any{
			"timelineStatus": e.TimelineStatus,
			"urgencyLevel":   e.UrgencyLevel,
		})
	case events.StatusCatalogReordered:
		err = s.repo.RecordActivity(ctx, e.OrganizationID, nil, e.EventName(), map[string]any{
			"listKind": e.ListKind,
			"count":    len(e.OrderedIDs),
		})
	case events.CallStatusLinked:
		err = s.repo.RecordActivity(ctx, e.OrganizationID, nil, e.EventName(), map[string]any{
			"callStatusId": e.CallStatusID,
			"leadStatusId": e.LeadStatusID,
			"priority":     e.Priority,
		})
	}

	if err != nil {
		s.log.DatabaseError("record board activity", err)
	}
	return nil
}

// RegisterHandlers subscribes the trail to the events it records.
func (s *Service) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), s)
	bus.Subscribe(events.LeadContactRecorded{}.EventName(), s)
	bus.Subscribe(events.LeadSLABreached{}.EventName(), s)
	bus.Subscribe(events.StatusCatalogReordered{}.EventName(), s)
	bus.Subscribe(events.CallStatusLinked{}.EventName(), s)
}
