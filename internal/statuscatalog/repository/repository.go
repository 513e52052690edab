// Package repository provides status catalog data access against the CRM
// collaborator API.
package repository

import (
	"context"
	"fmt"
	"time"

	"pipeline_board_backend/platform/crmclient"

	"github.com/google/uuid"
)

// LeadStatus is one pipeline stage definition. Order defines the column
// position and stays unique and contiguous after any reorder.
type LeadStatus struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	IsDefault bool      `json:"isDefault"`
}

// CallStatus is one call outcome definition.
type CallStatus struct {
	ID                 uuid.UUID  `json:"id"`
	Key                string     `json:"key"`
	Name               string     `json:"name"`
	Color              string     `json:"color"`
	Icon               *string    `json:"icon,omitempty"`
	Order              int        `json:"order"`
	MappedToLeadStatus *uuid.UUID `json:"mappedToLeadStatus,omitempty"`
}

// Mapping associates a call outcome with the lead status an automatic
// transition should apply. Lower priority wins when several records exist
// for the same call status.
type Mapping struct {
	ID           uuid.UUID `json:"id"`
	CallStatusID uuid.UUID `json:"callStatusId"`
	LeadStatusID uuid.UUID `json:"leadStatusId"`
	Priority     int       `json:"priority"`
	Condition    *string   `json:"condition,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repository reads and writes catalog definitions through the collaborator API.
type Repository struct {
	client *crmclient.Client
}

// New creates a new status catalog repository.
func New(client *crmclient.Client) *Repository {
	return &Repository{client: client}
}

// Lead statuses

func (r *Repository) ListLeadStatuses(ctx context.Context, organizationID uuid.UUID) ([]LeadStatus, error) {
	var items []LeadStatus
	path := fmt.Sprintf("/organizations/%s/lead-statuses", organizationID)
	if err := r.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveLeadStatusOrder persists the full rewritten order in one call so the
// rewrite is all-or-nothing from the caller's perspective.
func (r *Repository) SaveLeadStatusOrder(ctx context.Context, organizationID uuid.UUID, ordered []uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/lead-statuses/reorder", organizationID)
	body := map[string]any{"orderedIds": ordered}
	return r.client.Put(ctx, path, body, nil)
}

func (r *Repository) UpsertLeadStatus(ctx context.Context, organizationID uuid.UUID, status LeadStatus) (LeadStatus, error) {
	var saved LeadStatus
	if status.ID == uuid.Nil {
		path := fmt.Sprintf("/organizations/%s/lead-statuses", organizationID)
		if err := r.client.Post(ctx, path, status, &saved); err != nil {
			return LeadStatus{}, err
		}
		return saved, nil
	}

	path := fmt.Sprintf("/organizations/%s/lead-statuses/%s", organizationID, status.ID)
	if err := r.client.Put(ctx, path, status, &saved); err != nil {
		return LeadStatus{}, err
	}
	return saved, nil
}

func (r *Repository) DeleteLeadStatus(ctx context.Context, organizationID, id uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/lead-statuses/%s", organizationID, id)
	return r.client.Delete(ctx, path)
}

// Call statuses

func (r *Repository) ListCallStatuses(ctx context.Context, organizationID uuid.UUID) ([]CallStatus, error) {
	var items []CallStatus
	path := fmt.Sprintf("/organizations/%s/call-statuses", organizationID)
	if err := r.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) SaveCallStatusOrder(ctx context.Context, organizationID uuid.UUID, ordered []uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/call-statuses/reorder", organizationID)
	body := map[string]any{"orderedIds": ordered}
	return r.client.Put(ctx, path, body, nil)
}

func (r *Repository) UpsertCallStatus(ctx context.Context, organizationID uuid.UUID, status CallStatus) (CallStatus, error) {
	var saved CallStatus
	if status.ID == uuid.Nil {
		path := fmt.Sprintf("/organizations/%s/call-statuses", organizationID)
		if err := r.client.Post(ctx, path, status, &saved); err != nil {
			return CallStatus{}, err
		}
		return saved, nil
	}

	path := fmt.Sprintf("/organizations/%s/call-statuses/%s", organizationID, status.ID)
	if err := r.client.Put(ctx, path, status, &saved); err != nil {
		return CallStatus{}, err
	}
	return saved, nil
}

func (r *Repository) DeleteCallStatus(ctx context.Context, organizationID, id uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/call-statuses/%s", organizationID, id)
	return r.client.Delete(ctx, path)
}

// Mappings

func (r *Repository) ListMappings(ctx context.Context, organizationID uuid.UUID) ([]Mapping, error) {
	var items []Mapping
	path := fmt.Sprintf("/organizations/%s/call-status-mappings", organizationID)
	if err := r.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) CreateMapping(ctx context.Context, organizationID uuid.UUID, mapping Mapping) (Mapping, error) {
	var saved Mapping
	path := fmt.Sprintf("/organizations/%s/call-status-mappings", organizationID)
	if err := r.client.Post(ctx, path, mapping, &saved); err != nil {
		return Mapping{}, err
	}
	return saved, nil
}

func (r *Repository) UpdateMapping(ctx context.Context, organizationID uuid.UUID, mapping Mapping) (Mapping, error) {
	var saved Mapping
	path := fmt.Sprintf("/organizations/%s/call-status-mappings/%s", organizationID, mapping.ID)
	if err := r.client.Put(ctx, path, mapping, &saved); err != nil {
		return Mapping{}, err
	}
	return saved, nil
}

func (r *Repository) DeleteMapping(ctx context.Context, organizationID, id uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/call-status-mappings/%s", organizationID, id)
	return r.client.Delete(ctx, path)
}
