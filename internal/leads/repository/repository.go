// Package repository provides lead data access against the CRM collaborator
// API. Persistence lives upstream; this layer only shapes requests and
// normalizes responses.
package repository

import (
	"context"
	"fmt"
	"time"

	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/phone"

	"github.com/google/uuid"
)

// Lead is a prospective customer tracked through the pipeline.
type Lead struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organizationId"`
	StatusID        uuid.UUID  `json:"statusId"`
	Source          string     `json:"source"`
	Name            string     `json:"name"`
	Email           *string    `json:"email,omitempty"`
	Phone           string     `json:"phone"`
	Company         *string    `json:"company,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastContactDate *time.Time `json:"lastContactDate,omitempty"`
}

// Repository reads and writes leads through the collaborator API.
type Repository struct {
	client      *crmclient.Client
	phoneRegion string
}

// New creates a new lead repository. phoneRegion is the ISO region national
// phone numbers are parsed against.
func New(client *crmclient.Client, phoneRegion string) *Repository {
	return &Repository{client: client, phoneRegion: phoneRegion}
}

// List returns every lead of the organization. Phone numbers are normalized
// to E.164 at the boundary.
func (r *Repository) List(ctx context.Context, organizationID uuid.UUID) ([]Lead, error) {
	var items []Lead
	path := fmt.Sprintf("/organizations/%s/leads", organizationID)
	if err := r.client.Get(ctx, path, &items); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Phone = phone.NormalizeE164(items[i].Phone, r.phoneRegion)
	}
	return items, nil
}

// UpdateStatus persists a lead's new status upstream.
func (r *Repository) UpdateStatus(ctx context.Context, organizationID, leadID, statusID uuid.UUID) error {
	path := fmt.Sprintf("/organizations/%s/leads/%s/status", organizationID, leadID)
	body := map[string]any{"statusId": statusID}
	return r.client.Patch(ctx, path, body, nil)
}

// RecordContact logs a contact event on the lead, which moves its
// lastContactDate upstream.
func (r *Repository) RecordContact(ctx context.Context, organizationID, leadID uuid.UUID, contactedAt time.Time) error {
	path := fmt.Sprintf("/organizations/%s/leads/%s/contacts", organizationID, leadID)
	body := map[string]any{"contactedAt": contactedAt.UTC().Format(time.RFC3339)}
	return r.client.Post(ctx, path, body, nil)
}

// ListOrganizationIDs returns the organizations visible to this service,
// used by the SLA sweep to fan out.
func (r *Repository) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	var orgs []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := r.client.Get(ctx, "/organizations", &orgs); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(orgs))
	for _, org := range orgs {
		ids = append(ids, org.ID)
	}
	return ids, nil
}
