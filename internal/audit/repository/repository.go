// Package repository persists the board activity trail. This is the one
// store the service owns itself; lead and catalog data live upstream.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Activity is one recorded board event.
type Activity struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organizationId"`
	LeadID         *uuid.UUID     `json:"leadId,omitempty"`
	EventType      string         `json:"eventType"`
	Detail         map[string]any `json:"detail"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// MetricsSnapshot is one captured set of board aggregates.
type MetricsSnapshot struct {
	ID              uuid.UUID `json:"id"`
	OrganizationID  uuid.UUID `json:"organizationId"`
	TotalLeads      int       `json:"totalLeads"`
	CriticalLeads   int       `json:"criticalLeads"`
	OverdueLeads    int       `json:"overdueLeads"`
	UrgentLeads     int       `json:"urgentLeads"`
	WonLeads        int       `json:"wonLeads"`
	ConversionRate  float64   `json:"conversionRate"`
	CommercialScore int       `json:"commercialScore"`
	CapturedAt      time.Time `json:"capturedAt"`
}

// Repository provides board activity data access.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordActivity inserts one activity row.
func (r *Repository) RecordActivity(ctx context.Context, organizationID uuid.UUID, leadID *uuid.UUID, eventType string, detail map[string]any) error {
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	if detail == nil {
		detailJSON = []byte("{}")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO board_activity (organization_id, lead_id, event_type, detail)
		VALUES ($1, $2, $3, $4)
	`, organizationID, leadID, eventType, detailJSON)
	return err
}

// ListRecent returns the newest activity rows for an organization.
func (r *Repository) ListRecent(ctx context.Context, organizationID uuid.UUID, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, lead_id, event_type, detail, created_at
		FROM board_activity
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		var item Activity
		var detailJSON []byte
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.LeadID, &item.EventType, &detailJSON, &item.CreatedAt); err != nil {
			return nil, err
		}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &item.Detail); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveMetricsSnapshot inserts one metrics snapshot row.
func (r *Repository) SaveMetricsSnapshot(ctx context.Context, snapshot MetricsSnapshot) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO board_metrics_snapshots (
			organization_id, total_leads, critical_leads, overdue_leads,
			urgent_leads, won_leads, conversion_rate, commercial_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, snapshot.OrganizationID, snapshot.TotalLeads, snapshot.CriticalLeads, snapshot.OverdueLeads,
		snapshot.UrgentLeads, snapshot.WonLeads, snapshot.ConversionRate, snapshot.CommercialScore)
	return err
}

// ListMetricsSnapshots returns the newest snapshots for an organization.
func (r *Repository) ListMetricsSnapshots(ctx context.Context, organizationID uuid.UUID, limit int) ([]MetricsSnapshot, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, total_leads, critical_leads, overdue_leads,
		       urgent_leads, won_leads, conversion_rate, commercial_score, captured_at
		FROM board_metrics_snapshots
		WHERE organization_id = $1
		ORDER BY captured_at DESC
		LIMIT $2
	`, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MetricsSnapshot
	for rows.Next() {
		var item MetricsSnapshot
		if err := rows.Scan(&item.ID, &item.OrganizationID, &item.TotalLeads, &item.CriticalLeads, &item.OverdueLeads,
			&item.UrgentLeads, &item.WonLeads, &item.ConversionRate, &item.CommercialScore, &item.CapturedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
