package transport

import "github.com/google/uuid"

// Lead statuses

type UpsertLeadStatusRequest struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	Key       string     `json:"key" validate:"required,min=1,max=50"`
	Name      string     `json:"name" validate:"required,min=1,max=100"`
	Color     string     `json:"color" validate:"required,hexcolor"`
	IsDefault bool       `json:"isDefault"`
}

type ReorderRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds" validate:"required,min=1"`
}

type LeadStatusResponse struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	IsDefault bool      `json:"isDefault"`
}

// Call statuses

type UpsertCallStatusRequest struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Key   string     `json:"key" validate:"required,min=1,max=50"`
	Name  string     `json:"name" validate:"required,min=1,max=100"`
	Color string     `json:"color" validate:"required,hexcolor"`
	Icon  *string    `json:"icon,omitempty" validate:"omitempty,max=50"`
}

type CallStatusResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Key                string     `json:"key"`
	Name               string     `json:"name"`
	Color              string     `json:"color"`
	Icon               *string    `json:"icon,omitempty"`
	Order              int        `json:"order"`
	MappedToLeadStatus *uuid.UUID `json:"mappedToLeadStatus,omitempty"`
}

// Mappings

type CreateMappingRequest struct {
	CallStatusID uuid.UUID `json:"callStatusId" validate:"required"`
	LeadStatusID uuid.UUID `json:"leadStatusId" validate:"required"`
	Priority     *int      `json:"priority,omitempty" validate:"omitempty,min=0,max=1000"`
	Condition    *string   `json:"condition,omitempty" validate:"omitempty,max=500"`
}

type UpdateMappingRequest struct {
	Priority  *int    `json:"priority,omitempty" validate:"omitempty,min=0,max=1000"`
	Condition *string `json:"condition,omitempty" validate:"omitempty,max=500"`
}

type MappingResponse struct {
	ID           uuid.UUID `json:"id"`
	CallStatusID uuid.UUID `json:"callStatusId"`
	LeadStatusID uuid.UUID `json:"leadStatusId"`
	Priority     int       `json:"priority"`
	Condition    *string   `json:"condition,omitempty"`
	CreatedAt    string    `json:"createdAt"`
}
