package transport

import (
	"github.com/google/uuid"

	"pipeline_board_backend/internal/board/dnd"
)

// MoveLeadRequest assigns a lead to another pipeline status.
type MoveLeadRequest struct {
	LeadID   uuid.UUID `json:"leadId" validate:"required"`
	StatusID uuid.UUID `json:"statusId" validate:"required"`
}

// RefreshRequest triggers a manual board reload.
type RefreshRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=100"`
}

// DropTargetKind tells what the payload was dropped on.
type DropTargetKind string

const (
	DropOnCard   DropTargetKind = "card"
	DropOnColumn DropTargetKind = "column"
)

// DropTarget describes the drop zone of a gesture.
type DropTarget struct {
	Kind     DropTargetKind `json:"kind" validate:"required,oneof=card column"`
	ListKind dnd.ListKind   `json:"listKind,omitempty"`
	Index    int            `json:"index"`
	ID       uuid.UUID      `json:"id" validate:"required"`
}

// DropRequest is a completed drag gesture: the dragged payload plus where it
// landed. Payload decoding validates the tagged union.
type DropRequest struct {
	Payload dnd.Payload `json:"payload"`
	Target  DropTarget  `json:"target"`
}
