// Package dnd translates drag gestures into mutation intents. Two contexts
// share the same drop zones without interfering: list reordering and
// cross-entity linking; the payload's kind tag decides which path a drop
// takes.
package dnd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pipeline_board_backend/platform/apperr"
)

// Kind tags the intent a dragged item carries.
type Kind string

const (
	// KindReorder moves an item to a new position within its own list.
	KindReorder Kind = "reorder"
	// KindLink drops a status card of one kind onto a card of the other,
	// creating a call-status mapping.
	KindLink Kind = "link"
	// KindMove drags a lead card onto another column, changing its status.
	KindMove Kind = "move"
)

// ListKind identifies which status list an item belongs to.
type ListKind string

const (
	ListLeadStatuses ListKind = "lead_status"
	ListCallStatuses ListKind = "call_status"
)

// Payload is the tagged union describing what is being dragged. Exactly the
// fields of the declared kind are meaningful.
type Payload struct {
	Kind Kind `json:"kind"`

	// KindReorder
	ListKind ListKind  `json:"listKind,omitempty"`
	Index    int       `json:"index,omitempty"`
	ID       uuid.UUID `json:"id,omitempty"`

	// KindLink
	SourceID   uuid.UUID `json:"sourceId,omitempty"`
	SourceKind ListKind  `json:"sourceKind,omitempty"`

	// KindMove
	LeadID   uuid.UUID `json:"leadId,omitempty"`
	StatusID uuid.UUID `json:"statusId,omitempty"`
}

// Reorder builds a reorder payload for the item at index.
func Reorder(list ListKind, index int, id uuid.UUID) Payload {
	return Payload{Kind: KindReorder, ListKind: list, Index: index, ID: id}
}

// Link builds a link payload for a status card dragged across lists.
func Link(sourceKind ListKind, sourceID uuid.UUID) Payload {
	return Payload{Kind: KindLink, SourceKind: sourceKind, SourceID: sourceID}
}

// Move builds a move payload for a lead card dragged onto a column.
func Move(leadID, statusID uuid.UUID) Payload {
	return Payload{Kind: KindMove, LeadID: leadID, StatusID: statusID}
}

// Validate checks that the payload carries the fields its kind requires.
func (p Payload) Validate() error {
	switch p.Kind {
	case KindReorder:
		if !validListKind(p.ListKind) {
			return apperr.Validation("reorder payload needs a valid list kind")
		}
		if p.ID == uuid.Nil {
			return apperr.Validation("reorder payload needs an item id")
		}
		if p.Index < 0 {
			return apperr.Validation("reorder payload index must not be negative")
		}
	case KindLink:
		if !validListKind(p.SourceKind) {
			return apperr.Validation("link payload needs a valid source kind")
		}
		if p.SourceID == uuid.Nil {
			return apperr.Validation("link payload needs a source id")
		}
	case KindMove:
		if p.LeadID == uuid.Nil || p.StatusID == uuid.Nil {
			return apperr.Validation("move payload needs a lead id and a status id")
		}
	default:
		return apperr.Validation(fmt.Sprintf("unknown drag payload kind %q", p.Kind))
	}
	return nil
}

// UnmarshalJSON decodes and validates the tagged union in one step so
// malformed payloads never enter the controller.
func (p *Payload) UnmarshalJSON(data []byte) error {
	type raw Payload
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = Payload(decoded)
	return p.Validate()
}

func validListKind(k ListKind) bool {
	return k == ListLeadStatuses || k == ListCallStatuses
}
