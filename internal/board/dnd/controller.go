package dnd

import (
	"context"

	"github.com/google/uuid"

	"pipeline_board_backend/platform/apperr"
)

// Dispatcher receives the committed mutation intents of a drag session.
type Dispatcher interface {
	SaveOrder(ctx context.Context, list ListKind, ordered []uuid.UUID) error
	LinkStatuses(ctx context.Context, callStatusID, leadStatusID uuid.UUID) error
	MoveLead(ctx context.Context, leadID, statusID uuid.UUID) error
}

// Session is one drag interaction over a status list. Hover feedback mutates
// only the session-local working order; nothing reaches the dispatcher until
// an explicit drop or drag-end. Sessions are not safe for concurrent use.
type Session struct {
	dispatcher Dispatcher
	list       ListKind
	items      []uuid.UUID

	dragging *Payload
	isOver   bool
	dirty    bool
}

// NewSession starts a drag session over the current order of a status list.
// The item slice is copied; callers keep their own.
func NewSession(dispatcher Dispatcher, list ListKind, items []uuid.UUID) *Session {
	working := make([]uuid.UUID, len(items))
	copy(working, items)
	return &Session{dispatcher: dispatcher, list: list, items: working}
}

// BeginDrag starts tracking a dragged payload.
func (s *Session) BeginDrag(p Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Kind == KindReorder && p.ListKind != s.list {
		return apperr.Validation("reorder drag must originate from this list")
	}
	s.dragging = &p
	return nil
}

// IsDragging reports whether a drag is in progress. Purely visual state,
// never a commit signal.
func (s *Session) IsDragging() bool { return s.dragging != nil }

// IsOver reports whether the dragged item hovers a drop zone.
func (s *Session) IsOver() bool { return s.isOver }

// SetOver records hover state for visual feedback.
func (s *Session) SetOver(over bool) { s.isOver = over }

// Items returns the current working order.
func (s *Session) Items() []uuid.UUID {
	out := make([]uuid.UUID, len(s.items))
	copy(out, s.items)
	return out
}

// HoverOver swaps the dragged item with the hovered position for live
// reordering feedback. Local only; the persisted order is written on
// drag-end, not per hover, to bound write volume.
func (s *Session) HoverOver(index int) {
	if s.dragging == nil || s.dragging.Kind != KindReorder {
		return
	}
	from := s.dragging.Index
	if index == from || index < 0 || index >= len(s.items) || from < 0 || from >= len(s.items) {
		return
	}
	s.items[from], s.items[index] = s.items[index], s.items[from]
	s.dragging.Index = index
	s.dirty = true
}

// DropOnCard handles a drop onto a status card. The dragged payload's kind
// decides the action: a reorder payload of the same list moves to the card's
// position, a link payload creates a call-status mapping, a move payload
// assigns the lead to the card's status.
func (s *Session) DropOnCard(ctx context.Context, targetKind ListKind, targetIndex int, targetID uuid.UUID) error {
	if s.dragging == nil {
		return apperr.Validation("no drag in progress")
	}

	switch s.dragging.Kind {
	case KindReorder:
		if s.dragging.ListKind != targetKind {
			// A reorder drag over the other list is not a valid target.
			return nil
		}
		return s.dropAtIndex(targetIndex)
	case KindLink:
		callID, leadID, err := resolveLink(s.dragging.SourceKind, s.dragging.SourceID, targetKind, targetID)
		if err != nil {
			return err
		}
		return s.dispatcher.LinkStatuses(ctx, callID, leadID)
	case KindMove:
		if targetKind != ListLeadStatuses {
			return apperr.Validation("leads can only be dropped on lead status columns")
		}
		return s.dispatcher.MoveLead(ctx, s.dragging.LeadID, targetID)
	}
	return nil
}

// DropOnColumn handles a lead card dropped on a column body.
func (s *Session) DropOnColumn(ctx context.Context, statusID uuid.UUID) error {
	if s.dragging == nil || s.dragging.Kind != KindMove {
		return apperr.Validation("only lead cards can be dropped on a column")
	}
	return s.dispatcher.MoveLead(ctx, s.dragging.LeadID, statusID)
}

// EndDrag finishes the session. A dirty reorder commits the working order in
// a single save; everything else just clears the visual state.
func (s *Session) EndDrag(ctx context.Context) error {
	defer s.reset()
	if s.dirty {
		return s.dispatcher.SaveOrder(ctx, s.list, s.items)
	}
	return nil
}

// Cancel abandons the session without committing anything. The working order
// keeps any hover swaps, so the caller should re-render from its own copy.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) dropAtIndex(index int) error {
	from := s.dragging.Index
	if from < 0 || from >= len(s.items) {
		return apperr.Validation("drag index out of range")
	}
	if index < 0 || index >= len(s.items) {
		return apperr.Validation("drop index out of range")
	}
	s.items = moveItem(s.items, from, index)
	s.dragging.Index = index
	s.dirty = true
	return nil
}

func (s *Session) reset() {
	s.dragging = nil
	s.isOver = false
	s.dirty = false
}

// moveItem removes the item at from and reinserts it at to, shifting the
// items in between.
func moveItem(items []uuid.UUID, from, to int) []uuid.UUID {
	if from == to {
		return items
	}
	item := items[from]
	items = append(items[:from], items[from+1:]...)

	out := make([]uuid.UUID, 0, len(items)+1)
	out = append(out, items[:to]...)
	out = append(out, item)
	out = append(out, items[to:]...)
	return out
}

func resolveLink(sourceKind ListKind, sourceID uuid.UUID, targetKind ListKind, targetID uuid.UUID) (callID, leadID uuid.UUID, err error) {
	switch {
	case sourceKind == ListCallStatuses && targetKind == ListLeadStatuses:
		return sourceID, targetID, nil
	case sourceKind == ListLeadStatuses && targetKind == ListCallStatuses:
		return targetID, sourceID, nil
	default:
		return uuid.Nil, uuid.Nil, apperr.Validation("link drop needs one call status and one lead status")
	}
}
