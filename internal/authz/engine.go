// Package authz holds the pure authorization decisions of the chat core:
// who may enter an event room, who may send to it, and who may exchange
// private messages. Decisions read from storage but never mutate it.
package authz

import (
	"context"
	"fmt"

	"github.com/eventlane/chatgate/internal/auth"
	"github.com/eventlane/chatgate/internal/store"
)

// Denial reasons surfaced to callers so acks can explain a FORBIDDEN.
const (
	ReasonNotFriends = "not friends"
	ReasonBlocked    = "blocked"
	ReasonRole       = "not allowed for this role"
	ReasonNoTicket   = "no active ticket for this event"
	ReasonNotOwner   = "not the organizer of this event"
)

// Engine answers "may principal P perform action A on target T".
type Engine struct {
	store store.Store
}

// New builds an engine over the given store.
func New(st store.Store) *Engine {
	return &Engine{store: st}
}

// CanJoinEvent reports whether the principal may enter the event's room.
// Admins always may; organizers only for their own events; users only with
// an active ticket.
func (e *Engine) CanJoinEvent(ctx context.Context, p auth.Principal, ev *store.Event) (bool, string, error) {
	switch p.Role {
	case auth.RoleAdmin:
		return true, "", nil
	case auth.RoleOrganizer:
		if ev.OrganizerID == p.ID {
			return true, "", nil
		}
		return false, ReasonNotOwner, nil
	case auth.RoleUser:
		ok, err := e.store.HasActiveTicket(ctx, ev.ID, p.ID)
		if err != nil {
			return false, "", fmt.Errorf("check ticket: %w", err)
		}
		if !ok {
			return false, ReasonNoTicket, nil
		}
		return true, "", nil
	}
	return false, ReasonRole, nil
}

// CanSendToEvent is the same predicate as CanJoinEvent; it exists as its
// own name because sends re-validate authorization even for members.
func (e *Engine) CanSendToEvent(ctx context.Context, p auth.Principal, ev *store.Event) (bool, string, error) {
	return e.CanJoinEvent(ctx, p, ev)
}

// CanUsePrivateSurface reports whether the principal's role may touch the
// private-messaging surface at all. Organizer accounts are rejected before
// any friendship check runs.
func (e *Engine) CanUsePrivateSurface(p auth.Principal) bool {
	switch p.Role {
	case auth.RoleUser, auth.RoleAdmin:
		return true
	case auth.RoleOrganizer:
		return false
	}
	return false
}

// CanPrivateMessage reports whether the two users may exchange private
// messages: an accepted friendship must exist and no block may exist in
// either direction.
func (e *Engine) CanPrivateMessage(ctx context.Context, userID, otherID string) (bool, string, error) {
	if userID == otherID {
		return false, ReasonNotFriends, nil
	}

	friends, err := e.store.AreFriends(ctx, userID, otherID)
	if err != nil {
		return false, "", fmt.Errorf("check friendship: %w", err)
	}
	if !friends {
		return false, ReasonNotFriends, nil
	}

	blocked, err := e.store.IsBlocked(ctx, userID, otherID)
	if err != nil {
		return false, "", fmt.Errorf("check block: %w", err)
	}
	if blocked {
		return false, ReasonBlocked, nil
	}

	return true, "", nil
}

// CanTyping gates typing indicators on friendship alone. Blocks are not
// consulted here; the indicator is ephemeral and the narrower guard is
// accepted.
func (e *Engine) CanTyping(ctx context.Context, userID, otherID string) (bool, error) {
	if userID == otherID {
		return false, nil
	}
	return e.store.AreFriends(ctx, userID, otherID)
}
