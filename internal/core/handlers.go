package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eventlane/chatgate/internal/store"
)

// History limits: requested limits are clamped into [1, maxHistoryLimit],
// zero means defaultHistoryLimit.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Request and result types, one pair per client-initiated action.

type JoinEventRequest struct {
	EventID   string
	EventSlug string
}

type JoinEventResult struct {
	EventID   string
	EventSlug string
}

type LeaveEventRequest struct {
	EventID   string
	EventSlug string
}

type EventHistoryRequest struct {
	EventID   string
	EventSlug string
	Limit     int
}

type SendEventMessageRequest struct {
	EventID   string
	EventSlug string
	Message   string
}

type SendPrivateMessageRequest struct {
	ToUserID string
	Message  string
}

type PrivateHistoryRequest struct {
	WithUserID string
	Limit      int
	Before     *time.Time
}

type TypingRequest struct {
	ToUserID string
	IsTyping bool
}

// resolveEvent loads the event addressed by id or slug, id taking
// precedence when both are present.
func (h *Hub) resolveEvent(ctx context.Context, id, slug string) (*store.Event, error) {
	var (
		ev  *store.Event
		err error
	)
	switch {
	case id != "":
		ev, err = h.store.GetEventByID(ctx, id)
	case slug != "":
		ev, err = h.store.GetEventBySlug(ctx, slug)
	default:
		return nil, BadRequest("eventId or eventSlug is required")
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound("event not found")
	}
	if err != nil {
		h.log.Error().Err(err).Str("event_id", id).Str("event_slug", slug).Msg("resolve event")
		return nil, Internal("internal error")
	}
	return ev, nil
}

// JoinEvent subscribes the caller to an event room after the room-entry
// authorization check. The caller alone receives a joined confirmation.
func (h *Hub) JoinEvent(ctx context.Context, c *Client, req JoinEventRequest) (JoinEventResult, error) {
	ev, err := h.resolveEvent(ctx, req.EventID, req.EventSlug)
	if err != nil {
		return JoinEventResult{}, err
	}

	ok, reason, err := h.authz.CanJoinEvent(ctx, c.Principal, ev)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", ev.ID).Msg("authorize join")
		return JoinEventResult{}, Internal("internal error")
	}
	if !ok {
		return JoinEventResult{}, Forbidden(reason)
	}

	h.directory.Join(c, eventChannelByID(ev.ID), eventChannelBySlug(ev.Slug))
	c.push(&Event{Kind: EventJoined, EventID: ev.ID, EventSlug: ev.Slug})

	return JoinEventResult{EventID: ev.ID, EventSlug: ev.Slug}, nil
}

// LeaveEvent unsubscribes the caller from an event room. Leaving a room
// the caller never joined succeeds silently.
func (h *Hub) LeaveEvent(ctx context.Context, c *Client, req LeaveEventRequest) error {
	if req.EventID == "" && req.EventSlug == "" {
		return BadRequest("eventId or eventSlug is required")
	}

	ev, err := h.resolveEvent(ctx, req.EventID, req.EventSlug)
	if err == nil {
		h.directory.Leave(c, eventChannelByID(ev.ID))
		return nil
	}

	// The event may be gone; release whatever name the caller supplied.
	if req.EventID != "" {
		h.directory.Leave(c, eventChannelByID(req.EventID))
	}
	if req.EventSlug != "" {
		h.directory.Leave(c, eventChannelBySlug(req.EventSlug))
	}
	return nil
}

// EventHistory returns the most recent messages of an event room in
// chronological order.
func (h *Hub) EventHistory(ctx context.Context, c *Client, req EventHistoryRequest) ([]*store.EventMessage, error) {
	ev, err := h.resolveEvent(ctx, req.EventID, req.EventSlug)
	if err != nil {
		return nil, err
	}

	msgs, err := h.store.ListEventMessages(ctx, ev.ID, clampLimit(req.Limit))
	if err != nil {
		h.log.Error().Err(err).Str("event_id", ev.ID).Msg("list event messages")
		return nil, Internal("internal error")
	}
	return lo.Reverse(msgs), nil
}

// SendEventMessage persists a message and broadcasts it to the event room.
// Authorization is re-validated on every send; current membership only
// skips the redundant join.
func (h *Hub) SendEventMessage(ctx context.Context, c *Client, req SendEventMessageRequest) (*store.EventMessage, error) {
	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, BadRequest("message is required")
	}

	ev, err := h.resolveEvent(ctx, req.EventID, req.EventSlug)
	if err != nil {
		return nil, err
	}

	ok, reason, err := h.authz.CanSendToEvent(ctx, c.Principal, ev)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", ev.ID).Msg("authorize send")
		return nil, Internal("internal error")
	}
	if !ok {
		return nil, Forbidden(reason)
	}

	if !h.directory.Contains(c, eventChannelByID(ev.ID)) {
		h.directory.Join(c, eventChannelByID(ev.ID), eventChannelBySlug(ev.Slug))
	}

	msg := &store.EventMessage{
		ID:         uuid.NewString(),
		EventID:    ev.ID,
		SenderID:   c.Principal.ID,
		SenderKind: string(c.Principal.Kind),
		Body:       body,
		CreatedAt:  time.Now(),
	}
	if err := h.store.CreateEventMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("event_id", ev.ID).Msg("persist event message")
		return nil, Internal("internal error")
	}

	h.directory.Broadcast(
		&Event{Kind: EventRoomMessage, EventID: ev.ID, EventSlug: ev.Slug, Message: msg},
		eventChannelByID(ev.ID), eventChannelBySlug(ev.Slug),
	)
	return msg, nil
}

// SendPrivateMessage persists a direct message and delivers it to both the
// sender's and the recipient's user channels.
func (h *Hub) SendPrivateMessage(ctx context.Context, c *Client, req SendPrivateMessageRequest) (*store.PrivateMessage, error) {
	if !h.authz.CanUsePrivateSurface(c.Principal) {
		return nil, Forbidden("private messaging is not available for this account")
	}

	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, BadRequest("message is required")
	}
	if req.ToUserID == c.Principal.ID {
		return nil, BadRequest("cannot message yourself")
	}

	if _, err := h.store.GetUserByID(ctx, req.ToUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("user not found")
		}
		h.log.Error().Err(err).Str("user_id", req.ToUserID).Msg("resolve recipient")
		return nil, Internal("internal error")
	}

	ok, reason, err := h.authz.CanPrivateMessage(ctx, c.Principal.ID, req.ToUserID)
	if err != nil {
		h.log.Error().Err(err).Msg("authorize private message")
		return nil, Internal("internal error")
	}
	if !ok {
		return nil, Forbidden(reason)
	}

	msg := &store.PrivateMessage{
		ID:         uuid.NewString(),
		SenderID:   c.Principal.ID,
		ReceiverID: req.ToUserID,
		Body:       body,
		Status:     store.PrivateMessageStatusSent,
		CreatedAt:  time.Now(),
	}
	if err := h.store.CreatePrivateMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Msg("persist private message")
		return nil, Internal("internal error")
	}

	h.directory.Broadcast(
		&Event{Kind: EventPrivateMessage, Private: msg},
		UserChannel(msg.SenderID), UserChannel(msg.ReceiverID),
	)
	return msg, nil
}

// PrivateHistory returns the messages exchanged with another user in
// chronological order, optionally older than a cursor.
func (h *Hub) PrivateHistory(ctx context.Context, c *Client, req PrivateHistoryRequest) ([]*store.PrivateMessage, error) {
	if !h.authz.CanUsePrivateSurface(c.Principal) {
		return nil, Forbidden("private messaging is not available for this account")
	}

	ok, reason, err := h.authz.CanPrivateMessage(ctx, c.Principal.ID, req.WithUserID)
	if err != nil {
		h.log.Error().Err(err).Msg("authorize private history")
		return nil, Internal("internal error")
	}
	if !ok {
		return nil, Forbidden(reason)
	}

	msgs, err := h.store.ListPrivateMessages(ctx, c.Principal.ID, req.WithUserID, clampLimit(req.Limit), req.Before)
	if err != nil {
		h.log.Error().Err(err).Msg("list private messages")
		return nil, Internal("internal error")
	}
	return lo.Reverse(msgs), nil
}

// Typing forwards an ephemeral typing indicator to the recipient's user
// channel. Nothing is persisted.
func (h *Hub) Typing(ctx context.Context, c *Client, req TypingRequest) error {
	if !h.authz.CanUsePrivateSurface(c.Principal) {
		return Forbidden("private messaging is not available for this account")
	}

	ok, err := h.authz.CanTyping(ctx, c.Principal.ID, req.ToUserID)
	if err != nil {
		h.log.Error().Err(err).Msg("authorize typing")
		return Internal("internal error")
	}
	if !ok {
		return Forbidden("not friends")
	}

	h.directory.Broadcast(
		&Event{Kind: EventTyping, FromUserID: c.Principal.ID, IsTyping: req.IsTyping},
		UserChannel(req.ToUserID),
	)
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}
