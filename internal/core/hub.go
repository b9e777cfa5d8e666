package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventlane/chatgate/internal/authz"
	"github.com/eventlane/chatgate/internal/store"
)

// Channel name derivation. An event room is addressable both by the
// event's opaque id and by its human slug; the id-derived name is the
// canonical one.
func eventChannelByID(id string) string     { return "event:id:" + id }
func eventChannelBySlug(slug string) string { return "event:slug:" + slug }

// UserChannel is the per-user channel used for private delivery and
// out-of-band notifications.
func UserChannel(userID string) string { return "user:" + userID }

const sideEffectTimeout = 5 * time.Second

// Hub owns the in-memory chat state: the room directory and the presence
// tracker. All access goes through its methods; it is constructed once at
// process start and carries no ambient globals.
type Hub struct {
	directory *Directory
	presence  *Tracker
	store     store.Store
	authz     *authz.Engine
	log       *zerolog.Logger
}

// NewHub wires the chat core together.
func NewHub(st store.Store, engine *authz.Engine, logger *zerolog.Logger) *Hub {
	return &Hub{
		directory: NewDirectory(),
		presence:  NewTracker(),
		store:     st,
		authz:     engine,
		log:       logger,
	}
}

// Attach runs the connection-open path: the client joins its own user
// channel and registers with the presence tracker. On the identity's
// offline-to-online transition the last-seen timestamp is persisted and
// accepted friends are notified, both fire-and-forget.
func (h *Hub) Attach(c *Client) {
	h.directory.Join(c, UserChannel(c.Principal.ID))
	if first := h.presence.Register(c); first {
		go h.announcePresence(c.Principal.ID, true)
	}
}

// Detach runs the connection-close path: all channel memberships are
// released and the client deregisters from the presence tracker. Safe to
// call more than once and safe against handlers finishing afterward.
func (h *Hub) Detach(c *Client) {
	h.directory.LeaveAll(c)
	if last := h.presence.Deregister(c); last {
		go h.announcePresence(c.Principal.ID, false)
	}
}

// announcePresence persists the last-seen timestamp and pushes a
// status-change event to each accepted friend's user channel. Failures
// are logged and swallowed; presence transitions never block on storage.
func (h *Hub) announcePresence(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := h.store.TouchLastSeen(ctx, userID, time.Now()); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("update last seen")
	}

	friendIDs, err := h.store.ListFriendIDs(ctx, userID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("list friends for status change")
		return
	}

	ev := &Event{Kind: EventStatusChange, UserID: userID, IsOnline: online}
	for _, friendID := range friendIDs {
		h.directory.Broadcast(ev, UserChannel(friendID))
	}
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

// OnlineCount returns the number of users currently online.
func (h *Hub) OnlineCount() int {
	return h.presence.OnlineCount()
}

// OnlineIdentities returns the ids of all users currently online.
func (h *Hub) OnlineIdentities() []string {
	return h.presence.OnlineIdentities()
}

// JoinUserToEventRoom subscribes every live connection of the user to the
// event's room and tells the user their room is ready. Called by the
// ticketing side of the platform after a purchase completes.
func (h *Hub) JoinUserToEventRoom(ctx context.Context, userID, eventID string) error {
	ev, err := h.store.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("event not found")
		}
		return err
	}

	for _, c := range h.presence.ClientsOf(userID) {
		h.directory.Join(c, eventChannelByID(ev.ID), eventChannelBySlug(ev.Slug))
	}
	h.directory.Broadcast(&Event{Kind: EventTicketRoomReady, EventID: ev.ID}, UserChannel(userID))
	return nil
}

// NotifyEventCreated tells the organizer that the chat room for their new
// event has been provisioned.
func (h *Hub) NotifyEventCreated(ctx context.Context, eventID string) error {
	ev, err := h.store.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("event not found")
		}
		return err
	}
	h.directory.Broadcast(&Event{Kind: EventTicketRoomReady, EventID: ev.ID}, UserChannel(ev.OrganizerID))
	return nil
}

// NotifyEventPublished announces a newly published event to every online
// user's channel.
func (h *Hub) NotifyEventPublished(ctx context.Context, eventID string) error {
	ev, err := h.store.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("event not found")
		}
		return err
	}

	announcement := &Event{
		Kind:      EventPublished,
		EventID:   ev.ID,
		EventSlug: ev.Slug,
		EventName: ev.Name,
	}
	for _, userID := range h.presence.OnlineIdentities() {
		h.directory.Broadcast(announcement, UserChannel(userID))
	}
	return nil
}
