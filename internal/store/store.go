package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a platform account as the chat core sees it.
type User struct {
	ID         string
	Name       string
	Role       string
	Kind       string
	LastSeenAt time.Time
}

// EventStatus describes an event's lifecycle stage.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a ticketed event whose chat room this subsystem serves.
type Event struct {
	ID          string
	Slug        string
	Name        string
	OrganizerID string
	Status      EventStatus
	CreatedAt   time.Time
}

// TicketStatus describes a ticket's lifecycle stage.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket grants a user entry to an event, and with it access to the
// event's chat room while the ticket is active.
type Ticket struct {
	ID        string
	EventID   string
	UserID    string
	Status    TicketStatus
	CreatedAt time.Time
}

// FriendStatus describes a friendship record's state.
type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// Friendship links two users. Only accepted friendships matter to the
// chat core.
type Friendship struct {
	UserID    string
	FriendID  string
	Status    FriendStatus
	CreatedAt time.Time
}

// EventMessage is a persisted group-chat message scoped to an event.
type EventMessage struct {
	ID         string
	EventID    string
	SenderID   string
	SenderKind string
	Body       string
	CreatedAt  time.Time
	Deleted    bool
}

// PrivateMessage is a persisted direct message between two users.
type PrivateMessage struct {
	ID         string
	SenderID   string
	ReceiverID string
	Body       string
	Status     string
	CreatedAt  time.Time
}

// PrivateMessageStatusSent is the initial status of a private message.
const PrivateMessageStatusSent = "sent"

// UserStore handles user reads and presence timestamps.
type UserStore interface {
	// GetUserByID retrieves a user, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// TouchLastSeen records a presence transition timestamp for the user.
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
}

// EventStore handles event reads.
type EventStore interface {
	// GetEventByID retrieves an event by its opaque id, or ErrNotFound.
	GetEventByID(ctx context.Context, id string) (*Event, error)

	// GetEventBySlug retrieves an event by its human slug, or ErrNotFound.
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
}

// TicketStore answers ticket-ownership questions.
type TicketStore interface {
	// HasActiveTicket reports whether the user holds an active ticket for
	// the event.
	HasActiveTicket(ctx context.Context, eventID, userID string) (bool, error)
}

// FriendStore answers friendship and block questions.
type FriendStore interface {
	// AreFriends reports whether an accepted friendship exists between the
	// two users, in either direction.
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)

	// IsBlocked reports whether a block record exists between the two
	// users, in either direction.
	IsBlocked(ctx context.Context, userID, otherID string) (bool, error)

	// ListFriendIDs returns the ids of all users with an accepted
	// friendship with the given user.
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
}

// MessageStore persists and lists chat messages.
type MessageStore interface {
	// CreateEventMessage persists a group-chat message.
	CreateEventMessage(ctx context.Context, msg *EventMessage) error

	// ListEventMessages returns up to limit non-deleted messages for the
	// event, newest first.
	ListEventMessages(ctx context.Context, eventID string, limit int) ([]*EventMessage, error)

	// CreatePrivateMessage persists a direct message.
	CreatePrivateMessage(ctx context.Context, msg *PrivateMessage) error

	// ListPrivateMessages returns up to limit messages exchanged between
	// the two users, newest first, optionally restricted to messages
	// created strictly before the cursor.
	ListPrivateMessages(ctx context.Context, userID, otherID string, limit int, before *time.Time) ([]*PrivateMessage, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	EventStore
	TicketStore
	FriendStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
