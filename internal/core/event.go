package core

import "github.com/eventlane/chatgate/internal/store"

// EventKind is a notification the core pushes to clients.
type EventKind int

const (
	// EventJoined confirms to the caller that it entered an event room.
	EventJoined EventKind = iota
	// EventRoomMessage carries a group-chat message to an event room.
	EventRoomMessage
	// EventPrivateMessage carries a direct message to both user channels.
	EventPrivateMessage
	// EventTyping is an ephemeral typing indicator.
	EventTyping
	// EventStatusChange announces a friend going online or offline.
	EventStatusChange
	// EventTicketRoomReady tells a user their event room is available.
	EventTicketRoomReady
	// EventPublished announces a newly published event.
	EventPublished
	// EventError mirrors a failed action on the connection.
	EventError
)

// Event describes something that happened, addressed to one or more
// channels. Exactly the fields relevant to its Kind are set.
type Event struct {
	Kind EventKind

	EventID   string
	EventSlug string
	EventName string

	Message *store.EventMessage
	Private *store.PrivateMessage

	FromUserID string
	IsTyping   bool

	UserID   string
	IsOnline bool

	Err *Error
}
