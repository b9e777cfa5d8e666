package proto

import "encoding/json"

// Inbound is the envelope for client-initiated actions. The optional id
// correlates the acknowledgement the server sends back.
type Inbound struct {
	ID   int64           `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client-initiated action types.
const (
	TypeJoinEvent          = "join-event"
	TypeLeaveEvent         = "leave-event"
	TypeEventHistory       = "event-history"
	TypeSendEventMessage   = "send-event-message"
	TypeSendPrivateMessage = "send-private-message"
	TypePrivateHistory     = "private-history"
	TypeTypingIndicator    = "typing-indicator"
)

// Outbound envelope types.
const (
	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Server push event names.
const (
	EventJoined          = "joined"
	EventEventMessage    = "event-message"
	EventPrivateMessage  = "private-message"
	EventTyping          = "typing"
	EventStatusChange    = "user:status-change"
	EventTicketRoomReady = "ticket-room-ready"
	EventPublished       = "event-published"
)

// JoinEventData addresses an event by either of its two names.
type JoinEventData struct {
	EventID   string `json:"eventId,omitempty" validate:"required_without=EventSlug"`
	EventSlug string `json:"eventSlug,omitempty" validate:"required_without=EventID"`
}

// EventHistoryData requests recent messages of an event room.
type EventHistoryData struct {
	EventID   string `json:"eventId,omitempty" validate:"required_without=EventSlug"`
	EventSlug string `json:"eventSlug,omitempty" validate:"required_without=EventID"`
	Limit     int    `json:"limit,omitempty" validate:"omitempty,min=0"`
}

// SendEventMessageData posts a message to an event room.
type SendEventMessageData struct {
	EventID   string `json:"eventId,omitempty" validate:"required_without=EventSlug"`
	EventSlug string `json:"eventSlug,omitempty" validate:"required_without=EventID"`
	Message   string `json:"message" validate:"required"`
}

// SendPrivateMessageData posts a direct message to another user.
type SendPrivateMessageData struct {
	ToUserID string `json:"toUserId" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

// PrivateHistoryData requests the message history with another user.
// Before is a unix-millisecond cursor; zero means no cursor.
type PrivateHistoryData struct {
	WithUserID string `json:"withUserId" validate:"required"`
	Limit      int    `json:"limit,omitempty" validate:"omitempty,min=0"`
	Before     int64  `json:"before,omitempty" validate:"omitempty,min=0"`
}

// TypingData forwards a typing indicator to another user.
type TypingData struct {
	ToUserID string `json:"toUserId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

// Outbound is the envelope for everything the server sends. Acks echo the
// inbound id; push events carry an event name instead.
type Outbound struct {
	Type  string `json:"type"`
	ID    int64  `json:"id,omitempty"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JoinAck acknowledges a successful join-event.
type JoinAck struct {
	OK        bool   `json:"ok"`
	EventID   string `json:"eventId"`
	EventSlug string `json:"eventSlug"`
}

// Ack acknowledges an action with no payload.
type Ack struct {
	OK bool `json:"ok"`
}

// DataAck acknowledges an action whose result is a payload.
type DataAck struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

// ErrorAck reports a failed action.
type ErrorAck struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EventMessagePayload is an event-room message on the wire.
type EventMessagePayload struct {
	ID         string `json:"id"`
	EventID    string `json:"eventId"`
	SenderID   string `json:"senderId"`
	SenderType string `json:"senderType"`
	Message    string `json:"message"`
	CreatedAt  int64  `json:"createdAt"`
}

// PrivateMessagePayload is a direct message on the wire.
type PrivateMessagePayload struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"createdAt"`
}

// JoinedEvent confirms room entry to the caller.
type JoinedEvent struct {
	EventID   string `json:"eventId"`
	EventSlug string `json:"eventSlug"`
}

// TypingEvent is the ephemeral typing indicator pushed to the recipient.
type TypingEvent struct {
	FromUserID string `json:"fromUserId"`
	IsTyping   bool   `json:"isTyping"`
}

// StatusChangeEvent announces a friend's presence transition.
type StatusChangeEvent struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// TicketRoomReadyEvent tells a user their event room is available.
type TicketRoomReadyEvent struct {
	EventID string `json:"eventId"`
}

// EventPublishedEvent announces a newly published event.
type EventPublishedEvent struct {
	EventID   string `json:"eventId"`
	EventSlug string `json:"eventSlug"`
	EventName string `json:"eventName"`
}
