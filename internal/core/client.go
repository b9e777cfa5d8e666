package core

import (
	"github.com/google/uuid"

	"github.com/eventlane/chatgate/internal/auth"
)

// Client is one live connection as seen by the chat core. A user with
// several open tabs has several clients sharing one principal identity.
type Client struct {
	ID        string
	Principal auth.Principal
	Events    chan *Event
}

// NewClient constructs a client for an authenticated principal.
func NewClient(p auth.Principal) *Client {
	return &Client{
		ID:        uuid.NewString(),
		Principal: p,
		Events:    make(chan *Event, 32),
	}
}

func (c *Client) push(ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}
