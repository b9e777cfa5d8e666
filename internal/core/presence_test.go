package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventlane/chatgate/internal/auth"
)

func presenceClient(userID string) *Client {
	return NewClient(auth.Principal{ID: userID, Role: auth.RoleUser, Kind: auth.KindUser})
}

func TestTrackerTransitions(t *testing.T) {
	req := require.New(t)
	tr := NewTracker()

	tabA := presenceClient("u1")
	tabB := presenceClient("u1")

	req.True(tr.Register(tabA), "first connection is the online transition")
	req.False(tr.Register(tabB), "second connection is not a transition")
	req.True(tr.IsOnline("u1"))

	req.False(tr.Deregister(tabA), "one connection remains")
	req.True(tr.IsOnline("u1"))

	req.True(tr.Deregister(tabB), "last connection is the offline transition")
	req.False(tr.IsOnline("u1"))
}

func TestTrackerDeregisterIdempotent(t *testing.T) {
	req := require.New(t)
	tr := NewTracker()

	c := presenceClient("u1")
	tr.Register(c)

	req.True(tr.Deregister(c))
	req.False(tr.Deregister(c), "second deregister must not report a transition")
	req.False(tr.Deregister(presenceClient("u2")), "unknown client is a no-op")
}

func TestTrackerQueries(t *testing.T) {
	req := require.New(t)
	tr := NewTracker()

	tr.Register(presenceClient("u1"))
	tr.Register(presenceClient("u1"))
	tr.Register(presenceClient("u2"))

	req.Equal(2, tr.OnlineCount())
	req.ElementsMatch([]string{"u1", "u2"}, tr.OnlineIdentities())
	req.Len(tr.ClientsOf("u1"), 2)
	req.Empty(tr.ClientsOf("u3"))
}
