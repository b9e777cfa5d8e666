package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventlane/chatgate/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		stmts := []string{
			`INSERT INTO users (id, name, role, kind) VALUES
				('u1', 'Mara', 'USER', 'USER'),
				('u2', 'Iris', 'USER', 'USER'),
				('u3', 'Theo', 'USER', 'USER')`,
			`INSERT INTO events (id, slug, name, organizer_id, status) VALUES
				('evt1', 'evt-1', 'Harbor Sessions', 'org1', 'published')`,
			`INSERT INTO tickets (id, event_id, user_id, status) VALUES
				('t1', 'evt1', 'u1', 'active'),
				('t2', 'evt1', 'u2', 'used')`,
			`INSERT INTO friendships (user_id, friend_id, status) VALUES
				('u1', 'u2', 'accepted'),
				('u3', 'u1', 'accepted')`,
			`INSERT INTO blocks (blocker_id, blocked_id) VALUES ('u3', 'u2')`,
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestGetUserByID(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	u, err := st.GetUserByID(ctx, "u1")
	req.NoError(err)
	req.Equal("Mara", u.Name)
	req.Equal("USER", u.Role)

	_, err = st.GetUserByID(ctx, "ghost")
	req.ErrorIs(err, store.ErrNotFound)
}

func TestTouchLastSeen(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	req.NoError(st.TouchLastSeen(ctx, "u1", at))

	u, err := st.GetUserByID(ctx, "u1")
	req.NoError(err)
	req.True(u.LastSeenAt.Equal(at))
}

func TestGetEventByEitherKey(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	byID, err := st.GetEventByID(ctx, "evt1")
	req.NoError(err)
	bySlug, err := st.GetEventBySlug(ctx, "evt-1")
	req.NoError(err)
	req.Equal(byID.ID, bySlug.ID)
	req.Equal("org1", byID.OrganizerID)

	_, err = st.GetEventBySlug(ctx, "nope")
	req.ErrorIs(err, store.ErrNotFound)
}

func TestHasActiveTicket(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	ok, err := st.HasActiveTicket(ctx, "evt1", "u1")
	req.NoError(err)
	req.True(ok)

	// A used ticket does not grant access.
	ok, err = st.HasActiveTicket(ctx, "evt1", "u2")
	req.NoError(err)
	req.False(ok)

	ok, err = st.HasActiveTicket(ctx, "evt1", "u3")
	req.NoError(err)
	req.False(ok)
}

func TestFriendshipQueries(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	// Direction of the stored row does not matter.
	ok, err := st.AreFriends(ctx, "u1", "u2")
	req.NoError(err)
	req.True(ok)
	ok, err = st.AreFriends(ctx, "u2", "u1")
	req.NoError(err)
	req.True(ok)

	ok, err = st.AreFriends(ctx, "u2", "u3")
	req.NoError(err)
	req.False(ok)

	ids, err := st.ListFriendIDs(ctx, "u1")
	req.NoError(err)
	req.ElementsMatch([]string{"u2", "u3"}, ids)
}

func TestBlockQueries(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	ok, err := st.IsBlocked(ctx, "u3", "u2")
	req.NoError(err)
	req.True(ok)
	// Either direction suppresses messaging.
	ok, err = st.IsBlocked(ctx, "u2", "u3")
	req.NoError(err)
	req.True(ok)

	ok, err = st.IsBlocked(ctx, "u1", "u2")
	req.NoError(err)
	req.False(ok)
}

func TestEventMessagesNewestFirstAndDeletedHidden(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		req.NoError(st.CreateEventMessage(ctx, &store.EventMessage{
			ID:         id,
			EventID:    "evt1",
			SenderID:   "u1",
			SenderKind: "USER",
			Body:       id,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	_, err := st.db.Exec(`UPDATE event_messages SET deleted = 1 WHERE id = 'm2'`)
	req.NoError(err)

	msgs, err := st.ListEventMessages(ctx, "evt1", 10)
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("m3", msgs[0].ID)
	req.Equal("m1", msgs[1].ID)

	msgs, err = st.ListEventMessages(ctx, "evt1", 1)
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("m3", msgs[0].ID)
}

func TestPrivateMessagesPairAndCursor(t *testing.T) {
	req := require.New(t)
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	pairs := []struct {
		id, from, to string
		offset       time.Duration
	}{
		{"p1", "u1", "u2", 0},
		{"p2", "u2", "u1", time.Minute},
		{"p3", "u1", "u3", 2 * time.Minute}, // different pair
		{"p4", "u1", "u2", 3 * time.Minute},
	}
	for _, p := range pairs {
		req.NoError(st.CreatePrivateMessage(ctx, &store.PrivateMessage{
			ID:         p.id,
			SenderID:   p.from,
			ReceiverID: p.to,
			Body:       p.id,
			Status:     store.PrivateMessageStatusSent,
			CreatedAt:  base.Add(p.offset),
		}))
	}

	msgs, err := st.ListPrivateMessages(ctx, "u1", "u2", 10, nil)
	req.NoError(err)
	req.Len(msgs, 3)
	req.Equal("p4", msgs[0].ID)
	req.Equal("p1", msgs[2].ID)

	cursor := base.Add(3 * time.Minute)
	msgs, err = st.ListPrivateMessages(ctx, "u1", "u2", 10, &cursor)
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("p2", msgs[0].ID)
}
