package core

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventlane/chatgate/internal/auth"
	"github.com/eventlane/chatgate/internal/authz"
	"github.com/eventlane/chatgate/internal/store"
	"github.com/eventlane/chatgate/internal/store/sqlite"
)

// Fixture world used across hub tests:
//   u1, u2: users with active tickets for evt1, friends with each other
//   u3: user whose evt1 ticket is already used, no friends
//   u4: user, friends with u2, but u4 has blocked u2
//   org1: organizer of evt1; org2: organizer of evt2
//   admin1: admin
func seedFixtures(db *sql.DB) error {
	stmts := []string{
		`INSERT INTO users (id, name, role, kind) VALUES
			('u1', 'Mara', 'USER', 'USER'),
			('u2', 'Iris', 'USER', 'USER'),
			('u3', 'Theo', 'USER', 'USER'),
			('u4', 'Noa', 'USER', 'USER'),
			('org1', 'Stagecraft', 'ORGANIZER', 'ORGANIZER'),
			('org2', 'Nightshift', 'ORGANIZER', 'ORGANIZER'),
			('admin1', 'Root', 'ADMIN', 'USER')`,
		`INSERT INTO events (id, slug, name, organizer_id, status) VALUES
			('evt1', 'evt-1', 'Harbor Sessions', 'org1', 'published'),
			('evt2', 'evt-2', 'Night Shift Live', 'org2', 'published')`,
		`INSERT INTO tickets (id, event_id, user_id, status) VALUES
			('t1', 'evt1', 'u1', 'active'),
			('t2', 'evt1', 'u2', 'active'),
			('t3', 'evt1', 'u3', 'used')`,
		`INSERT INTO friendships (user_id, friend_id, status) VALUES
			('u1', 'u2', 'accepted'),
			('u4', 'u2', 'accepted')`,
		`INSERT INTO blocks (blocker_id, blocked_id) VALUES ('u4', 'u2')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func newTestHub(t *testing.T) (*Hub, store.Store) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", seedFixtures)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	return NewHub(st, authz.New(st), &logger), st
}

func newTestClient(userID string, role auth.Role, kind auth.Kind) *Client {
	return NewClient(auth.Principal{ID: userID, Role: role, Kind: kind})
}

func user(id string) *Client      { return newTestClient(id, auth.RoleUser, auth.KindUser) }
func organizer(id string) *Client { return newTestClient(id, auth.RoleOrganizer, auth.KindOrganizer) }
func admin(id string) *Client     { return newTestClient(id, auth.RoleAdmin, auth.KindUser) }

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// requireNoEvent fails if an event of the given kind shows up. Other
// kinds (for example presence announcements) are drained and ignored.
func requireNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				t.Fatalf("expected no event of kind %v", kind)
			}
		default:
			return
		}
	}
}

func requireDomainError(t *testing.T, err error, code string) *Error {
	t.Helper()

	require.Error(t, err)
	domainErr, ok := err.(*Error)
	require.True(t, ok, "expected *core.Error, got %T", err)
	require.Equal(t, code, domainErr.Code)
	return domainErr
}
