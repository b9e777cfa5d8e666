package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eventlane/chatgate/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (and if necessary initializes) the SQLite database at dbPath.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup opens the database and runs a setup function after the
// schema is applied. Useful for tests to seed fixture rows.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	st, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if setup != nil {
		if err := setup(st.db); err != nil {
			st.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// GetUserByID retrieves a user by id.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	query := `
		SELECT id, name, role, kind, last_seen_at
		FROM users
		WHERE id = ?
	`
	var (
		u        store.User
		lastSeen sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Role, &u.Kind, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.LastSeenAt = lastSeen.Time
	return &u, nil
}

// TouchLastSeen records a presence transition timestamp.
func (s *SQLiteStore) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET last_seen_at = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, at.UTC(), id); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

// ==== EventStore implementation ====

// GetEventByID retrieves an event by its opaque id.
func (s *SQLiteStore) GetEventByID(ctx context.Context, id string) (*store.Event, error) {
	return s.getEvent(ctx, `id = ?`, id)
}

// GetEventBySlug retrieves an event by its human slug.
func (s *SQLiteStore) GetEventBySlug(ctx context.Context, slug string) (*store.Event, error) {
	return s.getEvent(ctx, `slug = ?`, slug)
}

func (s *SQLiteStore) getEvent(ctx context.Context, where string, arg any) (*store.Event, error) {
	query := `
		SELECT id, slug, name, organizer_id, status, created_at
		FROM events
		WHERE ` + where
	var ev store.Event
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&ev.ID, &ev.Slug, &ev.Name, &ev.OrganizerID, &ev.Status, &ev.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &ev, nil
}

// ==== TicketStore implementation ====

// HasActiveTicket reports whether the user holds an active ticket for the event.
func (s *SQLiteStore) HasActiveTicket(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM tickets
		WHERE event_id = ? AND user_id = ? AND status = ?
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, eventID, userID, store.TicketStatusActive).Scan(&count); err != nil {
		return false, fmt.Errorf("count active tickets: %w", err)
	}
	return count > 0, nil
}

// ==== FriendStore implementation ====

// AreFriends reports whether an accepted friendship exists in either direction.
func (s *SQLiteStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM friendships
		WHERE status = ?
		  AND ((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, store.FriendStatusAccepted, userID, otherID, otherID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count friendships: %w", err)
	}
	return count > 0, nil
}

// IsBlocked reports whether a block exists between the two users in either direction.
func (s *SQLiteStore) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM blocks
		WHERE (blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, userID, otherID, otherID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count blocks: %w", err)
	}
	return count > 0, nil
}

// ListFriendIDs returns ids of all accepted friends of the user.
func (s *SQLiteStore) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT CASE WHEN user_id = ? THEN friend_id ELSE user_id END
		FROM friendships
		WHERE status = ? AND (user_id = ? OR friend_id = ?)
	`
	rows, err := s.db.QueryContext(ctx, query, userID, store.FriendStatusAccepted, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==== MessageStore implementation ====

// CreateEventMessage persists a group-chat message.
func (s *SQLiteStore) CreateEventMessage(ctx context.Context, msg *store.EventMessage) error {
	query := `
		INSERT INTO event_messages (id, event_id, sender_id, sender_kind, body, deleted, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.EventID, msg.SenderID, msg.SenderKind, msg.Body, msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert event message: %w", err)
	}
	return nil
}

// ListEventMessages returns up to limit non-deleted messages, newest first.
func (s *SQLiteStore) ListEventMessages(ctx context.Context, eventID string, limit int) ([]*store.EventMessage, error) {
	query := `
		SELECT id, event_id, sender_id, sender_kind, body, deleted, created_at
		FROM event_messages
		WHERE event_id = ? AND deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("list event messages: %w", err)
	}
	defer rows.Close()

	var msgs []*store.EventMessage
	for rows.Next() {
		var m store.EventMessage
		if err := rows.Scan(&m.ID, &m.EventID, &m.SenderID, &m.SenderKind, &m.Body, &m.Deleted, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

// CreatePrivateMessage persists a direct message.
func (s *SQLiteStore) CreatePrivateMessage(ctx context.Context, msg *store.PrivateMessage) error {
	query := `
		INSERT INTO private_messages (id, sender_id, receiver_id, body, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Body, msg.Status, msg.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert private message: %w", err)
	}
	return nil
}

// ListPrivateMessages returns up to limit messages between the pair, newest
// first, optionally restricted to messages created strictly before the cursor.
func (s *SQLiteStore) ListPrivateMessages(ctx context.Context, userID, otherID string, limit int, before *time.Time) ([]*store.PrivateMessage, error) {
	query := `
		SELECT id, sender_id, receiver_id, body, status, created_at
		FROM private_messages
		WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
	`
	args := []any{userID, otherID, otherID, userID}
	if before != nil {
		query += ` AND created_at < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list private messages: %w", err)
	}
	defer rows.Close()

	var msgs []*store.PrivateMessage
	for rows.Next() {
		var m store.PrivateMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan private message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
