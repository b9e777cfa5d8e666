package sqlite

// schema is applied on open. The wider platform owns these tables; the
// chat core only needs the columns below.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	role         TEXT NOT NULL DEFAULT 'USER',
	kind         TEXT NOT NULL DEFAULT 'USER',
	last_seen_at DATETIME,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
	id           TEXT PRIMARY KEY,
	slug         TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	organizer_id TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'draft',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	event_id   TEXT NOT NULL REFERENCES events(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	status     TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tickets_event_user ON tickets(event_id, user_id);

CREATE TABLE IF NOT EXISTS friendships (
	user_id    TEXT NOT NULL REFERENCES users(id),
	friend_id  TEXT NOT NULL REFERENCES users(id),
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, friend_id)
);

CREATE TABLE IF NOT EXISTS blocks (
	blocker_id TEXT NOT NULL REFERENCES users(id),
	blocked_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (blocker_id, blocked_id)
);

CREATE TABLE IF NOT EXISTS event_messages (
	id          TEXT PRIMARY KEY,
	event_id    TEXT NOT NULL REFERENCES events(id),
	sender_id   TEXT NOT NULL,
	sender_kind TEXT NOT NULL,
	body        TEXT NOT NULL,
	deleted     BOOLEAN NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_messages_event ON event_messages(event_id, created_at);

CREATE TABLE IF NOT EXISTS private_messages (
	id          TEXT PRIMARY KEY,
	sender_id   TEXT NOT NULL,
	receiver_id TEXT NOT NULL,
	body        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'sent',
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_private_messages_pair ON private_messages(sender_id, receiver_id, created_at);
`
