package http

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventlane/chatgate/internal/auth"
	"github.com/eventlane/chatgate/internal/authz"
	"github.com/eventlane/chatgate/internal/config"
	"github.com/eventlane/chatgate/internal/core"
	"github.com/eventlane/chatgate/internal/store/sqlite"
)

func seedFixtures(db *sql.DB) error {
	stmts := []string{
		`INSERT INTO users (id, name, role, kind) VALUES
			('u1', 'Mara', 'USER', 'USER'),
			('u2', 'Iris', 'USER', 'USER'),
			('u3', 'Theo', 'USER', 'USER'),
			('org1', 'Stagecraft', 'ORGANIZER', 'ORGANIZER'),
			('admin1', 'Root', 'ADMIN', 'USER')`,
		`INSERT INTO events (id, slug, name, organizer_id, status) VALUES
			('evt1', 'evt-1', 'Harbor Sessions', 'org1', 'published')`,
		`INSERT INTO tickets (id, event_id, user_id, status) VALUES
			('t1', 'evt1', 'u1', 'active'),
			('t2', 'evt1', 'u2', 'active'),
			('t3', 'evt1', 'u3', 'used')`,
		`INSERT INTO friendships (user_id, friend_id, status) VALUES
			('u1', 'u2', 'accepted')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func testJWTConfig() *auth.JWTConfig {
	return &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
}

func startTestServer(t *testing.T) (*httptest.Server, *auth.JWTConfig) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", seedFixtures)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	jwtConfig := testJWTConfig()
	resolver := auth.NewResolver(auth.NewJWTVerifier(jwtConfig))
	hub := core.NewHub(st, authz.New(st), &logger)

	server := NewServer(hub, resolver, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, jwtConfig
}

func userToken(t *testing.T, cfg *auth.JWTConfig, userID string, role auth.Role, kind auth.Kind) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg, userID, role, kind)
	require.NoError(t, err)
	return token
}

func wsURL(ts *httptest.Server, token string) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=" + token
}

// rawOutbound mirrors proto.Outbound with the data left raw for
// per-payload decoding.
type rawOutbound struct {
	Type  string          `json:"type"`
	ID    int64           `json:"id,omitempty"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
