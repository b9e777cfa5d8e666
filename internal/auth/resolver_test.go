package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testJWTConfig() *JWTConfig {
	return &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
}

func testToken(t *testing.T, cfg *JWTConfig, userID string, role Role, kind Kind) string {
	t.Helper()
	token, err := GenerateToken(cfg, userID, role, kind)
	require.NoError(t, err)
	return token
}

func TestResolveFromQuery(t *testing.T) {
	req := require.New(t)
	cfg := testJWTConfig()
	resolver := NewResolver(NewJWTVerifier(cfg))

	token := testToken(t, cfg, "u1", RoleUser, KindUser)
	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	p, err := resolver.Resolve(r)
	req.NoError(err)
	req.Equal("u1", p.ID)
	req.Equal(RoleUser, p.Role)
	req.Equal(KindUser, p.Kind)
}

func TestResolveFromHeader(t *testing.T) {
	req := require.New(t)
	cfg := testJWTConfig()
	resolver := NewResolver(NewJWTVerifier(cfg))

	token := testToken(t, cfg, "org1", RoleOrganizer, KindOrganizer)
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	p, err := resolver.Resolve(r)
	req.NoError(err)
	req.Equal("org1", p.ID)
	req.Equal(RoleOrganizer, p.Role)
}

func TestResolveSourcePriority(t *testing.T) {
	req := require.New(t)
	cfg := testJWTConfig()
	resolver := NewResolver(NewJWTVerifier(cfg))

	payloadToken := testToken(t, cfg, "payload-user", RoleUser, KindUser)
	headerToken := testToken(t, cfg, "header-user", RoleUser, KindUser)
	queryToken := testToken(t, cfg, "query-user", RoleUser, KindUser)

	// All three sources present: the handshake payload wins.
	r := httptest.NewRequest("GET", "/ws?token="+queryToken, nil)
	r.Header.Set("Sec-WebSocket-Protocol", "bearer."+payloadToken)
	r.Header.Set("Authorization", "Bearer "+headerToken)

	p, err := resolver.Resolve(r)
	req.NoError(err)
	req.Equal("payload-user", p.ID)

	// Without the payload, the header wins over the query parameter.
	r = httptest.NewRequest("GET", "/ws?token="+queryToken, nil)
	r.Header.Set("Authorization", "Bearer "+headerToken)

	p, err = resolver.Resolve(r)
	req.NoError(err)
	req.Equal("header-user", p.ID)
}

func TestResolveRejectsMissingCredential(t *testing.T) {
	resolver := NewResolver(NewJWTVerifier(testJWTConfig()))
	r := httptest.NewRequest("GET", "/ws", nil)

	_, err := resolver.Resolve(r)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsInvalidToken(t *testing.T) {
	resolver := NewResolver(NewJWTVerifier(testJWTConfig()))
	r := httptest.NewRequest("GET", "/ws?token=not-a-token", nil)

	_, err := resolver.Resolve(r)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsForeignIssuer(t *testing.T) {
	req := require.New(t)
	cfg := testJWTConfig()

	foreign := *cfg
	foreign.Issuer = "someone-else"
	token := testToken(t, &foreign, "u1", RoleUser, KindUser)

	resolver := NewResolver(NewJWTVerifier(cfg))
	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	_, err := resolver.Resolve(r)
	req.ErrorIs(err, ErrUnauthorized)
}

func TestResolveRejectsUnknownRole(t *testing.T) {
	req := require.New(t)
	cfg := testJWTConfig()

	token, err := GenerateToken(cfg, "u1", Role("SUPERUSER"), KindUser)
	req.NoError(err)

	resolver := NewResolver(NewJWTVerifier(cfg))
	r := httptest.NewRequest("GET", "/ws?token="+token, nil)

	_, err = resolver.Resolve(r)
	req.ErrorIs(err, ErrUnauthorized)
}

func TestCredentialFromRequestParsesProtocolList(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "chat, bearer.abc123")

	token, ok := CredentialFromRequest(r)
	req.True(ok)
	req.Equal("abc123", token)
}
