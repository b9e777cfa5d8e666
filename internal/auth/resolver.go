package auth

import (
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned when no usable credential accompanies a
// connection attempt, or when the supplied credential fails verification.
var ErrUnauthorized = errors.New("unauthorized")

// TokenVerifier turns a bearer token into a Principal. The production
// implementation delegates to the platform's auth service tokens; tests
// may substitute their own.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// JWTVerifier verifies HS256 tokens issued by the platform auth service.
type JWTVerifier struct {
	cfg *JWTConfig
}

// NewJWTVerifier builds a verifier around the given JWT configuration.
func NewJWTVerifier(cfg *JWTConfig) *JWTVerifier {
	return &JWTVerifier{cfg: cfg}
}

// Verify implements TokenVerifier.
func (v *JWTVerifier) Verify(token string) (Principal, error) {
	claims, err := ValidateToken(v.cfg, token)
	if err != nil {
		return Principal{}, ErrUnauthorized
	}

	p := Principal{
		ID:   claims.Subject,
		Role: Role(claims.Role),
		Kind: Kind(claims.Kind),
	}
	if p.ID == "" || !p.Role.Valid() || !p.Kind.Valid() {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}

// Resolver authenticates connection attempts before any protocol handler
// runs. A connection without a resolvable principal is never admitted.
type Resolver struct {
	verifier TokenVerifier
}

// NewResolver builds a resolver around a token verifier.
func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve extracts the credential from the upgrade request and verifies it.
func (r *Resolver) Resolve(req *http.Request) (Principal, error) {
	token, ok := CredentialFromRequest(req)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return r.verifier.Verify(token)
}

// Verifier exposes the underlying token verifier for other transports.
func (r *Resolver) Verifier() TokenVerifier {
	return r.verifier
}

const subprotocolTokenPrefix = "bearer."

// CredentialFromRequest locates the bearer credential on an upgrade
// request. Sources are checked in priority order: the WebSocket handshake
// payload (a "bearer.<token>" subprotocol entry), the Authorization
// header, then the "token" query parameter.
func CredentialFromRequest(req *http.Request) (string, bool) {
	for _, proto := range HandshakeProtocols(req) {
		if strings.HasPrefix(proto, subprotocolTokenPrefix) {
			token := proto[len(subprotocolTokenPrefix):]
			if token != "" {
				return token, true
			}
		}
	}

	if header := req.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], true
		}
	}

	if token := req.URL.Query().Get("token"); token != "" {
		return token, true
	}

	return "", false
}

// HandshakeProtocols parses the Sec-WebSocket-Protocol header into its
// individual entries.
func HandshakeProtocols(req *http.Request) []string {
	var protocols []string
	for _, header := range req.Header.Values("Sec-WebSocket-Protocol") {
		for _, entry := range strings.Split(header, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				protocols = append(protocols, entry)
			}
		}
	}
	return protocols
}
