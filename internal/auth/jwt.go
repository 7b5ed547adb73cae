// Package auth verifies bearer tokens issued by the identity provider.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for every token that fails verification.
// The cause is logged, never returned.
var ErrUnauthorized = errors.New("unauthorized")

// AuthenticatedRole is the role claim of signed-in users. Anonymous tokens
// carry "anon" and are rejected.
const AuthenticatedRole = "authenticated"

// Claims are the identity provider's access token claims.
type Claims struct {
	Email        string         `json:"email,omitempty"`
	Role         string         `json:"role,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// FullName reads the display name from user metadata.
func (c *Claims) FullName() string {
	for _, k := range []string{"full_name", "name"} {
		if s, ok := c.UserMetadata[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// JWTVerifier checks signature, expiry, issuer and audience of access tokens.
type JWTVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	log     *slog.Logger
}

// NewJWTVerifier fetches signing keys from jwksURL. Keys are cached and
// refreshed in the background for the lifetime of ctx.
func NewJWTVerifier(ctx context.Context, jwksURL, issuer, audience string, log *slog.Logger) (*JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("jwks client: %w", err)
	}
	log.Info("jwt_verifier_initialized", "jwks_url", jwksURL)
	return NewJWTVerifierWithKeyfunc(jwks.Keyfunc, issuer, audience, log), nil
}

// NewJWTVerifierWithKeyfunc builds a verifier around an existing key lookup.
func NewJWTVerifierWithKeyfunc(kf jwt.Keyfunc, issuer, audience string, log *slog.Logger) *JWTVerifier {
	opts := []jwt.ParserOption{
		// asymmetric only, guards against algorithm confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &JWTVerifier{keyfunc: kf, parser: jwt.NewParser(opts...), log: log}
}

func (v *JWTVerifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, v.keyfunc)
	if err != nil || !token.Valid {
		v.log.Debug("token rejected", "error", err)
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		v.log.Debug("token missing subject")
		return nil, ErrUnauthorized
	}
	if claims.Role != AuthenticatedRole {
		v.log.Debug("token has unexpected role", "role", claims.Role, "sub", claims.Subject)
		return nil, ErrUnauthorized
	}
	return claims, nil
}
