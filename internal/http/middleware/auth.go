package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docpress/internal/auth"
)

const (
	// UserIDLocalKey holds the verified token subject.
	UserIDLocalKey = "user_id"
	// ClaimsLocalKey holds the verified *auth.Claims.
	ClaimsLocalKey = "claims"
)

// RequireAuth rejects requests without a valid bearer token with 401.
// The error is rendered by the global error handler.
func RequireAuth(v auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.ErrUnauthorized
		}
		claims, err := v.Verify(token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(UserIDLocalKey, claims.Subject)
		c.Locals(ClaimsLocalKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the authenticated subject, or "".
func UserID(c *fiber.Ctx) string {
	if s, ok := c.Locals(UserIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// ClaimsFrom returns the verified claims, or nil.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	if cl, ok := c.Locals(ClaimsLocalKey).(*auth.Claims); ok {
		return cl
	}
	return nil
}
