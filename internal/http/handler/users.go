package handler

import (
	"github.com/gofiber/fiber/v2"

	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

// SyncUser records the token's identity for author bylines.
func SyncUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			return fiber.ErrUnauthorized
		}
		u, err := svc.Sync(c.UserContext(), service.SyncUserInput{
			ExternalID: claims.Subject,
			Email:      claims.Email,
			FullName:   claims.FullName(),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}
