package handler

import (
	"github.com/gofiber/fiber/v2"

	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

func ListChangelogs(svc service.ChangelogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		entries, err := svc.List(c.UserContext(), middleware.UserID(c), docID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": entries})
	}
}

// CreateChangelog validates and sanitizes the entry before it is stored.
func CreateChangelog(svc service.ChangelogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.ChangelogInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		entry, err := svc.Create(c.UserContext(), middleware.UserID(c), docID, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

func UpdateChangelog(svc service.ChangelogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.ChangelogInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		entry, err := svc.Update(c.UserContext(), middleware.UserID(c), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(entry)
	}
}
