package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

type openSessionRequest struct {
	Slug string `json:"slug"`
}

type editSessionRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// OpenSession starts debounced autosave for one editor.
func OpenSession(sessions *service.EditorSessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req openSessionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		info, err := sessions.Open(middleware.UserID(c), req.Slug)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(info)
	}
}

// EditSession buffers a field value. The response does not wait for the flush.
func EditSession(sessions *service.EditorSessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req editSessionRequest
		if err := c.BodyParser(&req); err != nil || len(req.Value) == 0 {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		info, err := sessions.Edit(middleware.UserID(c), c.Params("sid"), req.Field, req.Value)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(info)
	}
}

func GetSession(sessions *service.EditorSessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := sessions.Get(middleware.UserID(c), c.Params("sid"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(info)
	}
}

// CloseSession cancels pending flushes, like an editor unmount.
func CloseSession(sessions *service.EditorSessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sessions.Close(middleware.UserID(c), c.Params("sid")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
