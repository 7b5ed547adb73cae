package handler

import (
	"github.com/gofiber/fiber/v2"

	"docpress/internal/service"
)

// PublicDocuments godoc
// @Summary  Public documents grouped by category
// @Tags     public
// @Param    q query string false "search"
// @Success  200 {object} map[string][]service.CategoryGroup
// @Router   /public/docs [get]
func PublicDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := svc.PublicList(c.UserContext(), c.Query("q"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": groups})
	}
}

// PublicDocument godoc
// @Summary  Read a public document
// @Tags     public
// @Param    slug path string true "document slug"
// @Success  200 {object} service.PublicDocument
// @Failure  404 {object} errorPayload
// @Router   /public/docs/{slug} [get]
func PublicDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.PublicGet(c.UserContext(), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=60")
		return c.JSON(doc)
	}
}
