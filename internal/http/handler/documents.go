package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

// ListDocuments godoc
// @Summary  List the caller's documents
// @Tags     documents
// @Param    limit  query int    false "page size"   default(10)
// @Param    offset query int    false "page offset" default(0)
// @Param    q      query string false "title search"
// @Success  200 {object} service.DocumentListResult
// @Security BearerAuth
// @Router   /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListMine(c.UserContext(), middleware.UserID(c), service.ListDocumentsInput{
			Limit:  limit,
			Offset: offset,
			Search: c.Query("q"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// CreateDocument godoc
// @Summary  Create an untitled private document
// @Tags     documents
// @Success  201 {object} model.Document
// @Security BearerAuth
// @Router   /api/documents [post]
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Create(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
// @Summary  Load a document into the editor
// @Tags     documents
// @Param    slug path string true "document slug"
// @Success  200 {object} service.EditorDocument
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{slug} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.GetForEditor(c.UserContext(), middleware.UserID(c), c.Params("slug"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocument godoc
// @Summary  Update title, content, category or visibility
// @Tags     documents
// @Param    id   path string                      true "document id"
// @Param    body body service.UpdateDocumentInput true "fields to change"
// @Success  200 {object} model.Document
// @Failure  409 {object} errorPayload
// @Security BearerAuth
// @Router   /api/documents/{id} [patch]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.UpdateDocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		doc, err := svc.Update(c.UserContext(), middleware.UserID(c), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
// @Summary  Delete a document and its changelog
// @Tags     documents
// @Param    id path string true "document id"
// @Success  204
// @Security BearerAuth
// @Router   /api/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
