package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docpress/internal/service"
)

// formUpload reads the "file" part. A missing part yields an input without
// a body so the service can answer NO_FILE. The returned closer is never nil.
func formUpload(c *fiber.Ctx) (service.UploadInput, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil {
		return service.UploadInput{}, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return service.UploadInput{}, noop, err
	}
	return service.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// UploadAttachment godoc
// @Summary  Upload a changelog attachment (max 2 MiB)
// @Tags     uploads
// @Accept   multipart/form-data
// @Param    file  formData file   true  "attachment"
// @Param    docId formData string false "owning document id"
// @Success  200 {object} service.UploadResult
// @Failure  413 {object} errorPayload
// @Security BearerAuth
// @Router   /api/changelog/upload [post]
func UploadAttachment(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, closeFile, err := formUpload(c)
		defer closeFile()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		in.DocID = c.FormValue("docId")

		res, err := svc.Attachment(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

type imageUploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Max      int64  `json:"max,omitempty"`
}

// UploadImage keeps the editor's {success, url} contract instead of the
// error envelope, the block editor reads it directly.
func UploadImage(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, closeFile, err := formUpload(c)
		defer closeFile()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(imageUploadResponse{Error: "Cannot open uploaded file"})
		}
		in.Folder = c.FormValue("folder")

		res, err := svc.Image(c.UserContext(), in)
		if err != nil {
			return writeImageError(c, err)
		}
		return c.JSON(imageUploadResponse{Success: true, URL: res.URL, Filename: res.StoredName})
	}
}

func writeImageError(c *fiber.Ctx, err error) error {
	var tooLarge *service.FileTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(imageUploadResponse{
			Error: "File too large. Maximum size is 2MB.",
			Size:  tooLarge.Size,
			Max:   tooLarge.Max,
		})
	case errors.Is(err, service.ErrNoFile):
		return c.Status(fiber.StatusBadRequest).JSON(imageUploadResponse{Error: "No file uploaded"})
	case errors.Is(err, service.ErrUnsupportedMedia):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(imageUploadResponse{
			Error: "File type not allowed. Only JPEG, PNG, GIF, WebP, and SVG are allowed.",
		})
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(imageUploadResponse{Error: "Invalid folder"})
	case errors.Is(err, service.ErrStorageNotConfigured):
		return c.Status(fiber.StatusInternalServerError).JSON(imageUploadResponse{Error: "SERVER_MISCONFIGURED"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(imageUploadResponse{Error: "Failed to upload file"})
	}
}
