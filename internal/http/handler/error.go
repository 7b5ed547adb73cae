package handler

import (
	"errors"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"

	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError translates service sentinel errors into responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	var tooLarge *service.FileTooLargeError
	switch {
	case errors.As(err, &tooLarge):
		return writeErrorDetails(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file too large",
			map[string]any{"size": tooLarge.Size, "max": tooLarge.Max})
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrValidation):
		return writeErrorDetails(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", "document was modified since it was loaded")
	case errors.Is(err, service.ErrNoFile):
		return writeError(c, fiber.StatusBadRequest, "NO_FILE", "no file provided")
	case errors.Is(err, service.ErrUnsupportedMedia):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "file type not allowed")
	case errors.Is(err, service.ErrStorageNotConfigured):
		return writeError(c, fiber.StatusInternalServerError, "SERVER_MISCONFIGURED", "storage is not configured")
	case errors.Is(err, service.ErrUploadFailed):
		slog.ErrorContext(c.UserContext(), "upload failed", "request_id", middleware.RequestIDFrom(c), "error", err)
		return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "upload failed")
	default:
		slog.ErrorContext(c.UserContext(), "request failed", "request_id", middleware.RequestIDFrom(c), "path", c.Path(), "error", err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// validationDetails exposes ozzo field messages, which never hold internals.
func validationDetails(err error) map[string]any {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]any, len(verrs))
	for field, e := range verrs {
		out[field] = e.Error()
	}
	return out
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "missing or invalid bearer token")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
