package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when an update carries a stale updated_at token.
	ErrConflict = errors.New("document was modified since it was loaded")

	ErrNoFile               = errors.New("no file provided")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedMedia     = errors.New("file type not allowed")
	ErrUploadFailed         = errors.New("upload failed")
	ErrStorageNotConfigured = errors.New("storage is not configured")
)

// FileTooLargeError carries the observed and allowed size in bytes.
type FileTooLargeError struct {
	Size int64
	Max  int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds %d", e.Size, e.Max)
}

func (e *FileTooLargeError) Is(target error) bool { return target == ErrFileTooLarge }

// validationError wraps an ozzo error so errors.Is(err, ErrValidation) holds
// and the field messages stay reachable for the response.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
