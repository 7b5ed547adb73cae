package repository

import (
	"context"
	"errors"
	"time"

	"docpress/internal/model"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a compare-and-swap update finds a newer row.
	ErrStale = errors.New("record was modified concurrently")
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	FindByID(ctx context.Context, id string) (*model.Document, error)
	FindBySlug(ctx context.Context, slug string) (*model.Document, error)

	// ListByOwner returns the owner's documents, newest first.
	ListByOwner(ctx context.Context, ownerID string, q DocumentQuery) (*PageResult[model.DocumentSummary], error)

	// ListPublic returns public documents ordered by category, then title.
	ListPublic(ctx context.Context, search string) ([]model.DocumentSummary, error)

	// Update applies the non-nil patch fields to a document the owner holds and
	// stamps updated_at with now. A set ExpectedUpdatedAt that no longer
	// matches yields ErrStale.
	Update(ctx context.Context, id, ownerID string, patch model.DocumentPatch, now time.Time) (*model.Document, error)

	// Delete removes an owned document. Missing rows yield ErrNotFound.
	Delete(ctx context.Context, id, ownerID string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// DocumentQuery filters an owner listing by title.
type DocumentQuery struct {
	PageQuery
	Search string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
