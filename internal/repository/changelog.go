package repository

import (
	"context"

	"docpress/internal/model"
)

// ChangelogRepository persists changelog entries. Entries are never deleted
// individually; they go away with their document.
type ChangelogRepository interface {
	Create(ctx context.Context, entry *model.ChangelogEntry) (*model.ChangelogEntry, error)
	FindByID(ctx context.Context, id string) (*model.ChangelogEntry, error)

	// ListByDocument returns a document's entries, newest first.
	ListByDocument(ctx context.Context, docID string) ([]model.ChangelogEntry, error)

	// Update overwrites version, description and attachment of an entry.
	Update(ctx context.Context, entry *model.ChangelogEntry) (*model.ChangelogEntry, error)
}
