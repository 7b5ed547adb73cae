package repository

import (
	"context"

	"docpress/internal/model"
)

type UserRepository interface {
	// Upsert inserts the user or refreshes email and name by external id.
	Upsert(ctx context.Context, u *model.User) (*model.User, error)

	// FindAuthor resolves the byline for an external id.
	FindAuthor(ctx context.Context, externalID string) (*model.Author, error)
}
