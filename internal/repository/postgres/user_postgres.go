package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docpress/internal/model"
	"docpress/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, external_id, email, full_name, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (external_id) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = COALESCE(EXCLUDED.full_name, users.full_name)
		RETURNING id, external_id, email, COALESCE(full_name, ''), created_at
	`
	var out model.User
	if err := r.db.QueryRowContext(ctx, q, u.ID, u.ExternalID, u.Email, u.FullName, u.CreatedAt).
		Scan(&out.ID, &out.ExternalID, &out.Email, &out.FullName, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserPostgres) FindAuthor(ctx context.Context, externalID string) (*model.Author, error) {
	const q = `SELECT id, COALESCE(full_name, ''), email FROM users WHERE external_id = $1`
	var a model.Author
	if err := r.db.QueryRowContext(ctx, q, externalID).Scan(&a.ID, &a.FullName, &a.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
