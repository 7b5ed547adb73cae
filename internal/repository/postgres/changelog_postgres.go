package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docpress/internal/model"
	"docpress/internal/repository"
)

// ChangelogPostgres is a PostgreSQL implementation of repository.ChangelogRepository.
type ChangelogPostgres struct {
	db *sql.DB
}

func NewChangelogPostgres(db *sql.DB) *ChangelogPostgres {
	return &ChangelogPostgres{db: db}
}

var _ repository.ChangelogRepository = (*ChangelogPostgres)(nil)

const changelogColumns = `id, doc_id, version, description, file_url, file_name, created_at`

func scanChangelog(s rowScanner) (*model.ChangelogEntry, error) {
	var (
		e        model.ChangelogEntry
		fileURL  sql.NullString
		fileName sql.NullString
	)
	if err := s.Scan(&e.ID, &e.DocumentID, &e.Version, &e.Description, &fileURL, &fileName, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if fileURL.Valid && fileName.Valid {
		e.Attachment = &model.Attachment{URL: fileURL.String, Name: fileName.String}
	}
	return &e, nil
}

// attachmentArgs keeps url and name null together.
func attachmentArgs(a *model.Attachment) (sql.NullString, sql.NullString) {
	if a == nil || a.URL == "" {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: a.URL, Valid: true}, sql.NullString{String: a.Name, Valid: true}
}

func (r *ChangelogPostgres) Create(ctx context.Context, e *model.ChangelogEntry) (*model.ChangelogEntry, error) {
	const q = `
		INSERT INTO doc_changelogs (id, doc_id, version, description, file_url, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + changelogColumns
	url, name := attachmentArgs(e.Attachment)
	return scanChangelog(r.db.QueryRowContext(ctx, q, e.ID, e.DocumentID, e.Version, e.Description, url, name, e.CreatedAt))
}

func (r *ChangelogPostgres) FindByID(ctx context.Context, id string) (*model.ChangelogEntry, error) {
	const q = `SELECT ` + changelogColumns + ` FROM doc_changelogs WHERE id = $1`
	return scanChangelog(r.db.QueryRowContext(ctx, q, id))
}

func (r *ChangelogPostgres) ListByDocument(ctx context.Context, docID string) ([]model.ChangelogEntry, error) {
	const q = `
		SELECT ` + changelogColumns + `
		FROM doc_changelogs
		WHERE doc_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ChangelogEntry, 0)
	for rows.Next() {
		e, err := scanChangelog(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ChangelogPostgres) Update(ctx context.Context, e *model.ChangelogEntry) (*model.ChangelogEntry, error) {
	const q = `
		UPDATE doc_changelogs
		SET version = $1, description = $2, file_url = $3, file_name = $4
		WHERE id = $5
		RETURNING ` + changelogColumns
	url, name := attachmentArgs(e.Attachment)
	return scanChangelog(r.db.QueryRowContext(ctx, q, e.Version, e.Description, url, name, e.ID))
}
