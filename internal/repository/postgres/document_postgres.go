package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docpress/internal/model"
	"docpress/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, slug, title, content, category, is_public, user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(s rowScanner) (*model.Document, error) {
	var (
		d         model.Document
		content   sql.NullString
		updatedAt sql.NullTime
	)
	if err := s.Scan(
		&d.ID,
		&d.Slug,
		&d.Title,
		&content,
		&d.Category,
		&d.IsPublic,
		&d.OwnerID,
		&d.CreatedAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if content.Valid {
		d.Content = &content.String
	}
	if updatedAt.Valid {
		d.UpdatedAt = &updatedAt.Time
	}
	return &d, nil
}

func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO docs (id, slug, title, content, category, is_public, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Slug,
		doc.Title,
		doc.Content,
		doc.Category,
		doc.IsPublic,
		doc.OwnerID,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM docs WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

func (r *DocumentPostgres) FindBySlug(ctx context.Context, slug string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM docs WHERE slug = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, slug))
}

// ListByOwner uses LIMIT/OFFSET pagination and returns the filtered total.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, dq repository.DocumentQuery) (*repository.PageResult[model.DocumentSummary], error) {
	pattern := likePattern(dq.Search)

	const qCount = `SELECT COUNT(*) FROM docs WHERE user_id = $1 AND title ILIKE $2`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID, pattern).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, slug, title, category, is_public, created_at
		FROM docs
		WHERE user_id = $1 AND title ILIKE $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pattern, dq.Limit, dq.Offset)
	if err != nil {
		return nil, err
	}
	items, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	return &repository.PageResult[model.DocumentSummary]{Items: items, Total: total}, nil
}

func (r *DocumentPostgres) ListPublic(ctx context.Context, search string) ([]model.DocumentSummary, error) {
	const q = `
		SELECT id, slug, title, category, is_public, created_at
		FROM docs
		WHERE is_public AND title ILIKE $1
		ORDER BY category ASC, title ASC
	`
	rows, err := r.db.QueryContext(ctx, q, likePattern(search))
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]model.DocumentSummary, error) {
	defer rows.Close()
	items := make([]model.DocumentSummary, 0)
	for rows.Next() {
		var s model.DocumentSummary
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.Category, &s.IsPublic, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DocumentPostgres) Update(ctx context.Context, id, ownerID string, patch model.DocumentPatch, now time.Time) (*model.Document, error) {
	sets := []string{"updated_at = $1"}
	args := []any{now}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.IsPublic != nil {
		add("is_public", *patch.IsPublic)
	}

	args = append(args, id, ownerID)
	where := fmt.Sprintf("id = $%d AND user_id = $%d", len(args)-1, len(args))
	if patch.ExpectedUpdatedAt != nil {
		args = append(args, *patch.ExpectedUpdatedAt)
		where += fmt.Sprintf(" AND COALESCE(updated_at, created_at) = $%d", len(args))
	}

	q := `UPDATE docs SET ` + strings.Join(sets, ", ") + ` WHERE ` + where + ` RETURNING ` + documentColumns
	doc, err := scanDocument(r.db.QueryRowContext(ctx, q, args...))
	if !errors.Is(err, repository.ErrNotFound) || patch.ExpectedUpdatedAt == nil {
		return doc, err
	}

	// no row matched: either it is gone or the token is stale
	exists, err := r.owned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrStale
	}
	return nil, repository.ErrNotFound
}

func (r *DocumentPostgres) owned(ctx context.Context, id, ownerID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM docs WHERE id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *DocumentPostgres) Delete(ctx context.Context, id, ownerID string) error {
	const q = `DELETE FROM docs WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a contains pattern. Empty matches all.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}
