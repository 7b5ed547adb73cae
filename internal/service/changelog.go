package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docpress/internal/cache"
	"docpress/internal/model"
	"docpress/internal/repository"
	"docpress/internal/sanitize"
)

const maxVersionLength = 64

var httpURL = regexp.MustCompile(`(?i)^https?://`)

// ChangelogInput is the form of a changelog entry. On update a nil
// Attachment keeps the current one unless RemoveAttachment is set.
type ChangelogInput struct {
	Version          string            `json:"version"`
	Description      string            `json:"description"`
	Attachment       *model.Attachment `json:"attachment,omitempty"`
	RemoveAttachment bool              `json:"remove_attachment,omitempty"`
}

// ChangelogService manages the versioned notes of a document.
type ChangelogService interface {
	List(ctx context.Context, ownerID, docID string) ([]model.ChangelogEntry, error)
	Create(ctx context.Context, ownerID, docID string, in ChangelogInput) (*model.ChangelogEntry, error)
	Update(ctx context.Context, ownerID, id string, in ChangelogInput) (*model.ChangelogEntry, error)
}

type changelogService struct {
	entries   repository.ChangelogRepository
	docs      repository.DocumentRepository
	cache     cache.Cache
	sanitizer *sanitize.Sanitizer
	log       *slog.Logger
}

func NewChangelogService(entries repository.ChangelogRepository, docs repository.DocumentRepository, c cache.Cache, log *slog.Logger) ChangelogService {
	return &changelogService{
		entries:   entries,
		docs:      docs,
		cache:     c,
		sanitizer: sanitize.New(),
		log:       log,
	}
}

func (s *changelogService) List(ctx context.Context, ownerID, docID string) ([]model.ChangelogEntry, error) {
	if _, err := s.ownedDocument(ctx, ownerID, docID); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.ChangelogEntry{}
	}
	return entries, nil
}

func (s *changelogService) Create(ctx context.Context, ownerID, docID string, in ChangelogInput) (*model.ChangelogEntry, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	doc, err := s.ownedDocument(ctx, ownerID, docID)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.Create(ctx, &model.ChangelogEntry{
		DocumentID:  docID,
		Version:     in.Version,
		Description: s.sanitizer.Sanitize(in.Description),
		Attachment:  in.Attachment,
	})
	if err != nil {
		return nil, fmt.Errorf("create changelog: %w", err)
	}
	s.invalidate(ctx, doc.Slug)
	return entry, nil
}

func (s *changelogService) Update(ctx context.Context, ownerID, id string, in ChangelogInput) (*model.ChangelogEntry, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	doc, err := s.ownedDocument(ctx, ownerID, entry.DocumentID)
	if err != nil {
		return nil, err
	}

	entry.Version = in.Version
	entry.Description = s.sanitizer.Sanitize(in.Description)
	switch {
	case in.RemoveAttachment:
		entry.Attachment = nil
	case in.Attachment != nil:
		entry.Attachment = in.Attachment
	}

	updated, err := s.entries.Update(ctx, entry)
	if err != nil {
		return nil, notFound(err)
	}
	s.invalidate(ctx, doc.Slug)
	return updated, nil
}

// validate trims the input and rejects it before anything is persisted.
func (s *changelogService) validate(in *ChangelogInput) error {
	in.Version = strings.TrimSpace(in.Version)
	err := validation.ValidateStruct(in,
		validation.Field(&in.Version, validation.Required.Error("version is required"), validation.Length(1, maxVersionLength)),
		validation.Field(&in.Description, validation.By(s.hasText)),
		validation.Field(&in.Attachment, validation.By(validAttachment)),
	)
	return validationError(err)
}

// hasText rejects descriptions that are empty once markup is stripped.
func (s *changelogService) hasText(v any) error {
	html, _ := v.(string)
	if strings.TrimSpace(s.sanitizer.PlainText(html)) == "" {
		return errors.New("description is required")
	}
	return nil
}

func validAttachment(v any) error {
	a, _ := v.(*model.Attachment)
	if a == nil {
		return nil
	}
	return validation.ValidateStruct(a,
		validation.Field(&a.URL, validation.Required, validation.Match(httpURL)),
		validation.Field(&a.Name, validation.Required),
	)
}

func (s *changelogService) ownedDocument(ctx context.Context, ownerID, docID string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *changelogService) invalidate(ctx context.Context, slug string) {
	if err := s.cache.Delete(ctx, publicDocKey(slug)); err != nil {
		s.log.WarnContext(ctx, "cache invalidation failed", "slug", slug, "error", err)
	}
}
