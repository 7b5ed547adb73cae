package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docpress/internal/autosave"
	"docpress/internal/cache"
	"docpress/internal/content"
	"docpress/internal/model"
	"docpress/internal/render"
	"docpress/internal/repository"
	"docpress/internal/sanitize"
)

const (
	// UncategorizedLabel groups public documents without a category.
	UncategorizedLabel = "Uncategorized"

	maxTitleLength = 255
	defaultLimit   = 10
	maxLimit       = 100

	cacheKeySidebar = "public:sidebar"
)

func publicDocKey(slug string) string { return "public:doc:" + slug }

// DocumentListResult is the service-level DTO for the owner's dashboard.
type DocumentListResult struct {
	Items  []model.DocumentSummary `json:"data"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// ListDocumentsInput pages and filters the owner's documents by title.
type ListDocumentsInput struct {
	Limit  int
	Offset int
	Search string
}

// EditorDocument is a document as loaded into the editor.
type EditorDocument struct {
	*model.Document
	Content []content.Block   `json:"content"`
	TOC     []content.TocItem `json:"toc"`
}

// UpdateDocumentInput holds the fields a client may change. Nil fields are
// left as they are. Content is either a block list or its serialized string.
// A set UpdatedAt makes the update conditional on the stored value.
type UpdateDocumentInput struct {
	Title     *string         `json:"title"`
	Content   json.RawMessage `json:"content"`
	Category  *string         `json:"category"`
	IsPublic  *bool           `json:"is_public"`
	UpdatedAt *time.Time      `json:"updated_at"`
}

// CategoryGroup is one section of the public sidebar.
type CategoryGroup struct {
	Category  string                  `json:"category"`
	Documents []model.DocumentSummary `json:"documents"`
}

// PublicDocument is a published document prepared for readers.
type PublicDocument struct {
	ID         string                 `json:"id"`
	Slug       string                 `json:"slug"`
	Title      string                 `json:"title"`
	Category   model.Category         `json:"category"`
	Author     string                 `json:"author,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  *time.Time             `json:"updated_at,omitempty"`
	Content    []content.Block        `json:"content"`
	HTML       string                 `json:"html"`
	TOC        []content.TocItem      `json:"toc"`
	Changelogs []model.ChangelogEntry `json:"changelogs"`
}

// PublicIndex answers the public sidebar and mirrors document visibility.
type PublicIndex interface {
	Public(ctx context.Context, q string) ([]model.DocumentSummary, error)
	Sync(ctx context.Context, doc *model.Document)
	Remove(ctx context.Context, id string)
}

// DocumentService defines the use cases for authoring and reading documents.
// Owner scoped methods report documents of other owners as ErrNotFound.
type DocumentService interface {
	// Create inserts an untitled private document with a fresh slug.
	Create(ctx context.Context, ownerID string) (*model.Document, error)

	// ListMine returns the owner's documents, newest first.
	ListMine(ctx context.Context, ownerID string, in ListDocumentsInput) (*DocumentListResult, error)

	// GetForEditor loads an owned document by slug with its parsed body.
	GetForEditor(ctx context.Context, ownerID, slug string) (*EditorDocument, error)

	// Update applies a partial update. A stale UpdatedAt yields ErrConflict.
	Update(ctx context.Context, ownerID, id string, in UpdateDocumentInput) (*model.Document, error)

	// UpdateField persists one autosaved field unconditionally.
	UpdateField(ctx context.Context, ownerID, id string, field autosave.Field, value json.RawMessage) error

	// Delete removes the document and its changelog.
	Delete(ctx context.Context, ownerID, id string) error

	// PublicList groups public documents by category for the sidebar.
	PublicList(ctx context.Context, q string) ([]CategoryGroup, error)

	// PublicGet returns a public document. Private and missing ones are ErrNotFound.
	PublicGet(ctx context.Context, slug string) (*PublicDocument, error)
}

type documentService struct {
	docs       repository.DocumentRepository
	users      repository.UserRepository
	changelogs repository.ChangelogRepository
	index      PublicIndex
	cache      cache.Cache
	sanitizer  *sanitize.Sanitizer
	log        *slog.Logger
	now        func() time.Time
}

// NewDocumentService constructs a new DocumentService. c may be cache.Noop{}.
func NewDocumentService(
	docs repository.DocumentRepository,
	users repository.UserRepository,
	changelogs repository.ChangelogRepository,
	index PublicIndex,
	c cache.Cache,
	log *slog.Logger,
) DocumentService {
	return &documentService{
		docs:       docs,
		users:      users,
		changelogs: changelogs,
		index:      index,
		cache:      c,
		sanitizer:  sanitize.New(),
		log:        log,
		now:        time.Now,
	}
}

func (s *documentService) Create(ctx context.Context, ownerID string) (*model.Document, error) {
	doc, err := s.docs.Create(ctx, &model.Document{
		Slug:     newSlug(),
		Title:    model.DefaultTitle,
		Category: model.DefaultCategory,
		IsPublic: false,
		OwnerID:  ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.InfoContext(ctx, "document_created", "doc_id", doc.ID, "slug", doc.Slug, "user_id", ownerID)
	return doc, nil
}

// newSlug is unique enough for a per-row unique constraint.
func newSlug() string {
	return "untitled-document-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (s *documentService) ListMine(ctx context.Context, ownerID string, in ListDocumentsInput) (*DocumentListResult, error) {
	if in.Limit <= 0 {
		in.Limit = defaultLimit
	}
	if in.Limit > maxLimit {
		in.Limit = maxLimit
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	res, err := s.docs.ListByOwner(ctx, ownerID, repository.DocumentQuery{
		PageQuery: repository.PageQuery{Limit: in.Limit, Offset: in.Offset},
		Search:    strings.TrimSpace(in.Search),
	})
	if err != nil {
		return nil, err
	}
	items := res.Items
	if items == nil {
		items = []model.DocumentSummary{}
	}
	return &DocumentListResult{Items: items, Total: res.Total, Limit: in.Limit, Offset: in.Offset}, nil
}

func (s *documentService) GetForEditor(ctx context.Context, ownerID, slug string) (*EditorDocument, error) {
	doc, err := s.docs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if doc.OwnerID != ownerID {
		return nil, ErrNotFound
	}

	blocks := content.Parse(doc.Content)
	if blocks == nil {
		blocks = []content.Block{}
	}
	return &EditorDocument{Document: doc, Content: blocks, TOC: content.ExtractHeadings(blocks)}, nil
}

func (s *documentService) Update(ctx context.Context, ownerID, id string, in UpdateDocumentInput) (*model.Document, error) {
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	doc, err := s.docs.Update(ctx, id, ownerID, patch, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrStale):
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update document: %w", err)
	}

	s.invalidate(ctx, doc.Slug)
	s.index.Sync(ctx, doc)
	return doc, nil
}

func (s *documentService) UpdateField(ctx context.Context, ownerID, id string, field autosave.Field, value json.RawMessage) error {
	in, err := FieldInput(field, value)
	if err != nil {
		return err
	}
	_, err = s.Update(ctx, ownerID, id, in)
	return err
}

// FieldInput turns one autosaved field value into an update input.
func FieldInput(field autosave.Field, value json.RawMessage) (UpdateDocumentInput, error) {
	var in UpdateDocumentInput
	var err error
	switch field {
	case autosave.FieldContent:
		in.Content = value
	case autosave.FieldTitle:
		err = json.Unmarshal(value, &in.Title)
	case autosave.FieldCategory:
		err = json.Unmarshal(value, &in.Category)
	case autosave.FieldVisibility:
		err = json.Unmarshal(value, &in.IsPublic)
	default:
		return in, fmt.Errorf("%w: %w", ErrValidation, autosave.ErrUnknownField)
	}
	if err != nil {
		return in, fmt.Errorf("%w: %s: %v", ErrValidation, field, err)
	}
	if _, err := buildPatch(in); err != nil {
		return in, err
	}
	return in, nil
}

func buildPatch(in UpdateDocumentInput) (model.DocumentPatch, error) {
	categories := make([]any, len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = string(c)
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Length(0, maxTitleLength)),
		validation.Field(&in.Category, validation.NilOrNotEmpty, validation.In(categories...)),
	)
	if err != nil {
		return model.DocumentPatch{}, validationError(err)
	}

	patch := model.DocumentPatch{
		Title:             in.Title,
		IsPublic:          in.IsPublic,
		ExpectedUpdatedAt: in.UpdatedAt,
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		// a cleared title is saved, and reads back as the default
		title := model.DefaultTitle
		patch.Title = &title
	}
	if in.Category != nil {
		c := model.Category(*in.Category)
		patch.Category = &c
	}
	if len(in.Content) > 0 {
		blocks, err := decodeBody(in.Content)
		if err != nil {
			return model.DocumentPatch{}, validationError(validation.Errors{"content": err})
		}
		body, err := content.Serialize(blocks)
		if err != nil {
			return model.DocumentPatch{}, err
		}
		patch.Content = &body
	}
	return patch, nil
}

// decodeBody accepts a block list or a JSON string holding one.
func decodeBody(raw json.RawMessage) ([]content.Block, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return content.Decode(s)
	}
	return content.Decode(json.RawMessage(trimmed))
}

func (s *documentService) Delete(ctx context.Context, ownerID, id string) error {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if doc.OwnerID != ownerID {
		return ErrNotFound
	}
	if err := s.docs.Delete(ctx, id, ownerID); err != nil {
		return notFound(err)
	}

	s.log.InfoContext(ctx, "document_deleted", "doc_id", id, "user_id", ownerID)
	s.invalidate(ctx, doc.Slug)
	s.index.Remove(ctx, id)
	return nil
}

func (s *documentService) PublicList(ctx context.Context, q string) ([]CategoryGroup, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		var cached []CategoryGroup
		if ok, err := s.cache.Get(ctx, cacheKeySidebar, &cached); err == nil && ok {
			return cached, nil
		}
	}

	items, err := s.index.Public(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list public documents: %w", err)
	}
	groups := groupByCategory(items)

	if q == "" {
		if err := s.cache.Set(ctx, cacheKeySidebar, groups); err != nil {
			s.log.WarnContext(ctx, "cache set failed", "key", cacheKeySidebar, "error", err)
		}
	}
	return groups, nil
}

// groupByCategory keeps the order of items. Uncategorized documents go last.
func groupByCategory(items []model.DocumentSummary) []CategoryGroup {
	groups := make([]CategoryGroup, 0)
	index := make(map[string]int)
	var uncategorized []model.DocumentSummary

	for _, it := range items {
		if it.Category == "" {
			uncategorized = append(uncategorized, it)
			continue
		}
		key := string(it.Category)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, CategoryGroup{Category: key})
		}
		groups[i].Documents = append(groups[i].Documents, it)
	}
	if len(uncategorized) > 0 {
		groups = append(groups, CategoryGroup{Category: UncategorizedLabel, Documents: uncategorized})
	}
	return groups
}

func (s *documentService) PublicGet(ctx context.Context, slug string) (*PublicDocument, error) {
	key := publicDocKey(slug)
	var cached PublicDocument
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		s.log.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	}

	doc, err := s.docs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if !doc.IsPublic {
		return nil, ErrNotFound
	}

	out := &PublicDocument{
		ID:        doc.ID,
		Slug:      doc.Slug,
		Title:     doc.Title,
		Category:  doc.Category,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	author, err := s.users.FindAuthor(ctx, doc.OwnerID)
	switch {
	case err == nil:
		out.Author = author.DisplayName()
	case !errors.Is(err, repository.ErrNotFound):
		s.log.WarnContext(ctx, "author lookup failed", "doc_id", doc.ID, "error", err)
	}

	out.Content = content.Parse(doc.Content)
	if out.Content == nil {
		out.Content = []content.Block{}
	}
	rendered, err := render.Document(out.Content)
	if err != nil {
		s.log.WarnContext(ctx, "render failed, serving empty body", "doc_id", doc.ID, "error", err)
		rendered = render.Result{TOC: content.ExtractHeadings(out.Content)}
	}
	out.HTML, out.TOC = rendered.HTML, rendered.TOC

	entries, err := s.changelogs.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list changelogs: %w", err)
	}
	for i := range entries {
		entries[i].Description = s.sanitizer.Sanitize(entries[i].Description)
	}
	if entries == nil {
		entries = []model.ChangelogEntry{}
	}
	out.Changelogs = entries

	if err := s.cache.Set(ctx, key, out); err != nil {
		s.log.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
	return out, nil
}

// invalidate drops every cached public view a write to slug can change.
func (s *documentService) invalidate(ctx context.Context, slug string) {
	if err := s.cache.Delete(ctx, publicDocKey(slug), cacheKeySidebar); err != nil {
		s.log.WarnContext(ctx, "cache invalidation failed", "slug", slug, "error", err)
	}
}

func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
