// Package search answers the public sidebar query, through Meilisearch when
// it is configured and healthy, otherwise through the database.
package search

import (
	"context"
	"log/slog"
	"sort"

	"docpress/internal/model"
)

// Index is the full-text backend.
type Index interface {
	Healthy() bool
	SearchPublic(ctx context.Context, q string) ([]model.DocumentSummary, error)
	Upsert(ctx context.Context, doc model.DocumentSummary) error
	Delete(ctx context.Context, id string) error
}

// Fallback lists public documents matching q straight from the database.
type Fallback interface {
	ListPublic(ctx context.Context, search string) ([]model.DocumentSummary, error)
}

type Service struct {
	index    Index
	fallback Fallback
	log      *slog.Logger
}

// NewService wires the facade. index may be nil.
func NewService(index Index, fallback Fallback, log *slog.Logger) *Service {
	return &Service{index: index, fallback: fallback, log: log}
}

// Public returns public documents ordered by category, then title.
// An empty query lists everything and always goes to the database.
func (s *Service) Public(ctx context.Context, q string) ([]model.DocumentSummary, error) {
	if q != "" && s.index != nil && s.index.Healthy() {
		items, err := s.index.SearchPublic(ctx, q)
		if err == nil {
			sortSidebar(items)
			return items, nil
		}
		s.log.Warn("search index failed, falling back to database", "error", err)
	}
	return s.fallback.ListPublic(ctx, q)
}

// Sync mirrors a document into the index; private documents are removed.
// Index errors are logged and never fail the caller.
func (s *Service) Sync(ctx context.Context, doc *model.Document) {
	if s.index == nil || !s.index.Healthy() || doc == nil {
		return
	}
	var err error
	if doc.IsPublic {
		err = s.index.Upsert(ctx, model.DocumentSummary{
			ID:        doc.ID,
			Slug:      doc.Slug,
			Title:     doc.Title,
			Category:  doc.Category,
			IsPublic:  true,
			CreatedAt: doc.CreatedAt,
		})
	} else {
		err = s.index.Delete(ctx, doc.ID)
	}
	if err != nil {
		s.log.Warn("search index sync failed", "doc_id", doc.ID, "error", err)
	}
}

// Remove drops a deleted document from the index.
func (s *Service) Remove(ctx context.Context, id string) {
	if s.index == nil || !s.index.Healthy() {
		return
	}
	if err := s.index.Delete(ctx, id); err != nil {
		s.log.Warn("search index delete failed", "doc_id", id, "error", err)
	}
}

func sortSidebar(items []model.DocumentSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Title < items[j].Title
	})
}
