package mocks

import (
	"context"
	"time"

	"docpress/internal/model"
	"docpress/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindBySlug(ctx context.Context, slug string) (*model.Document, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID string, q repository.DocumentQuery) (*repository.PageResult[model.DocumentSummary], error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.DocumentSummary]), args.Error(1)
}

func (m *MockDocumentRepository) ListPublic(ctx context.Context, search string) ([]model.DocumentSummary, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id, ownerID string, patch model.DocumentPatch, now time.Time) (*model.Document, error) {
	args := m.Called(ctx, id, ownerID, patch, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}
