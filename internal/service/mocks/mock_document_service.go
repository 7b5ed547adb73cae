package mocks

import (
	"context"
	"encoding/json"

	"docpress/internal/autosave"
	"docpress/internal/model"
	"docpress/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) ListMine(ctx context.Context, ownerID string, in service.ListDocumentsInput) (*service.DocumentListResult, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) GetForEditor(ctx context.Context, ownerID, slug string) (*service.EditorDocument, error) {
	args := m.Called(ctx, ownerID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditorDocument), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, ownerID, id string, in service.UpdateDocumentInput) (*model.Document, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateField(ctx context.Context, ownerID, id string, field autosave.Field, value json.RawMessage) error {
	args := m.Called(ctx, ownerID, id, field, value)
	return args.Error(0)
}

func (m *MockDocumentService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockDocumentService) PublicList(ctx context.Context, q string) ([]service.CategoryGroup, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CategoryGroup), args.Error(1)
}

func (m *MockDocumentService) PublicGet(ctx context.Context, slug string) (*service.PublicDocument, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicDocument), args.Error(1)
}
