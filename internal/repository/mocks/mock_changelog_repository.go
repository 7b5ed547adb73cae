package mocks

import (
	"context"

	"docpress/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockChangelogRepository struct {
	mock.Mock
}

func (m *MockChangelogRepository) Create(ctx context.Context, e *model.ChangelogEntry) (*model.ChangelogEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangelogEntry), args.Error(1)
}

func (m *MockChangelogRepository) FindByID(ctx context.Context, id string) (*model.ChangelogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangelogEntry), args.Error(1)
}

func (m *MockChangelogRepository) ListByDocument(ctx context.Context, docID string) ([]model.ChangelogEntry, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChangelogEntry), args.Error(1)
}

func (m *MockChangelogRepository) Update(ctx context.Context, e *model.ChangelogEntry) (*model.ChangelogEntry, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangelogEntry), args.Error(1)
}
