package mocks

import (
	"context"

	"docpress/internal/model"
	"docpress/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockChangelogService struct {
	mock.Mock
}

func (m *MockChangelogService) List(ctx context.Context, ownerID, docID string) ([]model.ChangelogEntry, error) {
	args := m.Called(ctx, ownerID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ChangelogEntry), args.Error(1)
}

func (m *MockChangelogService) Create(ctx context.Context, ownerID, docID string, in service.ChangelogInput) (*model.ChangelogEntry, error) {
	args := m.Called(ctx, ownerID, docID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangelogEntry), args.Error(1)
}

func (m *MockChangelogService) Update(ctx context.Context, ownerID, id string, in service.ChangelogInput) (*model.ChangelogEntry, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChangelogEntry), args.Error(1)
}
