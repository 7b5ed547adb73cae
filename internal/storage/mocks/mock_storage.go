package mocks

import (
	"context"
	"io"

	"docpress/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, string, io.Reader, storage.PutObjectOptions) storage.ObjectInfo); ok {
		return f(ctx, bucket, key, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) PublicURL(bucket, key string) string {
	args := m.Called(bucket, key)
	return args.String(0)
}

func (m *MockStorage) Backend() string {
	return "mock"
}
