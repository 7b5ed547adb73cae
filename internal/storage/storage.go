// Package storage uploads objects to a public bucket and resolves their URLs.
// Implementations stream from the reader and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned by New when no backend has credentials.
var ErrNotConfigured = errors.New("no storage backend configured")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, -1 otherwise.
type PutObjectOptions struct {
	Size         int64
	ContentType  string
	CacheControl string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// Storage is implemented by every backend strategy. Callers cannot tell them apart.
type Storage interface {
	// Put uploads an object under bucket/key.
	Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// PublicURL returns the unauthenticated URL of an object, or "" when the
	// backend has no public base configured.
	PublicURL(bucket, key string) string
	// Backend names the strategy for logs.
	Backend() string
}

// DefaultCacheControl is sent with every upload.
const DefaultCacheControl = "public, max-age=3600"
