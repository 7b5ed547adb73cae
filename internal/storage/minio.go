package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docpress/internal/config"
)

// minioStorage talks to any S3-compatible server through minio-go.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client    *minio.Client
	publicURL string
}

// NewMinIO creates the client and makes sure every bucket exists.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, buckets ...string) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		public = cli.EndpointURL().String()
	}
	ms := &minioStorage{client: cli, publicURL: strings.TrimRight(public, "/")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, b := range buckets {
		exists, err := cli.BucketExists(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s: %w", b, err)
		}
		if exists {
			continue
		}
		if err := cli.MakeBucket(ctx, b, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", b, err)
		}
	}

	return ms, nil
}

func (m *minioStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	info, err := m.client.PutObject(ctx, bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		CacheControl: opt.CacheControl,
	})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Bucket: bucket, Key: key, Size: info.Size, ETag: info.ETag}, nil
}

func (m *minioStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", m.publicURL, bucket, key)
}

func (m *minioStorage) Backend() string { return "minio" }
