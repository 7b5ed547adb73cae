package storage

import (
	"context"
	"log/slog"

	"docpress/internal/config"
)

// New picks the backend by which credentials are present: the S3 endpoint
// first, then MinIO, then the storage REST API. With none it returns
// ErrNotConfigured and uploads are answered as misconfigured.
func New(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (Storage, error) {
	var (
		st  Storage
		err error
	)
	switch {
	case cfg.S3.Enabled():
		st, err = NewS3(ctx, cfg.S3, cfg.Supabase.URL)
	case cfg.MinIO.Enabled():
		st, err = NewMinIO(ctx, cfg.MinIO, cfg.Storage.ChangelogBucket, cfg.Storage.ImageBucket)
	case cfg.Supabase.Enabled():
		st = NewSupabase(cfg.Supabase)
	default:
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, err
	}
	log.Info("storage_configured", "backend", st.Backend())
	return st, nil
}
