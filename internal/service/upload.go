package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docpress/internal/config"
	"docpress/internal/storage"
)

const (
	// DefaultMaxUploadBytes is the upload ceiling when none is configured.
	DefaultMaxUploadBytes = 2 * 1024 * 1024

	miscPrefix         = "misc"
	defaultImageFolder = "images"
)

// AllowedImageTypes are the MIME types accepted for inline images.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"}

var folderPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)

// UploadInput is one file of a multipart request. Body is read at most once.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader

	// DocID prefixes changelog attachments, Folder prefixes images.
	DocID  string
	Folder string
}

// UploadResult describes a stored object.
type UploadResult struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	StoredName string `json:"storedName"`
	Path       string `json:"path"`
	Bucket     string `json:"bucket"`
}

// UploadService relays files to object storage.
type UploadService interface {
	// Attachment stores a changelog attachment under <docID>/.
	Attachment(ctx context.Context, in UploadInput) (*UploadResult, error)
	// Image stores an inline document image under <folder>/.
	Image(ctx context.Context, in UploadInput) (*UploadResult, error)
}

type uploadService struct {
	store  storage.Storage
	limits config.StorageConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewUploadService wires the relay. store may be nil, every upload then
// fails with ErrStorageNotConfigured after the request has been validated.
func NewUploadService(store storage.Storage, limits config.StorageConfig, log *slog.Logger) UploadService {
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &uploadService{store: store, limits: limits, log: log, now: time.Now}
}

func (s *uploadService) Attachment(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if err := s.checkFile(in); err != nil {
		return nil, err
	}
	prefix := strings.TrimSpace(in.DocID)
	if prefix == "" {
		prefix = miscPrefix
	}
	if err := validation.Validate(prefix, validation.By(docPrefix)); err != nil {
		return nil, validationError(validation.Errors{"docId": err})
	}

	name := in.Filename
	if name == "" {
		name = "attachment"
	}
	return s.put(ctx, s.limits.ChangelogBucket, prefix, name, "file", in)
}

func (s *uploadService) Image(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Body == nil {
		return nil, ErrNoFile
	}
	if err := validation.Validate(in.ContentType, validation.In(toAny(AllowedImageTypes)...)); err != nil || in.ContentType == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, in.ContentType)
	}
	if in.Size > s.limits.MaxUploadBytes {
		return nil, &FileTooLargeError{Size: in.Size, Max: s.limits.MaxUploadBytes}
	}
	folder := strings.Trim(strings.TrimSpace(in.Folder), "/")
	if folder == "" {
		folder = defaultImageFolder
	}
	if err := validation.Validate(folder, validation.Match(folderPattern)); err != nil {
		return nil, validationError(validation.Errors{"folder": err})
	}

	name := in.Filename
	if name == "" {
		name = "image"
	}
	return s.put(ctx, s.limits.ImageBucket, folder, name, "img", in)
}

// checkFile runs before any byte is sent to storage.
func (s *uploadService) checkFile(in UploadInput) error {
	if in.Body == nil || in.Size == 0 {
		return ErrNoFile
	}
	if in.Size > s.limits.MaxUploadBytes {
		return &FileTooLargeError{Size: in.Size, Max: s.limits.MaxUploadBytes}
	}
	return nil
}

func (s *uploadService) put(ctx context.Context, bucket, prefix, name, fallback string, in UploadInput) (*UploadResult, error) {
	if s.store == nil {
		return nil, ErrStorageNotConfigured
	}

	key, stored := storage.ObjectKey(prefix, name, fallback, s.now())
	info, err := s.store.Put(ctx, bucket, key, in.Body, storage.PutObjectOptions{
		Size:         in.Size,
		ContentType:  in.ContentType,
		CacheControl: storage.DefaultCacheControl,
	})
	if err != nil {
		s.log.WarnContext(ctx, "upload_failed", "backend", s.store.Backend(), "bucket", bucket, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.log.InfoContext(ctx, "upload_stored", "backend", s.store.Backend(), "bucket", bucket, "key", key, "size", info.Size)
	return &UploadResult{
		URL:        s.store.PublicURL(bucket, key),
		Name:       name,
		StoredName: stored,
		Path:       key,
		Bucket:     bucket,
	}, nil
}

// docPrefix accepts a document id or the shared misc prefix.
func docPrefix(v any) error {
	s, _ := v.(string)
	if s == miscPrefix {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_doc_id", "must be a document id")
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
