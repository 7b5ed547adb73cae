package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docpress/internal/config"
)

// supabaseStorage uploads through the managed storage REST API with the
// service key.
type supabaseStorage struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewSupabase(cfg config.SupabaseConfig) Storage {
	return &supabaseStorage{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type supabaseError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (s *supabaseStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(bucket), escapeKey(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("build upload request: %w", err)
	}
	if opt.Size >= 0 {
		req.ContentLength = opt.Size
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("x-upsert", "false")
	if opt.ContentType != "" {
		req.Header.Set("Content-Type", opt.ContentType)
	}
	if opt.CacheControl != "" {
		req.Header.Set("Cache-Control", opt.CacheControl)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var se supabaseError
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &se) == nil && se.Message != "" {
			return ObjectInfo{}, fmt.Errorf("storage api %d: %s", resp.StatusCode, se.Message)
		}
		return ObjectInfo{}, fmt.Errorf("storage api %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return ObjectInfo{Bucket: bucket, Key: key, Size: opt.Size}, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *supabaseStorage) PublicURL(bucket, key string) string {
	return supabasePublicURL(s.baseURL, bucket, key)
}

func (s *supabaseStorage) Backend() string { return "supabase" }
