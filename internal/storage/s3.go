package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"docpress/internal/config"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Storage uploads to the managed storage's S3 endpoint with path-style
// addressing. Objects are served from the managed public URL.
type s3Storage struct {
	client  s3PutAPI
	baseURL string
}

func NewS3(ctx context.Context, cfg config.S3Config, publicBase string) (Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	return &s3Storage{client: client, baseURL: publicBase}, nil
}

func (s *s3Storage) Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if opt.ContentType != "" {
		in.ContentType = aws.String(opt.ContentType)
	}
	if opt.CacheControl != "" {
		in.CacheControl = aws.String(opt.CacheControl)
	}
	if opt.Size >= 0 {
		in.ContentLength = aws.Int64(opt.Size)
	}

	out, err := s.client.PutObject(ctx, in)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Bucket: bucket, Key: key, Size: opt.Size, ETag: aws.ToString(out.ETag)}, nil
}

func (s *s3Storage) PublicURL(bucket, key string) string {
	return supabasePublicURL(s.baseURL, bucket, key)
}

func (s *s3Storage) Backend() string { return "s3" }
