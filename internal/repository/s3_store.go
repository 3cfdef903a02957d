package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "github.com/Jer-romano/capstone2-traveler/internal/config"
	"github.com/Jer-romano/capstone2-traveler/internal/domain"
)

// S3BlobStore implements domain.BlobStore using AWS SDK v2. It works against
// AWS S3 proper or any S3-compatible store (MinIO, SeaweedFS) via a custom
// endpoint.
type S3BlobStore struct {
	client       *s3.Client
	bucket       string
	publicURL    string
	maxBytes     int64
	allowedTypes map[string]bool
}

// NewS3BlobStore creates a blob store client. Credentials come from the
// injected config, never from ambient SDK globals, so tests can substitute a
// fake store behind domain.BlobStore instead.
func NewS3BlobStore(ctx context.Context, cfg appConfig.S3Config, maxUploadMB int64) (*S3BlobStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Path-style addressing is required for most S3-compatible stores
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = cfg.Endpoint
	}

	return &S3BlobStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxUploadMB * 1024 * 1024,
		allowedTypes: map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
			"image/heic": true,
			"image/heif": true,
		},
	}, nil
}

// Put stores data under key and returns the resolvable URL.
// Size and content-type limits are enforced here, before any network call,
// and surface as ErrStoreRejected. Transport failures (including the SDK's
// own call timeout) surface as ErrStoreUnavailable.
func (s *S3BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: payload of %d bytes exceeds limit of %d", domain.ErrStoreRejected, len(data), s.maxBytes)
	}
	if !s.allowedTypes[strings.ToLower(contentType)] {
		return "", fmt.Errorf("%w: content type %q not allowed", domain.ErrStoreRejected, contentType)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %q: %v", domain.ErrStoreUnavailable, key, err)
	}

	// Format: {PublicURL}/{Bucket}/{Key}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}
