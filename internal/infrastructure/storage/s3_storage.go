// Package storage keeps uploaded prescription images, in memory for
// development or in an S3 compatible bucket.
package storage

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/emedico/backend/internal/infrastructure/config"
)

var ErrMissingKey = errors.New("storage key is required")

const (
	defaultRegion     = "us-east-1"
	defaultPreviewTTL = 15 * time.Minute
)

// S3Store keeps images in one bucket. Previews are presigned GETs, so image
// bytes never pass through the API. MinIO needs UsePathStyle.
type S3Store struct {
	api        *s3.Client
	presign    *s3.PresignClient
	bucket     string
	previewTTL time.Duration
	log        *zap.Logger
}

// NewS3Store configures a client without contacting the server. Call
// EnsureBucket to check connectivity.
func NewS3Store(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*S3Store, error) {
	endpoint, err := s3Endpoint(cfg)
	if err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cmp.Or(cfg.Region, defaultRegion)),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Store{
		api:        api,
		presign:    s3.NewPresignClient(api),
		bucket:     cfg.Bucket,
		previewTTL: cmp.Or(max(cfg.PreviewURLTTL, 0), defaultPreviewTTL),
		log:        log,
	}, nil
}

// s3Endpoint checks the required settings and returns the endpoint with a
// scheme, https when none was given.
func s3Endpoint(cfg config.StorageConfig) (string, error) {
	var missing []string
	for _, f := range [...]struct{ name, value string }{
		{"bucket", cfg.Bucket},
		{"access key", cfg.AccessKeyID},
		{"secret key", cfg.SecretAccessKey},
		{"endpoint", cfg.Endpoint},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("storage settings missing: %s", strings.Join(missing, ", "))
	}

	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("storage endpoint: %w", err)
	}
	return endpoint, nil
}

func (s *S3Store) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})
	if err == nil {
		return nil
	}
	if !notFound(err) {
		return fmt.Errorf("bucket %s: %w", s.bucket, err)
	}

	s.log.Info("Creating bucket", zap.String("bucket", s.bucket))
	_, err = s.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &s.bucket})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrMissingKey
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   &contentType,
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// PreviewURL presigns a GET for key. ttl <= 0 uses the configured TTL.
func (s *S3Store) PreviewURL(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrMissingKey
	}
	if ttl <= 0 {
		ttl = s.previewTTL
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("s3 presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(ttl), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrMissingKey
	}
	if _, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrMissingKey
	}
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	switch {
	case err == nil:
		return true, nil
	case notFound(err):
		return false, nil
	}
	return false, fmt.Errorf("s3 head %s: %w", key, err)
}

// notFound matches missing buckets and keys. Some S3 compatible servers only
// name the error in its message.
func notFound(err error) bool {
	var (
		nf *types.NotFound
		nb *types.NoSuchBucket
		nk *types.NoSuchKey
	)
	if errors.As(err, &nf) || errors.As(err, &nb) || errors.As(err, &nk) {
		return true
	}
	msg := err.Error()
	for _, code := range []string{"NotFound", "NoSuchKey", "NoSuchBucket"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
