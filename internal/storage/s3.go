// Package storage provides the S3 object-storage operations used by the
// asynchronous document-automation pipeline: uploading input documents and
// fetching job result objects.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
)

// S3Store wraps an S3 client bound to the configured bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	log    zerolog.Logger
}

// NewS3Store creates a store from the application configuration using the
// default AWS credential chain.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("storage: AWS_REGION is required")
	}
	if cfg.AWSBucketName == "" {
		return nil, fmt.Errorf("storage: AWS_BUCKET_NAME is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.AWSBucketName,
		log:    logger.WithComponent("storage"),
	}, nil
}

// NewS3StoreWithClient creates a store with an explicit client (for testing).
func NewS3StoreWithClient(client *s3.Client, bucket string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		log:    logger.WithComponent("storage"),
	}
}

// Bucket returns the configured bucket name.
func (s *S3Store) Bucket() string { return s.bucket }

// Upload puts an object into the configured bucket and returns its s3:// URI.
func (s *S3Store) Upload(ctx context.Context, key string, body []byte) (string, error) {
	contentType := detectContentType(body)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload to s3 (bucket %s, key %s): %w", s.bucket, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.log.Debug().
		Str("uri", uri).
		Int("size", len(body)).
		Str("content_type", contentType).
		Msg("Uploaded object")

	return uri, nil
}

// FetchURI downloads the object addressed by an s3:// URI, which may point at
// any bucket (automation jobs write results under their own prefixes).
func (s *S3Store) FetchURI(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: fetch s3 object %s: %w", uri, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read s3 object %s: %w", uri, err)
	}
	return data, nil
}

// ParseURI splits an s3://bucket/key URI into its bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("storage: not an s3 URI: %s", uri)
	}
	bucket, key, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("storage: malformed s3 URI: %s", uri)
	}
	return bucket, key, nil
}

func detectContentType(data []byte) string {
	if len(data) == 0 {
		return "application/octet-stream"
	}
	if len(data) > 512 {
		return http.DetectContentType(data[:512])
	}
	return http.DetectContentType(data)
}
