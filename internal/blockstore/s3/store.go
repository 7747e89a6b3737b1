// Package s3 implements blockstore.Store against an S3-compatible object
// store, for deployments where the cache root is shared network storage
// rather than a single host's local disk.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aplbrain/bossphorus/internal/blockstore"
)

// Config holds the settings needed to reach the bucket backing the
// cache.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string // for S3-compatible services (MinIO, etc.)
	KeyPrefix      string
	ForcePathStyle bool
}

// Store is an S3-backed blockstore.Store.
type Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// New wraps an existing S3 client.
func New(client *s3.Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix}
}

// NewFromConfig builds an S3 client from the default AWS credential chain
// and wraps it.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 blockstore: load aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(cfg.Endpoint) })
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...), cfg), nil
}

func (s *Store) fullKey(key string) string {
	return s.keyPrefix + key
}

// WriteBlock implements blockstore.Store.
func (s *Store) WriteBlock(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 blockstore: put %q: %w", key, err)
	}
	return nil
}

// ReadBlock implements blockstore.Store.
func (s *Store) ReadBlock(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, blockstore.ErrBlockNotFound
		}
		return nil, fmt.Errorf("s3 blockstore: get %q: %w", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 blockstore: read body %q: %w", key, err)
	}
	if len(data) == 0 {
		return nil, blockstore.ErrBlockNotFound
	}
	return data, nil
}

// DeleteBlock implements blockstore.Store.
func (s *Store) DeleteBlock(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("s3 blockstore: delete %q: %w", key, err)
	}
	return nil
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "404")
}

var _ blockstore.Store = (*Store)(nil)
