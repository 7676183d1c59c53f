package repository

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps values as objects in an S3 bucket.
type S3Store struct {
	client S3API
	bucket string
	prefix string
	gzip   bool
}

// S3Option configures an S3Store.
type S3Option func(*S3Store)

// WithGzip compresses objects on write and decompresses them on read.
// Compressed object keys get a ".gz" suffix.
func WithGzip(enabled bool) S3Option {
	return func(s *S3Store) {
		s.gzip = enabled
	}
}

// WithPrefix stores every object under prefix.
func WithPrefix(prefix string) S3Option {
	return func(s *S3Store) {
		s.prefix = prefix
	}
}

// NewS3Store returns a store that uses client for bucket.
func NewS3Store(client S3API, bucket string, opts ...S3Option) (*S3Store, error) {
	if client == nil {
		return nil, errors.New("s3 store: client is required")
	}
	if bucket == "" {
		return nil, errors.New("s3 store: bucket is required")
	}
	s := &S3Store{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewS3StoreFromEnv builds the client from the default AWS configuration
// sources (environment, shared config and credentials files) and checks that
// the bucket is reachable.
func NewS3StoreFromEnv(ctx context.Context, bucket string, opts ...S3Option) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 store: failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return nil, fmt.Errorf("s3 store: head bucket failed for %s: %w", bucket, err)
	}
	return NewS3Store(client, bucket, opts...)
}

func (s *S3Store) objectKey(key string) string {
	k := key
	if s.prefix != "" {
		k = path.Join(s.prefix, key)
	}
	if s.gzip {
		k += ".gz"
	}
	return k
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	in := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}
	resp, err := s.client.GetObject(ctx, in)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, *in.Key)
		}
		return nil, fmt.Errorf("s3 store: get s3://%s/%s: %w", s.bucket, *in.Key, err)
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if s.gzip {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("s3 store: open compressed s3://%s/%s: %w", s.bucket, *in.Key, err)
		}
		defer gz.Close()
		rdr = gz
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("s3 store: read s3://%s/%s: %w", s.bucket, *in.Key, err)
	}
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
		Body:   bytes.NewReader(data),
	}
	if s.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("s3 store: gzip s3://%s/%s: %w", s.bucket, *in.Key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("s3 store: close gzip writer for s3://%s/%s: %w", s.bucket, *in.Key, err)
		}
		in.Body = bytes.NewReader(buf.Bytes())
		in.ContentEncoding = aws.String("gzip")
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 store: put s3://%s/%s: %w", s.bucket, *in.Key, err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }
