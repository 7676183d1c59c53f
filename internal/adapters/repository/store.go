// Package repository persists tracker state in a blob store: a local
// directory, a BoltDB file or an S3 bucket.
package repository

import "context"

// BlobStore reads and writes opaque values by key.
type BlobStore interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Backend names accepted by NewBlobStore.
const (
	BackendNone = "none"
	BackendFile = "file"
	BackendBolt = "bolt"
	BackendS3   = "s3"
)

// Config selects and configures a BlobStore backend.
type Config struct {
	Backend string
	Path    string // directory for file, database file for bolt
	Bucket  string // s3 bucket
	Gzip    bool   // s3 only
}

// NewBlobStore opens the configured backend. It returns a nil store and no
// error for BackendNone or an empty backend.
func NewBlobStore(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendFile:
		return NewFileStore(cfg.Path)
	case BackendBolt:
		return NewBoltStore(cfg.Path)
	case BackendS3:
		return NewS3StoreFromEnv(ctx, cfg.Bucket, WithGzip(cfg.Gzip))
	default:
		return nil, ErrUnknownBackend
	}
}
