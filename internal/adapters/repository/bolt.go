package repository

import (
	"context"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var stateBucket = []byte("multielo") //nolint:gochecknoglobals // bucket name

// BoltStore keeps values in a single bucket of a BoltDB file.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("bolt store: database path is required")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(stateBucket)
		if bucket == nil {
			return errors.Wrap(ErrNotFound, "bucket does not exist yet")
		}
		v := bucket.Get([]byte(key))
		if v == nil {
			return errors.Wrapf(ErrNotFound, "no value for %q", key)
		}
		// v is only valid inside the transaction
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) Put(_ context.Context, key string, data []byte) error {
	if key == "" {
		return errors.Wrap(ErrInvalidKey, "empty key")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(stateBucket)
		if err != nil {
			return errors.Wrap(err, "unable to create bucket")
		}
		return errors.Wrapf(bucket.Put([]byte(key), data), "unable to put %q", key)
	})
}

func (b *BoltStore) Close() error {
	return errors.Wrap(b.db.Close(), "unable to close database")
}
