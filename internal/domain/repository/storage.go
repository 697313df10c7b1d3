package repository

import (
	"context"
	"errors"
	"io"
	"time"

	"mediconnect/internal/domain/entity"
)

// ErrBlobNotFound is returned by BlobStore when no object exists at a path.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a path-addressed object store split into named buckets.
type BlobStore interface {
	// Put writes the object and returns the stored path.
	Put(ctx context.Context, bucket, key string, r io.Reader) (string, error)
	Open(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, bucket, path string) error
}

// KeyValueStore is the durable per-user key-value storage used for carts.
// Get returns (nil, nil) when the key is absent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// TokenStore is the allow-list of issued session tokens.
type TokenStore interface {
	Store(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	DeleteMatching(ctx context.Context, pattern string) error
}

// ChangePublisher fans row changes out to realtime subscribers.
type ChangePublisher interface {
	Publish(ctx context.Context, event entity.ChangeEvent) error
}

// ChangeSubscriber delivers change events for one table until the returned
// close function is called or ctx ends.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, table string) (<-chan entity.ChangeEvent, func() error, error)
}
