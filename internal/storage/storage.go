// Package storage contains the S3-compatible object storage abstraction used for photo blobs.
// Implementations stream request bodies straight to the backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"photoapp/internal/config"
)

// ACLPublicRead is the canned ACL that makes an object readable by anyone.
const ACLPublicRead = "public-read"

// ErrBucketNotFound is returned by EnsureBucket when the configured bucket does not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, otherwise -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	ACL         string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

// Storage is the object store capability the photo workflows need.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// PublicURL returns the world-readable URL of key.
	PublicURL(key string) string
	// BucketExists reports whether the configured bucket exists.
	BucketExists(ctx context.Context) (bool, error)
	// Bucket returns the configured bucket name.
	Bucket() string
}

// EnsureBucket fails with ErrBucketNotFound when the store's bucket is absent.
func EnsureBucket(ctx context.Context, s Storage) error {
	ok, err := s.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", s.Bucket(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrBucketNotFound, s.Bucket())
	}
	return nil
}

// PublicURL builds the virtual-hosted style URL http://{bucket}.{host}/{key}.
func PublicURL(bucket, host, key string) string {
	return fmt.Sprintf("http://%s.%s/%s", bucket, host, key)
}

// New builds the Storage selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageMinIO:
		return NewMinIO(cfg)
	case config.StorageS3, "":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
