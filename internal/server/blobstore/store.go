// Package blobstore keeps ciphertext blobs under opaque storage keys. Every
// backend stores bytes verbatim; a missing key is common.ErrorNotFound.
package blobstore

import (
	"context"
	"fmt"
)

// Store is implemented by the S3, badger and in-memory backends.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendS3     = "s3"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Options select and configure a backend.
type Options struct {
	Backend   string
	S3        S3Config
	BadgerDir string
}

// Open builds the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendS3:
		return NewS3Store(ctx, opts.S3)
	case BackendBadger:
		return NewBadgerStore(opts.BadgerDir)
	case BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}
