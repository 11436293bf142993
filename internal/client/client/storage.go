package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/pack"
)

// UploadRequest is one ciphertext with everything the server may know
// about it.
type UploadRequest struct {
	Metadata       pack.PublicMetadata
	Ciphertext     []byte
	ExpiresIn      time.Duration
	AccessPassword string
}

// UploadReceipt is what the server assigned.
type UploadReceipt struct {
	ShortID   string
	ExpiresAt time.Time
}

// FileStat is the metadata-only view of an upload.
type FileStat struct {
	Metadata        pack.PublicMetadata
	Valid           bool
	AccessProtected bool
}

type Storage interface {
	Store(ctx context.Context, req *UploadRequest) (*UploadReceipt, error)
	Stat(ctx context.Context, shortID string) (*FileStat, error)
	// Fetch returns at most size bytes of ciphertext.
	Fetch(ctx context.Context, shortID string, token string, size int64) ([]byte, error)
	Authorize(ctx context.Context, shortID string, accessPassword string) (string, error)
}
