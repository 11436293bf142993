// Package models defines server-side data models persisted in the database.
package models

import (
	"bytes"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/pack"
)

// Upload is the server's record of one shared file. The ciphertext itself
// lives in the blob store under StorageKey.
type Upload struct {
	ShortID    string
	StorageKey string

	// Public metadata, stored as received.
	Size       int64
	Algorithm  string
	IV         []byte
	Salt       []byte
	Iterations int
	Category   string

	UploadedAt time.Time
	ExpiresAt  time.Time

	// AccessHash and AccessSalt are set only for access-gated uploads.
	AccessHash []byte
	AccessSalt []byte
}

// Expired reports whether the upload is past its expiry at now.
func (u *Upload) Expired(now time.Time) bool {
	return !now.Before(u.ExpiresAt)
}

// Clone returns a deep copy; the byte slices are not shared with u.
func (u *Upload) Clone() *Upload {
	c := *u
	c.IV = bytes.Clone(u.IV)
	c.Salt = bytes.Clone(u.Salt)
	c.AccessHash = bytes.Clone(u.AccessHash)
	c.AccessSalt = bytes.Clone(u.AccessSalt)
	return &c
}

func (u *Upload) AccessProtected() bool {
	return len(u.AccessHash) > 0
}

// Metadata returns what clients are allowed to see.
func (u *Upload) Metadata() pack.PublicMetadata {
	return pack.PublicMetadata{
		Size:       u.Size,
		Algorithm:  u.Algorithm,
		IV:         u.IV,
		Salt:       u.Salt,
		Iterations: u.Iterations,
		UploadedAt: u.UploadedAt,
		ExpiresAt:  u.ExpiresAt,
		Category:   u.Category,
	}
}
