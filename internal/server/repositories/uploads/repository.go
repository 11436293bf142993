// Package uploads stores upload records: the public metadata of each shared
// file plus the bookkeeping needed to serve and expire it.
package uploads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/server/models"
)

type Repository interface {
	// Create inserts a new record. It returns common.ErrAlreadyExists when
	// the short id is taken.
	Create(ctx context.Context, u *models.Upload) error
	// Get returns common.ErrorNotFound for unknown ids. Expired records
	// are still returned; callers decide what expiry means.
	Get(ctx context.Context, shortID string) (*models.Upload, error)
	Delete(ctx context.Context, shortID string) error
	// SelectExpired returns at most limit records whose expiry is at or
	// before now, oldest first.
	SelectExpired(ctx context.Context, now time.Time, limit int) ([]*models.Upload, error)
}
