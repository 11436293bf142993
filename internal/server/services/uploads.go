// Package services contains server-side business logic. UploadService
// accepts opaque ciphertext with its public metadata, serves it back, gates
// access-protected uploads behind download tokens and removes expired
// uploads.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/api"
	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/cryptox"
	"github.com/dmitrijs2005/uploadhaven/internal/dbx"
	"github.com/dmitrijs2005/uploadhaven/internal/logging"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"github.com/dmitrijs2005/uploadhaven/internal/server/auth"
	"github.com/dmitrijs2005/uploadhaven/internal/server/blobstore"
	"github.com/dmitrijs2005/uploadhaven/internal/server/config"
	"github.com/dmitrijs2005/uploadhaven/internal/server/models"
	"github.com/dmitrijs2005/uploadhaven/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/uploadhaven/internal/server/repositories/uploads"
	"github.com/google/uuid"
)

// ErrExpired is returned for uploads whose record still exists but whose
// expiry has passed. It matches common.ErrNotFoundOrExpired.
var ErrExpired = fmt.Errorf("%w: expired", common.ErrNotFoundOrExpired)

const (
	shortIDBytes    = 9
	shortIDAttempts = 3
)

// GetRandomStorageKey returns a fresh blob key partitioned by day.
func GetRandomStorageKey(now time.Time) string {
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%v", now.Year(), now.Month(), now.Day(), uuid.New())
}

type UploadService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	config      *config.Config
	jwtSecret   []byte
	log         logging.Logger
	metrics     *metrics.Server
	now         func() time.Time
}

type Option func(*UploadService)

func WithLogger(l logging.Logger) Option {
	return func(s *UploadService) { s.log = l }
}

func WithMetrics(m *metrics.Server) Option {
	return func(s *UploadService) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *UploadService) { s.now = now }
}

// NewUploadService wires the service. db may be nil when the repository
// manager does not need a database; operations then run without a
// transaction. An empty cfg.SecretKey is replaced by a random secret.
func NewUploadService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, cfg *config.Config, opts ...Option) *UploadService {
	s := &UploadService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		config:      cfg,
		jwtSecret:   []byte(cfg.SecretKey),
		log:         logging.Discard(),
		now:         time.Now,
	}
	if len(s.jwtSecret) == 0 {
		s.jwtSecret = common.GenerateRandByteArray(32)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *UploadService) uploads() uploads.Repository {
	return s.repomanager.Uploads(s.db)
}

// inTx runs fn against a transactional repository, or the plain one when
// there is no database.
func (s *UploadService) inTx(ctx context.Context, fn func(context.Context, uploads.Repository) error) error {
	if s.db == nil {
		return fn(ctx, s.repomanager.Uploads(nil))
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repomanager.Uploads(tx))
	})
}

func (s *UploadService) reject(reason string, err error) error {
	if s.metrics != nil {
		s.metrics.RecordUploadRejected(reason)
	}
	return err
}

// Store validates the metadata against the body, stores the ciphertext and
// records the upload under a fresh short id.
func (s *UploadService) Store(ctx context.Context, meta *api.UploadMetadata, body []byte) (*models.Upload, error) {
	if err := meta.PublicMetadata.Validate(); err != nil {
		return nil, s.reject("metadata", err)
	}
	if int64(len(body)) > s.config.MaxUploadSize {
		return nil, s.reject("too_large", common.ErrFileTooLarge)
	}
	if int64(len(body)) != meta.Size {
		return nil, s.reject("size_mismatch", common.ErrSizeMismatch)
	}
	ttl, err := s.expiry(meta.ExpiresInSeconds)
	if err != nil {
		return nil, s.reject("metadata", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	u := &models.Upload{
		StorageKey: GetRandomStorageKey(now),
		Size:       meta.Size,
		Algorithm:  meta.Algorithm,
		IV:         meta.IV,
		Salt:       meta.Salt,
		Iterations: meta.Iterations,
		Category:   meta.Category,
		UploadedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if meta.AccessPassword != "" {
		u.AccessHash, u.AccessSalt, err = cryptox.HashAccessPassword([]byte(meta.AccessPassword))
		if err != nil {
			return nil, fmt.Errorf("hash access password: %w", err)
		}
	}

	if err := s.blobs.Put(ctx, u.StorageKey, body); err != nil {
		s.blobError("put")
		return nil, fmt.Errorf("%w: store blob: %v", common.ErrUnavailable, err)
	}

	if err := s.createRecord(ctx, u); err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), u.StorageKey); derr != nil {
			s.blobError("delete")
			s.log.Warn(ctx, "orphaned blob", "storage_key", u.StorageKey, "error", derr)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUploadStored(u.Size)
	}
	s.log.Info(ctx, "upload stored", "short_id", u.ShortID, "size", u.Size, "expires_at", u.ExpiresAt,
		"access_protected", u.AccessProtected())
	return u, nil
}

// createRecord picks a short id, retrying on the rare collision.
func (s *UploadService) createRecord(ctx context.Context, u *models.Upload) error {
	repo := s.uploads()
	for range shortIDAttempts {
		id, err := common.MakeRandURLString(shortIDBytes)
		if err != nil {
			return fmt.Errorf("short id: %w", err)
		}
		u.ShortID = id

		err = repo.Create(ctx, u)
		if errors.Is(err, common.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create upload: %w", err)
		}
		return nil
	}
	return fmt.Errorf("create upload: %w", common.ErrAlreadyExists)
}

func (s *UploadService) expiry(seconds int64) (time.Duration, error) {
	switch {
	case seconds < 0:
		return 0, fmt.Errorf("%w: negative expiry", common.ErrorIncorrectMetadata)
	case seconds == 0:
		return s.config.DefaultExpiry, nil
	}
	if limit := int64(s.config.MaxExpiry / time.Second); seconds > limit {
		return s.config.MaxExpiry, nil
	}
	return time.Duration(seconds) * time.Second, nil
}

// Stat returns the record for shortID, expired or not.
func (s *UploadService) Stat(ctx context.Context, shortID string) (*models.Upload, error) {
	return s.uploads().Get(ctx, shortID)
}

func (s *UploadService) live(ctx context.Context, shortID string) (*models.Upload, error) {
	u, err := s.Stat(ctx, shortID)
	if err != nil {
		return nil, err
	}
	if u.Expired(s.now()) {
		return nil, ErrExpired
	}
	return u, nil
}

// Fetch returns the ciphertext of a live upload. token is required for
// access-protected uploads and ignored otherwise.
func (s *UploadService) Fetch(ctx context.Context, shortID, token string) ([]byte, *models.Upload, error) {
	u, err := s.live(ctx, shortID)
	if err != nil {
		return nil, nil, err
	}
	if u.AccessProtected() {
		sid, err := auth.GetShortIDFromToken(token, s.jwtSecret, s.now())
		if err != nil || sid != shortID {
			return nil, nil, common.ErrAccessDenied
		}
	}

	blob, err := s.blobs.Get(ctx, u.StorageKey)
	if errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "blob missing for live upload", "short_id", shortID)
		return nil, nil, common.ErrorNotFound
	}
	if err != nil {
		s.blobError("get")
		return nil, nil, fmt.Errorf("%w: read blob: %v", common.ErrUnavailable, err)
	}
	return blob, u, nil
}

// Authorize exchanges an access password for a download token. The token
// never outlives the upload.
func (s *UploadService) Authorize(ctx context.Context, shortID, password string) (string, error) {
	u, err := s.live(ctx, shortID)
	if err != nil {
		return "", err
	}
	if u.AccessProtected() && !cryptox.VerifyAccessPassword([]byte(password), u.AccessSalt, u.AccessHash) {
		s.log.Info(ctx, "access denied", "short_id", shortID)
		return "", common.ErrAccessDenied
	}

	now := s.now()
	exp := now.Add(s.config.TokenTTL)
	if u.ExpiresAt.Before(exp) {
		exp = u.ExpiresAt
	}
	return auth.GenerateToken(shortID, s.jwtSecret, now, exp)
}

// Sweep deletes one batch of expired uploads and reports how many records
// were removed. Blob deletion is best effort; a leftover blob is
// unreachable once its record is gone.
func (s *UploadService) Sweep(ctx context.Context) (int, error) {
	expired, err := s.uploads().SelectExpired(ctx, s.now(), s.config.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("select expired: %w", err)
	}

	removed := 0
	for _, u := range expired {
		err := s.inTx(ctx, func(ctx context.Context, repo uploads.Repository) error {
			return repo.Delete(ctx, u.ShortID)
		})
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("delete %s: %w", u.ShortID, err)
		}
		removed++

		if err := s.blobs.Delete(ctx, u.StorageKey); err != nil {
			s.blobError("delete")
			s.log.Warn(ctx, "blob delete failed", "storage_key", u.StorageKey, "error", err)
		}
	}

	if removed > 0 {
		if s.metrics != nil {
			s.metrics.RecordExpired(removed)
		}
		s.log.Info(ctx, "expired uploads removed", "count", removed)
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done. A full batch
// is followed immediately by another sweep.
func (s *UploadService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for {
			n, err := s.Sweep(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Error(ctx, "sweep failed", "error", err)
				}
				break
			}
			if n < s.config.SweepBatch {
				break
			}
		}
	}
}

func (s *UploadService) blobError(op string) {
	if s.metrics != nil {
		s.metrics.RecordBlobError(op)
	}
}
