package uploads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/server/models"
)

// MemoryRepository keeps records in a map. It backs single-process
// deployments without a database and the service tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	uploads map[string]*models.Upload
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{uploads: make(map[string]*models.Upload)}
}

func (r *MemoryRepository) Create(_ context.Context, u *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[u.ShortID]; ok {
		return common.ErrAlreadyExists
	}
	r.uploads[u.ShortID] = u.Clone()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, shortID string) (*models.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.uploads[shortID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, shortID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[shortID]; !ok {
		return common.ErrorNotFound
	}
	delete(r.uploads, shortID)
	return nil
}

func (r *MemoryRepository) SelectExpired(_ context.Context, now time.Time, limit int) ([]*models.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Upload
	for _, u := range r.uploads {
		if u.Expired(now) {
			result = append(result, u.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
