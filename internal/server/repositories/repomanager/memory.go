package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/uploadhaven/internal/dbx"
	"github.com/dmitrijs2005/uploadhaven/internal/server/repositories/uploads"
)

// MemoryRepositoryManager hands out one shared in-memory repository and
// ignores the DBTX it is given.
type MemoryRepositoryManager struct {
	uploads *uploads.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{uploads: uploads.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Uploads(dbx.DBTX) uploads.Repository {
	return m.uploads
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
