package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/uploadhaven/internal/dbx"
	"github.com/dmitrijs2005/uploadhaven/internal/server/repositories/uploads"
)

// RepositoryManager vends repositories bound to a DBTX and owns schema setup.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Uploads(db dbx.DBTX) uploads.Repository
}
