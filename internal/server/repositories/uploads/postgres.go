package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/dbx"
	"github.com/dmitrijs2005/uploadhaven/internal/server/models"
)

const uploadColumns = `short_id, storage_key, size, algorithm, iv, salt, iterations, category,
	uploaded_at, expires_at, access_hash, access_salt`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *models.Upload) error {
	query := `
		INSERT INTO uploads (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (short_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		u.ShortID, u.StorageKey, u.Size, u.Algorithm, u.IV, u.Salt, u.Iterations, u.Category,
		u.UploadedAt, u.ExpiresAt, u.AccessHash, u.AccessSalt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrAlreadyExists
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Get(ctx context.Context, shortID string) (*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE short_id=$1`

	u, err := scanUpload(r.db.QueryRowContext(ctx, query, shortID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select upload: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, shortID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE short_id=$1`, shortID)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SelectExpired(ctx context.Context, now time.Time, limit int) ([]*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads
		WHERE expires_at <= $1
		ORDER BY expires_at
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select expired uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (*models.Upload, error) {
	var u models.Upload
	err := s.Scan(&u.ShortID, &u.StorageKey, &u.Size, &u.Algorithm, &u.IV, &u.Salt, &u.Iterations, &u.Category,
		&u.UploadedAt, &u.ExpiresAt, &u.AccessHash, &u.AccessSalt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
