package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, localAccountID int64, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM metadata WHERE local_account_id = ? AND key = ?`, localAccountID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get metadata[%d/%s]: %w", common.ErrStorage, localAccountID, key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, localAccountID int64, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (local_account_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(local_account_id, key) DO UPDATE SET value = excluded.value
	`, localAccountID, key, value)
	if err != nil {
		return fmt.Errorf("%w: failed to set metadata[%d/%s]: %w", common.ErrStorage, localAccountID, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localAccountID int64, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE local_account_id = ? AND key = ?`, localAccountID, key)
	if err != nil {
		return fmt.Errorf("%w: failed to delete metadata[%d/%s]: %w", common.ErrStorage, localAccountID, key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context, localAccountID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE local_account_id = ?`, localAccountID)
	if err != nil {
		return fmt.Errorf("%w: failed to clear metadata[%d]: %w", common.ErrStorage, localAccountID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, localAccountID int64) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE local_account_id = ?`, localAccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list metadata: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: failed to scan metadata row: %w", common.ErrStorage, err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate metadata rows: %w", common.ErrStorage, err)
	}

	return result, nil
}
