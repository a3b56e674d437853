package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/common"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const accountColumns = `id, domain, username, account_server_id, display_name,
	sealed_token, token_nonce, token_salt, created_at`

func (r *SQLiteRepository) Create(ctx context.Context, a *models.LocalAccount) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO local_accounts (domain, username, account_server_id, display_name,
			sealed_token, token_nonce, token_salt, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.Domain, a.Username, a.AccountServerID, a.DisplayName,
		a.SealedToken, a.TokenNonce, a.TokenSalt, a.CreatedAt.UnixMilli())
	if dbx.IsConstraintViolation(err) {
		return fmt.Errorf("account %s: %w", a.FullName(), common.ErrorAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to insert account: %w", common.ErrStorage, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: failed to get account id: %w", common.ErrStorage, err)
	}
	a.ID = id
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.LocalAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM local_accounts WHERE id = ?`, id)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get account %d: %w", common.ErrStorage, id, err)
	}
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.LocalAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM local_accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list accounts: %w", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []models.LocalAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan account: %w", common.ErrStorage, err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate accounts: %w", common.ErrStorage, err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM local_accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete account %d: %w", common.ErrStorage, id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.LocalAccount, error) {
	var (
		a       models.LocalAccount
		created int64
	)
	err := s.Scan(&a.ID, &a.Domain, &a.Username, &a.AccountServerID, &a.DisplayName,
		&a.SealedToken, &a.TokenNonce, &a.TokenSalt, &created)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	return &a, nil
}
