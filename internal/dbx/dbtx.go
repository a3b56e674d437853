// Package dbx holds the small database helpers shared by the cache
// repositories: the DBTX handle that both *sql.DB and *sql.Tx satisfy,
// a transaction runner, and classification of SQLite error codes.
package dbx

import (
	"context"
	"database/sql"
	"errors"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Repositories created inside fn must be bound to tx, not to db:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    repo := timeline.NewSQLiteRepository(tx)
//	    return repo.DeleteRange(ctx, accountID, newest, oldest)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// primaryCode extracts the primary result code from a SQLite driver error.
// Extended codes keep the primary code in the low byte.
func primaryCode(err error) (int, bool) {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return 0, false
	}
	return serr.Code() & 0xff, true
}

// IsConstraintViolation reports whether err is a SQLite constraint failure
// (unique, primary key, not null, check).
func IsConstraintViolation(err error) bool {
	code, ok := primaryCode(err)
	return ok && code == sqlitelib.SQLITE_CONSTRAINT
}

// IsBusy reports whether err means the database file was locked by another
// connection for longer than the busy timeout.
func IsBusy(err error) bool {
	code, ok := primaryCode(err)
	return ok && (code == sqlitelib.SQLITE_BUSY || code == sqlitelib.SQLITE_LOCKED)
}
