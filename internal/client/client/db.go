package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tootcache/internal/client/migrations"
	"github.com/dmitrijs2005/tootcache/internal/filex"
	_ "modernc.org/sqlite"
)

const memoryDSN = ":memory:"

func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrations.Up(ctx, db)
}

// InitDatabase opens the cache database at path, creating its directory,
// and applies migrations. ":memory:" opens a private in-memory database.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	dsn := memoryDSN
	if path != memoryDSN {
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		dsn = abs + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == memoryDSN {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
