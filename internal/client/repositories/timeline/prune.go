package timeline

import (
	"context"
	"time"
)

// newestIDs selects the ids of the newest keepCount rows of one account.
var newestIDs = `SELECT server_id FROM timeline_statuses WHERE local_account_id = ? ` +
	orderNewestFirst("server_id") + ` LIMIT ?`

func (r *SQLiteRepository) PruneOldData(ctx context.Context, localAccountID int64, keepCount int, maxAge time.Duration, now time.Time) (PruneResult, error) {
	var result PruneResult
	if keepCount < 0 {
		keepCount = 0
	}
	cutoff := now.Add(-maxAge).UnixMilli()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM timeline_statuses
		WHERE local_account_id = ?
		  AND is_placeholder = 0
		  AND COALESCE(reblogged_at, created_at) < ?
		  AND server_id NOT IN (`+newestIDs+`)
	`, localAccountID, cutoff, localAccountID, keepCount)
	if err != nil {
		return result, storageErr("prune statuses", err)
	}
	if result.Statuses, err = res.RowsAffected(); err != nil {
		return result, storageErr("get rows affected", err)
	}

	// A placeholder with no content below it no longer separates anything.
	res, err = r.db.ExecContext(ctx, `
		DELETE FROM timeline_statuses
		WHERE local_account_id = ?
		  AND is_placeholder = 1
		  AND server_id NOT IN (`+newestIDs+`)
		  AND NOT EXISTS (
			SELECT 1 FROM timeline_statuses c
			WHERE c.local_account_id = timeline_statuses.local_account_id
			  AND c.is_placeholder = 0
			  AND (LENGTH(c.server_id) < LENGTH(timeline_statuses.server_id)
			    OR (LENGTH(c.server_id) = LENGTH(timeline_statuses.server_id) AND c.server_id < timeline_statuses.server_id))
		  )
	`, localAccountID, localAccountID, keepCount)
	if err != nil {
		return result, storageErr("prune placeholders", err)
	}
	if result.Placeholders, err = res.RowsAffected(); err != nil {
		return result, storageErr("get rows affected", err)
	}

	res, err = r.db.ExecContext(ctx, `
		DELETE FROM timeline_accounts
		WHERE local_account_id = ?
		  AND server_id NOT IN (
			SELECT author_server_id FROM timeline_statuses
			WHERE local_account_id = ? AND is_placeholder = 0
		  )
		  AND server_id NOT IN (
			SELECT reblog_account_id FROM timeline_statuses
			WHERE local_account_id = ? AND reblog_account_id <> ''
		  )
	`, localAccountID, localAccountID, localAccountID)
	if err != nil {
		return result, storageErr("prune accounts", err)
	}
	if result.Accounts, err = res.RowsAffected(); err != nil {
		return result, storageErr("get rows affected", err)
	}

	return result, nil
}
