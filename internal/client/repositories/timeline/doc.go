// Package timeline provides the local timeline store: the per-account cache
// of timeline rows, their author projections and gap placeholders.
//
// # Data Model
//
// Content rows and placeholders live in one table keyed by
// (server_id, local_account_id) and are told apart by is_placeholder, so the
// two kinds share one id namespace. Authors live in timeline_accounts under
// the same composite key. Nested payloads (attachments, mentions, poll...) are
// stored as opaque JSON text and only decoded for display.
//
// # Ordering
//
// Status ids are decimal strings of varying length. Every range condition and
// ORDER BY compares LENGTH(server_id) first and the text second, which matches
// numeric order without casting.
//
// # Transactions
//
// SQLiteRepository runs over a dbx.DBTX. Multi-statement operations (merging
// a page, pruning) are grouped by the caller with dbx.WithTx and a repository
// bound to the transaction.
//
// Key Types
//
//   - type Repository: interface used by the synchronizer and the cache updater
//   - type SQLiteRepository: SQLite implementation over dbx.DBTX
//   - type PruneResult: row counts removed by PruneOldData
package timeline
