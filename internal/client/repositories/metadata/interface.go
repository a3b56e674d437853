// Package metadata stores small per-account key/value state such as the
// time of the last retention run.
package metadata

import (
	"context"
)

// Repository is scoped by local account id; a missing key reads as nil.
type Repository interface {
	Get(ctx context.Context, localAccountID int64, key string) ([]byte, error)
	Set(ctx context.Context, localAccountID int64, key string, value []byte) error
	Delete(ctx context.Context, localAccountID int64, key string) error
	List(ctx context.Context, localAccountID int64) (map[string][]byte, error)
	Clear(ctx context.Context, localAccountID int64) error
}

const (
	KeyLastPrunedAt    = "last_pruned_at"
	KeyLastRefreshedAt = "last_refreshed_at"
)
