package services

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/tootcache/internal/client/repositories/timeline"
	"github.com/dmitrijs2005/tootcache/internal/dbx"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"golang.org/x/sync/errgroup"
)

// RetentionPolicy bounds the cache of one account: rows older than MaxAge
// are removed unless they are among the newest KeepCount.
type RetentionPolicy struct {
	KeepCount int
	MaxAge    time.Duration
}

type CleanupService struct {
	db      *sql.DB
	policy  RetentionPolicy
	metrics metrics.Metrics
	log     logging.Logger
	now     func() time.Time
}

func NewCleanupService(db *sql.DB, policy RetentionPolicy, m metrics.Metrics, log logging.Logger) *CleanupService {
	return &CleanupService{db: db, policy: policy, metrics: m, log: log, now: time.Now}
}

// PruneAccount applies the retention policy to one account and records
// the run time.
func (s *CleanupService) PruneAccount(ctx context.Context, localAccountID int64) (timeline.PruneResult, error) {
	now := s.now().UTC()

	var res timeline.PruneResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = timeline.NewSQLiteRepository(tx).PruneOldData(ctx, localAccountID, s.policy.KeepCount, s.policy.MaxAge, now)
		if err != nil {
			return err
		}
		stamp := []byte(strconv.FormatInt(now.Unix(), 10))
		return metadata.NewSQLiteRepository(tx).Set(ctx, localAccountID, metadata.KeyLastPrunedAt, stamp)
	})
	if err != nil {
		return timeline.PruneResult{}, err
	}

	s.metrics.RowsPruned("statuses", res.Statuses)
	s.metrics.RowsPruned("placeholders", res.Placeholders)
	s.metrics.RowsPruned("accounts", res.Accounts)
	s.log.Debug(ctx, "account pruned", "account", localAccountID,
		"statuses", res.Statuses, "placeholders", res.Placeholders, "accounts", res.Accounts)
	return res, nil
}

// PruneAll prunes every local account concurrently. The first failure
// cancels the accounts not yet started.
func (s *CleanupService) PruneAll(ctx context.Context) (map[int64]timeline.PruneResult, error) {
	list, err := accounts.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make(map[int64]timeline.PruneResult, len(list))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, a := range list {
		id := a.ID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.PruneAccount(ctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Run prunes all accounts immediately and then every interval until ctx
// is done. Failures are logged and the next tick tries again.
func (s *CleanupService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		res, err := s.PruneAll(ctx)
		if err != nil && ctx.Err() == nil {
			s.log.Error(ctx, "retention run failed", "err", err)
		} else {
			var total int64
			for _, r := range res {
				total += r.Total()
			}
			s.log.Info(ctx, "retention run finished", "accounts", len(res), "rows", total)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
